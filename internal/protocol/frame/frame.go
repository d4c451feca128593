package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire sizes. All multi-byte fields are little-endian.
const (
	HeaderLen      = 8
	FixedHeaderLen = 16
	CountLen       = 4
	PositionLen    = 8
	VelocityLen    = 8
	StageLen       = 8
	PlayerLen      = 32
	EnemyLen       = 32
	BossLen        = 36
	BulletLen      = 36
	ItemLen        = 32
)

var (
	ErrShortHeader = errors.New("frame: short packet header")

	// ErrFormat is the parent of every body decode failure.
	ErrFormat       = errors.New("frame: format error")
	ErrTruncated    = fmt.Errorf("%w: truncated input", ErrFormat)
	ErrTrailingData = fmt.Errorf("%w: trailing data", ErrFormat)
)

// PacketHeader precedes every serialized Frame on the wire.
type PacketHeader struct {
	Magic    uint32
	BodySize uint32
}

// PacketLen is the full on-wire length of the packet this header announces.
func (h PacketHeader) PacketLen() uint64 {
	return HeaderLen + uint64(h.BodySize)
}

func EncodeHeader(h PacketHeader) []byte {
	buf := make([]byte, HeaderLen)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.BodySize)
	return buf
}

func DecodeHeader(b []byte) (PacketHeader, error) {
	if len(b) != HeaderLen {
		return PacketHeader{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(b))
	}
	return PacketHeader{
		Magic:    binary.LittleEndian.Uint32(b[0:4]),
		BodySize: binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// EncodePacket frames f behind a header carrying magic and the body length.
func EncodePacket(magic uint32, f Frame) []byte {
	buf := make([]byte, HeaderLen, HeaderLen+f.EncodedLen())
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(f.EncodedLen()))
	return AppendFrame(buf, f)
}
