package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/framectl/internal/observability"
	"github.com/danmuck/framectl/internal/protocol/frame"
)

// DefaultChunkSize is the refill read size.
const DefaultChunkSize = 4096

var (
	ErrNoFrame         = errors.New("stream: no frame available")
	ErrTransportClosed = errors.New("stream: transport closed")
	ErrReadTimeout     = errors.New("stream: transport read timed out")
	ErrSizeViolation   = errors.New("stream: packet size violation")
	ErrInvalidConfig   = errors.New("stream: invalid config")
)

// Transport is the byte source a Stream reads from. Receive returning no
// bytes or io.EOF means the peer is gone.
type Transport interface {
	Connect() error
	Receive(max int) ([]byte, error)
	ReceiveExact(n int) ([]byte, error)
	Close() error
}

// Config holds the protocol parameters agreed out of band.
type Config struct {
	Magic         uint32
	MaxPacketSize uint32
}

func (c Config) Validate() error {
	if c.MaxPacketSize < frame.HeaderLen+1 {
		return fmt.Errorf("%w: max_packet_size %d cannot hold a header and body", ErrInvalidConfig, c.MaxPacketSize)
	}
	return nil
}

type Option func(*Stream)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithEndpoint labels logs and metrics with the remote address.
func WithEndpoint(endpoint string) Option {
	return func(s *Stream) {
		s.endpoint = endpoint
	}
}

func WithChunkSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// Stream reassembles Frames from one connection's byte stream. It is not
// safe for concurrent use; Status may be called from any goroutine.
type Stream struct {
	id        string
	transport Transport
	cfg       Config
	magic     [4]byte
	chunkSize int
	endpoint  string
	logger    zerolog.Logger

	connected atomic.Bool
	buffered  atomic.Int64
	frames    atomic.Uint64
	discarded atomic.Uint64

	// unconsumed bytes in arrival order
	buf []byte
}

func New(t Transport, cfg Config, opts ...Option) (*Stream, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Stream{
		id:        uuid.NewString(),
		transport: t,
		cfg:       cfg,
		chunkSize: DefaultChunkSize,
		logger:    log.Logger,
	}
	binary.LittleEndian.PutUint32(s.magic[:], cfg.Magic)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("stream", s.id).Str("endpoint", s.endpoint).Logger()
	return s, nil
}

func (s *Stream) ID() string {
	return s.id
}

func (s *Stream) Connected() bool {
	return s.connected.Load()
}

// Buffered is the number of received bytes not yet consumed.
func (s *Stream) Buffered() int {
	return int(s.buffered.Load())
}

func (s *Stream) Status() observability.Status {
	return observability.Status{
		StreamID:  s.id,
		Endpoint:  s.endpoint,
		Connected: s.connected.Load(),
		Buffered:  int(s.buffered.Load()),
		Frames:    s.frames.Load(),
		Discarded: s.discarded.Load(),
	}
}

// Connect opens the transport. Bytes left over from an earlier
// connection are discarded.
func (s *Stream) Connect() error {
	if s.connected.Load() {
		return nil
	}
	if err := s.transport.Connect(); err != nil {
		s.logger.Warn().Err(err).Msg("stream.Stream.Connect failed")
		return err
	}
	s.setBuf(s.buf[:0])
	s.connected.Store(true)
	s.logger.Info().Msg("stream.Stream.Connect ok")
	return nil
}

// Disconnect closes the transport. Calling it more than once is a no-op.
func (s *Stream) Disconnect() error {
	if !s.connected.Swap(false) {
		return nil
	}
	observability.RecordDisconnect(s.endpoint)
	err := s.transport.Close()
	s.logger.Info().Err(err).Msg("stream.Stream.Disconnect")
	return err
}

// RetrieveFrame returns the next frame, refilling from the transport at
// most maxAttempts times. It stops at the first complete packet, whether
// or not its body decodes. A lost connection is reported as ErrNoFrame
// wrapping ErrTransportClosed.
func (s *Stream) RetrieveFrame(maxAttempts int) (frame.Frame, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if !s.headerReady() {
			if err := s.refill(); err != nil {
				if errors.Is(err, ErrTransportClosed) {
					return frame.Frame{}, fmt.Errorf("%w: %w", ErrNoFrame, err)
				}
				continue
			}
		}

		f, res, err := s.next()
		switch res {
		case resultNeedMore:
			continue
		case resultFrame:
			return f, nil
		case resultReadFailed:
			return frame.Frame{}, fmt.Errorf("%w: %w", ErrNoFrame, err)
		default:
			return frame.Frame{}, err
		}
	}
	return frame.Frame{}, ErrNoFrame
}

// RetrieveAll decodes every complete packet available over at most
// maxAttempts refills. Frames are returned in arrival order together with
// the joined decode errors; a size violation stops the call.
func (s *Stream) RetrieveAll(maxAttempts int) ([]frame.Frame, error) {
	var (
		frames []frame.Frame
		errs   []error
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if !s.headerReady() {
			if err := s.refill(); err != nil {
				if errors.Is(err, ErrTransportClosed) {
					break
				}
				continue
			}
		}

	drain:
		for {
			f, res, err := s.next()
			switch res {
			case resultFrame:
				frames = append(frames, f)
			case resultDecodeFailed:
				errs = append(errs, err)
				break drain
			case resultSizeViolation:
				errs = append(errs, err)
				return frames, errors.Join(errs...)
			default:
				break drain
			}
		}
	}
	return frames, errors.Join(errs...)
}

type result int

const (
	resultNeedMore result = iota
	resultFrame
	resultDecodeFailed
	resultSizeViolation
	resultReadFailed
)

// next extracts at most one packet from the buffer. A packet whose
// header was accepted is consumed in full even when its body fails to
// decode, so a malformed packet is never retried.
func (s *Stream) next() (frame.Frame, result, error) {
	h, ok := s.scanHeader()
	if !ok {
		return frame.Frame{}, resultNeedMore, nil
	}
	if err := s.validateSize(h); err != nil {
		observability.RecordSizeViolation(s.endpoint)
		s.logger.Error().Err(err).Uint32("body_size", h.BodySize).Msg("stream.Stream.next size violation")
		return frame.Frame{}, resultSizeViolation, err
	}
	if err := s.complete(h); err != nil {
		return frame.Frame{}, resultReadFailed, err
	}

	packetLen := int(h.PacketLen())
	f, err := frame.Decode(s.buf[frame.HeaderLen:packetLen])
	s.consume(packetLen)
	if err != nil {
		observability.RecordDecodeError(s.endpoint)
		s.logger.Warn().Err(err).Uint32("body_size", h.BodySize).Msg("stream.Stream.next decode failed")
		return frame.Frame{}, resultDecodeFailed, fmt.Errorf("stream: packet body_size=%d: %w", h.BodySize, err)
	}
	s.frames.Add(1)
	observability.RecordFrameDecoded(s.endpoint, h.BodySize)
	return f, resultFrame, nil
}

// headerReady reports whether the buffer already starts with a header
// carrying the magic number, resynchronizing first if needed.
func (s *Stream) headerReady() bool {
	_, ok := s.scanHeader()
	return ok
}

// scanHeader drops leading bytes until the buffer starts with the magic
// number or fewer than HeaderLen bytes remain. This discards exactly what
// a byte-at-a-time scan would.
func (s *Stream) scanHeader() (frame.PacketHeader, bool) {
	if len(s.buf) < frame.HeaderLen {
		return frame.PacketHeader{}, false
	}
	limit := len(s.buf) - (frame.HeaderLen - 1)
	drop := bytes.Index(s.buf, s.magic[:])
	if drop < 0 || drop > limit {
		drop = limit
	}
	if drop > 0 {
		s.consume(drop)
		s.discarded.Add(uint64(drop))
		observability.RecordResync(s.endpoint, drop)
		s.logger.Debug().Int("dropped", drop).Int("buffered", len(s.buf)).Msg("stream.Stream.scanHeader resync")
	}
	if len(s.buf) < frame.HeaderLen {
		return frame.PacketHeader{}, false
	}
	h, err := frame.DecodeHeader(s.buf[:frame.HeaderLen])
	if err != nil {
		return frame.PacketHeader{}, false
	}
	return h, true
}

func (s *Stream) validateSize(h frame.PacketHeader) error {
	if h.BodySize == 0 || h.PacketLen() > uint64(s.cfg.MaxPacketSize) {
		return fmt.Errorf("%w: body_size=%d max_packet_size=%d", ErrSizeViolation, h.BodySize, s.cfg.MaxPacketSize)
	}
	return nil
}

// complete pulls the rest of a split packet with one exact read.
func (s *Stream) complete(h frame.PacketHeader) error {
	need := int(h.PacketLen()) - len(s.buf)
	if need <= 0 {
		return nil
	}
	if !s.connected.Load() {
		return ErrTransportClosed
	}
	extra, err := s.transport.ReceiveExact(need)
	if err == nil && len(extra) != need {
		err = fmt.Errorf("short exact read: got %d of %d bytes", len(extra), need)
	}
	if err != nil {
		return s.readFailed("receive_exact", err)
	}
	observability.RecordBytesReceived(s.endpoint, len(extra))
	s.setBuf(append(s.buf, extra...))
	return nil
}

func (s *Stream) refill() error {
	if !s.connected.Load() {
		return ErrTransportClosed
	}
	data, err := s.transport.Receive(s.chunkSize)
	if err == nil && len(data) == 0 {
		err = io.EOF
	}
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			s.logger.Debug().Msg("stream.Stream.refill read timeout")
			return fmt.Errorf("%w: %v", ErrReadTimeout, err)
		}
		return s.readFailed("receive", err)
	}
	observability.RecordBytesReceived(s.endpoint, len(data))
	s.setBuf(append(s.buf, data...))
	return nil
}

func (s *Stream) readFailed(op string, err error) error {
	s.logger.Warn().Err(err).Str("op", op).Msg("stream.Stream transport read failed")
	_ = s.Disconnect()
	return fmt.Errorf("%w: %s: %v", ErrTransportClosed, op, err)
}

func (s *Stream) consume(n int) {
	if n >= len(s.buf) {
		s.setBuf(s.buf[:0])
		return
	}
	rest := copy(s.buf, s.buf[n:])
	s.setBuf(s.buf[:rest])
}

func (s *Stream) setBuf(b []byte) {
	s.buf = b
	s.buffered.Store(int64(len(b)))
}
