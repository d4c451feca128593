package frame

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode parses one serialized Frame body. The whole of b must be
// consumed; element groups are bounds checked against the remaining
// input before anything is allocated.
func Decode(b []byte) (Frame, error) {
	d := decoder{buf: b}
	var f Frame

	head, err := d.take("fixed header", FixedHeaderLen)
	if err != nil {
		return Frame{}, err
	}
	f.ClientID, f.OpponentID, f.Mode, f.State = head[0], head[1], head[2], head[3]
	f.Timestamp = binary.LittleEndian.Uint32(head[4:8])
	f.Score = binary.LittleEndian.Uint32(head[8:12])
	f.Difficulty = head[12]
	copy(f.Reserved[:], head[13:16])

	stage, err := d.take("stage", StageLen)
	if err != nil {
		return Frame{}, err
	}
	f.Stage = Stage{
		ID:        stage[0],
		Name:      stage[1],
		State:     stage[2],
		NextStage: stage[3],
		Timestamp: binary.LittleEndian.Uint32(stage[4:8]),
	}

	if f.Players, err = readGroup(&d, "players", PlayerLen, parsePlayer); err != nil {
		return Frame{}, err
	}
	if f.Enemies, err = readGroup(&d, "enemies", EnemyLen, parseEnemy); err != nil {
		return Frame{}, err
	}
	if f.Bosses, err = readGroup(&d, "bosses", BossLen, parseBoss); err != nil {
		return Frame{}, err
	}
	if f.Bullets, err = readGroup(&d, "bullets", BulletLen, parseBullet); err != nil {
		return Frame{}, err
	}
	if f.Items, err = readGroup(&d, "items", ItemLen, parseItem); err != nil {
		return Frame{}, err
	}

	if rem := d.remaining(); rem != 0 {
		return Frame{}, fmt.Errorf("%w: %d bytes after items at offset %d", ErrTrailingData, rem, d.pos)
	}
	return f, nil
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.pos
}

func (d *decoder) take(what string, n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, fmt.Errorf("%w: %s needs %d bytes at offset %d, have %d", ErrTruncated, what, n, d.pos, d.remaining())
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func readGroup[T any](d *decoder, name string, size int, parse func([]byte) T) ([]T, error) {
	raw, err := d.take(name+" count", CountLen)
	if err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint32(raw)
	if count == 0 {
		return nil, nil
	}
	need := uint64(count) * uint64(size)
	if need > uint64(d.remaining()) {
		return nil, fmt.Errorf("%w: %s count=%d needs %d bytes at offset %d, have %d", ErrTruncated, name, count, need, d.pos, d.remaining())
	}
	out := make([]T, count)
	for i := range out {
		out[i] = parse(d.buf[d.pos : d.pos+size])
		d.pos += size
	}
	return out, nil
}

func u32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// parseKinematics reads the 24-byte pos/vel/radius/angle block at b[0:24].
func parseKinematics(b []byte) (Position, Velocity, float32, float32) {
	return Position{X: f32(b[0:4]), Y: f32(b[4:8])},
		Velocity{X: f32(b[8:12]), Y: f32(b[12:16])},
		f32(b[16:20]),
		f32(b[20:24])
}

func parsePlayer(b []byte) Player {
	p := Player{ID: b[0], Name: b[1], State: b[2], AttackPattern: b[3]}
	p.Pos, p.Vel, p.Radius, p.Angle = parseKinematics(b[4:28])
	p.CurrentSpell, p.Lives, p.Bombs, p.Power = b[28], b[29], b[30], b[31]
	return p
}

func parseEnemy(b []byte) Enemy {
	e := Enemy{ID: b[0], Name: b[1], State: b[2], AttackPattern: b[3]}
	e.Pos, e.Vel, e.Radius, e.Angle = parseKinematics(b[4:28])
	e.Health = u32(b[28:32])
	return e
}

func parseBoss(b []byte) Boss {
	bs := Boss{ID: b[0], Name: b[1], State: b[2], AttackPattern: b[3]}
	bs.Pos, bs.Vel, bs.Radius, bs.Angle = parseKinematics(b[4:28])
	bs.Health = u32(b[28:32])
	bs.CurrentSpell, bs.Phase = b[32], b[33]
	bs.Reserved = [2]uint8{b[34], b[35]}
	return bs
}

func parseBullet(b []byte) Bullet {
	bl := Bullet{ID: u32(b[0:4])}
	bl.Pos, bl.Vel, bl.Radius, bl.Angle = parseKinematics(b[4:28])
	bl.Damage = u32(b[28:32])
	bl.Name, bl.State, bl.FlightPattern, bl.Owner = b[32], b[33], b[34], b[35]
	return bl
}

func parseItem(b []byte) Item {
	it := Item{ID: b[0], Name: b[1], State: b[2], FlightPattern: b[3]}
	it.Pos, it.Vel, it.Radius, it.Angle = parseKinematics(b[4:28])
	it.Score = f32(b[28:32])
	return it
}
