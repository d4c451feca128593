package frame

import (
	"encoding/binary"
	"math"
)

// Encode serializes f into a new buffer of exactly f.EncodedLen() bytes.
func Encode(f Frame) []byte {
	return AppendFrame(make([]byte, 0, f.EncodedLen()), f)
}

// AppendFrame appends the serialized body of f to dst.
func AppendFrame(dst []byte, f Frame) []byte {
	dst = append(dst, f.ClientID, f.OpponentID, f.Mode, f.State)
	dst = binary.LittleEndian.AppendUint32(dst, f.Timestamp)
	dst = binary.LittleEndian.AppendUint32(dst, f.Score)
	dst = append(dst, f.Difficulty)
	dst = append(dst, f.Reserved[:]...)

	dst = append(dst, f.Stage.ID, f.Stage.Name, f.Stage.State, f.Stage.NextStage)
	dst = binary.LittleEndian.AppendUint32(dst, f.Stage.Timestamp)

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(f.Players)))
	for _, p := range f.Players {
		dst = appendPlayer(dst, p)
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(f.Enemies)))
	for _, e := range f.Enemies {
		dst = appendEnemy(dst, e)
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(f.Bosses)))
	for _, b := range f.Bosses {
		dst = appendBoss(dst, b)
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(f.Bullets)))
	for _, b := range f.Bullets {
		dst = appendBullet(dst, b)
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(f.Items)))
	for _, it := range f.Items {
		dst = appendItem(dst, it)
	}
	return dst
}

func appendFloat(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

// appendKinematics writes pos, vel, radius and angle: the 24-byte block
// shared by every moving record.
func appendKinematics(dst []byte, pos Position, vel Velocity, radius, angle float32) []byte {
	dst = appendFloat(dst, pos.X)
	dst = appendFloat(dst, pos.Y)
	dst = appendFloat(dst, vel.X)
	dst = appendFloat(dst, vel.Y)
	dst = appendFloat(dst, radius)
	return appendFloat(dst, angle)
}

func appendPlayer(dst []byte, p Player) []byte {
	dst = append(dst, p.ID, p.Name, p.State, p.AttackPattern)
	dst = appendKinematics(dst, p.Pos, p.Vel, p.Radius, p.Angle)
	return append(dst, p.CurrentSpell, p.Lives, p.Bombs, p.Power)
}

func appendEnemy(dst []byte, e Enemy) []byte {
	dst = append(dst, e.ID, e.Name, e.State, e.AttackPattern)
	dst = appendKinematics(dst, e.Pos, e.Vel, e.Radius, e.Angle)
	return binary.LittleEndian.AppendUint32(dst, e.Health)
}

func appendBoss(dst []byte, b Boss) []byte {
	dst = append(dst, b.ID, b.Name, b.State, b.AttackPattern)
	dst = appendKinematics(dst, b.Pos, b.Vel, b.Radius, b.Angle)
	dst = binary.LittleEndian.AppendUint32(dst, b.Health)
	return append(dst, b.CurrentSpell, b.Phase, b.Reserved[0], b.Reserved[1])
}

func appendBullet(dst []byte, b Bullet) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, b.ID)
	dst = appendKinematics(dst, b.Pos, b.Vel, b.Radius, b.Angle)
	dst = binary.LittleEndian.AppendUint32(dst, b.Damage)
	return append(dst, b.Name, b.State, b.FlightPattern, b.Owner)
}

func appendItem(dst []byte, it Item) []byte {
	dst = append(dst, it.ID, it.Name, it.State, it.FlightPattern)
	dst = appendKinematics(dst, it.Pos, it.Vel, it.Radius, it.Angle)
	return appendFloat(dst, it.Score)
}
