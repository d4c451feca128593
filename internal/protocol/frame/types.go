package frame

import "bytes"

// Position is a 2D coordinate in playfield units.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Velocity is a 2D displacement per tick.
type Velocity struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type Stage struct {
	ID        uint8  `json:"id"`
	Name      uint8  `json:"name"`
	State     uint8  `json:"state"`
	NextStage uint8  `json:"next_stage"`
	Timestamp uint32 `json:"timestamp"`
}

type Player struct {
	ID            uint8    `json:"id"`
	Name          uint8    `json:"name"`
	State         uint8    `json:"state"`
	AttackPattern uint8    `json:"attack_pattern"`
	Pos           Position `json:"pos"`
	Vel           Velocity `json:"vel"`
	Radius        float32  `json:"radius"`
	Angle         float32  `json:"angle"`
	CurrentSpell  uint8    `json:"current_spell"`
	Lives         uint8    `json:"lives"`
	Bombs         uint8    `json:"bombs"`
	Power         uint8    `json:"power"`
}

type Enemy struct {
	ID            uint8    `json:"id"`
	Name          uint8    `json:"name"`
	State         uint8    `json:"state"`
	AttackPattern uint8    `json:"attack_pattern"`
	Pos           Position `json:"pos"`
	Vel           Velocity `json:"vel"`
	Radius        float32  `json:"radius"`
	Angle         float32  `json:"angle"`
	Health        uint32   `json:"health"`
}

// Boss is an Enemy with spell and phase tracking. Reserved is carried
// through unvalidated.
type Boss struct {
	ID            uint8    `json:"id"`
	Name          uint8    `json:"name"`
	State         uint8    `json:"state"`
	AttackPattern uint8    `json:"attack_pattern"`
	Pos           Position `json:"pos"`
	Vel           Velocity `json:"vel"`
	Radius        float32  `json:"radius"`
	Angle         float32  `json:"angle"`
	Health        uint32   `json:"health"`
	CurrentSpell  uint8    `json:"current_spell"`
	Phase         uint8    `json:"phase"`
	Reserved      [2]uint8 `json:"-"`
}

type Bullet struct {
	ID            uint32   `json:"id"`
	Pos           Position `json:"pos"`
	Vel           Velocity `json:"vel"`
	Radius        float32  `json:"radius"`
	Angle         float32  `json:"angle"`
	Damage        uint32   `json:"damage"`
	Name          uint8    `json:"name"`
	State         uint8    `json:"state"`
	FlightPattern uint8    `json:"flight_pattern"`
	Owner         uint8    `json:"owner"`
}

type Item struct {
	ID            uint8    `json:"id"`
	Name          uint8    `json:"name"`
	State         uint8    `json:"state"`
	FlightPattern uint8    `json:"flight_pattern"`
	Pos           Position `json:"pos"`
	Vel           Velocity `json:"vel"`
	Radius        float32  `json:"radius"`
	Angle         float32  `json:"angle"`
	Score         float32  `json:"score"`
}

// Frame is one game-state snapshot. Group counts on the wire are the
// slice lengths; State, Name and the pattern bytes are opaque to this
// package.
type Frame struct {
	ClientID   uint8    `json:"client_id"`
	OpponentID uint8    `json:"opponent_id"`
	Mode       uint8    `json:"mode"`
	State      uint8    `json:"state"`
	Timestamp  uint32   `json:"timestamp"`
	Score      uint32   `json:"score"`
	Difficulty uint8    `json:"difficulty"`
	Reserved   [3]uint8 `json:"-"`

	Stage   Stage    `json:"stage"`
	Players []Player `json:"players"`
	Enemies []Enemy  `json:"enemies"`
	Bosses  []Boss   `json:"bosses"`
	Bullets []Bullet `json:"bullets"`
	Items   []Item   `json:"items"`
}

// Counts holds the element-group lengths of a Frame.
type Counts struct {
	Players int `json:"player_count"`
	Enemies int `json:"enemy_count"`
	Bosses  int `json:"boss_count"`
	Bullets int `json:"bullet_count"`
	Items   int `json:"item_count"`
}

func (f Frame) Counts() Counts {
	return Counts{
		Players: len(f.Players),
		Enemies: len(f.Enemies),
		Bosses:  len(f.Bosses),
		Bullets: len(f.Bullets),
		Items:   len(f.Items),
	}
}

// EncodedLen is the serialized body size of f.
func (f Frame) EncodedLen() int {
	return FixedHeaderLen + StageLen +
		CountLen + len(f.Players)*PlayerLen +
		CountLen + len(f.Enemies)*EnemyLen +
		CountLen + len(f.Bosses)*BossLen +
		CountLen + len(f.Bullets)*BulletLen +
		CountLen + len(f.Items)*ItemLen
}

// Equal reports whether f and o have the same wire encoding, so floats
// compare by bit pattern (a NaN equals an identical NaN, 0 and -0 differ).
// A nil group equals an empty one.
func (f Frame) Equal(o Frame) bool {
	if f.Counts() != o.Counts() {
		return false
	}
	return bytes.Equal(Encode(f), Encode(o))
}
