package framedump

import (
	"math"
	"strconv"

	"github.com/danmuck/framectl/internal/protocol/frame"
)

// jsonFloat renders NaN and the infinities as the strings "NaN", "+Inf"
// and "-Inf"; encoding/json rejects them as numbers.
type jsonFloat float32

func (v jsonFloat) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 32), nil
}

type jsonVec struct {
	X jsonFloat `json:"x"`
	Y jsonFloat `json:"y"`
}

// jsonMotion is embedded so its fields sit inline in each entity.
type jsonMotion struct {
	Pos    jsonVec   `json:"pos"`
	Vel    jsonVec   `json:"vel"`
	Radius jsonFloat `json:"radius"`
	Angle  jsonFloat `json:"angle"`
}

func motion(pos frame.Position, vel frame.Velocity, radius, angle float32) jsonMotion {
	return jsonMotion{
		Pos:    jsonVec{X: jsonFloat(pos.X), Y: jsonFloat(pos.Y)},
		Vel:    jsonVec{X: jsonFloat(vel.X), Y: jsonFloat(vel.Y)},
		Radius: jsonFloat(radius),
		Angle:  jsonFloat(angle),
	}
}

type jsonPlayer struct {
	ID            uint8 `json:"id"`
	Name          uint8 `json:"name"`
	State         uint8 `json:"state"`
	AttackPattern uint8 `json:"attack_pattern"`
	jsonMotion
	CurrentSpell uint8 `json:"current_spell"`
	Lives        uint8 `json:"lives"`
	Bombs        uint8 `json:"bombs"`
	Power        uint8 `json:"power"`
}

type jsonEnemy struct {
	ID            uint8 `json:"id"`
	Name          uint8 `json:"name"`
	State         uint8 `json:"state"`
	AttackPattern uint8 `json:"attack_pattern"`
	jsonMotion
	Health uint32 `json:"health"`
}

type jsonBoss struct {
	ID            uint8 `json:"id"`
	Name          uint8 `json:"name"`
	State         uint8 `json:"state"`
	AttackPattern uint8 `json:"attack_pattern"`
	jsonMotion
	Health       uint32 `json:"health"`
	CurrentSpell uint8  `json:"current_spell"`
	Phase        uint8  `json:"phase"`
}

type jsonBullet struct {
	ID uint32 `json:"id"`
	jsonMotion
	Damage        uint32 `json:"damage"`
	Name          uint8  `json:"name"`
	State         uint8  `json:"state"`
	FlightPattern uint8  `json:"flight_pattern"`
	Owner         uint8  `json:"owner"`
}

type jsonItem struct {
	ID            uint8 `json:"id"`
	Name          uint8 `json:"name"`
	State         uint8 `json:"state"`
	FlightPattern uint8 `json:"flight_pattern"`
	jsonMotion
	Score jsonFloat `json:"score"`
}

type jsonFrame struct {
	ClientID   uint8        `json:"client_id"`
	OpponentID uint8        `json:"opponent_id"`
	Mode       uint8        `json:"mode"`
	State      uint8        `json:"state"`
	Timestamp  uint32       `json:"timestamp"`
	Score      uint32       `json:"score"`
	Difficulty uint8        `json:"difficulty"`
	Stage      frame.Stage  `json:"stage"`
	Players    []jsonPlayer `json:"players"`
	Enemies    []jsonEnemy  `json:"enemies"`
	Bosses     []jsonBoss   `json:"bosses"`
	Bullets    []jsonBullet `json:"bullets"`
	Items      []jsonItem   `json:"items"`
}

type jsonDocument struct {
	Counts frame.Counts `json:"counts"`
	Frame  jsonFrame    `json:"frame"`
}

// newJSONDocument mirrors Document with every float wrapped in jsonFloat.
func newJSONDocument(f frame.Frame) jsonDocument {
	jf := jsonFrame{
		ClientID:   f.ClientID,
		OpponentID: f.OpponentID,
		Mode:       f.Mode,
		State:      f.State,
		Timestamp:  f.Timestamp,
		Score:      f.Score,
		Difficulty: f.Difficulty,
		Stage:      f.Stage,
		Players:    mapGroup(f.Players, func(p frame.Player) jsonPlayer {
			return jsonPlayer{
				ID: p.ID, Name: p.Name, State: p.State, AttackPattern: p.AttackPattern,
				jsonMotion:   motion(p.Pos, p.Vel, p.Radius, p.Angle),
				CurrentSpell: p.CurrentSpell, Lives: p.Lives, Bombs: p.Bombs, Power: p.Power,
			}
		}),
		Enemies: mapGroup(f.Enemies, func(e frame.Enemy) jsonEnemy {
			return jsonEnemy{
				ID: e.ID, Name: e.Name, State: e.State, AttackPattern: e.AttackPattern,
				jsonMotion: motion(e.Pos, e.Vel, e.Radius, e.Angle),
				Health:     e.Health,
			}
		}),
		Bosses: mapGroup(f.Bosses, func(b frame.Boss) jsonBoss {
			return jsonBoss{
				ID: b.ID, Name: b.Name, State: b.State, AttackPattern: b.AttackPattern,
				jsonMotion: motion(b.Pos, b.Vel, b.Radius, b.Angle),
				Health:     b.Health, CurrentSpell: b.CurrentSpell, Phase: b.Phase,
			}
		}),
		Bullets: mapGroup(f.Bullets, func(b frame.Bullet) jsonBullet {
			return jsonBullet{
				ID:         b.ID,
				jsonMotion: motion(b.Pos, b.Vel, b.Radius, b.Angle),
				Damage:     b.Damage, Name: b.Name, State: b.State, FlightPattern: b.FlightPattern, Owner: b.Owner,
			}
		}),
		Items: mapGroup(f.Items, func(it frame.Item) jsonItem {
			return jsonItem{
				ID: it.ID, Name: it.Name, State: it.State, FlightPattern: it.FlightPattern,
				jsonMotion: motion(it.Pos, it.Vel, it.Radius, it.Angle),
				Score:      jsonFloat(it.Score),
			}
		}),
	}
	return jsonDocument{Counts: f.Counts(), Frame: jf}
}

func mapGroup[T, U any](in []T, conv func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = conv(v)
	}
	return out
}
