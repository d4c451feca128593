package transport

import (
	"math"
	"math/rand"
	"time"

	"github.com/danmuck/framectl/internal/config"
)

// Backoff computes redial delays growing geometrically from Initial.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     bool
}

func BackoffFrom(cfg config.Reconnect) Backoff {
	return Backoff{
		Initial:    cfg.InitialDelay,
		Max:        cfg.MaxDelay,
		Multiplier: cfg.Multiplier,
		Jitter:     cfg.Jitter,
	}
}

// Delay returns the wait before redial attempt n (1-based). Jitter scales
// later delays into [0.5, 1.5) of their nominal value.
func (b Backoff) Delay(attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 1 || b.Initial <= 0 {
		return max(b.Initial, 0)
	}
	mult := max(b.Multiplier, 1.0)
	delay := float64(b.Initial) * math.Pow(mult, float64(attempt-1))
	if b.Max > 0 && delay > float64(b.Max) {
		delay = float64(b.Max)
	}
	if b.Jitter {
		f := 0.5
		if rng != nil {
			f += rng.Float64()
		}
		delay *= f
	}
	return time.Duration(delay)
}
