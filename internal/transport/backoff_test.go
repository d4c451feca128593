package transport

import (
	"math/rand"
	"testing"
	"time"

	"github.com/danmuck/framectl/internal/config"
	"github.com/danmuck/framectl/internal/testutil/testlog"
)

func TestBackoffDeterministicWithoutJitter(t *testing.T) {
	testlog.Start(t)
	b := Backoff{Initial: 250 * time.Millisecond, Multiplier: 2.0, Max: 5 * time.Second}
	want := map[int]time.Duration{
		0: 250 * time.Millisecond,
		1: 250 * time.Millisecond,
		2: 500 * time.Millisecond,
		3: time.Second,
		6: 5 * time.Second,
		9: 5 * time.Second,
	}
	for attempt, d := range want {
		if got := b.Delay(attempt, nil); got != d {
			t.Fatalf("attempt %d: got %v want %v", attempt, got, d)
		}
	}
}

func TestBackoffJitterRange(t *testing.T) {
	testlog.Start(t)
	b := Backoff{Initial: 250 * time.Millisecond, Multiplier: 2.0, Max: 5 * time.Second, Jitter: true}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		got := b.Delay(3, rng)
		if got < 500*time.Millisecond || got >= 1500*time.Millisecond {
			t.Fatalf("jitter out of range: %v", got)
		}
	}
}

func TestBackoffFromConfig(t *testing.T) {
	testlog.Start(t)
	b := BackoffFrom(config.Default().Reconnect)
	if b.Initial != 250*time.Millisecond || b.Max != 5*time.Second || b.Multiplier != 2.0 || !b.Jitter {
		t.Fatalf("unexpected backoff: %+v", b)
	}
	if got := (Backoff{Initial: 100 * time.Millisecond, Multiplier: 0.1}).Delay(4, nil); got != 100*time.Millisecond {
		t.Fatalf("multiplier below 1 must not shrink the delay: %v", got)
	}
}
