package transport

import (
	"testing"
	"time"
)

func TestBackoffProgression(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    10 * time.Millisecond,
		Max:        80 * time.Millisecond,
		Multiplier: 2,
		Jitter:     0, // deterministic
	})

	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		80 * time.Millisecond,
		80 * time.Millisecond, // capped
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() #%d = %v, want %v", i, got, w)
		}
	}
	if b.Attempts() != len(want) {
		t.Errorf("Attempts = %d, want %d", b.Attempts(), len(want))
	}
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    10 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2,
		Jitter:     0,
	})

	b.Next()
	b.Next()
	b.Reset()

	if got := b.Current(); got != 10*time.Millisecond {
		t.Errorf("Current after Reset = %v, want 10ms", got)
	}
	if b.Attempts() != 0 {
		t.Errorf("Attempts after Reset = %d, want 0", b.Attempts())
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2,
		Jitter:     0.25,
	})

	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := b.Next()
		upper := base + time.Duration(float64(base)*0.25)
		if d < base || d > upper {
			t.Fatalf("Next() #%d = %v outside [%v, %v]", i, d, base, upper)
		}
		base *= 2
		if base > time.Second {
			base = time.Second
		}
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoff()
	if got := b.Current(); got != InitialBackoff {
		t.Errorf("initial = %v, want %v", got, InitialBackoff)
	}
}
