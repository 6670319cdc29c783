package realtime

import (
	"testing"
	"time"
)

func TestNewConnectionIDOrdersByTime(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	a, err := NewConnectionID(base)
	if err != nil {
		t.Fatalf("a: %v", err)
	}
	b, err := NewConnectionID(base.Add(time.Second))
	if err != nil {
		t.Fatalf("b: %v", err)
	}

	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("lengths = %d/%d", len(a), len(b))
	}
	if !(a < b) {
		t.Fatalf("ids not time-ordered: %s >= %s", a, b)
	}
}

func TestNewRandomHex(t *testing.T) {
	t.Parallel()

	if got := NewRandomHex(10); len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	// Non-positive sizes fall back to 16 bytes.
	if got := NewRandomHex(0); len(got) != 32 {
		t.Fatalf("len = %d, want 32", len(got))
	}
	if NewRandomHex(4) == NewRandomHex(4) {
		t.Fatalf("two draws collided")
	}
}
