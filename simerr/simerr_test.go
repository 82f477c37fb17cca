package simerr

import (
	"errors"
	"testing"
)

func TestStatsRecordsByKind(t *testing.T) {
	s := NewStats()
	s.Record(New(InvalidParameter, "op", "msg"))
	s.Record(New(InvalidParameter, "op", "msg"))
	s.Record(New(OutOfRange, "op", "msg"))

	if s.Count(InvalidParameter) != 2 {
		t.Fatalf("InvalidParameter count = %d, want 2", s.Count(InvalidParameter))
	}
	if s.Count(OutOfRange) != 1 {
		t.Fatalf("OutOfRange count = %d, want 1", s.Count(OutOfRange))
	}
	if s.Total() != 3 {
		t.Fatalf("total = %d, want 3", s.Total())
	}
}

func TestStatsIgnoresNilAndNonErrorValues(t *testing.T) {
	s := NewStats()
	s.Record(nil)
	s.Record(errors.New("plain error"))
	if s.Total() != 0 {
		t.Fatalf("total = %d, want 0 after recording nil and a plain error", s.Total())
	}
}

// TestNilStatsIsSafeToUse covers the explicit-observer pattern: every
// method must be a no-op on a nil *Stats, since callers that don't
// care about error accounting pass nil.
func TestNilStatsIsSafeToUse(t *testing.T) {
	var s *Stats
	s.Record(New(Memory, "op", "msg"))
	if s.Total() != 0 {
		t.Fatalf("nil Stats.Total() = %d, want 0", s.Total())
	}
	if s.Count(Memory) != 0 {
		t.Fatalf("nil Stats.Count() = %d, want 0", s.Count(Memory))
	}
}
