package particle

import (
	"testing"

	"github.com/pthm-cable/fieldglass/simerr"
)

func TestCreateInvalidCapacity(t *testing.T) {
	if _, err := Create(0); err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if _, err := Create(-1); err == nil {
		t.Fatal("expected error for negative capacity")
	}
}

func TestAllocateReleaseAccounting(t *testing.T) {
	s, err := Create(4)
	if err != nil {
		t.Fatal(err)
	}

	var handles []Handle
	for i := 0; i < 4; i++ {
		h, err := s.Allocate()
		if err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
		handles = append(handles, h)
	}

	active, free, capacity := s.Counters()
	if active != 4 || free != 0 || capacity != 4 {
		t.Fatalf("counters = %d,%d,%d want 4,0,4", active, free, capacity)
	}

	if _, err := s.Allocate(); err == nil {
		t.Fatal("expected OutOfResources on full store")
	} else if e, ok := err.(*simerr.Error); !ok || e.Kind != simerr.OutOfResources {
		t.Fatalf("expected OutOfResources, got %v", err)
	}

	if err := s.Release(handles[0]); err != nil {
		t.Fatal(err)
	}
	active, free, _ = s.Counters()
	if active != 3 || free != 1 {
		t.Fatalf("counters after release = %d,%d want 3,1", active, free)
	}
}

func TestReleaseAlienHandle(t *testing.T) {
	s, _ := Create(2)
	if err := s.Release(99); err == nil {
		t.Fatal("expected InvalidParameter for out-of-range handle")
	}
	if err := s.Release(0); err == nil {
		t.Fatal("expected InvalidParameter for unoccupied handle")
	}
}

// TestPoolLIFOLocality covers P8 and scenario 6: allocate A, B; release
// A; allocate C. slot(C) must equal slot(A).
func TestPoolLIFOLocality(t *testing.T) {
	s, _ := Create(8)
	a, _ := s.Allocate()
	_, _ = s.Allocate() // b
	if err := s.Release(a); err != nil {
		t.Fatal(err)
	}
	c, _ := s.Allocate()
	if c != a {
		t.Fatalf("slot(C)=%d want slot(A)=%d", c, a)
	}
}

func TestHandleStability(t *testing.T) {
	s, _ := Create(4)
	h, _ := s.Allocate()
	p := s.Get(h)
	p.X, p.Y = 1, 2

	// Unrelated allocations/releases must not move h's slot.
	other, _ := s.Allocate()
	_ = s.Release(other)

	p2 := s.Get(h)
	if p2.X != 1 || p2.Y != 2 {
		t.Fatalf("handle dereferenced to different data: %+v", *p2)
	}
}

func TestIteratorSlabOrderSkipsUnoccupied(t *testing.T) {
	s, _ := Create(5)
	var handles []Handle
	for i := 0; i < 5; i++ {
		h, _ := s.Allocate()
		handles = append(handles, h)
	}
	// Release slots 1 and 3.
	_ = s.Release(handles[1])
	_ = s.Release(handles[3])

	it := s.Iter()
	var seen []Handle
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		seen = append(seen, h)
	}

	want := []Handle{handles[0], handles[2], handles[4]}
	if len(seen) != len(want) {
		t.Fatalf("iterated %d handles, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("iterated %v, want %v", seen, want)
		}
	}
}

func TestIteratorRestartable(t *testing.T) {
	s, _ := Create(3)
	for i := 0; i < 3; i++ {
		_, _ = s.Allocate()
	}
	first := s.Iter()
	var n1 int
	for {
		if _, ok := first.Next(); !ok {
			break
		}
		n1++
	}
	second := s.Iter()
	var n2 int
	for {
		if _, ok := second.Next(); !ok {
			break
		}
		n2++
	}
	if n1 != n2 || n1 != 3 {
		t.Fatalf("restart mismatch: %d vs %d", n1, n2)
	}
}
