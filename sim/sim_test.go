package sim

import (
	"math"
	"testing"

	"github.com/pthm-cable/fieldglass/collide"
	"github.com/pthm-cable/fieldglass/field"
	"github.com/pthm-cable/fieldglass/integrate"
	"github.com/pthm-cable/fieldglass/simerr"
	"github.com/pthm-cable/fieldglass/telemetry"
)

// TestStepRecordsPerPhaseTimings covers the perf-instrumented path:
// passing a non-nil PerfCollector to Step populates a sample for
// every one of the 8 step-coordinator phases.
func TestStepRecordsPerPhaseTimings(t *testing.T) {
	w, err := New(4, Bounds{Width: 20, Height: 20}, 4, collide.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	h, _ := w.Store.Allocate()
	w.Store.Get(h).X, w.Store.Get(h).Y = 5, 5

	perf := telemetry.NewPerfCollector(10)
	w.Step(integrate.Params{DT: 1.0 / 60.0}, perf)

	stats := perf.Stats()
	for _, phase := range []string{
		telemetry.PhaseSnapshot, telemetry.PhaseIntegrate, telemetry.PhaseField,
		telemetry.PhaseWriteBack, telemetry.PhaseBounds, telemetry.PhaseReap,
		telemetry.PhaseCollision, telemetry.PhaseResync,
	} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q missing from perf stats", phase)
		}
	}
}

// TestStepAcceptsErrorObserver covers the simerr.Stats wiring: Step
// runs unchanged whether or not an observer is attached, since errors
// it could report (a reap double-releasing a handle) never occur on
// the happy path exercised by the other Step tests.
func TestStepAcceptsErrorObserver(t *testing.T) {
	w, err := New(4, Bounds{Width: 20, Height: 20}, 4, collide.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	w.Errs = simerr.NewStats()

	h, _ := w.Store.Allocate()
	w.Store.Get(h).X, w.Store.Get(h).Y = 5, 5

	w.Step(integrate.Params{DT: 1.0 / 60.0}, nil)

	if w.Errs.Total() != 0 {
		t.Fatalf("expected no recorded errors on the happy path, got %d", w.Errs.Total())
	}
}

func TestNewRejectsUndersizedCollisionCell(t *testing.T) {
	settings := collide.Settings{Radius: 2, Restitution: 0.8, Friction: 0.95, Enabled: true}
	if _, err := New(10, Bounds{Width: 100, Height: 100}, 1, settings); err == nil {
		t.Fatal("expected error for cell size smaller than 2x collision radius")
	}
}

// TestStepKeepsParticlesInBounds covers P2: every active particle
// stays within [0,W-1]x[0,H-1] after every step.
func TestStepKeepsParticlesInBounds(t *testing.T) {
	w, err := New(10, Bounds{Width: 20, Height: 20}, 4, collide.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	h, _ := w.Store.Allocate()
	p := w.Store.Get(h)
	p.X, p.Y = 19, 19
	p.VX, p.VY = 100, 100

	for i := 0; i < 20; i++ {
		w.Step(integrate.Params{DT: 0.1}, nil)
		if !w.Store.Live(h) {
			break
		}
		cur := w.Store.Get(h)
		if cur.X < 0 || cur.X > 19 || cur.Y < 0 || cur.Y > 19 {
			t.Fatalf("particle left bounds: (%f,%f)", cur.X, cur.Y)
		}
	}
}

// TestQuiescenceReap covers scenario 1: a particle dropped under
// gravity in a 10x10 world settles at the floor and is reaped within
// 240 steps at dt=1/60 (four simulated seconds).
func TestQuiescenceReap(t *testing.T) {
	settings := collide.Settings{Enabled: false}
	w, err := New(4, Bounds{Width: 10, Height: 10}, 4, settings)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := w.Store.Allocate()
	p := w.Store.Get(h)
	p.X, p.Y = 5, 0

	params := integrate.Params{Gravity: 30, DT: 1.0 / 60.0}
	for i := 0; i < 240; i++ {
		w.Step(params, nil)
	}

	active, _, _ := w.Store.Counters()
	if active != 0 {
		t.Fatalf("active = %d after 240 steps, want 0 (particle not reaped)", active)
	}
}

func TestQuitFlagCooperative(t *testing.T) {
	w, _ := New(2, Bounds{Width: 10, Height: 10}, 4, collide.DefaultSettings())
	if w.ShouldQuit() {
		t.Fatal("fresh world should not request quit")
	}
	w.RequestQuit()
	if !w.ShouldQuit() {
		t.Fatal("expected ShouldQuit true after RequestQuit")
	}
}

// TestVortexFieldKeepsParticlesInBounds runs scenario 3's setup end to
// end through World.Step: particles seeded on a ring around a vortex
// field stay within world bounds and are not all reaped. It does not
// check the mean distance from the vortex center.
func TestVortexFieldKeepsParticlesInBounds(t *testing.T) {
	settings := collide.Settings{Enabled: false}
	w, err := New(100, Bounds{Width: 100, Height: 100}, 4, settings)
	if err != nil {
		t.Fatal(err)
	}
	w.Fields.Add(field.NewVortex(50, 50, 40, 30))

	for i := 0; i < 100; i++ {
		h, _ := w.Store.Allocate()
		p := w.Store.Get(h)
		theta := 2 * math.Pi * float64(i) / 100
		p.X = 50 + 15*float32(math.Cos(theta))
		p.Y = 50 + 15*float32(math.Sin(theta))
	}

	params := integrate.Params{DT: 1.0 / 60.0}
	for step := 0; step < 500; step++ {
		w.Step(params, nil)
	}

	active, _, _ := w.Store.Counters()
	if active == 0 {
		t.Fatal("all particles were reaped, expected orbiting particles to remain active")
	}

	it := w.Store.Iter()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		p := w.Store.Get(h)
		if p.X < 0 || p.X > 99 || p.Y < 0 || p.Y > 99 {
			t.Fatalf("particle left world bounds: (%f,%f)", p.X, p.Y)
		}
	}
}
