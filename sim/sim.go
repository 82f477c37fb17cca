// Package sim implements the per-tick step coordinator: the 8-phase
// pipeline that advances a particle store by one frame of duration
// dt, tying together the integrator, spatial grid, force-field
// applicator, and collision resolver.
//
// Grounded on original_source/src/sim.c's sim_step (snapshot into a
// contiguous buffer, integrate, wall collision and damping, ground
// friction, quiescence reap, scalar fallback on allocation failure)
// and on game/parallel.go's snapshot -> compute -> write-back shape,
// generalized from that file's parallel worker split to the spec's
// single-threaded cooperative scheduling model (§5): one goroutine,
// no suspension within a tick.
package sim

import (
	"github.com/pthm-cable/fieldglass/collide"
	"github.com/pthm-cable/fieldglass/field"
	"github.com/pthm-cable/fieldglass/integrate"
	"github.com/pthm-cable/fieldglass/particle"
	"github.com/pthm-cable/fieldglass/simerr"
	"github.com/pthm-cable/fieldglass/spatial"
	"github.com/pthm-cable/fieldglass/telemetry"
)

// Velocity damping applied on wall contact, and the ground friction
// applied to the tangential axis while resting, matching the
// reference simulation's constants.
const (
	wallDamping    = 0.6
	groundFriction = 0.98
	groundVYLimit  = 2.0
	reapMarginY    = 2.0
	reapSpeed      = 0.5
)

// Bounds is the rectangular world a World clamps particles into.
type Bounds struct {
	Width, Height float32
}

// Report summarizes one Step call for telemetry and tests.
type Report struct {
	Active             int
	Reaped             int
	CollisionsResolved int
}

// World owns every piece of per-tick state: the particle store, the
// spatial grid used by the collision resolver, the force-field
// manager, collision settings, and the scratch buffers reused across
// ticks.
type World struct {
	Store     *particle.Store
	Grid      *spatial.Grid
	Fields    *field.Manager
	Collision collide.Settings
	Bounds    Bounds

	simdScratch *integrate.Scratch
	snapshot    []particle.Particle
	handles     []particle.Handle

	// Errs is an optional caller-supplied observer that Step reports
	// internal operation failures into (e.g. a reap releasing a handle
	// that's somehow already free). Left nil, failures are silently
	// dropped as before; this never gates behavior, only visibility.
	Errs *simerr.Stats

	quit bool
}

// New builds a World with a particle store of the given capacity, a
// spatial grid sized to the collision radius, and an empty field
// manager. cellSize should be at least 2*collision.Radius per §4.5.
func New(capacity int, bounds Bounds, cellSize float32, collision collide.Settings) (*World, error) {
	if collision.Enabled && cellSize < 2*collision.Radius {
		return nil, simerr.New(simerr.InvalidParameter, "sim.New", "collision cell size must be at least 2x the collision radius")
	}

	store, err := particle.Create(capacity)
	if err != nil {
		return nil, err
	}
	grid, err := spatial.New(bounds.Width, bounds.Height, cellSize)
	if err != nil {
		return nil, err
	}
	return &World{
		Store:       store,
		Grid:        grid,
		Fields:      field.NewManager(),
		Collision:   collision,
		Bounds:      bounds,
		simdScratch: integrate.NewScratch(capacity),
		snapshot:    make([]particle.Particle, 0, capacity),
		handles:     make([]particle.Handle, 0, capacity),
	}, nil
}

// ShouldQuit reports whether RequestQuit has been called. The driver
// polls this between ticks; an in-flight tick is never interrupted.
func (w *World) ShouldQuit() bool {
	return w.quit
}

// RequestQuit sets the cooperative cancellation flag.
func (w *World) RequestQuit() {
	w.quit = true
}

func (w *World) ensureScratch(n int) {
	if cap(w.snapshot) < n {
		w.snapshot = make([]particle.Particle, n)
		w.handles = make([]particle.Handle, n)
		return
	}
	w.snapshot = w.snapshot[:n]
	w.handles = w.handles[:n]
}

// Step advances the simulation by one tick of duration params.DT,
// executing phases 1-8 of §4.6 in strict order. perf may be nil; when
// non-nil, each phase's wall-clock time is recorded against the
// matching telemetry.Phase* constant, letting callers build up a
// PerfCollector window without the step coordinator depending on how
// that window is consumed.
func (w *World) Step(params integrate.Params, perf *telemetry.PerfCollector) Report {
	if perf != nil {
		perf.StartTick()
		defer perf.EndTick()
	}

	active, _, _ := w.Store.Counters()
	if active == 0 {
		return Report{}
	}

	if perf != nil {
		perf.StartPhase(telemetry.PhaseSnapshot)
	}
	snap, handles := w.snapshotInto(active)

	// Phase 2: integrate.
	if perf != nil {
		perf.StartPhase(telemetry.PhaseIntegrate)
	}
	integrate.Step(snap, params, w.simdScratch)

	// Phase 3: field pass.
	if perf != nil {
		perf.StartPhase(telemetry.PhaseField)
	}
	w.Fields.Apply(snap, params.DT)

	// Phase 4: write-back.
	if perf != nil {
		perf.StartPhase(telemetry.PhaseWriteBack)
	}
	for i, h := range handles {
		*w.Store.Get(h) = snap[i]
	}

	// Phase 5: bounds clamp and reflect.
	if perf != nil {
		perf.StartPhase(telemetry.PhaseBounds)
	}
	maxX := w.Bounds.Width - 1
	maxY := w.Bounds.Height - 1
	for _, h := range handles {
		p := w.Store.Get(h)
		if p.X < 0 {
			p.X = 0
			p.VX = -p.VX * wallDamping
		} else if p.X > maxX {
			p.X = maxX
			p.VX = -p.VX * wallDamping
		}
		if p.Y < 0 {
			p.Y = 0
			p.VY = -p.VY * wallDamping
		} else if p.Y > maxY {
			p.Y = maxY
			p.VY = -p.VY * wallDamping
			if absf(p.VY) < groundVYLimit {
				p.VX *= groundFriction
			}
		}
	}

	// Phase 6: quiescence reap.
	if perf != nil {
		perf.StartPhase(telemetry.PhaseReap)
	}
	reaped := 0
	for _, h := range handles {
		p := w.Store.Get(h)
		if p.Y >= w.Bounds.Height-reapMarginY && absf(p.VX) < reapSpeed && absf(p.VY) < reapSpeed {
			if err := w.Store.Release(h); err != nil {
				w.Errs.Record(err)
				continue
			}
			reaped++
		}
	}

	// Phase 7: collision pass, if enabled.
	if perf != nil {
		perf.StartPhase(telemetry.PhaseCollision)
	}
	resolved := 0
	if w.Collision.Enabled {
		spatial.Rebuild(w.Grid, w.Store)
		resolved = collide.Resolve(w.Store, w.Grid, w.Collision)
	}

	// Phase 8: re-synchronize active counter. particle.Store's counters
	// are already authoritative after Release; the report simply reads
	// them back for the caller.
	if perf != nil {
		perf.StartPhase(telemetry.PhaseResync)
	}
	finalActive, _, _ := w.Store.Counters()

	return Report{
		Active:             finalActive,
		Reaped:             reaped,
		CollisionsResolved: resolved,
	}
}

// snapshotInto copies every active particle into the reusable scratch
// buffer in slab order, growing it on demand (sim.c's
// sim_step/sim_step_scalar split exists because C's aligned allocator
// can fail and return NULL mid-tick; Go's make has no such recoverable
// failure mode for allocations of this size; there is no fallback path
// to port, and the scratch buffer is retained and only ever grown, so
// steady-state ticks do not allocate).
func (w *World) snapshotInto(active int) (snap []particle.Particle, handles []particle.Handle) {
	w.ensureScratch(active)
	i := 0
	it := w.Store.Iter()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		w.handles[i] = h
		w.snapshot[i] = *w.Store.Get(h)
		i++
	}
	return w.snapshot[:i], w.handles[:i]
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
