// Package integrate implements the semi-implicit Euler kinematic step
// over a contiguous particle slab, with a scalar reference
// implementation and a BLAS-vectorized fast path selected at runtime.
//
// Grounded on game/parallel.go's per-particle kinematic math
// (computeChunk) for the scalar reference, and on
// systems/simd_bench_test.go's blas32 AXPY/SCAL/COPY benchmarks for
// the vectorized path: gonum.org/v1/gonum/blas/blas32 batches the
// four per-component array operations (windx*dt, (gravity+windy)*dt,
// x+=vx*dt, y+=vy*dt) across the whole slab instead of looping
// per-particle, which is the lane-width-agnostic equivalent of SIMD
// dispatch in a language without compiler intrinsics.
package integrate

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/fieldglass/particle"
)

// Params are the per-step scalars the integrator applies uniformly to
// every particle.
type Params struct {
	WindX, WindY float32
	Gravity      float32
	DT           float32
}

// Mode identifies which implementation path last ran, for
// diagnostics and the P5 equivalence tests.
type Mode int

const (
	// ModeScalar is always available and is the numerical reference.
	ModeScalar Mode = iota
	// ModeVector uses gonum's blas32 routines across the whole slab.
	ModeVector
)

// minVectorBatch is the slab size below which BLAS call overhead
// outweighs its benefit; smaller batches run the scalar path.
const minVectorBatch = 64

// Select returns the mode the runtime capability probe would pick for
// a slab of the given size: ModeVector once the batch is large enough
// to amortize the BLAS call overhead, ModeScalar otherwise. This
// mirrors the spec's "runtime dispatch selects the best
// implementation" requirement without requiring CPU feature
// detection, since gonum's blas32 always has a working backend
// (pure-Go fallback or a linked native BLAS).
func Select(n int) Mode {
	if n >= minVectorBatch {
		return ModeVector
	}
	return ModeScalar
}

// StepScalar applies the integrator to every element of particles
// in-place, one at a time. It is the normative numerical reference
// (spec §4.2, §8 P5/P6) and must be correct for n == 0 (silent no-op,
// B6) and for NaN/Inf inputs (propagate, never panic).
func StepScalar(particles []particle.Particle, p Params) {
	for i := range particles {
		pt := &particles[i]
		pt.VX += p.WindX * p.DT
		pt.VY += (p.Gravity + p.WindY) * p.DT
		pt.X += pt.VX * p.DT
		pt.Y += pt.VY * p.DT
	}
}

// StepVector applies the same update using blas32 vector operations
// across four parallel component arrays, then scatters the results
// back into particles. scratch is reused across calls by the caller
// (the step coordinator's snapshot buffer) to avoid per-tick
// allocation; it is grown, never shrunk.
func StepVector(particles []particle.Particle, p Params, scratch *Scratch) {
	n := len(particles)
	if n == 0 {
		return
	}
	scratch.ensure(n)

	x, y, vx, vy := scratch.x[:n], scratch.y[:n], scratch.vx[:n], scratch.vy[:n]
	for i, pt := range particles {
		x[i], y[i], vx[i], vy[i] = pt.X, pt.Y, pt.VX, pt.VY
	}

	vVX := blas32.Vector{N: n, Inc: 1, Data: vx}
	vVY := blas32.Vector{N: n, Inc: 1, Data: vy}
	vX := blas32.Vector{N: n, Inc: 1, Data: x}
	vY := blas32.Vector{N: n, Inc: 1, Data: y}

	// vx += windx*dt broadcast: AXPY needs a vector operand, so we
	// fill a ones buffer scaled by windx*dt and add it in one pass.
	ones := scratch.ones[:n]
	for i := range ones {
		ones[i] = 1
	}
	vOnes := blas32.Vector{N: n, Inc: 1, Data: ones}

	blas32.Axpy(p.WindX*p.DT, vOnes, vVX)
	blas32.Axpy((p.Gravity+p.WindY)*p.DT, vOnes, vVY)

	blas32.Axpy(p.DT, vVX, vX)
	blas32.Axpy(p.DT, vVY, vY)

	for i := range particles {
		particles[i].X, particles[i].Y = x[i], y[i]
		particles[i].VX, particles[i].VY = vx[i], vy[i]
	}
}

// Step dispatches to the vector path when the slab is large enough to
// amortize it, otherwise runs the scalar reference directly.
func Step(particles []particle.Particle, p Params, scratch *Scratch) {
	if len(particles) == 0 {
		return
	}
	switch Select(len(particles)) {
	case ModeVector:
		StepVector(particles, p, scratch)
	default:
		StepScalar(particles, p)
	}
}

// Scratch holds the four parallel component buffers the vector path
// needs, grown monotonically and retained across ticks (spec §5:
// "the scratch SIMD buffer is owned by the simulation and reused
// across ticks; it is grown monotonically and never shrinks").
type Scratch struct {
	x, y, vx, vy, ones []float32
}

// NewScratch creates a scratch buffer with an initial capacity hint.
func NewScratch(capacityHint int) *Scratch {
	s := &Scratch{}
	s.ensure(capacityHint)
	return s
}

func (s *Scratch) ensure(n int) {
	if cap(s.x) >= n {
		s.x, s.y, s.vx, s.vy, s.ones = s.x[:n], s.y[:n], s.vx[:n], s.vy[:n], s.ones[:n]
		return
	}
	s.x = make([]float32, n)
	s.y = make([]float32, n)
	s.vx = make([]float32, n)
	s.vy = make([]float32, n)
	s.ones = make([]float32, n)
}

// Cap reports the current backing capacity, for diagnostics.
func (s *Scratch) Cap() int {
	return cap(s.x)
}
