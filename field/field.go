// Package field implements the force-field variants and the
// per-particle applicator described in the original simulation's
// force field model (radial, directional, vortex, attractor).
//
// Grounded on original_source/src/forcefield.h's ForceField/
// ForceFieldManager: same four variants and per-field (strength,
// radius, active) shape, generalized from a fixed MAX_FORCE_FIELDS
// array to a growable Go slice, and with the directional variant's
// radius-as-angle overload replaced by an explicit unit direction
// vector normalized once at construction (the forcefield.h source
// reused radius to carry an angle in radians for FIELD_DIRECTIONAL,
// which collides with every other variant's use of radius as an
// effective range; this field carries direction = (dx, dy) instead).
package field

import (
	"math"

	"github.com/pthm-cable/fieldglass/particle"
)

// Kind tags which force law a Field applies.
type Kind uint8

const (
	Radial Kind = iota
	Directional
	Vortex
	Attractor
)

func (k Kind) String() string {
	switch k {
	case Radial:
		return "radial"
	case Directional:
		return "directional"
	case Vortex:
		return "vortex"
	case Attractor:
		return "attractor"
	default:
		return "unknown"
	}
}

// Field is a tagged force-field variant. CenterX/CenterY and Radius
// are meaningful for Radial, Vortex, and Attractor; DirX/DirY are
// meaningful only for Directional, and are unit length by the time
// New returns the field.
type Field struct {
	Kind     Kind
	CenterX  float32
	CenterY  float32
	Strength float32
	Radius   float32
	DirX     float32
	DirY     float32
	Active   bool
}

// NewRadial builds a radial field that pulls or pushes depending on
// the sign of strength, zero outside radius.
func NewRadial(centerX, centerY, strength, radius float32) Field {
	return Field{Kind: Radial, CenterX: centerX, CenterY: centerY, Strength: strength, Radius: radius, Active: true}
}

// NewDirectional builds a uniform field along (dx, dy), normalized to
// a unit vector at construction so the stored direction is
// unambiguous regardless of the caller's input magnitude. A
// zero-length direction degrades to no force rather than a NaN split.
func NewDirectional(dx, dy, strength float32) Field {
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 1e-8 {
		return Field{Kind: Directional, Strength: strength, Active: true}
	}
	return Field{Kind: Directional, DirX: dx / length, DirY: dy / length, Strength: strength, Active: true}
}

// NewVortex builds a vortex field producing tangential motion around
// (centerX, centerY), zero outside radius.
func NewVortex(centerX, centerY, strength, radius float32) Field {
	return Field{Kind: Vortex, CenterX: centerX, CenterY: centerY, Strength: strength, Radius: radius, Active: true}
}

// NewAttractor builds an inverse-square attractor around (centerX,
// centerY). Unlike Radial, Attractor has no radius cutoff; its
// inverse-square falloff with softening is cutoff enough at range.
func NewAttractor(centerX, centerY, strength float32) Field {
	return Field{Kind: Attractor, CenterX: centerX, CenterY: centerY, Strength: strength, Active: true}
}

// applyTo computes the field's velocity delta for one particle
// position, per spec §4.4, and returns (dvx, dvy). The caller scales
// by dt.
func (f *Field) applyTo(x, y float32) (dvx, dvy float32) {
	if !f.Active {
		return 0, 0
	}

	switch f.Kind {
	case Directional:
		return f.DirX * f.Strength, f.DirY * f.Strength

	case Radial:
		dx, dy := x-f.CenterX, y-f.CenterY
		d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if d > f.Radius || d < 1e-8 {
			return 0, 0
		}
		force := f.Strength / (1 + 0.1*d)
		return (dx / d) * force, (dy / d) * force

	case Vortex:
		dx, dy := x-f.CenterX, y-f.CenterY
		d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if d > f.Radius || d < 1e-8 {
			return 0, 0
		}
		force := f.Strength / (1 + 0.05*d)
		return (-dy / d) * force, (dx / d) * force

	case Attractor:
		dx, dy := f.CenterX-x, f.CenterY-y
		distSq := dx*dx + dy*dy
		if distSq < 1 {
			return 0, 0
		}
		d := float32(math.Sqrt(float64(distSq)))
		force := f.Strength / distSq
		return (dx / d) * force, (dy / d) * force

	default:
		return 0, 0
	}
}

// Manager owns an ordered collection of fields and applies them to a
// particle slab. Field effects accumulate in addition order, matching
// the original's array-order application.
type Manager struct {
	fields []Field
}

// NewManager returns an empty field manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add appends a field and returns its index, usable with Remove.
func (m *Manager) Add(f Field) int {
	m.fields = append(m.fields, f)
	return len(m.fields) - 1
}

// Remove deactivates and compacts out the field at index, silently
// ignoring an out-of-range index.
func (m *Manager) Remove(index int) {
	if index < 0 || index >= len(m.fields) {
		return
	}
	m.fields = append(m.fields[:index], m.fields[index+1:]...)
}

// Clear drops every field.
func (m *Manager) Clear() {
	m.fields = m.fields[:0]
}

// Count returns the number of fields currently held, active or not.
func (m *Manager) Count() int {
	return len(m.fields)
}

// At returns the field at index for inspection, and whether index was
// in range.
func (m *Manager) At(index int) (Field, bool) {
	if index < 0 || index >= len(m.fields) {
		return Field{}, false
	}
	return m.fields[index], true
}

// Apply accumulates every active field's contribution into each
// particle's velocity, scaled by dt. Particles are iterated in the
// outer loop and fields in the inner loop so the slab is walked once,
// cache-friendly for the common case of few fields and many
// particles.
func (m *Manager) Apply(particles []particle.Particle, dt float32) {
	for i := range particles {
		p := &particles[i]
		var dvx, dvy float32
		for fi := range m.fields {
			fdx, fdy := m.fields[fi].applyTo(p.X, p.Y)
			dvx += fdx
			dvy += fdy
		}
		p.VX += dvx * dt
		p.VY += dvy * dt
	}
}
