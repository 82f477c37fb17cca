// Package collide implements pairwise, impulse-based, equal-mass
// elastic collision resolution over a spatial grid's neighborhoods.
//
// Grounded on original_source/src/physics.c's
// resolve_particle_collision/physics_resolve_collisions: same impulse
// law and separation step, generalized from raw *Particle pointer
// comparison (used there only as a stable ordering proxy for the
// stable particles array) to an explicit particle.Handle ordering,
// which is the idiomatic Go equivalent once particles are addressed
// by handle rather than pointer.
package collide

import (
	"math"

	"github.com/pthm-cable/fieldglass/particle"
	"github.com/pthm-cable/fieldglass/spatial"
)

// Settings controls the resolver's physical response. Zero value is
// not usable; use DefaultSettings.
type Settings struct {
	Radius      float32
	Restitution float32
	Friction    float32
	Enabled     bool
}

// DefaultSettings matches the defaults named in the spec: a 1-unit
// collision radius, near-elastic restitution, and light friction.
func DefaultSettings() Settings {
	return Settings{Radius: 1, Restitution: 0.8, Friction: 0.95, Enabled: true}
}

// Resolve checks every active particle against its 3x3 grid
// neighborhood and resolves overlapping pairs in place, returning the
// number of contacts resolved. grid must already be rebuilt for the
// current tick with a cell size >= 2*Radius (the caller's
// responsibility; see sim's step coordinator). Each unordered pair is
// visited exactly once via strict handle ordering (handle(p2) >
// handle(p1)), so the resolved count does not depend on slab scan
// direction (P7).
func Resolve(store *particle.Store, grid *spatial.Grid, settings Settings) int {
	if !settings.Enabled {
		return 0
	}

	minDist := settings.Radius * 2
	minDistSq := minDist * minDist

	resolved := 0
	var neighbors []particle.Handle

	it := store.Iter()
	for {
		h1, ok := it.Next()
		if !ok {
			break
		}
		p1 := store.Get(h1)

		neighbors = neighbors[:0]
		neighbors = grid.NeighborsInto(neighbors, p1.X, p1.Y)

		for _, h2 := range neighbors {
			if h2 <= h1 {
				continue
			}
			p2 := store.Get(h2)
			if resolvePair(p1, p2, minDist, minDistSq, settings) {
				resolved++
			}
		}
	}
	return resolved
}

// resolvePair applies the impulse-based elastic response between p1
// and p2 if they overlap and are approaching, returning whether a
// contact was resolved.
func resolvePair(p1, p2 *particle.Particle, minDist, minDistSq float32, settings Settings) bool {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	distSq := dx*dx + dy*dy

	if distSq >= minDistSq || distSq < 0.0001 {
		return false
	}

	dist := float32(math.Sqrt(float64(distSq)))
	nx := dx / dist
	ny := dy / dist

	dvx := p2.VX - p1.VX
	dvy := p2.VY - p1.VY
	dvn := dvx*nx + dvy*ny

	if dvn >= 0 {
		// Separating, nothing to resolve.
		return false
	}

	impulse := -(1 + settings.Restitution) * dvn / 2

	p1.VX -= impulse * nx * settings.Friction
	p1.VY -= impulse * ny * settings.Friction
	p2.VX += impulse * nx * settings.Friction
	p2.VY += impulse * ny * settings.Friction

	overlap := minDist - dist
	separation := overlap * 0.5

	p1.X -= nx * separation
	p1.Y -= ny * separation
	p2.X += nx * separation
	p2.Y += ny * separation

	return true
}
