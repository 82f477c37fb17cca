// Package wind generates a smoothly time-varying wind vector for the
// simulation's integrator, layered on top of (not replacing) the
// configured constant wind.
//
// Grounded on systems/resource_field.go's use of
// github.com/ojrac/opensimplex-go for animated field generation: two
// independent noise channels sampled at the same advancing time
// coordinate but offset in space, so the X and Y components don't
// stay perfectly correlated.
package wind

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Generator produces a bounded, continuously varying (dx, dy) gust
// vector. Amplitude scales the noise output, Speed controls how
// quickly it evolves per simulated second (each Sample advances the
// noise clock by dt*Speed).
type Generator struct {
	noiseX opensimplex.Noise
	noiseY opensimplex.Noise

	amplitude float32
	speed     float64
	t         float64
}

// NewGenerator builds a Generator seeded deterministically so repeated
// runs with the same seed reproduce the same gusts.
func NewGenerator(seed int64, amplitude float32, speed float64) *Generator {
	return &Generator{
		noiseX: opensimplex.New(seed),
		// Offset the second channel's seed so X and Y don't move in lockstep.
		noiseY:    opensimplex.New(seed + 1013904223),
		amplitude: amplitude,
		speed:     speed,
	}
}

// Sample advances the generator's internal clock by dt and returns
// the gust vector for this tick.
func (g *Generator) Sample(dt float32) (dx, dy float32) {
	g.t += float64(dt) * g.speed
	dx = g.amplitude * float32(g.noiseX.Eval2(g.t, 0))
	dy = g.amplitude * float32(g.noiseY.Eval2(0, g.t))
	return dx, dy
}
