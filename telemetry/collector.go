package telemetry

import "math"

// Collector accumulates per-tick counters within a time window and
// produces a WindowStats when the window elapses.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	reaped             int
	collisionsResolved int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordReap accumulates particles reaped this tick.
func (c *Collector) RecordReap(n int) {
	c.reaped += n
}

// RecordCollisions accumulates collisions resolved this tick.
func (c *Collector) RecordCollisions(n int) {
	c.collisionsResolved += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next
// window. The caller supplies the current active count and a sample
// of particle speeds (e.g. from particle.Store.Iter) used to compute
// the speed distribution.
func (c *Collector) Flush(currentTick int32, activeCount int, speeds []float64) WindowStats {
	mean, p10, p50, p90 := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		ActiveCount: activeCount,
		ReapedCount: c.reaped,

		CollisionsResolved: c.collisionsResolved,

		SpeedMean: mean,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,
	}

	c.windowStartTick = currentTick
	c.reaped = 0
	c.collisionsResolved = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
