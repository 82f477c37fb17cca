// Package camera maps simulation-world coordinates onto a fixed
// terminal viewport, so a world larger than the render grid can still
// be explored by panning and zooming.
//
// Grounded on camera/camera.go's viewport math; simplified for a
// bounded (non-toroidal) world, since sim.World clamps and reflects
// particles at its edges instead of wrapping them. GhostPositions and
// the toroidal-delta helpers that existed only to draw wrap-around
// copies have no meaning here and are dropped.
package camera

// Camera controls the viewport into the simulation world.
type Camera struct {
	X, Y float32

	Zoom float32

	ViewportW, ViewportH float32

	WorldW, WorldH float32

	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world at 1:1 zoom.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	minZoom := viewportW / worldW
	if alt := viewportH / worldH; alt > minZoom {
		minZoom = alt
	}

	return &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MinZoom:   minZoom,
		MaxZoom:   4.0,
	}
}

// WorldToScreen converts world coordinates to viewport cell coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx := wx - c.X
	dy := wy - c.Y
	sx = c.ViewportW/2 + dx*c.Zoom
	sy = c.ViewportH/2 + dy*c.Zoom
	return sx, sy
}

// ScreenToWorld converts viewport cell coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom
	return c.X + dx, c.Y + dy
}

// IsVisible reports whether a circle at (wx, wy) with the given radius
// could fall within the current viewport.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	dx := wx - c.X
	dy := wy - c.Y
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(dx) <= halfW && absf(dy) <= halfH
}

// Resize updates viewport dimensions and recomputes zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = viewportW / c.WorldW
	if alt := viewportH / c.WorldH; alt > c.MinZoom {
		c.MinZoom = alt
	}
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// Pan moves the camera center by a world-space delta, clamped so the
// viewport never looks past the world's edges.
func (c *Camera) Pan(dx, dy float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	c.X = clamp(c.X+dx, halfW, c.WorldW-halfW)
	c.Y = clamp(c.Y+dy, halfH, c.WorldH-halfH)
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to its default centered, unzoomed state.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the
// visible area as (minX, minY, maxX, maxY).
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, min, max float32) float32 {
	if max < min {
		return min
	}
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
