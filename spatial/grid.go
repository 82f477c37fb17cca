// Package spatial provides a uniform 2-D bucketing grid over the
// active particle slab, used for O(n) neighborhood queries by the
// collision resolver.
//
// Grounded on systems/spatial.go's SpatialGrid, generalized from
// borrowed ECS entity references and toroidal wrap to the spec's
// bounded rectangle world addressed by particle.Handle, and from
// systems/spatial.go's QueryRadiusInto append-into-dst idiom.
package spatial

import (
	"math"

	"github.com/pthm-cable/fieldglass/particle"
	"github.com/pthm-cable/fieldglass/simerr"
)

// Grid owns non-owning references into a particle.Store; its
// lifetime must not outlive the store, and it is rebuilt from scratch
// before each query phase so references only need to survive one
// phase.
type Grid struct {
	cellSize       float32
	cols, rows     int
	width, height  float32
	cells          [][]particle.Handle
}

// New constructs a grid covering world (width, height) with target
// cell size cellSize. rows/cols are at least 2x2 per the spec.
// Rejects non-positive world or cell size (B5).
func New(width, height, cellSize float32) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, simerr.New(simerr.InvalidParameter, "spatial.New", "world dimensions must be positive")
	}
	if cellSize <= 0 {
		return nil, simerr.New(simerr.InvalidParameter, "spatial.New", "cell size must be positive")
	}

	cols := int(math.Ceil(float64(width / cellSize)))
	rows := int(math.Ceil(float64(height / cellSize)))
	if cols < 2 {
		cols = 2
	}
	if rows < 2 {
		rows = 2
	}

	cells := make([][]particle.Handle, cols*rows)
	for i := range cells {
		cells[i] = make([]particle.Handle, 0, 8)
	}

	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}, nil
}

// Clear empties every cell in O(cells), retaining their backing
// arrays so per-cell growth amortizes across ticks.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert places a handle into the cell its position falls in. Cells
// grow geometrically (Go's append doubling) when full.
func (g *Grid) Insert(h particle.Handle, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], h)
}

// Rebuild clears the grid and reinserts every occupied particle from
// store. This is the per-tick entry point the step coordinator calls
// before handing the grid to the collision resolver.
func Rebuild(g *Grid, store *particle.Store) {
	g.Clear()
	it := store.Iter()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		p := store.Get(h)
		g.Insert(h, p.X, p.Y)
	}
}

func (g *Grid) cellIndex(x, y float32) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}

func (g *Grid) colRow(x, y float32) (col, row int) {
	col = int(x / g.cellSize)
	row = int(y / g.cellSize)
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// NeighborsInto appends the handles found in the 3x3 block of cells
// around (x,y) to dst and returns the updated slice, avoiding
// allocation when dst has spare capacity. This is the primary
// collision query.
func (g *Grid) NeighborsInto(dst []particle.Handle, x, y float32) []particle.Handle {
	centerCol, centerRow := g.colRow(x, y)
	for dc := -1; dc <= 1; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -1; dr <= 1; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// RadiusQueryInto appends handles from every cell intersecting the
// disk of radius r around (x,y), filtered by squared distance, to dst.
func (g *Grid) RadiusQueryInto(dst []particle.Handle, store *particle.Store, x, y, r float32) []particle.Handle {
	cellRadiusCols := int(r/g.cellSize) + 1
	cellRadiusRows := int(r/g.cellSize) + 1
	centerCol, centerRow := g.colRow(x, y)
	radiusSq := r * r

	for dc := -cellRadiusCols; dc <= cellRadiusCols; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadiusRows; dr <= cellRadiusRows; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, h := range g.cells[row*g.cols+col] {
				p := store.Get(h)
				dx, dy := p.X-x, p.Y-y
				if dx*dx+dy*dy <= radiusSq {
					dst = append(dst, h)
				}
			}
		}
	}
	return dst
}

// Stats summarizes occupancy for diagnostics.
type Stats struct {
	TotalCells    int
	OccupiedCells int
	MinPerCell    int
	MaxPerCell    int
	AvgPerCell    float64
	Total         int
}

// Stats computes occupancy statistics in O(cells).
func (g *Grid) Stats() Stats {
	s := Stats{TotalCells: len(g.cells)}
	min := -1
	for _, cell := range g.cells {
		n := len(cell)
		if n == 0 {
			continue
		}
		s.OccupiedCells++
		s.Total += n
		if min == -1 || n < min {
			min = n
		}
		if n > s.MaxPerCell {
			s.MaxPerCell = n
		}
	}
	if min == -1 {
		min = 0
	}
	s.MinPerCell = min
	if s.OccupiedCells > 0 {
		s.AvgPerCell = float64(s.Total) / float64(s.OccupiedCells)
	}
	return s
}

// Dims returns the grid's cell layout for diagnostics and tests.
func (g *Grid) Dims() (cols, rows int, cellSize float32) {
	return g.cols, g.rows, g.cellSize
}
