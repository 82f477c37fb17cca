// Package fb implements a fixed-size color framebuffer and its
// row-coalesced truecolor ANSI flush. The framebuffer holds a single
// cell grid; there is no separate back buffer to swap.
//
// Grounded on original_source/src/render.c's renderer_flush: per-row
// scratch buffer, a color escape emitted only when the color changes
// from the previous cell in the row, one write call per row, and
// cursor-home before the first row. The per-row strings.Builder idiom
// (instead of render.c's raw char buffer + snprintf) is grounded on
// arx-os-arxos/cmd/ascii/interactive_viewer.go's ANSI-escape-via-
// strings.Builder rendering.
package fb

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm-cable/fieldglass/simerr"
)

// Color is a packed 24-bit RGB value, 0xRRGGBB.
type Color uint32

// DefaultBackground matches the spec's clear() fill color.
const DefaultBackground Color = 0x202020

func (c Color) components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Cell is one framebuffer position's glyph and color.
type Cell struct {
	Glyph rune
	Color Color
}

// Framebuffer is a fixed (Width, Height) grid of cells. Its
// dimensions are immutable for its lifetime (global invariant 5).
type Framebuffer struct {
	width, height int
	cells         []Cell
	rowBuf        strings.Builder
}

// New constructs a Framebuffer of the given dimensions, rejecting
// non-positive sizes.
func New(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, simerr.New(simerr.InvalidParameter, "fb.New", "framebuffer dimensions must be positive")
	}
	fbuf := &Framebuffer{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	fbuf.Clear()
	return fbuf, nil
}

// Width reports the framebuffer's fixed width.
func (f *Framebuffer) Width() int { return f.width }

// Height reports the framebuffer's fixed height.
func (f *Framebuffer) Height() int { return f.height }

// Clear fills every cell with a space glyph and the default
// background color.
func (f *Framebuffer) Clear() {
	for i := range f.cells {
		f.cells[i] = Cell{Glyph: ' ', Color: DefaultBackground}
	}
}

// Plot sets the glyph and color at (x, y), silently ignoring
// out-of-bounds coordinates (B4).
func (f *Framebuffer) Plot(x, y int, glyph rune, color Color) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.cells[y*f.width+x] = Cell{Glyph: glyph, Color: color}
}

// At reads back the cell at (x, y), and whether (x, y) was in bounds
// (R2: plot followed by read-back yields the same cell iff in
// bounds).
func (f *Framebuffer) At(x, y int) (Cell, bool) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return Cell{}, false
	}
	return f.cells[y*f.width+x], true
}

// Text plots s left-to-right starting at (x, y), clipping at the
// right edge; a negative starting x is allowed and simply clips the
// leading runes that would fall before column 0.
func (f *Framebuffer) Text(x, y int, s string, color Color) {
	col := x
	for _, r := range s {
		f.Plot(col, y, r, color)
		col++
		if col >= f.width {
			return
		}
	}
}

// Flush renders the framebuffer to w as a stream of ANSI truecolor
// escapes, row-major and top-to-bottom. The cursor is homed once
// before the first row; within a row, a truecolor escape is emitted
// only when the color differs from the previous cell, and the first
// cell of each row always emits one. Each row is assembled in a
// single reused scratch buffer and written in one call to w.
func (f *Framebuffer) Flush(w io.Writer) error {
	if _, err := io.WriteString(w, "\033[H"); err != nil {
		return simerr.Wrap(simerr.System, "fb.Flush", "cursor home write failed", err)
	}

	for y := 0; y < f.height; y++ {
		f.rowBuf.Reset()
		var lastColor Color = 0xFFFFFFFF // invalid, forces the first escape

		for x := 0; x < f.width; x++ {
			cell := f.cells[y*f.width+x]
			if cell.Color != lastColor {
				r, g, b := cell.Color.components()
				fmt.Fprintf(&f.rowBuf, "\033[38;2;%d;%d;%dm", r, g, b)
				lastColor = cell.Color
			}
			f.rowBuf.WriteRune(cell.Glyph)
		}
		f.rowBuf.WriteByte('\n')

		if _, err := io.WriteString(w, f.rowBuf.String()); err != nil {
			return simerr.Wrap(simerr.System, "fb.Flush", "row write failed", err)
		}
	}
	return nil
}
