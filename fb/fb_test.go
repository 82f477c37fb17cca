package fb

import (
	"strings"
	"testing"
)

func TestNewRejectsNonPositiveDimensions(t *testing.T) {
	if _, err := New(0, 10); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := New(10, -1); err == nil {
		t.Fatal("expected error for negative height")
	}
}

func TestClearFillsDefaults(t *testing.T) {
	f, _ := New(3, 3)
	cell, ok := f.At(1, 1)
	if !ok {
		t.Fatal("expected in-bounds read")
	}
	if cell.Glyph != ' ' || cell.Color != DefaultBackground {
		t.Fatalf("cell = %+v, want default", cell)
	}
}

// TestPlotReadBackRoundTrip covers R2: plot followed by read-back
// yields the same cell iff (x,y) is in bounds.
func TestPlotReadBackRoundTrip(t *testing.T) {
	f, _ := New(5, 5)
	f.Plot(2, 3, 'X', 0xFF0000)

	cell, ok := f.At(2, 3)
	if !ok || cell.Glyph != 'X' || cell.Color != 0xFF0000 {
		t.Fatalf("read-back = %+v,%v want X,0xFF0000,true", cell, ok)
	}
}

// TestPlotOutOfBoundsIsNoOp covers B4.
func TestPlotOutOfBoundsIsNoOp(t *testing.T) {
	f, _ := New(5, 5)
	f.Plot(-1, 0, 'X', 0xFF0000)
	f.Plot(0, -1, 'X', 0xFF0000)
	f.Plot(5, 0, 'X', 0xFF0000)
	f.Plot(0, 5, 'X', 0xFF0000)

	if _, ok := f.At(-1, 0); ok {
		t.Fatal("expected out-of-bounds read to report false")
	}
	// Nothing in-bounds should have been touched by the out-of-bounds
	// plots above.
	cell, _ := f.At(0, 0)
	if cell.Glyph != ' ' {
		t.Fatalf("in-bounds cell mutated by out-of-bounds plot: %+v", cell)
	}
}

func TestTextClipsAtRightEdge(t *testing.T) {
	f, _ := New(5, 1)
	f.Text(3, 0, "HELLO", 0x00FF00)

	c0, _ := f.At(3, 0)
	c1, _ := f.At(4, 0)
	if c0.Glyph != 'H' || c1.Glyph != 'E' {
		t.Fatalf("expected clipped H,E got %c,%c", c0.Glyph, c1.Glyph)
	}
}

func TestTextAllowsNegativeStartClippingLeadingRunes(t *testing.T) {
	f, _ := New(5, 1)
	f.Text(-2, 0, "HELLO", 0x00FF00)

	c0, _ := f.At(0, 0)
	if c0.Glyph != 'L' {
		t.Fatalf("expected third rune L at column 0, got %c", c0.Glyph)
	}
}

// TestFlushHomesCursorOnce covers the cursor-home contract.
func TestFlushHomesCursorOnce(t *testing.T) {
	f, _ := New(2, 2)
	var buf strings.Builder
	if err := f.Flush(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\033[H") {
		t.Fatalf("expected output to start with cursor-home escape, got %q", out[:10])
	}
	if strings.Count(out, "\033[H") != 1 {
		t.Fatalf("expected exactly one cursor-home escape, got %d", strings.Count(out, "\033[H"))
	}
}

// TestRowCompressionEmitsOneEscape covers scenario 5: a 10-wide row of
// uniformly colored glyphs emits exactly one truecolor escape for that
// row, the 10 glyphs, and one newline.
func TestRowCompressionEmitsOneEscape(t *testing.T) {
	f, _ := New(10, 1)
	glyphs := "ABCDEFGHIJ"
	for i, r := range glyphs {
		f.Plot(i, 0, r, 0xFF0000)
	}

	var buf strings.Builder
	if err := f.Flush(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	escape := "\033[38;2;255;0;0m"
	if strings.Count(out, escape) != 1 {
		t.Fatalf("expected exactly one color escape, got %d in %q", strings.Count(out, escape), out)
	}
	want := "\033[H" + escape + glyphs + "\n"
	if out != want {
		t.Fatalf("flush output = %q, want %q", out, want)
	}
}

// TestColorChangeWithinRowEmitsNewEscape ensures compression does not
// over-suppress: a color change mid-row must emit a fresh escape.
func TestColorChangeWithinRowEmitsNewEscape(t *testing.T) {
	f, _ := New(4, 1)
	f.Plot(0, 0, 'A', 0xFF0000)
	f.Plot(1, 0, 'B', 0xFF0000)
	f.Plot(2, 0, 'C', 0x00FF00)
	f.Plot(3, 0, 'D', 0x00FF00)

	var buf strings.Builder
	_ = f.Flush(&buf)
	out := buf.String()

	if strings.Count(out, "\033[38;2;255;0;0m") != 1 {
		t.Fatalf("expected one red escape, got: %q", out)
	}
	if strings.Count(out, "\033[38;2;0;255;0m") != 1 {
		t.Fatalf("expected one green escape, got: %q", out)
	}
}
