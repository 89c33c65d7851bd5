package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != brailleBase+0x1 {
		t.Errorf("cell 0 = %U, want %U", c.Grid[0][0], rune(brailleBase+0x1))
	}
	if c.Grid[0][1] != brailleBase+0x80 {
		t.Errorf("cell 1 = %U, want %U", c.Grid[0][1], rune(brailleBase+0x80))
	}
	if !c.IsSet(3, 3) || c.IsSet(2, 3) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != brailleBase {
		t.Errorf("cell 0 after Unset = %U", c.Grid[0][0])
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(5, 2)
	c.DrawLine(0, 0, 9, 7)

	if !c.IsSet(0, 0) || !c.IsSet(9, 7) {
		t.Error("line endpoints not set")
	}
	count := 0
	w, h := c.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.IsSet(x, y) {
				count++
			}
		}
	}
	if count != 10 {
		t.Errorf("expected 10 dots on a shallow line, got %d", count)
	}
}

func TestCanvasFillDisc(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillDisc(10, 10, 2)

	if !c.IsSet(10, 10) || !c.IsSet(12, 10) || !c.IsSet(10, 8) {
		t.Error("disc missing expected dots")
	}
	if c.IsSet(12, 12) {
		t.Error("corner outside radius was set")
	}
}

func TestCanvasStringAndResize(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 || len([]rune(lines[0])) != 3 {
		t.Errorf("unexpected layout %q", c.String())
	}

	c.Set(0, 0)
	c.Resize(4, 3)
	if c.Width != 4 || c.Height != 3 || c.IsSet(0, 0) {
		t.Error("resize should reallocate and clear")
	}
	if w, h := c.Dots(); w != 8 || h != 12 {
		t.Errorf("Dots() = %d,%d", w, h)
	}
}
