package analysis

import (
	"strings"

	"github.com/san-kum/pendant/internal/chain"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds (offset, velocity) pairs of the bob.
type PhasePortrait struct {
	Points []Point
}

// BobPhase pairs the bob's horizontal offset from the anchor with its
// horizontal velocity, by finite difference over consecutive frames.
func BobPhase(times []float64, anchors, bob []chain.Vec2) *PhasePortrait {
	offsets := Offsets(anchors, bob)
	n := min(len(offsets), len(times))

	portrait := &PhasePortrait{Points: make([]Point, 0, n)}
	for i := 1; i < n; i++ {
		dt := times[i] - times[i-1]
		if dt <= 0 {
			continue
		}
		v := (bob[i][0] - bob[i-1][0]) / dt
		portrait.Points = append(portrait.Points, Point{X: offsets[i], Y: v})
	}
	return portrait
}

// Crossings returns the interpolated times at which signal rises through
// zero.
func Crossings(times, signal []float64) []float64 {
	n := min(len(times), len(signal))
	var out []float64
	for i := 1; i < n; i++ {
		a, b := signal[i-1], signal[i]
		if a < 0 && b >= 0 {
			frac := -a / (b - a)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// MeanPeriod averages the spacing of successive crossings. It returns 0 with
// fewer than two crossings.
func MeanPeriod(crossings []float64) float64 {
	if len(crossings) < 2 {
		return 0
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1)
}

// ToASCII plots the portrait on a width×height character grid with axes
// where they fall inside the view.
func (p *PhasePortrait) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if c := col(0); c >= 0 && c < width {
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if r := row(0); r >= 0 && r < height {
		for c := range grid[r] {
			if grid[r][c] == '│' {
				grid[r][c] = '┼'
			} else {
				grid[r][c] = '─'
			}
		}
	}
	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}
