package chain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a point or displacement in the y-up plane shared with the anchor
// source and the renderer.
type Vec2 = mgl64.Vec2

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{x, y} }

func finite(v Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) && !math.IsInf(v[0], 0) && !math.IsInf(v[1], 0)
}
