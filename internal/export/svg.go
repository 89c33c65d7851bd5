package export

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
	"github.com/san-kum/pendant/internal/viz"
)

const background = "#0a0a0a"

func hex(c color.RGBA) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, ink color.RGBA) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.Dots()
	var sb strings.Builder
	header(&sb, float64(dw)*scale, float64(dh)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", hex(ink))

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds is a world-space box mapped onto a width x height image, y flipped.
type bounds struct {
	minX, minY, rangeX, rangeY float64
	width, height              float64
}

func fitBounds(points []chain.Vec2, pad float64, width, height int) bounds {
	minX, maxX := points[0][0], points[0][0]
	minY, maxY := points[0][1], points[0][1]
	for _, p := range points {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX*0.1 + pad
	maxX += rangeX*0.1 + pad
	minY -= rangeY*0.1 + pad
	maxY += rangeY*0.1 + pad

	return bounds{
		minX: minX, minY: minY,
		rangeX: maxX - minX, rangeY: maxY - minY,
		width: float64(width), height: float64(height),
	}
}

// uniform keeps the aspect ratio by growing the shorter world axis.
func (b bounds) uniform() bounds {
	sx, sy := b.rangeX/b.width, b.rangeY/b.height
	if sx > sy {
		grow := sx*b.height - b.rangeY
		b.minY -= grow / 2
		b.rangeY += grow
	} else {
		grow := sy*b.width - b.rangeX
		b.minX -= grow / 2
		b.rangeX += grow
	}
	return b
}

func (b bounds) point(p chain.Vec2) (float64, float64) {
	return (p[0] - b.minX) / b.rangeX * b.width, b.height - (p[1]-b.minY)/b.rangeY*b.height
}

func (b bounds) length(l float64) float64 { return l / b.rangeX * b.width }

// TrajectoryToSVG draws a polyline through points, e.g. a bob path.
func TrajectoryToSVG(points []chain.Vec2, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}

	b := fitBounds(points, 0, width, height)
	var sb strings.Builder
	header(&sb, b.width, b.height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)

	for i, p := range points {
		x, y := b.point(p)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// FrameStyle controls how FrameToSVG draws a chain.
type FrameStyle struct {
	Thickness float64 // world units
	BobRadius float64 // world units
	Chain     color.RGBA
	Bob       color.RGBA
}

func DefaultFrameStyle() FrameStyle {
	return FrameStyle{
		Thickness: chain.DefaultThickness,
		BobRadius: 12,
		Chain:     color.RGBA{R: 0xc8, G: 0xa0, B: 0x50, A: 0xff},
		Bob:       color.RGBA{R: 0xe0, G: 0xb0, B: 0x40, A: 0xff},
	}
}

// FrameToSVG draws one frame the way the interactive hosts do: every segment
// is a rect of its length and the style's thickness, centred on its midpoint
// and rotated by the smoothed angle. SVG is y-down, so angles are negated.
func FrameToSVG(f pendant.Frame, style FrameStyle, width, height int) string {
	if len(f.Nodes) == 0 {
		return ""
	}

	b := fitBounds(f.Nodes, style.BobRadius, width, height).uniform()
	var sb strings.Builder
	header(&sb, b.width, b.height)

	th := b.length(style.Thickness)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", hex(style.Chain))
	for _, seg := range f.Segments {
		cx, cy := b.point(seg.Midpoint)
		l := b.length(seg.Length)
		fmt.Fprintf(&sb, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" transform=\"rotate(%.2f %.2f %.2f)\"/>\n",
			cx-l/2, cy-th/2, l, th, -seg.Angle, cx, cy)
	}
	sb.WriteString("</g>\n")

	ax, ay := b.point(f.Nodes[0])
	fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\"/>\n", ax, ay, max(th, 1), hex(style.Chain))
	bx, by := b.point(f.Nodes[len(f.Nodes)-1])
	fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\"/>\n", bx, by, b.length(style.BobRadius), hex(style.Bob))

	sb.WriteString("</svg>")
	return sb.String()
}

// FrameFromNodes rebuilds a drawable frame from stored node positions. The
// angles are the raw link directions since stored runs keep no smoothing
// state.
func FrameFromNodes(t float64, nodes []chain.Vec2) pendant.Frame {
	f := pendant.Frame{Time: t, Nodes: nodes}
	if len(nodes) < 2 {
		return f
	}

	s := &chain.State{Nodes: make([]chain.Node, len(nodes)), Anchor: nodes[0]}
	for i, p := range nodes {
		s.Nodes[i] = chain.Node{Pos: p, Prev: p}
	}
	sm := chain.NewSmoother(1, 360)
	f.Segments = sm.Derive(s)
	f.Anchor = nodes[0]
	f.Bob = nodes[len(nodes)-1]
	return f
}
