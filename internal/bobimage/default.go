package bobimage

import (
	"image"
	"image/color"
)

// DefaultColor is the fill of the built-in bob.
var DefaultColor = color.RGBA{R: 0xe0, G: 0xb0, B: 0x40, A: 0xff}

// Default draws the built-in bob: a filled disc of the given diameter on a
// transparent background.
func Default(size int) image.Image {
	if size < 1 {
		size = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, DefaultColor)
			}
		}
	}
	return img
}

// AverageColor returns the alpha-weighted mean colour of img, used by hosts
// that can only tint rather than draw the bob.
func AverageColor(img image.Image) color.RGBA {
	var r, g, b, a uint64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, ca := img.At(x, y).RGBA()
			r += uint64(cr)
			g += uint64(cg)
			b += uint64(cb)
			a += uint64(ca)
		}
	}
	if a == 0 {
		return color.RGBA{}
	}
	// premultiplied sums divided by total alpha give straight colour
	return color.RGBA{
		R: uint8(r * 0xff / a),
		G: uint8(g * 0xff / a),
		B: uint8(b * 0xff / a),
		A: 0xff,
	}
}
