package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
)

// recorder collects canvas snapshots and writes them as an animated GIF.
type recorder struct {
	frames []*image.Paletted
	limit  int
}

const (
	dotW = 4
	dotH = 4
)

func newRecorder(limit int) *recorder {
	return &recorder{frames: make([]*image.Paletted, 0, 64), limit: limit}
}

func (r *recorder) Len() int { return len(r.frames) }

// Capture rasterizes the canvas, one dotW×dotH block per Braille dot. Frames
// beyond the limit are dropped.
func (r *recorder) Capture(c *Canvas, ink color.Color) {
	if r.limit > 0 && len(r.frames) >= r.limit {
		return
	}
	w, h := c.Dots()
	img := image.NewPaletted(image.Rect(0, 0, w*dotW, h*dotH), color.Palette{color.Black, ink})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save writes the frames at 50 fps and clears the recorder.
func (r *recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	r.frames = r.frames[:0]

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	return f.Close()
}
