package pendant

import (
	"context"
	"image"

	"github.com/san-kum/pendant/internal/bobimage"
)

// Importer loads a user image asynchronously; bobimage.Provider is the
// standard one.
type Importer interface {
	Import(ctx context.Context, src string) <-chan bobimage.Result
}

// Bindings are the callbacks a host connects to its own input events.
type Bindings struct {
	OnUpload func(path string)
	OnReset  func()
}

func (p *Pendant) BobImage() image.Image { return p.bob }

func (p *Pendant) SetBobImage(img image.Image) {
	if img == nil {
		return
	}
	p.bob = img
	p.imageDirty = true
}

// ResetBobImage goes back to the default image and drops imports still in
// flight.
func (p *Pendant) ResetBobImage() error {
	if p.defaultBob == nil {
		p.log.Error("cannot reset bob image", "err", ErrNoDefaultImage)
		return ErrNoDefaultImage
	}
	p.pending = nil
	p.bob = p.defaultBob
	p.imageDirty = true
	return nil
}

// Upload starts importing src. The image is applied by a later Tick (or
// PollImages) once the import finishes; a failed import leaves the bob as it
// was.
func (p *Pendant) Upload(ctx context.Context, im Importer, src string) {
	p.pending = append(p.pending, im.Import(ctx, src))
}

// PollImages applies finished imports and reports whether the bob image
// changed. When several finish together the most recently started wins, and
// older imports still in flight are dropped.
func (p *Pendant) PollImages() bool { return p.collectImages() }

// Pending returns the number of imports not yet finished.
func (p *Pendant) Pending() int { return len(p.pending) }

func (p *Pendant) collectImages() bool {
	if len(p.pending) == 0 {
		return false
	}

	newest := -1
	var img image.Image
	done := make([]bool, len(p.pending))
	for i, ch := range p.pending {
		select {
		case res, ok := <-ch:
			done[i] = true
			if ok && res.Err == nil && res.Image != nil {
				newest, img = i, res.Image
			}
		default:
		}
	}

	var keep []<-chan bobimage.Result
	for i, ch := range p.pending {
		if !done[i] && i > newest {
			keep = append(keep, ch)
		}
	}
	p.pending = keep

	if img == nil {
		return false
	}
	p.SetBobImage(img)
	return true
}

// Bindings returns the upload and reset callbacks for a host. Reset errors
// are already logged.
func (p *Pendant) Bindings(ctx context.Context, im Importer) Bindings {
	return Bindings{
		OnUpload: func(path string) { p.Upload(ctx, im, path) },
		OnReset:  func() { _ = p.ResetBobImage() },
	}
}
