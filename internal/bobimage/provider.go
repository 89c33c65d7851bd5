// Package bobimage imports user images for the pendant's bob and supplies
// the built-in default.
//
// Imported files are copied into a per-user directory under a unique name,
// sniffed by content, decoded and downsized. Import runs on its own goroutine
// and reports through a channel so that hosts can apply the result from the
// goroutine that owns the pendant.
package bobimage

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultDir is where imported images are kept unless Provider.Dir is set.
const DefaultDir = "~/.pendant/UserImages"

// DefaultMaxSize bounds the larger side of an imported image, in pixels.
const DefaultMaxSize = 256

var (
	// ErrUnsupported is returned for files that are not png, jpeg, bmp or webp.
	ErrUnsupported = errors.New("bobimage: unsupported image type")

	// ErrEmptyPath is returned when no source file was given.
	ErrEmptyPath = errors.New("bobimage: empty source path")
)

// Supported lists the accepted content types by extension.
var Supported = map[string]bool{
	"png":  true,
	"jpg":  true,
	"bmp":  true,
	"webp": true,
}

// Result is the outcome of one Import.
type Result struct {
	Image image.Image
	Path  string // the stored copy
	Err   error
}

type Provider struct {
	Dir     string
	MaxSize int
	Logger  *slog.Logger
}

func NewProvider(dir string) *Provider {
	return &Provider{Dir: dir, MaxSize: DefaultMaxSize}
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Directory returns the expanded storage directory, creating it if needed.
func (p *Provider) Directory() (string, error) {
	dir := p.Dir
	if dir == "" {
		dir = DefaultDir
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("expand image dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	return dir, nil
}

// Import copies src into the storage directory and loads it. The returned
// channel receives exactly one Result and is then closed.
func (p *Provider) Import(ctx context.Context, src string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		res := p.ImportSync(ctx, src)
		if res.Err != nil {
			p.logger().Error("failed to load bob image", "src", src, "err", res.Err)
		} else {
			p.logger().Info("bob image loaded", "path", res.Path)
		}
		out <- res
	}()
	return out
}

// ImportSync is Import without the goroutine.
func (p *Provider) ImportSync(ctx context.Context, src string) Result {
	if strings.TrimSpace(src) == "" {
		return Result{Err: ErrEmptyPath}
	}
	src, err := homedir.Expand(src)
	if err != nil {
		return Result{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}

	kind, err := Sniff(src)
	if err != nil {
		return Result{Err: err}
	}

	dir, err := p.Directory()
	if err != nil {
		return Result{Err: err}
	}
	dst, err := UniqueName(dir, filepath.Base(src))
	if err != nil {
		return Result{Err: err}
	}
	if err := copyFile(src, dst); err != nil {
		return Result{Err: fmt.Errorf("copy %s: %w", kind, err)}
	}
	p.logger().Info("image saved", "path", dst)

	if err := ctx.Err(); err != nil {
		return Result{Path: dst, Err: err}
	}

	img, err := Load(dst, p.MaxSize)
	if err != nil {
		return Result{Path: dst, Err: err}
	}
	return Result{Image: img, Path: dst}
}

// Sniff reads the file header and returns its extension if it is a
// supported image type.
func Sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown || !Supported[kind.Extension] {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
	return kind.Extension, nil
}

// Load decodes an image file and downsizes it so neither side exceeds
// maxSize. A maxSize of 0 keeps the original size.
func Load(path string, maxSize int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return Fit(img, maxSize), nil
}

// Fit scales img so its larger side is at most maxSize, keeping the aspect
// ratio.
func Fit(img image.Image, maxSize int) image.Image {
	sz := img.Bounds().Size()
	if maxSize <= 0 || (sz.X <= maxSize && sz.Y <= maxSize) {
		return img
	}
	w, h := maxSize, maxSize
	if sz.X > sz.Y {
		h = max(1, sz.Y*maxSize/sz.X)
	} else {
		w = max(1, sz.X*maxSize/sz.Y)
	}
	return transform.Resize(img, w, h, transform.Linear)
}

// UniqueName returns a path in dir for name that does not exist yet, adding
// _1, _2, ... before the extension as needed.
func UniqueName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	path := filepath.Join(dir, name)
	for i := 1; ; i++ {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, base+"_"+strconv.Itoa(i)+ext)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
