package bobimage

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestUniqueName(t *testing.T) {
	dir := t.TempDir()

	name, err := UniqueName(dir, "bob.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bob.png"), name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bob.png"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bob_1.png"), nil, 0644))

	name, err = UniqueName(dir, "bob.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bob_2.png"), name)
}

func TestImportCopiesAndResizes(t *testing.T) {
	src := filepath.Join(t.TempDir(), "wide.png")
	writePNG(t, src, 400, 200)

	p := &Provider{Dir: t.TempDir(), MaxSize: 100}
	res := p.ImportSync(context.Background(), src)
	require.NoError(t, res.Err)

	assert.Equal(t, filepath.Join(p.Dir, "wide.png"), res.Path)
	assert.FileExists(t, res.Path)
	assert.Equal(t, image.Pt(100, 50), res.Image.Bounds().Size())

	// a second import of the same name does not overwrite the first
	second := p.ImportSync(context.Background(), src)
	require.NoError(t, second.Err)
	assert.Equal(t, filepath.Join(p.Dir, "wide_1.png"), second.Path)
}

func TestImportAsync(t *testing.T) {
	src := filepath.Join(t.TempDir(), "small.png")
	writePNG(t, src, 16, 16)

	p := &Provider{Dir: t.TempDir(), MaxSize: 64}
	res, ok := <-p.Import(context.Background(), src)
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, image.Pt(16, 16), res.Image.Bounds().Size())

	ch := p.Import(context.Background(), "")
	res = <-ch
	assert.ErrorIs(t, res.Err, ErrEmptyPath)
	_, open := <-ch
	assert.False(t, open, "channel should be closed after one result")
}

func TestImportBMP(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bob.bmp")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, image.NewGray(image.Rect(0, 0, 8, 4))))
	require.NoError(t, f.Close())

	kind, err := Sniff(src)
	require.NoError(t, err)
	assert.Equal(t, "bmp", kind)

	p := &Provider{Dir: t.TempDir()}
	res := p.ImportSync(context.Background(), src)
	require.NoError(t, res.Err)
	assert.Equal(t, image.Pt(8, 4), res.Image.Bounds().Size())
}

func TestImportRejectsNonImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(src, []byte("definitely not an image"), 0644))

	p := &Provider{Dir: t.TempDir()}
	res := p.ImportSync(context.Background(), src)
	assert.ErrorIs(t, res.Err, ErrUnsupported)
	assert.Nil(t, res.Image)

	entries, err := os.ReadDir(p.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected files must not be copied")
}

func TestImportCanceled(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bob.png")
	writePNG(t, src, 4, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Provider{Dir: t.TempDir()}
	res := p.ImportSync(ctx, src)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestImportMissingFile(t *testing.T) {
	p := &Provider{Dir: t.TempDir()}
	res := p.ImportSync(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
}

func TestFit(t *testing.T) {
	tall := image.NewRGBA(image.Rect(0, 0, 50, 300))
	assert.Equal(t, image.Pt(25, 150), Fit(tall, 150).Bounds().Size())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, Fit(small, 150))
	assert.Same(t, tall, Fit(tall, 0))
}

func TestDefault(t *testing.T) {
	img := Default(32)
	assert.Equal(t, image.Pt(32, 32), img.Bounds().Size())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corner should be transparent")
	assert.Equal(t, color.RGBAModel.Convert(DefaultColor), color.RGBAModel.Convert(img.At(16, 16)))

	assert.Equal(t, DefaultColor, AverageColor(img))
	assert.Equal(t, color.RGBA{}, AverageColor(image.NewRGBA(image.Rect(0, 0, 4, 4))))
}
