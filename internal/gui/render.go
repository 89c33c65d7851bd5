package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/pendant/internal/chain"
)

// reloadTexture uploads the pendant's current bob image to the GPU.
func (a *App) reloadTexture() {
	if a.hasTex {
		rl.UnloadTexture(a.bobTex)
		a.hasTex = false
	}
	img := a.P.BobImage()
	if img == nil {
		return
	}
	rimg := rl.NewImageFromImage(img)
	a.bobTex = rl.LoadTextureFromImage(rimg)
	rl.UnloadImage(rimg)
	rl.SetTextureFilter(a.bobTex, rl.FilterBilinear)
	a.hasTex = true
}

// drawChain draws each link as a rectangle of its length and the configured
// thickness, centred on its midpoint. Screen space is y-down, so the
// smoothed angle is negated.
func (a *App) drawChain() {
	thick := float32(a.Params.Thickness)
	for _, seg := range a.last.Segments {
		mid := a.toScreen(seg.Midpoint)
		l := float32(seg.Length)
		rec := rl.NewRectangle(mid.X, mid.Y, l, thick)
		rl.DrawRectanglePro(rec, rl.NewVector2(l/2, thick/2), float32(-seg.Angle), ColChain)
	}

	nodes := a.last.Nodes
	if len(nodes) == 0 {
		return
	}
	rl.DrawCircleV(a.toScreen(nodes[0]), thick, ColAccent)
	a.drawBob(nodes[len(nodes)-1])
}

// drawBob hangs the image from the last link, turning with it.
func (a *App) drawBob(pos chain.Vec2) {
	p := a.toScreen(pos)
	if !a.hasTex {
		rl.DrawCircleV(p, bobSize/2, ColChain)
		return
	}

	rot := float32(0)
	if segs := a.last.Segments; len(segs) > 0 {
		rot = float32(-(segs[len(segs)-1].Angle - chain.RestAngle))
	}

	w, h := float32(a.bobTex.Width), float32(a.bobTex.Height)
	scale := bobSize / max(w, h)
	dst := rl.NewRectangle(p.X, p.Y, w*scale, h*scale)
	rl.DrawTexturePro(a.bobTex, rl.NewRectangle(0, 0, w, h), dst,
		rl.NewVector2(dst.Width/2, 0), rot, rl.White)
}
