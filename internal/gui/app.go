package gui

import (
	"fmt"
	"log/slog"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/pendant/internal/anchor"
	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColChain   = rl.NewColor(200, 160, 80, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColError   = rl.NewColor(220, 80, 80, 255)
)

const (
	fontPath      = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	maxTelemetry  = 200
	bobSize       = 48
	anchorOriginY = 120 // screen y of world y=0
)

type Options struct {
	Width, Height int32
	Dt            float64
	Logger        *slog.Logger
}

func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720, Dt: 1.0 / 60}
}

// App is the raylib host. The mouse is the anchor, files dropped on the
// window become the bob image.
type App struct {
	P    *pendant.Pendant
	Ptr  *anchor.Pointer
	Bind pendant.Bindings
	Opts Options

	Running   bool
	ShowHUD   bool
	Params    chain.Params
	ParamKeys []string
	ParamSel  int
	Telemetry []float64 // bob horizontal offset from the anchor
	Status    string
	Font      rl.Font

	last   pendant.Frame
	bobTex rl.Texture2D
	hasTex bool
	log    *slog.Logger
}

func initWindow(o Options) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(o.Width, o.Height, "pendant")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp must be called after the window exists; it replaces p's anchor
// source with the mouse pointer.
func NewApp(p *pendant.Pendant, bind pendant.Bindings, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	ptr := anchor.NewPointer(p.Source().Position(p.Time()))
	p.SetSource(ptr)

	params := p.Params()
	keys := make([]string, 0)
	for k := range params.GetParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	a := &App{
		P:         p,
		Ptr:       ptr,
		Bind:      bind,
		Opts:      opts,
		Running:   true,
		ShowHUD:   true,
		Params:    params,
		ParamKeys: keys,
		Telemetry: make([]float64, 0, maxTelemetry),
		Font:      loadFont(),
		log:       log,
		last:      pendant.Frame{Nodes: p.Nodes()},
	}
	a.reloadTexture()
	return a
}

// Run opens the window and blocks until it is closed.
func Run(p *pendant.Pendant, bind pendant.Bindings, opts Options) {
	initWindow(opts)
	defer rl.CloseWindow()

	app := NewApp(p, bind, opts)
	defer app.Close()
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Close() {
	if a.hasTex {
		rl.UnloadTexture(a.bobTex)
		a.hasTex = false
	}
	rl.UnloadFont(a.Font)
}

// origin is the screen position of world (0, 0).
func (a *App) origin() rl.Vector2 {
	return rl.NewVector2(float32(rl.GetScreenWidth())/2, anchorOriginY)
}

func (a *App) toScreen(v chain.Vec2) rl.Vector2 {
	o := a.origin()
	return rl.NewVector2(o.X+float32(v[0]), o.Y-float32(v[1]))
}

func (a *App) toWorld(s rl.Vector2) chain.Vec2 {
	o := a.origin()
	return chain.V(float64(s.X-o.X), float64(o.Y-s.Y))
}

func (a *App) Update() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		rl.UnloadDroppedFiles()
		if len(files) > 0 && a.Bind.OnUpload != nil {
			// last one wins, same as several uploads in a row
			for _, f := range files {
				a.Bind.OnUpload(f)
			}
			a.Status = "loading " + files[len(files)-1]
		}
	}

	a.Ptr.Set(a.toWorld(rl.GetMousePosition()))

	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) && a.Bind.OnReset != nil {
		a.Bind.OnReset()
		a.reloadTexture()
		a.Status = "bob image reset"
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if err := a.P.Restart(); err != nil {
			a.Status = err.Error()
		}
		a.Telemetry = a.Telemetry[:0]
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.ShowHUD = !a.ShowHUD
	}
	a.updateParams()

	if !a.Running {
		if a.P.PollImages() {
			a.reloadTexture()
			a.Status = "bob image loaded"
		}
		return
	}

	f, err := a.P.Tick(a.Opts.Dt)
	if err != nil {
		a.log.Error("tick failed", "err", err)
		a.Status = err.Error()
		a.Running = false
		return
	}
	a.last = f
	if f.ImageChanged {
		a.reloadTexture()
		a.Status = "bob image loaded"
	}

	if len(a.Telemetry) >= maxTelemetry {
		copy(a.Telemetry, a.Telemetry[1:])
		a.Telemetry = a.Telemetry[:len(a.Telemetry)-1]
	}
	a.Telemetry = append(a.Telemetry, f.Bob[0]-f.Anchor[0])
}

func (a *App) updateParams() {
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ParamSel = (a.ParamSel + 1) % len(a.ParamKeys)
	}

	dir := 0.0
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressedRepeat(rl.KeyUp) {
		dir = 1
	}
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressedRepeat(rl.KeyDown) {
		dir = -1
	}
	if dir == 0 {
		return
	}

	key := a.ParamKeys[a.ParamSel]
	v := a.Params.GetParams()[key]
	step := 0.1
	switch key {
	case "nodes", "iterations":
		step = 1
	case "gravity":
		step = 100
	case "rest_length", "rot_max":
		step = 0.5
	case "damping", "rot_damping", "rest_threshold":
		step = 0.01
	}
	if rl.IsKeyDown(rl.KeyLeftShift) {
		step *= 10
	}

	next, err := a.Params.SetParam(key, v+dir*step)
	if err == nil {
		err = a.P.SetParams(next)
	}
	if err != nil {
		a.Status = err.Error()
		return
	}
	a.Params = next
	a.Status = ""
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawChain()
	if a.ShowHUD {
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("pendant", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %d nodes  t=%.1fs", len(a.last.Nodes), a.P.Time()), 150, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	if a.last.Resting {
		status += " / RESTING"
	}
	a.drawText(status, int(rl.GetScreenWidth())-230, 30, 16, col)

	y := 80
	for i, key := range a.ParamKeys {
		val := a.Params.GetParams()[key]
		if i == a.ParamSel {
			a.drawText(fmt.Sprintf("> %-15s %.3g", key, val), 30, y, 16, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %-15s %.3g", key, val), 30, y, 16, ColText)
		}
		y += 22
	}

	if n := a.P.Pending(); n > 0 {
		a.drawText(fmt.Sprintf("loading %d image(s)", n), 30, y+10, 14, ColAccent)
	} else if a.Status != "" {
		a.drawText(a.Status, 30, y+10, 14, ColAccent)
	}

	h := int(rl.GetScreenHeight())
	a.DrawTelemetry(30, h-120, 400, 60)
	a.drawText("DROP IMAGE: BOB  [SPACE] PAUSE  [R] RESET IMAGE  [C] CENTER  [TAB/UP/DOWN] TUNE  [H] HUD  [Q] QUIT",
		30, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), int(rl.GetScreenWidth())-100, h-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry(x, y, width, height int) {
	if len(a.Telemetry) < 2 {
		return
	}

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(x) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(y+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("swing: %.1f", a.Telemetry[len(a.Telemetry)-1]), x+width+10, y+height-10, 14, ColText)
}
