package viz

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pendant/internal/anchor"
	"github.com/san-kum/pendant/internal/bobimage"
	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
)

const (
	frameDt         = 1.0 / 60
	historyCapacity = 240
	bobRadius       = 12.0 // world units
	topMargin       = 4    // sub-pixels above the resting anchor
	maxGIFFrames    = 600
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type Options struct {
	Width, Height int // canvas size in cells
	Theme         string
	GIFPath       string
}

func DefaultOptions() Options {
	return Options{Width: 60, Height: 24, Theme: ThemeBrass.Name, GIFPath: "pendant.gif"}
}

// Model is the Bubble Tea model of the terminal pendant. The mouse drives the
// anchor; every TickMsg advances the chain by one frame.
type Model struct {
	p        *pendant.Pendant
	ptr      *anchor.Pointer
	bind     pendant.Bindings
	canvas   *Canvas
	scale    float64 // world units per sub-pixel
	theme    Theme
	st       styles
	opts     Options
	running  bool
	initial  chain.Params
	keys     []string
	selected int

	last     pendant.Frame
	stretch  []float64
	swing    []float64
	bobColor color.RGBA

	input    bool
	inputBuf string
	status   string
	showHelp bool

	rec       *recorder
	recording bool
}

// NewModel takes over p's anchor with a mouse-driven pointer placed where
// the current anchor is.
func NewModel(p *pendant.Pendant, bind pendant.Bindings, opts Options) Model {
	ptr := anchor.NewPointer(p.Source().Position(p.Time()))
	p.SetSource(ptr)

	params := p.Params()
	keys := make([]string, 0)
	for k := range params.GetParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	theme := GetTheme(opts.Theme)
	m := Model{
		p:        p,
		ptr:      ptr,
		bind:     bind,
		canvas:   NewCanvas(opts.Width, opts.Height),
		theme:    theme,
		st:       newStyles(theme),
		opts:     opts,
		running:  true,
		initial:  params,
		keys:     keys,
		stretch:  make([]float64, 0, historyCapacity),
		swing:    make([]float64, 0, historyCapacity),
		bobColor: bobColor(p),
		rec:      newRecorder(maxGIFFrames),
	}
	m.fit()
	m.last = pendant.Frame{Anchor: ptr.Position(0), Nodes: p.Nodes()}
	m.draw()
	return m
}

func bobColor(p *pendant.Pendant) color.RGBA {
	if img := p.BobImage(); img != nil {
		return bobimage.AverageColor(img)
	}
	return bobimage.DefaultColor
}

// fit picks a scale that shows the whole chain hanging from the top centre.
func (m *Model) fit() {
	params := m.p.Params()
	length := float64(params.NodeCount-1)*params.RestLength + bobRadius
	_, h := m.canvas.Dots()
	m.scale = length * 1.15 / float64(max(h-topMargin, 1))
}

// toScreen maps world coordinates (y up, anchor origin at the top centre) to
// canvas sub-pixels.
func (m *Model) toScreen(v chain.Vec2) (int, int) {
	w, _ := m.canvas.Dots()
	return w/2 + int(v[0]/m.scale), topMargin - int(v[1]/m.scale)
}

func (m *Model) toWorld(x, y int) chain.Vec2 {
	w, _ := m.canvas.Dots()
	return chain.V(float64(x-w/2)*m.scale, float64(topMargin-y)*m.scale)
}

// Pointer returns the anchor source the model drives.
func (m Model) Pointer() *anchor.Pointer { return m.ptr }

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input {
			return m.inputKey(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		col, row := msg.X-canvasPadX, msg.Y-canvasPadY
		m.ptr.Set(m.toWorld(col*2+1, row*4+2))
	case tea.WindowSizeMsg:
		w := max(msg.Width-statsStyle.GetWidth()-2*canvasPadX-2, 10)
		h := max(msg.Height-2*canvasPadY, 6)
		m.canvas.Resize(w, h)
		m.fit()
	case TickMsg:
		m.step()
		return m, tick()
	}
	return m, nil
}

func (m Model) inputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		path := strings.TrimSpace(m.inputBuf)
		m.input, m.inputBuf = false, ""
		if path != "" && m.bind.OnUpload != nil {
			m.bind.OnUpload(path)
			m.status = "loading " + path
		}
	case tea.KeyEsc, tea.KeyCtrlC:
		m.input, m.inputBuf = false, ""
	case tea.KeyBackspace:
		if r := []rune(m.inputBuf); len(r) > 0 {
			m.inputBuf = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.inputBuf += " "
	case tea.KeyRunes:
		m.inputBuf += string(msg.Runes)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "u":
		m.input, m.inputBuf = true, ""
	case "r":
		if m.bind.OnReset != nil {
			m.bind.OnReset()
			m.bobColor = bobColor(m.p)
			m.status = "bob image reset"
		}
	case "c":
		if err := m.p.Restart(); err != nil {
			m.status = err.Error()
		}
		m.stretch, m.swing = m.stretch[:0], m.swing[:0]
	case "tab":
		m.selected = (m.selected + 1) % len(m.keys)
	case "up", "k":
		m.adjustParam(1)
	case "down", "j":
		m.adjustParam(-1)
	case "t":
		m.theme = NextTheme(m.theme)
		m.st = newStyles(m.theme)
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) adjustParam(dir int) {
	key := m.keys[m.selected]
	params := m.p.Params()
	v := params.GetParams()[key]

	switch key {
	case "nodes", "iterations":
		v += float64(dir)
	case "rot_damping":
		v = min(max(v+0.05*float64(dir), 0), 1)
	default:
		switch {
		case dir > 0 && v == 0:
			v = 0.01
		case dir > 0:
			v *= 1.05
		default:
			v *= 0.95
		}
	}

	next, err := params.SetParam(key, v)
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := m.p.SetParams(next); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	if key == "nodes" || key == "rest_length" {
		m.fit()
	}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.status = "recording"
		return
	}
	m.recording = false
	if err := m.rec.Save(m.opts.GIFPath); err != nil {
		m.status = "gif: " + err.Error()
		return
	}
	m.status = "saved " + m.opts.GIFPath
}

// step advances one frame when running and always picks up finished image
// imports.
func (m *Model) step() {
	if !m.running {
		if m.p.PollImages() {
			m.bobColor = bobColor(m.p)
			m.status = "bob image loaded"
		}
		m.draw()
		return
	}

	f, err := m.p.Tick(frameDt)
	if err != nil {
		m.status = err.Error()
		m.running = false
		return
	}
	m.last = f
	if f.ImageChanged {
		m.bobColor = bobColor(m.p)
		m.status = "bob image loaded"
	}

	worst := 0.0
	rest := m.p.Params().RestLength
	for _, seg := range f.Segments {
		worst = max(worst, abs(seg.Length-rest)/rest)
	}
	m.stretch = pushHistory(m.stretch, worst)
	m.swing = pushHistory(m.swing, f.Bob[0]-f.Anchor[0])

	m.draw()
	if m.recording {
		m.rec.Capture(m.canvas, color.RGBA{R: m.bobColor.R, G: m.bobColor.G, B: m.bobColor.B, A: 0xff})
	}
}

func pushHistory(h []float64, v float64) []float64 {
	if len(h) >= historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (m *Model) draw() {
	m.canvas.Clear()
	nodes := m.last.Nodes
	if len(nodes) == 0 {
		return
	}

	thick := max(int(m.p.Params().Thickness/m.scale/2), 0)
	for i := 0; i+1 < len(nodes); i++ {
		x0, y0 := m.toScreen(nodes[i])
		x1, y1 := m.toScreen(nodes[i+1])
		m.canvas.DrawLine(x0, y0, x1, y1)
		for d := 1; d <= thick; d++ {
			if absInt(x1-x0) > absInt(y1-y0) {
				m.canvas.DrawLine(x0, y0+d, x1, y1+d)
			} else {
				m.canvas.DrawLine(x0+d, y0, x1+d, y1)
			}
		}
	}

	ax, ay := m.toScreen(nodes[0])
	m.canvas.FillDisc(ax, ay, 1)
	bx, by := m.toScreen(nodes[len(nodes)-1])
	m.canvas.FillDisc(bx, by, max(int(bobRadius/m.scale), 2))
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.st.chain.Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(m.st.header.Render("PENDANT") + "\n")

	switch {
	case m.recording:
		s.WriteString(m.st.err.Render(fmt.Sprintf("● REC %d", m.rec.Len())))
	case m.running:
		s.WriteString(m.st.running.Render("RUNNING"))
	default:
		s.WriteString(m.st.paused.Render("PAUSED"))
	}
	if n := m.p.Pending(); n > 0 {
		s.WriteString(m.st.muted.Render(fmt.Sprintf("  loading %d image(s)", n)))
	}
	s.WriteString("\n\n")

	if len(m.swing) > 1 {
		chart := asciigraph.Plot(m.swing, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Swing"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	resting := "no"
	if m.last.Resting {
		resting = "yes"
	}
	c := m.bobColor
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.p.Time())) + "\n")
	s.WriteString(labelStyle.Render("Nodes") + valueStyle.Render(fmt.Sprintf("%d", len(m.last.Nodes))) + "\n")
	s.WriteString(labelStyle.Render("Resting") + valueStyle.Render(resting) + "\n")
	s.WriteString(labelStyle.Render("Bob") + Swatch(c.R, c.G, c.B) + "\n")
	s.WriteString(labelStyle.Render("Stretch") + m.st.Sparkline(m.stretch, 0.05, 24) + "\n")

	s.WriteString("\nPARAMETERS\n")
	current := m.p.Params().GetParams()
	initial := m.initial.GetParams()
	for i, k := range m.keys {
		line := fmt.Sprintf("%-14s %s %.3g", k, ParamBar(current[k], initial[k], 10), current[k])
		if i == m.selected {
			s.WriteString(m.st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.st.muted.Render(line) + "\n")
		}
	}

	if m.input {
		s.WriteString("\n" + m.st.active.Render("Image path: ") + m.inputBuf + "█\n")
	} else if m.status != "" {
		s.WriteString("\n" + m.st.muted.Render(m.status) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause U:Image R:Reset C:Center\nTab/↑↓:Tune T:Theme G:GIF ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Mouse     move the anchor
  Space     pause / resume
  U         load a bob image from a path
  R         reset the bob image
  C         re-hang the chain
  Tab       next parameter
  Up/K      increase parameter
  Down/J    decrease parameter
  T         cycle themes
  G         start / stop GIF recording
  ?         toggle this help
  Q         quit`
