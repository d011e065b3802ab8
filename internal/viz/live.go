package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/impulse2d/internal/collision"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/metrics"
	"github.com/san-kum/impulse2d/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameInterval   = time.Second / 60
	// longest wall-clock gap fed to the clock in one frame
	maxFrameGap = 250 * time.Millisecond
)

// Snapshot stores one rendered frame for replay.
type Snapshot struct {
	Frame    dynamo.Frame
	Energy   float64
	Contacts int
}

var (
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	speedLevels = []float64{0.125, 0.25, 0.5, 1, 2, 4, 8}
)

type TickMsg time.Time

// WorldBuilder creates a fresh world; the live view calls it again on reset.
type WorldBuilder func() (*sim.World, error)

// Model drives a world in real time through a fixed-step clock and renders it
// on a braille canvas.
type Model struct {
	name  string
	build WorldBuilder
	world *sim.World
	clock *sim.Clock

	width, height int
	canvas        *Canvas
	view          viewport
	zoom          float64

	running  bool
	speedIdx int
	lastTick time.Time
	err      error
	status   string
	frameNo  int

	energyHistory  []float64
	contactHistory []float64
	history        []Snapshot
	playHead       int

	recording bool
	frames    []*image.Paletted
	showHelp  bool
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// NewModel builds the first world and frames the view around it.
func NewModel(name string, build WorldBuilder) (Model, error) {
	m := Model{
		name:     name,
		build:    build,
		width:    width,
		height:   height,
		canvas:   NewCanvas(width, height),
		zoom:     1,
		running:  true,
		speedIdx: 3,
		playHead: -1,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and feeds elapsed time to the clock.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.lastTick = time.Time{}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "s":
			if !m.running {
				m.stepOnce()
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			if m.speedIdx < len(speedLevels)-1 {
				m.speedIdx++
			}
		case "-", "_":
			if m.speedIdx > 0 {
				m.speedIdx--
			}
		case "z":
			m.zoom = math.Min(16, m.zoom*1.25)
		case "x":
			m.zoom = math.Max(0.0625, m.zoom/1.25)
		case "g":
			if m.recording {
				path := m.name + ".gif"
				if err := m.saveGIF(path); err != nil {
					m.err = err
				} else {
					m.status = "saved " + path
				}
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.status = "theme: " + NextTheme().Name
		}
	case TickMsg:
		m.frameNo++
		now := time.Time(msg)
		if m.running {
			if m.playHead == -1 {
				elapsed := frameInterval
				if !m.lastTick.IsZero() {
					elapsed = now.Sub(m.lastTick)
				}
				m.advance(elapsed)
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.lastTick = now
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// advance feeds scaled wall-clock time to the clock and records a snapshot.
func (m *Model) advance(elapsed time.Duration) {
	if elapsed > maxFrameGap {
		elapsed = maxFrameGap
	}
	scaled := time.Duration(float64(elapsed) * speedLevels[m.speedIdx])
	n, err := m.clock.FeedDuration(scaled)
	if err != nil {
		m.err = err
		m.running = false
	}
	if n > 0 {
		m.record()
	}
}

func (m *Model) stepOnce() {
	if m.playHead != -1 {
		return
	}
	if err := m.world.Advance(m.clock.Fixed()); err != nil {
		m.err = err
		return
	}
	m.record()
	m.draw()
}

func (m *Model) record() {
	f := m.world.Frame()
	snap := Snapshot{
		Frame:    f,
		Energy:   metrics.KineticEnergy(f) + metrics.PotentialEnergy(f, m.world.Config().Gravity),
		Contacts: len(m.world.Contacts()),
	}

	m.energyHistory = append(m.energyHistory, snap.Energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	m.contactHistory = append(m.contactHistory, float64(snap.Contacts))
	if len(m.contactHistory) > historyCapacity {
		m.contactHistory = m.contactHistory[1:]
	}
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) > 0 {
			m.playHead = len(m.history) - 1
			m.running = false
		} else {
			return
		}
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the world from scratch.
func (m *Model) reset() error {
	w, err := m.build()
	if err != nil {
		return err
	}
	c, err := sim.NewClock(w, w.Config().FixedDt())
	if err != nil {
		return err
	}
	c.MaxTicks = int(math.Ceil(maxFrameGap.Seconds()*speedLevels[len(speedLevels)-1]/c.Fixed())) + 1

	m.world, m.clock = w, c
	m.err = nil
	m.status = ""
	m.lastTick = time.Time{}
	m.energyHistory = m.energyHistory[:0]
	m.contactHistory = m.contactHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.view = fitViewport(w.Frame(), m.width*2, m.height*4)
	m.record()
	m.draw()
	return nil
}

func (m *Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	if len(m.history) > 0 {
		return m.history[len(m.history)-1]
	}
	return Snapshot{Frame: m.world.Frame()}
}

// World exposes the simulated world, mainly for tests.
func (m Model) World() *sim.World { return m.world }

// View renders the TUI interface.
func (m Model) View() string {
	snap := m.current()
	canvasView := lipgloss.NewStyle().Padding(1, 2).Foreground(CurrentTheme.Bodies).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.name), CurrentTheme.Title[0], CurrentTheme.Title[1]) + "\n\n")

	status := statusStyle(CurrentTheme.Running).Render(AnimatedSpinner(m.frameNo) + " RUNNING")
	switch {
	case m.err != nil:
		status = errorStyle.Render("HALTED")
	case m.playHead != -1:
		rel := m.history[m.playHead].Frame.Time - m.history[len(m.history)-1].Frame.Time
		status = statusStyle(CurrentTheme.Paused).Render(fmt.Sprintf("REPLAY (%.2fs)", rel))
	case !m.running:
		status = statusStyle(CurrentTheme.Paused).Render("PAUSED")
	}
	if m.recording {
		status += " " + statusStyle(CurrentTheme.Alert).Render("● REC")
	}
	s.WriteString(status + "\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString(fg(CurrentTheme.Muted).Render(m.status) + "\n")
	}
	s.WriteString("\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Graph).Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Frame.Time))
	row("Ticks", fmt.Sprintf("%d", m.world.Ticks()))
	row("Bodies", fmt.Sprintf("%d", len(snap.Frame.Bodies)))
	row("Contacts", fmt.Sprintf("%d", snap.Contacts))
	row("Energy", fmt.Sprintf("%.2f", snap.Energy))
	row("Speed", fmt.Sprintf("%gx", speedLevels[m.speedIdx]))
	row("Rate", fmt.Sprintf("%.0f Hz", m.world.Config().RateHz))
	row("Integrator", m.world.Integrator().Name())
	s.WriteString("\n" + fg(CurrentTheme.Muted).Render("contacts ") + SparklineChart(m.contactHistory, 30) + "\n")

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Time-Travel +-:Speed"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  S        - Single tick while paused ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  + / -    - Simulation speed         ║
║  Z / X    - Zoom in / out            ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// viewport maps world coordinates onto canvas sub-pixels with a uniform scale.
type viewport struct {
	centerX, centerY float64
	scale            float64 // sub-pixels per world unit
	cw, ch           int
}

func fitViewport(f dynamo.Frame, cw, ch int) viewport {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range f.Bodies {
		for _, v := range shapeOf(b).Vertices {
			minX, maxX = math.Min(minX, v.X()), math.Max(maxX, v.X())
			minY, maxY = math.Min(minY, v.Y()), math.Max(maxY, v.Y())
		}
	}
	if len(f.Bodies) == 0 {
		minX, minY, maxX, maxY = -1, -1, 1, 1
	}

	// leave room for bodies to move
	spanX := math.Max(maxX-minX, 1) * 1.5
	spanY := math.Max(maxY-minY, 1) * 1.5
	return viewport{
		centerX: (minX + maxX) / 2,
		centerY: (minY + maxY) / 2,
		scale:   math.Min(float64(cw)/spanX, float64(ch)/spanY),
		cw:      cw,
		ch:      ch,
	}
}

func (v viewport) project(p dynamo.Vec2, zoom float64) (int, int) {
	s := v.scale * zoom
	x := float64(v.cw)/2 + (p.X()-v.centerX)*s
	y := float64(v.ch)/2 + (p.Y()-v.centerY)*s
	return int(math.Round(x)), int(math.Round(y))
}

func shapeOf(b dynamo.BodyState) collision.Shape {
	return collision.NewShape(collision.BoxFromSize(b.Size), b.Position, b.Rotation)
}

// draw renders the current (or replayed) frame with springs.
func (m *Model) draw() {
	m.canvas.Clear()
	f := m.current().Frame

	pos := make(map[int]dynamo.Vec2, len(f.Bodies))
	for _, b := range f.Bodies {
		pos[b.ID] = b.Position
	}
	for _, sp := range m.world.Springs() {
		a, okA := pos[sp.A.Index()]
		b, okB := pos[sp.B.Index()]
		if !okA || !okB {
			continue
		}
		x0, y0 := m.view.project(a, m.zoom)
		x1, y1 := m.view.project(b, m.zoom)
		m.canvas.DrawDashed(x0, y0, x1, y1, 3)
	}

	drawBodies(m.canvas, m.view, m.zoom, f)
}

func drawBodies(c *Canvas, v viewport, zoom float64, f dynamo.Frame) {
	for _, b := range f.Bodies {
		if b.Size.X() == 0 && b.Size.Y() == 0 {
			x, y := v.project(b.Position, zoom)
			c.Set(x, y)
			continue
		}
		var pts [4][2]int
		for i, p := range shapeOf(b).Vertices {
			pts[i][0], pts[i][1] = v.project(p, zoom)
		}
		c.DrawPolygon(pts[:])
	}
}

// RenderFrame draws the bodies of f onto a fresh canvas of w by h cells.
func RenderFrame(f dynamo.Frame, w, h int) *Canvas {
	c := NewCanvas(w, h)
	drawBodies(c, fitViewport(f, w*2, h*4), 1, f)
	return c
}

// captureFrame rasterises the canvas at 4x4 pixels per dot.
func (m *Model) captureFrame() {
	const dot = 4
	c := m.canvas
	img := image.NewPaletted(image.Rect(0, 0, c.Width*2*dot, c.Height*4*dot), color.Palette{color.Black, color.White})
	for y := range c.Height * 4 {
		for x := range c.Width * 2 {
			if !c.Lit(x, y) {
				continue
			}
			for py := range dot {
				for px := range dot {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive opens the live view full screen until the user quits.
func RunLive(name string, build WorldBuilder) error {
	m, err := NewModel(name, build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
