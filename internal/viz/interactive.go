package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/scene"
	"github.com/san-kum/impulse2d/internal/sim"
)

var presetInfo = map[string]string{
	"spring":   "anchored weight on a spring",
	"floor":    "box resting on a floor",
	"collide":  "head-on elastic impacts",
	"stack":    "settling box stack",
	"pendulum": "spring chain swinging",
}

var (
	accent  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	title   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	picked  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickedV = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	idle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleV   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyCap  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// param is one editable field of the selected scene.
type param struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"gravity", 1, func(c *config.Config) float64 { return c.Physics.Gravity }, func(c *config.Config, v float64) { c.Physics.Gravity = v }},
	{"restitution", 0.05, func(c *config.Config) float64 { return c.Physics.Restitution }, func(c *config.Config, v float64) { c.Physics.Restitution = v }},
	{"damping", 0.005, func(c *config.Config) float64 { return c.Physics.Damping }, func(c *config.Config, v float64) { c.Physics.Damping = v }},
	{"rate_hz", 30, func(c *config.Config) float64 { return c.Physics.RateHz }, func(c *config.Config, v float64) { c.Physics.RateHz = v }},
	{"duration", 1, func(c *config.Config) float64 { return c.Run.Duration }, func(c *config.Config, v float64) { c.Run.Duration = v }},
}

type app struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	live          Model
}

// NewInteractiveApp lists the built-in scenes.
func NewInteractiveApp() *app {
	return &app{state: stateMenu, presets: config.ListPresets()}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			next, cmd := m.live.Update(msg)
			m.live = next.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	p := params[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				p.set(m.cfg, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(p.get(m.cfg), 'g', -1, 64)
	case "left", "h":
		p.set(m.cfg, p.get(m.cfg)-p.step)
	case "right", "l":
		p.set(m.cfg, p.get(m.cfg)+p.step)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m app) start() (app, tea.Cmd) {
	cfg := m.cfg.Clone()
	live, err := NewModel(m.selected, func() (*sim.World, error) {
		sc, err := scene.Build(cfg)
		if err != nil {
			return nil, err
		}
		return sc.World, nil
	})
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state = live, stateSim
	return m, m.live.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func header(name, sub string) string {
	return "\n\n    " + title.Render(name) + "\n    " + muted.Render(sub) + "\n    " + muted.Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyCap.Render(pairs[i]) + idle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("IMPULSE2D", "rigid body sandbox"))
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", accent.Render("▸"), picked.Render(fmt.Sprintf("%-12s", name)), pickedV.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idle.Render(fmt.Sprintf("  %-12s", name)), idleV.Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(m.selected), presetInfo[m.selected]))
	for i, p := range params {
		valStr := fmt.Sprintf("%8.3f", p.get(m.cfg))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", accent.Render("▸"), picked.Render(fmt.Sprintf("%-12s", p.name)), pickedV.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idle.Render(fmt.Sprintf("  %-12s", p.name)), idleV.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive starts the scene picker.
func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
