// Package tui is a terminal inspector for a hitplot chart. Shapes are drawn
// with braille micro-pixels and mouse input is routed through the chart's
// interaction layer.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phanxgames/hitplot"
)

const (
	headerHeight = 1
	footerHeight = 1
	logWidth     = 34
	logLines     = 64

	// frameInterval is how often the chart is ticked.
	frameInterval = 16 * time.Millisecond
	// doubleClickWindow is the longest gap between two presses on the same
	// cell that counts as a double click.
	doubleClickWindow = 400 * time.Millisecond
)

type frameMsg time.Time

// Model is the bubbletea model of the inspector.
type Model struct {
	chart  *hitplot.Chart
	shapes []hitplot.Shape
	clock  hitplot.Clock

	width  int
	height int
	plotW  int // in cells
	plotH  int

	showCells bool
	status    string
	log       []string

	pointer     hitplot.Vec2
	inside      bool
	lastPress   time.Time
	lastPressAt [2]int
}

// New returns an inspector for chart displaying shapes. clock is used for
// double click detection; nil uses the system clock.
func New(chart *hitplot.Chart, shapes []hitplot.Shape, clock hitplot.Clock) *Model {
	if clock == nil {
		clock = hitplot.SystemClock()
	}
	m := &Model{
		chart:       chart,
		shapes:      shapes,
		clock:       clock,
		showCells:   chart.Options().ShowCells,
		lastPressAt: [2]int{-1, -1},
	}
	record := func(ev hitplot.Event) {
		m.logf("%-12s #%d  (%.2f, %.2f)", ev.Type, ev.EntityIndex, ev.DataPosition.X, ev.DataPosition.Y)
	}
	chart.OnHoverEnter(record)
	chart.OnHoverExit(record)
	chart.OnClick(record)
	chart.OnDoubleClick(record)
	return m
}

// Run starts the inspector on the alternate screen with mouse motion
// reporting.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

func (m *Model) logf(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
}

// Log returns the event log, oldest first.
func (m *Model) Log() []string { return m.log }

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return frame()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case frameMsg:
		m.chart.Tick()
		return m, frame()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.chart.Close()
			return m, tea.Quit
		case "c":
			m.showCells = !m.showCells
			m.status = fmt.Sprintf("cells: %v", m.showCells)
		case "r":
			m.chart.Update(m.shapes, m.viewport())
			m.status = "rebuild requested"
		}
	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.plotW = max(10, w-logWidth)
	m.plotH = max(4, h-headerHeight-footerHeight)
	m.chart.Update(m.shapes, m.viewport())
}

// viewport is the plot size in micro-pixels.
func (m *Model) viewport() hitplot.Size {
	return hitplot.Size{Width: float64(m.plotW * 2), Height: float64(m.plotH * 4)}
}

// mouse translates terminal mouse events into pointer input. A cell maps to
// the center of its 2x4 micro-pixel block.
func (m *Model) mouse(msg tea.MouseMsg) {
	cx, cy := msg.X, msg.Y-headerHeight
	if cx < 0 || cx >= m.plotW || cy < 0 || cy >= m.plotH {
		if m.inside {
			m.inside = false
			m.chart.HandlePointer(hitplot.PointerInput{Kind: hitplot.PointerLeave, Raw: msg})
		}
		return
	}
	m.inside = true
	m.pointer = hitplot.Vec2{X: float64(cx*2) + 1, Y: float64(cy*4) + 2}
	in := hitplot.PointerInput{Kind: hitplot.PointerMove, X: m.pointer.X, Y: m.pointer.Y, Raw: msg}

	switch {
	case msg.Action == tea.MouseActionMotion:
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		now := m.clock.Now()
		if m.lastPressAt == [2]int{cx, cy} && now.Sub(m.lastPress) <= doubleClickWindow {
			in.Kind = hitplot.PointerDoubleClick
			m.lastPressAt = [2]int{-1, -1}
		} else {
			in.Kind = hitplot.PointerClick
			m.lastPress = now
			m.lastPressAt = [2]int{cx, cy}
		}
	default:
		return
	}
	m.chart.HandlePointer(in)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := titleStyle.Render(" hitplot ─ interaction inspector ")
	header = lipgloss.NewStyle().Width(m.width).Render(header)

	plot := lipgloss.NewStyle().Width(m.plotW).Height(m.plotH).Render(m.renderPlot())

	logView := boxStyle.Width(logWidth - 4).Height(m.plotH - 2).Render(m.renderLog(m.plotH - 2))

	body := lipgloss.JoinHorizontal(lipgloss.Top, plot, logView)
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer()))
}

func (m *Model) renderPlot() string {
	buf := newBrailleBuf(m.plotW, m.plotH)
	if t := m.chart.Tessellation(); m.showCells && t != nil {
		for _, cell := range t.Cells() {
			buf.drawPolygon(cell.Polygon.Points)
		}
	}
	for _, g := range m.chart.Geometry() {
		buf.drawEllipse(g.Ellipse(), m.chart.Highlighted(g.Index))
	}
	return strings.Join(buf.toLines(), "\n")
}

func (m *Model) renderLog(rows int) string {
	lines := m.log
	if rows < 1 {
		rows = 1
	}
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	if len(lines) == 0 {
		return dimStyle.Render("no events yet")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) footer() string {
	var b strings.Builder
	state := m.chart.Scheduler().State().String()
	if m.chart.Stale() {
		b.WriteString(staleStyle.Render(state))
	} else {
		b.WriteString(dimStyle.Render(state))
	}
	fmt.Fprintf(&b, "  shapes=%d", len(m.shapes))
	if t := m.chart.Tessellation(); t != nil {
		fmt.Fprintf(&b, " cells=%d", t.Len())
	}
	if idx := m.chart.Hovered(); idx >= 0 {
		fmt.Fprintf(&b, "  hover=#%d", idx)
	}
	if s := m.chart.Suppressed(); s > 0 {
		fmt.Fprintf(&b, "  suppressed=%d", s)
	}
	if m.status != "" {
		b.WriteString("  " + m.status)
	}
	b.WriteString(dimStyle.Render("  [c] cells  [r] rebuild  [q] quit"))
	return b.String()
}
