// Package tui is the reference consumer: a bubbletea program on its
// own goroutine that polls the latest-only queue at frame rate and
// sends control requests back over the bus. It never blocks the
// physics goroutine and never mutates a received snapshot.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/rlund/airsusp/internal/bus"
	"github.com/rlund/airsusp/internal/dynamo"
	"github.com/rlund/airsusp/internal/telemetry"
)

const (
	graphWidth      = 72
	graphHeight     = 6
	historyCapacity = 360
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(0, 1)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the bubbletea state for the live view.
type Model struct {
	queue   *bus.LatestQueue
	signals *bus.Bus
	timer   *telemetry.StepTimer
	fault   func() error

	frameRate int
	running   bool

	latest dynamo.Snapshot
	seen   bool

	heave []float64
	roll  []float64
	pitch []float64
}

// NewModel wires the view to the physics side. fault may be nil; when
// set it reports the runner's most recent step failure.
func NewModel(q *bus.LatestQueue, signals *bus.Bus, timer *telemetry.StepTimer, frameRate int, fault func() error) Model {
	if frameRate <= 0 {
		frameRate = 60
	}
	return Model{
		queue:     q,
		signals:   signals,
		timer:     timer,
		fault:     fault,
		frameRate: frameRate,
		running:   true,
		heave:     make([]float64, 0, historyCapacity),
		roll:      make([]float64, 0, historyCapacity),
		pitch:     make([]float64, 0, historyCapacity),
	}
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.frameTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.running {
				m.signals.Send(bus.Stop)
			} else {
				m.signals.Send(bus.Start)
			}
			m.running = !m.running
		case "r":
			m.signals.Send(bus.Reset)
			m.signals.Send(bus.Start)
			m.running = true
			m.heave = m.heave[:0]
			m.roll = m.roll[:0]
			m.pitch = m.pitch[:0]
		}

	case TickMsg:
		if snap, ok := m.queue.Get(); ok {
			m.latest = snap
			m.seen = true
			m.heave = push(m.heave, snap.Frame.Heave*1000) // mm
			m.roll = push(m.roll, snap.Frame.Roll*1000)    // mrad
			m.pitch = push(m.pitch, snap.Frame.Pitch*1000) // mrad
		}
		return m, m.frameTick()
	}
	return m, nil
}

func push(hist []float64, v float64) []float64 {
	if len(hist) >= historyCapacity {
		copy(hist, hist[1:])
		hist = hist[:len(hist)-1]
	}
	return append(hist, v)
}

func plot(series []float64, caption string) string {
	if len(series) < 2 {
		return graphStyle.Render(fmt.Sprintf("%s\n(waiting for data)", caption))
	}
	g := asciigraph.Plot(series,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(caption),
	)
	return graphStyle.Render(g)
}

func (m Model) View() string {
	var b []string

	b = append(b, headerStyle.Render("airsusp — live suspension rig"))

	b = append(b, plot(m.heave, "heave [mm]"))
	b = append(b, plot(m.roll, "roll [mrad]"))
	b = append(b, plot(m.pitch, "pitch [mrad]"))

	rep := m.timer.Report()
	stats := m.queue.Stats()
	line := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}
	simLine := "waiting for first snapshot"
	if m.seen {
		simLine = fmt.Sprintf("%.3f s  (step %d)", m.latest.SimTime, m.latest.Step)
	}
	b = append(b,
		line("sim time", simLine),
		line("rate", fmt.Sprintf("%.0f / %.0f Hz", rep.FPS, rep.TargetFPS)),
		line("handoff", fmt.Sprintf("%.1f%% seen, %d dropped", stats.Efficiency()*100, stats.Drops)),
		line("overruns", fmt.Sprintf("%d", rep.Overruns)),
	)

	if !m.running {
		b = append(b, pausedStyle.Render("PAUSED"))
	}
	if m.fault != nil {
		if err := m.fault(); err != nil {
			b = append(b, faultStyle.Render("fault: "+err.Error()))
		}
	}

	b = append(b, helpStyle.Render("space pause/resume · r reset · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, b...)
}
