// Package tui renders a live terminal view of a running integration:
// a radius trace per tick plus a stats panel.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/integrate"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	stopStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the ensemble one reporting step per tick and plots the
// first particle's distance from the origin.
type Model struct {
	force   dust.Model
	grid    dust.TimeGrid
	initial []dust.State

	integ  *integrate.RK4
	states []dust.State
	alive  []bool
	step   int
	t      float64

	running bool
	done    bool
	stopped int // particles truncated at the boundary
	err     error

	radiusHist []float64
	fps        int
}

func NewModel(force dust.Model, initial []dust.State, grid dust.TimeGrid, fps int) Model {
	if fps < 1 {
		fps = 30
	}
	m := Model{
		force:      force,
		grid:       grid.Normalize(),
		initial:    initial,
		integ:      integrate.NewRK4(),
		fps:        fps,
		running:    true,
		radiusHist: make([]float64, 0, historyCapacity),
	}
	m.resetState()
	return m
}

func (m *Model) resetState() {
	m.states = make([]dust.State, len(m.initial))
	copy(m.states, m.initial)
	m.alive = make([]bool, len(m.initial))
	for i := range m.alive {
		m.alive[i] = true
	}
	m.step = 0
	m.t = 0
	m.done = false
	m.stopped = 0
	m.err = nil
	m.radiusHist = m.radiusHist[:0]
	m.radiusHist = append(m.radiusHist, m.states[0].Radius())
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.resetState()
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance integrates every live particle across one reporting step.
func (m *Model) advance() {
	if m.step >= m.grid.Steps {
		m.done = true
		return
	}

	for i := range m.states {
		if !m.alive[i] {
			continue
		}
		next, err := m.integ.StepInterval(m.force, i, m.states[i], m.t, m.grid.Dt, m.grid.Substeps)
		if err != nil {
			m.alive[i] = false
			if errors.Is(err, dust.ErrBoundary) {
				m.stopped++
				continue
			}
			m.err = err
			m.done = true
			return
		}
		m.states[i] = next
	}
	m.step++
	m.t += m.grid.Dt

	if m.alive[0] {
		m.radiusHist = append(m.radiusHist, m.states[0].Radius())
		if len(m.radiusHist) > historyCapacity {
			m.radiusHist = m.radiusHist[1:]
		}
	}

	live := 0
	for _, a := range m.alive {
		if a {
			live++
		}
	}
	if live == 0 || m.step >= m.grid.Steps {
		m.done = true
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.force.Name())) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = stopStyle.Render(fmt.Sprintf("ERROR: %v", m.err))
	case m.done && m.stopped > 0:
		status = stopStyle.Render("TERMINATED AT BOUNDARY")
	case m.done:
		status = "COMPLETED"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.radiusHist) > 1 {
		chart := asciigraph.Plot(m.radiusHist,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("radius, particle 0"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	live := 0
	for _, a := range m.alive {
		if a {
			live++
		}
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4g", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d / %d", m.step, m.grid.Steps)) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d live / %d", live, len(m.states))) + "\n")
	if m.stopped > 0 {
		s.WriteString(labelStyle.Render("Stopped") + valueStyle.Render(fmt.Sprintf("%d at the ionopause", m.stopped)) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause  R:Reset  Q:Quit"))
	return s.String()
}
