// Package tui hosts the live terminal viewer for simulation runs.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/biomech/internal/sim"
	"github.com/san-kum/biomech/internal/viz"
)

const historyCapacity = 600

type TickMsg time.Time

// Model steps a simulation at the frame rate and renders the trajectory.
type Model struct {
	dyn        sim.Dynamics
	integrator sim.Integrator
	controller sim.Controller

	state      sim.State
	initial    sim.State
	u          sim.Control
	t, dt      float64
	running    bool
	failed     error
	modelName  string
	stateNames []string

	qHistory      []float64
	energyHistory []float64
	fps           int
}

// NewModel prepares a live view over the given dynamics.
func NewModel(dyn sim.Dynamics, integ sim.Integrator, ctrl sim.Controller, x0 []float64, dt float64, modelName string, stateNames []string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		dyn:           dyn,
		integrator:    integ,
		controller:    ctrl,
		state:         sim.State(x0).Clone(),
		initial:       sim.State(x0).Clone(),
		u:             make(sim.Control, dyn.ControlDim()),
		dt:            dt,
		running:       true,
		modelName:     modelName,
		stateNames:    stateNames,
		qHistory:      make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
		fps:           fps,
	}
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
			m.reset()
		}
	case TickMsg:
		if m.running && m.failed == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.u = m.controller.Compute(m.state, m.t)
	next, err := m.integrator.Step(m.dyn, m.state, m.u, m.t, m.dt)
	if err != nil {
		m.failed = err
		m.running = false
		return
	}
	if !next.IsValid() {
		m.failed = sim.ErrInvalidState
		m.running = false
		return
	}
	m.state = next
	m.t += m.dt

	m.qHistory = push(m.qHistory, m.state[0])
	if ec, ok := m.dyn.(sim.EnergyComputer); ok {
		if e, err := ec.Energy(m.state); err == nil {
			m.energyHistory = push(m.energyHistory, e)
		}
	}
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) reset() {
	m.state = m.initial.Clone()
	m.t = 0
	m.failed = nil
	m.running = true
	m.u = make(sim.Control, m.dyn.ControlDim())
	m.qHistory = m.qHistory[:0]
	m.energyHistory = m.energyHistory[:0]
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(viz.Header.Render(strings.ToUpper(m.modelName)) + "\n")

	switch {
	case m.failed != nil:
		b.WriteString(viz.StatusPaused.Render("FAILED: "+m.failed.Error()) + "\n\n")
	case m.running:
		b.WriteString(viz.StatusRunning.Render("RUNNING") + "\n\n")
	default:
		b.WriteString(viz.StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.qHistory) > 1 {
		caption := "x0"
		if len(m.stateNames) > 0 {
			caption = m.stateNames[0]
		}
		b.WriteString(viz.Graph.Render(viz.PlotSeries(m.qHistory, caption)) + "\n\n")
	}
	if len(m.energyHistory) > 1 {
		b.WriteString(viz.Label.Render("Energy") +
			viz.Value.Render(viz.Sparkline(m.energyHistory, 40)) + "\n")
	}

	b.WriteString(viz.Label.Render("Time") + viz.Value.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	for i, v := range m.state {
		name := fmt.Sprintf("x%d", i)
		if i < len(m.stateNames) {
			name = m.stateNames[i]
		}
		b.WriteString(viz.Label.Render(name) + viz.Value.Render(fmt.Sprintf("%+.4f", v)) + "\n")
	}

	b.WriteString(viz.Help.Render("space: pause/resume   r: reset   q: quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
