package sim

import "math"

// State is a flat vector of integrated quantities.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is a flat vector of control inputs.
type Control []float64

// Dynamics is the first-order ODE view of a system: dX/dt = f(X, u, t).
type Dynamics interface {
	Derive(x State, u Control, t float64) (State, error)
	StateDim() int
	ControlDim() int
}

// EnergyComputer is implemented by dynamics that can report total mechanical
// energy, enabling drift tracking.
type EnergyComputer interface {
	Energy(x State) (float64, error)
}

// Integrator advances a state by one timestep.
type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t, dt float64) (State, error)
}

// Controller computes the control input for a state.
type Controller interface {
	Compute(x State, t float64) Control
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every accepted step.
type Observer interface {
	OnStep(x State, u Control, t float64)
}

// Config holds the run parameters.
type Config struct {
	Dt       float64
	Duration float64
}

// Result collects the trajectory and metric values of a run.
type Result struct {
	States      []State
	Controls    []Control
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}
