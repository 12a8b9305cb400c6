package sim

import (
	"context"
	"fmt"
	"math"
)

// Simulator orchestrates a single run: control, integration, metrics and
// observers.
type Simulator struct {
	dyn        Dynamics
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn Dynamics, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 over the configured horizon. The trajectory built
// so far is returned alongside any error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: x0 has %d components, dynamics has %d",
			ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States:  make([]State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy, haveEnergy := s.energy(x)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		next, err := s.integrator.Step(s.dyn, x, u, t, cfg.Dt)
		if err != nil {
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}
		if !next.IsValid() {
			return result, &StepError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		x = next
		t += cfg.Dt
		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	if haveEnergy {
		if final, ok := s.energy(x); ok && initialEnergy != 0 {
			result.EnergyDrift = math.Abs(final-initialEnergy) / math.Abs(initialEnergy)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback integrates until the horizon ends or the callback returns
// false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0
	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)
		if !callback(x, u, t) {
			return nil
		}

		next, err := s.integrator.Step(s.dyn, x, u, t, cfg.Dt)
		if err != nil {
			return err
		}
		if !next.IsValid() {
			return fmt.Errorf("%w at t=%.4f", ErrInvalidState, t)
		}
		x = next
		t += cfg.Dt
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrBadConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrBadConfig, cfg.Duration)
	}
	return nil
}

func (s *Simulator) energy(x State) (float64, bool) {
	ec, ok := s.dyn.(EnergyComputer)
	if !ok {
		return 0, false
	}
	e, err := ec.Energy(x)
	if err != nil {
		return 0, false
	}
	return e, true
}
