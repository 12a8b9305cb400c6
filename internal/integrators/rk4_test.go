package integrators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/biomech/internal/sim"
)

// decay is dX/dt = -x with the exact solution x(t) = x0 exp(-t).
type decay struct{}

func (decay) Derive(x sim.State, u sim.Control, t float64) (sim.State, error) {
	return sim.State{-x[0]}, nil
}
func (decay) StateDim() int   { return 1 }
func (decay) ControlDim() int { return 0 }

func integrate(t *testing.T, integ sim.Integrator, dt float64) float64 {
	t.Helper()
	x := sim.State{1.0}
	steps := int(1.0 / dt)
	for i := 0; i < steps; i++ {
		next, err := integ.Step(decay{}, x, nil, float64(i)*dt, dt)
		require.NoError(t, err)
		x = next
	}
	return math.Abs(x[0] - math.Exp(-1))
}

func TestEulerFirstOrderConvergence(t *testing.T) {
	coarse := integrate(t, NewEuler(), 0.02)
	fine := integrate(t, NewEuler(), 0.01)

	ratio := coarse / fine
	assert.InDelta(t, 2.0, ratio, 0.2)
}

func TestRK4FourthOrderConvergence(t *testing.T) {
	coarse := integrate(t, NewRK4(), 0.02)
	fine := integrate(t, NewRK4(), 0.01)

	ratio := coarse / fine
	assert.InDelta(t, 16.0, ratio, 2.0)
}

func TestRK4BeatsEuler(t *testing.T) {
	assert.Less(t, integrate(t, NewRK4(), 0.01), integrate(t, NewEuler(), 0.01))
}

type failing struct{}

func (failing) Derive(x sim.State, u sim.Control, t float64) (sim.State, error) {
	return nil, assert.AnError
}
func (failing) StateDim() int   { return 1 }
func (failing) ControlDim() int { return 0 }

func TestStepPropagatesDerivativeError(t *testing.T) {
	_, err := NewRK4().Step(failing{}, sim.State{0}, nil, 0, 0.01)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = NewEuler().Step(failing{}, sim.State{0}, nil, 0, 0.01)
	assert.ErrorIs(t, err, assert.AnError)
}
