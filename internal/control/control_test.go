package control

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/biomech/internal/sim"
)

func TestNone(t *testing.T) {
	c := NewNone(3)
	u := c.Compute(sim.State{1, 2, 3, 4, 5, 6}, 0)
	assert.Equal(t, sim.Control{0, 0, 0}, u)
}

func TestConstantCopiesItsVector(t *testing.T) {
	src := []float64{1, -2}
	c := NewConstant(src)
	src[0] = 99

	u := c.Compute(nil, 0)
	assert.Equal(t, sim.Control{1, -2}, u)

	// Mutating the returned control must not leak into later calls.
	u[1] = 7
	assert.Equal(t, sim.Control{1, -2}, c.Compute(nil, 1))
}

func TestPD(t *testing.T) {
	c := NewPD([]float64{1, 0}, 10, 2)

	// q = (0, 0), qdot = (0.5, -1): u = kp*(target-q) - kd*qdot.
	u := c.Compute(sim.State{0, 0, 0.5, -1}, 0)
	assert.InDelta(t, 9.0, u[0], 1e-12)
	assert.InDelta(t, 2.0, u[1], 1e-12)

	// Short state yields zero control rather than a panic.
	assert.Equal(t, sim.Control{0, 0}, c.Compute(sim.State{0, 0}, 0))
}
