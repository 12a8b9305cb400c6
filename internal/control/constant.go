package control

import "github.com/san-kum/biomech/internal/sim"

// Constant applies a fixed control vector at every step.
type Constant struct {
	u sim.Control
}

func NewConstant(u []float64) *Constant {
	c := make(sim.Control, len(u))
	copy(c, u)
	return &Constant{u: c}
}

func (c *Constant) Compute(x sim.State, t float64) sim.Control {
	out := make(sim.Control, len(c.u))
	copy(out, c.u)
	return out
}
