package control

import "github.com/san-kum/biomech/internal/sim"

// PD is a joint-space proportional-derivative law driving the first half of
// the state (q) toward a target posture, damped by the second half (qdot).
type PD struct {
	target []float64
	kp, kd float64
}

func NewPD(target []float64, kp, kd float64) *PD {
	tgt := make([]float64, len(target))
	copy(tgt, target)
	return &PD{target: tgt, kp: kp, kd: kd}
}

func (c *PD) Compute(x sim.State, t float64) sim.Control {
	n := len(c.target)
	u := make(sim.Control, n)
	if len(x) < 2*n {
		return u
	}
	for i := 0; i < n; i++ {
		u[i] = c.kp*(c.target[i]-x[i]) - c.kd*x[n+i]
	}
	return u
}
