package rigid

import "fmt"

// Default activation dynamics time constants, after Thelen.
const (
	defaultTauActivation   = 0.01
	defaultTauDeactivation = 0.04
)

// XiaParams are the rate constants of the Xia three-compartment fatigue
// model.
type XiaParams struct {
	LD float64 // development rate, resting -> active
	LR float64 // recovery rate, active -> resting
	F  float64 // fatigue rate, active -> fatigued
	R  float64 // rest recovery rate, fatigued -> resting
}

// DefaultXiaParams returns commonly used fatigue rate constants.
func DefaultXiaParams() XiaParams {
	return XiaParams{LD: 10, LR: 10, F: 0.01, R: 0.002}
}

// Muscle is a straight-line force element between two segment-fixed points.
type Muscle struct {
	Name            string
	OriginSegment   int
	OriginPoint     Vec3
	InsertSegment   int
	InsertPoint     Vec3
	Fmax            float64
	OptimalLength   float64
	TauActivation   float64
	TauDeactivation float64
	Fatigue         *XiaParams
}

func newMuscle(def MuscleDef, segIdx map[string]int) (Muscle, error) {
	org, ok := segIdx[def.Origin.Segment]
	if !ok {
		return Muscle{}, fmt.Errorf("%w: muscle %q origin segment %q", ErrModelFile, def.Name, def.Origin.Segment)
	}
	ins, ok := segIdx[def.Insertion.Segment]
	if !ok {
		return Muscle{}, fmt.Errorf("%w: muscle %q insertion segment %q", ErrModelFile, def.Name, def.Insertion.Segment)
	}
	mu := Muscle{
		Name:            def.Name,
		OriginSegment:   org,
		OriginPoint:     Vec3(def.Origin.Point),
		InsertSegment:   ins,
		InsertPoint:     Vec3(def.Insertion.Point),
		Fmax:            def.Fmax,
		OptimalLength:   def.OptimalLength,
		TauActivation:   def.TauActivation,
		TauDeactivation: def.TauDeactivation,
	}
	if mu.TauActivation == 0 {
		mu.TauActivation = defaultTauActivation
	}
	if mu.TauDeactivation == 0 {
		mu.TauDeactivation = defaultTauDeactivation
	}
	if def.Fatigue != nil {
		p := XiaParams{LD: def.Fatigue.LD, LR: def.Fatigue.LR, F: def.Fatigue.F, R: def.Fatigue.R}
		mu.Fatigue = &p
	}
	return mu, nil
}

// checkMuscleDim validates a per-muscle vector length.
func (m *Model) checkMuscleDim(name string, n int) error {
	if n != len(m.muscles) {
		return fmt.Errorf("%w: %s has length %d, model has %d muscles",
			ErrDimension, name, n, len(m.muscles))
	}
	return nil
}

// MuscleLengths returns the origin-to-insertion length of each muscle.
func (m *Model) MuscleLengths(q []float64, updateKin bool) ([]float64, error) {
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	ks := m.kin(q, updateKin)
	out := make([]float64, len(m.muscles))
	for i := range m.muscles {
		mu := &m.muscles[i]
		out[i] = ks.point(mu.InsertSegment, mu.InsertPoint).
			Sub(ks.point(mu.OriginSegment, mu.OriginPoint)).Norm()
	}
	return out, nil
}

// momentArms returns -dL/dq for one muscle: the generalized direction along
// which the muscle's tension acts.
func (m *Model) momentArms(ks *kinState, mu *Muscle) []float64 {
	pO := ks.point(mu.OriginSegment, mu.OriginPoint)
	pI := ks.point(mu.InsertSegment, mu.InsertPoint)
	dir := pI.Sub(pO)
	l := dir.Norm()
	if l == 0 {
		return make([]float64, len(m.dofs))
	}
	u := dir.Scale(1 / l)

	arms := make([]float64, len(m.dofs))
	for k := range m.dofs {
		dI, dO := Vec3{}, Vec3{}
		if m.affects(k, mu.InsertSegment) {
			dI = ks.jacobianColumn(m, k, pI)
		}
		if m.affects(k, mu.OriginSegment) {
			dO = ks.jacobianColumn(m, k, pO)
		}
		arms[k] = -u.Dot(dI.Sub(dO))
	}
	return arms
}

// MuscleJointTorque maps muscle states to generalized forces through the
// moment arms: tau = sum_m r_m(q) * a_m * Fmax_m.
func (m *Model) MuscleJointTorque(states []MuscleState, q, qdot []float64) ([]float64, error) {
	if err := m.checkMuscleDim("muscle states", len(states)); err != nil {
		return nil, err
	}
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return nil, err
	}
	ks := m.kin(q, true)
	tau := make([]float64, len(m.dofs))
	for i := range m.muscles {
		mu := &m.muscles[i]
		force := states[i].Activation * mu.Fmax
		for k, r := range m.momentArms(ks, mu) {
			tau[k] += r * force
		}
	}
	return tau, nil
}

// MuscleActivationDot returns the activation time derivative of each muscle
// under first-order excitation-driven dynamics with activation-dependent
// time constants.
func (m *Model) MuscleActivationDot(states []MuscleState) ([]float64, error) {
	if err := m.checkMuscleDim("muscle states", len(states)); err != nil {
		return nil, err
	}
	out := make([]float64, len(m.muscles))
	for i := range m.muscles {
		mu := &m.muscles[i]
		e, a := states[i].Excitation, states[i].Activation
		var tau float64
		if e > a {
			tau = mu.TauActivation * (0.5 + 1.5*a)
		} else {
			tau = mu.TauDeactivation / (0.5 + 1.5*a)
		}
		out[i] = (e - a) / tau
	}
	return out, nil
}

// MuscleFatigueDerivative evaluates the Xia three-compartment flow for each
// muscle: ma active, mr resting, mf fatigued, driven by the target load in
// [0, 1]. The three derivatives of one muscle always sum to zero.
func (m *Model) MuscleFatigueDerivative(ma, mr, mf, targetLoad []float64) (dma, dmr, dmf []float64, err error) {
	for _, v := range [][]float64{ma, mr, mf, targetLoad} {
		if err := m.checkMuscleDim("fatigue state", len(v)); err != nil {
			return nil, nil, nil, err
		}
	}
	dma = make([]float64, len(m.muscles))
	dmr = make([]float64, len(m.muscles))
	dmf = make([]float64, len(m.muscles))
	for i := range m.muscles {
		p := DefaultXiaParams()
		if m.muscles[i].Fatigue != nil {
			p = *m.muscles[i].Fatigue
		}
		tl := targetLoad[i]
		var c float64
		switch {
		case ma[i] >= tl:
			c = p.LR * (tl - ma[i])
		case mr[i] > tl-ma[i]:
			c = p.LD * (tl - ma[i])
		default:
			c = p.LD * mr[i]
		}
		dma[i] = c - p.F*ma[i]
		dmr[i] = -c + p.R*mf[i]
		dmf[i] = p.F*ma[i] - p.R*mf[i]
	}
	return dma, dmr, dmf, nil
}
