package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/biomech/internal/biomodel"
)

// JointTorqueDynamics rolls a model's generalized coordinates under joint
// torque control. The state is [q; qdot], the control is tau. With
// constrained set, the rigid contacts are held as acceleration constraints.
type JointTorqueDynamics struct {
	model       *biomodel.Model
	nq          int
	constrained bool
}

func NewJointTorqueDynamics(m *biomodel.Model, constrained bool) *JointTorqueDynamics {
	return &JointTorqueDynamics{model: m, nq: m.NbQ(), constrained: constrained}
}

func (d *JointTorqueDynamics) StateDim() int   { return 2 * d.nq }
func (d *JointTorqueDynamics) ControlDim() int { return d.nq }

func (d *JointTorqueDynamics) Derive(x State, u Control, t float64) (State, error) {
	if len(x) != d.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, want %d",
			ErrDimensionMismatch, len(x), d.StateDim())
	}
	q := vecOf(x[:d.nq])
	qdot := vecOf(x[d.nq:])
	tau := vecOf(u)

	var qdd *mat.VecDense
	var err error
	if d.constrained {
		qdd, err = d.model.ConstrainedForwardDynamics(q, qdot, tau, biomodel.ExternalForces{})
	} else {
		qdd, err = d.model.ForwardDynamics(q, qdot, tau, biomodel.ExternalForces{})
	}
	if err != nil {
		return nil, err
	}

	dx := make(State, 2*d.nq)
	copy(dx[:d.nq], x[d.nq:])
	for i := 0; i < d.nq; i++ {
		dx[d.nq+i] = qdd.AtVec(i)
	}
	return dx, nil
}

// Energy reports the model's total mechanical energy at a state.
func (d *JointTorqueDynamics) Energy(x State) (float64, error) {
	if len(x) != d.StateDim() {
		return 0, fmt.Errorf("%w: state has %d components, want %d",
			ErrDimensionMismatch, len(x), d.StateDim())
	}
	return d.model.Energy(vecOf(x[:d.nq]), vecOf(x[d.nq:]))
}

// MuscleDrivenDynamics rolls a muscle-actuated model. The state is
// [q; qdot; activations], the control is the excitation vector.
type MuscleDrivenDynamics struct {
	model *biomodel.Model
	nq    int
	nm    int
}

func NewMuscleDrivenDynamics(m *biomodel.Model) *MuscleDrivenDynamics {
	return &MuscleDrivenDynamics{model: m, nq: m.NbQ(), nm: m.NbMuscles()}
}

func (d *MuscleDrivenDynamics) StateDim() int   { return 2*d.nq + d.nm }
func (d *MuscleDrivenDynamics) ControlDim() int { return d.nm }

func (d *MuscleDrivenDynamics) Derive(x State, u Control, t float64) (State, error) {
	if len(x) != d.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, want %d",
			ErrDimensionMismatch, len(x), d.StateDim())
	}
	q := vecOf(x[:d.nq])
	qdot := vecOf(x[d.nq : 2*d.nq])
	act := vecOf(x[2*d.nq:])

	tau, err := d.model.MuscleJointTorque(act, q, qdot)
	if err != nil {
		return nil, err
	}
	qdd, err := d.model.ForwardDynamics(q, qdot, tau, biomodel.ExternalForces{})
	if err != nil {
		return nil, err
	}
	adot, err := d.model.MuscleActivationDot(vecOf(u), act)
	if err != nil {
		return nil, err
	}

	dx := make(State, d.StateDim())
	copy(dx[:d.nq], x[d.nq:2*d.nq])
	for i := 0; i < d.nq; i++ {
		dx[d.nq+i] = qdd.AtVec(i)
	}
	for i := 0; i < d.nm; i++ {
		dx[2*d.nq+i] = adot.AtVec(i)
	}
	return dx, nil
}

func vecOf(data []float64) *mat.VecDense {
	if len(data) == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(data), append([]float64(nil), data...))
}
