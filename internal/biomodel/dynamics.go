package biomodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/biomech/internal/rigid"
)

// MassMatrix returns the joint-space inertia matrix M(q).
func (m *Model) MassMatrix(q *mat.VecDense) (*mat.Dense, error) {
	return m.model.MassMatrix(vecData(q))
}

// ForwardDynamics computes qddot from generalized forces, optionally under
// external forces.
func (m *Model) ForwardDynamics(q, qdot, tau *mat.VecDense, ext ExternalForces) (*mat.VecDense, error) {
	fext, fc, err := ext.native()
	if err != nil {
		return nil, err
	}
	qdd, err := m.model.ForwardDynamics(vecData(q), vecData(qdot), vecData(tau), fext, fc)
	if err != nil {
		return nil, err
	}
	return newVec(qdd), nil
}

// ConstrainedForwardDynamics computes qddot with the rigid contacts held as
// acceleration constraints. Contact forces are unknowns of the solve, so
// ext.Contacts is rejected here.
func (m *Model) ConstrainedForwardDynamics(q, qdot, tau *mat.VecDense, ext ExternalForces) (*mat.VecDense, error) {
	fext, err := ext.nativeSpatial()
	if err != nil {
		return nil, err
	}
	qdd, err := m.model.ConstrainedForwardDynamics(vecData(q), vecData(qdot), vecData(tau), fext)
	if err != nil {
		return nil, err
	}
	return newVec(qdd), nil
}

// ContactForcesFromConstrainedForwardDynamics returns the contact forces of
// the constrained solve, flat over contacts in index order with each
// contact's axes contiguous. As with ConstrainedForwardDynamics, contact
// forces are outputs, so ext.Contacts is rejected.
func (m *Model) ContactForcesFromConstrainedForwardDynamics(q, qdot, tau *mat.VecDense, ext ExternalForces) (*mat.VecDense, error) {
	fext, err := ext.nativeSpatial()
	if err != nil {
		return nil, err
	}
	lambda, err := m.model.ContactForcesFromConstrainedForwardDynamics(vecData(q), vecData(qdot), vecData(tau), fext)
	if err != nil {
		return nil, err
	}
	return newVec(lambda), nil
}

// InverseDynamics computes the generalized forces producing qddot at
// (q, qdot), optionally under external forces.
func (m *Model) InverseDynamics(q, qdot, qddot *mat.VecDense, ext ExternalForces) (*mat.VecDense, error) {
	fext, fc, err := ext.native()
	if err != nil {
		return nil, err
	}
	tau, err := m.model.InverseDynamics(vecData(q), vecData(qdot), vecData(qddot), fext, fc)
	if err != nil {
		return nil, err
	}
	return newVec(tau), nil
}

// QdotFromImpact computes post-impact generalized velocities under the rigid
// contact impulses.
func (m *Model) QdotFromImpact(q, qdotPre *mat.VecDense) (*mat.VecDense, error) {
	out, err := m.model.QdotFromImpact(vecData(q), vecData(qdotPre))
	if err != nil {
		return nil, err
	}
	return newVec(out), nil
}

// ForwardDynamicsFreeFloatingBase computes the root accelerations implied by
// prescribed joint accelerations with no generalized force on the base.
func (m *Model) ForwardDynamicsFreeFloatingBase(q, qdot, qddotJoints *mat.VecDense) (*mat.VecDense, error) {
	out, err := m.model.ForwardDynamicsFreeFloatingBase(vecData(q), vecData(qdot), vecData(qddotJoints))
	if err != nil {
		return nil, err
	}
	return newVec(out), nil
}

// Torque maps torque-actuator activations in [-1, 1] to generalized forces.
func (m *Model) Torque(activations, q, qdot *mat.VecDense) (*mat.VecDense, error) {
	tau, err := m.model.Torque(vecData(activations), vecData(q), vecData(qdot))
	if err != nil {
		return nil, err
	}
	return newVec(tau), nil
}

// TorqueMax returns the per-DOF actuator bounds as (upper, lower) vectors.
func (m *Model) TorqueMax(q, qdot *mat.VecDense) (*mat.VecDense, *mat.VecDense, error) {
	maxT, minT, err := m.model.TorqueMax(vecData(q), vecData(qdot))
	if err != nil {
		return nil, nil, err
	}
	return newVec(maxT), newVec(minT), nil
}

// muscleStates pairs excitation and activation vectors into engine states.
func (m *Model) muscleStates(excitations, activations *mat.VecDense) ([]rigid.MuscleState, error) {
	n := m.NbMuscles()
	if activations.Len() != n {
		return nil, fmt.Errorf("%w: activations has length %d, model has %d muscles",
			rigid.ErrDimension, activations.Len(), n)
	}
	states := make([]rigid.MuscleState, n)
	for i := 0; i < n; i++ {
		if excitations != nil {
			states[i].Excitation = excitations.AtVec(i)
		}
		states[i].Activation = activations.AtVec(i)
	}
	return states, nil
}

// MuscleActivationDot returns the activation time derivatives under
// excitation-driven first-order dynamics.
func (m *Model) MuscleActivationDot(excitations, activations *mat.VecDense) (*mat.VecDense, error) {
	if excitations.Len() != m.NbMuscles() {
		return nil, fmt.Errorf("%w: excitations has length %d, model has %d muscles",
			rigid.ErrDimension, excitations.Len(), m.NbMuscles())
	}
	states, err := m.muscleStates(excitations, activations)
	if err != nil {
		return nil, err
	}
	dot, err := m.model.MuscleActivationDot(states)
	if err != nil {
		return nil, err
	}
	return newVec(dot), nil
}

// MuscleJointTorque maps muscle activations to generalized forces through
// the moment arms.
func (m *Model) MuscleJointTorque(activations, q, qdot *mat.VecDense) (*mat.VecDense, error) {
	states, err := m.muscleStates(nil, activations)
	if err != nil {
		return nil, err
	}
	tau, err := m.model.MuscleJointTorque(states, vecData(q), vecData(qdot))
	if err != nil {
		return nil, err
	}
	return newVec(tau), nil
}

// MuscleFatigueDerivative evaluates the three-compartment fatigue flow for
// every muscle.
func (m *Model) MuscleFatigueDerivative(ma, mr, mf, targetLoad *mat.VecDense) (dma, dmr, dmf *mat.VecDense, err error) {
	a, r, f, err := m.model.MuscleFatigueDerivative(
		vecData(ma), vecData(mr), vecData(mf), vecData(targetLoad))
	if err != nil {
		return nil, nil, nil, err
	}
	return newVec(a), newVec(r), newVec(f), nil
}

// MuscleLengths returns the origin-to-insertion length of each muscle.
func (m *Model) MuscleLengths(q *mat.VecDense, updateKin bool) (*mat.VecDense, error) {
	ls, err := m.model.MuscleLengths(vecData(q), updateKin)
	if err != nil {
		return nil, err
	}
	return newVec(ls), nil
}

// SoftContactForces stacks the world-origin wrench of every soft contact
// into a single 6*nbSoftContacts vector, moment components first within each
// block. A model with no soft contacts yields an empty vector.
func (m *Model) SoftContactForces(q, qdot *mat.VecDense) (*mat.VecDense, error) {
	n := m.NbSoftContacts()
	if n == 0 {
		return &mat.VecDense{}, nil
	}
	out := mat.NewVecDense(6*n, nil)
	for i := 0; i < n; i++ {
		w, err := m.model.SoftContactForceAtOrigin(vecData(q), vecData(qdot), i)
		if err != nil {
			return nil, err
		}
		for j := 0; j < 6; j++ {
			out.SetVec(6*i+j, w[j])
		}
	}
	return out, nil
}

// ReshapeFextToFcontact partitions a flat contact-force vector into one
// vector per rigid contact, following each contact's axis count in index
// order.
func (m *Model) ReshapeFextToFcontact(flat *mat.VecDense) ([]*mat.VecDense, error) {
	out := make([]*mat.VecDense, m.NbRigidContacts())
	at := 0
	for i := range out {
		axes, err := m.model.RigidContactAxes(i)
		if err != nil {
			return nil, err
		}
		if at+len(axes) > flat.Len() {
			return nil, fmt.Errorf("%w: contact force vector has length %d, contacts need %d",
				rigid.ErrDimension, flat.Len(), m.NbContacts())
		}
		part := make([]float64, len(axes))
		for j := range part {
			part[j] = flat.AtVec(at + j)
		}
		out[i] = newVec(part)
		at += len(axes)
	}
	if at != flat.Len() {
		return nil, fmt.Errorf("%w: contact force vector has length %d, contacts need %d",
			rigid.ErrDimension, flat.Len(), at)
	}
	return out, nil
}
