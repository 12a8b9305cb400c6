package rigid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// checkForces validates optional external force arguments. Nil means no
// forces applied.
func (m *Model) checkForces(fext []SpatialForce, fcontacts [][]float64) error {
	if fext != nil && len(fext) != len(m.segments) {
		return fmt.Errorf("%w: fext has %d wrenches, model has %d segments",
			ErrDimension, len(fext), len(m.segments))
	}
	if fcontacts != nil {
		if len(fcontacts) != len(m.contacts) {
			return fmt.Errorf("%w: fcontacts has %d entries, model has %d rigid contacts",
				ErrDimension, len(fcontacts), len(m.contacts))
		}
		for i, f := range fcontacts {
			if len(f) != len(m.contacts[i].Axes) {
				return fmt.Errorf("%w: contact %d force has %d axes, contact has %d",
					ErrDimension, i, len(f), len(m.contacts[i].Axes))
			}
		}
	}
	return nil
}

// invDyn is the Newton-Euler inverse dynamics core. Gravity is passed
// explicitly so the mass matrix assembly can run gravity-free.
func (m *Model) invDyn(q, qdot, qddot []float64, fext []SpatialForce, fcontacts [][]float64, grav Vec3) []float64 {
	ks := m.velAccPass(q, qdot, qddot, grav.Scale(-1))
	tau := make([]float64, len(m.dofs))

	for i := range m.segments {
		seg := &m.segments[i]
		c := ks.point(i, seg.CoM)
		f := ks.pointAcc(i, c).Scale(seg.Mass)
		nz := seg.Inertia * ks.seg[i].alpha
		for k := range m.dofs {
			if !m.affects(k, i) {
				continue
			}
			tau[k] += f.Dot(ks.jacobianColumn(m, k, c))
			if m.dofs[k].joint == RotZ {
				tau[k] += nz
			}
		}
	}

	for i := range fext {
		w := fext[i]
		if w == (SpatialForce{}) {
			continue
		}
		o := ks.seg[i].frame.T
		f := w.Force()
		mz := w.Moment()[2] - (o[0]*f[1] - o[1]*f[0])
		for k := range m.dofs {
			if !m.affects(k, i) {
				continue
			}
			tau[k] -= f.Dot(ks.jacobianColumn(m, k, o))
			if m.dofs[k].joint == RotZ {
				tau[k] -= mz
			}
		}
	}

	for ci := range fcontacts {
		contact := &m.contacts[ci]
		var f Vec3
		for j, axis := range contact.Axes {
			f[axis] += fcontacts[ci][j]
		}
		if f == (Vec3{}) {
			continue
		}
		p := ks.point(contact.Segment, contact.Point)
		for k := range m.dofs {
			if !m.affects(k, contact.Segment) {
				continue
			}
			tau[k] -= f.Dot(ks.jacobianColumn(m, k, p))
		}
	}

	return tau
}

// InverseDynamics computes the generalized forces producing qddot at
// (q, qdot), optionally under external segment wrenches and rigid contact
// point forces.
func (m *Model) InverseDynamics(q, qdot, qddot []float64, fext []SpatialForce, fcontacts [][]float64) ([]float64, error) {
	for name, v := range map[string][]float64{"q": q, "qdot": qdot, "qddot": qddot} {
		if err := m.checkDim(name, v); err != nil {
			return nil, err
		}
	}
	if err := m.checkForces(fext, fcontacts); err != nil {
		return nil, err
	}
	return m.invDyn(q, qdot, qddot, fext, fcontacts, m.gravity), nil
}

// MassMatrix assembles the joint-space inertia matrix column by column from
// gravity-free unit-acceleration inverse dynamics.
func (m *Model) MassMatrix(q []float64) (*mat.Dense, error) {
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	n := len(m.dofs)
	M := mat.NewDense(n, n, nil)
	e := make([]float64, n)
	for j := 0; j < n; j++ {
		e[j] = 1
		col := m.invDyn(q, nil, e, nil, nil, Vec3{})
		e[j] = 0
		for i := 0; i < n; i++ {
			M.Set(i, j, col[i])
		}
	}
	return M, nil
}

// nonlinearEffects returns the generalized bias forces b(q, qdot) including
// gravity and the applied external forces.
func (m *Model) nonlinearEffects(q, qdot []float64, fext []SpatialForce, fcontacts [][]float64) []float64 {
	return m.invDyn(q, qdot, nil, fext, fcontacts, m.gravity)
}

// ForwardDynamics computes qddot from generalized forces by solving
// M(q) qddot = tau - b(q, qdot). Nil force arguments mean none applied.
func (m *Model) ForwardDynamics(q, qdot, tau []float64, fext []SpatialForce, fcontacts [][]float64) ([]float64, error) {
	for name, v := range map[string][]float64{"q": q, "qdot": qdot, "tau": tau} {
		if err := m.checkDim(name, v); err != nil {
			return nil, err
		}
	}
	if err := m.checkForces(fext, fcontacts); err != nil {
		return nil, err
	}

	n := len(m.dofs)
	M, err := m.MassMatrix(q)
	if err != nil {
		return nil, err
	}
	b := m.nonlinearEffects(q, qdot, fext, fcontacts)
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, tau[i]-b[i])
	}

	var qdd mat.VecDense
	if err := qdd.SolveVec(M, rhs); err != nil {
		return nil, fmt.Errorf("%w: mass matrix solve: %v", ErrSingular, err)
	}
	out := make([]float64, n)
	copy(out, qdd.RawVector().Data)
	return out, nil
}

// ForwardDynamicsFreeFloatingBase computes the root accelerations implied by
// prescribed joint accelerations, with zero generalized force on the
// floating base.
func (m *Model) ForwardDynamicsFreeFloatingBase(q, qdot, qddotJoints []float64) ([]float64, error) {
	if m.nroot == 0 {
		return nil, ErrNoRoot
	}
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return nil, err
	}
	nj := len(m.dofs) - m.nroot
	if len(qddotJoints) != nj {
		return nil, fmt.Errorf("%w: qddot_joints has length %d, model has %d joint DOFs",
			ErrDimension, len(qddotJoints), nj)
	}

	full := make([]float64, len(m.dofs))
	copy(full[m.nroot:], qddotJoints)
	// c = M [0; qddot_joints] + b, so the root balance reads
	// M_rr qddot_root = -c_root.
	c := m.invDyn(q, qdot, full, nil, nil, m.gravity)

	M, err := m.MassMatrix(q)
	if err != nil {
		return nil, err
	}
	Mrr := mat.NewDense(m.nroot, m.nroot, nil)
	rhs := mat.NewVecDense(m.nroot, nil)
	for i := 0; i < m.nroot; i++ {
		for j := 0; j < m.nroot; j++ {
			Mrr.Set(i, j, M.At(i, j))
		}
		rhs.SetVec(i, -c[i])
	}

	var qddRoot mat.VecDense
	if err := qddRoot.SolveVec(Mrr, rhs); err != nil {
		return nil, fmt.Errorf("%w: root inertia solve: %v", ErrSingular, err)
	}
	out := make([]float64, m.nroot)
	copy(out, qddRoot.RawVector().Data)
	return out, nil
}

// TorqueMax returns the per-DOF torque bounds (upper, lower). Root DOFs are
// unactuated and carry zero bounds.
func (m *Model) TorqueMax(q, qdot []float64) ([]float64, []float64, error) {
	if err := m.checkDim("q", q); err != nil {
		return nil, nil, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return nil, nil, err
	}
	maxT := append([]float64(nil), m.tauMax...)
	minT := append([]float64(nil), m.tauMin...)
	return maxT, minT, nil
}

// Torque maps torque-actuator activations in [-1, 1] to generalized forces,
// scaling by the bound matching the activation sign.
func (m *Model) Torque(activations, q, qdot []float64) ([]float64, error) {
	for name, v := range map[string][]float64{"activations": activations, "q": q, "qdot": qdot} {
		if err := m.checkDim(name, v); err != nil {
			return nil, err
		}
	}
	tau := make([]float64, len(m.dofs))
	for i, a := range activations {
		if a >= 0 {
			tau[i] = a * m.tauMax[i]
		} else {
			tau[i] = -a * m.tauMin[i]
		}
	}
	return tau, nil
}
