package rigid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// contactJacobian builds the stacked rigid-contact Jacobian J (one row per
// constrained axis, contacts in index order) and the velocity-product bias
// gamma = Jdot * qdot, so that the acceleration constraint reads
// J qddot = -gamma.
func (m *Model) contactJacobian(q, qdot []float64) (*mat.Dense, []float64) {
	nc := m.NbContacts()
	n := len(m.dofs)
	J := mat.NewDense(nc, n, nil)
	gamma := make([]float64, nc)

	ks := m.velAccPass(q, qdot, nil, Vec3{})
	row := 0
	for ci := range m.contacts {
		contact := &m.contacts[ci]
		p := ks.point(contact.Segment, contact.Point)
		acc := ks.pointAcc(contact.Segment, p) // qddot = 0: velocity products only
		for _, axis := range contact.Axes {
			for k := 0; k < n; k++ {
				if m.affects(k, contact.Segment) {
					J.Set(row, k, ks.jacobianColumn(m, k, p)[axis])
				}
			}
			gamma[row] = acc[axis]
			row++
		}
	}
	return J, gamma
}

// constrainedSolve assembles and solves the direct KKT system
//
//	[ M  -J^T ] [ qddot ]   [ tau - b ]
//	[ J   0   ] [ lambda] = [ -gamma  ]
//
// returning accelerations and contact forces in contact-axis order.
func (m *Model) constrainedSolve(q, qdot, tau []float64, fext []SpatialForce) ([]float64, []float64, error) {
	for name, v := range map[string][]float64{"q": q, "qdot": qdot, "tau": tau} {
		if err := m.checkDim(name, v); err != nil {
			return nil, nil, err
		}
	}
	if err := m.checkForces(fext, nil); err != nil {
		return nil, nil, err
	}

	n := len(m.dofs)
	nc := m.NbContacts()
	M, err := m.MassMatrix(q)
	if err != nil {
		return nil, nil, err
	}
	b := m.nonlinearEffects(q, qdot, fext, nil)
	J, gamma := m.contactJacobian(q, qdot)

	K := mat.NewDense(n+nc, n+nc, nil)
	rhs := mat.NewVecDense(n+nc, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			K.Set(i, j, M.At(i, j))
		}
		for r := 0; r < nc; r++ {
			K.Set(i, n+r, -J.At(r, i))
			K.Set(n+r, i, J.At(r, i))
		}
		rhs.SetVec(i, tau[i]-b[i])
	}
	for r := 0; r < nc; r++ {
		rhs.SetVec(n+r, -gamma[r])
	}

	var sol mat.VecDense
	if err := sol.SolveVec(K, rhs); err != nil {
		return nil, nil, fmt.Errorf("%w: constrained dynamics solve: %v", ErrSingular, err)
	}
	qdd := make([]float64, n)
	lambda := make([]float64, nc)
	for i := 0; i < n; i++ {
		qdd[i] = sol.AtVec(i)
	}
	for r := 0; r < nc; r++ {
		lambda[r] = sol.AtVec(n + r)
	}
	return qdd, lambda, nil
}

// ConstrainedForwardDynamics computes accelerations under the rigid contact
// constraints.
func (m *Model) ConstrainedForwardDynamics(q, qdot, tau []float64, fext []SpatialForce) ([]float64, error) {
	qdd, _, err := m.constrainedSolve(q, qdot, tau, fext)
	return qdd, err
}

// ContactForcesFromConstrainedForwardDynamics returns the contact forces of
// the constrained solve, flat over contacts in index order with each
// contact's axes contiguous.
func (m *Model) ContactForcesFromConstrainedForwardDynamics(q, qdot, tau []float64, fext []SpatialForce) ([]float64, error) {
	_, lambda, err := m.constrainedSolve(q, qdot, tau, fext)
	return lambda, err
}

// QdotFromImpact computes post-impact generalized velocities from the
// impulsive contact system: momentum is conserved against the contact
// impulses and contact-point velocities vanish afterwards.
func (m *Model) QdotFromImpact(q, qdotPre []float64) ([]float64, error) {
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	if err := m.checkDim("qdot_pre", qdotPre); err != nil {
		return nil, err
	}

	n := len(m.dofs)
	nc := m.NbContacts()
	M, err := m.MassMatrix(q)
	if err != nil {
		return nil, err
	}
	J, _ := m.contactJacobian(q, qdotPre)

	// [ M  -J^T ] [ qdot+ ]   [ M qdot- ]
	// [ J   0   ] [  P    ] = [   0     ]
	K := mat.NewDense(n+nc, n+nc, nil)
	rhs := mat.NewVecDense(n+nc, nil)
	for i := 0; i < n; i++ {
		mv := 0.0
		for j := 0; j < n; j++ {
			K.Set(i, j, M.At(i, j))
			mv += M.At(i, j) * qdotPre[j]
		}
		for r := 0; r < nc; r++ {
			K.Set(i, n+r, -J.At(r, i))
			K.Set(n+r, i, J.At(r, i))
		}
		rhs.SetVec(i, mv)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(K, rhs); err != nil {
		return nil, fmt.Errorf("%w: impact solve: %v", ErrSingular, err)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = sol.AtVec(i)
	}
	return out, nil
}
