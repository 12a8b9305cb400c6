package rigid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestConstrainedDynamicsSatisfiesContacts(t *testing.T) {
	m := loadTestModel(t, "arm.yaml")

	q := []float64{0.4, -0.9, 0.3}
	qdot := []float64{0.6, -0.2, 1.0}
	tau := []float64{5.0, -2.0, 1.0}

	qdd, err := m.ConstrainedForwardDynamics(q, qdot, tau, nil)
	require.NoError(t, err)

	// Every constrained axis of every contact point must have zero
	// acceleration under the constrained solution.
	for ci := 0; ci < m.NbRigidContacts(); ci++ {
		acc, err := m.RigidContactAcceleration(q, qdot, qdd, ci, true)
		require.NoError(t, err)
		axes, err := m.RigidContactAxes(ci)
		require.NoError(t, err)
		for _, axis := range axes {
			assert.InDelta(t, 0.0, acc[axis], 1e-8, "contact %d axis %d", ci, axis)
		}
	}
}

func TestContactForcesCloseTheLoop(t *testing.T) {
	m := loadTestModel(t, "arm.yaml")

	q := []float64{0.4, -0.9, 0.3}
	qdot := []float64{0.6, -0.2, 1.0}
	tau := []float64{5.0, -2.0, 1.0}

	qdd, err := m.ConstrainedForwardDynamics(q, qdot, tau, nil)
	require.NoError(t, err)
	lambda, err := m.ContactForcesFromConstrainedForwardDynamics(q, qdot, tau, nil)
	require.NoError(t, err)
	require.Len(t, lambda, m.NbContacts())

	// Feeding the reconstructed contact forces back through inverse
	// dynamics must reproduce the applied torques.
	fc := [][]float64{lambda[:2], lambda[2:]}
	back, err := m.InverseDynamics(q, qdot, qdd, nil, fc)
	require.NoError(t, err)
	for i := range tau {
		assert.InDelta(t, tau[i], back[i], 1e-8)
	}
}

func TestImpactZeroesContactVelocity(t *testing.T) {
	m := loadTestModel(t, "hopper.yaml")

	q := []float64{0.1, 0.8, 0.05, -0.4}
	qdotPre := []float64{0.5, -1.8, 0.3, 1.1}

	qdotPost, err := m.QdotFromImpact(q, qdotPre)
	require.NoError(t, err)

	// The foot marker sits at the contact point: its post-impact velocity
	// must vanish along the constrained axes.
	vels, err := m.MarkerVelocities(q, qdotPost, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, vels[0][0], 1e-9)
	assert.InDelta(t, 0.0, vels[0][1], 1e-9)
}

func TestImpactConservesUnconstrainedMomentum(t *testing.T) {
	m := loadTestModel(t, "hopper.yaml")

	q := make([]float64, 4)
	q[1] = 1.0
	qdotPre := []float64{0.3, -2.0, 0.0, 0.0}

	qdotPost, err := m.QdotFromImpact(q, qdotPre)
	require.NoError(t, err)

	// The impulse acts only through the contact Jacobian; the change in
	// generalized momentum must lie in its row space.
	M, err := m.MassMatrix(q)
	require.NoError(t, err)
	J, _ := m.contactJacobian(q, qdotPre)

	n := m.NbQ()
	dp := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dp[i] += M.At(i, j) * (qdotPost[j] - qdotPre[j])
		}
	}
	// The best least-squares impulse must reconstruct dp exactly: dp has no
	// component outside span(J^T).
	nc := m.NbContacts()
	JT := mat.NewDense(n, nc, nil)
	for i := 0; i < n; i++ {
		for r := 0; r < nc; r++ {
			JT.Set(i, r, J.At(r, i))
		}
	}
	var impulse mat.VecDense
	require.NoError(t, impulse.SolveVec(JT, mat.NewVecDense(n, dp)))
	var rec mat.VecDense
	rec.MulVec(JT, &impulse)
	for i := 0; i < n; i++ {
		assert.InDelta(t, dp[i], rec.AtVec(i), 1e-9)
	}
}
