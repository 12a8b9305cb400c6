package biomodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/biomech/internal/rigid"
)

func TestForwardDynamicsPendulum(t *testing.T) {
	m := loadModel(t, "pendulum.yaml")

	// Hanging at rest nothing moves.
	qdd, err := m.ForwardDynamics(vec(0), vec(0), vec(0), ExternalForces{})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, qdd.AtVec(0), 1e-12)

	// Horizontal rod: qdd = -m g l/2 / (m l^2/3).
	qdd, err = m.ForwardDynamics(vec(math.Pi/2), vec(0), vec(0), ExternalForces{})
	require.NoError(t, err)
	assert.InDelta(t, -14.715, qdd.AtVec(0), 1e-9)

	// The holding torque is the gravity torque.
	tau, err := m.InverseDynamics(vec(math.Pi/2), vec(0), vec(0), ExternalForces{})
	require.NoError(t, err)
	assert.InDelta(t, 4.905, tau.AtVec(0), 1e-9)
}

func TestMassMatrixSymmetry(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	M, err := m.MassMatrix(vec(0.3, -0.8, 0.4))
	require.NoError(t, err)
	r, c := M.Dims()
	require.Equal(t, m.NbQ(), r)
	require.Equal(t, m.NbQ(), c)
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			assert.InDelta(t, M.At(i, j), M.At(j, i), 1e-10)
		}
	}
}

func TestForwardInverseRoundTrip(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	q := vec(0.4, -0.9, 0.3)
	qdot := vec(0.6, -0.2, 1.0)
	tau := vec(5.0, -2.0, 1.0)

	// A wrench on the hand plus a force on each rigid contact, carried
	// through both directions of the dynamics.
	spatial := mat.NewDense(6, m.NbSegments(), nil)
	spatial.Set(2, 2, 0.4)
	spatial.Set(3, 2, 1.5)
	spatial.Set(4, 2, -2.0)
	ext := ExternalForces{
		Spatial:  spatial,
		Contacts: []*mat.VecDense{vec(0.7, -1.1), vec(0.3)},
	}

	qdd, err := m.ForwardDynamics(q, qdot, tau, ext)
	require.NoError(t, err)
	back, err := m.InverseDynamics(q, qdot, qdd, ext)
	require.NoError(t, err)
	for i := 0; i < tau.Len(); i++ {
		assert.InDelta(t, tau.AtVec(i), back.AtVec(i), 1e-8)
	}
}

func TestSpatialForcesNeedSixRows(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	ext := ExternalForces{Spatial: mat.NewDense(5, m.NbSegments(), nil)}
	_, err := m.ForwardDynamics(vec(0, 0, 0), vec(0, 0, 0), vec(0, 0, 0), ext)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6 rows")
}

func TestConstrainedDynamicsRejectContactInputs(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	q, qdot, tau := vec(0, 0, 0), vec(0, 0, 0), vec(0, 0, 0)
	ext := ExternalForces{Contacts: []*mat.VecDense{vec(1, 2), vec(3)}}

	_, err := m.ConstrainedForwardDynamics(q, qdot, tau, ext)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per-contact")

	_, err = m.ContactForcesFromConstrainedForwardDynamics(q, qdot, tau, ext)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per-contact")
}

func TestConstrainedDynamicsClosesTheLoop(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	q := vec(0.4, -0.9, 0.3)
	qdot := vec(0.6, -0.2, 1.0)
	tau := vec(5.0, -2.0, 1.0)

	qdd, err := m.ConstrainedForwardDynamics(q, qdot, tau, ExternalForces{})
	require.NoError(t, err)

	for ci := 0; ci < m.NbRigidContacts(); ci++ {
		acc, err := m.RigidContactAcceleration(q, qdot, qdd, ci, true)
		require.NoError(t, err)
		axes, err := m.RigidContactAxes(ci)
		require.NoError(t, err)
		for _, axis := range axes {
			assert.InDelta(t, 0.0, acc.AtVec(axis), 1e-8)
		}
	}

	// Contact forces reshaped per contact and fed back through inverse
	// dynamics reproduce the applied torques.
	lambda, err := m.ContactForcesFromConstrainedForwardDynamics(q, qdot, tau, ExternalForces{})
	require.NoError(t, err)
	require.Equal(t, m.NbContacts(), lambda.Len())
	parts, err := m.ReshapeFextToFcontact(lambda)
	require.NoError(t, err)
	require.Len(t, parts, m.NbRigidContacts())

	back, err := m.InverseDynamics(q, qdot, qdd, ExternalForces{Contacts: parts})
	require.NoError(t, err)
	for i := 0; i < tau.Len(); i++ {
		assert.InDelta(t, tau.AtVec(i), back.AtVec(i), 1e-8)
	}
}

func TestReshapeFextToFcontactPartition(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	parts, err := m.ReshapeFextToFcontact(vec(1, 2, 3))
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, 2, parts[0].Len())
	assert.Equal(t, 1, parts[1].Len())
	assert.InDelta(t, 1.0, parts[0].AtVec(0), 1e-12)
	assert.InDelta(t, 2.0, parts[0].AtVec(1), 1e-12)
	assert.InDelta(t, 3.0, parts[1].AtVec(0), 1e-12)

	_, err = m.ReshapeFextToFcontact(vec(1, 2))
	assert.ErrorIs(t, err, rigid.ErrDimension)
	_, err = m.ReshapeFextToFcontact(vec(1, 2, 3, 4))
	assert.ErrorIs(t, err, rigid.ErrDimension)
}

func TestImpactStopsTheFoot(t *testing.T) {
	m := loadModel(t, "hopper.yaml")

	q := vec(0.1, 0.8, 0.05, -0.4)
	qdotPre := vec(0.5, -1.8, 0.3, 1.1)

	qdotPost, err := m.QdotFromImpact(q, qdotPre)
	require.NoError(t, err)

	vels, err := m.MarkerVelocities(q, qdotPost, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, vels.At(0, 0), 1e-9)
	assert.InDelta(t, 0.0, vels.At(1, 0), 1e-9)
}

func TestFreeFloatingBase(t *testing.T) {
	m := loadModel(t, "hopper.yaml")

	q := vec(0, 1.0, 0.1, -0.3)
	qdot := vec(0.2, -0.1, 0.4, 0.6)
	qddRoot, err := m.ForwardDynamicsFreeFloatingBase(q, qdot, vec(1.5))
	require.NoError(t, err)
	require.Equal(t, m.NbRoot(), qddRoot.Len())

	// Completing the acceleration vector and running inverse dynamics must
	// leave the unactuated base force-free.
	full := vec(qddRoot.AtVec(0), qddRoot.AtVec(1), qddRoot.AtVec(2), 1.5)
	tau, err := m.InverseDynamics(q, qdot, full, ExternalForces{})
	require.NoError(t, err)
	for i := 0; i < m.NbRoot(); i++ {
		assert.InDelta(t, 0.0, tau.AtVec(i), 1e-8)
	}

	fixed := loadModel(t, "arm.yaml")
	_, err = fixed.ForwardDynamicsFreeFloatingBase(vec(0, 0, 0), vec(0, 0, 0), vec(0, 0, 0))
	assert.ErrorIs(t, err, rigid.ErrNoRoot)
}

func TestTorqueActuators(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	q := vec(0, 0, 0)
	tau, err := m.Torque(vec(1, -0.5, 0.25), q, q)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, tau.AtVec(0), 1e-12)
	assert.InDelta(t, -30.0, tau.AtVec(1), 1e-12)
	assert.InDelta(t, 5.0, tau.AtVec(2), 1e-12)

	hopper := loadModel(t, "hopper.yaml")
	q4 := vec(0, 0, 0, 0)
	maxT, minT, err := hopper.TorqueMax(q4, q4)
	require.NoError(t, err)
	for i := 0; i < hopper.NbRoot(); i++ {
		assert.InDelta(t, 0.0, maxT.AtVec(i), 1e-12)
		assert.InDelta(t, 0.0, minT.AtVec(i), 1e-12)
	}
	assert.InDelta(t, 100.0, maxT.AtVec(3), 1e-12)
	assert.InDelta(t, -100.0, minT.AtVec(3), 1e-12)
}

func TestMuscleOperations(t *testing.T) {
	m := loadModel(t, "arm.yaml")

	dot, err := m.MuscleActivationDot(vec(1, 0), vec(0, 0.5))
	require.NoError(t, err)
	assert.InDelta(t, 200.0, dot.AtVec(0), 1e-9)
	assert.InDelta(t, -15.625, dot.AtVec(1), 1e-9)

	_, err = m.MuscleActivationDot(vec(1), vec(0, 0.5))
	assert.ErrorIs(t, err, rigid.ErrDimension)

	q := vec(0.3, -0.7, 0.2)
	qdot := vec(0, 0, 0)
	tau, err := m.MuscleJointTorque(vec(0.8, 0.4), q, qdot)
	require.NoError(t, err)
	require.Equal(t, m.NbTau(), tau.Len())
	// Both muscles end on the forearm, leaving the wrist torque-free.
	assert.InDelta(t, 0.0, tau.AtVec(2), 1e-9)

	ls, err := m.MuscleLengths(q, true)
	require.NoError(t, err)
	require.Equal(t, m.NbMuscles(), ls.Len())
	assert.Greater(t, ls.AtVec(0), 0.0)

	dma, dmr, dmf, err := m.MuscleFatigueDerivative(
		vec(0.3, 0.1), vec(0.6, 0.85), vec(0.1, 0.05), vec(0.7, 0.2))
	require.NoError(t, err)
	for i := 0; i < m.NbMuscles(); i++ {
		assert.InDelta(t, 0.0, dma.AtVec(i)+dmr.AtVec(i)+dmf.AtVec(i), 1e-12)
	}
}

func TestSoftContactForcesStacking(t *testing.T) {
	m := loadModel(t, "hopper.yaml")

	// Pelvis low enough that the heel sphere penetrates the ground:
	// depth = 0.05 - 0.02, fy = 3000 * 0.03.
	q := vec(0, 0.52, 0, 0)
	qdot := vec(0, 0, 0, 0)
	w, err := m.SoftContactForces(q, qdot)
	require.NoError(t, err)
	require.Equal(t, 6*m.NbSoftContacts(), w.Len())
	assert.InDelta(t, 90.0, w.AtVec(4), 1e-9)
	assert.InDelta(t, 0.0, w.AtVec(3), 1e-9)

	// Clear of the ground the whole stack is zero.
	w, err = m.SoftContactForces(vec(0, 1.0, 0, 0), qdot)
	require.NoError(t, err)
	for i := 0; i < w.Len(); i++ {
		assert.InDelta(t, 0.0, w.AtVec(i), 1e-12)
	}
}
