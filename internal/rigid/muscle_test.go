package rigid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuscleActivationDot(t *testing.T) {
	m := loadTestModel(t, "arm.yaml")

	states := []MuscleState{
		{Excitation: 1, Activation: 0},   // full drive from rest
		{Excitation: 0, Activation: 0.5}, // relaxing
	}
	dot, err := m.MuscleActivationDot(states)
	require.NoError(t, err)

	// e > a: tau = tau_act * (0.5 + 1.5a) = 0.005, da = 1/0.005.
	assert.InDelta(t, 200.0, dot[0], 1e-9)
	// e < a: tau = tau_deact / (0.5 + 1.5a) = 0.032, da = -0.5/0.032.
	assert.InDelta(t, -15.625, dot[1], 1e-9)

	_, err = m.MuscleActivationDot(states[:1])
	assert.ErrorIs(t, err, ErrDimension)
}

func TestMuscleJointTorqueMatchesLengthGradient(t *testing.T) {
	m := loadTestModel(t, "arm.yaml")

	q := []float64{0.3, -0.7, 0.2}
	qdot := make([]float64, 3)
	states := []MuscleState{
		{Activation: 0.8},
		{Activation: 0.4},
	}

	tau, err := m.MuscleJointTorque(states, q, qdot)
	require.NoError(t, err)

	// tau_k = -sum_m dL_m/dq_k * a_m * Fmax_m, checked by central
	// differences of the muscle lengths.
	const h = 1e-6
	for k := range q {
		qp := append([]float64(nil), q...)
		qm := append([]float64(nil), q...)
		qp[k] += h
		qm[k] -= h
		lp, err := m.MuscleLengths(qp, true)
		require.NoError(t, err)
		lm, err := m.MuscleLengths(qm, true)
		require.NoError(t, err)

		want := 0.0
		for i := range states {
			grad := (lp[i] - lm[i]) / (2 * h)
			fmax := []float64{620, 800}[i]
			want -= grad * states[i].Activation * fmax
		}
		assert.InDelta(t, want, tau[k], 1e-4)
	}
}

func TestMuscleTorqueUnspannedJoint(t *testing.T) {
	m := loadTestModel(t, "arm.yaml")

	// Both muscles end on the forearm; the wrist joint comes after every
	// attachment, so it carries no muscular torque.
	states := []MuscleState{{Activation: 1}, {Activation: 1}}
	tau, err := m.MuscleJointTorque(states, []float64{0.5, -0.4, 0.8}, make([]float64, 3))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, tau[2], 1e-9)
}

func TestXiaFatigueFlowConservation(t *testing.T) {
	m := loadTestModel(t, "arm.yaml")

	ma := []float64{0.3, 0.1}
	mr := []float64{0.6, 0.85}
	mf := []float64{0.1, 0.05}
	load := []float64{0.7, 0.2}

	dma, dmr, dmf, err := m.MuscleFatigueDerivative(ma, mr, mf, load)
	require.NoError(t, err)
	for i := range ma {
		assert.InDelta(t, 0.0, dma[i]+dmr[i]+dmf[i], 1e-12,
			"compartment flow must conserve mass for muscle %d", i)
	}

	// Below target load with available reserve the activation develops.
	assert.Greater(t, dma[0], 0.0)
	// Above target load the activation recovers toward the target.
	ma2 := []float64{0.5, 0.5}
	load2 := []float64{0.1, 0.1}
	dma2, _, _, err := m.MuscleFatigueDerivative(ma2, mr, mf, load2)
	require.NoError(t, err)
	assert.Less(t, dma2[0], 0.0)
}

func TestSoftContactForce(t *testing.T) {
	m := loadTestModel(t, "hopper.yaml")

	// Pelvis high: the heel sphere clears the ground.
	qUp := []float64{0, 1.0, 0, 0}
	zero := make([]float64, 4)
	w, err := m.SoftContactForceAtOrigin(qUp, zero, 0)
	require.NoError(t, err)
	assert.Equal(t, SpatialForce{}, w)

	// Pelvis low enough that the sphere penetrates: foot at y = 0.52 - 0.5
	// = 0.02, depth = 0.05 - 0.02 = 0.03, fy = 3000 * 0.03 = 90.
	qDown := []float64{0, 0.52, 0, 0}
	w, err = m.SoftContactForceAtOrigin(qDown, zero, 0)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, w[4], 1e-9)
	assert.InDelta(t, 0.0, w[3], 1e-9)

	// Fast upward motion: damping may not make the plane pull.
	up := []float64{0, 100, 0, 0}
	w, err = m.SoftContactForceAtOrigin(qDown, up, 0)
	require.NoError(t, err)
	assert.Equal(t, SpatialForce{}, w)

	_, err = m.SoftContactForceAtOrigin(qDown, zero, 7)
	assert.ErrorIs(t, err, ErrIndexRange)
}
