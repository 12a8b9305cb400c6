package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: models/arm.yaml\ndt: 0.002\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "models/arm.yaml", cfg.Model)
	assert.Equal(t, 0.002, cfg.Dt)
	assert.Equal(t, DefaultDuration, cfg.Duration)
	assert.Equal(t, "rk4", cfg.Integrator)
	assert.Equal(t, "none", cfg.Controller)
	assert.Equal(t, DefaultKp, cfg.Control.Kp)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Model = "models/hopper.yaml"
	cfg.Controller = "pd"
	cfg.InitState.Q = []float64{0, 1, 0, -0.3}
	cfg.Control.Target = []float64{0, 1, 0, 0}

	require.NoError(t, Save(path, cfg))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Model, back.Model)
	assert.Equal(t, cfg.InitState.Q, back.InitState.Q)
	assert.Equal(t, cfg.Control.Target, back.Control.Target)
}

func TestInitialStatePadding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitState.Q = []float64{0.5}
	cfg.InitState.Qdot = []float64{1, 2, 3, 4, 5}

	x := cfg.InitialState(3)
	assert.Equal(t, []float64{0.5, 0, 0, 1, 2, 3}, x)

	cfg.InitState.Activations = []float64{0.1, 0.2}
	xm := cfg.InitialMuscleState(3, 2)
	assert.Equal(t, []float64{0.5, 0, 0, 1, 2, 3, 0.1, 0.2}, xm)
}
