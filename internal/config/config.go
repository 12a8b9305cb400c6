package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.001
	DefaultDuration = 5.0
	DefaultKp       = 50.0
	DefaultKd       = 5.0
)

// Config describes one simulation run: the model file, the numerical setup
// and the control law.
type Config struct {
	Model      string           `yaml:"model"`
	Integrator string           `yaml:"integrator"`
	Controller string           `yaml:"controller"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	InitState  InitStateConfig  `yaml:"init_state"`
	Control    ControllerConfig `yaml:"control"`
}

// InitStateConfig holds the initial generalized coordinates and velocities.
// Missing entries are zero-padded to the model's dimensions.
type InitStateConfig struct {
	Q           []float64 `yaml:"q"`
	Qdot        []float64 `yaml:"qdot"`
	Activations []float64 `yaml:"activations"`
}

// ControllerConfig parameterizes the control law named in Controller.
type ControllerConfig struct {
	Tau    []float64 `yaml:"tau"`
	Target []float64 `yaml:"target"`
	Kp     float64   `yaml:"kp"`
	Kd     float64   `yaml:"kd"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Controller: "none",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Control: ControllerConfig{
			Kp: DefaultKp,
			Kd: DefaultKd,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// InitialState assembles the [q; qdot] start vector for nq coordinates,
// zero-padding or truncating the configured values.
func (c *Config) InitialState(nq int) []float64 {
	x := make([]float64, 2*nq)
	copy(x[:nq], pad(c.InitState.Q, nq))
	copy(x[nq:], pad(c.InitState.Qdot, nq))
	return x
}

// InitialMuscleState assembles the [q; qdot; activations] start vector.
func (c *Config) InitialMuscleState(nq, nm int) []float64 {
	x := make([]float64, 2*nq+nm)
	copy(x, c.InitialState(nq))
	copy(x[2*nq:], pad(c.InitState.Activations, nm))
	return x
}

func pad(v []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, v)
	return out
}
