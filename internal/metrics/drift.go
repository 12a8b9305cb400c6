package metrics

import (
	"math"

	"github.com/san-kum/biomech/internal/sim"
)

// EnergyDrift tracks the worst relative deviation of total mechanical energy
// from its initial value. Dynamics that cannot report energy leave the
// metric at zero.
type EnergyDrift struct {
	name          string
	dyn           sim.Dynamics
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(dyn sim.Dynamics) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", dyn: dyn}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x sim.State, u sim.Control, t float64) {
	ec, ok := e.dyn.(sim.EnergyComputer)
	if !ok {
		return
	}
	energy, err := ec.Energy(x)
	if err != nil {
		return
	}

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
