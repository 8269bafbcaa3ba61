package metrics

import (
	"math"

	"github.com/san-kum/swingsim/internal/dynamo"
	"github.com/san-kum/swingsim/internal/sim"
)

// EnergyLoss is the relative loss of mechanical energy between the first
// and the last observed sample. Drag and the bounce both remove energy, so
// a forward run should report a value in [0, 1).
type EnergyLoss struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	samples       int
	sys           dynamo.Hamiltonian
}

func NewEnergyLoss(sys dynamo.Hamiltonian) *EnergyLoss {
	return &EnergyLoss{
		name: "energy_loss",
		sys:  sys,
	}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(s sim.Sample) {
	energy := e.sys.Energy(s.State())
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.samples == 0 || e.initialEnergy == 0 {
		return 0
	}
	return (e.initialEnergy - e.currentEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyLoss) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}
