package optim

import (
	"math"

	"github.com/san-kum/swingsim/internal/physics"
	"github.com/san-kum/swingsim/internal/sim"
)

// StumpMiss is how far a final position is from hitting middle stump: the
// lateral and longitudinal distance plus any height above the bails.
func StumpMiss(s sim.Sample, pitch physics.Pitch) float64 {
	return math.Abs(s.Z) + math.Abs(s.X-pitch.Length) + math.Max(0, s.Y-pitch.Stumps.Height)
}

// Aim is an objective that bowls base with the grid values substituted and
// scores the result with StumpMiss. newSim is called once per evaluation;
// invalid deliveries are skipped.
func Aim(base sim.Params, newSim func() *sim.Simulator) Objective {
	return func(values map[string]float64) (float64, bool) {
		merged := base.Values()
		for k, v := range values {
			merged[k] = v
		}
		p, err := sim.ParamsFromValues(merged)
		if err != nil {
			return 0, false
		}

		s := newSim()
		result, err := s.Run(p)
		if err != nil || !result.Valid() {
			return 0, false
		}
		return StumpMiss(result.Trajectory.Final(), s.Config().Pitch), true
	}
}

// Apply returns base with the point's values substituted.
func (p *Point) Apply(base sim.Params) (sim.Params, error) {
	merged := base.Values()
	for k, v := range p.Values {
		merged[k] = v
	}
	return sim.ParamsFromValues(merged)
}
