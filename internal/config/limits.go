package config

import (
	"fmt"

	"github.com/san-kum/swingsim/internal/sim"
)

// KMH converts km/h to m/s.
func KMH(kmh float64) float64 { return kmh / 3.6 }

type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Limits are the realistic ranges for a delivery. Values outside them still
// simulate; callers report them as warnings.
var Limits = map[string]Range{
	sim.KeySpeed:           {KMH(100), KMH(150)},
	sim.KeyVerticalAngle:   {-15, 5},
	sim.KeyHorizontalAngle: {-5, 5},
	sim.KeySeamAngle:       {-90, 90},
	sim.KeyRestitution:     {0.1, 0.9},
	sim.KeyFriction:        {0.1, 1.0},
}

// CheckLimits lists the parameters of p outside Limits, in header order.
func CheckLimits(p sim.Params) []string {
	var warnings []string
	values := p.Values()
	for _, key := range sim.ParamKeys {
		r := Limits[key]
		if v := values[key]; !r.Contains(v) {
			warnings = append(warnings, fmt.Sprintf("%s=%g outside [%g, %g]", key, v, r.Min, r.Max))
		}
	}
	return warnings
}
