package config

import (
	"sort"

	"github.com/san-kum/swingsim/internal/sim"
)

// Presets are named deliveries. Speeds in m/s, angles in degrees. A
// positive seam angle swings the ball towards +z, away from the stumps
// for the default release line.
var Presets = map[string]sim.Params{
	"straight": {
		Speed: 35, VerticalAngle: -7.5, HorizontalAngle: 0, SeamAngle: 0,
		Restitution: 0.7, Friction: 0.8,
	},
	"inswinger": {
		Speed: 35, VerticalAngle: -7.5, HorizontalAngle: 0, SeamAngle: -20,
		Restitution: 0.7, Friction: 0.8,
	},
	"outswinger": {
		Speed: 35, VerticalAngle: -7.5, HorizontalAngle: 0, SeamAngle: 20,
		Restitution: 0.7, Friction: 0.8,
	},
	"yorker": {
		Speed: 38, VerticalAngle: -3, HorizontalAngle: -1.5, SeamAngle: 0,
		Restitution: 0.7, Friction: 0.8,
	},
	"bouncer": {
		Speed: 40, VerticalAngle: -12, HorizontalAngle: 0, SeamAngle: 0,
		Restitution: 0.8, Friction: 0.85,
	},
	"wide": {
		Speed: 35, VerticalAngle: -7.5, HorizontalAngle: 4, SeamAngle: 0,
		Restitution: 0.7, Friction: 0.8,
	},
	"slider": {
		Speed: KMH(130), VerticalAngle: -5, HorizontalAngle: 0, SeamAngle: 20,
		Restitution: 0.7, Friction: 0.8,
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (sim.Params, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
