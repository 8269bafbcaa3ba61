package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/swingsim/internal/dynamo"
)

const (
	DefaultPitchLength = 20.12
	DefaultPitchWidth  = 3.0
	DefaultPitchMargin = 0.0

	DefaultStumpHalfWidth      = 0.22
	DefaultStumpDepthTolerance = 0.5
	DefaultStumpHeight         = 0.71
)

// Stumps is the target footprint at the batter's end.
type Stumps struct {
	HalfWidth      float64 `yaml:"half_width" json:"half_width"`
	DepthTolerance float64 `yaml:"depth_tolerance" json:"depth_tolerance"`
	Height         float64 `yaml:"height" json:"height"`
}

// Pitch is measured from the bowler's stumps (x = 0) to the batter's
// stumps (x = Length), centred on z = 0.
type Pitch struct {
	Length float64 `yaml:"length" json:"length"`
	Width  float64 `yaml:"width" json:"width"`
	Margin float64 `yaml:"margin" json:"margin"`
	Stumps Stumps  `yaml:"stumps" json:"stumps"`
}

func StandardPitch() Pitch {
	return Pitch{
		Length: DefaultPitchLength,
		Width:  DefaultPitchWidth,
		Margin: DefaultPitchMargin,
		Stumps: Stumps{
			HalfWidth:      DefaultStumpHalfWidth,
			DepthTolerance: DefaultStumpDepthTolerance,
			Height:         DefaultStumpHeight,
		},
	}
}

// HalfWidth is the lateral bound |z| beyond which the ball has left the pitch.
func (p Pitch) HalfWidth() float64 {
	return p.Width/2 + p.Margin
}

// Outside reports whether (x, z) is past the far end or beyond the sides.
func (p Pitch) Outside(x, z float64) bool {
	return x > p.Length || math.Abs(z) > p.HalfWidth()
}

// Hit is the stump test applied to a ball's final position.
func (p Pitch) Hit(x, y, z float64) bool {
	s := p.Stumps
	return math.Abs(z) <= s.HalfWidth &&
		math.Abs(x-p.Length) <= s.DepthTolerance &&
		y <= s.Height
}

func (p Pitch) Validate() error {
	switch {
	case p.Length <= 0:
		return fmt.Errorf("pitch length %g: %w", p.Length, dynamo.ErrParameterBounds)
	case p.Width <= 0:
		return fmt.Errorf("pitch width %g: %w", p.Width, dynamo.ErrParameterBounds)
	case p.Margin < 0:
		return fmt.Errorf("pitch margin %g: %w", p.Margin, dynamo.ErrParameterBounds)
	}
	return nil
}
