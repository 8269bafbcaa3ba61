package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/swingsim/internal/dynamo"
)

const (
	DefaultGravity     = 9.81
	DefaultAirDensity  = 1.225
	DefaultBallRadius  = 0.036
	DefaultBallMass    = 0.156
	DefaultDragCoeff   = 0.5
	DefaultSeamLiftMax = 0.25
)

// Layout of the ball state vector.
const (
	X = iota
	Y
	Z
	VX
	VY
	VZ
	StateDim
)

// dragEpsilon keeps the drag direction finite at zero speed.
const dragEpsilon = 1e-8

type Vec3 [3]float64

func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// LateralAxis is the swing direction: sideways across the pitch.
var LateralAxis = Vec3{0, 0, 1}

// Ball is the aerodynamic model of a cricket ball in flight: constant
// coefficient drag, seam lift along a fixed swing axis, and gravity.
// Ball is a value type; a simulator holds its own copy.
type Ball struct {
	Mass        float64
	Radius      float64
	DragCoeff   float64
	SeamLiftMax float64
	Gravity     float64
	AirDensity  float64
	SwingAxis   Vec3

	// SeamAngle is in radians.
	SeamAngle float64
}

func NewBall() Ball {
	return Ball{
		Mass:        DefaultBallMass,
		Radius:      DefaultBallRadius,
		DragCoeff:   DefaultDragCoeff,
		SeamLiftMax: DefaultSeamLiftMax,
		Gravity:     DefaultGravity,
		AirDensity:  DefaultAirDensity,
		SwingAxis:   LateralAxis,
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// WithSeam returns a copy of b with the seam angle set from degrees.
func (b Ball) WithSeam(deg float64) Ball {
	b.SeamAngle = Radians(deg)
	return b
}

// Area is the cross-sectional area πR².
func (b Ball) Area() float64 {
	return math.Pi * b.Radius * b.Radius
}

// LiftCoeff is Cl(seam) = Cl_max·sin(seam).
func (b Ball) LiftCoeff() float64 {
	return b.SeamLiftMax * math.Sin(b.SeamAngle)
}

func (b Ball) StateDim() int { return StateDim }

func (b Ball) Derive(x dynamo.State, t float64) dynamo.State {
	vx, vy, vz := x[VX], x[VY], x[VZ]
	speed := math.Sqrt(vx*vx + vy*vy + vz*vz)

	// dynamic pressure times area
	q := 0.5 * b.AirDensity * b.Area() * speed * speed
	drag := b.DragCoeff * q
	lift := b.LiftCoeff() * q
	inv := 1 / (speed + dragEpsilon)

	fx := -drag*vx*inv + lift*b.SwingAxis[0]
	fy := -drag*vy*inv + lift*b.SwingAxis[1] - b.Mass*b.Gravity
	fz := -drag*vz*inv + lift*b.SwingAxis[2]

	return dynamo.State{vx, vy, vz, fx / b.Mass, fy / b.Mass, fz / b.Mass}
}

// Energy is kinetic plus gravitational potential energy above the pitch.
func (b Ball) Energy(x dynamo.State) float64 {
	vx, vy, vz := x[VX], x[VY], x[VZ]
	ke := 0.5 * b.Mass * (vx*vx + vy*vy + vz*vz)
	pe := b.Mass * b.Gravity * x[Y]
	return ke + pe
}

func (b Ball) Validate() error {
	switch {
	case b.Mass <= 0:
		return fmt.Errorf("ball mass %g: %w", b.Mass, dynamo.ErrParameterBounds)
	case b.Radius <= 0:
		return fmt.Errorf("ball radius %g: %w", b.Radius, dynamo.ErrParameterBounds)
	case b.DragCoeff < 0:
		return fmt.Errorf("drag coefficient %g: %w", b.DragCoeff, dynamo.ErrParameterBounds)
	case b.AirDensity < 0:
		return fmt.Errorf("air density %g: %w", b.AirDensity, dynamo.ErrParameterBounds)
	case b.Gravity < 0:
		return fmt.Errorf("gravity %g: %w", b.Gravity, dynamo.ErrParameterBounds)
	case math.Abs(b.SwingAxis.Norm()-1) > 1e-9:
		return fmt.Errorf("swing axis %v is not a unit vector: %w", b.SwingAxis, dynamo.ErrParameterBounds)
	}
	return nil
}

func (b *Ball) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":          b.Mass,
		"radius":        b.Radius,
		"drag":          b.DragCoeff,
		"seam_lift_max": b.SeamLiftMax,
		"gravity":       b.Gravity,
		"air_density":   b.AirDensity,
	}
}

func (b *Ball) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		b.Mass = value
	case "radius":
		b.Radius = value
	case "drag":
		b.DragCoeff = value
	case "seam_lift_max":
		b.SeamLiftMax = value
	case "gravity":
		b.Gravity = value
	case "air_density":
		b.AirDensity = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
