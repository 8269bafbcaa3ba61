package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/swingsim/internal/dynamo"
	"github.com/san-kum/swingsim/internal/physics"
)

var (
	// ErrInvalidTrajectory marks a delivery that left the pitch sideways
	// before reaching the far end.
	ErrInvalidTrajectory = errors.New("sim: ball left the pitch laterally before reaching the far end")

	// ErrMissingParam is returned when a parameter mapping lacks a key.
	ErrMissingParam = errors.New("sim: missing parameter")
)

// Parameter keys, in header order.
const (
	KeySpeed           = "v0"
	KeyVerticalAngle   = "angle_y"
	KeyHorizontalAngle = "angle_z"
	KeySeamAngle       = "seam_angle"
	KeyRestitution     = "e"
	KeyFriction        = "mu"
)

var ParamKeys = []string{
	KeySpeed,
	KeyVerticalAngle,
	KeyHorizontalAngle,
	KeySeamAngle,
	KeyRestitution,
	KeyFriction,
}

// Params are the release and surface parameters of one delivery.
// Angles are in degrees.
type Params struct {
	Speed           float64 `yaml:"v0" json:"v0"`
	VerticalAngle   float64 `yaml:"angle_y" json:"angle_y"`
	HorizontalAngle float64 `yaml:"angle_z" json:"angle_z"`
	SeamAngle       float64 `yaml:"seam_angle" json:"seam_angle"`
	Restitution     float64 `yaml:"e" json:"e"`
	Friction        float64 `yaml:"mu" json:"mu"`
}

func (p Params) WithSeam(deg float64) Params {
	p.SeamAngle = deg
	return p
}

func (p Params) Validate() error {
	values := p.Values()
	for _, key := range ParamKeys {
		if v := values[key]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s=%v: %w", key, v, dynamo.ErrParameterBounds)
		}
	}
	switch {
	case p.Speed <= 0:
		return fmt.Errorf("%s=%g must be positive: %w", KeySpeed, p.Speed, dynamo.ErrParameterBounds)
	case p.Restitution <= 0 || p.Restitution > 1:
		return fmt.Errorf("%s=%g outside (0, 1]: %w", KeyRestitution, p.Restitution, dynamo.ErrParameterBounds)
	case p.Friction <= 0 || p.Friction > 1:
		return fmt.Errorf("%s=%g outside (0, 1]: %w", KeyFriction, p.Friction, dynamo.ErrParameterBounds)
	}
	return nil
}

func (p Params) Values() map[string]float64 {
	return map[string]float64{
		KeySpeed:           p.Speed,
		KeyVerticalAngle:   p.VerticalAngle,
		KeyHorizontalAngle: p.HorizontalAngle,
		KeySeamAngle:       p.SeamAngle,
		KeyRestitution:     p.Restitution,
		KeyFriction:        p.Friction,
	}
}

// ParamsFromValues is the inverse of Values. Extra keys are ignored.
func ParamsFromValues(values map[string]float64) (Params, error) {
	for _, key := range ParamKeys {
		if _, ok := values[key]; !ok {
			return Params{}, fmt.Errorf("%w: %s", ErrMissingParam, key)
		}
	}
	return Params{
		Speed:           values[KeySpeed],
		VerticalAngle:   values[KeyVerticalAngle],
		HorizontalAngle: values[KeyHorizontalAngle],
		SeamAngle:       values[KeySeamAngle],
		Restitution:     values[KeyRestitution],
		Friction:        values[KeyFriction],
	}, nil
}

// Config holds the fixed simulation constants. Lengths in metres, times in
// seconds.
type Config struct {
	Dt            float64
	Duration      float64
	ReleaseHeight float64
	ReleaseOffset float64

	// SettleSpeed is the post-bounce vertical speed below which the ball is
	// considered at rest.
	SettleSpeed float64

	// Floor and Overrun bound runaway trajectories: y below Floor, or x past
	// Pitch.Length+Overrun.
	Floor   float64
	Overrun float64

	Pitch physics.Pitch
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		Duration:      2.0,
		ReleaseHeight: 2.0,
		ReleaseOffset: 0.75,
		SettleSpeed:   0.2,
		Floor:         -1.0,
		Overrun:       5.0,
		Pitch:         physics.StandardPitch(),
	}
}

// Capacity is the worst-case number of samples in one run.
func (c Config) Capacity() int {
	return int(math.Round(c.Duration / c.Dt))
}

func (c Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrInvalidStep)
	}
	if c.Duration <= 0 || math.IsNaN(c.Duration) {
		return fmt.Errorf("duration must be positive, got %f: %w", c.Duration, dynamo.ErrInvalidStep)
	}
	if c.Capacity() < 2 {
		return fmt.Errorf("duration %f holds fewer than two steps of %f: %w", c.Duration, c.Dt, dynamo.ErrInvalidStep)
	}
	if c.SettleSpeed < 0 {
		return fmt.Errorf("settle speed %g: %w", c.SettleSpeed, dynamo.ErrParameterBounds)
	}
	if err := c.Pitch.Validate(); err != nil {
		return err
	}
	switch {
	case !(c.ReleaseHeight > 0):
		return fmt.Errorf("release height %g must be above the ground: %w", c.ReleaseHeight, dynamo.ErrParameterBounds)
	case !(c.Floor < 0):
		return fmt.Errorf("floor %g must be below the ground: %w", c.Floor, dynamo.ErrParameterBounds)
	case !(c.Overrun >= 0):
		return fmt.Errorf("overrun %g: %w", c.Overrun, dynamo.ErrParameterBounds)
	case !(math.Abs(c.ReleaseOffset) <= c.Pitch.HalfWidth()):
		return fmt.Errorf("release offset %g is off the pitch: %w", c.ReleaseOffset, dynamo.ErrParameterBounds)
	}
	return nil
}

// Columns names the fields of a Sample in table order.
var Columns = []string{"time", "x", "y", "z", "vx", "vy", "vz", "speed"}

type Sample struct {
	Time  float64 `json:"time"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	VZ    float64 `json:"vz"`
	Speed float64 `json:"speed"`
}

func newSample(t float64, x dynamo.State) Sample {
	return Sample{
		Time:  t,
		X:     x[physics.X],
		Y:     x[physics.Y],
		Z:     x[physics.Z],
		VX:    x[physics.VX],
		VY:    x[physics.VY],
		VZ:    x[physics.VZ],
		Speed: x[physics.VX : physics.VZ+1].Norm(),
	}
}

// Row returns the sample's values in Columns order.
func (s Sample) Row() []float64 {
	return []float64{s.Time, s.X, s.Y, s.Z, s.VX, s.VY, s.VZ, s.Speed}
}

// SampleFromRow builds a Sample from values in Columns order.
func SampleFromRow(row []float64) (Sample, error) {
	if len(row) != len(Columns) {
		return Sample{}, fmt.Errorf("row has %d values, want %d: %w", len(row), len(Columns), dynamo.ErrDimensionMismatch)
	}
	return Sample{
		Time: row[0], X: row[1], Y: row[2], Z: row[3],
		VX: row[4], VY: row[5], VZ: row[6], Speed: row[7],
	}, nil
}

func (s Sample) State() dynamo.State {
	return dynamo.State{s.X, s.Y, s.Z, s.VX, s.VY, s.VZ}
}

// Trajectory is an immutable, time-ordered sequence of samples.
type Trajectory struct {
	dt      float64
	samples []Sample
}

// NewTrajectory copies samples into a new Trajectory.
func NewTrajectory(dt float64, samples []Sample) *Trajectory {
	c := make([]Sample, len(samples))
	copy(c, samples)
	return &Trajectory{dt: dt, samples: c}
}

func (t *Trajectory) Len() int          { return len(t.samples) }
func (t *Trajectory) Dt() float64       { return t.dt }
func (t *Trajectory) At(i int) Sample   { return t.samples[i] }
func (t *Trajectory) First() Sample     { return t.samples[0] }
func (t *Trajectory) Final() Sample     { return t.samples[len(t.samples)-1] }
func (t *Trajectory) Samples() []Sample { return append([]Sample(nil), t.samples...) }

func (t *Trajectory) MarshalJSON() ([]byte, error) {
	if t.samples == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.samples)
}

type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeInvalid
)

func (o Outcome) String() string {
	if o == OutcomeInvalid {
		return "invalid"
	}
	return "valid"
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Reason records which rule ended a run.
type Reason int

const (
	ReasonTimeLimit Reason = iota
	ReasonEndOfPitch
	ReasonLateralExit
	ReasonSettled
	ReasonBelowFloor
	ReasonOverrun
)

var reasonNames = map[Reason]string{
	ReasonTimeLimit:   "time_limit",
	ReasonEndOfPitch:  "end_of_pitch",
	ReasonLateralExit: "lateral_exit",
	ReasonSettled:     "settled",
	ReasonBelowFloor:  "below_floor",
	ReasonOverrun:     "overrun",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Reason) UnmarshalText(text []byte) error {
	for k, v := range reasonNames {
		if v == string(text) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown termination reason %q", text)
}

// BounceEvent is the exact ground contact inside the step that crossed y=0.
type BounceEvent struct {
	Time   float64    `json:"time"`
	X      float64    `json:"x"`
	Z      float64    `json:"z"`
	Before [3]float64 `json:"velocity_before"`
	After  [3]float64 `json:"velocity_after"`

	// Index of the first sample produced with the post-bounce velocity.
	Index int `json:"index"`
}

type Result struct {
	Outcome    Outcome            `json:"outcome"`
	Reason     Reason             `json:"reason"`
	Trajectory *Trajectory        `json:"samples,omitempty"`
	Bounce     *BounceEvent       `json:"bounce,omitempty"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func (r *Result) Valid() bool {
	return r != nil && r.Outcome == OutcomeValid
}

// Err returns ErrInvalidTrajectory for the invalid outcome and nil otherwise.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return ErrInvalidTrajectory
}

// Metric observes each emitted sample of a valid run.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}
