package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/swingsim/internal/dynamo"
	"github.com/san-kum/swingsim/internal/integrators"
	"github.com/san-kum/swingsim/internal/physics"
)

type phase int

const (
	phaseFlight phase = iota
	phaseJustBounced
	phaseAfterBounce
	phaseSettled
)

// Simulator integrates single deliveries. Run only reads the Simulator, so
// with a stateless integrator (Euler) and no metrics it may be called from
// several goroutines. Attached metrics and integrators with scratch buffers
// such as RK4 need one Simulator per goroutine.
type Simulator struct {
	ball       physics.Ball
	integrator dynamo.Integrator
	cfg        Config
	metrics    []Metric
}

// New returns a Simulator. A nil integrator selects forward Euler.
func New(ball physics.Ball, integrator dynamo.Integrator, cfg Config) *Simulator {
	if integrator == nil {
		integrator = integrators.NewEuler()
	}
	return &Simulator{
		ball:       ball,
		integrator: integrator,
		cfg:        cfg,
		metrics:    make([]Metric, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) Config() Config     { return s.cfg }
func (s *Simulator) Ball() physics.Ball { return s.ball }

// Run integrates one delivery. The returned error covers invalid
// configuration or parameters and non-finite states; a ball leaving the
// pitch sideways is reported through Result.Outcome instead.
func (s *Simulator) Run(p Params) (*Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if reach := s.cfg.Pitch.Length + s.cfg.Overrun; p.Speed*s.cfg.Dt > reach {
		return nil, fmt.Errorf("speed %g covers more than %g m in one step: %w", p.Speed, reach, dynamo.ErrParameterBounds)
	}
	ball := s.ball.WithSeam(p.SeamAngle)
	if err := ball.Validate(); err != nil {
		return nil, err
	}

	pitch := s.cfg.Pitch
	dt := s.cfg.Dt
	n := s.cfg.Capacity()
	dim := physics.StateDim

	arena := make([]float64, n*dim)
	row := func(i int) dynamo.State {
		return arena[i*dim : (i+1)*dim : (i+1)*dim]
	}
	copy(row(0), initialState(p, s.cfg))
	length := 1

	ph := phaseFlight
	reason := ReasonTimeLimit
	var bounce *BounceEvent

loop:
	for i := 0; i < n-1; i++ {
		x := row(i)

		if pitch.Outside(x[physics.X], x[physics.Z]) {
			if x[physics.X] < pitch.Length {
				return &Result{
					Outcome: OutcomeInvalid,
					Reason:  ReasonLateralExit,
					Steps:   i,
					Metrics: make(map[string]float64),
				}, nil
			}
			reason = ReasonEndOfPitch
			break
		}

		switch ph {
		case phaseFlight:
			if x[physics.Y] > 0 && x[physics.Y]+x[physics.VY]*dt <= 0 {
				next, ev := resolveBounce(x, dt, p.Restitution, p.Friction)
				ev.Time += float64(i) * dt
				ev.Index = i + 1
				bounce = &ev
				copy(row(i+1), next)
				length = i + 2
				if math.Abs(next[physics.VY]) < s.cfg.SettleSpeed {
					ph = phaseSettled
					reason = ReasonSettled
					break loop
				}
				ph = phaseJustBounced
				continue
			}
		case phaseJustBounced:
			ph = phaseAfterBounce
		}

		t := float64(i) * dt
		next := s.integrator.Step(ball, x, t, dt)
		if !next.IsValid() {
			return nil, &dynamo.SimulationError{
				Step:    i + 1,
				Time:    t + dt,
				State:   next,
				Wrapped: dynamo.ErrInvalidState,
			}
		}
		if next[physics.Y] < s.cfg.Floor {
			reason = ReasonBelowFloor
			break
		}
		if next[physics.X] > pitch.Length+s.cfg.Overrun {
			reason = ReasonOverrun
			break
		}
		copy(row(i+1), next)
		length = i + 2
	}

	samples := make([]Sample, length)
	for k := range samples {
		samples[k] = newSample(float64(k)*dt, row(k))
	}

	result := &Result{
		Outcome:    OutcomeValid,
		Reason:     reason,
		Trajectory: &Trajectory{dt: dt, samples: samples},
		Bounce:     bounce,
		Steps:      length - 1,
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		for _, smp := range samples {
			m.Observe(smp)
		}
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// initialState places the ball at the release point with velocity
// decomposed from speed and the two release angles.
func initialState(p Params, cfg Config) dynamo.State {
	ay := physics.Radians(p.VerticalAngle)
	az := physics.Radians(p.HorizontalAngle)
	return dynamo.State{
		0,
		cfg.ReleaseHeight,
		cfg.ReleaseOffset,
		p.Speed * math.Cos(ay) * math.Cos(az),
		p.Speed * math.Sin(ay),
		p.Speed * math.Cos(ay) * math.Sin(az),
	}
}

// resolveBounce locates the ground contact inside a step of length dt,
// reflects the velocity and advances the remainder of the step. Event time
// is relative to the start of the step.
func resolveBounce(x dynamo.State, dt, e, mu float64) (dynamo.State, BounceEvent) {
	tb := -x[physics.Y] / x[physics.VY]
	bx := x[physics.X] + x[physics.VX]*tb
	bz := x[physics.Z] + x[physics.VZ]*tb

	vx := x[physics.VX] * mu
	vy := -x[physics.VY] * e
	vz := x[physics.VZ] * mu
	rem := dt - tb

	next := dynamo.State{bx + vx*rem, vy * rem, bz + vz*rem, vx, vy, vz}
	ev := BounceEvent{
		Time:   tb,
		X:      bx,
		Z:      bz,
		Before: [3]float64{x[physics.VX], x[physics.VY], x[physics.VZ]},
		After:  [3]float64{vx, vy, vz},
	}
	return next, ev
}
