package metrics

import (
	"math"

	"github.com/san-kum/swingsim/internal/dynamo"
	"github.com/san-kum/swingsim/internal/sim"
)

// BounceHeight is the height below which an upward turn of vy counts as a
// bounce when only samples are available.
const BounceHeight = 0.05

func isBounce(prev, cur sim.Sample) bool {
	return cur.Y < BounceHeight && prev.VY < 0 && cur.VY >= 0
}

// Apex is the highest point reached after the bounce, or the overall
// highest point if the ball never bounced.
type Apex struct {
	name    string
	prev    sim.Sample
	samples int
	bounced bool
	overall float64
	after   float64
}

func NewApex() *Apex {
	return &Apex{name: "apex", overall: math.Inf(-1), after: math.Inf(-1)}
}

func (a *Apex) Name() string { return a.name }

func (a *Apex) Observe(s sim.Sample) {
	if a.samples > 0 && !a.bounced && isBounce(a.prev, s) {
		a.bounced = true
	}
	a.overall = math.Max(a.overall, s.Y)
	if a.bounced {
		a.after = math.Max(a.after, s.Y)
	}
	a.prev = s
	a.samples++
}

func (a *Apex) Value() float64 {
	switch {
	case a.samples == 0:
		return 0
	case a.bounced:
		return a.after
	}
	return a.overall
}

func (a *Apex) Reset() {
	*a = *NewApex()
}

// Drift is the lateral movement from release to the last sample.
type Drift struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewDrift() *Drift {
	return &Drift{name: "drift"}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(s sim.Sample) {
	if d.samples == 0 {
		d.initial = s.Z
	}
	d.current = s.Z
	d.samples++
}

func (d *Drift) Value() float64 { return d.current - d.initial }

func (d *Drift) Reset() {
	d.initial, d.current, d.samples = 0, 0, 0
}

// SpeedLoss is 1 - final speed / release speed.
type SpeedLoss struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewSpeedLoss() *SpeedLoss {
	return &SpeedLoss{name: "speed_loss"}
}

func (l *SpeedLoss) Name() string { return l.name }

func (l *SpeedLoss) Observe(s sim.Sample) {
	if l.samples == 0 {
		l.initial = s.Speed
	}
	l.current = s.Speed
	l.samples++
}

func (l *SpeedLoss) Value() float64 {
	if l.initial == 0 {
		return 0
	}
	return 1 - l.current/l.initial
}

func (l *SpeedLoss) Reset() {
	l.initial, l.current, l.samples = 0, 0, 0
}

// Standard returns the metric set attached to every experiment run.
func Standard(sys dynamo.Hamiltonian) []sim.Metric {
	return []sim.Metric{NewApex(), NewDrift(), NewSpeedLoss(), NewEnergyLoss(sys)}
}
