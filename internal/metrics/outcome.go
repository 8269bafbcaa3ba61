package metrics

import (
	"math"

	"github.com/san-kum/swingsim/internal/physics"
	"github.com/san-kum/swingsim/internal/sim"
)

// Summary describes how a delivery finished.
type Summary struct {
	FinalX float64 `json:"final_x"`
	FinalY float64 `json:"final_y"`
	FinalZ float64 `json:"final_z"`

	Bounced bool    `json:"bounced"`
	BounceX float64 `json:"bounce_x"`
	BounceZ float64 `json:"bounce_z"`

	MaxHeightAfterBounce float64 `json:"max_height_after_bounce"`

	// SwingDistance is the lateral difference from the same delivery
	// bowled with an upright seam.
	SwingDistance float64 `json:"swing_distance"`

	HitStumps bool       `json:"hit_stumps"`
	Reason    sim.Reason `json:"reason"`
	Samples   int        `json:"samples"`
}

// Summarize builds the Summary of a valid result. counterfactual may be
// nil or invalid, in which case the swing distance is zero.
func Summarize(result, counterfactual *sim.Result, pitch physics.Pitch) (Summary, error) {
	if !result.Valid() {
		return Summary{}, sim.ErrInvalidTrajectory
	}

	traj := result.Trajectory
	final := traj.Final()
	s := Summary{
		FinalX:    final.X,
		FinalY:    final.Y,
		FinalZ:    final.Z,
		HitStumps: pitch.Hit(final.X, final.Y, final.Z),
		Reason:    result.Reason,
		Samples:   traj.Len(),
	}

	from := 0
	if b := result.Bounce; b != nil {
		s.Bounced = true
		s.BounceX, s.BounceZ = b.X, b.Z
		from = b.Index
	} else if idx, ok := DetectBounce(traj); ok {
		s.Bounced = true
		at := traj.At(idx)
		s.BounceX, s.BounceZ = at.X, at.Z
		from = idx
	}

	s.MaxHeightAfterBounce = math.Inf(-1)
	for i := from; i < traj.Len(); i++ {
		s.MaxHeightAfterBounce = math.Max(s.MaxHeightAfterBounce, traj.At(i).Y)
	}
	if math.IsInf(s.MaxHeightAfterBounce, -1) {
		s.MaxHeightAfterBounce = final.Y
	}

	if counterfactual.Valid() {
		s.SwingDistance = final.Z - counterfactual.Trajectory.Final().Z
	}

	return s, nil
}

// DetectBounce finds the first sample where the ball turned upwards near
// the ground.
func DetectBounce(traj *sim.Trajectory) (int, bool) {
	for i := 1; i < traj.Len(); i++ {
		if isBounce(traj.At(i-1), traj.At(i)) {
			return i, true
		}
	}
	return 0, false
}

// ReachesHalfway reports whether the delivery got at least halfway down the
// pitch, the cut-off for a usable recorded delivery.
func ReachesHalfway(traj *sim.Trajectory, pitch physics.Pitch) bool {
	if traj == nil || traj.Len() == 0 {
		return false
	}
	return traj.Final().X >= pitch.Length/2
}
