package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/swingsim/internal/physics"
	"github.com/san-kum/swingsim/internal/sim"
)

func TestEnergyLoss(t *testing.T) {
	ball := physics.NewBall()
	m := NewEnergyLoss(ball)

	m.Observe(sim.Sample{Y: 2, VX: 30})
	m.Observe(sim.Sample{Y: 0, VX: 15})

	e0 := ball.Mass * (0.5*900 + ball.Gravity*2)
	e1 := ball.Mass * 0.5 * 225
	expected := (e0 - e1) / e0
	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("expected loss %f, got %f", expected, m.Value())
	}
}

func TestEnergyLossReset(t *testing.T) {
	m := NewEnergyLoss(physics.NewBall())

	m.Observe(sim.Sample{Y: 2, VX: 30})
	m.Observe(sim.Sample{Y: 1, VX: 20})
	if m.Value() == 0 {
		t.Error("expected non-zero loss")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero loss after reset")
	}
}

func TestEnergyLossOverRun(t *testing.T) {
	ball := physics.NewBall()
	s := sim.New(ball, nil, sim.DefaultConfig())
	s.AddMetric(NewEnergyLoss(ball))

	result, err := s.Run(sim.Params{Speed: 35, VerticalAngle: -7.5, Restitution: 0.7, Friction: 0.8})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	loss := result.Metrics["energy_loss"]
	if loss <= 0 || loss >= 1 {
		t.Errorf("energy loss = %v, want in (0, 1)", loss)
	}
}
