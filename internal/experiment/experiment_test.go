package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/swingsim/internal/dynamo"
	"github.com/san-kum/swingsim/internal/sim"
)

func inswinger() sim.Params {
	return sim.Params{Speed: 35, VerticalAngle: -7.5, SeamAngle: 20, Restitution: 0.7, Friction: 0.8}
}

func TestExperimentRun(t *testing.T) {
	exp := New(DefaultConfig("inswinger", inswinger()), nil)

	report, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report.Summary == nil {
		t.Fatal("expected a summary for a valid delivery")
	}
	if report.Counterfactual.Trajectory.Final().Z != report.Counterfactual.Trajectory.First().Z {
		t.Error("counterfactual should not swing")
	}
	if report.Summary.SwingDistance <= 0 {
		t.Errorf("swing distance = %v, want positive", report.Summary.SwingDistance)
	}
	for _, name := range []string{"apex", "drift", "speed_loss", "energy_loss"} {
		if _, ok := report.Result.Metrics[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
	if drift := report.Result.Metrics["drift"]; drift != report.Summary.SwingDistance {
		t.Errorf("drift %v should equal swing distance %v", drift, report.Summary.SwingDistance)
	}
}

func TestExperimentInvalidDelivery(t *testing.T) {
	p := inswinger()
	p.HorizontalAngle = 80

	report, err := New(DefaultConfig("wide", p), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("invalid delivery should not be an error: %v", err)
	}
	if report.Result.Valid() || report.Summary != nil {
		t.Error("expected invalid result without summary")
	}
}

func TestExperimentErrors(t *testing.T) {
	t.Run("unknown integrator", func(t *testing.T) {
		cfg := DefaultConfig("x", inswinger())
		cfg.Integrator = "leapfrog"
		if _, err := New(cfg, nil).Run(context.Background()); err == nil {
			t.Error("expected error for unknown integrator")
		}
	})

	t.Run("bad params", func(t *testing.T) {
		p := inswinger()
		p.Speed = -1
		_, err := New(DefaultConfig("x", p), nil).Run(context.Background())
		if !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("expected ErrParameterBounds, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(DefaultConfig("x", inswinger()), nil).Run(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.ListIntegrators()
	if len(names) != 2 || names[0] != "euler" || names[1] != "rk4" {
		t.Errorf("ListIntegrators() = %v", names)
	}

	a, _ := r.GetIntegrator("rk4")
	b, _ := r.GetIntegrator("rk4")
	if a == b {
		t.Error("GetIntegrator should return fresh instances")
	}
}
