package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/swingsim/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

// freeFall is a 1-d body under constant acceleration: state (y, vy).
type freeFall struct{ g float64 }

func (f freeFall) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -f.g}
}

func (f freeFall) StateDim() int { return 2 }

func TestEulerUsesPreStepVelocity(t *testing.T) {
	integ := NewEuler()
	x := dynamo.State{2.0, -3.0}
	dt := 0.1

	next := integ.Step(freeFall{g: 10}, x, 0, dt)

	if want := 2.0 + dt*(-3.0); next[0] != want {
		t.Errorf("position = %v, want %v", next[0], want)
	}
	if want := -3.0 + dt*(-10.0); next[1] != want {
		t.Errorf("velocity = %v, want %v", next[1], want)
	}
	if x[0] != 2.0 || x[1] != -3.0 {
		t.Error("Step mutated its input state")
	}
}

func TestRK4ExactForConstantAcceleration(t *testing.T) {
	integ := NewRK4()
	x := dynamo.State{0, 5}
	dt := 0.05
	for i := 0; i < 20; i++ {
		x = integ.Step(freeFall{g: 9.81}, x, float64(i)*dt, dt)
	}

	tEnd := 20 * dt
	wantY := 5*tEnd - 0.5*9.81*tEnd*tEnd
	if math.Abs(x[0]-wantY) > 1e-9 {
		t.Errorf("y = %.12f, want %.12f", x[0], wantY)
	}
}
