package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/swingsim/internal/dynamo"
)

func TestBallStateDim(t *testing.T) {
	b := NewBall()
	if b.StateDim() != 6 {
		t.Errorf("expected 6 states, got %d", b.StateDim())
	}
}

func TestBallAtRestFeelsOnlyGravity(t *testing.T) {
	b := NewBall()
	x := dynamo.State{0, 2, 0, 0, 0, 0}

	dx := b.Derive(x, 0)

	if math.Abs(dx[VX]) > 1e-12 || math.Abs(dx[VZ]) > 1e-12 {
		t.Errorf("expected no horizontal acceleration, got ax=%g az=%g", dx[VX], dx[VZ])
	}
	if math.Abs(dx[VY]+b.Gravity) > 1e-12 {
		t.Errorf("expected ay=%g, got %g", -b.Gravity, dx[VY])
	}
}

func TestBallDragOpposesVelocity(t *testing.T) {
	b := NewBall()
	x := dynamo.State{0, 2, 0, 30, 0, 0}

	dx := b.Derive(x, 0)

	if dx[X] != 30 {
		t.Errorf("position derivative should be velocity, got %g", dx[X])
	}
	if dx[VX] >= 0 {
		t.Errorf("drag should decelerate the ball, got ax=%g", dx[VX])
	}

	want := -0.5 * b.DragCoeff * b.AirDensity * b.Area() * 30 * 30 / b.Mass
	if math.Abs(dx[VX]-want) > 1e-6 {
		t.Errorf("ax = %g, want %g", dx[VX], want)
	}
}

func TestBallSwingFollowsSeamSign(t *testing.T) {
	tests := []struct {
		name string
		seam float64
		sign float64
	}{
		{"inswing", 20, 1},
		{"outswing", -20, -1},
		{"upright seam", 0, 0},
	}

	x := dynamo.State{0, 2, 0, 35, -4, 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx := NewBall().WithSeam(tt.seam).Derive(x, 0)
			az := dx[VZ]
			switch {
			case tt.sign == 0 && az != 0:
				t.Errorf("expected zero lateral acceleration, got %g", az)
			case tt.sign > 0 && az <= 0:
				t.Errorf("expected positive lateral acceleration, got %g", az)
			case tt.sign < 0 && az >= 0:
				t.Errorf("expected negative lateral acceleration, got %g", az)
			}
		})
	}
}

func TestBallSwingGrowsWithSpeedSquared(t *testing.T) {
	b := NewBall().WithSeam(30)
	slow := b.Derive(dynamo.State{0, 1, 0, 10, 0, 0}, 0)[VZ]
	fast := b.Derive(dynamo.State{0, 1, 0, 20, 0, 0}, 0)[VZ]

	if math.Abs(fast/slow-4) > 1e-9 {
		t.Errorf("expected 4x lateral acceleration at double speed, got %g", fast/slow)
	}
}

func TestBallEnergy(t *testing.T) {
	b := NewBall()
	x := dynamo.State{0, 2, 0, 3, 4, 0}

	want := 0.5*b.Mass*25 + b.Mass*b.Gravity*2
	if got := b.Energy(x); math.Abs(got-want) > 1e-12 {
		t.Errorf("Energy = %g, want %g", got, want)
	}
}

func TestBallParams(t *testing.T) {
	b := NewBall()
	if err := b.SetParam("mass", 0.163); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if b.GetParams()["mass"] != 0.163 {
		t.Errorf("mass not updated: %v", b.GetParams())
	}

	err := b.SetParam("spin", 1)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestBallValidate(t *testing.T) {
	if err := NewBall().Validate(); err != nil {
		t.Fatalf("default ball should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Ball)
	}{
		{"zero mass", func(b *Ball) { b.Mass = 0 }},
		{"negative radius", func(b *Ball) { b.Radius = -1 }},
		{"negative drag", func(b *Ball) { b.DragCoeff = -0.1 }},
		{"non-unit axis", func(b *Ball) { b.SwingAxis = Vec3{0, 0, 2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBall()
			tt.mutate(&b)
			if err := b.Validate(); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}
