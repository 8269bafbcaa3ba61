package integrators

import "github.com/san-kum/swingsim/internal/dynamo"

// Euler is the explicit forward Euler method: x' = x + dt*f(x, t).
// For a position/velocity state this advances velocity with the current
// acceleration and position with the current (pre-step) velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	return x.Add(dyn.Derive(x, t).Scale(dt))
}
