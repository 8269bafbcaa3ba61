// Package dynamo provides the numeric primitives the trajectory simulator is
// built on.
//
//   - [State]: flat state vector with Add, Scale and Norm
//   - [System]: first-order ODE right-hand side (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical stepper
//   - [Hamiltonian]: systems that can report their mechanical energy
//   - [Configurable]: systems whose constants can be read and set by name
//
// Errors returned by the simulator and its collaborators wrap the sentinel
// values declared here, so callers can test them with errors.Is.
//
// # Thread Safety
//
// State values are plain slices and are never shared by the simulator.
// Integrators that keep scratch buffers (RK4) must not be shared between
// goroutines; construct one per run.
package dynamo
