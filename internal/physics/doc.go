// Package physics holds the physical model of a delivery: the aerodynamic
// [Ball] and the [Pitch] it travels down.
//
// [Ball] implements [dynamo.System] over the six-component state
// (x, y, z, vx, vy, vz) where x runs down the pitch, y is height and z is
// lateral. The force balance is
//
//	drag  = -½·Cd·ρ·A·|v|²·v̂
//	swing =  ½·Cl_max·sin(seam)·ρ·A·|v|²·axis
//	gravity = (0, -m·g, 0)
//
// It also implements [dynamo.Hamiltonian] (kinetic + potential energy) and,
// through a pointer, [dynamo.Configurable], so scenario files can override
// individual constants for a different ball.
package physics
