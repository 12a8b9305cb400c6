// Package sim provides the simulation primitives of the toolkit.
//
// The package defines the fundamental interfaces and types for rolling a
// biomechanical model forward in time:
//
//   - [State]: flat vector holding the integrated quantities
//   - [Dynamics]: first-order ODE view of a model (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepping scheme
//   - [Controller]: feedback or feedforward control law
//   - [Simulator]: orchestrates a run and collects metrics
//
// Model-backed dynamics live here too: [JointTorqueDynamics] drives the
// generalized coordinates with joint torques, [MuscleDrivenDynamics] adds
// muscle activation states driven by excitations.
//
// # Example
//
//	model, _ := biomodel.New("models/pendulum.yaml")
//	dyn := sim.NewJointTorqueDynamics(model, false)
//	s := sim.New(dyn, integrators.NewRK4(), control.NewNone(dyn.ControlDim()))
//	result, _ := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe, and neither is the wrapped model
// because of its kinematics cache. For parallel sweeps use [Ensemble], which
// builds an independent simulator per run.
package sim
