// Package rigid implements a planar articulated multibody engine.
//
// A [Model] owns the segment hierarchy plus the marker, muscle and contact
// definitions loaded from a YAML model file. All motion happens in the x-y
// plane with rotations about z; vectors are stored as 3-vectors and wrenches
// as 6-vectors so that callers see the usual spatial layout with out-of-plane
// components fixed at zero.
//
// Dynamics queries are pure functions of (q, qdot, qddot) and the model's
// fixed structure:
//
//   - [Model.InverseDynamics]: recursive Newton-Euler over the chain
//   - [Model.MassMatrix]: assembled column-wise by unit accelerations, which
//     keeps forward and inverse dynamics exactly consistent
//   - [Model.ForwardDynamics]: qddot = M(q)^-1 (tau - b)
//   - [Model.ConstrainedForwardDynamics]: direct KKT formulation over the
//     rigid contact Jacobian
//
// Position-level kinematics are cached per model and guarded by an update
// flag, so repeated queries at the same configuration can skip the forward
// kinematics pass.
//
// Model instances are NOT safe for concurrent use; the kinematics cache is
// mutated by queries.
package rigid
