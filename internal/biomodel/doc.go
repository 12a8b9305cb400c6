// Package biomodel adapts the native rigid-body engine to the numeric
// boundary the rest of the toolkit works with.
//
// [Model] wraps a [rigid.Model] and re-exposes its full capability set with
// every numeric result converted to gonum matrix types and every name
// collection returned as an ordered string slice. No engine-native vector,
// transform or descriptor type crosses the boundary, so callers stay
// decoupled from the engine's calling convention.
//
// The adapter is a transparent conduit: it holds no state beyond the wrapped
// model reference, performs no validation beyond what the engine does, and
// surfaces engine errors unmodified. Callers control reuse of the engine's
// cached kinematics through the updateKin flag that position-level queries
// take.
//
// Optional force inputs are explicit values: [ExternalForces] is a plain
// struct whose zero value applies no forces, replacing the nil-object
// sentinels native engines tend to use.
package biomodel
