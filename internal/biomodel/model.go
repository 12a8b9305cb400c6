package biomodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/biomech/internal/rigid"
)

// Model is the solver-facing facade over a native engine model. It owns no
// state of its own; generalized coordinates are always supplied per query.
type Model struct {
	model *rigid.Model
}

// New loads a model definition file and wraps the resulting engine model.
func New(path string) (*Model, error) {
	native, err := rigid.Load(path)
	if err != nil {
		return nil, err
	}
	return &Model{model: native}, nil
}

// Wrap adapts an already-constructed engine model.
func Wrap(native *rigid.Model) *Model {
	return &Model{model: native}
}

// DeepCopy returns an adapter over an independent copy of the engine model.
func (m *Model) DeepCopy() *Model {
	return &Model{model: m.model.DeepCopy()}
}

// Name returns the model name.
func (m *Model) Name() string { return m.model.Name() }

// Path returns the model definition file path.
func (m *Model) Path() string { return m.model.Path() }

// Gravity returns the gravity vector.
func (m *Model) Gravity() *mat.VecDense {
	return vec3(m.model.Gravity())
}

// SetGravity replaces the gravity vector.
func (m *Model) SetGravity(g *mat.VecDense) error {
	if g.Len() != 3 {
		return fmt.Errorf("biomodel: gravity needs 3 components, got %d", g.Len())
	}
	m.model.SetGravity(rigid.Vec3{g.AtVec(0), g.AtVec(1), g.AtVec(2)})
	return nil
}

// Mass returns the total model mass.
func (m *Model) Mass() float64 { return m.model.Mass() }

// NbQ returns the number of generalized coordinates.
func (m *Model) NbQ() int { return m.model.NbQ() }

// NbQdot returns the number of generalized velocities.
func (m *Model) NbQdot() int { return m.model.NbQdot() }

// NbQddot returns the number of generalized accelerations.
func (m *Model) NbQddot() int { return m.model.NbQddot() }

// NbDof returns the total degree-of-freedom count.
func (m *Model) NbDof() int { return m.model.NbDof() }

// NbTau returns the dimension of the generalized-force vector.
func (m *Model) NbTau() int { return m.model.NbGeneralizedTorque() }

// NbRoot returns the number of floating-base degrees of freedom.
func (m *Model) NbRoot() int { return m.model.NbRoot() }

// NbQuaternions returns the number of quaternion joints.
func (m *Model) NbQuaternions() int { return m.model.NbQuaternions() }

// NbSegments returns the number of segments.
func (m *Model) NbSegments() int { return m.model.NbSegments() }

// NbMarkers returns the number of markers.
func (m *Model) NbMarkers() int { return m.model.NbMarkers() }

// NbMuscles returns the number of muscles.
func (m *Model) NbMuscles() int { return m.model.NbMuscles() }

// NbRigidContacts returns the number of rigid contact points.
func (m *Model) NbRigidContacts() int { return m.model.NbRigidContacts() }

// NbContacts returns the total number of constrained contact axes.
func (m *Model) NbContacts() int { return m.model.NbContacts() }

// NbSoftContacts returns the number of soft contact spheres.
func (m *Model) NbSoftContacts() int { return m.model.NbSoftContacts() }

// NameDof returns the degree-of-freedom names in coordinate order.
func (m *Model) NameDof() []string { return m.model.NameDof() }

// SegmentNames returns the segment names in index order.
func (m *Model) SegmentNames() []string {
	segs := m.model.Segments()
	names := make([]string, len(segs))
	for i := range segs {
		names[i] = segs[i].Name
	}
	return names
}

// MarkerNames returns the marker names in index order.
func (m *Model) MarkerNames() []string { return m.model.MarkerNames() }

// MuscleNames returns the muscle names in index order.
func (m *Model) MuscleNames() []string { return m.model.MuscleNames() }

// ContactNames returns the rigid contact names in index order.
func (m *Model) ContactNames() []string { return m.model.ContactNames() }

// SoftContactNames returns the soft contact names in index order.
func (m *Model) SoftContactNames() []string { return m.model.SoftContactNames() }

// SegmentIndex resolves a segment name to its index.
func (m *Model) SegmentIndex(name string) (int, error) {
	return m.model.SegmentIndex(name)
}

// MarkerIndex resolves a marker name to its index.
func (m *Model) MarkerIndex(name string) (int, error) {
	return m.model.MarkerIndex(name)
}

// RigidContactAxes returns the constrained world axes of one rigid contact.
func (m *Model) RigidContactAxes(idx int) ([]int, error) {
	return m.model.RigidContactAxes(idx)
}

// GlobalHomogeneousMatrix returns a segment's world pose as a 4x4
// homogeneous matrix.
func (m *Model) GlobalHomogeneousMatrix(q *mat.VecDense, idx int, updateKin bool) (*mat.Dense, error) {
	tr, err := m.model.GlobalTransform(vecData(q), idx, updateKin)
	if err != nil {
		return nil, err
	}
	return homogeneous(tr), nil
}

// ChildHomogeneousMatrix returns a segment's static pose relative to its
// parent as a 4x4 homogeneous matrix.
func (m *Model) ChildHomogeneousMatrix(idx int) (*mat.Dense, error) {
	tr, err := m.model.LocalTransform(idx)
	if err != nil {
		return nil, err
	}
	return homogeneous(tr), nil
}

// CenterOfMass returns the whole-body center of mass position.
func (m *Model) CenterOfMass(q *mat.VecDense, updateKin bool) (*mat.VecDense, error) {
	c, err := m.model.CoM(vecData(q), updateKin)
	if err != nil {
		return nil, err
	}
	return vec3(c), nil
}

// CenterOfMassVelocity returns the whole-body center of mass velocity.
func (m *Model) CenterOfMassVelocity(q, qdot *mat.VecDense) (*mat.VecDense, error) {
	v, err := m.model.CoMDot(vecData(q), vecData(qdot))
	if err != nil {
		return nil, err
	}
	return vec3(v), nil
}

// CenterOfMassAcceleration returns the whole-body center of mass
// acceleration for a given qddot.
func (m *Model) CenterOfMassAcceleration(q, qdot, qddot *mat.VecDense) (*mat.VecDense, error) {
	a, err := m.model.CoMDdot(vecData(q), vecData(qdot), vecData(qddot))
	if err != nil {
		return nil, err
	}
	return vec3(a), nil
}

// AngularMomentum returns the angular momentum about the whole-body center
// of mass.
func (m *Model) AngularMomentum(q, qdot *mat.VecDense, updateKin bool) (*mat.VecDense, error) {
	l, err := m.model.AngularMomentum(vecData(q), vecData(qdot), updateKin)
	if err != nil {
		return nil, err
	}
	return vec3(l), nil
}

// ReshapeQdot maps velocity coordinates to coordinate derivatives, with
// kStab reserved for quaternion stabilization.
func (m *Model) ReshapeQdot(q, qdot *mat.VecDense, kStab float64) (*mat.VecDense, error) {
	out, err := m.model.ComputeQdot(vecData(q), vecData(qdot), kStab)
	if err != nil {
		return nil, err
	}
	return newVec(out), nil
}

// SegmentAngularVelocity returns one segment's angular velocity vector.
func (m *Model) SegmentAngularVelocity(q, qdot *mat.VecDense, idx int, updateKin bool) (*mat.VecDense, error) {
	w, err := m.model.SegmentAngularVelocity(vecData(q), vecData(qdot), idx, updateKin)
	if err != nil {
		return nil, err
	}
	return vec3(w), nil
}

// Markers returns all marker positions as the columns of a 3 x nbMarkers
// matrix.
func (m *Model) Markers(q *mat.VecDense, updateKin bool) (*mat.Dense, error) {
	ps, err := m.model.Markers(vecData(q), updateKin)
	if err != nil {
		return nil, err
	}
	return columns(ps), nil
}

// Marker returns one marker position.
func (m *Model) Marker(q *mat.VecDense, idx int, updateKin bool) (*mat.VecDense, error) {
	p, err := m.model.Marker(vecData(q), idx, updateKin)
	if err != nil {
		return nil, err
	}
	return vec3(p), nil
}

// MarkerVelocities returns all marker velocities in the world frame as the
// columns of a 3 x nbMarkers matrix.
func (m *Model) MarkerVelocities(q, qdot *mat.VecDense, updateKin bool) (*mat.Dense, error) {
	vs, err := m.model.MarkerVelocities(vecData(q), vecData(qdot), updateKin)
	if err != nil {
		return nil, err
	}
	return columns(vs), nil
}

// MarkerVelocitiesInFrame returns all marker velocities expressed in the
// frame of a reference segment, composing each world velocity with the
// inverse of the segment's homogeneous transform. A reference fixed to the
// identity transform reproduces MarkerVelocities.
func (m *Model) MarkerVelocitiesInFrame(q, qdot *mat.VecDense, idx int, updateKin bool) (*mat.Dense, error) {
	vs, err := m.model.MarkerVelocities(vecData(q), vecData(qdot), updateKin)
	if err != nil {
		return nil, err
	}
	// The reference transform must come from the same configuration as the
	// velocities, so the caller's update flag is forwarded here too.
	ref, err := m.model.GlobalTransform(vecData(q), idx, updateKin)
	if err != nil {
		return nil, err
	}
	inv := ref.Transpose()
	for i := range vs {
		vs[i] = inv.Apply(vs[i])
	}
	return columns(vs), nil
}

// RigidContactPosition returns the world position of one rigid contact
// point.
func (m *Model) RigidContactPosition(q *mat.VecDense, idx int, updateKin bool) (*mat.VecDense, error) {
	p, err := m.model.RigidContactPosition(vecData(q), idx, updateKin)
	if err != nil {
		return nil, err
	}
	return vec3(p), nil
}

// RigidContactAcceleration returns the kinematic world acceleration of one
// rigid contact point.
func (m *Model) RigidContactAcceleration(q, qdot, qddot *mat.VecDense, idx int, updateKin bool) (*mat.VecDense, error) {
	a, err := m.model.RigidContactAcceleration(vecData(q), vecData(qdot), vecData(qddot), idx, updateKin)
	if err != nil {
		return nil, err
	}
	return vec3(a), nil
}

// Energy returns the total mechanical energy at a state.
func (m *Model) Energy(q, qdot *mat.VecDense) (float64, error) {
	return m.model.Energy(vecData(q), vecData(qdot))
}
