package rigid

import "fmt"

// JointType identifies a single degree of freedom between a segment and its
// parent frame.
type JointType string

const (
	RotZ   JointType = "rot_z"
	TransX JointType = "trans_x"
	TransY JointType = "trans_y"
)

func (j JointType) tag() string {
	switch j {
	case RotZ:
		return "RotZ"
	case TransX:
		return "TransX"
	case TransY:
		return "TransY"
	}
	return string(j)
}

// Segment is one rigid body of the chain. Its body frame sits after the
// static offset from the parent frame and after all of its joints.
type Segment struct {
	Name    string
	Parent  int // index into Model.segments, -1 for the world
	Joints  []JointType
	Mass    float64
	CoM     Vec3    // in the body frame
	Inertia float64 // about z through the CoM
	Offset  Vec3    // static translation from the parent frame, in parent coordinates
	Root    bool    // joints are unactuated floating-base DOFs

	dof0 int // index of the segment's first generalized coordinate
}

// Marker is a named point fixed to a segment.
type Marker struct {
	Name    string
	Segment int
	Point   Vec3 // in the segment frame
}

// RigidContact is a contact point with a fixed subset of constrained world
// axes (0 = x, 1 = y).
type RigidContact struct {
	Name    string
	Segment int
	Point   Vec3
	Axes    []int
}

// SoftContact is a compliant sphere producing a spring-damper normal force
// against the ground plane y = PlaneHeight.
type SoftContact struct {
	Name        string
	Segment     int
	Point       Vec3
	Radius      float64
	Stiffness   float64
	Damping     float64
	PlaneHeight float64
}

type dofInfo struct {
	seg   int
	joint JointType
	name  string
}

// Model is an articulated multibody system. Identity is fixed at
// construction; dynamics queries only mutate the internal kinematics cache.
type Model struct {
	name     string
	path     string
	gravity  Vec3
	segments []Segment
	markers  []Marker
	contacts []RigidContact
	softs    []SoftContact
	muscles  []Muscle

	tauMax []float64 // per DOF, upper torque bound
	tauMin []float64 // per DOF, lower torque bound (negative)

	dofs  []dofInfo
	nroot int

	cache *kinState
}

// Name returns the model name from the definition file.
func (m *Model) Name() string { return m.name }

// Path returns the model definition file path, empty for models built in
// memory.
func (m *Model) Path() string { return m.path }

// Gravity returns the gravity vector.
func (m *Model) Gravity() Vec3 { return m.gravity }

// SetGravity replaces the gravity vector.
func (m *Model) SetGravity(g Vec3) { m.gravity = g }

// Mass returns the total model mass.
func (m *Model) Mass() float64 {
	total := 0.0
	for i := range m.segments {
		total += m.segments[i].Mass
	}
	return total
}

// NbQ returns the number of generalized coordinates.
func (m *Model) NbQ() int { return len(m.dofs) }

// NbQdot returns the number of generalized velocities.
func (m *Model) NbQdot() int { return len(m.dofs) }

// NbQddot returns the number of generalized accelerations.
func (m *Model) NbQddot() int { return len(m.dofs) }

// NbDof returns the total number of degrees of freedom.
func (m *Model) NbDof() int { return len(m.dofs) }

// NbGeneralizedTorque returns the dimension of the generalized-force vector.
func (m *Model) NbGeneralizedTorque() int { return len(m.dofs) }

// NbRoot returns the number of unactuated floating-base degrees of freedom.
// Root DOFs always occupy the first entries of q.
func (m *Model) NbRoot() int { return m.nroot }

// NbQuaternions returns the number of quaternion joints. The planar engine
// has none; the accessor exists so callers can stay parameterization
// agnostic.
func (m *Model) NbQuaternions() int { return 0 }

// NbSegments returns the number of segments.
func (m *Model) NbSegments() int { return len(m.segments) }

// NbMarkers returns the number of markers.
func (m *Model) NbMarkers() int { return len(m.markers) }

// NbMuscles returns the number of muscles.
func (m *Model) NbMuscles() int { return len(m.muscles) }

// NbRigidContacts returns the number of rigid contact points.
func (m *Model) NbRigidContacts() int { return len(m.contacts) }

// NbContacts returns the total number of constrained contact axes, summed
// over all rigid contact points.
func (m *Model) NbContacts() int {
	n := 0
	for i := range m.contacts {
		n += len(m.contacts[i].Axes)
	}
	return n
}

// NbSoftContacts returns the number of soft contact spheres.
func (m *Model) NbSoftContacts() int { return len(m.softs) }

// Segments returns the segment collection in index order.
func (m *Model) Segments() []Segment { return m.segments }

// SegmentIndex resolves a segment name to its index.
func (m *Model) SegmentIndex(name string) (int, error) {
	for i := range m.segments {
		if m.segments[i].Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: segment %q", ErrUnknownName, name)
}

// NameDof returns the degree-of-freedom names in coordinate order.
func (m *Model) NameDof() []string {
	names := make([]string, len(m.dofs))
	for i, d := range m.dofs {
		names[i] = d.name
	}
	return names
}

// MarkerNames returns the marker names in index order.
func (m *Model) MarkerNames() []string {
	names := make([]string, len(m.markers))
	for i := range m.markers {
		names[i] = m.markers[i].Name
	}
	return names
}

// MarkerIndex resolves a marker name to its index.
func (m *Model) MarkerIndex(name string) (int, error) {
	for i := range m.markers {
		if m.markers[i].Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: marker %q", ErrUnknownName, name)
}

// MarkerLocal returns a marker's segment-frame position.
func (m *Model) MarkerLocal(idx int) (Marker, error) {
	if idx < 0 || idx >= len(m.markers) {
		return Marker{}, fmt.Errorf("%w: marker %d", ErrIndexRange, idx)
	}
	return m.markers[idx], nil
}

// MuscleNames returns the muscle names in index order.
func (m *Model) MuscleNames() []string {
	names := make([]string, len(m.muscles))
	for i := range m.muscles {
		names[i] = m.muscles[i].Name
	}
	return names
}

// ContactNames returns the rigid contact names in index order.
func (m *Model) ContactNames() []string {
	names := make([]string, len(m.contacts))
	for i := range m.contacts {
		names[i] = m.contacts[i].Name
	}
	return names
}

// RigidContactAxes returns the constrained world axes of one rigid contact.
func (m *Model) RigidContactAxes(idx int) ([]int, error) {
	if idx < 0 || idx >= len(m.contacts) {
		return nil, fmt.Errorf("%w: rigid contact %d", ErrIndexRange, idx)
	}
	return m.contacts[idx].Axes, nil
}

// SoftContactNames returns the soft contact names in index order.
func (m *Model) SoftContactNames() []string {
	names := make([]string, len(m.softs))
	for i := range m.softs {
		names[i] = m.softs[i].Name
	}
	return names
}

// SoftContactAt returns one soft contact descriptor.
func (m *Model) SoftContactAt(idx int) (SoftContact, error) {
	if idx < 0 || idx >= len(m.softs) {
		return SoftContact{}, fmt.Errorf("%w: soft contact %d", ErrIndexRange, idx)
	}
	return m.softs[idx], nil
}

// DeepCopy returns an independent model with the same structure and an empty
// kinematics cache.
func (m *Model) DeepCopy() *Model {
	out := &Model{
		name:    m.name,
		path:    m.path,
		gravity: m.gravity,
		nroot:   m.nroot,
	}
	out.segments = append([]Segment(nil), m.segments...)
	out.markers = append([]Marker(nil), m.markers...)
	out.contacts = append([]RigidContact(nil), m.contacts...)
	for i := range out.contacts {
		out.contacts[i].Axes = append([]int(nil), m.contacts[i].Axes...)
	}
	out.softs = append([]SoftContact(nil), m.softs...)
	out.muscles = append([]Muscle(nil), m.muscles...)
	out.tauMax = append([]float64(nil), m.tauMax...)
	out.tauMin = append([]float64(nil), m.tauMin...)
	out.dofs = append([]dofInfo(nil), m.dofs...)
	return out
}

// checkDim verifies a generalized vector length against the model.
func (m *Model) checkDim(name string, v []float64) error {
	if len(v) != len(m.dofs) {
		return fmt.Errorf("%w: %s has length %d, model has %d DOFs",
			ErrDimension, name, len(v), len(m.dofs))
	}
	return nil
}
