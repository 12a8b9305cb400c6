package rigid

import "fmt"

// segState is the spatial state of one segment frame at a configuration.
type segState struct {
	frame Transform
	omega float64 // angular velocity about z
	alpha float64 // angular acceleration about z
	v     Vec3    // velocity of the frame origin
	a     Vec3    // acceleration of the frame origin
}

// kinState is the result of a kinematics pass. Position-level results are
// cached on the model; velocity and acceleration fields are only meaningful
// for the pass that computed them.
type kinState struct {
	q         []float64
	seg       []segState
	dofOrigin []Vec3 // world position of each joint at the pass configuration
	dofAxis   []Vec3 // world direction of translational joints
}

// velAccPass propagates positions, velocities and accelerations down the
// chain. qdot and qddot may be nil for position-only passes. aWorld seeds the
// world-frame acceleration: -gravity folds gravitational loading into a
// Newton-Euler pass, zero gives purely kinematic accelerations.
func (m *Model) velAccPass(q, qdot, qddot []float64, aWorld Vec3) *kinState {
	ks := &kinState{
		q:         append([]float64(nil), q...),
		seg:       make([]segState, len(m.segments)),
		dofOrigin: make([]Vec3, len(m.dofs)),
		dofAxis:   make([]Vec3, len(m.dofs)),
	}
	qd := func(k int) float64 {
		if qdot == nil {
			return 0
		}
		return qdot[k]
	}
	qdd := func(k int) float64 {
		if qddot == nil {
			return 0
		}
		return qddot[k]
	}

	for i := range m.segments {
		seg := &m.segments[i]

		cur := segState{frame: Identity(), a: aWorld}
		if seg.Parent >= 0 {
			cur = ks.seg[seg.Parent]
		}

		// Static offset, expressed in the parent frame.
		if seg.Offset != (Vec3{}) {
			d := cur.frame.Rotate(seg.Offset)
			cur.frame.T = cur.frame.T.Add(d)
			cur.a = cur.a.Add(crossZ(cur.alpha, d)).Add(crossZ(cur.omega, crossZ(cur.omega, d)))
			cur.v = cur.v.Add(crossZ(cur.omega, d))
		}

		for j, jt := range seg.Joints {
			k := seg.dof0 + j
			ks.dofOrigin[k] = cur.frame.T

			switch jt {
			case RotZ:
				ks.dofAxis[k] = Vec3{0, 0, 1}
				cur.frame = cur.frame.Mul(rotZ(q[k]))
				cur.omega += qd(k)
				cur.alpha += qdd(k)
			case TransX, TransY:
				axis := Vec3{1, 0, 0}
				if jt == TransY {
					axis = Vec3{0, 1, 0}
				}
				u := cur.frame.Rotate(axis)
				ks.dofAxis[k] = u
				disp := u.Scale(q[k])
				cur.frame.T = cur.frame.T.Add(disp)
				cur.v = cur.v.Add(crossZ(cur.omega, disp)).Add(u.Scale(qd(k)))
				cur.a = cur.a.
					Add(crossZ(cur.alpha, disp)).
					Add(crossZ(cur.omega, crossZ(cur.omega, disp))).
					Add(u.Scale(qdd(k))).
					Add(crossZ(2*cur.omega, u.Scale(qd(k))))
			}
		}

		ks.seg[i] = cur
	}
	return ks
}

// kin returns position-level kinematics, recomputing when updateKin is set
// or when no cached pass exists. With updateKin false the cached transforms
// are reused regardless of q; callers own that tradeoff, as in the native
// engines this mirrors.
func (m *Model) kin(q []float64, updateKin bool) *kinState {
	if !updateKin && m.cache != nil && len(m.cache.q) == len(q) {
		return m.cache
	}
	m.cache = m.velAccPass(q, nil, nil, Vec3{})
	return m.cache
}

// point maps a segment-frame point to the world.
func (ks *kinState) point(seg int, local Vec3) Vec3 {
	return ks.seg[seg].frame.Apply(local)
}

// pointVel returns the world velocity of a world-frame point attached to a
// segment.
func (ks *kinState) pointVel(seg int, p Vec3) Vec3 {
	s := ks.seg[seg]
	return s.v.Add(crossZ(s.omega, p.Sub(s.frame.T)))
}

// pointAcc returns the world acceleration of a world-frame point attached to
// a segment.
func (ks *kinState) pointAcc(seg int, p Vec3) Vec3 {
	s := ks.seg[seg]
	r := p.Sub(s.frame.T)
	return s.a.Add(crossZ(s.alpha, r)).Add(crossZ(s.omega, crossZ(s.omega, r)))
}

// affects reports whether DOF k moves points attached to segment seg.
func (m *Model) affects(k, seg int) bool {
	target := m.dofs[k].seg
	for s := seg; s >= 0; s = m.segments[s].Parent {
		if s == target {
			return true
		}
	}
	return false
}

// jacobianColumn returns d(p)/d(q_k) for a world point p attached to a
// segment that DOF k affects.
func (ks *kinState) jacobianColumn(m *Model, k int, p Vec3) Vec3 {
	if m.dofs[k].joint == RotZ {
		return crossZ(1, p.Sub(ks.dofOrigin[k]))
	}
	return ks.dofAxis[k]
}

// GlobalTransform returns the homogeneous transform of a segment frame in
// the world.
func (m *Model) GlobalTransform(q []float64, idx int, updateKin bool) (Transform, error) {
	if err := m.checkDim("q", q); err != nil {
		return Transform{}, err
	}
	if idx < 0 || idx >= len(m.segments) {
		return Transform{}, fmt.Errorf("%w: segment %d", ErrIndexRange, idx)
	}
	return m.kin(q, updateKin).seg[idx].frame, nil
}

// LocalTransform returns the static transform of a segment relative to its
// parent frame, before any joint motion.
func (m *Model) LocalTransform(idx int) (Transform, error) {
	if idx < 0 || idx >= len(m.segments) {
		return Transform{}, fmt.Errorf("%w: segment %d", ErrIndexRange, idx)
	}
	return translate(m.segments[idx].Offset), nil
}

// CoM returns the whole-body center of mass position.
func (m *Model) CoM(q []float64, updateKin bool) (Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return Vec3{}, err
	}
	ks := m.kin(q, updateKin)
	return m.comOf(ks), nil
}

func (m *Model) comOf(ks *kinState) Vec3 {
	var com Vec3
	total := 0.0
	for i := range m.segments {
		c := ks.point(i, m.segments[i].CoM)
		com = com.Add(c.Scale(m.segments[i].Mass))
		total += m.segments[i].Mass
	}
	if total == 0 {
		return Vec3{}
	}
	return com.Scale(1 / total)
}

// CoMDot returns the whole-body center of mass velocity.
func (m *Model) CoMDot(q, qdot []float64) (Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return Vec3{}, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return Vec3{}, err
	}
	ks := m.velAccPass(q, qdot, nil, Vec3{})
	var v Vec3
	total := 0.0
	for i := range m.segments {
		c := ks.point(i, m.segments[i].CoM)
		v = v.Add(ks.pointVel(i, c).Scale(m.segments[i].Mass))
		total += m.segments[i].Mass
	}
	if total == 0 {
		return Vec3{}, nil
	}
	return v.Scale(1 / total), nil
}

// CoMDdot returns the whole-body center of mass acceleration for a given
// qddot. The result is purely kinematic; gravity does not enter.
func (m *Model) CoMDdot(q, qdot, qddot []float64) (Vec3, error) {
	for name, v := range map[string][]float64{"q": q, "qdot": qdot, "qddot": qddot} {
		if err := m.checkDim(name, v); err != nil {
			return Vec3{}, err
		}
	}
	ks := m.velAccPass(q, qdot, qddot, Vec3{})
	var a Vec3
	total := 0.0
	for i := range m.segments {
		c := ks.point(i, m.segments[i].CoM)
		a = a.Add(ks.pointAcc(i, c).Scale(m.segments[i].Mass))
		total += m.segments[i].Mass
	}
	if total == 0 {
		return Vec3{}, nil
	}
	return a.Scale(1 / total), nil
}

// AngularMomentum returns the angular momentum about the whole-body center
// of mass.
func (m *Model) AngularMomentum(q, qdot []float64, updateKin bool) (Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return Vec3{}, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return Vec3{}, err
	}
	ks := m.velAccPass(q, qdot, nil, Vec3{})
	com := m.comOf(ks)
	vcom, err := m.CoMDot(q, qdot)
	if err != nil {
		return Vec3{}, err
	}
	lz := 0.0
	for i := range m.segments {
		seg := &m.segments[i]
		c := ks.point(i, seg.CoM)
		vc := ks.pointVel(i, c)
		r := c.Sub(com)
		vrel := vc.Sub(vcom)
		lz += seg.Inertia*ks.seg[i].omega + seg.Mass*(r[0]*vrel[1]-r[1]*vrel[0])
	}
	return Vec3{0, 0, lz}, nil
}

// SegmentAngularVelocity returns a segment's angular velocity vector.
func (m *Model) SegmentAngularVelocity(q, qdot []float64, idx int, updateKin bool) (Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return Vec3{}, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return Vec3{}, err
	}
	if idx < 0 || idx >= len(m.segments) {
		return Vec3{}, fmt.Errorf("%w: segment %d", ErrIndexRange, idx)
	}
	ks := m.velAccPass(q, qdot, nil, Vec3{})
	return Vec3{0, 0, ks.seg[idx].omega}, nil
}

// ComputeQdot maps velocity coordinates to coordinate derivatives. Without
// quaternion joints the map is the identity; kStab is reserved for the
// quaternion stabilization term.
func (m *Model) ComputeQdot(q, qdot []float64, kStab float64) ([]float64, error) {
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return nil, err
	}
	_ = kStab
	return append([]float64(nil), qdot...), nil
}

// Markers returns all marker positions in index order.
func (m *Model) Markers(q []float64, updateKin bool) ([]Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	ks := m.kin(q, updateKin)
	out := make([]Vec3, len(m.markers))
	for i := range m.markers {
		out[i] = ks.point(m.markers[i].Segment, m.markers[i].Point)
	}
	return out, nil
}

// Marker returns one marker position.
func (m *Model) Marker(q []float64, idx int, updateKin bool) (Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return Vec3{}, err
	}
	if idx < 0 || idx >= len(m.markers) {
		return Vec3{}, fmt.Errorf("%w: marker %d", ErrIndexRange, idx)
	}
	ks := m.kin(q, updateKin)
	return ks.point(m.markers[idx].Segment, m.markers[idx].Point), nil
}

// MarkerVelocities returns all marker world-frame velocities in index order.
func (m *Model) MarkerVelocities(q, qdot []float64, updateKin bool) ([]Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return nil, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return nil, err
	}
	ks := m.velAccPass(q, qdot, nil, Vec3{})
	out := make([]Vec3, len(m.markers))
	for i := range m.markers {
		p := ks.point(m.markers[i].Segment, m.markers[i].Point)
		out[i] = ks.pointVel(m.markers[i].Segment, p)
	}
	return out, nil
}

// RigidContactPosition returns the world position of a rigid contact point.
func (m *Model) RigidContactPosition(q []float64, idx int, updateKin bool) (Vec3, error) {
	if err := m.checkDim("q", q); err != nil {
		return Vec3{}, err
	}
	if idx < 0 || idx >= len(m.contacts) {
		return Vec3{}, fmt.Errorf("%w: rigid contact %d", ErrIndexRange, idx)
	}
	ks := m.kin(q, updateKin)
	return ks.point(m.contacts[idx].Segment, m.contacts[idx].Point), nil
}

// RigidContactAcceleration returns the kinematic world acceleration of a
// rigid contact point for a given qddot.
func (m *Model) RigidContactAcceleration(q, qdot, qddot []float64, idx int, updateKin bool) (Vec3, error) {
	for name, v := range map[string][]float64{"q": q, "qdot": qdot, "qddot": qddot} {
		if err := m.checkDim(name, v); err != nil {
			return Vec3{}, err
		}
	}
	if idx < 0 || idx >= len(m.contacts) {
		return Vec3{}, fmt.Errorf("%w: rigid contact %d", ErrIndexRange, idx)
	}
	ks := m.velAccPass(q, qdot, qddot, Vec3{})
	p := ks.point(m.contacts[idx].Segment, m.contacts[idx].Point)
	return ks.pointAcc(m.contacts[idx].Segment, p), nil
}

// Energy returns the total mechanical energy, with potential energy measured
// against the world origin.
func (m *Model) Energy(q, qdot []float64) (float64, error) {
	if err := m.checkDim("q", q); err != nil {
		return 0, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return 0, err
	}
	ks := m.velAccPass(q, qdot, nil, Vec3{})
	e := 0.0
	for i := range m.segments {
		seg := &m.segments[i]
		c := ks.point(i, seg.CoM)
		vc := ks.pointVel(i, c)
		e += 0.5*seg.Mass*vc.Dot(vc) + 0.5*seg.Inertia*ks.seg[i].omega*ks.seg[i].omega
		e -= seg.Mass * m.gravity.Dot(c)
	}
	return e, nil
}
