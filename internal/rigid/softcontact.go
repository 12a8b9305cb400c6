package rigid

import "fmt"

// SoftContactForceAtOrigin computes the 6-component wrench (moment, force)
// at the world origin produced by one soft contact sphere against the ground
// plane. The sphere pushes back along +y with a linear spring-damper law
// once it penetrates the plane; out of contact the wrench is zero.
func (m *Model) SoftContactForceAtOrigin(q, qdot []float64, idx int) (SpatialForce, error) {
	if err := m.checkDim("q", q); err != nil {
		return SpatialForce{}, err
	}
	if err := m.checkDim("qdot", qdot); err != nil {
		return SpatialForce{}, err
	}
	if idx < 0 || idx >= len(m.softs) {
		return SpatialForce{}, fmt.Errorf("%w: soft contact %d", ErrIndexRange, idx)
	}
	sc := &m.softs[idx]

	ks := m.velAccPass(q, qdot, nil, Vec3{})
	p := ks.point(sc.Segment, sc.Point)
	v := ks.pointVel(sc.Segment, p)

	depth := sc.Radius + sc.PlaneHeight - p[1]
	if depth <= 0 {
		return SpatialForce{}, nil
	}
	fy := sc.Stiffness*depth - sc.Damping*v[1]
	if fy < 0 {
		fy = 0 // the plane cannot pull
	}

	f := Vec3{0, fy, 0}
	moment := p.Cross(f)
	return SpatialForce{moment[0], moment[1], moment[2], f[0], f[1], f[2]}, nil
}
