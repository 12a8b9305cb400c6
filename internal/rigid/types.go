package rigid

import "math"

// Vec3 is a cartesian 3-vector. Planar models only populate x and y for
// positions and z for angular quantities.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{s * v[0], s * v[1], s * v[2]}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// crossZ returns w*ez x v, the planar angular-velocity cross product.
func crossZ(w float64, v Vec3) Vec3 {
	return Vec3{-w * v[1], w * v[0], 0}
}

// SpatialForce is a wrench expressed at the world origin, moment first:
// [mx my mz fx fy fz].
type SpatialForce [6]float64

// Moment returns the moment part of the wrench.
func (s SpatialForce) Moment() Vec3 { return Vec3{s[0], s[1], s[2]} }

// Force returns the force part of the wrench.
func (s SpatialForce) Force() Vec3 { return Vec3{s[3], s[4], s[5]} }

// Transform is a homogeneous rigid-body transform (rotation plus
// translation).
type Transform struct {
	R [3][3]float64
	T Vec3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{R: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

func translate(t Vec3) Transform {
	tr := Identity()
	tr.T = t
	return tr
}

func rotZ(theta float64) Transform {
	c, s := math.Cos(theta), math.Sin(theta)
	tr := Identity()
	tr.R = [3][3]float64{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
	return tr
}

// Mul composes two transforms: (t*o)(p) = t(o(p)).
func (t Transform) Mul(o Transform) Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out.R[i][j] += t.R[i][k] * o.R[k][j]
			}
		}
	}
	out.T = t.Apply(o.T)
	return out
}

// Apply maps a point through the transform: R*p + T.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Rotate(p).Add(t.T)
}

// Rotate maps a free vector through the rotation part only.
func (t Transform) Rotate(v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = t.R[i][0]*v[0] + t.R[i][1]*v[1] + t.R[i][2]*v[2]
	}
	return out
}

// Transpose returns the rigid inverse of the transform (R^T, -R^T*T). The
// name follows the convention of homogeneous-transform libraries where
// "transposing" a pose means inverting it.
func (t Transform) Transpose() Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.R[i][j] = t.R[j][i]
		}
	}
	out.T = out.Rotate(t.T).Scale(-1)
	return out
}

// MuscleState is the excitation/activation pair of a single muscle.
type MuscleState struct {
	Excitation float64
	Activation float64
}
