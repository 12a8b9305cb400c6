package biomodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/biomech/internal/rigid"
)

// vecData copies a gonum vector into a plain slice for the engine.
func vecData(v *mat.VecDense) []float64 {
	if v == nil || v.Len() == 0 {
		return nil
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// newVec wraps a slice in a gonum vector. Empty input yields an empty
// vector, not nil.
func newVec(data []float64) *mat.VecDense {
	if len(data) == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(data), append([]float64(nil), data...))
}

func vec3(v rigid.Vec3) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v[0], v[1], v[2]})
}

// columns packs 3-vectors side by side into a 3 x n matrix, the shape the
// optimization framework expects for marker blocks.
func columns(vs []rigid.Vec3) *mat.Dense {
	if len(vs) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(3, len(vs), nil)
	for j, v := range vs {
		for i := 0; i < 3; i++ {
			out.Set(i, j, v[i])
		}
	}
	return out
}

// homogeneous expands a transform into the 4x4 matrix form.
func homogeneous(t rigid.Transform) *mat.Dense {
	out := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, t.R[i][j])
		}
		out.Set(i, 3, t.T[i])
	}
	out.Set(3, 3, 1)
	return out
}

// ExternalForces carries the optional force inputs of a dynamics query. The
// zero value applies no forces.
type ExternalForces struct {
	// Spatial holds one wrench per segment, expressed at the world origin,
	// as the columns of a 6 x nbSegments matrix in [mx my mz fx fy fz]
	// layout. Nil applies none.
	Spatial *mat.Dense

	// Contacts holds one force vector per rigid contact, each sized by the
	// contact's axis count, in contact index order. Nil applies none.
	Contacts []*mat.VecDense
}

// native converts the force set to the engine layout. Shape errors are left
// to the engine except for the spatial matrix, whose 6-row layout is an
// adapter convention.
func (e ExternalForces) native() ([]rigid.SpatialForce, [][]float64, error) {
	var fext []rigid.SpatialForce
	if e.Spatial != nil {
		r, c := e.Spatial.Dims()
		if r != 6 {
			return nil, nil, fmt.Errorf("biomodel: spatial forces need 6 rows, got %d", r)
		}
		fext = make([]rigid.SpatialForce, c)
		for j := 0; j < c; j++ {
			for i := 0; i < 6; i++ {
				fext[j][i] = e.Spatial.At(i, j)
			}
		}
	}
	var fc [][]float64
	if e.Contacts != nil {
		fc = make([][]float64, len(e.Contacts))
		for i, v := range e.Contacts {
			fc[i] = vecData(v)
		}
	}
	return fext, fc, nil
}

// nativeSpatial converts only the per-segment wrenches, for solves where the
// contact forces are unknowns rather than inputs.
func (e ExternalForces) nativeSpatial() ([]rigid.SpatialForce, error) {
	if e.Contacts != nil {
		return nil, fmt.Errorf("biomodel: constrained dynamics take no per-contact forces")
	}
	fext, _, err := e.native()
	return fext, err
}
