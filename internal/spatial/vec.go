package spatial

import "math"

// Vec3 is a fixed-size 3-vector. Value semantics throughout: operations
// return new values and never mutate their receiver.
type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }
func (v Vec3) Neg() Vec3       { return Vec3{-v[0], -v[1], -v[2]} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{s * v[0], s * v[1], s * v[2]} }

func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Mat33 is a fixed-size 3x3 matrix, row major.
type Mat33 [3][3]float64

func Identity33() Mat33 {
	return Mat33{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func Diag33(x, y, z float64) Mat33 {
	return Mat33{{x, 0, 0}, {0, y, 0}, {0, 0, z}}
}

// CrossMat returns the skew-symmetric matrix m such that m*w == v x w.
func CrossMat(v Vec3) Mat33 {
	return Mat33{
		{0, -v[2], v[1]},
		{v[2], 0, -v[0]},
		{-v[1], v[0], 0},
	}
}

func (m Mat33) Add(n Mat33) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] + n[i][j]
		}
	}
	return r
}

func (m Mat33) Sub(n Mat33) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] - n[i][j]
		}
	}
	return r
}

func (m Mat33) Neg() Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = -m[i][j]
		}
	}
	return r
}

func (m Mat33) Scale(s float64) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = s * m[i][j]
		}
	}
	return r
}

func (m Mat33) Transpose() Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

func (m Mat33) Mul(n Mat33) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

func (m Mat33) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// TransposeMulVec computes m^T * v without forming the transpose.
func (m Mat33) TransposeMulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[1][0]*v[1] + m[2][0]*v[2],
		m[0][1]*v[0] + m[1][1]*v[1] + m[2][1]*v[2],
		m[0][2]*v[0] + m[1][2]*v[1] + m[2][2]*v[2],
	}
}

// Reexpress changes the frame a symmetric tensor (e.g. an inertia matrix)
// is expressed in: given R mapping old-frame vectors into the new frame,
// it returns R * m * R^T.
func (m Mat33) Reexpress(r Mat33) Mat33 {
	return r.Mul(m).Mul(r.Transpose())
}

// Col returns column j as a vector.
func (m Mat33) Col(j int) Vec3 { return Vec3{m[0][j], m[1][j], m[2][j]} }

// Outer returns the outer product v * w^T.
func Outer(v, w Vec3) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = v[i] * w[j]
		}
	}
	return r
}

// PointMassInertia returns the inertia of a point mass about the frame
// origin: m * ((r.r) I - r r^T).
func PointMassInertia(mass float64, r Vec3) Mat33 {
	rr := r.Dot(r)
	return Diag33(rr, rr, rr).Sub(Outer(r, r)).Scale(mass)
}
