package spatial

// SpatialVec is a 6-component spatial vector: angular part first, linear
// part second. It represents rigid-body velocities and accelerations
// (angular velocity, linear velocity) as well as forces (moment, force).
type SpatialVec [2]Vec3

func SpatialZero() SpatialVec { return SpatialVec{} }

func (v SpatialVec) Add(w SpatialVec) SpatialVec {
	return SpatialVec{v[0].Add(w[0]), v[1].Add(w[1])}
}

func (v SpatialVec) Sub(w SpatialVec) SpatialVec {
	return SpatialVec{v[0].Sub(w[0]), v[1].Sub(w[1])}
}

func (v SpatialVec) Neg() SpatialVec { return SpatialVec{v[0].Neg(), v[1].Neg()} }

func (v SpatialVec) Scale(s float64) SpatialVec {
	return SpatialVec{v[0].Scale(s), v[1].Scale(s)}
}

func (v SpatialVec) Dot(w SpatialVec) float64 {
	return v[0].Dot(w[0]) + v[1].Dot(w[1])
}

// SpatialMat is a 6x6 matrix stored as four 3x3 blocks.
type SpatialMat [2][2]Mat33

func SpatialIdentity() SpatialMat {
	return SpatialMat{{Identity33(), Mat33{}}, {Mat33{}, Identity33()}}
}

func (m SpatialMat) Add(n SpatialMat) SpatialMat {
	var r SpatialMat
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = m[i][j].Add(n[i][j])
		}
	}
	return r
}

func (m SpatialMat) Sub(n SpatialMat) SpatialMat {
	var r SpatialMat
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = m[i][j].Sub(n[i][j])
		}
	}
	return r
}

func (m SpatialMat) Transpose() SpatialMat {
	return SpatialMat{
		{m[0][0].Transpose(), m[1][0].Transpose()},
		{m[0][1].Transpose(), m[1][1].Transpose()},
	}
}

func (m SpatialMat) Mul(n SpatialMat) SpatialMat {
	var r SpatialMat
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = m[i][0].Mul(n[0][j]).Add(m[i][1].Mul(n[1][j]))
		}
	}
	return r
}

func (m SpatialMat) MulVec(v SpatialVec) SpatialVec {
	return SpatialVec{
		m[0][0].MulVec(v[0]).Add(m[0][1].MulVec(v[1])),
		m[1][0].MulVec(v[0]).Add(m[1][1].MulVec(v[1])),
	}
}

// SpatialInertia assembles the 6x6 spatial inertia about the body origin
// from the inertia tensor (about the origin, already in the target frame),
// the mass, and the frame-expressed center of mass offset. The off-diagonal
// blocks are an exactly skew-symmetric pair by construction:
// transpose(offDiag) == -offDiag.
func SpatialInertia(inertia Mat33, mass float64, com Vec3) SpatialMat {
	offDiag := CrossMat(com).Scale(mass)
	return SpatialMat{
		{inertia, offDiag},
		{offDiag.Neg(), Diag33(mass, mass, mass)},
	}
}

// OuterSpatial returns the 6x6 outer product a * b^T.
func OuterSpatial(a, b SpatialVec) SpatialMat {
	return SpatialMat{
		{Outer(a[0], b[0]), Outer(a[0], b[1])},
		{Outer(a[1], b[0]), Outer(a[1], b[1])},
	}
}

// PhiMat is the shift operator for a parent-to-child offset l expressed in
// ground: as a 6x6 it is [[1, lx],[0, 1]] with lx = CrossMat(l). Applied to
// a spatial force it shifts child-to-parent; its transpose shifts a spatial
// velocity parent-to-child.
type PhiMat struct {
	L Vec3
}

// MulVec shifts a spatial force at the child origin to the parent origin.
func (p PhiMat) MulVec(f SpatialVec) SpatialVec {
	return SpatialVec{f[0].Add(p.L.Cross(f[1])), f[1]}
}

// TransposeMulVec shifts a spatial velocity at the parent origin to the
// child origin.
func (p PhiMat) TransposeMulVec(v SpatialVec) SpatialVec {
	return SpatialVec{v[0], v[1].Add(v[0].Cross(p.L))}
}

// ToSpatial expands the shift operator to a full 6x6.
func (p PhiMat) ToSpatial() SpatialMat {
	return SpatialMat{
		{Identity33(), CrossMat(p.L)},
		{Mat33{}, Identity33()},
	}
}

// ShiftMat computes phi * m * phi^T, the congruence used to fold a child's
// articulated inertia into its parent.
func (p PhiMat) ShiftMat(m SpatialMat) SpatialMat {
	ph := p.ToSpatial()
	return ph.Mul(m).Mul(ph.Transpose())
}
