package spatial

import "math"

// Rotation matrices are plain Mat33 values built through the constructors
// below; callers are responsible for only composing proper rotations.

// RotX returns the rotation by a radians about the x axis.
func RotX(a float64) Mat33 {
	s, c := math.Sin(a), math.Cos(a)
	return Mat33{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

// RotY returns the rotation by a radians about the y axis.
func RotY(a float64) Mat33 {
	s, c := math.Sin(a), math.Cos(a)
	return Mat33{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// RotZ returns the rotation by a radians about the z axis.
func RotZ(a float64) Mat33 {
	s, c := math.Sin(a), math.Cos(a)
	return Mat33{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// BodyFixed123 builds the rotation for a body-fixed 1-2-3 (x-y-z) Euler
// sequence: R = Rx(q0) * Ry(q1) * Rz(q2).
func BodyFixed123(q Vec3) Mat33 {
	return RotX(q[0]).Mul(RotY(q[1])).Mul(RotZ(q[2]))
}

// ToBodyFixed123 recovers the body-fixed 1-2-3 Euler angles from a
// rotation matrix. The middle angle is taken in [-pi/2, pi/2].
func ToBodyFixed123(r Mat33) Vec3 {
	return Vec3{
		math.Atan2(-r[1][2], r[2][2]),
		math.Asin(math.Max(-1, math.Min(1, r[0][2]))),
		math.Atan2(-r[0][1], r[0][0]),
	}
}

// SpaceFixed12 builds the rotation for a space-fixed 1-2 sequence: a
// rotation by q0 about the space x axis followed by q1 about the space y
// axis, R = Ry(q1) * Rx(q0).
func SpaceFixed12(q0, q1 float64) Mat33 {
	return RotY(q1).Mul(RotX(q0))
}

// Quat is a unit quaternion, scalar part first.
type Quat [4]float64

// QuatIdentity is the zero rotation.
func QuatIdentity() Quat { return Quat{1, 0, 0, 0} }

func (q Quat) Norm() float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// Normalized returns q scaled to unit length.
func (q Quat) Normalized() Quat {
	n := q.Norm()
	return Quat{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

func (q Quat) Scale(s float64) Quat {
	return Quat{s * q[0], s * q[1], s * q[2], s * q[3]}
}

func (q Quat) Add(p Quat) Quat {
	return Quat{q[0] + p[0], q[1] + p[1], q[2] + p[2], q[3] + p[3]}
}

// ToRotation converts a unit quaternion to the rotation matrix mapping
// body-frame vectors into the parent frame.
func (q Quat) ToRotation() Mat33 {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return Mat33{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// RotationToQuat converts a rotation matrix to a unit quaternion using
// Shepperd's method (picks the numerically largest component first).
func RotationToQuat(r Mat33) Quat {
	tr := r[0][0] + r[1][1] + r[2][2]
	var q Quat
	switch {
	case tr >= r[0][0] && tr >= r[1][1] && tr >= r[2][2]:
		s := math.Sqrt(1+tr) * 2
		q = Quat{s / 4, (r[2][1] - r[1][2]) / s, (r[0][2] - r[2][0]) / s, (r[1][0] - r[0][1]) / s}
	case r[0][0] >= r[1][1] && r[0][0] >= r[2][2]:
		s := math.Sqrt(1+r[0][0]-r[1][1]-r[2][2]) * 2
		q = Quat{(r[2][1] - r[1][2]) / s, s / 4, (r[0][1] + r[1][0]) / s, (r[0][2] + r[2][0]) / s}
	case r[1][1] >= r[2][2]:
		s := math.Sqrt(1+r[1][1]-r[0][0]-r[2][2]) * 2
		q = Quat{(r[0][2] - r[2][0]) / s, (r[0][1] + r[1][0]) / s, s / 4, (r[1][2] + r[2][1]) / s}
	default:
		s := math.Sqrt(1+r[2][2]-r[0][0]-r[1][1]) * 2
		q = Quat{(r[1][0] - r[0][1]) / s, (r[0][2] + r[2][0]) / s, (r[1][2] + r[2][1]) / s, s / 4}
	}
	if q[0] < 0 {
		q = q.Scale(-1) // canonical hemisphere
	}
	return q
}

// EulerRates123 maps an angular velocity expressed in the *body* frame to
// body-fixed 1-2-3 Euler angle derivatives. Singular at q1 = +-pi/2.
func EulerRates123(q Vec3, wBody Vec3) Vec3 {
	s1, c1 := math.Sin(q[1]), math.Cos(q[1])
	s2, c2 := math.Sin(q[2]), math.Cos(q[2])
	qd0 := (c2*wBody[0] - s2*wBody[1]) / c1
	qd1 := s2*wBody[0] + c2*wBody[1]
	qd2 := wBody[2] - s1*qd0
	return Vec3{qd0, qd1, qd2}
}

// EulerAccel123 maps an angular acceleration (body frame) to body-fixed
// 1-2-3 Euler angle second derivatives, given the current angles and
// body-frame angular velocity.
func EulerAccel123(q Vec3, wBody, wdBody Vec3) Vec3 {
	s1, c1 := math.Sin(q[1]), math.Cos(q[1])
	s2, c2 := math.Sin(q[2]), math.Cos(q[2])
	qd := EulerRates123(q, wBody)
	// Differentiate the rate mapping in place.
	udot := c2*wdBody[0] - s2*wdBody[1] - qd[2]*qd[1]
	qdd0 := (udot + s1*qd[0]*qd[1]) / c1
	qdd1 := s2*wdBody[0] + c2*wdBody[1] + qd[2]*qd[0]*c1
	qdd2 := wdBody[2] - s1*qdd0 - c1*qd[0]*qd[1]
	return Vec3{qdd0, qdd1, qdd2}
}

// QuatRates maps an angular velocity expressed in the *parent* frame to
// the quaternion derivative: qdot = (1/2) w (x) q.
func QuatRates(q Quat, wParent Vec3) Quat {
	w, v := q[0], Vec3{q[1], q[2], q[3]}
	vd := wParent.Scale(w).Add(wParent.Cross(v))
	return Quat{-wParent.Dot(v), vd[0], vd[1], vd[2]}.Scale(0.5)
}

// QuatAccel maps an angular acceleration (parent frame) to the quaternion
// second derivative: qdotdot = (1/2) wdot (x) q - (1/4) |w|^2 q.
func QuatAccel(q Quat, wParent, wdParent Vec3) Quat {
	w, v := q[0], Vec3{q[1], q[2], q[3]}
	vd := wdParent.Scale(w).Add(wdParent.Cross(v))
	first := Quat{-wdParent.Dot(v), vd[0], vd[1], vd[2]}.Scale(0.5)
	return first.Add(q.Scale(-0.25 * wParent.Dot(wParent)))
}

// Transform is a rigid transform: R maps child-frame vectors into the
// parent frame and P locates the child origin in the parent frame.
type Transform struct {
	R Mat33
	P Vec3
}

func TransformIdentity() Transform {
	return Transform{R: Identity33()}
}

// Compose returns x * y, the transform taking y's child frame through x.
func (x Transform) Compose(y Transform) Transform {
	return Transform{R: x.R.Mul(y.R), P: x.P.Add(x.R.MulVec(y.P))}
}

// Inverse returns the opposite-direction transform.
func (x Transform) Inverse() Transform {
	rt := x.R.Transpose()
	return Transform{R: rt, P: rt.MulVec(x.P).Neg()}
}

// Apply maps a point from the child frame to the parent frame.
func (x Transform) Apply(p Vec3) Vec3 {
	return x.P.Add(x.R.MulVec(p))
}
