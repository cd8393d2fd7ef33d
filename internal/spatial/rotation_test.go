package spatial

import (
	"math"
	"testing"
)

// quatMul is the Hamilton product, used to build exact rotation paths for
// the finite-difference checks below.
func quatMul(a, b Quat) Quat {
	aw, av := a[0], Vec3{a[1], a[2], a[3]}
	bw, bv := b[0], Vec3{b[1], b[2], b[3]}
	v := bv.Scale(aw).Add(av.Scale(bw)).Add(av.Cross(bv))
	return Quat{aw*bw - av.Dot(bv), v[0], v[1], v[2]}
}

func axisAngleQuat(axis Vec3, angle float64) Quat {
	u := axis.Scale(1 / axis.Norm())
	s := math.Sin(angle / 2)
	return Quat{math.Cos(angle / 2), s * u[0], s * u[1], s * u[2]}
}

func TestRotConstructors(t *testing.T) {
	// Proper rotations: R R^T = I, det = +1 (checked via column cross).
	for _, r := range []Mat33{RotX(0.4), RotY(-1.2), RotZ(2.9), BodyFixed123(Vec3{0.3, -0.6, 1.1})} {
		matNear(t, r.Mul(r.Transpose()), Identity33(), tol, "orthogonality")
		vecNear(t, r.Col(0).Cross(r.Col(1)), r.Col(2), tol, "handedness")
	}
}

func TestBodyFixed123RoundTrip(t *testing.T) {
	cases := []Vec3{
		{0, 0, 0},
		{0.3, -0.6, 1.1},
		{-2.8, 1.2, 0.4},
		{0.1, -1.5, 2.9},
	}
	for _, q := range cases {
		got := ToBodyFixed123(BodyFixed123(q))
		vecNear(t, got, q, 1e-10, "euler round trip")
	}
}

func TestSpaceFixed12(t *testing.T) {
	matNear(t, SpaceFixed12(0.7, -0.4), RotY(-0.4).Mul(RotX(0.7)), tol, "SpaceFixed12")
}

func TestQuatRotationRoundTrip(t *testing.T) {
	cases := []Mat33{
		Identity33(),
		RotX(0.4),
		RotY(3.0), // trace near -1, exercises the non-trace branches
		RotZ(-2.9),
		BodyFixed123(Vec3{2.9, 0.2, -2.8}),
		BodyFixed123(Vec3{-1.1, 1.4, 0.6}),
	}
	for _, r := range cases {
		q := RotationToQuat(r)
		if math.Abs(q.Norm()-1) > 1e-12 {
			t.Errorf("quaternion not unit: %v", q)
		}
		if q[0] < 0 {
			t.Errorf("quaternion not in canonical hemisphere: %v", q)
		}
		matNear(t, q.ToRotation(), r, 1e-10, "quat round trip")
	}
}

func TestEulerRates123(t *testing.T) {
	// For an arbitrary coordinate path q(t) = q0 + t*qd, the body-frame
	// angular velocity satisfies skew(w) = R^T Rdot. Recover w by finite
	// difference and check the rate mapping inverts it.
	q0 := Vec3{0.4, -0.3, 1.2}
	qd := Vec3{0.7, 1.1, -0.5}
	h := 1e-6

	r0 := BodyFixed123(q0)
	rp := BodyFixed123(q0.Add(qd.Scale(h)))
	rm := BodyFixed123(q0.Add(qd.Scale(-h)))
	var rdot Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rdot[i][j] = (rp[i][j] - rm[i][j]) / (2 * h)
		}
	}
	wSkew := r0.Transpose().Mul(rdot)
	wBody := Vec3{wSkew[2][1], wSkew[0][2], wSkew[1][0]}

	vecNear(t, EulerRates123(q0, wBody), qd, 1e-8, "euler rates")
}

func TestEulerAccel123(t *testing.T) {
	// Inverse of the rate mapping: w = E(q) qd.
	wFromRates := func(q, qd Vec3) Vec3 {
		s1, c1 := math.Sin(q[1]), math.Cos(q[1])
		s2, c2 := math.Sin(q[2]), math.Cos(q[2])
		return Vec3{
			c2*c1*qd[0] + s2*qd[1],
			-s2*c1*qd[0] + c2*qd[1],
			s1*qd[0] + qd[2],
		}
	}

	q0 := Vec3{0.2, -0.4, 0.9}
	qd := Vec3{0.6, -1.3, 0.8}
	qdd := Vec3{-0.9, 0.5, 1.7}
	h := 1e-6

	// Round trip of the first derivative.
	vecNear(t, EulerRates123(q0, wFromRates(q0, qd)), qd, 1e-12, "rate inverse")

	// Finite-difference wdot along the quadratic coordinate path.
	qAt := func(s float64) Vec3 { return q0.Add(qd.Scale(s)).Add(qdd.Scale(s * s / 2)) }
	qdAt := func(s float64) Vec3 { return qd.Add(qdd.Scale(s)) }
	w0 := wFromRates(q0, qd)
	wp := wFromRates(qAt(h), qdAt(h))
	wm := wFromRates(qAt(-h), qdAt(-h))
	wd := wp.Sub(wm).Scale(1 / (2 * h))

	vecNear(t, EulerAccel123(q0, w0, wd), qdd, 1e-7, "euler accel")
}

func TestQuatRates(t *testing.T) {
	// Exact path: rotating at constant w (parent frame) multiplies on the
	// left by the axis-angle quaternion of w*t.
	q0 := axisAngleQuat(Vec3{1, 2, -1}, 0.8)
	w := Vec3{0.5, -1.1, 0.7}
	h := 1e-6

	qAt := func(s float64) Quat { return quatMul(axisAngleQuat(w, w.Norm()*s), q0) }
	qp, qm := qAt(h), qAt(-h)
	var qdFD Quat
	for i := range qdFD {
		qdFD[i] = (qp[i] - qm[i]) / (2 * h)
	}

	qd := QuatRates(q0, w)
	for i := range qd {
		if math.Abs(qd[i]-qdFD[i]) > 1e-8 {
			t.Fatalf("QuatRates[%d] = %v, finite difference %v", i, qd[i], qdFD[i])
		}
	}

	// qdot is tangent to the unit sphere.
	dot := q0[0]*qd[0] + q0[1]*qd[1] + q0[2]*qd[2] + q0[3]*qd[3]
	if math.Abs(dot) > 1e-12 {
		t.Errorf("qdot not orthogonal to q: %v", dot)
	}
}

func TestQuatAccel(t *testing.T) {
	// Constant w: wdot = 0, so qdotdot is the second derivative of the
	// exact path.
	q0 := axisAngleQuat(Vec3{-1, 0.5, 2}, 1.3)
	w := Vec3{0.9, 0.2, -0.6}
	h := 1e-4

	qAt := func(s float64) Quat { return quatMul(axisAngleQuat(w, w.Norm()*s), q0) }
	qp, qm := qAt(h), qAt(-h)
	var qddFD Quat
	for i := range qddFD {
		qddFD[i] = (qp[i] - 2*q0[i] + qm[i]) / (h * h)
	}

	qdd := QuatAccel(q0, w, Vec3{})
	for i := range qdd {
		if math.Abs(qdd[i]-qddFD[i]) > 1e-6 {
			t.Fatalf("QuatAccel[%d] = %v, finite difference %v", i, qdd[i], qddFD[i])
		}
	}
}

func TestTransformComposeInverse(t *testing.T) {
	x := Transform{R: BodyFixed123(Vec3{0.3, -0.7, 1.9}), P: Vec3{1, -2, 0.5}}
	y := Transform{R: RotZ(-1.1), P: Vec3{0, 3, -1}}

	id := x.Compose(x.Inverse())
	matNear(t, id.R, Identity33(), 1e-12, "inverse rotation")
	vecNear(t, id.P, Vec3{}, 1e-12, "inverse translation")

	p := Vec3{0.4, -1.2, 2.2}
	vecNear(t, x.Compose(y).Apply(p), x.Apply(y.Apply(p)), 1e-12, "compose/apply")
}
