package spatial

import (
	"math"
	"testing"
)

func spatialNear(t *testing.T, got, want SpatialVec, eps float64, msg string) {
	t.Helper()
	if got.Sub(want)[0].Norm() > eps || got.Sub(want)[1].Norm() > eps {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestPhiMatMatchesExpanded(t *testing.T) {
	phi := PhiMat{L: Vec3{0.7, -1.2, 2.1}}
	full := phi.ToSpatial()
	f := SpatialVec{{1, -2, 0.5}, {0.3, 1.1, -0.9}}
	v := SpatialVec{{-0.4, 0.8, 1.5}, {2, -1, 0.1}}

	spatialNear(t, phi.MulVec(f), full.MulVec(f), tol, "MulVec")
	spatialNear(t, phi.TransposeMulVec(v), full.Transpose().MulVec(v), tol, "TransposeMulVec")
}

func TestPhiShiftPreservesPower(t *testing.T) {
	// Shifting a force and counter-shifting a velocity is power neutral:
	// (phi f) . v == f . (phi^T v).
	phi := PhiMat{L: Vec3{-0.3, 0.9, 1.7}}
	f := SpatialVec{{0.2, -1, 3}, {1.5, 0.4, -0.7}}
	v := SpatialVec{{1, 1, -2}, {0.6, -0.1, 0.8}}

	lhs := phi.MulVec(f).Dot(v)
	rhs := f.Dot(phi.TransposeMulVec(v))
	if math.Abs(lhs-rhs) > tol {
		t.Errorf("power mismatch: %v vs %v", lhs, rhs)
	}
}

func TestShiftMat(t *testing.T) {
	phi := PhiMat{L: Vec3{1.1, 0.2, -0.8}}
	m := SpatialInertia(Diag33(2, 3, 4), 1.5, Vec3{0.3, -0.1, 0.6})

	want := phi.ToSpatial().Mul(m).Mul(phi.ToSpatial().Transpose())
	got := phi.ShiftMat(m)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			matNear(t, got[i][j], want[i][j], tol, "ShiftMat block")
		}
	}
}

func TestSpatialInertiaStructure(t *testing.T) {
	com := Vec3{0.4, -0.9, 0.2}
	mass := 2.0
	mk := SpatialInertia(PointMassInertia(mass, com), mass, com)

	// Symmetric as a 6x6: the off-diagonal blocks are a transpose pair.
	matNear(t, mk[0][1].Transpose(), mk[1][0], tol, "off-diagonal skew pair")
	matNear(t, mk[1][1], Diag33(mass, mass, mass), tol, "mass block")

	// Momentum check: the linear part of Mk*(w,v) is the COM velocity
	// scaled by the mass.
	w := Vec3{0.5, 1.2, -0.3}
	v := Vec3{-1, 0.7, 2}
	p := mk.MulVec(SpatialVec{w, v})
	vecNear(t, p[1], v.Add(w.Cross(com)).Scale(mass), tol, "linear momentum")
}

func TestKineticEnergyNonNegative(t *testing.T) {
	com := Vec3{0.1, -0.5, 0.3}
	mk := SpatialInertia(PointMassInertia(3, com).Add(Diag33(0.2, 0.4, 0.1)), 3, com)

	vels := []SpatialVec{
		{{1, 0, 0}, {0, 0, 0}},
		{{0, 0, 0}, {0, -2, 1}},
		{{0.7, -1.1, 0.4}, {2.2, 0.3, -0.9}},
	}
	for _, v := range vels {
		ke := 0.5 * v.Dot(mk.MulVec(v))
		if ke < 0 {
			t.Errorf("negative kinetic energy %v for %v", ke, v)
		}
	}
}

func TestOuterSpatial(t *testing.T) {
	a := SpatialVec{{1, -2, 0.5}, {0.3, 1.1, -0.9}}
	b := SpatialVec{{-0.4, 0.8, 1.5}, {2, -1, 0.1}}
	x := SpatialVec{{0.6, 0.2, -1.3}, {1.8, -0.7, 0.4}}

	spatialNear(t, OuterSpatial(a, b).MulVec(x), a.Scale(b.Dot(x)), tol, "OuterSpatial")
}
