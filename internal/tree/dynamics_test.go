package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mbtree/internal/spatial"
)

const gravAccel = 9.81

// doublePendulum builds a planar two-link chain: each link is a point mass
// at distance l below its pin, the second pin at the first link's tip.
func doublePendulum(t *testing.T, mass, l float64) *Tree {
	t.Helper()
	tr := New()
	com := spatial.Vec3{0, -l, 0}
	mp := MassProperties{Mass: mass, COM: com, Inertia: spatial.PointMassInertia(mass, com)}
	id := spatial.TransformIdentity()

	upper, err := tr.AddBody(0, Torsion, mp, id, id, false)
	require.NoError(t, err)
	tip := spatial.Transform{R: spatial.Identity33(), P: com}
	_, err = tr.AddBody(upper, Torsion, mp, tip, id, false)
	require.NoError(t, err)
	return tr
}

// realizeAll runs Configuration, Motion and Dynamics and returns the caches.
func realizeAll(t *testing.T, tr *Tree, q, u []float64) (*ConfigurationCache, *MotionCache, *DynamicsCache) {
	t.Helper()
	cc := NewConfigurationCache(tr)
	mc := NewMotionCache(tr)
	dc := NewDynamicsCache(tr)
	qdot := make([]float64, tr.NQ())
	require.NoError(t, tr.RealizeConfiguration(q, cc))
	require.NoError(t, tr.RealizeMotion(q, u, cc, mc, qdot))
	require.NoError(t, tr.RealizeDynamics(cc, mc, dc))
	return cc, mc, dc
}

func gravityAccel(t *testing.T, tr *Tree, q, u []float64) []float64 {
	t.Helper()
	cc, _, dc := realizeAll(t, tr, q, u)
	rc := NewReactionCache(tr)
	bodyForces := tr.GravityForces(spatial.Vec3{0, -gravAccel, 0}, cc)
	udot := make([]float64, tr.NU())
	qdotdot := make([]float64, tr.NQ())
	require.NoError(t, tr.CalcTreeAccel(q, u, cc, dc, rc, bodyForces,
		make([]float64, tr.NU()), udot, qdotdot))
	return udot
}

func TestZeroForceZeroVelocity(t *testing.T) {
	// No applied forces and no motion: nothing accelerates, and the
	// velocity-dependent terms vanish everywhere, ground included.
	tr := doublePendulum(t, 1.5, 0.8)
	q := []float64{0.6, -1.1}
	u := []float64{0, 0}
	cc, mc, dc := realizeAll(t, tr, q, u)

	assert.Equal(t, spatial.SpatialVec{}, mc.VGB[0])
	for i := 0; i < tr.NumBodies(); i++ {
		assert.Equal(t, spatial.SpatialVec{}, dc.GyroForce[i], "gyro[%d]", i)
		assert.Equal(t, spatial.SpatialVec{}, dc.Coriolis[i], "coriolis[%d]", i)
		assert.Equal(t, spatial.SpatialVec{}, dc.Centrifugal[i], "centrifugal[%d]", i)
	}

	rc := NewReactionCache(tr)
	udot := make([]float64, tr.NU())
	qdotdot := make([]float64, tr.NQ())
	require.NoError(t, tr.CalcTreeAccel(q, u, cc, dc, rc,
		make([]spatial.SpatialVec, tr.NumBodies()), make([]float64, tr.NU()), udot, qdotdot))

	assert.Equal(t, spatial.SpatialVec{}, rc.AGB[0])
	for i, v := range udot {
		assert.InDelta(t, 0, v, 1e-15, "udot[%d]", i)
	}
}

func TestPendulumClosedForm(t *testing.T) {
	// Point-mass pendulum: thetadotdot = -(g/l) sin(theta), for any
	// angular velocity.
	l := 1.3
	tr, _ := pendulum(t, 2.7, l)

	for _, theta := range []float64{0, 0.3, 1.2, -2.0, math.Pi} {
		for _, omega := range []float64{0, 4.5} {
			udot := gravityAccel(t, tr, []float64{theta}, []float64{omega})
			want := -(gravAccel / l) * math.Sin(theta)
			assert.InDelta(t, want, udot[0], 1e-10, "theta=%v omega=%v", theta, omega)
		}
	}
}

func TestPendulumAppliedTorque(t *testing.T) {
	// Hinge torque only, no gravity: thetadotdot = tau / (m l^2).
	mass, l := 2.0, 0.7
	tr, _ := pendulum(t, mass, l)
	q, u := []float64{0.4}, []float64{0}
	cc, _, dc := realizeAll(t, tr, q, u)
	rc := NewReactionCache(tr)

	tau := 3.1
	udot := make([]float64, 1)
	qdotdot := make([]float64, 1)
	require.NoError(t, tr.CalcTreeAccel(q, u, cc, dc, rc,
		make([]spatial.SpatialVec, tr.NumBodies()), []float64{tau}, udot, qdotdot))

	assert.InDelta(t, tau/(mass*l*l), udot[0], 1e-12)
	assert.InDelta(t, udot[0], qdotdot[0], 1e-15, "pin joint qdotdot is udot")
}

func TestFreeBodyGravity(t *testing.T) {
	// A free body in a uniform field accelerates at g with no angular
	// acceleration, whatever its orientation and COM offset.
	tr := New()
	com := spatial.Vec3{0.3, -0.2, 0.5}
	mp := MassProperties{
		Mass:    1.7,
		COM:     com,
		Inertia: spatial.PointMassInertia(1.7, com).Add(spatial.Diag33(0.2, 0.3, 0.4)),
	}
	id := spatial.TransformIdentity()
	brick, err := tr.AddBody(0, Free, mp, id, id, false)
	require.NoError(t, err)

	q := make([]float64, tr.NQ())
	u := make([]float64, tr.NU())
	tr.SetDefaults(q, u)
	rot := spatial.BodyFixed123(spatial.Vec3{0.4, -1.1, 0.8})
	tr.Node(brick).SetJointTransform(spatial.Transform{R: rot, P: spatial.Vec3{1, 2, 3}}, q)

	udot := gravityAccel(t, tr, q, u)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, udot[i], 1e-10, "angular")
	}
	assert.InDelta(t, 0, udot[3], 1e-10)
	assert.InDelta(t, -gravAccel, udot[4], 1e-10)
	assert.InDelta(t, 0, udot[5], 1e-10)
}

func TestCacheAndArrayUDotAgree(t *testing.T) {
	tr := doublePendulum(t, 1.1, 0.9)
	q := []float64{0.8, -0.5}
	u := []float64{1.2, -2.0}
	cc, _, dc := realizeAll(t, tr, q, u)

	bodyForces := tr.GravityForces(spatial.Vec3{0, -gravAccel, 0}, cc)
	jointForces := []float64{0.4, -0.9}

	rc := NewReactionCache(tr)
	udotCache := make([]float64, tr.NU())
	qdotdot := make([]float64, tr.NQ())
	require.NoError(t, tr.CalcTreeAccel(q, u, cc, dc, rc, bodyForces, jointForces, udotCache, qdotdot))

	nb := tr.NumBodies()
	udotArray := make([]float64, tr.NU())
	require.NoError(t, tr.CalcTreeUDot(cc, dc, jointForces, bodyForces,
		make([]spatial.SpatialVec, nb), make([]spatial.SpatialVec, nb),
		make([]float64, tr.NU()), make([]spatial.SpatialVec, nb), udotArray))

	for i := range udotCache {
		assert.InDelta(t, udotCache[i], udotArray[i], 1e-12, "udot[%d]", i)
	}
}

func TestEnergyRateMatchesPower(t *testing.T) {
	// d(KE)/dt equals the power injected by the applied forces. Checked by
	// central difference along the exact state derivative; exercises the
	// velocity-dependent terms of the whole pipeline.
	tr := doublePendulum(t, 1.4, 1.1)
	q := []float64{0.9, -1.3}
	u := []float64{2.1, -0.7}

	cc, mc, dc := realizeAll(t, tr, q, u)
	bodyForces := tr.GravityForces(spatial.Vec3{0, -gravAccel, 0}, cc)
	rc := NewReactionCache(tr)
	udot := make([]float64, tr.NU())
	qdotdot := make([]float64, tr.NQ())
	require.NoError(t, tr.CalcTreeAccel(q, u, cc, dc, rc, bodyForces,
		make([]float64, tr.NU()), udot, qdotdot))

	power := 0.0
	for i := 1; i < tr.NumBodies(); i++ {
		power += bodyForces[i].Dot(mc.VGB[i])
	}

	keAt := func(dt float64) float64 {
		qs := []float64{q[0] + u[0]*dt, q[1] + u[1]*dt} // pin joints: qdot = u
		us := []float64{u[0] + udot[0]*dt, u[1] + udot[1]*dt}
		ccs, mcs, _ := realizeAll(t, tr, qs, us)
		return tr.CalcKineticEnergy(ccs, mcs)
	}

	h := 1e-6
	rate := (keAt(h) - keAt(-h)) / (2 * h)
	assert.InDelta(t, power, rate, 1e-5*math.Max(1, math.Abs(power)))
}

func TestKineticEnergyPendulum(t *testing.T) {
	mass, l := 3.0, 0.8
	tr, _ := pendulum(t, mass, l)
	omega := 2.5
	cc, mc, _ := realizeAll(t, tr, []float64{0.6}, []float64{omega})

	want := 0.5 * mass * l * l * omega * omega
	assert.InDelta(t, want, tr.CalcKineticEnergy(cc, mc), 1e-12)
}

func TestEquivalentJointForces(t *testing.T) {
	mass, l := 2.2, 1.4
	tr, _ := pendulum(t, mass, l)
	theta := 0.9
	cc, _, dc := realizeAll(t, tr, []float64{theta}, []float64{0})

	bodyForces := tr.GravityForces(spatial.Vec3{0, -gravAccel, 0}, cc)
	nb := tr.NumBodies()
	jointForces := make([]float64, tr.NU())
	require.NoError(t, tr.CalcEquivalentJointForces(cc, dc, bodyForces,
		make([]spatial.SpatialVec, nb), make([]spatial.SpatialVec, nb), jointForces))

	assert.InDelta(t, -mass*gravAccel*l*math.Sin(theta), jointForces[0], 1e-12)
}

func TestInternalGradientFromSpatial(t *testing.T) {
	mass, l := 1.0, 1.0
	tr, _ := pendulum(t, mass, l)
	theta := -0.4
	cc := NewConfigurationCache(tr)
	require.NoError(t, tr.RealizeConfiguration([]float64{theta}, cc))

	x := tr.GravityForces(spatial.Vec3{0, -gravAccel, 0}, cc)
	jx := make([]float64, tr.NU())
	require.NoError(t, tr.CalcInternalGradientFromSpatial(cc,
		make([]spatial.SpatialVec, tr.NumBodies()), x, jx))

	assert.InDelta(t, -mass*gravAccel*l*math.Sin(theta), jx[0], 1e-12)
}

func TestSingularHingeInertia(t *testing.T) {
	// A point mass on the pin axis has no inertia about it; D is exactly
	// zero and the realization must refuse to continue.
	tr := New()
	mp := MassProperties{Mass: 1, COM: spatial.Vec3{}, Inertia: spatial.Mat33{}}
	id := spatial.TransformIdentity()
	bob, err := tr.AddBody(0, Torsion, mp, id, id, false)
	require.NoError(t, err)

	cc := NewConfigurationCache(tr)
	mc := NewMotionCache(tr)
	dc := NewDynamicsCache(tr)
	require.NoError(t, tr.RealizeConfiguration([]float64{0.2}, cc))
	require.NoError(t, tr.RealizeMotion([]float64{0.2}, []float64{0}, cc, mc, make([]float64, 1)))

	err = tr.RealizeDynamics(cc, mc, dc)
	require.ErrorIs(t, err, ErrSingularD)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, bob, nodeErr.Node)
}

func TestEulerQuaternionConsistency(t *testing.T) {
	// The same physical orientation gives the same accelerations whichever
	// way a ball joint is parametrized.
	build := func(useEuler bool) (*Tree, int) {
		tr := New()
		com := spatial.Vec3{0, -1, 0}
		mp := MassProperties{
			Mass:    2.0,
			COM:     com,
			Inertia: spatial.PointMassInertia(2.0, com).Add(spatial.Diag33(0.05, 0.05, 0.05)),
		}
		id := spatial.TransformIdentity()
		bob, err := tr.AddBody(0, Orientation, mp, id, id, false)
		require.NoError(t, err)
		require.NoError(t, tr.SetUseEulerAngles(bob, useEuler))
		return tr, bob
	}

	angles := spatial.Vec3{0.5, -0.3, 0.8}
	rot := spatial.BodyFixed123(angles)
	u := []float64{1.1, -0.4, 0.6}

	trE, _ := build(true)
	qE := make([]float64, trE.NQ())
	trE.SetDefaults(qE, make([]float64, 3))
	qE[0], qE[1], qE[2] = angles[0], angles[1], angles[2]
	udotE := gravityAccel(t, trE, qE, u)

	trQ, bobQ := build(false)
	qQ := make([]float64, trQ.NQ())
	trQ.SetDefaults(qQ, make([]float64, 3))
	trQ.Node(bobQ).SetJointTransform(spatial.Transform{R: rot}, qQ)
	udotQ := gravityAccel(t, trQ, qQ, u)

	for i := 0; i < 3; i++ {
		assert.InDelta(t, udotE[i], udotQ[i], 1e-9, "udot[%d]", i)
	}
}

func TestSetVelFromSVel(t *testing.T) {
	tr, bob := pendulum(t, 1, 1)
	q := []float64{0.3}
	cc := NewConfigurationCache(tr)
	mc := NewMotionCache(tr)
	require.NoError(t, tr.RealizeConfiguration(q, cc))
	require.NoError(t, tr.RealizeMotion(q, []float64{0}, cc, mc, make([]float64, 1)))

	omega := 1.8
	sVel := cc.H[0].Scale(omega)
	u := make([]float64, 1)
	tr.SetVelFromSVel(bob, cc, mc, sVel, u)
	assert.InDelta(t, omega, u[0], 1e-14)
}

func TestComplianceGroundZero(t *testing.T) {
	tr := doublePendulum(t, 1, 1)
	q := []float64{0.2, -0.6}
	u := []float64{0.5, 1.0}
	cc, _, dc := realizeAll(t, tr, q, u)

	tr.RealizeCompliance(cc, dc)
	assert.Equal(t, spatial.SpatialMat{}, dc.Y[0])

	// Y is symmetric for every node.
	for i := 1; i < tr.NumBodies(); i++ {
		yt := dc.Y[i].Transpose()
		for bi := 0; bi < 2; bi++ {
			for bj := 0; bj < 2; bj++ {
				for r := 0; r < 3; r++ {
					for c := 0; c < 3; c++ {
						assert.InDelta(t, yt[bi][bj][r][c], dc.Y[i][bi][bj][r][c], 1e-12)
					}
				}
			}
		}
	}
}
