package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mbtree/internal/spatial"
)

// This file holds the per-node recursion steps. Most expect to be called
// in a particular traversal direction -- base to tip (outward) or tip to
// base (inward) -- which the Tree drivers in tree.go guarantee.

// calcBodyTransforms computes X_PB and X_GB from the already-realized
// across-joint transform and the parent's ground transform. Not joint
// specific.
func (n *Node) calcBodyTransforms(cc *ConfigurationCache) {
	xGP := cc.XGB[n.parent]
	cc.XPB[n.num] = n.xPJb.Compose(cc.XJbJ[n.num]).Compose(n.xBJ.Inverse())
	cc.XGB[n.num] = xGP.Compose(cc.XPB[n.num])
}

// calcJointIndependentKinematicsPos computes Phi, the ground-frame inertia,
// the centers of mass and the spatial inertia Mk. Base to tip; depends on
// X_PB and X_GB being available.
func (n *Node) calcJointIndependentKinematicsPos(cc *ConfigurationCache) {
	// Re-express the parent-to-child shift vector (OB-OP) in ground.
	xGP := cc.XGB[n.parent]
	tPBG := xGP.R.MulVec(cc.XPB[n.num].P)

	// Phi shifts spatial forces child-to-parent; its transpose shifts
	// velocities parent-to-child.
	cc.Phi[n.num] = spatial.PhiMat{L: tPBG}

	rGB := cc.XGB[n.num].R
	cc.InertiaG[n.num] = n.inertiaB.Reexpress(rGB)
	cc.CbG[n.num] = rGB.MulVec(n.comB)
	cc.ComG[n.num] = cc.XGB[n.num].P.Add(cc.CbG[n.num])

	// Mk is symmetric: the off-diagonal block is skew so that its
	// transpose is its negation. Needed now so kinetic energy works
	// without going past the Motion stage.
	cc.Mk[n.num] = spatial.SpatialInertia(cc.InertiaG[n.num], n.mass, cc.CbG[n.num])
}

// calcJointKinematicsVel computes V_PB_G, the joint's own contribution to
// spatial velocity. Same code for all joints.
func (n *Node) calcJointKinematicsVel(cc *ConfigurationCache, u []float64, mc *MotionCache) {
	var v spatial.SpatialVec
	h := n.hRows(cc)
	for i := 0; i < n.dof; i++ {
		v = v.Add(h[i].Scale(u[n.uIndex+i]))
	}
	mc.VPBG[n.num] = v
}

// calcJointIndependentKinematicsVel computes the absolute spatial velocity.
// Base to tip; depends on the parent's spatial velocity.
func (n *Node) calcJointIndependentKinematicsVel(cc *ConfigurationCache, mc *MotionCache) {
	mc.VGB[n.num] = cc.Phi[n.num].TransposeMulVec(mc.VGB[n.parent]).Add(mc.VPBG[n.num])
}

// calcKineticEnergy returns the half-quadratic form of this body's spatial
// velocity against its spatial inertia.
func (n *Node) calcKineticEnergy(cc *ConfigurationCache, mc *MotionCache) float64 {
	v := mc.VGB[n.num]
	return 0.5 * v.Dot(cc.Mk[n.num].MulVec(v))
}

// setVelFromSVel solves for the generalized speeds that give this body the
// spatial velocity sVel, given the parent's velocity. Base to tip.
func (n *Node) setVelFromSVel(cc *ConfigurationCache, mc *MotionCache, sVel spatial.SpatialVec, u []float64) {
	rel := sVel.Sub(cc.Phi[n.num].TransposeMulVec(mc.VGB[n.parent]))
	h := n.hRows(cc)
	for i := 0; i < n.dof; i++ {
		u[n.uIndex+i] = h[i].Dot(rel)
	}
}

// calcJointIndependentDynamicsVel computes the gyroscopic force, coriolis
// acceleration and centrifugal force. Requires all spatial velocities and
// the articulated-body inertia P to be available, but no particular order.
func (n *Node) calcJointIndependentDynamicsVel(cc *ConfigurationCache, mc *MotionCache, dc *DynamicsCache) {
	if n.num == 0 { // ground
		dc.GyroForce[0] = spatial.SpatialVec{}
		dc.Coriolis[0] = spatial.SpatialVec{}
		dc.Centrifugal[0] = spatial.SpatialVec{}
		return
	}

	omega := mc.VGB[n.num][0]
	vel := mc.VGB[n.num][1]

	dc.GyroForce[n.num] = spatial.SpatialVec{
		omega.Cross(cc.InertiaG[n.num].MulVec(omega)),
		omega.Cross(omega.Cross(cc.CbG[n.num])).Scale(n.mass),
	}

	pOmega := mc.VGB[n.parent][0]
	pVel := mc.VGB[n.parent][1]

	// The linear term uses the parent's angular velocity while the
	// relative-velocity term uses this body's, following Jain, Vaidehi &
	// Rodriguez (1991) Eq. 4.4. Schwieters & Clore Eq. [16] uses this
	// body's omega in both; the two agree only because the difference
	// lies along H. Do not "fix" this: changing it changes the physics.
	vRel := mc.VPBG[n.num]
	dc.Coriolis[n.num] = spatial.SpatialVec{
		omega.Cross(vRel[0]),
		pOmega.Cross(vel.Sub(pVel)).Add(omega.Cross(vRel[1])),
	}

	dc.Centrifugal[n.num] = dc.P[n.num].MulVec(dc.Coriolis[n.num]).Add(dc.GyroForce[n.num])
}

// calcArticulatedBodyInertiasInward computes P, D, DI, G, I-G*H and Psi.
// Tip to base: folds in every child's already-computed contribution. A
// singular D aborts the realization.
func (n *Node) calcArticulatedBodyInertiasInward(cc *ConfigurationCache, dc *DynamicsCache) error {
	p := cc.Mk[n.num]
	for _, ci := range n.children {
		phiChild := cc.Phi[ci]
		p = p.Add(phiChild.ShiftMat(dc.TauBar[ci].Mul(dc.P[ci])))
	}
	dc.P[n.num] = p

	h := n.hRows(cc)
	pht := make([]spatial.SpatialVec, n.dof) // columns of P * H^T
	for i := 0; i < n.dof; i++ {
		pht[i] = p.MulVec(h[i])
	}

	d := n.dSlot(dc.D)
	for i := 0; i < n.dof; i++ {
		for j := 0; j < n.dof; j++ {
			d[i*n.dof+j] = h[i].Dot(pht[j])
		}
	}

	di := n.dSlot(dc.DI)
	if err := invertInto(d, di, n.dof); err != nil {
		return &NodeError{Node: n.num, Op: "calcArticulatedBodyInertiasInward", Wrapped: err}
	}

	g := n.gCols(dc)
	for j := 0; j < n.dof; j++ {
		var col spatial.SpatialVec
		for i := 0; i < n.dof; i++ {
			col = col.Add(pht[i].Scale(di[i*n.dof+j]))
		}
		g[j] = col
	}

	tauBar := spatial.SpatialIdentity()
	for i := 0; i < n.dof; i++ {
		tauBar = tauBar.Sub(spatial.OuterSpatial(g[i], h[i]))
	}
	dc.TauBar[n.num] = tauBar
	dc.Psi[n.num] = cc.Phi[n.num].ToSpatial().Mul(tauBar)
	return nil
}

// invertInto inverts the dof x dof row-major block d into di. Returns
// ErrSingularD if the block is singular or ill conditioned.
func invertInto(d, di []float64, dof int) error {
	a := mat.NewDense(dof, dof, append([]float64(nil), d...))
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return ErrSingularD
	}
	raw := inv.RawMatrix()
	for i := 0; i < dof; i++ {
		copy(di[i*dof:(i+1)*dof], raw.Data[i*raw.Stride:i*raw.Stride+dof])
	}
	return nil
}

// calcYOutward computes the outward compliance matrix. Base to tip; needed
// by constraint-handling collaborators, not used elsewhere in the tree.
func (n *Node) calcYOutward(cc *ConfigurationCache, dc *DynamicsCache) {
	h := n.hRows(cc)
	di := n.dSlot(dc.DI)
	var y spatial.SpatialMat
	for i := 0; i < n.dof; i++ {
		for j := 0; j < n.dof; j++ {
			if dij := di[i*n.dof+j]; dij != 0 {
				y = y.Add(spatial.OuterSpatial(h[i].Scale(dij), h[j]))
			}
		}
	}
	psi := dc.Psi[n.num]
	dc.Y[n.num] = y.Add(psi.Transpose().Mul(dc.Y[n.parent]).Mul(psi))
}

// calcZ runs the reaction-force reduction. Tip to base. spatialForce is the
// applied spatial force on this body; jointForces is the full u-like array
// of applied joint forces.
func (n *Node) calcZ(cc *ConfigurationCache, dc *DynamicsCache,
	spatialForce spatial.SpatialVec, jointForces []float64, rc *ReactionCache) {

	z := dc.Centrifugal[n.num].Sub(spatialForce)
	for _, ci := range n.children {
		z = z.Add(cc.Phi[ci].MulVec(rc.Z[ci].Add(rc.Geps[ci])))
	}
	rc.Z[n.num] = z

	h := n.hRows(cc)
	eps := n.uSlot(rc.Epsilon)
	for i := 0; i < n.dof; i++ {
		eps[i] = jointForces[n.uIndex+i] - h[i].Dot(z)
	}
	copy(n.uSlot(rc.NetHinge), eps)

	di := n.dSlot(dc.DI)
	nu := n.uSlot(rc.Nu)
	for i := 0; i < n.dof; i++ {
		s := 0.0
		for j := 0; j < n.dof; j++ {
			s += di[i*n.dof+j] * eps[j]
		}
		nu[i] = s
	}

	var geps spatial.SpatialVec
	g := n.gCols(dc)
	for i := 0; i < n.dof; i++ {
		geps = geps.Add(g[i].Scale(eps[i]))
	}
	rc.Geps[n.num] = geps
}

// calcAccel computes udot and the spatial acceleration from the forces last
// reduced by calcZ, then converts udot to qdotdot. Base to tip; ground's
// A_GB is the zero spatial vector.
func (n *Node) calcAccel(q, u []float64, cc *ConfigurationCache, dc *DynamicsCache,
	rc *ReactionCache, udot, qdotdot []float64) {

	alphaP := cc.Phi[n.num].TransposeMulVec(rc.AGB[n.parent])

	g := n.gCols(dc)
	h := n.hRows(cc)
	nu := n.uSlot(rc.Nu)
	ud := n.uSlot(udot)
	for i := 0; i < n.dof; i++ {
		ud[i] = nu[i] - g[i].Dot(alphaP)
	}

	a := alphaP
	for i := 0; i < n.dof; i++ {
		a = a.Add(h[i].Scale(ud[i]))
	}
	rc.AGB[n.num] = a.Add(dc.Coriolis[n.num])

	n.calcQDotDot(q, u, udot, cc.XJbJ[n.num], qdotdot)
}

// calcUDotPass1Inward is the array-based variant of calcZ: identical
// structure, but reads and writes caller-supplied arrays indexed by node
// number instead of the reaction cache, so independent evaluations can run
// concurrently. Tip to base; temps need no initialization.
func (n *Node) calcUDotPass1Inward(cc *ConfigurationCache, dc *DynamicsCache,
	jointForces []float64, bodyForces []spatial.SpatialVec,
	allZ, allGeps []spatial.SpatialVec, allEpsilon []float64) {

	if n.num == 0 { // ground
		allZ[0] = bodyForces[0].Neg()
		allGeps[0] = spatial.SpatialVec{}
		return
	}

	z := dc.Centrifugal[n.num].Sub(bodyForces[n.num])
	for _, ci := range n.children {
		z = z.Add(cc.Phi[ci].MulVec(allZ[ci].Add(allGeps[ci])))
	}
	allZ[n.num] = z

	h := n.hRows(cc)
	eps := n.uSlot(allEpsilon)
	for i := 0; i < n.dof; i++ {
		eps[i] = jointForces[n.uIndex+i] - h[i].Dot(z)
	}

	var geps spatial.SpatialVec
	g := n.gCols(dc)
	for i := 0; i < n.dof; i++ {
		geps = geps.Add(g[i].Scale(eps[i]))
	}
	allGeps[n.num] = geps
}

// calcUDotPass2Outward is the array-based variant of calcAccel. Base to
// tip; allA needs no initialization before the sweep.
func (n *Node) calcUDotPass2Outward(cc *ConfigurationCache, dc *DynamicsCache,
	allEpsilon []float64, allA []spatial.SpatialVec, allUDot []float64) {

	if n.num == 0 { // ground
		allA[0] = spatial.SpatialVec{}
		return
	}

	var aGP spatial.SpatialVec
	if n.parent != 0 {
		aGP = cc.Phi[n.num].TransposeMulVec(allA[n.parent])
	}

	h := n.hRows(cc)
	g := n.gCols(dc)
	di := n.dSlot(dc.DI)
	eps := n.uSlot(allEpsilon)
	ud := n.uSlot(allUDot)
	for i := 0; i < n.dof; i++ {
		s := 0.0
		for j := 0; j < n.dof; j++ {
			s += di[i*n.dof+j] * eps[j]
		}
		ud[i] = s - g[i].Dot(aGP)
	}

	a := aGP
	for i := 0; i < n.dof; i++ {
		a = a.Add(h[i].Scale(ud[i]))
	}
	allA[n.num] = a.Add(dc.Coriolis[n.num])
}

// calcInternalGradientFromSpatial maps per-body spatial gradients into
// generalized-coordinate space via H. Tip to base; requires Phi and H only,
// touches no cache. Does not incorporate applied hinge gradients.
func (n *Node) calcInternalGradientFromSpatial(cc *ConfigurationCache,
	zTmp, x []spatial.SpatialVec, jx []float64) {

	if n.num == 0 {
		return
	}

	z := x[n.num]
	for _, ci := range n.children {
		z = z.Add(cc.Phi[ci].MulVec(zTmp[ci]))
	}
	zTmp[n.num] = z

	h := n.hRows(cc)
	for i := 0; i < n.dof; i++ {
		jx[n.uIndex+i] = h[i].Dot(z)
	}
}

// calcEquivalentJointForces maps per-body spatial forces into equivalent
// per-joint generalized forces: pure force transmission, no centrifugal
// term. Tip to base; temps need no initialization.
func (n *Node) calcEquivalentJointForces(cc *ConfigurationCache, dc *DynamicsCache,
	bodyForces []spatial.SpatialVec, allZ, allGeps []spatial.SpatialVec, jointForces []float64) {

	if n.num == 0 { // ground
		allZ[0] = bodyForces[0]
		allGeps[0] = spatial.SpatialVec{}
		return
	}

	z := bodyForces[n.num]
	for _, ci := range n.children {
		z = z.Add(cc.Phi[ci].MulVec(allZ[ci].Add(allGeps[ci])))
	}
	allZ[n.num] = z

	h := n.hRows(cc)
	eps := n.uSlot(jointForces)
	for i := 0; i < n.dof; i++ {
		eps[i] = h[i].Dot(z)
	}

	var geps spatial.SpatialVec
	g := n.gCols(dc)
	for i := 0; i < n.dof; i++ {
		geps = geps.Add(g[i].Scale(eps[i]))
	}
	allGeps[n.num] = geps
}
