package tree

import "github.com/san-kum/mbtree/internal/spatial"

// Tree is the arena owning all nodes of one multibody system. Node 0 is
// always the ground body. Nodes are appended parent-first, so ascending
// node number is a valid base-to-tip order and descending number a valid
// tip-to-base order; the realize drivers below rely on that.
//
// Topology is fixed after construction. The caller owns all numeric
// storage: generalized arrays (q, u, qdot, udot, forces) and the stage
// caches, which are recomputed whenever their governing state changes.
type Tree struct {
	nodes []*Node

	// Running slot counters; totals after construction.
	nu   int
	nq   int
	nuSq int
}

// New creates a tree containing only the ground node.
func New() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, &Node{
		num:    0,
		level:  0,
		parent: -1,
		joint:  Ground,
	})
	return t
}

// AddBody constructs a node for a body attached to parent through the given
// joint and appends it to the tree, advancing the slot counters by the
// joint's dof, dof squared and maximum coordinate count. Unsupported joint
// types and reversed (child-to-parent) joints are construction errors.
func (t *Tree) AddBody(parent int, joint JointType, mp MassProperties,
	xPJb, xBJ spatial.Transform, reversed bool) (int, error) {

	if parent < 0 || parent >= len(t.nodes) {
		return 0, ErrUnknownParent
	}
	if reversed {
		return 0, ErrReversedJoint
	}
	if joint == Ground || joint.DOF() < 0 || joint > Sliding {
		return 0, ErrUnsupportedJoint
	}

	p := t.nodes[parent]
	n := &Node{
		num:      len(t.nodes),
		level:    p.level + 1,
		parent:   parent,
		joint:    joint,
		mass:     mp.Mass,
		comB:     mp.COM,
		inertiaB: mp.Inertia,
		xPJb:     xPJb,
		xBJ:      xBJ,
		uIndex:   t.nu,
		uSqIndex: t.nuSq,
		qIndex:   t.nq,
		dof:      joint.DOF(),
		maxNQ:    joint.MaxNQ(),
	}
	t.nodes = append(t.nodes, n)
	p.children = append(p.children, n.num)

	t.nu += n.dof
	t.nuSq += n.dof * n.dof
	t.nq += n.maxNQ
	return n.num, nil
}

// NumBodies returns the node count including ground.
func (t *Tree) NumBodies() int { return len(t.nodes) }

// NU returns the total generalized-speed count.
func (t *Tree) NU() int { return t.nu }

// NQ returns the total generalized-coordinate slot count (quaternion joints
// always reserve their maximum).
func (t *Tree) NQ() int { return t.nq }

// Node returns the node with the given number.
func (t *Tree) Node(i int) *Node { return t.nodes[i] }

// SetUseEulerAngles switches a ball or free joint between quaternion
// (default) and Euler-angle coordinates. Must be called before realization;
// slots are sized for either mode.
func (t *Tree) SetUseEulerAngles(node int, useEuler bool) error {
	n := t.nodes[node]
	if !n.joint.hasQuaternionOption() {
		return &NodeError{Node: node, Op: "SetUseEulerAngles", Wrapped: ErrUnsupportedJoint}
	}
	n.useEuler = useEuler
	return nil
}

// SetDefaults writes every joint's zero/identity configuration and zero
// velocity into q and u. Ground's motion is prescribed to zero.
func (t *Tree) SetDefaults(q, u []float64) {
	for _, n := range t.nodes {
		n.setDefaultConfiguration(q)
		n.setDefaultVelocity(u)
	}
}

// RealizeModeling is the first stage; joint modes must be final when it
// runs. Nothing is computed today, the stage exists for ordering.
func (t *Tree) RealizeModeling() {}

// RealizeParameters is the second stage; mass properties are fixed at
// construction, so nothing is computed today.
func (t *Tree) RealizeParameters() {}

// RealizeConfiguration computes all position-stage quantities from q.
// Traverses base to tip.
func (t *Tree) RealizeConfiguration(q []float64, cc *ConfigurationCache) error {
	if len(q) != t.nq {
		return ErrDimensionMismatch
	}
	cc.XGB[0] = spatial.TransformIdentity()
	cc.XPB[0] = spatial.TransformIdentity()
	cc.XJbJ[0] = spatial.TransformIdentity()
	for _, n := range t.nodes[1:] {
		n.calcJointSinCosQNorm(q, cc.Sq, cc.Cq, cc.QNorm)
		cc.XJbJ[n.num] = n.calcAcrossJointTransform(q)
		n.calcBodyTransforms(cc)
		n.calcJointTransitionMatrix(cc.XGB[n.parent], cc.XGB[n.num], n.hRows(cc))
		n.calcJointIndependentKinematicsPos(cc)
	}
	return nil
}

// RealizeMotion computes all velocity-stage quantities from q and u, and
// writes the coordinate derivatives into qdot. Traverses base to tip;
// Configuration must be realized.
func (t *Tree) RealizeMotion(q, u []float64, cc *ConfigurationCache, mc *MotionCache, qdot []float64) error {
	if len(q) != t.nq || len(u) != t.nu || len(qdot) != t.nq {
		return ErrDimensionMismatch
	}
	mc.VGB[0] = spatial.SpatialVec{}
	mc.VPBG[0] = spatial.SpatialVec{}
	for _, n := range t.nodes[1:] {
		n.calcQDot(q, u, cc.XJbJ[n.num], qdot)
		n.calcJointKinematicsVel(cc, u, mc)
		n.calcJointIndependentKinematicsVel(cc, mc)
	}
	return nil
}

// RealizeDynamics runs the articulated-body inertia recursion tip to base,
// then the velocity-dependent force terms. Configuration and Motion must be
// realized. A singular D block anywhere aborts the stage.
func (t *Tree) RealizeDynamics(cc *ConfigurationCache, mc *MotionCache, dc *DynamicsCache) error {
	for i := len(t.nodes) - 1; i >= 1; i-- {
		if err := t.nodes[i].calcArticulatedBodyInertiasInward(cc, dc); err != nil {
			return err
		}
	}
	// Order independent once P is available.
	for _, n := range t.nodes {
		n.calcJointIndependentDynamicsVel(cc, mc, dc)
	}
	return nil
}

// RealizeCompliance computes the outward compliance matrix Y for every
// node, base to tip. Dynamics must be realized. Only constraint-handling
// collaborators consume Y; callers that know the constrained subset can
// skip this stage entirely.
func (t *Tree) RealizeCompliance(cc *ConfigurationCache, dc *DynamicsCache) {
	dc.Y[0] = spatial.SpatialMat{}
	for _, n := range t.nodes[1:] {
		n.calcYOutward(cc, dc)
	}
}

// CalcTreeAccel computes udot and qdotdot for the given applied forces:
// bodyForces are spatial forces per node (about each body origin, in
// ground), jointForces is u-like. Dynamics must be realized. Runs the
// Z-recursion tip to base, then the acceleration recursion base to tip.
func (t *Tree) CalcTreeAccel(q, u []float64, cc *ConfigurationCache, dc *DynamicsCache,
	rc *ReactionCache, bodyForces []spatial.SpatialVec, jointForces []float64,
	udot, qdotdot []float64) error {

	if len(bodyForces) != len(t.nodes) || len(jointForces) != t.nu ||
		len(udot) != t.nu || len(qdotdot) != t.nq {
		return ErrDimensionMismatch
	}
	for i := len(t.nodes) - 1; i >= 1; i-- {
		n := t.nodes[i]
		n.calcZ(cc, dc, bodyForces[n.num], jointForces, rc)
	}
	rc.AGB[0] = spatial.SpatialVec{}
	for _, n := range t.nodes[1:] {
		n.calcAccel(q, u, cc, dc, rc, udot, qdotdot)
	}
	return nil
}

// CalcTreeUDot is the array-based counterpart of CalcTreeAccel: the same
// recursion reading and writing caller-supplied temporaries instead of the
// reaction cache, for repeated right-hand-side evaluation (mass-matrix
// columns, arbitrary force sets) without touching per-node state. The
// temporaries allZ, allGeps, allEps, allA need no initialization.
func (t *Tree) CalcTreeUDot(cc *ConfigurationCache, dc *DynamicsCache,
	jointForces []float64, bodyForces []spatial.SpatialVec,
	allZ, allGeps []spatial.SpatialVec, allEps []float64,
	allA []spatial.SpatialVec, udot []float64) error {

	if len(bodyForces) != len(t.nodes) || len(jointForces) != t.nu || len(udot) != t.nu {
		return ErrDimensionMismatch
	}
	for i := len(t.nodes) - 1; i >= 0; i-- {
		t.nodes[i].calcUDotPass1Inward(cc, dc, jointForces, bodyForces, allZ, allGeps, allEps)
	}
	for _, n := range t.nodes {
		n.calcUDotPass2Outward(cc, dc, allEps, allA, udot)
	}
	return nil
}

// CalcInternalGradientFromSpatial maps per-body spatial gradients x into
// generalized-coordinate gradients jx, tip to base. Needs only a realized
// Configuration; zTmp is an uninitialized per-node temporary.
func (t *Tree) CalcInternalGradientFromSpatial(cc *ConfigurationCache,
	zTmp, x []spatial.SpatialVec, jx []float64) error {

	if len(x) != len(t.nodes) || len(jx) != t.nu {
		return ErrDimensionMismatch
	}
	for i := len(t.nodes) - 1; i >= 0; i-- {
		t.nodes[i].calcInternalGradientFromSpatial(cc, zTmp, x, jx)
	}
	return nil
}

// CalcEquivalentJointForces maps per-body spatial forces into equivalent
// generalized joint forces, tip to base. Pure force transmission: no
// centrifugal contribution.
func (t *Tree) CalcEquivalentJointForces(cc *ConfigurationCache, dc *DynamicsCache,
	bodyForces []spatial.SpatialVec, allZ, allGeps []spatial.SpatialVec,
	jointForces []float64) error {

	if len(bodyForces) != len(t.nodes) || len(jointForces) != t.nu {
		return ErrDimensionMismatch
	}
	for i := len(t.nodes) - 1; i >= 0; i-- {
		t.nodes[i].calcEquivalentJointForces(cc, dc, bodyForces, allZ, allGeps, jointForces)
	}
	return nil
}

// CalcKineticEnergy sums the per-body spatial-inertia quadratic forms.
// Configuration and Motion must be realized.
func (t *Tree) CalcKineticEnergy(cc *ConfigurationCache, mc *MotionCache) float64 {
	ke := 0.0
	for _, n := range t.nodes[1:] {
		ke += n.calcKineticEnergy(cc, mc)
	}
	return ke
}

// EnforceQuaternionConstraints renormalizes every quaternion-bearing
// joint's coordinates in place; reports whether any changed.
func (t *Tree) EnforceQuaternionConstraints(q []float64) bool {
	changed := false
	for _, n := range t.nodes {
		if n.EnforceQuaternionConstraints(q) {
			changed = true
		}
	}
	return changed
}

// SetVelFromSVel writes the generalized speeds that give node its spatial
// velocity sVel given the parent's current velocity in mc. Base to tip if
// applied along a chain.
func (t *Tree) SetVelFromSVel(node int, cc *ConfigurationCache, mc *MotionCache,
	sVel spatial.SpatialVec, u []float64) {
	if node == 0 {
		return
	}
	t.nodes[node].setVelFromSVel(cc, mc, sVel, u)
}

// GravityForces assembles the applied spatial force per body for a uniform
// gravity field g: force m*g acting at each body's center of mass, taken
// about the body origin. Configuration must be realized.
func (t *Tree) GravityForces(g spatial.Vec3, cc *ConfigurationCache) []spatial.SpatialVec {
	forces := make([]spatial.SpatialVec, len(t.nodes))
	for _, n := range t.nodes[1:] {
		f := g.Scale(n.mass)
		forces[n.num] = spatial.SpatialVec{cc.CbG[n.num].Cross(f), f}
	}
	return forces
}

// ForwardDynamics is the convenience driver: allocates caches, realizes
// Configuration, Motion and Dynamics, and computes accelerations for the
// given forces. bodyForces may be nil for none.
func (t *Tree) ForwardDynamics(q, u []float64, bodyForces []spatial.SpatialVec,
	jointForces []float64) (udot, qdotdot []float64, err error) {

	cc := NewConfigurationCache(t)
	mc := NewMotionCache(t)
	dc := NewDynamicsCache(t)
	rc := NewReactionCache(t)

	if bodyForces == nil {
		bodyForces = make([]spatial.SpatialVec, len(t.nodes))
	}
	if jointForces == nil {
		jointForces = make([]float64, t.nu)
	}

	qdot := make([]float64, t.nq)
	udot = make([]float64, t.nu)
	qdotdot = make([]float64, t.nq)

	if err = t.RealizeConfiguration(q, cc); err != nil {
		return nil, nil, err
	}
	if err = t.RealizeMotion(q, u, cc, mc, qdot); err != nil {
		return nil, nil, err
	}
	if err = t.RealizeDynamics(cc, mc, dc); err != nil {
		return nil, nil, err
	}
	if err = t.CalcTreeAccel(q, u, cc, dc, rc, bodyForces, jointForces, udot, qdotdot); err != nil {
		return nil, nil, err
	}
	return udot, qdotdot, nil
}
