package tree

import "github.com/san-kum/mbtree/internal/spatial"

// MassProperties are a body's fixed mass moments, expressed in the body
// frame about the body origin.
type MassProperties struct {
	Mass    float64
	COM     spatial.Vec3
	Inertia spatial.Mat33
}

// Node is one rigid body together with its single inboard joint. The tree
// owns all nodes; parent and children are arena indices expressing relation
// and traversal order only.
type Node struct {
	num      int
	level    int // 0 for ground, parent.level+1 otherwise
	parent   int // -1 for ground
	children []int

	joint    JointType
	useEuler bool

	mass     float64
	comB     spatial.Vec3
	inertiaB spatial.Mat33

	// Fixed frames: the joint's parent attachment frame Jb in the parent
	// body frame, and the joint frame J in this body's frame.
	xPJb spatial.Transform
	xBJ  spatial.Transform

	// Slot assignment into the external generalized arrays.
	uIndex   int
	uSqIndex int
	qIndex   int
	dof      int
	maxNQ    int
}

func (n *Node) Num() int          { return n.num }
func (n *Node) Level() int        { return n.level }
func (n *Node) Parent() int       { return n.parent }
func (n *Node) Children() []int   { return n.children }
func (n *Node) Joint() JointType  { return n.joint }
func (n *Node) UseEuler() bool    { return n.useEuler }
func (n *Node) Mass() float64     { return n.mass }
func (n *Node) DOF() int          { return n.dof }
func (n *Node) MaxNQ() int        { return n.maxNQ }
func (n *Node) UIndex() int       { return n.uIndex }
func (n *Node) QIndex() int       { return n.qIndex }

// NQ returns the coordinate count currently in use: maxNQ in quaternion
// mode, dof otherwise.
func (n *Node) NQ() int {
	if n.joint.hasQuaternionOption() && !n.useEuler {
		return n.maxNQ
	}
	return n.dof
}

// Slot views into q-like and u-like arrays.

func (n *Node) fromQuat(q []float64) spatial.Quat {
	return spatial.Quat{q[n.qIndex], q[n.qIndex+1], q[n.qIndex+2], q[n.qIndex+3]}
}

func (n *Node) fromQVec3(q []float64, offs int) spatial.Vec3 {
	i := n.qIndex + offs
	return spatial.Vec3{q[i], q[i+1], q[i+2]}
}

func (n *Node) toQVec3(q []float64, offs int, v spatial.Vec3) {
	i := n.qIndex + offs
	q[i], q[i+1], q[i+2] = v[0], v[1], v[2]
}

func (n *Node) fromUVec3(u []float64, offs int) spatial.Vec3 {
	i := n.uIndex + offs
	return spatial.Vec3{u[i], u[i+1], u[i+2]}
}

func (n *Node) toUVec3(u []float64, offs int, v spatial.Vec3) {
	i := n.uIndex + offs
	u[i], u[i+1], u[i+2] = v[0], v[1], v[2]
}

// hRows returns this node's rows of H from the configuration cache.
func (n *Node) hRows(cc *ConfigurationCache) []spatial.SpatialVec {
	return cc.H[n.uIndex : n.uIndex+n.dof]
}

func (n *Node) dSlot(store []float64) []float64 {
	return store[n.uSqIndex : n.uSqIndex+n.dof*n.dof]
}

func (n *Node) uSlot(store []float64) []float64 {
	return store[n.uIndex : n.uIndex+n.dof]
}

func (n *Node) gCols(dc *DynamicsCache) []spatial.SpatialVec {
	return dc.G[n.uIndex : n.uIndex+n.dof]
}
