package tree

import "github.com/san-kum/mbtree/internal/spatial"

// Stage caches hold the per-node outputs of each realization stage. They
// are owned by the caller and indexed by node number or by a node's slot
// assignment; the recursions only read and write through them. A cache
// entry is meaningful only after its stage has been realized for that node
// and for every node the traversal direction requires first.

// ConfigurationCache holds position-stage quantities.
type ConfigurationCache struct {
	// q-like arrays: sines/cosines of angular coordinates and normalized
	// quaternions. Slots of other joints are garbage.
	Sq, Cq, QNorm []float64

	XJbJ []spatial.Transform // across-joint transform, per node
	XPB  []spatial.Transform // parent-to-body transform, per node
	XGB  []spatial.Transform // ground-to-body transform, per node

	// H rows, indexed by uIndex: row i of node n lives at H[n.uIndex+i].
	H []spatial.SpatialVec

	Phi      []spatial.PhiMat     // parent-to-child shift operator
	InertiaG []spatial.Mat33      // body inertia about body origin, in ground
	CbG      []spatial.Vec3       // body-origin-to-COM offset, in ground
	ComG     []spatial.Vec3       // center of mass in ground
	Mk       []spatial.SpatialMat // spatial inertia about body origin
}

// MotionCache holds velocity-stage quantities.
type MotionCache struct {
	VPBG []spatial.SpatialVec // relative spatial velocity across the joint, in ground
	VGB  []spatial.SpatialVec // absolute spatial velocity
}

// DynamicsCache holds the articulated-body quantities.
type DynamicsCache struct {
	GyroForce   []spatial.SpatialVec
	Coriolis    []spatial.SpatialVec
	Centrifugal []spatial.SpatialVec

	P      []spatial.SpatialMat // articulated-body inertia
	D, DI  []float64            // dof x dof blocks, indexed by uSqIndex
	G      []spatial.SpatialVec // gain columns, indexed by uIndex
	TauBar []spatial.SpatialMat // I - G*H
	Psi    []spatial.SpatialMat // Phi * (I - G*H)
	Y      []spatial.SpatialMat // outward compliance
}

// ReactionCache holds the force/acceleration-stage quantities.
type ReactionCache struct {
	Z    []spatial.SpatialVec // net recursive force
	Geps []spatial.SpatialVec // G * epsilon
	AGB  []spatial.SpatialVec // spatial acceleration

	// u-like arrays.
	Epsilon  []float64
	Nu       []float64
	NetHinge []float64
}

func NewConfigurationCache(t *Tree) *ConfigurationCache {
	n := len(t.nodes)
	return &ConfigurationCache{
		Sq:       make([]float64, t.nq),
		Cq:       make([]float64, t.nq),
		QNorm:    make([]float64, t.nq),
		XJbJ:     make([]spatial.Transform, n),
		XPB:      make([]spatial.Transform, n),
		XGB:      make([]spatial.Transform, n),
		H:        make([]spatial.SpatialVec, t.nu),
		Phi:      make([]spatial.PhiMat, n),
		InertiaG: make([]spatial.Mat33, n),
		CbG:      make([]spatial.Vec3, n),
		ComG:     make([]spatial.Vec3, n),
		Mk:       make([]spatial.SpatialMat, n),
	}
}

func NewMotionCache(t *Tree) *MotionCache {
	n := len(t.nodes)
	return &MotionCache{
		VPBG: make([]spatial.SpatialVec, n),
		VGB:  make([]spatial.SpatialVec, n),
	}
}

func NewDynamicsCache(t *Tree) *DynamicsCache {
	n := len(t.nodes)
	return &DynamicsCache{
		GyroForce:   make([]spatial.SpatialVec, n),
		Coriolis:    make([]spatial.SpatialVec, n),
		Centrifugal: make([]spatial.SpatialVec, n),
		P:           make([]spatial.SpatialMat, n),
		D:           make([]float64, t.nuSq),
		DI:          make([]float64, t.nuSq),
		G:           make([]spatial.SpatialVec, t.nu),
		TauBar:      make([]spatial.SpatialMat, n),
		Psi:         make([]spatial.SpatialMat, n),
		Y:           make([]spatial.SpatialMat, n),
	}
}

func NewReactionCache(t *Tree) *ReactionCache {
	n := len(t.nodes)
	return &ReactionCache{
		Z:        make([]spatial.SpatialVec, n),
		Geps:     make([]spatial.SpatialVec, n),
		AGB:      make([]spatial.SpatialVec, n),
		Epsilon:  make([]float64, t.nu),
		Nu:       make([]float64, t.nu),
		NetHinge: make([]float64, t.nu),
	}
}
