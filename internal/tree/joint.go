package tree

import (
	"math"

	"github.com/san-kum/mbtree/internal/spatial"
)

// JointType enumerates the joint behaviors a node can carry. The set is
// closed; every operation on a node dispatches over it by switch.
type JointType int

const (
	// Ground is the distinguished 0-dof joint of the immobile base body.
	Ground JointType = iota
	// Torsion is a pin joint: one rotation about the z axis of the parent's
	// attachment frame, which stays aligned with the body's joint frame z.
	Torsion
	// Universal allows rotation about the two axes perpendicular to z.
	Universal
	// Orientation is a ball joint: unrestricted rotation, parametrized by
	// either body-fixed 1-2-3 Euler angles or a quaternion.
	Orientation
	// Cartesian allows unrestricted translation along the parent attachment
	// frame axes, with orientation frozen.
	Cartesian
	// FreeLine suits bodies with no inertia about one axis (e.g. diatoms):
	// full translation plus rotation about the two axes perpendicular to z.
	FreeLine
	// Free combines a ball joint with unrestricted translation.
	Free
	// Sliding allows one translation along the parent attachment frame's
	// z axis.
	Sliding

	// Declared but unimplemented types; requesting one is a construction
	// error.
	Cylinder
	Planar
	Gimbal
	Weld
)

func (j JointType) String() string {
	switch j {
	case Ground:
		return "ground"
	case Torsion:
		return "torsion"
	case Universal:
		return "universal"
	case Orientation:
		return "orientation"
	case Cartesian:
		return "cartesian"
	case FreeLine:
		return "freeline"
	case Free:
		return "free"
	case Sliding:
		return "sliding"
	case Cylinder:
		return "cylinder"
	case Planar:
		return "planar"
	case Gimbal:
		return "gimbal"
	case Weld:
		return "weld"
	}
	return "unknown"
}

// DOF returns the degree-of-freedom count of the joint.
func (j JointType) DOF() int {
	switch j {
	case Ground:
		return 0
	case Torsion, Sliding:
		return 1
	case Universal:
		return 2
	case Orientation, Cartesian:
		return 3
	case FreeLine:
		return 5
	case Free:
		return 6
	}
	return -1
}

// MaxNQ returns the maximum generalized-coordinate count: larger than DOF
// only for quaternion-bearing joints.
func (j JointType) MaxNQ() int {
	switch j {
	case Orientation:
		return 4
	case Free:
		return 7
	default:
		return j.DOF()
	}
}

func (j JointType) hasQuaternionOption() bool {
	return j == Orientation || j == Free
}

// calcJointSinCosQNorm writes this node's sine/cosine entries for angular
// coordinates and the normalized quaternion for quaternion coordinates.
// sine, cosine and qnorm are q-like arrays.
func (n *Node) calcJointSinCosQNorm(q, sine, cosine, qnorm []float64) {
	switch n.joint {
	case Torsion:
		a := q[n.qIndex]
		sine[n.qIndex] = math.Sin(a)
		cosine[n.qIndex] = math.Cos(a)
	case Universal, FreeLine:
		for i := 0; i < 2; i++ {
			a := q[n.qIndex+i]
			sine[n.qIndex+i] = math.Sin(a)
			cosine[n.qIndex+i] = math.Cos(a)
		}
	case Orientation, Free:
		if n.useEuler {
			for i := 0; i < 3; i++ {
				a := q[n.qIndex+i]
				sine[n.qIndex+i] = math.Sin(a)
				cosine[n.qIndex+i] = math.Cos(a)
			}
		} else {
			qn := n.fromQuat(q).Normalized()
			copy(qnorm[n.qIndex:n.qIndex+4], qn[:])
		}
	}
	// Ground, Cartesian, Sliding: no angular or quaternion coordinates.
}

// calcAcrossJointTransform produces the joint-frame-to-parent-joint-frame
// transform X_JbJ generated by the current q values.
func (n *Node) calcAcrossJointTransform(q []float64) spatial.Transform {
	switch n.joint {
	case Cartesian:
		// Translation expressed in Jb (and J: same orientation forever).
		return spatial.Transform{R: spatial.Identity33(), P: n.fromQVec3(q, 0)}
	case Sliding:
		return spatial.Transform{R: spatial.Identity33(), P: spatial.Vec3{0, 0, q[n.qIndex]}}
	case Torsion:
		return spatial.Transform{R: spatial.RotZ(q[n.qIndex])}
	case Universal:
		return spatial.Transform{R: spatial.SpaceFixed12(q[n.qIndex], q[n.qIndex+1])}
	case FreeLine:
		return spatial.Transform{
			R: spatial.SpaceFixed12(q[n.qIndex], q[n.qIndex+1]),
			P: n.fromQVec3(q, 2),
		}
	case Orientation:
		if n.useEuler {
			return spatial.Transform{R: spatial.BodyFixed123(n.fromQVec3(q, 0))}
		}
		return spatial.Transform{R: n.fromQuat(q).Normalized().ToRotation()}
	case Free:
		if n.useEuler {
			return spatial.Transform{
				R: spatial.BodyFixed123(n.fromQVec3(q, 0)),
				P: n.fromQVec3(q, 3),
			}
		}
		return spatial.Transform{
			R: n.fromQuat(q).Normalized().ToRotation(),
			P: n.fromQVec3(q, 4),
		}
	}
	return spatial.TransformIdentity()
}

// calcJointTransitionMatrix fills the dof rows of H, the matrix mapping
// generalized speeds to this joint's spatial velocity contribution in
// ground. xGP is the parent's ground transform, xGB this node's, both
// already realized (base-to-tip ordering).
func (n *Node) calcJointTransitionMatrix(xGP, xGB spatial.Transform, h []spatial.SpatialVec) {
	// Orientation of the parent's attachment frame in ground gives the
	// instantaneous spatial meaning of the coordinates.
	rGJb := xGP.R.Mul(n.xPJb.R)
	// Vector from the joint origin to the body origin, expressed in ground.
	tJBG := xGB.R.MulVec(n.xBJ.P).Neg()

	rot := func(axis spatial.Vec3) spatial.SpatialVec {
		return spatial.SpatialVec{axis, axis.Cross(tJBG)}
	}
	trans := func(axis spatial.Vec3) spatial.SpatialVec {
		return spatial.SpatialVec{spatial.Vec3{}, axis}
	}

	switch n.joint {
	case Cartesian:
		for i := 0; i < 3; i++ {
			h[i] = trans(rGJb.Col(i))
		}
	case Sliding:
		h[0] = trans(rGJb.Col(2))
	case Torsion:
		// The z axis is shared between J and Jb since that's the axis we
		// rotate about.
		h[0] = rot(rGJb.Col(2))
	case Universal:
		h[0] = rot(rGJb.Col(0))
		h[1] = rot(rGJb.Col(1))
	case FreeLine:
		h[0] = rot(rGJb.Col(0))
		h[1] = rot(rGJb.Col(1))
		for i := 0; i < 3; i++ {
			h[2+i] = trans(rGJb.Col(i))
		}
	case Orientation:
		for i := 0; i < 3; i++ {
			h[i] = rot(rGJb.Col(i))
		}
	case Free:
		for i := 0; i < 3; i++ {
			h[i] = rot(rGJb.Col(i))
			h[3+i] = trans(rGJb.Col(i))
		}
	}
}

// calcQDot maps generalized speeds to coordinate derivatives. The default
// is qdot = u; ball-bearing joints convert angular velocity to Euler-angle
// or quaternion derivatives. xJbJ must be the realized across-joint
// transform.
func (n *Node) calcQDot(q, u []float64, xJbJ spatial.Transform, qdot []float64) {
	switch n.joint {
	case Ground:
	case Orientation:
		w := n.fromUVec3(u, 0) // angular velocity of J in Jb, expressed in Jb
		if n.useEuler {
			qdot[n.qIndex+3] = 0 // unused quaternion slot
			wB := xJbJ.R.TransposeMulVec(w)
			n.toQVec3(qdot, 0, spatial.EulerRates123(n.fromQVec3(q, 0), wB))
		} else {
			qd := spatial.QuatRates(n.fromQuat(q), w)
			copy(qdot[n.qIndex:n.qIndex+4], qd[:])
		}
	case Free:
		w := n.fromUVec3(u, 0)
		v := n.fromUVec3(u, 3)
		if n.useEuler {
			qdot[n.qIndex+6] = 0
			wB := xJbJ.R.TransposeMulVec(w)
			n.toQVec3(qdot, 0, spatial.EulerRates123(n.fromQVec3(q, 0), wB))
			n.toQVec3(qdot, 3, v)
		} else {
			qd := spatial.QuatRates(n.fromQuat(q), w)
			copy(qdot[n.qIndex:n.qIndex+4], qd[:])
			n.toQVec3(qdot, 4, v)
		}
	default:
		copy(qdot[n.qIndex:n.qIndex+n.dof], u[n.uIndex:n.uIndex+n.dof])
	}
}

// calcQDotDot is the matched second-derivative pair of calcQDot.
func (n *Node) calcQDotDot(q, u, udot []float64, xJbJ spatial.Transform, qdotdot []float64) {
	switch n.joint {
	case Ground:
	case Orientation:
		w := n.fromUVec3(u, 0)
		wd := n.fromUVec3(udot, 0)
		if n.useEuler {
			qdotdot[n.qIndex+3] = 0
			rt := xJbJ.R
			n.toQVec3(qdotdot, 0, spatial.EulerAccel123(n.fromQVec3(q, 0),
				rt.TransposeMulVec(w), rt.TransposeMulVec(wd)))
		} else {
			qdd := spatial.QuatAccel(n.fromQuat(q), w, wd)
			copy(qdotdot[n.qIndex:n.qIndex+4], qdd[:])
		}
	case Free:
		w := n.fromUVec3(u, 0)
		wd := n.fromUVec3(udot, 0)
		vd := n.fromUVec3(udot, 3)
		if n.useEuler {
			qdotdot[n.qIndex+6] = 0
			rt := xJbJ.R
			n.toQVec3(qdotdot, 0, spatial.EulerAccel123(n.fromQVec3(q, 0),
				rt.TransposeMulVec(w), rt.TransposeMulVec(wd)))
			n.toQVec3(qdotdot, 3, vd)
		} else {
			qdd := spatial.QuatAccel(n.fromQuat(q), w, wd)
			copy(qdotdot[n.qIndex:n.qIndex+4], qdd[:])
			n.toQVec3(qdotdot, 4, vd)
		}
	default:
		copy(qdotdot[n.qIndex:n.qIndex+n.dof], udot[n.uIndex:n.uIndex+n.dof])
	}
}

// EnforceQuaternionConstraints renormalizes this node's quaternion
// coordinates in place. Reports whether q was changed; Euler-angle mode and
// quaternion-free joints report false.
func (n *Node) EnforceQuaternionConstraints(q []float64) bool {
	if !n.joint.hasQuaternionOption() || n.useEuler {
		return false
	}
	qn := n.fromQuat(q).Normalized()
	copy(q[n.qIndex:n.qIndex+4], qn[:])
	return true
}

// setDefaultConfiguration writes the joint's zero/identity configuration.
func (n *Node) setDefaultConfiguration(q []float64) {
	for i := 0; i < n.maxNQ; i++ {
		q[n.qIndex+i] = 0
	}
	if n.joint.hasQuaternionOption() && !n.useEuler {
		q[n.qIndex] = 1 // identity quaternion
	}
}

// setDefaultVelocity writes the joint's zero velocity.
func (n *Node) setDefaultVelocity(u []float64) {
	for i := 0; i < n.dof; i++ {
		u[n.uIndex+i] = 0
	}
}

// SetJointTransform writes q so that the across-joint transform equals x,
// for joints whose coordinates can represent it (Cartesian, Sliding,
// Orientation, Free). Other joints are left untouched.
func (n *Node) SetJointTransform(x spatial.Transform, q []float64) {
	switch n.joint {
	case Cartesian:
		n.toQVec3(q, 0, x.P)
	case Sliding:
		q[n.qIndex] = x.P[2]
	case Orientation:
		if n.useEuler {
			n.toQVec3(q, 0, spatial.ToBodyFixed123(x.R))
		} else {
			qu := spatial.RotationToQuat(x.R)
			copy(q[n.qIndex:n.qIndex+4], qu[:])
		}
	case Free:
		if n.useEuler {
			n.toQVec3(q, 0, spatial.ToBodyFixed123(x.R))
			n.toQVec3(q, 3, x.P)
		} else {
			qu := spatial.RotationToQuat(x.R)
			copy(q[n.qIndex:n.qIndex+4], qu[:])
			n.toQVec3(q, 4, x.P)
		}
	}
}

// SetJointVelocity writes u so that the joint's relative spatial velocity
// equals v, for joints that can represent it. The angular part is always
// used directly as generalized speeds.
func (n *Node) SetJointVelocity(v spatial.SpatialVec, u []float64) {
	switch n.joint {
	case Cartesian:
		n.toUVec3(u, 0, v[1])
	case Sliding:
		u[n.uIndex] = v[1][2]
	case Orientation:
		n.toUVec3(u, 0, v[0])
	case Free:
		n.toUVec3(u, 0, v[0])
		n.toUVec3(u, 3, v[1])
	}
}
