// Package tree computes forward dynamics for an articulated rigid-body
// mechanism arranged as a rooted tree, using the O(N) articulated-body
// inertia method rather than forming and inverting the full mass matrix.
//
// A [Tree] owns its [Node] arena; node 0 is always ground. Each node is
// one rigid body plus its single inboard joint, one of eight [JointType]
// behaviors from 0 to 6 degrees of freedom. All numeric state lives in
// caller-owned arrays: generalized coordinates q, speeds u, and the
// per-stage caches ([ConfigurationCache], [MotionCache], [DynamicsCache],
// [ReactionCache]).
//
// Computation proceeds in ordered stages realized across the whole tree:
//
//	Modeling -> Parameters -> Configuration -> Motion -> Dynamics -> Reaction
//
// Configuration and Motion traverse base to tip, the articulated-body
// recursion tip to base, compliance and acceleration base to tip, and the
// reaction-force reduction tip to base. The Tree drivers enforce these
// directions; cache entries read before their stage has been realized are
// stale, and nothing defends against that beyond the drivers themselves.
//
// # Example
//
//	t := tree.New()
//	bob, _ := t.AddBody(0, tree.Torsion, mp, xPJb, xBJ, false)
//	q := make([]float64, t.NQ())
//	u := make([]float64, t.NU())
//	t.SetDefaults(q, u)
//	udot, qdotdot, err := t.ForwardDynamics(q, u, nil, nil)
//
// # Errors
//
// Construction rejects malformed models ([ErrUnsupportedJoint],
// [ErrReversedJoint], [ErrUnknownParent]). Realization fails only on a
// numerically singular hinge inertia block ([ErrSingularD]); that is
// fatal for the stage, by the same reasoning an assertion would be --
// continuing would silently produce wrong motion. Quaternion drift is not
// an error: [Tree.EnforceQuaternionConstraints] renormalizes on request.
package tree
