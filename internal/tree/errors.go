package tree

import (
	"errors"
	"fmt"
)

// Domain errors. Construction-time errors indicate a malformed model;
// realization-time errors indicate a numerically singular system. Neither
// is recoverable: proceeding would silently produce wrong motion.
var (
	// ErrUnsupportedJoint indicates a joint type with no implementation.
	ErrUnsupportedJoint = errors.New("tree: unsupported joint type")

	// ErrReversedJoint indicates a child-to-parent joint orientation request.
	ErrReversedJoint = errors.New("tree: reversed joints are not supported")

	// ErrUnknownParent indicates a parent body id outside the tree.
	ErrUnknownParent = errors.New("tree: unknown parent body")

	// ErrSingularD indicates an ill-conditioned hinge inertia block D during
	// the articulated-body recursion.
	ErrSingularD = errors.New("tree: singular hinge inertia matrix D")

	// ErrDimensionMismatch indicates a state or force array whose length
	// does not match the tree's slot layout.
	ErrDimensionMismatch = errors.New("tree: array length does not match tree")
)

// NodeError wraps an error with the node and operation it occurred in.
type NodeError struct {
	Node    int
	Op      string
	Wrapped error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d: %s: %v", e.Node, e.Op, e.Wrapped)
}

func (e *NodeError) Unwrap() error {
	return e.Wrapped
}
