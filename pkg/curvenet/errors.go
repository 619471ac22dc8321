package curvenet

import "errors"

var (
	// ErrEdgeAlreadyLatched is returned when latching onto an occupied edge.
	// The latch graph is left untouched.
	ErrEdgeAlreadyLatched = errors.New("edge already latched")

	// ErrDanglingLatch describes a latch whose partner is gone or no longer
	// points back. It is logged and the edge is treated as free.
	ErrDanglingLatch = errors.New("dangling latch")

	// ErrChainDisconnected means the members do not form one connected path.
	ErrChainDisconnected = errors.New("chain disconnected")

	// ErrChainBranching means the latch relation among the members is not a
	// simple path or ring.
	ErrChainBranching = errors.New("chain branching")

	// ErrStaleQuery is returned for a group query parameter that no chain
	// segment covers. It is never clamped.
	ErrStaleQuery = errors.New("stale query")

	// ErrCurveNotFound is returned for an id the store does not hold.
	ErrCurveNotFound = errors.New("curve not found")

	// ErrGroupNotFound is returned for an unknown group id.
	ErrGroupNotFound = errors.New("group not found")

	// ErrAlreadyGrouped means a curve is already a member of another group.
	ErrAlreadyGrouped = errors.New("curve already in a group")

	// ErrSelfLatch is returned when both edges of a latch belong to one curve.
	ErrSelfLatch = errors.New("cannot latch an edge to itself")

	// ErrNoPendingLatch is returned when committing a curve with no pending latch.
	ErrNoPendingLatch = errors.New("no pending latch")
)
