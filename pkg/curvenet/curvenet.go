// Package curvenet provides the curve-network model: cubic Bézier curves,
// the latch graph that joins curve endpoints into chains, and the arc-length
// look-up tables that address any point of a chain with one normalized
// parameter.
//
// All mutation goes through a Store. Every mutating Store method rebuilds the
// affected LUTs and recomposes the affected groups before it returns, so a
// query issued after a mutation always observes the settled result.
package curvenet

import (
	"fmt"
	"strings"
)

// CurveID identifies a curve within a Store. The zero value is never a valid id.
type CurveID uint64

// GroupID identifies a group within a Store. The zero value is never a valid id.
type GroupID uint64

func (id CurveID) String() string {
	return fmt.Sprintf("c%d", uint64(id))
}

func (id GroupID) String() string {
	return fmt.Sprintf("g%d", uint64(id))
}

// AnchorEdge is one of the two latchable endpoints of a curve.
type AnchorEdge uint8

const (
	Start AnchorEdge = iota
	End
)

// Opposite returns the other edge of the same curve.
func (e AnchorEdge) Opposite() AnchorEdge {
	if e == Start {
		return End
	}
	return Start
}

func (e AnchorEdge) String() string {
	switch e {
	case Start:
		return "start"
	case End:
		return "end"
	}
	return fmt.Sprintf("edge(%d)", uint8(e))
}

// ParseAnchorEdge parses "start" or "end" (case-insensitive).
func ParseAnchorEdge(s string) (AnchorEdge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "s":
		return Start, nil
	case "end", "e":
		return End, nil
	}
	return Start, fmt.Errorf("unknown anchor edge %q", s)
}

// Anchor addresses one of the four points of a curve.
type Anchor uint8

const (
	AnchorStart Anchor = iota
	AnchorEnd
	AnchorControlStart
	AnchorControlEnd
)

// Edge reports the latchable edge of a, if it has one.
func (a Anchor) Edge() (AnchorEdge, bool) {
	switch a {
	case AnchorStart:
		return Start, true
	case AnchorEnd:
		return End, true
	}
	return Start, false
}

func (a Anchor) String() string {
	switch a {
	case AnchorStart:
		return "start"
	case AnchorEnd:
		return "end"
	case AnchorControlStart:
		return "control_start"
	case AnchorControlEnd:
		return "control_end"
	}
	return fmt.Sprintf("anchor(%d)", uint8(a))
}

// EdgeRef names one edge of one curve.
type EdgeRef struct {
	Curve CurveID
	Edge  AnchorEdge
}

// Less orders edge refs by curve id, then edge.
func (r EdgeRef) Less(o EdgeRef) bool {
	if r.Curve != o.Curve {
		return r.Curve < o.Curve
	}
	return r.Edge < o.Edge
}

func (r EdgeRef) String() string {
	return fmt.Sprintf("%s:%s", r.Curve, r.Edge)
}

// Ends holds the two open ends of a chain. A closed ring reports both ends
// as the same edge.
type Ends [2]EdgeRef

// Closed reports whether the chain is a ring.
func (e Ends) Closed() bool {
	return e[0] == e[1]
}

func (e Ends) String() string {
	if e.Closed() {
		return fmt.Sprintf("ring at %s", e[0])
	}
	return fmt.Sprintf("%s .. %s", e[0], e[1])
}
