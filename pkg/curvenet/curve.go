package curvenet

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// LatchData is one side of a latch. The partner curve stores the mirrored
// record; both copies must agree or the latch is dangling.
type LatchData struct {
	LatchedTo   CurveID
	SelfEdge    AnchorEdge
	PartnerEdge AnchorEdge
}

// Partner returns the edge this latch points at.
func (l LatchData) Partner() EdgeRef {
	return EdgeRef{Curve: l.LatchedTo, Edge: l.PartnerEdge}
}

// PendingLatch is a latch previewed during a drag. It is not part of the
// latch graph until committed.
type PendingLatch struct {
	Edge    AnchorEdge
	Partner EdgeRef
	// Snap is where the edge is displayed while the latch is pending.
	Snap curve.Point
}

// Curve is a single cubic Bézier segment.
//
// Curves are owned by a Store. Values returned from the Store may be read
// freely but must only be changed through Store methods.
type Curve struct {
	ID   CurveID
	Name string

	Start        curve.Point
	ControlStart curve.Point
	ControlEnd   curve.Point
	End          curve.Point

	// LUT holds t-values spaced at approximately equal arc length, from 0 to 1.
	LUT []float64

	Latches [2]*LatchData
	Pending *PendingLatch
}

// Bez returns the curve as a cubic Bézier.
func (c *Curve) Bez() curve.CubicBez {
	return curve.CubicBez{P0: c.Start, P1: c.ControlStart, P2: c.ControlEnd, P3: c.End}
}

// Length returns the arc length of the curve.
func (c *Curve) Length(accuracy float64) float64 {
	return safeArclen(c.Bez(), accuracy)
}

// Point returns the position of anchor a.
func (c *Curve) Point(a Anchor) curve.Point {
	switch a {
	case AnchorStart:
		return c.Start
	case AnchorEnd:
		return c.End
	case AnchorControlStart:
		return c.ControlStart
	case AnchorControlEnd:
		return c.ControlEnd
	}
	panic(fmt.Sprintf("invalid anchor %d", a))
}

func (c *Curve) setPoint(a Anchor, p curve.Point) {
	switch a {
	case AnchorStart:
		c.Start = p
	case AnchorEnd:
		c.End = p
	case AnchorControlStart:
		c.ControlStart = p
	case AnchorControlEnd:
		c.ControlEnd = p
	default:
		panic(fmt.Sprintf("invalid anchor %d", a))
	}
}

// EdgePoint returns the position of edge e.
func (c *Curve) EdgePoint(e AnchorEdge) curve.Point {
	if e == Start {
		return c.Start
	}
	return c.End
}

// DisplayPoint returns where edge e is shown: the snap point while a latch
// is pending on it, its real position otherwise.
func (c *Curve) DisplayPoint(e AnchorEdge) curve.Point {
	if c.Pending != nil && c.Pending.Edge == e {
		return c.Pending.Snap
	}
	return c.EdgePoint(e)
}

// LatchAt returns the latch on edge e, or nil when the edge is free.
func (c *Curve) LatchAt(e AnchorEdge) *LatchData {
	return c.Latches[e]
}

// Free reports whether edge e carries no committed latch.
func (c *Curve) Free(e AnchorEdge) bool {
	return c.Latches[e] == nil
}

// edgeControl is the control point attached to an edge.
func edgeControl(e AnchorEdge) Anchor {
	if e == Start {
		return AnchorControlStart
	}
	return AnchorControlEnd
}

func edgeAnchor(e AnchorEdge) Anchor {
	if e == Start {
		return AnchorStart
	}
	return AnchorEnd
}

func (c *Curve) clone() *Curve {
	cp := *c
	cp.LUT = append([]float64(nil), c.LUT...)
	for i, l := range c.Latches {
		if l != nil {
			v := *l
			cp.Latches[i] = &v
		}
	}
	if c.Pending != nil {
		p := *c.Pending
		cp.Pending = &p
	}
	return &cp
}

func (c *Curve) String() string {
	return fmt.Sprintf("%s %v %v %v %v", c.ID, c.Start, c.ControlStart, c.ControlEnd, c.End)
}

// safeArclen returns 0 for geometry the integrator cannot handle.
func safeArclen(bez curve.CubicBez, accuracy float64) float64 {
	for _, p := range [...]curve.Point{bez.P0, bez.P1, bez.P2, bez.P3} {
		if !finite(p.X) || !finite(p.Y) {
			return 0
		}
	}
	l := bez.Arclen(accuracy)
	if !finite(l) || l < 0 {
		return 0
	}
	return l
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
