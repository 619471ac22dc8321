// Latch graph mutation and the two-phase pending latch used while dragging.

package curvenet

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// Latch joins edge ea of curve a to edge eb of curve b. It fails with
// ErrEdgeAlreadyLatched, leaving the graph unchanged, if either edge is
// occupied. On success both curves carry mirrored LatchData.
func (s *Store) Latch(a CurveID, ea AnchorEdge, b CurveID, eb AnchorEdge) error {
	if a == b {
		return fmt.Errorf("%w: %s", ErrSelfLatch, a)
	}
	ca, err := s.curve(a)
	if err != nil {
		return err
	}
	cb, err := s.curve(b)
	if err != nil {
		return err
	}
	if l := ca.Latches[ea]; l != nil {
		return fmt.Errorf("%w: %s:%s is latched to %s", ErrEdgeAlreadyLatched, a, ea, l.Partner())
	}
	if l := cb.Latches[eb]; l != nil {
		return fmt.Errorf("%w: %s:%s is latched to %s", ErrEdgeAlreadyLatched, b, eb, l.Partner())
	}

	ca.Latches[ea] = &LatchData{LatchedTo: b, SelfEdge: ea, PartnerEdge: eb}
	cb.Latches[eb] = &LatchData{LatchedTo: a, SelfEdge: eb, PartnerEdge: ea}
	clearPendingOn(ca, ea)
	clearPendingOn(cb, eb)

	s.refresh(false, a, b)
	return nil
}

func clearPendingOn(c *Curve, e AnchorEdge) {
	if c.Pending != nil && c.Pending.Edge == e {
		c.Pending = nil
	}
}

// Unlatch frees edge e of curve id. The partner's mirrored entry is removed
// when it still points back; otherwise the latch was dangling, which is
// logged and not an error. Unlatching a free edge does nothing.
func (s *Store) Unlatch(id CurveID, e AnchorEdge) error {
	c, err := s.curve(id)
	if err != nil {
		return err
	}
	l := c.Latches[e]
	if l == nil {
		return nil
	}
	c.Latches[e] = nil
	ids := []CurveID{id}
	if s.clearReciprocal(id, e, l) {
		ids = append(ids, l.LatchedTo)
	}
	s.refresh(false, ids...)
	return nil
}

// SetPendingLatch records a previewed latch from edge e of curve id to
// partner. The latch graph is not changed; the edge is displayed at the
// partner's position until the latch is committed or cancelled.
func (s *Store) SetPendingLatch(id CurveID, e AnchorEdge, partner EdgeRef) error {
	if id == partner.Curve {
		return fmt.Errorf("%w: %s", ErrSelfLatch, id)
	}
	c, err := s.curve(id)
	if err != nil {
		return err
	}
	p, err := s.curve(partner.Curve)
	if err != nil {
		return err
	}
	if !c.Free(e) {
		return fmt.Errorf("%w: %s:%s", ErrEdgeAlreadyLatched, id, e)
	}
	if !p.Free(partner.Edge) {
		return fmt.Errorf("%w: %s", ErrEdgeAlreadyLatched, partner)
	}
	c.Pending = &PendingLatch{Edge: e, Partner: partner, Snap: p.EdgePoint(partner.Edge)}
	return nil
}

// CancelPendingLatch drops the pending latch of curve id, if any.
func (s *Store) CancelPendingLatch(id CurveID) error {
	c, err := s.curve(id)
	if err != nil {
		return err
	}
	c.Pending = nil
	return nil
}

// CommitPendingLatch turns the pending latch of curve id into a real latch.
// The edge is moved onto the partner's current position first.
func (s *Store) CommitPendingLatch(id CurveID) error {
	c, err := s.curve(id)
	if err != nil {
		return err
	}
	pl := c.Pending
	if pl == nil {
		return fmt.Errorf("%w: %s", ErrNoPendingLatch, id)
	}
	c.Pending = nil

	p, err := s.curve(pl.Partner.Curve)
	if err != nil {
		return err
	}
	if !c.Free(pl.Edge) || !p.Free(pl.Partner.Edge) {
		return fmt.Errorf("%w: pending %s:%s -> %s", ErrEdgeAlreadyLatched, id, pl.Edge, pl.Partner)
	}
	moveEdge(c, pl.Edge, p.EdgePoint(pl.Partner.Edge).Sub(c.EdgePoint(pl.Edge)))
	s.rebuildLUT(c)
	return s.Latch(id, pl.Edge, pl.Partner.Curve, pl.Partner.Edge)
}

// FindSnapTarget returns the free edge of another curve nearest to edge e
// of curve id, if one lies within radius. Ties go to the lower EdgeRef.
func (s *Store) FindSnapTarget(id CurveID, e AnchorEdge, radius float64) (EdgeRef, bool) {
	c, ok := s.curves[id]
	if !ok {
		return EdgeRef{}, false
	}
	at := c.EdgePoint(e)
	best, bestDist := EdgeRef{}, math.Inf(1)
	for _, oid := range s.CurveIDs() {
		if oid == id {
			continue
		}
		o := s.curves[oid]
		for _, oe := range [...]AnchorEdge{Start, End} {
			if !o.Free(oe) {
				continue
			}
			if d := at.Distance(o.EdgePoint(oe)); d <= radius && d < bestDist {
				best, bestDist = EdgeRef{Curve: oid, Edge: oe}, d
			}
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// DragAnchor moves anchor a of curve id to pos as one step of an
// interactive drag. When a free edge is dragged within the configured snap
// radius of another free edge a pending latch is proposed; otherwise any
// pending latch is dropped. The returned pending latch is a copy, nil when
// none is proposed.
func (s *Store) DragAnchor(id CurveID, a Anchor, pos curve.Point) (*PendingLatch, error) {
	if err := s.MoveAnchor(id, a, pos); err != nil {
		return nil, err
	}
	c := s.curves[id]
	e, isEdge := a.Edge()
	if !isEdge || !c.Free(e) {
		c.Pending = nil
		return nil, nil
	}
	target, ok := s.FindSnapTarget(id, e, s.cfg.SnapRadius)
	if !ok {
		c.Pending = nil
		return nil, nil
	}
	if err := s.SetPendingLatch(id, e, target); err != nil {
		return nil, err
	}
	pl := *c.Pending
	return &pl, nil
}
