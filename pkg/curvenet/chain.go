// Chain traversal over the latch graph.
// Determines whether a set of curves forms one path or ring and reports its ends.

package curvenet

import (
	"fmt"
	"log/slog"
	"slices"
)

// Lookup resolves a curve id. It returns nil for unknown ids.
type Lookup func(CurveID) *Curve

// walker follows latches restricted to a member set.
type walker struct {
	lookup  Lookup
	members map[CurveID]bool
	logger  *slog.Logger // nil disables dangling warnings
}

func newWalker(ids []CurveID, lookup Lookup, logger *slog.Logger) *walker {
	w := &walker{
		lookup:  lookup,
		members: make(map[CurveID]bool, len(ids)),
		logger:  logger,
	}
	for _, id := range ids {
		w.members[id] = true
	}
	return w
}

// follow crosses the latch on edge e of c. It returns the partner edge it
// arrives at, or ok=false when e is open within the member set. A partner
// edge latched back to another member is a conflict. One latched to a
// curve outside the set leaves e dangling.
func (w *walker) follow(c *Curve, e AnchorEdge) (next EdgeRef, ok bool, err error) {
	l := c.Latches[e]
	if l == nil {
		return EdgeRef{}, false, nil
	}
	partner := w.lookup(l.LatchedTo)
	if partner == nil {
		w.dangling(c.ID, e, l, "partner missing")
		return EdgeRef{}, false, nil
	}
	back := partner.Latches[l.PartnerEdge]
	if back == nil {
		w.dangling(c.ID, e, l, "partner edge free")
		return EdgeRef{}, false, nil
	}
	if back.LatchedTo != c.ID && !w.members[back.LatchedTo] {
		w.dangling(c.ID, e, l, "partner edge latched elsewhere")
		return EdgeRef{}, false, nil
	}
	if back.LatchedTo != c.ID || back.PartnerEdge != e {
		return EdgeRef{}, false, fmt.Errorf("%w: %s:%s latched to %s but %s is latched to %s",
			ErrChainBranching, c.ID, e, l.Partner(), l.Partner(), back.Partner())
	}
	if !w.members[partner.ID] {
		return EdgeRef{}, false, nil
	}
	return l.Partner(), true, nil
}

func (w *walker) dangling(id CurveID, e AnchorEdge, l *LatchData, why string) {
	if w.logger == nil {
		return
	}
	w.logger.Warn(ErrDanglingLatch.Error(),
		"curve", id, "edge", e, "partner", l.Partner(), "reason", why)
}

// walkResult is where a one-directional walk stopped.
type walkResult struct {
	end    EdgeRef
	hops   int
	closed bool
}

// walk follows latches from edge from of start until an open edge is
// reached or the walk returns to start. visited is shared between the two
// directions of one traversal.
func (w *walker) walk(start *Curve, from AnchorEdge, visited map[CurveID]bool) (walkResult, error) {
	cur, e := start, from
	hops := 0
	for {
		next, ok, err := w.follow(cur, e)
		if err != nil {
			return walkResult{}, err
		}
		if !ok {
			return walkResult{end: EdgeRef{Curve: cur.ID, Edge: e}, hops: hops}, nil
		}
		hops++
		if next.Curve == start.ID {
			return walkResult{end: EdgeRef{Curve: start.ID, Edge: Start}, hops: hops, closed: true}, nil
		}
		if visited[next.Curve] || hops > len(w.members) {
			return walkResult{}, fmt.Errorf("%w: cycle through %s does not include %s",
				ErrChainBranching, next.Curve, start.ID)
		}
		visited[next.Curve] = true
		cur = w.lookup(next.Curve)
		e = next.Edge.Opposite()
	}
}

// FindConnectedEnds determines whether members form a single connected,
// non-branching chain and returns its two open ends. For a closed ring both
// ends are the Start edge of the lowest member id.
//
// The result depends only on the latch graph, not on the order of members.
// Latches leading to curves outside members count as open edges. Dangling
// latches are logged to logger (if non-nil) and treated as free.
//
// A walk is accepted when the number of latch hops plus slack is at least
// the member count.
func FindConnectedEnds(members []CurveID, lookup Lookup, slack int, logger *slog.Logger) (Ends, error) {
	ids := slices.Clone(members)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	switch len(ids) {
	case 0:
		return Ends{}, fmt.Errorf("%w: no members", ErrChainDisconnected)
	case 1:
		if lookup(ids[0]) == nil {
			return Ends{}, fmt.Errorf("%w: %s", ErrCurveNotFound, ids[0])
		}
		return Ends{{Curve: ids[0], Edge: Start}, {Curve: ids[0], Edge: End}}, nil
	}

	start := lookup(ids[0])
	if start == nil {
		return Ends{}, fmt.Errorf("%w: %s", ErrCurveNotFound, ids[0])
	}
	w := newWalker(ids, lookup, logger)

	var latched [2]bool
	for _, e := range [...]AnchorEdge{Start, End} {
		_, ok, err := w.follow(start, e)
		if err != nil {
			return Ends{}, err
		}
		latched[e] = ok
	}
	if !latched[Start] && !latched[End] {
		return Ends{}, fmt.Errorf("%w: %s has no latch to another member", ErrChainDisconnected, start.ID)
	}

	visited := map[CurveID]bool{start.ID: true}
	fwd := walkResult{end: EdgeRef{Curve: start.ID, Edge: End}}
	if latched[End] {
		var err error
		if fwd, err = w.walk(start, End, visited); err != nil {
			return Ends{}, err
		}
		if fwd.closed {
			if err := accept(fwd.hops, slack, len(ids)); err != nil {
				return Ends{}, err
			}
			return Ends{fwd.end, fwd.end}, nil
		}
	}

	back := walkResult{end: EdgeRef{Curve: start.ID, Edge: Start}}
	if latched[Start] {
		var err error
		if back, err = w.walk(start, Start, visited); err != nil {
			return Ends{}, err
		}
		if back.closed {
			// The forward walk would have found the ring.
			return Ends{}, fmt.Errorf("%w: inconsistent ring at %s", ErrChainBranching, start.ID)
		}
	}

	if err := accept(fwd.hops+back.hops, slack, len(ids)); err != nil {
		return Ends{}, err
	}
	ends := Ends{back.end, fwd.end}
	if ends[1].Less(ends[0]) {
		ends[0], ends[1] = ends[1], ends[0]
	}
	return ends, nil
}

func accept(hops, slack, n int) error {
	if hops+slack < n {
		return fmt.Errorf("%w: walked %d latches across %d members", ErrChainDisconnected, hops, n)
	}
	return nil
}
