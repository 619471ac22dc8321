package curvenet

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"honnef.co/go/curve"
)

// Store owns all curves and groups of a network. It is the only writer:
// each mutating method rebuilds the LUTs it invalidated and recomposes the
// groups it touched before returning.
//
// A Store is not safe for concurrent use.
type Store struct {
	cfg    Config
	logger *slog.Logger

	curves  map[CurveID]*Curve
	groups  map[GroupID]*Group
	groupOf map[CurveID]GroupID

	lastCurve CurveID
	lastGroup GroupID
}

// NewStore creates an empty store. A nil logger uses slog.Default().
func NewStore(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:     cfg.normalized(),
		logger:  logger,
		curves:  make(map[CurveID]*Curve),
		groups:  make(map[GroupID]*Group),
		groupOf: make(map[CurveID]GroupID),
	}
}

// Config returns the store's numeric policy.
func (s *Store) Config() Config {
	return s.cfg
}

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

func (s *Store) lookup(id CurveID) *Curve {
	return s.curves[id]
}

func (s *Store) curve(id CurveID) (*Curve, error) {
	c, ok := s.curves[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCurveNotFound, id)
	}
	return c, nil
}

func (s *Store) group(gid GroupID) (*Group, error) {
	g, ok := s.groups[gid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, gid)
	}
	return g, nil
}

func (s *Store) newCurveID() CurveID {
	for {
		s.lastCurve++
		if s.lastCurve == 0 {
			panic("curvenet: curve id space exhausted")
		}
		if _, taken := s.curves[s.lastCurve]; !taken {
			return s.lastCurve
		}
	}
}

func (s *Store) newGroupID() GroupID {
	for {
		s.lastGroup++
		if s.lastGroup == 0 {
			panic("curvenet: group id space exhausted")
		}
		if _, taken := s.groups[s.lastGroup]; !taken {
			return s.lastGroup
		}
	}
}

// Len returns the number of curves.
func (s *Store) Len() int {
	return len(s.curves)
}

// Curve returns a copy of the curve with the given id.
func (s *Store) Curve(id CurveID) (*Curve, bool) {
	c, ok := s.curves[id]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}

// CurveIDs returns all curve ids in ascending order.
func (s *Store) CurveIDs() []CurveID {
	return slices.Sorted(maps.Keys(s.curves))
}

// Curves returns copies of all curves in id order.
func (s *Store) Curves() []*Curve {
	ids := s.CurveIDs()
	out := make([]*Curve, len(ids))
	for i, id := range ids {
		out[i] = s.curves[id].clone()
	}
	return out
}

// Group returns a copy of the group with the given id. The copy answers
// queries on its own.
func (s *Store) Group(gid GroupID) (*Group, bool) {
	g, ok := s.groups[gid]
	if !ok {
		return nil, false
	}
	return g.clone(), true
}

// GroupIDs returns all group ids in ascending order.
func (s *Store) GroupIDs() []GroupID {
	return slices.Sorted(maps.Keys(s.groups))
}

// Groups returns copies of all groups in id order.
func (s *Store) Groups() []*Group {
	ids := s.GroupIDs()
	out := make([]*Group, len(ids))
	for i, gid := range ids {
		out[i] = s.groups[gid].clone()
	}
	return out
}

// GroupOf returns the group containing curve id.
func (s *Store) GroupOf(id CurveID) (GroupID, bool) {
	gid, ok := s.groupOf[id]
	return gid, ok
}

// AddCurve creates a curve and builds its LUT.
func (s *Store) AddCurve(start, controlStart, controlEnd, end curve.Point) CurveID {
	id := s.newCurveID()
	s.insertCurve(id, start, controlStart, controlEnd, end)
	return id
}

func (s *Store) insertCurve(id CurveID, start, controlStart, controlEnd, end curve.Point) {
	c := &Curve{
		ID:           id,
		Start:        start,
		ControlStart: controlStart,
		ControlEnd:   controlEnd,
		End:          end,
	}
	s.curves[id] = c
	s.rebuildLUT(c)
}

// AddLine creates a straight curve with controls at the thirds.
func (s *Store) AddLine(start, end curve.Point) CurveID {
	return s.AddCurve(start, start.Lerp(end, 1.0/3), start.Lerp(end, 2.0/3), end)
}

// SetName sets a curve's label.
func (s *Store) SetName(id CurveID, name string) error {
	c, err := s.curve(id)
	if err != nil {
		return err
	}
	c.Name = name
	return nil
}

// RemoveCurve deletes a curve. Latches on its former partners are cleared,
// pending latches aimed at it are cancelled, and it leaves its group; a
// group left empty is destroyed.
func (s *Store) RemoveCurve(id CurveID) error {
	c, err := s.curve(id)
	if err != nil {
		return err
	}

	touched := []CurveID{}
	for _, e := range [...]AnchorEdge{Start, End} {
		l := c.Latches[e]
		if l == nil {
			continue
		}
		if s.clearReciprocal(c.ID, e, l) {
			touched = append(touched, l.LatchedTo)
		}
		c.Latches[e] = nil
	}
	for _, other := range s.curves {
		if other.Pending != nil && other.Pending.Partner.Curve == id {
			other.Pending = nil
		}
	}

	gid, grouped := s.groupOf[id]
	if grouped {
		g := s.groups[gid]
		g.Members = slices.DeleteFunc(g.Members, func(m CurveID) bool { return m == id })
		delete(s.groupOf, id)
		if len(g.Members) == 0 {
			delete(s.groups, gid)
			s.logger.Debug("group destroyed", "group", gid, "reason", "empty")
			grouped = false
		}
	}
	delete(s.curves, id)

	s.refresh(false, touched...)
	if g := s.groups[gid]; grouped && g != nil {
		s.recompose(g)
	}
	return nil
}

// clearReciprocal removes the partner's copy of latch l when it still points
// back at (id, e). It reports whether the partner was changed.
func (s *Store) clearReciprocal(id CurveID, e AnchorEdge, l *LatchData) bool {
	partner := s.curves[l.LatchedTo]
	if partner == nil {
		s.logger.Warn(ErrDanglingLatch.Error(), "curve", id, "edge", e, "partner", l.Partner(), "reason", "partner missing")
		return false
	}
	back := partner.Latches[l.PartnerEdge]
	if back == nil || back.LatchedTo != id || back.PartnerEdge != e {
		s.logger.Warn(ErrDanglingLatch.Error(), "curve", id, "edge", e, "partner", l.Partner(), "reason", "partner does not point back")
		return false
	}
	partner.Latches[l.PartnerEdge] = nil
	return true
}

// MoveAnchor moves one point of a curve. Moving Start or End carries the
// adjacent control point along; when the edge is latched the partner's
// joined anchor and its control follow, keeping the joint closed.
func (s *Store) MoveAnchor(id CurveID, a Anchor, pos curve.Point) error {
	c, err := s.curve(id)
	if err != nil {
		return err
	}
	e, isEdge := a.Edge()
	if !isEdge {
		c.setPoint(a, pos)
		s.refresh(true, id)
		return nil
	}

	delta := pos.Sub(c.EdgePoint(e))
	moveEdge(c, e, delta)
	changed := []CurveID{id}
	if l := c.Latches[e]; l != nil {
		if p := s.curves[l.LatchedTo]; p != nil && p.Latches[l.PartnerEdge] != nil && p.Latches[l.PartnerEdge].LatchedTo == id {
			moveEdge(p, l.PartnerEdge, pos.Sub(p.EdgePoint(l.PartnerEdge)))
			changed = append(changed, p.ID)
		}
	}
	s.refresh(true, changed...)
	return nil
}

// moveEdge translates edge e and its control point by delta.
func moveEdge(c *Curve, e AnchorEdge, delta curve.Vec2) {
	c.setPoint(edgeAnchor(e), c.EdgePoint(e).Translate(delta))
	ctl := edgeControl(e)
	c.setPoint(ctl, c.Point(ctl).Translate(delta))
}

// SetGeometry replaces all four points of a curve. Latched partners are not moved.
func (s *Store) SetGeometry(id CurveID, start, controlStart, controlEnd, end curve.Point) error {
	c, err := s.curve(id)
	if err != nil {
		return err
	}
	c.Start, c.ControlStart, c.ControlEnd, c.End = start, controlStart, controlEnd, end
	s.refresh(true, id)
	return nil
}

// RebuildLUT recomputes a curve's LUT and recomposes its group.
func (s *Store) RebuildLUT(id CurveID) error {
	if _, err := s.curve(id); err != nil {
		return err
	}
	s.refresh(true, id)
	return nil
}

func (s *Store) rebuildLUT(c *Curve) {
	c.LUT = BuildLUT(c.Bez(), s.cfg.LUTSamples, s.cfg.LUTTolerance, s.cfg.ArclenAccuracy)
}

// refresh rebuilds LUTs (when geometry changed) for ids and recomposes
// every group containing one of them.
func (s *Store) refresh(geometry bool, ids ...CurveID) {
	seen := make(map[GroupID]bool)
	for _, id := range ids {
		c := s.curves[id]
		if c == nil {
			continue
		}
		if geometry {
			s.rebuildLUT(c)
		}
		if gid, ok := s.groupOf[id]; ok && !seen[gid] {
			seen[gid] = true
		}
	}
	for _, gid := range slices.Sorted(maps.Keys(seen)) {
		s.recompose(s.groups[gid])
	}
}

// recompose re-runs chain traversal and composition for g.
func (s *Store) recompose(g *Group) {
	g.eps = s.cfg.QueryEpsilon
	ends, err := FindConnectedEnds(g.Members, s.lookup, s.cfg.ChainSlack, s.logger)
	if err == nil {
		g.Ends = &ends
		g.Chain, g.Total, err = ComposeChain(ends, g.Members, s.lookup, s.cfg.ArclenAccuracy)
	}
	if err == nil {
		err = g.buildStandalone(s.cfg.StandaloneSamples)
	}
	if err != nil {
		if g.Ends != nil || g.Err == nil {
			s.logger.Debug("group invalidated", "group", g.ID, "err", err)
		}
		g.Ends, g.Err = nil, err
		g.Chain, g.Total, g.Standalone = nil, 0, StandaloneLUT{}
		return
	}
	g.Err = nil
}

// NewGroup groups the given curves. The curves must exist, must not belong
// to another group, and must form a chain; otherwise no group is created
// and the traversal error (ErrChainDisconnected, ErrChainBranching) is
// returned.
func (s *Store) NewGroup(ids ...CurveID) (GroupID, error) {
	members, err := s.checkUngrouped(ids)
	if err != nil {
		return 0, err
	}
	if _, err := FindConnectedEnds(members, s.lookup, s.cfg.ChainSlack, s.logger); err != nil {
		return 0, fmt.Errorf("cannot group %v: %w", members, err)
	}
	return s.addGroup(members), nil
}

func (s *Store) checkUngrouped(ids []CurveID) ([]CurveID, error) {
	members := slices.Clone(ids)
	slices.Sort(members)
	members = slices.Compact(members)
	for _, id := range members {
		if _, err := s.curve(id); err != nil {
			return nil, err
		}
		if gid, ok := s.groupOf[id]; ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrAlreadyGrouped, id, gid)
		}
	}
	return members, nil
}

// addGroup creates a group without checking connectivity.
func (s *Store) addGroup(members []CurveID) GroupID {
	return s.addGroupWithID(s.newGroupID(), members)
}

func (s *Store) addGroupWithID(gid GroupID, members []CurveID) GroupID {
	s.lastGroup = max(s.lastGroup, gid)
	g := &Group{ID: gid, Members: members}
	s.groups[g.ID] = g
	for _, id := range members {
		s.groupOf[id] = g.ID
	}
	s.recompose(g)
	return g.ID
}

// Ungroup destroys a group. Its curves are kept.
func (s *Store) Ungroup(gid GroupID) error {
	g, err := s.group(gid)
	if err != nil {
		return err
	}
	for _, id := range g.Members {
		delete(s.groupOf, id)
	}
	delete(s.groups, gid)
	return nil
}

// AddToGroup adds a curve to an existing group. The group is kept even if
// the new membership no longer forms a chain.
func (s *Store) AddToGroup(gid GroupID, id CurveID) error {
	g, err := s.group(gid)
	if err != nil {
		return err
	}
	if _, err := s.checkUngrouped([]CurveID{id}); err != nil {
		return err
	}
	i, _ := slices.BinarySearch(g.Members, id)
	g.Members = slices.Insert(g.Members, i, id)
	s.groupOf[id] = gid
	s.recompose(g)
	return nil
}

// RemoveFromGroup removes a curve from its group. A group left empty is destroyed.
func (s *Store) RemoveFromGroup(gid GroupID, id CurveID) error {
	g, err := s.group(gid)
	if err != nil {
		return err
	}
	if !g.Contains(id) {
		return fmt.Errorf("%w: %s not in %s", ErrCurveNotFound, id, gid)
	}
	g.Members = slices.DeleteFunc(g.Members, func(m CurveID) bool { return m == id })
	delete(s.groupOf, id)
	if len(g.Members) == 0 {
		delete(s.groups, gid)
		return nil
	}
	s.recompose(g)
	return nil
}

// GroupPosition returns the position at t on group gid.
func (s *Store) GroupPosition(gid GroupID, t float64) (curve.Point, error) {
	g, err := s.group(gid)
	if err != nil {
		return curve.Point{}, err
	}
	return g.Position(t)
}

// GroupNormal returns the normal at t on group gid.
func (s *Store) GroupNormal(gid GroupID, t float64) (curve.Vec2, error) {
	g, err := s.group(gid)
	if err != nil {
		return curve.Vec2{}, err
	}
	return g.Normal(t)
}
