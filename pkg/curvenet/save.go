package curvenet

import (
	"fmt"
	"slices"

	"honnef.co/go/curve"
)

// LatchSave is a persisted latch. To references the partner's external id.
type LatchSave struct {
	Edge   AnchorEdge
	To     uint64
	ToEdge AnchorEdge
}

// CurveSave is a persisted curve. ID is an external identifier, distinct
// from the CurveID the curve receives when loaded.
type CurveSave struct {
	ID           uint64
	Name         string
	Start        curve.Point
	ControlStart curve.Point
	ControlEnd   curve.Point
	End          curve.Point
	Latches      []LatchSave
}

// MemberSave is one group member with its chain interval and LUT.
type MemberSave struct {
	Curve      CurveSave
	Edge       AnchorEdge
	TMin, TMax float64
	LUT        []float64
}

// GroupSave is a persisted group. Members are in traversal order when the
// group was connected at save time.
type GroupSave struct {
	Members    []MemberSave
	Standalone StandaloneLUT
}

// NetworkSave is a persisted store: every curve plus group membership
// lists of external ids.
type NetworkSave struct {
	Curves []CurveSave
	Groups [][]uint64
	// GroupIDs parallels Groups. It may be empty in older saves.
	GroupIDs []uint64
	// LastCurve and LastGroup are the highest ids the store ever issued,
	// including removed ones. Zero when unknown.
	LastCurve, LastGroup uint64
}

func saveCurve(c *Curve) CurveSave {
	cs := CurveSave{
		ID:           uint64(c.ID),
		Name:         c.Name,
		Start:        c.Start,
		ControlStart: c.ControlStart,
		ControlEnd:   c.ControlEnd,
		End:          c.End,
	}
	for _, l := range c.Latches {
		if l != nil {
			cs.Latches = append(cs.Latches, LatchSave{Edge: l.SelfEdge, To: uint64(l.LatchedTo), ToEdge: l.PartnerEdge})
		}
	}
	return cs
}

// ExportGroup captures group gid. Members on the chain come first in
// traversal order; members the chain does not reach follow with empty
// intervals.
func (s *Store) ExportGroup(gid GroupID) (GroupSave, error) {
	g, err := s.group(gid)
	if err != nil {
		return GroupSave{}, err
	}
	var save GroupSave
	onChain := make(map[CurveID]bool, len(g.Chain))
	for _, seg := range g.Chain {
		onChain[seg.Curve] = true
		save.Members = append(save.Members, MemberSave{
			Curve: saveCurve(s.curves[seg.Curve]),
			Edge:  seg.Edge,
			TMin:  seg.TMin,
			TMax:  seg.TMax,
			LUT:   slices.Clone(seg.LUT),
		})
	}
	for _, id := range g.Members {
		if onChain[id] {
			continue
		}
		c := s.curves[id]
		save.Members = append(save.Members, MemberSave{Curve: saveCurve(c), LUT: slices.Clone(c.LUT)})
	}
	save.Standalone = StandaloneLUT{
		PathLength: g.Standalone.PathLength,
		Samples:    slices.Clone(g.Standalone.Samples),
	}
	return save, nil
}

// ImportGroup loads a saved group into the store under fresh ids. Latches
// are remapped to the new ids; latches to curves outside the save, or
// without a matching entry on the partner, are dropped with a warning.
// LUTs and the chain are recomputed; serialized LUTs are ignored.
//
// The returned map translates external ids to the new CurveIDs.
func (s *Store) ImportGroup(save GroupSave) (GroupID, map[uint64]CurveID, error) {
	curves := make([]CurveSave, len(save.Members))
	for i, m := range save.Members {
		curves[i] = m.Curve
	}
	if len(curves) == 0 {
		return 0, nil, fmt.Errorf("%w: saved group has no members", ErrChainDisconnected)
	}
	remap, err := s.importCurves(curves, false)
	if err != nil {
		return 0, nil, err
	}
	ids := make([]CurveID, 0, len(remap))
	for _, id := range remap {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	gid := s.addGroup(ids)
	if g := s.groups[gid]; !g.Connected() {
		s.logger.Warn("imported group does not form a chain", "group", gid, "err", g.Err)
	}
	return gid, remap, nil
}

// ExportNetwork captures every curve and group.
func (s *Store) ExportNetwork() NetworkSave {
	save := NetworkSave{LastCurve: uint64(s.lastCurve), LastGroup: uint64(s.lastGroup)}
	for _, id := range s.CurveIDs() {
		save.Curves = append(save.Curves, saveCurve(s.curves[id]))
	}
	for _, gid := range s.GroupIDs() {
		members := make([]uint64, len(s.groups[gid].Members))
		for i, id := range s.groups[gid].Members {
			members[i] = uint64(id)
		}
		save.Groups = append(save.Groups, members)
		save.GroupIDs = append(save.GroupIDs, uint64(gid))
	}
	return save
}

// ImportNetwork loads a saved network. Groups are restored as saved, even
// when they no longer form a chain. The save is checked before anything is
// added to the store.
//
// With keepIDs, curves and groups take their saved ids and the store's id
// counters move past them, so a network reloaded from disk keeps the ids it
// was saved with. Groups without a saved id still get fresh ones. Without
// keepIDs every curve and group gets a fresh id.
func (s *Store) ImportNetwork(save NetworkSave, keepIDs bool) (map[uint64]CurveID, error) {
	known := make(map[uint64]bool, len(save.Curves))
	for _, cs := range save.Curves {
		known[cs.ID] = true
	}
	grouped := make(map[uint64]bool)
	for i, members := range save.Groups {
		if len(members) == 0 {
			return nil, fmt.Errorf("group %d is empty", i)
		}
		for _, ext := range members {
			if !known[ext] {
				return nil, fmt.Errorf("group %d: %w: external id %d", i, ErrCurveNotFound, ext)
			}
			if grouped[ext] {
				return nil, fmt.Errorf("group %d: %w: external id %d", i, ErrAlreadyGrouped, ext)
			}
			grouped[ext] = true
		}
	}
	if keepIDs {
		if err := s.checkKeptIDs(save); err != nil {
			return nil, err
		}
	}

	remap, err := s.importCurves(save.Curves, keepIDs)
	if err != nil {
		return nil, err
	}
	if keepIDs {
		s.lastCurve = max(s.lastCurve, CurveID(save.LastCurve))
		s.lastGroup = max(s.lastGroup, GroupID(save.LastGroup))
	}
	// Groups keeping their ids go first so fresh ids cannot take them.
	var fresh [][]CurveID
	for i, members := range save.Groups {
		ids := make([]CurveID, len(members))
		for j, ext := range members {
			ids[j] = remap[ext]
		}
		slices.Sort(ids)
		ids = slices.Compact(ids)
		if keepIDs && i < len(save.GroupIDs) && save.GroupIDs[i] != 0 {
			s.addGroupWithID(GroupID(save.GroupIDs[i]), ids)
			continue
		}
		fresh = append(fresh, ids)
	}
	for _, ids := range fresh {
		s.addGroup(ids)
	}
	return remap, nil
}

// checkKeptIDs rejects saved ids the store cannot take as they are.
func (s *Store) checkKeptIDs(save NetworkSave) error {
	for _, cs := range save.Curves {
		if cs.ID == 0 {
			return fmt.Errorf("curve id 0 is not valid")
		}
		if _, taken := s.curves[CurveID(cs.ID)]; taken {
			return fmt.Errorf("curve id %d already in use", cs.ID)
		}
	}
	seen := make(map[uint64]bool, len(save.GroupIDs))
	for _, gid := range save.GroupIDs {
		if gid == 0 {
			continue
		}
		if _, taken := s.groups[GroupID(gid)]; taken || seen[gid] {
			return fmt.Errorf("group id %d already in use", gid)
		}
		seen[gid] = true
	}
	return nil
}

func (s *Store) importCurves(curves []CurveSave, keepIDs bool) (map[uint64]CurveID, error) {
	byExt := make(map[uint64]*CurveSave, len(curves))
	for i := range curves {
		cs := &curves[i]
		if _, dup := byExt[cs.ID]; dup {
			return nil, fmt.Errorf("duplicate external curve id %d", cs.ID)
		}
		byExt[cs.ID] = cs
	}

	remap := make(map[uint64]CurveID, len(curves))
	for _, cs := range curves {
		var id CurveID
		if keepIDs {
			id = CurveID(cs.ID)
			s.insertCurve(id, cs.Start, cs.ControlStart, cs.ControlEnd, cs.End)
			s.lastCurve = max(s.lastCurve, id)
		} else {
			id = s.AddCurve(cs.Start, cs.ControlStart, cs.ControlEnd, cs.End)
		}
		s.curves[id].Name = cs.Name
		remap[cs.ID] = id
	}

	for _, cs := range curves {
		c := s.curves[remap[cs.ID]]
		for _, ls := range cs.Latches {
			partner, ok := byExt[ls.To]
			if !ok {
				s.logger.Warn("dropping latch to curve outside save", "curve", c.ID, "edge", ls.Edge, "external", ls.To)
				continue
			}
			if !reciprocated(partner, cs.ID, ls) {
				s.logger.Warn(ErrDanglingLatch.Error(), "curve", c.ID, "edge", ls.Edge, "external", ls.To, "reason", "not reciprocated in save")
				continue
			}
			if c.Latches[ls.Edge] != nil {
				s.logger.Warn("dropping duplicate latch", "curve", c.ID, "edge", ls.Edge)
				continue
			}
			c.Latches[ls.Edge] = &LatchData{LatchedTo: remap[ls.To], SelfEdge: ls.Edge, PartnerEdge: ls.ToEdge}
		}
	}
	return remap, nil
}

func reciprocated(partner *CurveSave, self uint64, ls LatchSave) bool {
	if partner.ID == self {
		return false
	}
	for _, back := range partner.Latches {
		if back.Edge == ls.ToEdge && back.To == self && back.ToEdge == ls.Edge {
			return true
		}
	}
	return false
}
