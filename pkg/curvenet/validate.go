package curvenet

import (
	"errors"
	"fmt"
	"math"
)

// boundaryTolerance bounds how far the first TMin and last TMax may drift
// from 0 and 1.
const boundaryTolerance = 1e-9

// Validate checks the store for broken invariants: asymmetric latches,
// malformed LUTs, group membership bookkeeping and chain partitions. All
// problems found are joined into the returned error.
func (s *Store) Validate() error {
	var errs []error

	for _, id := range s.CurveIDs() {
		c := s.curves[id]
		for _, e := range [...]AnchorEdge{Start, End} {
			l := c.Latches[e]
			if l == nil {
				continue
			}
			if l.SelfEdge != e {
				errs = append(errs, fmt.Errorf("%s:%s: latch records self edge %s", id, e, l.SelfEdge))
			}
			p := s.curves[l.LatchedTo]
			if p == nil {
				errs = append(errs, fmt.Errorf("%w: %s:%s -> missing %s", ErrDanglingLatch, id, e, l.LatchedTo))
				continue
			}
			back := p.Latches[l.PartnerEdge]
			if back == nil || back.LatchedTo != id || back.PartnerEdge != e {
				errs = append(errs, fmt.Errorf("%w: %s:%s -> %s does not point back", ErrDanglingLatch, id, e, l.Partner()))
			}
		}
		if err := checkLUT(c.LUT); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}

	for _, gid := range s.GroupIDs() {
		g := s.groups[gid]
		if len(g.Members) == 0 {
			errs = append(errs, fmt.Errorf("%s: empty group", gid))
		}
		for _, id := range g.Members {
			if _, ok := s.curves[id]; !ok {
				errs = append(errs, fmt.Errorf("%s: member %w: %s", gid, ErrCurveNotFound, id))
			}
			if s.groupOf[id] != gid {
				errs = append(errs, fmt.Errorf("%s: member %s is registered to %s", gid, id, s.groupOf[id]))
			}
		}
		if g.Connected() {
			if err := CheckPartition(g.Chain); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", gid, err))
			}
		}
	}
	for id, gid := range s.groupOf {
		if g, ok := s.groups[gid]; !ok || !g.Contains(id) {
			errs = append(errs, fmt.Errorf("%s registered to %s but not a member", id, gid))
		}
	}
	return errors.Join(errs...)
}

func checkLUT(lut []float64) error {
	if len(lut) < 2 {
		return fmt.Errorf("LUT has %d samples", len(lut))
	}
	if lut[0] != 0 || lut[len(lut)-1] != 1 {
		return fmt.Errorf("LUT spans [%g, %g]", lut[0], lut[len(lut)-1])
	}
	for i := 1; i < len(lut); i++ {
		if lut[i] < lut[i-1] {
			return fmt.Errorf("LUT decreases at %d", i)
		}
	}
	return nil
}

// CheckPartition verifies that chain segments partition [0, 1] without
// gaps or overlaps.
func CheckPartition(chain []ChainSegment) error {
	if len(chain) == 0 {
		return errors.New("empty chain")
	}
	if math.Abs(chain[0].TMin) > boundaryTolerance {
		return fmt.Errorf("chain starts at %g", chain[0].TMin)
	}
	if last := chain[len(chain)-1].TMax; math.Abs(last-1) > boundaryTolerance {
		return fmt.Errorf("chain ends at %g", last)
	}
	for i := 1; i < len(chain); i++ {
		if chain[i].TMin != chain[i-1].TMax {
			return fmt.Errorf("gap between segment %d (%g) and %d (%g)", i-1, chain[i-1].TMax, i, chain[i].TMin)
		}
		if chain[i].TMax < chain[i].TMin {
			return fmt.Errorf("segment %d is inverted", i)
		}
	}
	return nil
}
