// Group composition: per-curve LUTs joined into one normalized parameter space.

package curvenet

import (
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"honnef.co/go/curve"
)

// ChainSegment is one member curve in traversal order.
type ChainSegment struct {
	Curve CurveID
	// Edge is the edge the traversal enters the curve through. Entering
	// through End reverses the curve's native parameter direction.
	Edge AnchorEdge
	// TMin and TMax bound the segment in the group's parameter space.
	TMin, TMax float64
	// LUT is the curve's own LUT in native order.
	LUT    []float64
	Length float64
	Bez    curve.CubicBez
}

// Reversed reports whether traversal runs against the curve's native direction.
func (s ChainSegment) Reversed() bool {
	return s.Edge == End
}

// Sample is one standalone LUT position.
type Sample struct {
	X, Y float32
}

// StandaloneLUT is a group flattened to positions at uniform steps of the
// group parameter, independent of curve boundaries.
type StandaloneLUT struct {
	PathLength float32
	Samples    []Sample
}

// At interpolates the samples at t in [0, 1]; t is clamped.
func (l StandaloneLUT) At(t float32) Sample {
	switch len(l.Samples) {
	case 0:
		return Sample{}
	case 1:
		return l.Samples[0]
	}
	last := len(l.Samples) - 1
	if !(t > 0) {
		return l.Samples[0]
	}
	if t >= 1 {
		return l.Samples[last]
	}
	f := t * float32(last)
	i := int(math32.Floor(f))
	if i >= last {
		return l.Samples[last]
	}
	frac := f - float32(i)
	a, b := l.Samples[i], l.Samples[i+1]
	return Sample{X: a.X + (b.X-a.X)*frac, Y: a.Y + (b.Y-a.Y)*frac}
}

// PolylineLength is the length of the sampled polyline. It approaches
// PathLength as the sample count grows.
func (l StandaloneLUT) PolylineLength() float32 {
	var total float32
	for i := 1; i < len(l.Samples); i++ {
		a, b := l.Samples[i-1], l.Samples[i]
		total += math32.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return total
}

// Group is a chain of latched curves addressed by one parameter t in [0, 1].
type Group struct {
	ID GroupID
	// Members is sorted and free of duplicates.
	Members []CurveID

	// Ends is nil when the members do not form a chain; Err then holds the reason.
	Ends *Ends
	Err  error

	Chain      []ChainSegment
	Total      float64
	Standalone StandaloneLUT

	// eps widens segment upper bounds in queries.
	eps float64
}

// Connected reports whether the group currently resolves to a chain.
func (g *Group) Connected() bool {
	return g.Ends != nil
}

// Closed reports whether the group is a ring.
func (g *Group) Closed() bool {
	return g.Ends != nil && g.Ends.Closed()
}

// Contains reports whether id is a member.
func (g *Group) Contains(id CurveID) bool {
	_, ok := slices.BinarySearch(g.Members, id)
	return ok
}

func (g *Group) clone() *Group {
	cp := *g
	cp.Members = slices.Clone(g.Members)
	if g.Ends != nil {
		e := *g.Ends
		cp.Ends = &e
	}
	cp.Chain = make([]ChainSegment, len(g.Chain))
	for i, s := range g.Chain {
		s.LUT = slices.Clone(s.LUT)
		cp.Chain[i] = s
	}
	cp.Standalone.Samples = slices.Clone(g.Standalone.Samples)
	return &cp
}

// ComposeChain walks the chain from ends[0] to ends[1] (or around a ring)
// and partitions [0, 1] among the curves in proportion to their arc lengths.
// The first TMin is exactly 0, the last TMax exactly 1, and each TMax equals
// the next TMin.
func ComposeChain(ends Ends, members []CurveID, lookup Lookup, accuracy float64) ([]ChainSegment, float64, error) {
	w := newWalker(members, lookup, nil)
	first := lookup(ends[0].Curve)
	if first == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrCurveNotFound, ends[0].Curve)
	}

	var chain []ChainSegment
	cur, entry := first, ends[0].Edge
	for {
		if len(chain) > len(w.members) {
			return nil, 0, fmt.Errorf("%w: chain from %s revisits curves", ErrChainBranching, ends[0])
		}
		chain = append(chain, ChainSegment{
			Curve:  cur.ID,
			Edge:   entry,
			LUT:    slices.Clone(cur.LUT),
			Length: cur.Length(accuracy),
			Bez:    cur.Bez(),
		})

		exit := EdgeRef{Curve: cur.ID, Edge: entry.Opposite()}
		if !ends.Closed() && exit == ends[1] {
			break
		}
		next, ok, err := w.follow(cur, exit.Edge)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			if ends.Closed() {
				return nil, 0, fmt.Errorf("%w: ring broken at %s", ErrChainDisconnected, exit)
			}
			return nil, 0, fmt.Errorf("%w: chain ends at %s before %s", ErrChainDisconnected, exit, ends[1])
		}
		if ends.Closed() && next.Curve == first.ID {
			break
		}
		cur = lookup(next.Curve)
		entry = next.Edge
	}

	total := 0.0
	for _, s := range chain {
		total += s.Length
	}
	assignIntervals(chain, total)
	return chain, total, nil
}

// assignIntervals sets TMin/TMax from cumulative lengths. When the total
// length is zero the interval is split evenly.
func assignIntervals(chain []ChainSegment, total float64) {
	n := len(chain)
	acc, t := 0.0, 0.0
	for i := range chain {
		chain[i].TMin = t
		acc += chain[i].Length
		switch {
		case i == n-1:
			t = 1
		case total < minCurveLength:
			t = float64(i+1) / float64(n)
		default:
			t = min(acc/total, 1)
		}
		chain[i].TMax = t
	}
}

// buildStandalone samples the group at count uniform parameter steps.
func (g *Group) buildStandalone(count int) error {
	samples := make([]Sample, count)
	for i := range samples {
		t := float64(i) / float64(count-1)
		p, err := g.Position(t)
		if err != nil {
			return err
		}
		samples[i] = Sample{X: float32(p.X), Y: float32(p.Y)}
	}
	g.Standalone = StandaloneLUT{PathLength: float32(g.Total), Samples: samples}
	return nil
}
