// Smooth chains through waypoints.

package curvenet

import (
	"errors"
	"fmt"

	"honnef.co/go/curve"
)

var errTooFewPoints = errors.New("too few spline points")

// SplineSegments converts the Catmull-Rom spline through points into cubic
// Béziers, one per span. An open spline repeats its end points as their own
// neighbours; a closed spline wraps around and gains a span from the last
// point back to the first.
func SplineSegments(points []curve.Point, closed bool) []curve.CubicBez {
	n := len(points)
	if n < 2 {
		return nil
	}
	at := func(i int) curve.Point {
		if closed {
			return points[(i%n+n)%n]
		}
		return points[min(max(i, 0), n-1)]
	}

	spans := n - 1
	if closed {
		spans = n
	}
	out := make([]curve.CubicBez, spans)
	for i := range spans {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		// The conversion uses 1/6 of the tangent vectors.
		out[i] = curve.CubicBez{
			P0: p1,
			P1: p1.Translate(p2.Sub(p0).Mul(1.0 / 6)),
			P2: p2.Translate(p3.Sub(p1).Mul(-1.0 / 6)),
			P3: p2,
		}
	}
	return out
}

// AddSpline adds a smooth chain through points: one curve per span, each
// latched end to start onto the next. A closed spline also latches the last
// curve back to the first. The curves are returned in traversal order.
func (s *Store) AddSpline(points []curve.Point, closed bool) ([]CurveID, error) {
	need := 2
	if closed {
		need = 3
	}
	if len(points) < need {
		return nil, fmt.Errorf("%w: %d, need %d", errTooFewPoints, len(points), need)
	}

	segs := SplineSegments(points, closed)
	ids := make([]CurveID, len(segs))
	for i, b := range segs {
		ids[i] = s.AddCurve(b.P0, b.P1, b.P2, b.P3)
	}
	for i := 1; i < len(ids); i++ {
		if err := s.Latch(ids[i-1], End, ids[i], Start); err != nil {
			return ids, err
		}
	}
	if closed {
		if err := s.Latch(ids[len(ids)-1], End, ids[0], Start); err != nil {
			return ids, err
		}
	}
	s.logger.Debug("added spline", "curves", len(ids), "closed", closed)
	return ids, nil
}
