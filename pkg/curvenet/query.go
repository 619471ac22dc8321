// Position and normal queries against a group's composed chain.

package curvenet

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// Locate finds the chain segment covering t and returns its index and the
// Bézier parameter on that segment's curve.
//
// Segments are searched in order; bounds are inclusive and the upper bound
// is widened by the query epsilon. A t outside every segment is an
// ErrStaleQuery. It is never clamped.
func (g *Group) Locate(t float64) (int, float64, error) {
	if g.Ends == nil {
		if g.Err != nil {
			return 0, 0, fmt.Errorf("%w: %s has no chain: %w", ErrStaleQuery, g.ID, g.Err)
		}
		return 0, 0, fmt.Errorf("%w: %s has no chain", ErrStaleQuery, g.ID)
	}
	if math.IsNaN(t) {
		return 0, 0, fmt.Errorf("%w: t is NaN", ErrStaleQuery)
	}
	for i, s := range g.Chain {
		if t < s.TMin || t > s.TMax+g.eps {
			continue
		}
		u := 0.0
		if w := s.TMax - s.TMin; w > 0 {
			u = min((t-s.TMin)/w, 1)
		}
		if s.Reversed() {
			u = 1 - u
		}
		return i, lutAt(s.LUT, u), nil
	}
	return 0, 0, fmt.Errorf("%w: t=%g not covered by %s", ErrStaleQuery, t, g.ID)
}

// Position returns the point at group parameter t.
func (g *Group) Position(t float64) (curve.Point, error) {
	i, bt, err := g.Locate(t)
	if err != nil {
		return curve.Point{}, err
	}
	return g.Chain[i].Bez.Eval(bt), nil
}

// Tangent returns the unit tangent at t, pointing in traversal direction.
// It is the zero vector on a degenerate curve.
func (g *Group) Tangent(t float64) (curve.Vec2, error) {
	i, bt, err := g.Locate(t)
	if err != nil {
		return curve.Vec2{}, err
	}
	s := g.Chain[i]
	d := nativeTangent(s.Bez, bt)
	if s.Reversed() {
		d = d.Mul(-1)
	}
	return d, nil
}

// Normal returns the unit normal at t: the left perpendicular of the
// traversal direction. Segments traversed against their native direction
// have their native normal negated, so the left side of the path stays on
// the left across curve boundaries.
func (g *Group) Normal(t float64) (curve.Vec2, error) {
	i, bt, err := g.Locate(t)
	if err != nil {
		return curve.Vec2{}, err
	}
	s := g.Chain[i]
	d := nativeTangent(s.Bez, bt)
	n := curve.Vec2{X: -d.Y, Y: d.X}
	if s.Reversed() {
		n = n.Mul(-1)
	}
	return n, nil
}

// Offset returns the point at t displaced by dist along the normal.
func (g *Group) Offset(t, dist float64) (curve.Point, error) {
	p, err := g.Position(t)
	if err != nil {
		return curve.Point{}, err
	}
	n, err := g.Normal(t)
	if err != nil {
		return curve.Point{}, err
	}
	return p.Translate(n.Mul(dist)), nil
}

// nativeTangent is the unit derivative of bez at t. Where the derivative
// vanishes it falls back to the nearest non-degenerate control polygon leg.
func nativeTangent(bez curve.CubicBez, t float64) curve.Vec2 {
	d := curve.Vec2(bez.Differentiate().Eval(t))
	if h := d.Hypot(); h > 1e-12 {
		return d.Mul(1 / h)
	}
	legs := [...]curve.Vec2{bez.P1.Sub(bez.P0), bez.P2.Sub(bez.P0), bez.P3.Sub(bez.P0)}
	if t >= 0.5 {
		legs = [...]curve.Vec2{bez.P3.Sub(bez.P2), bez.P3.Sub(bez.P1), bez.P3.Sub(bez.P0)}
	}
	for _, l := range legs {
		if h := l.Hypot(); h > 1e-12 {
			return l.Mul(1 / h)
		}
	}
	return curve.Vec2{}
}
