package curvefile

import (
	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"honnef.co/go/curve"
)

// Bounds returns the box around every curve of the store, control points
// included. ok is false for an empty store.
func Bounds(s *curvenet.Store) (r curve.Rect, ok bool) {
	for _, c := range s.Curves() {
		b := c.Bez().BoundingBox()
		b = b.UnionPoint(c.ControlStart).UnionPoint(c.ControlEnd)
		if !ok {
			r, ok = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, ok
}

// Viewport maps network coordinates onto a canvas of a given size,
// preserving aspect ratio and centring the content.
type Viewport struct {
	Scale float64
	aff   curve.Affine
}

// FitViewport fits bounds into a width x height canvas, leaving padding on
// every side. A degenerate box is centred at scale 1.
func FitViewport(bounds curve.Rect, width, height, padding float64) Viewport {
	bw, bh := bounds.Width(), bounds.Height()
	aw, ah := max(width-2*padding, 1), max(height-2*padding, 1)

	scale := 1.0
	switch {
	case bw > 0 && bh > 0:
		scale = min(aw/bw, ah/bh)
	case bw > 0:
		scale = aw / bw
	case bh > 0:
		scale = ah / bh
	}

	centre := curve.Vec2(bounds.Center())
	aff := curve.Translate(centre.Mul(-1)).
		ThenScale(scale, scale).
		ThenTranslate(curve.Vec2{X: width / 2, Y: height / 2})
	return Viewport{Scale: scale, aff: aff}
}

// Apply maps a network point to canvas coordinates.
func (v Viewport) Apply(p curve.Point) curve.Point {
	return p.Transform(v.aff)
}

// Affine returns the network-to-canvas transform.
func (v Viewport) Affine() curve.Affine {
	return v.aff
}

// curveLabel is the text shown for a curve.
func curveLabel(c *curvenet.Curve) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID.String()
}
