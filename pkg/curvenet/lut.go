// Arc-length look-up tables for single curves.
// A LUT maps evenly spaced arc length steps to Bézier parameter values.

package curvenet

import "honnef.co/go/curve"

// minCurveLength is the arc length below which a curve is treated as a point.
const minCurveLength = 1e-9

// BuildLUT walks bez at even arc length steps and returns samples t-values,
// the first 0 and the last 1. Consecutive values are approximately
// length/(samples-1) apart in arc length.
//
// Each step bisects the parameter interval from the previous sample until
// the bracket is narrower than tolerance. Degenerate curves yield [0, 1].
func BuildLUT(bez curve.CubicBez, samples int, tolerance, accuracy float64) []float64 {
	if samples < 2 {
		samples = 2
	}
	if !(tolerance > 0) {
		tolerance = DefaultConfig().LUTTolerance
	}
	if !(accuracy > 0) {
		accuracy = DefaultConfig().ArclenAccuracy
	}

	total := safeArclen(bez, accuracy)
	if total < minCurveLength {
		return []float64{0, 1}
	}

	step := total / float64(samples-1)
	lut := make([]float64, 0, samples)
	lut = append(lut, 0)

	t := 0.0
	for i := 1; i < samples-1; i++ {
		t = walkArclen(bez, t, step, tolerance, accuracy)
		lut = append(lut, t)
	}
	return append(lut, 1)
}

// walkArclen returns the parameter reached by walking dist along bez from t0.
func walkArclen(bez curve.CubicBez, t0, dist, tolerance, accuracy float64) float64 {
	if t0 >= 1 {
		return 1
	}
	lo, hi := t0, 1.0
	if safeArclen(bez.Subsegment(t0, hi), accuracy) <= dist {
		return 1
	}
	for hi-lo > tolerance {
		mid := 0.5 * (lo + hi)
		if safeArclen(bez.Subsegment(t0, mid), accuracy) < dist {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// lutAt interpolates lut at u in [0, 1].
func lutAt(lut []float64, u float64) float64 {
	switch len(lut) {
	case 0:
		return u
	case 1:
		return lut[0]
	}
	if u <= 0 {
		return lut[0]
	}
	last := len(lut) - 1
	if u >= 1 {
		return lut[last]
	}
	f := u * float64(last)
	i := int(f)
	if i >= last {
		return lut[last]
	}
	frac := f - float64(i)
	return lut[i] + (lut[i+1]-lut[i])*frac
}
