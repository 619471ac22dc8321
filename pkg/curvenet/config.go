package curvenet

// Config holds the numeric policy of a Store.
type Config struct {
	// LUTSamples is the number of t-values in every curve LUT (at least 2).
	LUTSamples int
	// LUTTolerance is the bisection bracket width, in curve parameter units,
	// at which a LUT step is accepted.
	LUTTolerance float64
	// ArclenAccuracy is passed to the arc length integration.
	ArclenAccuracy float64
	// StandaloneSamples is the number of positions in a group's standalone LUT.
	StandaloneSamples int
	// QueryEpsilon widens the upper bound of each chain segment.
	QueryEpsilon float64
	// ChainSlack is how many members a chain walk may miss and still be
	// accepted: a walk is accepted when hops+ChainSlack >= len(members).
	ChainSlack int
	// SnapRadius is the distance within which a dragged edge proposes a
	// pending latch.
	SnapRadius float64
}

// DefaultConfig returns the default numeric policy.
func DefaultConfig() Config {
	return Config{
		LUTSamples:        100,
		LUTTolerance:      1e-4,
		ArclenAccuracy:    1e-6,
		StandaloneSamples: 128,
		QueryEpsilon:      1e-6,
		ChainSlack:        2,
		SnapRadius:        8,
	}
}

// normalized replaces out-of-range fields with defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.LUTSamples < 2 {
		c.LUTSamples = d.LUTSamples
	}
	if !(c.LUTTolerance > 0) {
		c.LUTTolerance = d.LUTTolerance
	}
	if !(c.ArclenAccuracy > 0) {
		c.ArclenAccuracy = d.ArclenAccuracy
	}
	if c.StandaloneSamples < 2 {
		c.StandaloneSamples = d.StandaloneSamples
	}
	if !(c.QueryEpsilon >= 0) {
		c.QueryEpsilon = d.QueryEpsilon
	}
	if c.ChainSlack < 0 {
		c.ChainSlack = 0
	}
	if !(c.SnapRadius >= 0) {
		c.SnapRadius = d.SnapRadius
	}
	return c
}
