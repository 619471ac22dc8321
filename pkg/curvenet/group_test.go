package curvenet

import (
	"errors"
	"math"
	"testing"

	"honnef.co/go/curve"
)

func mustGroup(t *testing.T, s *Store, ids ...CurveID) *Group {
	t.Helper()
	gid, err := s.NewGroup(ids...)
	if err != nil {
		t.Fatalf("NewGroup(%v): %v", ids, err)
	}
	g, _ := s.Group(gid)
	return g
}

func TestGroupTwoLines(t *testing.T) {
	s, a, b := twoLines(t)
	g := mustGroup(t, s, a, b)

	if len(g.Chain) != 2 {
		t.Fatalf("Expected 2 chain segments, got %d", len(g.Chain))
	}
	if g.Chain[0].Curve != a || g.Chain[1].Curve != b {
		t.Errorf("Expected traversal order [%s %s], got [%s %s]", a, b, g.Chain[0].Curve, g.Chain[1].Curve)
	}
	if g.Chain[0].TMin != 0 || !approx(g.Chain[0].TMax, 0.5, 1e-9) {
		t.Errorf("A interval: got [%g, %g], want [0, 0.5]", g.Chain[0].TMin, g.Chain[0].TMax)
	}
	if !approx(g.Chain[1].TMin, 0.5, 1e-9) || g.Chain[1].TMax != 1 {
		t.Errorf("B interval: got [%g, %g], want [0.5, 1]", g.Chain[1].TMin, g.Chain[1].TMax)
	}

	p, err := g.Position(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !near(p, curve.Pt(10, 0), 1e-6) {
		t.Errorf("Position(0.5) = %v, want (10, 0)", p)
	}
	if !approx(g.Total, 20, 1e-6) {
		t.Errorf("Total = %g, want 20", g.Total)
	}
}

func TestGroupIntervalsProportional(t *testing.T) {
	s, ids := mixedChain(t)
	g := mustGroup(t, s, ids...)

	// Lengths are 10, 15, 20 and 25.
	want := []float64{0, 10.0 / 70, 25.0 / 70, 45.0 / 70, 1}
	for i, seg := range g.Chain {
		if !approx(seg.TMin, want[i], 1e-9) || !approx(seg.TMax, want[i+1], 1e-9) {
			t.Errorf("segment %d: got [%g, %g], want [%g, %g]", i, seg.TMin, seg.TMax, want[i], want[i+1])
		}
	}
}

func TestGroupBoundaryExact(t *testing.T) {
	s, ids := mixedChain(t)
	g := mustGroup(t, s, ids...)

	if err := CheckPartition(g.Chain); err != nil {
		t.Fatal(err)
	}
	if g.Chain[0].TMin != 0 {
		t.Errorf("first TMin = %g, want exactly 0", g.Chain[0].TMin)
	}
	if g.Chain[len(g.Chain)-1].TMax != 1 {
		t.Errorf("last TMax = %g, want exactly 1", g.Chain[len(g.Chain)-1].TMax)
	}
	for i := 1; i < len(g.Chain); i++ {
		if g.Chain[i-1].TMax != g.Chain[i].TMin {
			t.Errorf("segments %d and %d do not touch: %g != %g", i-1, i, g.Chain[i-1].TMax, g.Chain[i].TMin)
		}
	}
}

func TestGroupContinuity(t *testing.T) {
	s := quietStore()
	a := s.AddCurve(curve.Pt(0, 0), curve.Pt(0, 10), curve.Pt(20, 10), curve.Pt(20, 0))
	b := s.AddCurve(curve.Pt(50, -5), curve.Pt(40, -20), curve.Pt(30, 5), curve.Pt(20, 0))
	c := s.AddCurve(curve.Pt(50, -5), curve.Pt(60, 10), curve.Pt(70, 10), curve.Pt(80, 0))
	mustLatch(t, s, a, End, b, End)
	mustLatch(t, s, b, Start, c, Start)
	g := mustGroup(t, s, a, b, c)

	for i := 0; i+1 < len(g.Chain); i++ {
		for _, eps := range []float64{1e-3, 1e-5, 1e-7} {
			before, err := g.Position(g.Chain[i].TMax - eps)
			if err != nil {
				t.Fatal(err)
			}
			after, err := g.Position(g.Chain[i+1].TMin + eps)
			if err != nil {
				t.Fatal(err)
			}
			// Both sides move at most eps*Total along the path.
			if d := before.Distance(after); d > 2*eps*g.Total+1e-9 {
				t.Errorf("boundary %d, eps %g: gap %g between %v and %v", i, eps, d, before, after)
			}
		}
	}
}

func TestGroupReversedNormal(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(10, 0))
	b := s.AddLine(curve.Pt(20, 0), curve.Pt(10, 0))
	mustLatch(t, s, a, End, b, End)
	g := mustGroup(t, s, a, b)

	if !g.Chain[1].Reversed() {
		t.Fatal("b should be traversed against its native direction")
	}

	p, err := g.Position(0.9)
	if err != nil {
		t.Fatal(err)
	}
	if !near(p, curve.Pt(18, 0), 1e-3) {
		t.Errorf("Position(0.9) = %v, want (18, 0)", p)
	}

	for _, tt := range []float64{0.1, 0.25, 0.75, 0.9} {
		n, err := g.Normal(tt)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(n.X, 0, 1e-9) || !approx(n.Y, 1, 1e-9) {
			t.Errorf("Normal(%g) = %v, want (0, 1)", tt, n)
		}
		tan, err := g.Tangent(tt)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(tan.X, 1, 1e-9) || !approx(tan.Y, 0, 1e-9) {
			t.Errorf("Tangent(%g) = %v, want (1, 0)", tt, tan)
		}
	}

	o, err := g.Offset(0.75, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !near(o, curve.Pt(15, 2), 1e-3) {
		t.Errorf("Offset(0.75, 2) = %v, want (15, 2)", o)
	}
}

func TestGroupTriangle(t *testing.T) {
	s, ids := triangle(t)
	g := mustGroup(t, s, ids...)

	if !g.Closed() {
		t.Fatalf("Expected ring, got ends %v", g.Ends)
	}
	if len(g.Chain) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(g.Chain))
	}
	sum := 0.0
	for _, id := range ids {
		c, _ := s.Curve(id)
		sum += c.Length(s.Config().ArclenAccuracy)
	}
	if !approx(g.Total, sum, 1e-9) || !approx(g.Total, 120, 1e-6) {
		t.Errorf("Total = %g, want %g (120)", g.Total, sum)
	}

	p0, _ := g.Position(0)
	p1, _ := g.Position(1)
	if !near(p0, p1, 1e-9) {
		t.Errorf("Ring should close: Position(0) = %v, Position(1) = %v", p0, p1)
	}
}

func TestGroupUnlatchInvalidates(t *testing.T) {
	s, a, b := twoLines(t)
	gid, err := s.NewGroup(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Unlatch(a, End); err != nil {
		t.Fatal(err)
	}

	g, ok := s.Group(gid)
	if !ok {
		t.Fatal("group should survive unlatching")
	}
	if g.Ends != nil {
		t.Errorf("Expected ends to be invalidated, got %v", g.Ends)
	}
	if !errors.Is(g.Err, ErrChainDisconnected) {
		t.Errorf("Expected ErrChainDisconnected, got %v", g.Err)
	}
	if _, err := s.GroupPosition(gid, 0.5); !errors.Is(err, ErrStaleQuery) {
		t.Errorf("Expected ErrStaleQuery, got %v", err)
	}

	mustLatch(t, s, a, End, b, Start)
	g, _ = s.Group(gid)
	if !g.Connected() {
		t.Errorf("Relatching should restore the chain, got %v", g.Err)
	}
}

func TestGroupStaleQuery(t *testing.T) {
	s, a, b := twoLines(t)
	g := mustGroup(t, s, a, b)

	for _, tt := range []float64{-0.1, 1.5, 1 + 1e-3, math.NaN()} {
		if _, err := g.Position(tt); !errors.Is(err, ErrStaleQuery) {
			t.Errorf("Position(%g): Expected ErrStaleQuery, got %v", tt, err)
		}
		if _, err := g.Normal(tt); !errors.Is(err, ErrStaleQuery) {
			t.Errorf("Normal(%g): Expected ErrStaleQuery, got %v", tt, err)
		}
	}

	p, err := g.Position(1 + 1e-7)
	if err != nil {
		t.Fatalf("Position within epsilon of 1 should succeed, got %v", err)
	}
	if !near(p, curve.Pt(20, 0), 1e-6) {
		t.Errorf("Position(1+1e-7) = %v, want (20, 0)", p)
	}
}

func TestGroupStandaloneLUT(t *testing.T) {
	s, a, b := twoLines(t)
	g := mustGroup(t, s, a, b)
	lut := g.Standalone

	if len(lut.Samples) != s.Config().StandaloneSamples {
		t.Fatalf("Expected %d samples, got %d", s.Config().StandaloneSamples, len(lut.Samples))
	}
	if first := lut.Samples[0]; first != (Sample{0, 0}) {
		t.Errorf("first sample = %v, want (0, 0)", first)
	}
	last := lut.Samples[len(lut.Samples)-1]
	if math.Abs(float64(last.X-20)) > 1e-4 || math.Abs(float64(last.Y)) > 1e-4 {
		t.Errorf("last sample = %v, want (20, 0)", last)
	}
	if math.Abs(float64(lut.PathLength-20)) > 1e-4 {
		t.Errorf("PathLength = %g, want 20", lut.PathLength)
	}
	if math.Abs(float64(lut.PolylineLength()-20)) > 1e-3 {
		t.Errorf("PolylineLength = %g, want 20", lut.PolylineLength())
	}
	mid := lut.At(0.5)
	if math.Abs(float64(mid.X-10)) > 1e-3 || math.Abs(float64(mid.Y)) > 1e-3 {
		t.Errorf("At(0.5) = %v, want (10, 0)", mid)
	}
}

func TestGroupZeroLength(t *testing.T) {
	s := quietStore()
	p := curve.Pt(5, 5)
	a := s.AddCurve(p, p, p, p)
	b := s.AddCurve(p, p, p, p)
	mustLatch(t, s, a, End, b, Start)
	g := mustGroup(t, s, a, b)

	if g.Chain[0].TMax != 0.5 || g.Chain[1].TMin != 0.5 {
		t.Errorf("Zero-length chain should split evenly, got %g / %g", g.Chain[0].TMax, g.Chain[1].TMin)
	}
	got, err := g.Position(0.25)
	if err != nil {
		t.Fatal(err)
	}
	if !near(got, p, 1e-9) {
		t.Errorf("Position(0.25) = %v, want %v", got, p)
	}
	n, err := g.Normal(0.25)
	if err != nil {
		t.Fatal(err)
	}
	if n != (curve.Vec2{}) {
		t.Errorf("Normal on a point should be zero, got %v", n)
	}
}

func TestGroupRecomposesOnMove(t *testing.T) {
	s, a, b := twoLines(t)
	gid, err := s.NewGroup(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.MoveAnchor(b, AnchorEnd, curve.Pt(40, 0)); err != nil {
		t.Fatal(err)
	}
	g, _ := s.Group(gid)
	if !approx(g.Total, 40, 1e-6) {
		t.Errorf("Total after move = %g, want 40", g.Total)
	}
	if !approx(g.Chain[0].TMax, 0.25, 1e-9) {
		t.Errorf("A should now cover [0, 0.25], got TMax %g", g.Chain[0].TMax)
	}
	p, err := g.Position(1)
	if err != nil {
		t.Fatal(err)
	}
	if !near(p, curve.Pt(40, 0), 1e-6) {
		t.Errorf("Position(1) = %v, want (40, 0)", p)
	}
}

func TestStandaloneAtClamps(t *testing.T) {
	lut := StandaloneLUT{Samples: []Sample{{0, 0}, {1, 0}, {1, 1}}}
	tests := []struct {
		t    float32
		want Sample
	}{
		{-1, Sample{0, 0}},
		{0, Sample{0, 0}},
		{0.25, Sample{0.5, 0}},
		{0.75, Sample{1, 0.5}},
		{1, Sample{1, 1}},
		{2, Sample{1, 1}},
	}
	for _, tt := range tests {
		if got := lut.At(tt.t); got != tt.want {
			t.Errorf("At(%g) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if (StandaloneLUT{}).At(0.5) != (Sample{}) {
		t.Error("empty LUT should yield the zero sample")
	}
}
