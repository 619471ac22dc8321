package curvenet

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"honnef.co/go/curve"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func quietStore() *Store {
	return NewStore(DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// loggedStore returns a store whose warnings are written to the returned buffer.
func loggedStore() (*Store, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewStore(DefaultConfig(), slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

func near(a, b curve.Point, tol float64) bool {
	return a.Distance(b) <= tol
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func mustLatch(t *testing.T, s *Store, a CurveID, ea AnchorEdge, b CurveID, eb AnchorEdge) {
	t.Helper()
	if err := s.Latch(a, ea, b, eb); err != nil {
		t.Fatalf("Latch(%s:%s, %s:%s): %v", a, ea, b, eb, err)
	}
}

// twoLines builds A (0,0)->(10,0) and B (10,0)->(20,0) latched A.End to B.Start.
func twoLines(t *testing.T) (*Store, CurveID, CurveID) {
	t.Helper()
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(10, 0))
	b := s.AddLine(curve.Pt(10, 0), curve.Pt(20, 0))
	mustLatch(t, s, a, End, b, Start)
	return s, a, b
}

// triangle builds a closed ring of three straight curves.
func triangle(t *testing.T) (*Store, []CurveID) {
	t.Helper()
	s := quietStore()
	p0, p1, p2 := curve.Pt(0, 0), curve.Pt(30, 0), curve.Pt(0, 40)
	a := s.AddLine(p0, p1)
	b := s.AddLine(p1, p2)
	c := s.AddLine(p2, p0)
	mustLatch(t, s, a, End, b, Start)
	mustLatch(t, s, b, End, c, Start)
	mustLatch(t, s, c, End, a, Start)
	return s, []CurveID{a, b, c}
}
