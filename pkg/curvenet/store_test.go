package curvenet

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"
)

func TestLatchSymmetric(t *testing.T) {
	s, a, b := twoLines(t)

	ca, _ := s.Curve(a)
	cb, _ := s.Curve(b)
	want := &LatchData{LatchedTo: b, SelfEdge: End, PartnerEdge: Start}
	diff(t, want, ca.LatchAt(End))
	diff(t, &LatchData{LatchedTo: a, SelfEdge: Start, PartnerEdge: End}, cb.LatchAt(Start))
	assert.True(t, ca.Free(Start))
	assert.True(t, cb.Free(End))
	require.NoError(t, s.Validate())
}

func TestLatchOccupied(t *testing.T) {
	s, a, b := twoLines(t)
	c := s.AddLine(curve.Pt(20, 0), curve.Pt(30, 0))

	err := s.Latch(c, Start, b, Start)
	assert.ErrorIs(t, err, ErrEdgeAlreadyLatched)
	err = s.Latch(a, End, c, Start)
	assert.ErrorIs(t, err, ErrEdgeAlreadyLatched)

	cc, _ := s.Curve(c)
	assert.True(t, cc.Free(Start), "failed latch must leave the graph unchanged")
	ca, _ := s.Curve(a)
	assert.Equal(t, b, ca.LatchAt(End).LatchedTo)
}

func TestLatchErrors(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(1, 0))

	assert.ErrorIs(t, s.Latch(a, Start, a, End), ErrSelfLatch)
	assert.ErrorIs(t, s.Latch(a, Start, 99, End), ErrCurveNotFound)
	assert.ErrorIs(t, s.Latch(99, Start, a, End), ErrCurveNotFound)
}

func TestUnlatch(t *testing.T) {
	s, a, b := twoLines(t)

	require.NoError(t, s.Unlatch(b, Start))
	ca, _ := s.Curve(a)
	cb, _ := s.Curve(b)
	assert.True(t, ca.Free(End))
	assert.True(t, cb.Free(Start))

	// Unlatching a free edge is a no-op.
	require.NoError(t, s.Unlatch(a, End))
	assert.ErrorIs(t, s.Unlatch(42, End), ErrCurveNotFound)
}

func TestUnlatchDangling(t *testing.T) {
	s, buf := loggedStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(10, 0))
	b := s.AddLine(curve.Pt(10, 0), curve.Pt(20, 0))
	s.curves[a].Latches[End] = &LatchData{LatchedTo: b, SelfEdge: End, PartnerEdge: Start}

	require.NoError(t, s.Unlatch(a, End))
	assert.True(t, s.curves[a].Free(End))
	assert.Contains(t, buf.String(), "dangling latch")
	assert.Contains(t, buf.String(), "does not point back")
}

func TestRemoveCurve(t *testing.T) {
	s, a, b := twoLines(t)
	gid, err := s.NewGroup(a, b)
	require.NoError(t, err)

	require.NoError(t, s.RemoveCurve(a))
	_, ok := s.Curve(a)
	assert.False(t, ok)

	cb, _ := s.Curve(b)
	assert.True(t, cb.Free(Start), "partner latch must be cleared")

	g, ok := s.Group(gid)
	require.True(t, ok)
	diff(t, []CurveID{b}, g.Members)
	assert.True(t, g.Connected(), "a single curve is a chain")

	require.NoError(t, s.RemoveCurve(b))
	_, ok = s.Group(gid)
	assert.False(t, ok, "empty group must be destroyed")
	assert.Empty(t, s.GroupIDs())
	require.NoError(t, s.Validate())

	assert.ErrorIs(t, s.RemoveCurve(b), ErrCurveNotFound)
}

func TestRemoveCurveCancelsPending(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(10, 0))
	b := s.AddLine(curve.Pt(12, 0), curve.Pt(20, 0))
	require.NoError(t, s.SetPendingLatch(a, End, EdgeRef{Curve: b, Edge: Start}))

	require.NoError(t, s.RemoveCurve(b))
	ca, _ := s.Curve(a)
	assert.Nil(t, ca.Pending)
}

func TestIDsNotReused(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(1, 0))
	b := s.AddLine(curve.Pt(1, 0), curve.Pt(2, 0))
	require.NoError(t, s.RemoveCurve(b))
	c := s.AddLine(curve.Pt(1, 0), curve.Pt(2, 0))

	assert.NotZero(t, a)
	assert.Greater(t, c, b)
	diff(t, []CurveID{a, c}, s.CurveIDs())

	g1, err := s.NewGroup(a)
	require.NoError(t, err)
	require.NoError(t, s.Ungroup(g1))
	g2, err := s.NewGroup(a)
	require.NoError(t, err)
	assert.Greater(t, g2, g1)
}

func TestCurveReturnsCopy(t *testing.T) {
	s, a, _ := twoLines(t)
	c, _ := s.Curve(a)
	c.Start = curve.Pt(100, 100)
	c.Latches[End].LatchedTo = 77
	c.LUT[1] = 0.9

	orig, _ := s.Curve(a)
	assert.Equal(t, curve.Pt(0, 0), orig.Start)
	assert.NotEqual(t, CurveID(77), orig.LatchAt(End).LatchedTo)
	require.NoError(t, s.Validate())
}

func TestMoveAnchorDragsPartner(t *testing.T) {
	s, a, b := twoLines(t)

	require.NoError(t, s.MoveAnchor(a, AnchorEnd, curve.Pt(10, 5)))
	ca, _ := s.Curve(a)
	cb, _ := s.Curve(b)
	assert.Equal(t, curve.Pt(10, 5), ca.End)
	assert.Equal(t, curve.Pt(10, 5), cb.Start, "latched partner must follow")
	assert.True(t, near(cb.ControlStart, curve.Pt(10+10.0/3, 5), 1e-9), "partner control moves with its anchor: %v", cb.ControlStart)
	assert.True(t, near(ca.ControlEnd, curve.Pt(20.0/3, 5), 1e-9), "own control moves with its anchor: %v", ca.ControlEnd)
}

func TestMoveAnchorControlOnly(t *testing.T) {
	s, a, b := twoLines(t)
	before, _ := s.Curve(b)

	require.NoError(t, s.MoveAnchor(a, AnchorControlEnd, curve.Pt(5, 5)))
	ca, _ := s.Curve(a)
	after, _ := s.Curve(b)
	assert.Equal(t, curve.Pt(5, 5), ca.ControlEnd)
	assert.Equal(t, curve.Pt(10, 0), ca.End)
	diff(t, before, after)
	assert.Len(t, ca.LUT, s.Config().LUTSamples)
}

func TestSetGeometry(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(1, 0))
	require.NoError(t, s.SetGeometry(a, curve.Pt(0, 0), curve.Pt(0, 10), curve.Pt(10, 10), curve.Pt(10, 0)))
	c, _ := s.Curve(a)
	assert.Greater(t, c.Length(s.Config().ArclenAccuracy), 10.0)
	require.NoError(t, checkLUT(c.LUT))
}

func TestPendingLatch(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(10, 0))
	b := s.AddLine(curve.Pt(12, 1), curve.Pt(20, 0))

	require.NoError(t, s.SetPendingLatch(a, End, EdgeRef{Curve: b, Edge: Start}))
	ca, _ := s.Curve(a)
	assert.Equal(t, curve.Pt(12, 1), ca.DisplayPoint(End))
	assert.Equal(t, curve.Pt(10, 0), ca.EdgePoint(End), "pending latch must not move the curve")
	assert.True(t, ca.Free(End), "pending latch must not touch the graph")

	require.NoError(t, s.CommitPendingLatch(a))
	ca, _ = s.Curve(a)
	assert.Nil(t, ca.Pending)
	assert.Equal(t, curve.Pt(12, 1), ca.End)
	diff(t, EdgeRef{Curve: b, Edge: Start}, ca.LatchAt(End).Partner())
	require.NoError(t, s.Validate())

	assert.ErrorIs(t, s.CommitPendingLatch(a), ErrNoPendingLatch)
}

func TestCancelPendingLatch(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(10, 0))
	b := s.AddLine(curve.Pt(12, 1), curve.Pt(20, 0))

	require.NoError(t, s.SetPendingLatch(a, End, EdgeRef{Curve: b, Edge: Start}))
	require.NoError(t, s.CancelPendingLatch(a))
	ca, _ := s.Curve(a)
	assert.Nil(t, ca.Pending)
	assert.Equal(t, curve.Pt(10, 0), ca.DisplayPoint(End))
	assert.True(t, ca.Free(End))
}

func TestPendingLatchRejectsOccupied(t *testing.T) {
	s, a, b := twoLines(t)
	c := s.AddLine(curve.Pt(30, 0), curve.Pt(40, 0))

	assert.ErrorIs(t, s.SetPendingLatch(c, Start, EdgeRef{Curve: b, Edge: Start}), ErrEdgeAlreadyLatched)
	assert.ErrorIs(t, s.SetPendingLatch(a, End, EdgeRef{Curve: c, Edge: Start}), ErrEdgeAlreadyLatched)
	assert.ErrorIs(t, s.SetPendingLatch(c, Start, EdgeRef{Curve: c, Edge: End}), ErrSelfLatch)
}

func TestDragAnchorSnaps(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(5, 0))
	b := s.AddLine(curve.Pt(10, 0), curve.Pt(20, 0))

	pl, err := s.DragAnchor(a, AnchorEnd, curve.Pt(7, 0))
	require.NoError(t, err)
	require.NotNil(t, pl, "b's start is within the snap radius")
	assert.Equal(t, EdgeRef{Curve: b, Edge: Start}, pl.Partner)
	assert.Equal(t, curve.Pt(10, 0), pl.Snap)

	pl, err = s.DragAnchor(a, AnchorEnd, curve.Pt(-20, 0))
	require.NoError(t, err)
	assert.Nil(t, pl)
	ca, _ := s.Curve(a)
	assert.Nil(t, ca.Pending, "moving away drops the pending latch")

	_, err = s.DragAnchor(a, AnchorEnd, curve.Pt(9, 0))
	require.NoError(t, err)
	require.NoError(t, s.CommitPendingLatch(a))
	ca, _ = s.Curve(a)
	assert.Equal(t, curve.Pt(10, 0), ca.End)
}

func TestFindSnapTarget(t *testing.T) {
	s, a, b := twoLines(t)
	c := s.AddLine(curve.Pt(23, 0), curve.Pt(40, 0))
	s.AddLine(curve.Pt(27, 0), curve.Pt(27, 10))

	got, ok := s.FindSnapTarget(c, Start, 5)
	require.True(t, ok)
	assert.Equal(t, EdgeRef{Curve: b, Edge: End}, got, "nearest free edge wins")

	_, ok = s.FindSnapTarget(c, Start, 1)
	assert.False(t, ok)

	// The joint of a and b is latched on both sides.
	e := s.AddLine(curve.Pt(10, 0.1), curve.Pt(10, 10))
	got, ok = s.FindSnapTarget(e, Start, 0.5)
	assert.False(t, ok, "latched edges are never targets, got %v", got)
	_, ok = s.FindSnapTarget(e, Start, 10.5)
	require.True(t, ok)
	got, _ = s.FindSnapTarget(e, Start, 10.5)
	assert.Equal(t, EdgeRef{Curve: a, Edge: Start}, got)

	_, ok = s.FindSnapTarget(99, Start, 100)
	assert.False(t, ok)
}

func TestNewGroupRefusesDisconnected(t *testing.T) {
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(10, 0))
	b := s.AddLine(curve.Pt(20, 0), curve.Pt(30, 0))

	_, err := s.NewGroup(a, b)
	assert.ErrorIs(t, err, ErrChainDisconnected)
	assert.Empty(t, s.GroupIDs())
	_, grouped := s.GroupOf(a)
	assert.False(t, grouped)

	_, err = s.NewGroup(a, 99)
	assert.ErrorIs(t, err, ErrCurveNotFound)
}

func TestNewGroupAlreadyGrouped(t *testing.T) {
	s, a, b := twoLines(t)
	gid, err := s.NewGroup(a, b, a)
	require.NoError(t, err)

	g, _ := s.Group(gid)
	diff(t, []CurveID{a, b}, g.Members)

	_, err = s.NewGroup(b)
	assert.ErrorIs(t, err, ErrAlreadyGrouped)
}

func TestGroupMembership(t *testing.T) {
	s, a, b := twoLines(t)
	c := s.AddLine(curve.Pt(20, 0), curve.Pt(30, 0))
	mustLatch(t, s, b, End, c, Start)

	gid, err := s.NewGroup(a, b)
	require.NoError(t, err)

	require.NoError(t, s.AddToGroup(gid, c))
	g, _ := s.Group(gid)
	diff(t, []CurveID{a, b, c}, g.Members)
	assert.True(t, g.Connected())
	assert.InDelta(t, 30, g.Total, 1e-6)
	assert.ErrorIs(t, s.AddToGroup(gid, c), ErrAlreadyGrouped)

	// Removing the middle curve leaves a disconnected group in place.
	require.NoError(t, s.RemoveFromGroup(gid, b))
	g, _ = s.Group(gid)
	assert.False(t, g.Connected())
	assert.ErrorIs(t, g.Err, ErrChainDisconnected)
	assert.ErrorIs(t, s.RemoveFromGroup(gid, b), ErrCurveNotFound)

	require.NoError(t, s.Ungroup(gid))
	assert.Empty(t, s.GroupIDs())
	_, grouped := s.GroupOf(a)
	assert.False(t, grouped)
	assert.ErrorIs(t, s.Ungroup(gid), ErrGroupNotFound)

	_, err = s.GroupPosition(gid, 0)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestValidateDetectsAsymmetricLatch(t *testing.T) {
	s, a, b := twoLines(t)
	require.NoError(t, s.Validate())

	s.curves[b].Latches[Start] = nil
	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDanglingLatch))
	assert.True(t, strings.Contains(err.Error(), a.String()), err.Error())
}

func TestValidateDetectsBadLUT(t *testing.T) {
	s, a, _ := twoLines(t)
	s.curves[a].LUT = []float64{0, 0.6, 0.4, 1}
	assert.ErrorContains(t, s.Validate(), "decreases")
}

func TestConfigNormalized(t *testing.T) {
	s := NewStore(Config{LUTSamples: 1, ChainSlack: -3}, nil)
	cfg := s.Config()
	def := DefaultConfig()
	assert.Equal(t, def.LUTSamples, cfg.LUTSamples)
	assert.Equal(t, 0, cfg.ChainSlack)
	assert.Equal(t, def.StandaloneSamples, cfg.StandaloneSamples)
	assert.Equal(t, def.ArclenAccuracy, cfg.ArclenAccuracy)
	assert.NotNil(t, s.Logger())
}
