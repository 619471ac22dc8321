package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"honnef.co/go/curve"
)

func quietStore() *curvenet.Store {
	return curvenet.NewStore(curvenet.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// viewStore holds an open rail g1 along y=0 and a triangular ring g2
// above it.
func viewStore(t *testing.T) *curvenet.Store {
	t.Helper()
	s := quietStore()
	a := s.AddLine(curve.Pt(0, 0), curve.Pt(100, 0))
	b := s.AddLine(curve.Pt(100, 0), curve.Pt(200, 0))
	require.NoError(t, s.Latch(a, curvenet.End, b, curvenet.Start))
	_, err := s.NewGroup(a, b)
	require.NoError(t, err)

	p, q, r := s.AddLine(curve.Pt(0, 60), curve.Pt(60, 60)), s.AddLine(curve.Pt(60, 60), curve.Pt(30, 100)), s.AddLine(curve.Pt(30, 100), curve.Pt(0, 60))
	require.NoError(t, s.Latch(p, curvenet.End, q, curvenet.Start))
	require.NoError(t, s.Latch(q, curvenet.End, r, curvenet.Start))
	require.NoError(t, s.Latch(r, curvenet.End, p, curvenet.Start))
	_, err = s.NewGroup(p, q, r)
	require.NoError(t, err)
	return s
}

func countCells(c *canvas) map[cellKind]int {
	n := make(map[cellKind]int)
	for y := range c.h {
		for x := range c.w {
			n[c.at(x, y)]++
		}
	}
	return n
}

func TestPlotNetwork(t *testing.T) {
	s := viewStore(t)

	c := plotNetwork(s, 60, 20, 1)
	n := countCells(c)
	assert.Positive(t, n[cellGroup], "selected rail should be highlighted")
	assert.Positive(t, n[cellCurve], "ring should be drawn")
	assert.Equal(t, 2, n[cellFree], "only the rail's outer ends are free")
	assert.Positive(t, n[cellJoint])
	assert.Zero(t, n[cellProbe])

	// Nothing falls outside the grid.
	assert.Equal(t, cellEmpty, c.at(-1, 0))
	assert.Equal(t, cellEmpty, c.at(0, 20))
}

func TestPlotNetworkEmpty(t *testing.T) {
	c := plotNetwork(quietStore(), 10, 5, 0)
	assert.Equal(t, map[cellKind]int{cellEmpty: 50}, countCells(c))

	c = plotNetwork(viewStore(t), 0, 0, 0)
	assert.Empty(t, c.cells)
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestViewerProbe(t *testing.T) {
	v := newViewer(nil, viewStore(t), "")

	for range 3 {
		assert.False(t, v.handleKey(key(tcell.KeyRight)))
	}
	assert.InDelta(t, 0.03, v.t, 1e-12)

	v.handleKey(key(tcell.KeyDown))
	assert.Equal(t, 0.0, v.t, "open chain clamps at 0")

	v.handleKey(key(tcell.KeyEnd))
	v.handleKey(key(tcell.KeyUp))
	assert.Equal(t, 1.0, v.t, "open chain clamps at 1")

	// The ring wraps.
	v.handleKey(key(tcell.KeyTab))
	assert.Equal(t, 1, v.sel)
	v.handleKey(key(tcell.KeyHome))
	v.handleKey(key(tcell.KeyLeft))
	assert.InDelta(t, 0.99, v.t, 1e-9)

	v.handleKey(key(tcell.KeyTab))
	assert.Equal(t, 0, v.sel)
	v.handleKey(key(tcell.KeyBacktab))
	assert.Equal(t, 1, v.sel)

	assert.True(t, v.handleKey(runeKey('q')))
	assert.True(t, v.handleKey(key(tcell.KeyEscape)))
	assert.False(t, v.handleKey(runeKey('x')))
}

func TestViewerSelectGroup(t *testing.T) {
	v := newViewer(nil, viewStore(t), "")
	require.NoError(t, v.selectGroup(2))
	assert.Equal(t, 1, v.sel)
	assert.ErrorIs(t, v.selectGroup(9), curvenet.ErrGroupNotFound)
}

func TestViewerStatus(t *testing.T) {
	s := viewStore(t)
	v := newViewer(nil, s, "")
	v.t = 0.5
	assert.Contains(t, v.status(), "g1 (1/2) t=0.500 pos=(100.00, 0.00)")

	require.NoError(t, s.Unlatch(1, curvenet.End))
	assert.Contains(t, v.status(), "broken")

	empty := newViewer(nil, quietStore(), "")
	assert.Contains(t, empty.status(), "no groups")
	assert.False(t, empty.handleKey(key(tcell.KeyTab)))
}

func screenRow(t *testing.T, s tcell.SimulationScreen, y int) string {
	t.Helper()
	cells, w, _ := s.GetContents()
	var sb strings.Builder
	for x := range w {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(c.Runes[0])
	}
	return sb.String()
}

func TestViewerDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(80, 24)

	v := newViewer(screen, viewStore(t), "Demo")
	v.t = 0.25
	v.draw()
	screen.Show()

	assert.True(t, strings.HasPrefix(screenRow(t, screen, 0), "Demo"))
	assert.Contains(t, screenRow(t, screen, 23), "g1 (1/2) t=0.250")

	var probes int
	for y := 1; y < 23; y++ {
		probes += strings.Count(screenRow(t, screen, y), string(cellRunes[cellProbe]))
	}
	assert.Equal(t, 1, probes)
}

func TestViewerRunQuits(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(40, 12)

	v := newViewer(screen, viewStore(t), "")
	screen.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	v.run()
	assert.InDelta(t, 0.01, v.t, 1e-12)
}
