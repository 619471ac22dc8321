// Read-only terminal previewer.

package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/curve-toolkit/pkg/curvefile"
	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"honnef.co/go/curve"
)

// cellKind classifies a plotted cell. Higher kinds are drawn over lower ones.
type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellCurve
	cellGroup
	cellFree
	cellJoint
	cellProbe
)

var cellRunes = [...]rune{
	cellEmpty: ' ',
	cellCurve: '·',
	cellGroup: '•',
	cellFree:  'o',
	cellJoint: '+',
	cellProbe: '@',
}

var (
	styleViewDefault = tcell.StyleDefault
	styleViewCurve   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleViewGroup   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleViewFree    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleViewJoint   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleViewProbe   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleViewStatus  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
)

var cellStyles = [...]tcell.Style{
	cellEmpty: styleViewDefault,
	cellCurve: styleViewCurve,
	cellGroup: styleViewGroup,
	cellFree:  styleViewFree,
	cellJoint: styleViewJoint,
	cellProbe: styleViewProbe,
}

// Terminal cells are about twice as tall as they are wide. The network is
// fitted into a canvas with twice the rows and halved back when plotted.
const cellAspect = 2

// canvas is a network plotted into terminal cells.
type canvas struct {
	w, h  int
	cells []cellKind
	view  curvefile.Viewport
}

// plotNetwork rasterizes s into a w x h cell grid. Curves of group sel are
// drawn with cellGroup.
func plotNetwork(s *curvenet.Store, w, h int, sel curvenet.GroupID) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cellKind, max(w*h, 0))}
	bounds, ok := curvefile.Bounds(s)
	if !ok || w <= 0 || h <= 0 {
		return c
	}
	c.view = curvefile.FitViewport(bounds, float64(w), float64(h*cellAspect), 1)

	for _, cv := range s.Curves() {
		kind := cellCurve
		if gid, ok := s.GroupOf(cv.ID); ok && gid == sel {
			kind = cellGroup
		}
		bez := cv.Bez()
		steps := int(math.Ceil(cv.Length(s.Config().ArclenAccuracy)*c.view.Scale)) + 2
		steps = min(steps, 4096)
		for i := range steps + 1 {
			c.mark(bez.Eval(float64(i)/float64(steps)), kind)
		}
	}
	for _, cv := range s.Curves() {
		for _, e := range [...]curvenet.AnchorEdge{curvenet.Start, curvenet.End} {
			kind := cellFree
			if !cv.Free(e) {
				kind = cellJoint
			}
			c.mark(cv.EdgePoint(e), kind)
		}
	}
	return c
}

// cell maps a network point to cell coordinates.
func (c *canvas) cell(p curve.Point) (x, y int, ok bool) {
	q := c.view.Apply(p)
	if math.IsNaN(q.X) || math.IsNaN(q.Y) {
		return 0, 0, false
	}
	x, y = int(math.Floor(q.X)), int(math.Floor(q.Y/cellAspect))
	return x, y, x >= 0 && x < c.w && y >= 0 && y < c.h
}

func (c *canvas) mark(p curve.Point, k cellKind) {
	x, y, ok := c.cell(p)
	if !ok {
		return
	}
	if i := y*c.w + x; c.cells[i] < k {
		c.cells[i] = k
	}
}

func (c *canvas) at(x, y int) cellKind {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return cellEmpty
	}
	return c.cells[y*c.w+x]
}

// viewer is the state of the terminal previewer.
type viewer struct {
	screen tcell.Screen
	store  *curvenet.Store
	title  string

	groups []curvenet.GroupID
	sel    int
	t      float64
}

const (
	probeStep     = 0.01
	probeLongStep = 0.1
)

func newViewer(screen tcell.Screen, s *curvenet.Store, title string) *viewer {
	return &viewer{screen: screen, store: s, title: title, groups: s.GroupIDs()}
}

func (v *viewer) group() (*curvenet.Group, bool) {
	if len(v.groups) == 0 {
		return nil, false
	}
	return v.store.Group(v.groups[v.sel])
}

// handleKey applies one key press. It returns true when the viewer should exit.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRight:
		v.moveProbe(probeStep)
	case tcell.KeyLeft:
		v.moveProbe(-probeStep)
	case tcell.KeyUp:
		v.moveProbe(probeLongStep)
	case tcell.KeyDown:
		v.moveProbe(-probeLongStep)
	case tcell.KeyHome:
		v.t = 0
	case tcell.KeyEnd:
		v.t = 1
	case tcell.KeyTab:
		if len(v.groups) > 0 {
			v.sel = (v.sel + 1) % len(v.groups)
		}
	case tcell.KeyBacktab:
		if len(v.groups) > 0 {
			v.sel = (v.sel + len(v.groups) - 1) % len(v.groups)
		}
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return true
		}
	}
	return false
}

// moveProbe steps the probe along the group. Rings wrap; open chains clamp.
func (v *viewer) moveProbe(dt float64) {
	t := v.t + dt
	if g, ok := v.group(); ok && g.Closed() {
		t -= math.Floor(t)
	} else {
		t = min(max(t, 0), 1)
	}
	// Settle float drift so the probe lands on the ends exactly.
	v.t = math.Round(t*1e9) / 1e9
}

// status describes the probe for the status bar.
func (v *viewer) status() string {
	g, ok := v.group()
	if !ok {
		return fmt.Sprintf("%d curves, no groups  q quit", v.store.Len())
	}
	if !g.Connected() {
		return fmt.Sprintf("%s (%d/%d) broken: %v  tab next  q quit", g.ID, v.sel+1, len(v.groups), g.Err)
	}
	p, err := g.Position(v.t)
	if err != nil {
		return fmt.Sprintf("%s t=%.3f: %v", g.ID, v.t, err)
	}
	n, _ := g.Normal(v.t)
	return fmt.Sprintf("%s (%d/%d) t=%.3f pos=(%.2f, %.2f) normal=(%.3f, %.3f)  ←→↑↓ move  tab next  q quit",
		g.ID, v.sel+1, len(v.groups), v.t, p.X, p.Y, n.X, n.Y)
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if h < 2 {
		return
	}

	top := 0
	if v.title != "" {
		v.drawString(0, 0, v.title, styleViewDefault.Bold(true))
		top = 1
	}
	rows := h - 1 - top
	var sel curvenet.GroupID
	if len(v.groups) > 0 {
		sel = v.groups[v.sel]
	}
	c := plotNetwork(v.store, w, rows, sel)
	if g, ok := v.group(); ok && g.Connected() {
		if p, err := g.Position(v.t); err == nil {
			c.mark(p, cellProbe)
		}
	}
	for y := range rows {
		for x := range w {
			if k := c.at(x, y); k != cellEmpty {
				v.screen.SetContent(x, y+top, cellRunes[k], nil, cellStyles[k])
			}
		}
	}

	status := v.status()
	for x := range w {
		v.screen.SetContent(x, h-1, ' ', nil, styleViewStatus)
	}
	v.drawString(0, h-1, status, styleViewStatus)
}

func (v *viewer) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (v *viewer) run() {
	for {
		v.draw()
		v.screen.Show()

		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return
			}
		}
	}
}

func (a *app) cmdView(args []string) error {
	pos, opts := splitArgs(args, "-g", "--group")
	if len(pos) != 1 {
		return usageError("view <file> [-g group]")
	}
	s, n, err := a.load(pos[0])
	if err != nil {
		return err
	}

	title := n.Name
	if title == "" {
		title = pos[0]
	}
	v := newViewer(nil, s, title)
	if g, ok := option(opts, "-g", "--group"); ok {
		gid, err := parseGroupID(g)
		if err != nil {
			return err
		}
		if err := v.selectGroup(gid); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	v.screen = screen
	v.run()
	return nil
}

func (v *viewer) selectGroup(gid curvenet.GroupID) error {
	for i, id := range v.groups {
		if id == gid {
			v.sel = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s", curvenet.ErrGroupNotFound, gid)
}
