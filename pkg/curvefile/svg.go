package curvefile

import (
	"fmt"
	"html"
	"strings"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"honnef.co/go/curve"
)

// SVGOptions controls SVG rendering.
type SVGOptions struct {
	Width        int     // canvas width in pixels
	Height       int     // canvas height in pixels
	Title        string  // diagram title
	FontSize     int     // font size for curve labels
	Padding      int     // padding around the network
	AnchorRadius float64 // radius of edge markers
	ShowControls bool    // draw control points and handles
	ShowLabels   bool    // draw curve names
	Normals      int     // normal ticks per group (0 = none)
	NormalLength float64 // tick length in pixels
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:        800,
		Height:       600,
		FontSize:     12,
		Padding:      40,
		AnchorRadius: 4,
		ShowControls: true,
		ShowLabels:   true,
		NormalLength: 12,
	}
}

// groupColors cycles through group highlight colours.
var groupColors = []string{"#90caf9", "#a5d6a7", "#ffcc80", "#ce93d8", "#ef9a9a", "#80cbc4"}

func groupColor(i int) string {
	return groupColors[i%len(groupColors)]
}

func (o SVGOptions) withDefaults() SVGOptions {
	d := DefaultSVGOptions()
	if o.Width == 0 {
		o.Width = d.Width
	}
	if o.Height == 0 {
		o.Height = d.Height
	}
	if o.FontSize == 0 {
		o.FontSize = d.FontSize
	}
	if o.Padding == 0 {
		o.Padding = d.Padding
	}
	if o.AnchorRadius == 0 {
		o.AnchorRadius = d.AnchorRadius
	}
	if o.NormalLength == 0 {
		o.NormalLength = d.NormalLength
	}
	return o
}

// fitStore builds the viewport for a store, reserving title space.
func fitStore(s *curvenet.Store, width, height, padding int, title string) Viewport {
	top := 0.0
	if title != "" {
		top = 35
	}
	b, ok := Bounds(s)
	if !ok {
		b = curve.Rect{}
	}
	v := FitViewport(b, float64(width), float64(height)-top, float64(padding))
	v.aff = v.aff.ThenTranslate(curve.Vec2{Y: top})
	return v
}

// GenerateSVG renders the store's curves, latches and groups to SVG.
func GenerateSVG(s *curvenet.Store, opts SVGOptions) string {
	opts = opts.withDefaults()
	view := fitStore(s, opts.Width, opts.Height, opts.Padding, opts.Title)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<style>
  .curve { fill: none; stroke: #333; stroke-width: 2; }
  .group { fill: none; stroke-width: 8; stroke-linecap: round; stroke-linejoin: round; opacity: 0.6; }
  .handle { stroke: #999; stroke-width: 1; stroke-dasharray: 3 2; }
  .control { fill: white; stroke: #999; stroke-width: 1; }
  .edge-free { fill: white; stroke: #333; stroke-width: 1.5; }
  .edge-latched { fill: #2e7d32; stroke: #1b5e20; stroke-width: 1.5; }
  .normal { stroke: #c62828; stroke-width: 1; }
  .label { font-family: sans-serif; font-size: %dpx; fill: #333; text-anchor: middle; }
  .title { font-family: sans-serif; font-size: %dpx; font-weight: bold; text-anchor: middle; }
</style>
<rect width="%d" height="%d" fill="white"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.FontSize, opts.FontSize+4, opts.Width, opts.Height)

	if opts.Title != "" {
		fmt.Fprintf(&sb, "<text x=\"%d\" y=\"25\" class=\"title\">%s</text>\n", opts.Width/2, html.EscapeString(opts.Title))
	}

	// Group highlights sit under the curves.
	for i, g := range s.Groups() {
		if !g.Connected() || len(g.Standalone.Samples) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "<path class=\"group\" id=\"%s\" stroke=\"%s\" d=\"%s\"/>\n",
			g.ID, groupColor(i), samplesPath(g.Standalone.Samples, view, g.Closed()))
	}

	curves := s.Curves()
	for _, c := range curves {
		p0, p1, p2, p3 := view.Apply(c.Start), view.Apply(c.ControlStart), view.Apply(c.ControlEnd), view.Apply(c.End)
		fmt.Fprintf(&sb, "<path class=\"curve\" id=\"%s\" d=\"M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f\"/>\n",
			c.ID, p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y)
		if opts.ShowControls {
			writeLine(&sb, "handle", p0, p1)
			writeLine(&sb, "handle", p3, p2)
			for _, p := range [...]curve.Point{p1, p2} {
				fmt.Fprintf(&sb, "<rect class=\"control\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\"/>\n",
					p.X-opts.AnchorRadius*0.75, p.Y-opts.AnchorRadius*0.75, opts.AnchorRadius*1.5, opts.AnchorRadius*1.5)
			}
		}
	}

	if opts.Normals > 0 {
		for _, g := range s.Groups() {
			writeNormals(&sb, g, view, opts.Normals, opts.NormalLength)
		}
	}

	// Edge markers on top. A latched joint is drawn once.
	for _, c := range curves {
		for _, e := range [...]curvenet.AnchorEdge{curvenet.Start, curvenet.End} {
			p := view.Apply(c.DisplayPoint(e))
			l := c.LatchAt(e)
			if l == nil {
				fmt.Fprintf(&sb, "<circle class=\"edge-free\" cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\"/>\n", p.X, p.Y, opts.AnchorRadius)
				continue
			}
			if l.Partner().Less(curvenet.EdgeRef{Curve: c.ID, Edge: e}) {
				continue
			}
			fmt.Fprintf(&sb, "<circle class=\"edge-latched\" cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\"/>\n", p.X, p.Y, opts.AnchorRadius)
		}
	}

	if opts.ShowLabels {
		for _, c := range curves {
			mid := view.Apply(c.Bez().Eval(0.5))
			fmt.Fprintf(&sb, "<text class=\"label\" x=\"%.2f\" y=\"%.2f\">%s</text>\n",
				mid.X, mid.Y-float64(opts.FontSize)*0.6, html.EscapeString(curveLabel(c)))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeLine(sb *strings.Builder, class string, a, b curve.Point) {
	fmt.Fprintf(sb, "<line class=\"%s\" x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"/>\n", class, a.X, a.Y, b.X, b.Y)
}

// samplesPath converts standalone LUT samples to SVG path data.
func samplesPath(samples []curvenet.Sample, view Viewport, closed bool) string {
	var sb strings.Builder
	for i, s := range samples {
		p := view.Apply(curve.Pt(float64(s.X), float64(s.Y)))
		if i == 0 {
			fmt.Fprintf(&sb, "M %.2f %.2f", p.X, p.Y)
			continue
		}
		fmt.Fprintf(&sb, " L %.2f %.2f", p.X, p.Y)
	}
	if closed {
		sb.WriteString(" Z")
	}
	return sb.String()
}

// writeNormals draws n ticks along a connected group. Ticks point to the
// left of the traversal direction.
func writeNormals(sb *strings.Builder, g *curvenet.Group, view Viewport, n int, length float64) {
	if !g.Connected() {
		return
	}
	for i := range n {
		t := (float64(i) + 0.5) / float64(n)
		p, err := g.Position(t)
		if err != nil {
			continue
		}
		nv, err := g.Normal(t)
		if err != nil {
			continue
		}
		a := view.Apply(p)
		writeLine(sb, "normal", a, a.Translate(nv.Mul(length)))
	}
}
