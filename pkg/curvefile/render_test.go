package curvefile

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
)

func TestFitViewport(t *testing.T) {
	b := curve.Rect{X0: 0, Y0: 0, X1: 100, Y1: 50}
	v := FitViewport(b, 400, 400, 50)

	assert.InDelta(t, 3, v.Scale, 1e-12)
	c := v.Apply(curve.Pt(50, 25))
	assert.InDelta(t, 200, c.X, 1e-9)
	assert.InDelta(t, 200, c.Y, 1e-9)
	lo := v.Apply(curve.Pt(0, 0))
	assert.InDelta(t, 50, lo.X, 1e-9)

	// A single point is centred at scale 1.
	v = FitViewport(curve.Rect{X0: 5, Y0: 5, X1: 5, Y1: 5}, 100, 100, 10)
	assert.Equal(t, 1.0, v.Scale)
	p := v.Apply(curve.Pt(5, 5))
	assert.InDelta(t, 50, p.X, 1e-9)
	assert.InDelta(t, 50, p.Y, 1e-9)
}

func TestBounds(t *testing.T) {
	_, ok := Bounds(quietStore())
	assert.False(t, ok)

	s, _ := sampleStore(t)
	b, ok := Bounds(s)
	require.True(t, ok)
	assert.InDelta(t, 0, b.X0, 1e-9)
	assert.InDelta(t, 200, b.X1, 1e-9)
	assert.InDelta(t, 150, b.Y1, 1e-9)
}

func TestGenerateSVG(t *testing.T) {
	s, gid := sampleStore(t)
	opts := DefaultSVGOptions()
	opts.Title = "Demo & co"
	opts.Normals = 4

	svg := GenerateSVG(s, opts)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	assert.Contains(t, svg, "Demo &amp; co")
	assert.Contains(t, svg, "loose &lt;one&gt;")
	assert.Contains(t, svg, `class="group" id="`+gid.String()+`"`)
	assert.Equal(t, 3, strings.Count(svg, `class="curve"`))
	assert.Equal(t, 1, strings.Count(svg, `class="edge-latched"`), "a joint is drawn once")
	assert.Equal(t, 4, strings.Count(svg, `class="edge-free"`))
	assert.Equal(t, 4, strings.Count(svg, `class="normal"`))
	assert.Equal(t, 6, strings.Count(svg, `class="control"`))

	opts.ShowControls, opts.ShowLabels = false, false
	svg = GenerateSVG(s, opts)
	assert.NotContains(t, svg, `class="control"`)
	assert.NotContains(t, svg, `class="label"`)
}

func TestGenerateSVGEmpty(t *testing.T) {
	svg := GenerateSVG(quietStore(), SVGOptions{})
	assert.Contains(t, svg, `width="800"`)
	assert.NotContains(t, svg, "<path")
}

func TestRenderPNG(t *testing.T) {
	s, _ := sampleStore(t)
	opts := DefaultPNGOptions()
	opts.Width, opts.Height = 200, 150
	opts.Title = "demo"

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(s, &buf, opts))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	// Something other than background was drawn.
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	drawn := false
	for y := 0; y < 150 && !drawn; y++ {
		for x := 0; x < 200; x++ {
			if r, g, b, _ := img.At(x, y).RGBA(); r < 0x8000 && g < 0x8000 && b < 0x8000 {
				drawn = true
				break
			}
		}
	}
	assert.True(t, drawn, "no dark pixels rendered")
}

func TestRenderPNGDegenerate(t *testing.T) {
	s := quietStore()
	p := curve.Pt(3, 3)
	s.AddCurve(p, p, p, p)

	img := RenderImage(s, PNGOptions{Width: 50, Height: 50})
	assert.Equal(t, 50, img.Bounds().Dx())
}

func TestGenerateDOT(t *testing.T) {
	s, gid := sampleStore(t)
	dot := GenerateDOT(s, `say "hi"`)

	assert.True(t, strings.HasPrefix(dot, "graph CurveNet {"))
	assert.Contains(t, dot, `label="say \"hi\"";`)
	assert.Contains(t, dot, "subgraph cluster_"+gid.String())
	assert.Equal(t, 1, strings.Count(dot, " -- "), "each latch once")
	assert.Contains(t, dot, `taillabel="end", headlabel="end"`)
	assert.Contains(t, dot, `c1\nleft`)
	assert.Contains(t, dot, `loose \<one\>`)

	// Broken groups are dashed.
	require.NoError(t, s.Unlatch(1, curvenet.End))
	dot = GenerateDOT(s, "")
	assert.Contains(t, dot, "style=dashed")
	assert.Contains(t, dot, "(broken)")
	assert.NotContains(t, dot, "labelloc")
}
