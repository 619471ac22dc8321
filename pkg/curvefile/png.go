// Native PNG rendering for curve networks.
// Mirrors the SVG renderer output using Go's image packages.

package curvefile

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"iter"
	"math"
	"slices"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"honnef.co/go/curve"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width        int
	Height       int
	Padding      int
	FontSize     int
	LineWidth    float64
	AnchorRadius float64
	ShowControls bool
	ShowLabels   bool
	Title        string
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:        800,
		Height:       600,
		Padding:      40,
		FontSize:     12,
		LineWidth:    2,
		AnchorRadius: 4,
		ShowControls: true,
		ShowLabels:   true,
	}
}

// Colors used in rendering
var (
	colorWhite   = color.RGBA{255, 255, 255, 255}
	colorBlack   = color.RGBA{51, 51, 51, 255}    // #333
	colorGray    = color.RGBA{153, 153, 153, 255} // #999
	colorLatched = color.RGBA{46, 125, 50, 255}   // #2e7d32
)

// pngGroupColors match the SVG group highlights at 60% opacity.
var pngGroupColors = []color.RGBA{
	{144, 202, 249, 153},
	{165, 214, 167, 153},
	{255, 204, 128, 153},
	{206, 147, 216, 153},
	{239, 154, 154, 153},
	{128, 203, 196, 153},
}

// renderContext holds rendering parameters including scale
type renderContext struct {
	img   *image.RGBA
	scale float64 // supersampling factor
	view  Viewport
	face  font.Face
}

// pathTolerance is the flattening tolerance in supersampled pixels.
const pathTolerance = 0.25

func newRenderContext(img *image.RGBA, scale int, fontSize int) *renderContext {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err) // embedded font
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize * scale),
		DPI:     72,
		Hinting: font.HintingNone, // supersampled instead
	})
	if err != nil {
		panic(err)
	}
	return &renderContext{img: img, scale: float64(scale), face: face}
}

// RenderPNG renders the store to PNG format.
// Uses 4x supersampling for smoother output.
func RenderPNG(s *curvenet.Store, w io.Writer, opts PNGOptions) error {
	return png.Encode(w, RenderImage(s, opts))
}

// RenderImage renders the store to an image of opts.Width x opts.Height.
func RenderImage(s *curvenet.Store, opts PNGOptions) *image.RGBA {
	opts = opts.withDefaults()
	scale := 4

	large := image.NewRGBA(image.Rect(0, 0, opts.Width*scale, opts.Height*scale))
	ctx := newRenderContext(large, scale, opts.FontSize)
	ctx.view = fitStore(s, opts.Width*scale, opts.Height*scale, opts.Padding*scale, opts.Title)
	ctx.render(s, opts)

	final := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final
}

func (o PNGOptions) withDefaults() PNGOptions {
	d := DefaultPNGOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Padding == 0 {
		o.Padding = d.Padding
	}
	if o.FontSize == 0 {
		o.FontSize = d.FontSize
	}
	if o.LineWidth == 0 {
		o.LineWidth = d.LineWidth
	}
	if o.AnchorRadius == 0 {
		o.AnchorRadius = d.AnchorRadius
	}
	return o
}

func (ctx *renderContext) render(s *curvenet.Store, opts PNGOptions) {
	draw.Draw(ctx.img, ctx.img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)

	for i, g := range s.Groups() {
		if !g.Connected() || len(g.Standalone.Samples) < 2 {
			continue
		}
		ctx.stroke(ctx.samplesPath(g.Standalone.Samples, g.Closed()), opts.LineWidth*4, pngGroupColors[i%len(pngGroupColors)])
	}

	curves := s.Curves()
	for _, c := range curves {
		bez := c.Bez().Transform(ctx.view.Affine())
		if opts.ShowControls {
			ctx.stroke(segment(bez.P0, bez.P1), opts.LineWidth/2, colorGray)
			ctx.stroke(segment(bez.P3, bez.P2), opts.LineWidth/2, colorGray)
			for _, p := range [...]curve.Point{bez.P1, bez.P2} {
				ctx.fill(curve.Circle{Center: p, Radius: opts.AnchorRadius * 0.6 * ctx.scale}.PathElements(pathTolerance), colorGray)
			}
		}
		ctx.stroke(bez.PathElements(pathTolerance), opts.LineWidth, colorBlack)
	}

	for _, c := range curves {
		for _, e := range [...]curvenet.AnchorEdge{curvenet.Start, curvenet.End} {
			p := ctx.view.Apply(c.DisplayPoint(e))
			dot := curve.Circle{Center: p, Radius: opts.AnchorRadius * ctx.scale}
			if c.LatchAt(e) != nil {
				ctx.fill(dot.PathElements(pathTolerance), colorLatched)
				continue
			}
			ctx.fill(dot.PathElements(pathTolerance), colorWhite)
			ctx.stroke(dot.PathElements(pathTolerance), opts.LineWidth*0.75, colorBlack)
		}
	}

	if opts.ShowLabels {
		for _, c := range curves {
			mid := ctx.view.Apply(c.Bez().Eval(0.5))
			ctx.text(int(mid.X), int(mid.Y-float64(opts.FontSize)*0.6*ctx.scale), curveLabel(c), colorBlack)
		}
	}
	if opts.Title != "" {
		ctx.text(ctx.img.Bounds().Dx()/2, int(25*ctx.scale), opts.Title, colorBlack)
	}
}

func segment(a, b curve.Point) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		_ = yield(curve.MoveTo(a)) && yield(curve.LineTo(b))
	}
}

// samplesPath returns the standalone samples as a polyline in canvas space.
func (ctx *renderContext) samplesPath(samples []curvenet.Sample, closed bool) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		for i, s := range samples {
			p := ctx.view.Apply(curve.Pt(float64(s.X), float64(s.Y)))
			el := curve.LineTo(p)
			if i == 0 {
				el = curve.MoveTo(p)
			}
			if !yield(el) {
				return
			}
		}
		if closed {
			yield(curve.ClosePath())
		}
	}
}

// stroke expands path, given in canvas space, to an outline width pixels
// wide (before supersampling) and fills it.
func (ctx *renderContext) stroke(path iter.Seq[curve.PathElement], width float64, c color.Color) {
	style := curve.DefaultStroke.WithWidth(width * ctx.scale)
	ctx.fill(curve.StrokePath(path, style, curve.StrokeOpts{}, pathTolerance), c)
}

// fill rasterizes a closed path given in canvas space. Paths with
// non-finite coordinates are skipped.
func (ctx *renderContext) fill(path iter.Seq[curve.PathElement], c color.Color) {
	els := slices.Collect(path)
	for _, el := range els {
		for _, p := range [...]curve.Point{el.P0, el.P1, el.P2} {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				return
			}
		}
	}

	b := ctx.img.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	for _, el := range els {
		switch el.Kind {
		case curve.MoveToKind:
			r.MoveTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.LineToKind:
			r.LineTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.QuadToKind:
			r.QuadTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y))
		case curve.CubicToKind:
			r.CubeTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y), float32(el.P2.X), float32(el.P2.Y))
		case curve.ClosePathKind:
			r.ClosePath()
		}
	}
	r.Draw(ctx.img, b, image.NewUniform(c), image.Point{})
}

// text draws text centred horizontally at x with its baseline near y.
func (ctx *renderContext) text(x, y int, s string, c color.Color) {
	width := font.MeasureString(ctx.face, s).Ceil()
	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
