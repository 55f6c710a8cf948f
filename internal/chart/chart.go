// Package chart draws the rolling altitude history as a PNG image.
package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/shaunagostinho/drone-telemetry/internal/render"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

const (
	dpi      float64 = 72
	fontSize float64 = 12

	marginLeft   = 64
	marginRight  = 12
	marginTop    = 26
	marginBottom = 14
	gridLines    = 4
)

var (
	colorBackground = color.RGBA{0x00, 0x11, 0x00, 0xff}
	colorGrid       = color.RGBA{0x00, 0x33, 0x00, 0xff}
	colorLine       = color.RGBA{0x00, 0xff, 0x41, 0xff}
	colorText       = color.RGBA{0x00, 0xcc, 0x33, 0xff}
)

// Renderer draws altitude charts of a fixed size. It is safe for
// concurrent use; the freetype context is shared under a mutex.
type Renderer struct {
	mu      sync.Mutex
	context *freetype.Context
	width   int
	height  int
}

// NewRenderer parses the embedded Go Regular font and prepares a text context.
func NewRenderer(width, height int) (*Renderer, error) {
	if width <= marginLeft+marginRight || height <= marginTop+marginBottom {
		return nil, fmt.Errorf("chart: size %dx%d too small", width, height)
	}

	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetHinting(font.HintingFull)
	context.SetSrc(image.NewUniform(colorText))

	return &Renderer{context: context, width: width, height: height}, nil
}

// Render draws the sample's altitude history with min/max axis labels and a
// title line carrying the current altitude and heading.
func (r *Renderer) Render(s telemetry.Sample) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	plot := image.Rect(marginLeft, marginTop, r.width-marginRight, r.height-marginBottom)
	for i := 0; i <= gridLines; i++ {
		y := plot.Min.Y + i*(plot.Dy()-1)/gridLines
		hline(img, plot.Min.X, plot.Max.X, y, colorGrid)
	}

	history := s.AltitudeHistory
	minAlt, maxAlt := bounds(history)

	points := make([]image.Point, len(history))
	for i, v := range history {
		points[i] = image.Point{X: xFor(plot, i, len(history)), Y: yFor(plot, v, minAlt, maxAlt)}
	}
	for i := 1; i < len(points); i++ {
		line(img, points[i-1], points[i], colorLine)
	}
	if len(points) == 1 {
		img.Set(points[0].X, points[0].Y, colorLine)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)

	labels := []struct {
		text string
		pt   image.Point
	}{
		{fmt.Sprintf("ALT %s m   HDG %03.0f° %s   T+%ss", humanize.FtoaWithDigits(s.Altitude, 1),
			math.Floor(s.Heading), render.CompassPoint(s.Heading), humanize.FtoaWithDigits(s.Elapsed, 1)),
			image.Point{X: 4, Y: 16}},
		{humanize.FtoaWithDigits(maxAlt, 1) + " m", image.Point{X: 4, Y: plot.Min.Y + 10}},
		{humanize.FtoaWithDigits(minAlt, 1) + " m", image.Point{X: 4, Y: plot.Max.Y}},
	}
	for _, l := range labels {
		if _, err := r.context.DrawString(l.text, freetype.Pt(l.pt.X, l.pt.Y)); err != nil {
			return nil, fmt.Errorf("drawing label %q: %w", l.text, err)
		}
	}
	return img, nil
}

// WritePNG renders the sample and encodes it as PNG.
func (r *Renderer) WritePNG(w io.Writer, s telemetry.Sample) error {
	img, err := r.Render(s)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi++
	}
	return lo, hi
}

func xFor(plot image.Rectangle, i, n int) int {
	if n < 2 {
		return plot.Min.X
	}
	return plot.Min.X + i*(plot.Dx()-1)/(n-1)
}

func yFor(plot image.Rectangle, v, lo, hi float64) int {
	frac := (v - lo) / (hi - lo)
	return plot.Max.Y - 1 - int(math.Round(frac*float64(plot.Dy()-1)))
}

func hline(img *image.RGBA, x0, x1, y int, c color.Color) {
	for x := x0; x < x1; x++ {
		img.Set(x, y, c)
	}
}

// line draws a straight segment by stepping along its longer axis.
func line(img *image.RGBA, a, b image.Point, c color.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		img.Set(a.X, a.Y, c)
		return
	}
	for s := 0; s <= steps; s++ {
		x := a.X + int(math.Round(float64(dx*s)/float64(steps)))
		y := a.Y + int(math.Round(float64(dy*s)/float64(steps)))
		img.Set(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
