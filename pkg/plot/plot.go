// Package plot rasterizes spring trajectories into images, for comparing
// presets side by side.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// Series is one trajectory to draw.
type Series struct {
	Name    string
	Samples []animation.Sample
	// Color of the line. Nil picks from Palette by series index.
	Color color.Color
}

// Options controls the image layout. Zero fields take the defaults.
type Options struct {
	Width, Height int
	Title         string
	LineWidth     float64
	Background    color.Color
	Foreground    color.Color
	// Face draws labels. Nil means basicfont.Face7x13.
	Face font.Face
}

const (
	defaultWidth  = 640
	defaultHeight = 360

	marginLeft   = 64
	marginRight  = 16
	marginTop    = 28
	marginBottom = 32
)

var palette = []color.RGBA{
	colornames.Royalblue,
	colornames.Crimson,
	colornames.Seagreen,
	colornames.Darkorange,
	colornames.Mediumpurple,
	colornames.Teal,
	colornames.Goldenrod,
	colornames.Slategray,
}

// Palette returns the default color of series i.
func Palette(i int) color.RGBA {
	return palette[i%len(palette)]
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 2
	}
	if o.Background == nil {
		o.Background = colornames.White
	}
	if o.Foreground == nil {
		o.Foreground = colornames.Dimgray
	}
	if o.Face == nil {
		o.Face = basicfont.Face7x13
	}
	return o
}

// frame maps sample space onto the plot area.
type frame struct {
	area       image.Rectangle
	tMax       float64
	vMin, vMax float64
}

func (f frame) x(t time.Duration) float32 {
	return float32(float64(f.area.Min.X) + float64(t)/f.tMax*float64(f.area.Dx()))
}

func (f frame) y(v float64) float32 {
	return float32(float64(f.area.Max.Y) - (v-f.vMin)/(f.vMax-f.vMin)*float64(f.area.Dy()))
}

// Render draws every series on shared axes: time on x, value on y.
func Render(series []Series, opts Options) (*image.RGBA, error) {
	const op = "plot.Render"
	if len(series) == 0 {
		return nil, errors.Config(op, "nothing to plot")
	}
	opts = opts.withDefaults()
	area := image.Rect(marginLeft, marginTop, opts.Width-marginRight, opts.Height-marginBottom)
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return nil, errors.Config(op, "image %dx%d is too small", opts.Width, opts.Height)
	}

	f := frame{area: area, vMin: math.Inf(1), vMax: math.Inf(-1)}
	for i, s := range series {
		if len(s.Samples) == 0 {
			return nil, errors.Config(op, "series %d (%s) has no samples", i, s.Name)
		}
		for _, smp := range s.Samples {
			if math.IsNaN(smp.Value) || math.IsInf(smp.Value, 0) {
				return nil, errors.Config(op, "series %s: non-finite value at frame %d", s.Name, smp.Frame)
			}
			f.vMin = min(f.vMin, smp.Value)
			f.vMax = max(f.vMax, smp.Value)
			f.tMax = max(f.tMax, float64(smp.Time))
		}
	}
	if f.tMax == 0 {
		f.tMax = float64(time.Second)
	}
	if f.vMax == f.vMin {
		f.vMin--
		f.vMax++
	}
	pad := (f.vMax - f.vMin) * 0.05
	f.vMin -= pad
	f.vMax += pad

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	r := vector.NewRasterizer(opts.Width, opts.Height)
	fg := image.NewUniform(opts.Foreground)
	stroke(r, img, fg, float32(area.Min.X), float32(area.Min.Y), float32(area.Min.X), float32(area.Max.Y), 1)
	stroke(r, img, fg, float32(area.Min.X), float32(area.Max.Y), float32(area.Max.X), float32(area.Max.Y), 1)

	for i, s := range series {
		c := s.Color
		if c == nil {
			c = Palette(i)
		}
		src := image.NewUniform(c)
		prev := s.Samples[0]
		for _, smp := range s.Samples[1:] {
			stroke(r, img, src, f.x(prev.Time), f.y(prev.Value), f.x(smp.Time), f.y(smp.Value), float32(opts.LineWidth))
			prev = smp
		}
	}

	d := &font.Drawer{Dst: img, Src: fg, Face: opts.Face}
	label(d, opts.Title, area.Min.X, area.Min.Y-10)
	label(d, formatValue(f.vMax-pad), 4, int(f.y(f.vMax-pad))+4)
	label(d, formatValue(f.vMin+pad), 4, int(f.y(f.vMin+pad))+4)
	label(d, "0", area.Min.X, area.Max.Y+18)
	end := time.Duration(f.tMax).Round(time.Millisecond).String()
	label(d, end, area.Max.X-d.MeasureString(end).Round(), area.Max.Y+18)

	// Legend, right aligned under the top edge.
	y := area.Min.Y + 14
	for i, s := range series {
		if s.Name == "" {
			continue
		}
		c := s.Color
		if c == nil {
			c = Palette(i)
		}
		d.Src = image.NewUniform(c)
		label(d, s.Name, area.Max.X-d.MeasureString(s.Name).Round()-4, y)
		y += 14
	}
	return img, nil
}

// stroke draws a straight segment of the given width.
func stroke(r *vector.Rasterizer, dst draw.Image, src image.Image, x0, y0, x1, y1, width float32) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	b := dst.Bounds()
	r.Reset(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	r.MoveTo(x0+nx, y0+ny)
	r.LineTo(x1+nx, y1+ny)
	r.LineTo(x1-nx, y1-ny)
	r.LineTo(x0-nx, y0-ny)
	r.ClosePath()
	r.Draw(dst, b, src, image.Point{})
}

func label(d *font.Drawer, s string, x, y int) {
	if s == "" {
		return
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3g", v)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
