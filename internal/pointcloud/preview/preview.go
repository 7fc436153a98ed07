// Package preview renders decoded bundles to PNG for quick inspection.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/pointcloud-decoder/internal/fsutil"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/decode"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// ErrNothingToPlot is returned for bundles without positions or points.
var ErrNothingToPlot = errors.New("bundle has no positions to plot")

// Options controls the rendered image. Zero values pick defaults.
type Options struct {
	Title     string
	Width     vg.Length // default 8in
	Height    vg.Length // default 8in
	MaxPoints int       // points beyond this are skipped by stride; 0 means 50000
	Radius    vg.Length // glyph radius, default 0.5pt
}

const defaultMaxPoints = 50000

var (
	pointColor = color.RGBA{R: 40, G: 90, B: 160, A: 255}
	boxColor   = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// TopDown writes an X/Y scatter of b's positions with its tight box outline
// to a PNG at path on fsys, creating parent directories as needed. Nothing is
// written when b has nothing to plot.
func TopDown(fsys fsutil.FileSystem, b *decode.Bundle, path string, opts Options) error {
	var buf bytes.Buffer
	if err := Render(b, &buf, opts); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save preview plot: %w", err)
	}
	return nil
}

// Render writes the TopDown PNG to w.
func Render(b *decode.Bundle, w io.Writer, opts Options) error {
	p, opts, err := build(b, opts)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return fmt.Errorf("render preview plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write preview plot: %w", err)
	}
	return nil
}

// build lays out the plot. Points take their decoded RGB when the bundle
// carries colours.
func build(b *decode.Bundle, opts Options) (*plot.Plot, Options, error) {
	if b == nil || b.NumPoints == 0 {
		return nil, opts, ErrNothingToPlot
	}
	pos, ok := b.Column(schema.PositionCartesian)
	if !ok {
		return nil, opts, ErrNothingToPlot
	}
	opts = withDefaults(opts)

	step := 1
	if b.NumPoints > opts.MaxPoints {
		step = (b.NumPoints + opts.MaxPoints - 1) / opts.MaxPoints
	}

	pts := make(plotter.XYs, 0, b.NumPoints/step+1)
	idx := make([]int, 0, cap(pts))
	for i := 0; i < b.NumPoints; i += step {
		pts = append(pts, plotter.XY{X: float64(pos.Float32[i*3]), Y: float64(pos.Float32[i*3+1])})
		idx = append(idx, i)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%s (%d points)", nodeLabel(b.Name), b.NumPoints)
	}
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, opts, err
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = opts.Radius
	scatter.GlyphStyle.Color = pointColor
	if rgb, ok := b.Column(schema.ColorPacked); ok {
		base := scatter.GlyphStyle
		scatter.GlyphStyleFunc = func(k int) draw.GlyphStyle {
			s := base
			o := idx[k] * rgb.Components
			s.Color = color.RGBA{R: rgb.Uint8[o], G: rgb.Uint8[o+1], B: rgb.Uint8[o+2], A: 255}
			return s
		}
	}
	p.Add(scatter)

	outline, err := plotter.NewLine(boxOutline(b.TightBox))
	if err != nil {
		return nil, opts, err
	}
	outline.Color = boxColor
	outline.Width = vg.Points(1)
	p.Add(outline)
	p.Legend.Add("tight box", outline)
	p.Legend.Top = true
	p.Legend.Left = false

	return p, opts, nil
}

func withDefaults(o Options) Options {
	if o.Width <= 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 8 * vg.Inch
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = defaultMaxPoints
	}
	if o.Radius <= 0 {
		o.Radius = vg.Points(0.5)
	}
	return o
}

// boxOutline closes the X/Y rectangle of box.
func boxOutline(box decode.Box) plotter.XYs {
	return plotter.XYs{
		{X: box.Min[0], Y: box.Min[1]},
		{X: box.Max[0], Y: box.Min[1]},
		{X: box.Max[0], Y: box.Max[1]},
		{X: box.Min[0], Y: box.Max[1]},
		{X: box.Min[0], Y: box.Min[1]},
	}
}

func nodeLabel(name string) string {
	if name == "" {
		return "node"
	}
	return name
}
