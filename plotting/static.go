package plotting

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

const (
	defaultWidth  = 6 * vg.Inch
	defaultHeight = 4 * vg.Inch
)

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts
}

func histogramPlot(column string, vals []float64, bins int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Distribution of " + column
	p.X.Label.Text = column
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return nil, errors.Wrapf(err, "histogram of '%s'", column)
	}
	h.FillColor = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	p.Add(h)

	// 度数に合わせて密度曲線を n × 階級幅 倍する
	lo, hi := floats.Min(vals), floats.Max(vals)
	xs, ys := gaussianKDE(vals, lo, hi, kdePoints)
	if xs != nil {
		floats.Scale(float64(len(vals))*h.Width, ys)
		l, err := plotter.NewLine(xys(xs, ys))
		if err != nil {
			return nil, errors.Wrapf(err, "density of '%s'", column)
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = color.RGBA{R: 31, G: 58, B: 110, A: 255}
		p.Add(l)
	}
	return p, nil
}

func scatterPlot(x, y string, xs, ys []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", x, y)
	p.X.Label.Text = x
	p.Y.Label.Text = y

	s, err := plotter.NewScatter(xys(xs, ys))
	if err != nil {
		return nil, errors.Wrapf(err, "scatter of '%s' and '%s'", x, y)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s, plotter.NewGrid())
	return p, nil
}

func boxPlot(column string, vals []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Box plot of " + column
	p.Y.Label.Text = column

	b, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(vals))
	if err != nil {
		return nil, errors.Wrapf(err, "box plot of '%s'", column)
	}
	p.Add(b)
	p.NominalX(column)
	return p, nil
}

func linePlot(x, y string, xs, ys []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s over %s", y, x)
	p.X.Label.Text = x
	p.Y.Label.Text = y

	pts := xys(xs, ys)
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrapf(err, "line of '%s' over '%s'", y, x)
	}
	l.LineStyle.Width = vg.Points(1.5)
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrapf(err, "line of '%s' over '%s'", y, x)
	}
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(l, s, plotter.NewGrid())
	return p, nil
}

// corrGrid は相関行列を plotter.GridXYZ として見せる
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (c, r int)   { n := g.m.SymmetricDim(); return n, n }
func (g corrGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func heatmapPlot(corr *mat.SymDense, names []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Correlation Heatmap"

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	h := plotter.NewHeatMap(corrGrid{m: corr}, cm.Palette(255))
	h.Min, h.Max = -1, 1
	h.NaN = color.Gray{Y: 200}
	p.Add(h)

	n := len(names)
	labels := plotter.XYLabels{XYs: make(plotter.XYs, 0, n*n), Labels: make([]string, 0, n*n)}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", corr.At(r, c)))
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, errors.Wrap(err, "heatmap labels")
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(l)

	p.NominalX(names...)
	p.NominalY(names...)
	return p, nil
}

func savePNG(p *plot.Plot, path string) error {
	if err := p.Save(defaultWidth, defaultHeight, path); err != nil {
		return errors.NewIOError("write plot", path, err)
	}
	return nil
}

func encodePNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, errors.Wrap(err, "render png")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "render png")
	}
	return buf.Bytes(), nil
}
