// Package plotting は表の列から PNG（gonum/plot）と対話的な HTML（go-echarts）の
// グラフを書き出します。
package plotting

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/table"
)

// chart は同じデータから作った静的・対話的の二つの表現
type chart struct {
	name   string
	static func() (*plot.Plot, error)
	html   func() renderer
}

var unsafeChars = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")

func fileName(base string) string {
	return unsafeChars.Replace(base)
}

// write は chart を OutputDir に書き出し、書き出したパスを返す
func write(c chart, opts Options) ([]string, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewIOError("plot", dir, err)
	}

	p, err := c.static()
	if err != nil {
		return nil, err
	}
	pngPath := filepath.Join(dir, fileName(c.name)+".png")
	if err := savePNG(p, pngPath); err != nil {
		return nil, err
	}
	paths := []string{pngPath}

	if opts.Interactive {
		htmlPath := filepath.Join(dir, fileName(c.name)+".html")
		if err := writeHTMLFile(c.html(), htmlPath); err != nil {
			return nil, err
		}
		paths = append(paths, htmlPath)
	}

	logger := log.GetLoggerWithName("plotting")
	for _, path := range paths {
		logger.Info("plot saved", log.OperationKey, log.OperationPlot, log.OutputKey, path)
	}
	return paths, nil
}

func writeHTMLFile(r renderer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("plot", path, err)
	}
	if err := r.Render(f); err != nil {
		f.Close()
		return errors.NewIOError("plot", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewIOError("plot", path, err)
	}
	return nil
}

// Histogram は列の分布を <col>_histogram.png に書き出します。
func Histogram(t *table.Table, column string, opts Options) ([]string, error) {
	vals, err := values("Histogram", t, column)
	if err != nil {
		return nil, err
	}
	bins := opts.bins()
	return write(chart{
		name:   column + "_histogram",
		static: func() (*plot.Plot, error) { return histogramPlot(column, vals, bins) },
		html:   func() renderer { return histogramChart(column, vals, bins) },
	}, opts)
}

// Scatter は二列の散布図を <x>_vs_<y>_scatter.png に書き出します。
func Scatter(t *table.Table, x, y string, opts Options) ([]string, error) {
	xs, ys, err := pairs("Scatter", t, x, y)
	if err != nil {
		return nil, err
	}
	return write(chart{
		name:   fmt.Sprintf("%s_vs_%s_scatter", x, y),
		static: func() (*plot.Plot, error) { return scatterPlot(x, y, xs, ys) },
		html:   func() renderer { return scatterChart(x, y, xs, ys) },
	}, opts)
}

// Box は列の箱ひげ図を <col>_boxplot.png に書き出します。
func Box(t *table.Table, column string, opts Options) ([]string, error) {
	vals, err := values("Box", t, column)
	if err != nil {
		return nil, err
	}
	return write(chart{
		name:   column + "_boxplot",
		static: func() (*plot.Plot, error) { return boxPlot(column, vals) },
		html:   func() renderer { return boxChart(column, vals) },
	}, opts)
}

// Heatmap は相関行列を correlation_heatmap.png に書き出します。
// columns が空なら全数値列を使います。
func Heatmap(t *table.Table, columns []string, opts Options) ([]string, error) {
	corr, names, err := correlation("Heatmap", t, columns)
	if err != nil {
		return nil, err
	}
	return write(chart{
		name:   "correlation_heatmap",
		static: func() (*plot.Plot, error) { return heatmapPlot(corr, names) },
		html:   func() renderer { return heatmapChart(corr, names) },
	}, opts)
}

// Line は x の昇順に y を結んだ折れ線を <y>_over_<x>_line.png に書き出します。
func Line(t *table.Table, x, y string, opts Options) ([]string, error) {
	xs, ys, err := sortedPairs("Line", t, x, y)
	if err != nil {
		return nil, err
	}
	return write(chart{
		name:   fmt.Sprintf("%s_over_%s_line", y, x),
		static: func() (*plot.Plot, error) { return linePlot(x, y, xs, ys) },
		html:   func() renderer { return lineChart(x, y, xs, ys) },
	}, opts)
}

// Plot は spec.Kind に応じて各関数に振り分けます。
func Plot(t *table.Table, spec Spec, opts Options) ([]string, error) {
	switch spec.Kind {
	case KindHistogram:
		return Histogram(t, spec.Column, opts)
	case KindScatter:
		return Scatter(t, spec.X, spec.Y, opts)
	case KindBox:
		return Box(t, spec.Column, opts)
	case KindHeatmap:
		return Heatmap(t, spec.Columns, opts)
	case KindLine:
		return Line(t, spec.X, spec.Y, opts)
	}
	return nil, errors.NewUnsupportedOptionError(errors.OptionPlotType, spec.Kind.String(), kindNames)
}

// WriteHTML は対話的なグラフの HTML を w に書きます。ダッシュボードから使います。
func WriteHTML(w io.Writer, t *table.Table, spec Spec, bins int) error {
	if bins <= 0 {
		bins = DefaultBins
	}
	var r renderer
	switch spec.Kind {
	case KindHistogram:
		vals, err := values("WriteHTML", t, spec.Column)
		if err != nil {
			return err
		}
		r = histogramChart(spec.Column, vals, bins)
	case KindScatter:
		xs, ys, err := pairs("WriteHTML", t, spec.X, spec.Y)
		if err != nil {
			return err
		}
		r = scatterChart(spec.X, spec.Y, xs, ys)
	case KindBox:
		vals, err := values("WriteHTML", t, spec.Column)
		if err != nil {
			return err
		}
		r = boxChart(spec.Column, vals)
	case KindHeatmap:
		corr, names, err := correlation("WriteHTML", t, spec.Columns)
		if err != nil {
			return err
		}
		r = heatmapChart(corr, names)
	case KindLine:
		xs, ys, err := sortedPairs("WriteHTML", t, spec.X, spec.Y)
		if err != nil {
			return err
		}
		r = lineChart(spec.X, spec.Y, xs, ys)
	default:
		return errors.NewUnsupportedOptionError(errors.OptionPlotType, spec.Kind.String(), kindNames)
	}
	return r.Render(w)
}

// HeatmapPNG は相関ヒートマップを PNG のバイト列として返します。
func HeatmapPNG(t *table.Table, columns []string, w, h vg.Length) ([]byte, error) {
	corr, names, err := correlation("HeatmapPNG", t, columns)
	if err != nil {
		return nil, err
	}
	p, err := heatmapPlot(corr, names)
	if err != nil {
		return nil, err
	}
	return encodePNG(p, w, h)
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// IsPNG は data が PNG の署名で始まるかを返します。
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngMagic)
}
