package plotting

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"
)

// renderer は go-echarts のグラフが共通に持つ出力メソッド
type renderer interface {
	Render(w io.Writer) error
}

func pageOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     "900px",
		Height:    "520px",
	})
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func histogramChart(column string, vals []float64, bins int) renderer {
	dividers, counts := histogram(vals, bins)
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = fmt.Sprintf("%s-%s", formatTick(dividers[i]), formatTick(dividers[i+1]))
		data[i] = opts.BarData{Value: c}
	}

	title := "Distribution of " + column
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		pageOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: column}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	bar.SetXAxis(labels).AddSeries("Count", data)
	return bar
}

func scatterChart(x, y string, xs, ys []float64) renderer {
	data := make([]opts.ScatterData, len(xs))
	for i := range xs {
		data[i] = opts.ScatterData{Value: []float64{xs[i], ys[i]}, SymbolSize: 8}
	}

	title := fmt.Sprintf("%s vs %s", x, y)
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		pageOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: x, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: y, Type: "value"}),
	)
	sc.AddSeries(y, data)
	return sc
}

func boxChart(column string, vals []float64) renderer {
	s := boxStats(vals)

	title := "Box plot of " + column
	bp := charts.NewBoxPlot()
	bp.SetGlobalOptions(
		pageOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	bp.SetXAxis([]string{column}).AddSeries(column, []opts.BoxPlotData{{Value: s[:]}})
	return bp
}

func lineChart(x, y string, xs, ys []float64) renderer {
	labels := make([]string, len(xs))
	data := make([]opts.LineData, len(ys))
	for i := range xs {
		labels[i] = formatTick(xs[i])
		data[i] = opts.LineData{Value: ys[i]}
	}

	title := fmt.Sprintf("%s over %s", y, x)
	ln := charts.NewLine()
	ln.SetGlobalOptions(
		pageOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: x}),
		charts.WithYAxisOpts(opts.YAxis{Name: y}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	ln.SetXAxis(labels).AddSeries(y, data)
	return ln
}

func heatmapChart(corr *mat.SymDense, names []string) renderer {
	n := len(names)
	data := make([]opts.HeatMapData, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := corr.At(r, c)
			var cell interface{} = "-"
			if !math.IsNaN(v) {
				cell, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, cell}})
		}
	}

	title := "Correlation Heatmap"
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		pageOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: names}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: names}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min: -1,
			Max: 1,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#3b4cc0", "#f7f7f7", "#b40426"},
			},
		}),
	)
	hm.SetXAxis(names).AddSeries("correlation", data)
	return hm
}
