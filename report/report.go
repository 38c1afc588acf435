// Package report は要約統計と相関ヒートマップをまとめた PDF レポートを作ります。
package report

import (
	"bytes"
	"io"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/plotting"
	"github.com/YuminosukeSato/dataauto/table"
)

// Title はレポートの見出し
const Title = "DataAuto Report"

const (
	heatmapName  = "correlation_heatmap"
	heatmapWidth = 150.0 // mm
	lineHeight   = 3.5
)

// Generate はレポートを path に PDF として書き出します。
func Generate(t *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("report", path, err)
	}
	if err := Write(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.NewIOError("report", path, err)
	}
	log.GetLoggerWithName("report").Info("report generated",
		log.OperationKey, log.OperationReport,
		log.OutputKey, path,
		log.RowsKey, t.NRows(),
		log.ColumnsKey, t.NCols(),
	)
	return nil
}

// Write はレポートの PDF を w に書きます。
func Write(w io.Writer, t *table.Table) error {
	if t == nil || t.NCols() == 0 {
		return errors.NewValueError("report", "cannot build a report from an empty table")
	}

	var summary strings.Builder
	if err := Summary(&summary, t); err != nil {
		return errors.Wrap(err, "summary statistics")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(Title, true)
	pdf.SetCreator("dataauto", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, "Summary Statistics")
	pdf.SetFont("Courier", "", 7)
	for _, line := range strings.Split(strings.TrimRight(summary.String(), "\n"), "\n") {
		pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
	}

	if len(t.NumericNames()) >= 2 {
		img, err := plotting.HeatmapPNG(t, nil, 6*vg.Inch, 5*vg.Inch)
		if err != nil {
			return errors.Wrap(err, "correlation heatmap")
		}
		addHeatmap(pdf, img)
	}

	if err := pdf.Output(w); err != nil {
		return errors.NewIOError("report", "pdf output", err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func addHeatmap(pdf *fpdf.Fpdf, img []byte) {
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader(heatmapName, opt, bytes.NewReader(img))
	if info == nil {
		return
	}
	height := heatmapWidth * info.Height() / info.Width()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+height+16 > pageH-bottom {
		pdf.AddPage()
	} else {
		pdf.Ln(6)
	}
	section(pdf, "Correlation Heatmap")

	pageW, _ := pdf.GetPageSize()
	x := (pageW - heatmapWidth) / 2
	pdf.ImageOptions(heatmapName, x, pdf.GetY(), heatmapWidth, height, true, opt, 0, "")
}
