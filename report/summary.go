package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/YuminosukeSato/dataauto/table"
)

var (
	numericHeader = []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	textHeader    = []string{"column", "count", "unique", "top", "freq"}
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Summary は列ごとの要約統計を表として w に書きます。
// 数値列とテキスト列はそれぞれ別の表になります。
func Summary(w io.Writer, t *table.Table) error {
	var numeric, text [][]string
	for _, s := range t.Describe() {
		if s.Kind == table.Numeric {
			numeric = append(numeric, []string{
				s.Name, strconv.Itoa(s.Count),
				num(s.Mean), num(s.Std), num(s.Min),
				num(s.Q25), num(s.Q50), num(s.Q75), num(s.Max),
			})
			continue
		}
		text = append(text, []string{
			s.Name, strconv.Itoa(s.Count), strconv.Itoa(s.Unique), s.Top, strconv.Itoa(s.Freq),
		})
	}

	if len(numeric) > 0 {
		render(w, numericHeader, numeric)
	}
	if len(text) > 0 {
		if len(numeric) > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		render(w, textHeader, text)
	}
	return nil
}

func render(w io.Writer, header []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	tw.AppendBulk(rows)
	tw.Render()
}
