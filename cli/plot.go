package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/plotting"
)

func (a *app) plotCmd() *cobra.Command {
	var (
		plotType    string
		columns     []string
		x, y        string
		outputDir   string
		interactive bool
		bins        int
	)
	cmd := &cobra.Command{
		Use:   "plot <path>",
		Short: "Generate plots from the data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stagePlot, func() error {
				kind, err := plotting.ParseKind(plotType)
				if err != nil {
					return err
				}
				t, err := a.readTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				opts := plotting.Options{OutputDir: a.cfg.OutputDir, Interactive: interactive, Bins: bins}
				if outputDir != "" {
					opts.OutputDir = outputDir
				}

				var specs []plotting.Spec
				switch kind {
				case plotting.KindHistogram, plotting.KindBox:
					if len(columns) == 0 {
						return errors.NewValueError("plot", "please specify at least one column for "+kind.String())
					}
					for _, c := range columns {
						specs = append(specs, plotting.Spec{Kind: kind, Column: c})
					}
				case plotting.KindScatter, plotting.KindLine:
					if x == "" || y == "" {
						return errors.NewValueError("plot", "please specify both --x and --y columns for "+kind.String())
					}
					specs = append(specs, plotting.Spec{Kind: kind, X: x, Y: y})
				case plotting.KindHeatmap:
					specs = append(specs, plotting.Spec{Kind: kind, Columns: columns})
				}

				var written []string
				for _, s := range specs {
					paths, err := plotting.Plot(t, s, opts)
					if err != nil {
						return err
					}
					written = append(written, paths...)
				}
				name := kind.String()
				a.success("%s plots saved to %s.", strings.ToUpper(name[:1])+name[1:], opts.OutputDir)
				for _, p := range written {
					a.println("  %s", p)
				}
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&plotType, "plot-type", "", "plot type: histogram, scatter, box, heatmap, line")
	fs.StringSliceVar(&columns, "columns", nil, "columns to plot (histogram, box, heatmap)")
	fs.StringVar(&x, "x", "", "x-axis column (scatter, line)")
	fs.StringVar(&y, "y", "", "y-axis column (scatter, line)")
	fs.StringVar(&outputDir, "output-dir", "", "directory to save plots (default: output_dir from config)")
	fs.BoolVar(&interactive, "interactive", false, "also write interactive HTML charts")
	fs.IntVar(&bins, "bins", plotting.DefaultBins, "number of histogram bins")
	_ = cmd.MarkFlagRequired("plot-type")
	return cmd
}
