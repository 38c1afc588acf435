package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataauto/preprocessing"
)

func (a *app) cleanCmd() *cobra.Command {
	var (
		strategy string
		columns  []string
		value    string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "clean <path>",
		Short: "Fill missing values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stageClean, func() error {
				s, err := preprocessing.ParseStrategy(strategy)
				if err != nil {
					return err
				}
				t, err := a.readTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				var v *string
				if cmd.Flags().Changed("value") {
					v = &value
				}
				res, err := preprocessing.FillMissing(t, s, columns, v)
				if err != nil {
					return err
				}
				if err := a.writeTable(cmd.Context(), t, output); err != nil {
					return err
				}

				names := columns
				if len(names) == 0 {
					names = t.Names()
				}
				a.println("Missing values filled using %s strategy for columns: %s.", s, strings.Join(names, ", "))
				if len(res.Skipped) > 0 {
					a.println("Skipped columns: %s.", strings.Join(res.Skipped, ", "))
				}
				a.success("Cleaned data saved to %s.", output)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&strategy, "strategy", "mean", "fill strategy: mean, median, mode, constant")
	fs.StringSliceVar(&columns, "columns", nil, "columns to clean (default: all columns)")
	fs.StringVar(&value, "value", "", "fill value for the constant strategy")
	fs.StringVar(&output, "output-file", "", "path to save the cleaned data")
	_ = cmd.MarkFlagRequired("output-file")
	return cmd
}

func (a *app) removeOutlierCmd() *cobra.Command {
	var (
		column     string
		method     string
		multiplier float64
		output     string
	)
	cmd := &cobra.Command{
		Use:   "remove-outlier <path>",
		Short: "Remove rows whose value in a column is an outlier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stageOutlier, func() error {
				m, err := preprocessing.ParseOutlierMethod(method)
				if err != nil {
					return err
				}
				t, err := a.readTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := preprocessing.RemoveOutliers(t, column, m, multiplier)
				if err != nil {
					return err
				}
				if err := a.writeTable(cmd.Context(), res.Table, output); err != nil {
					return err
				}

				a.println("Removed %d outliers from column '%s' using %s method.", res.Removed, column, m)
				if res.MissingDropped > 0 {
					a.println("%d of them had no value in '%s'.", res.MissingDropped, column)
				}
				a.success("Cleaned data saved to %s.", output)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&column, "column", "", "column to remove outliers from")
	fs.StringVar(&method, "method", "IQR", "outlier method: IQR or Z-score")
	fs.Float64Var(&multiplier, "multiplier", preprocessing.DefaultMultiplier, "IQR multiplier or z-score threshold")
	fs.StringVar(&output, "output-file", "", "path to save the data without outliers")
	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("output-file")
	return cmd
}

func (a *app) scaleCmd() *cobra.Command {
	var (
		columns []string
		method  string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "scale <path>",
		Short: "Scale numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stageScale, func() error {
				m, err := preprocessing.ParseScaleMethod(method)
				if err != nil {
					return err
				}
				t, err := a.readTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := preprocessing.ScaleColumns(t, columns, m)
				if err != nil {
					return err
				}
				if err := a.writeTable(cmd.Context(), t, output); err != nil {
					return err
				}

				a.println("Columns %s scaled using %s method.", strings.Join(res.Scaled, ", "), m)
				if len(res.Skipped) > 0 {
					a.println("Skipped non-numeric columns: %s.", strings.Join(res.Skipped, ", "))
				}
				a.success("Scaled data saved to %s.", output)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVar(&columns, "columns", nil, "columns to scale")
	fs.StringVar(&method, "method", "standard", "scaling method: standard, minmax, robust")
	fs.StringVar(&output, "output-file", "", "path to save the scaled data")
	_ = cmd.MarkFlagRequired("columns")
	_ = cmd.MarkFlagRequired("output-file")
	return cmd
}
