package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataauto/pipeline"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/report"
)

func (a *app) trainCmd() *cobra.Command {
	var (
		target      string
		modelType   string
		testSize    float64
		randomState int64
		nEstimators int
		outModel    string
		outReport   string
	)
	cmd := &cobra.Command{
		Use:   "train <path>",
		Short: "Train a random forest model and evaluate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stageTrain, func() error {
				kind, err := pipeline.ParseModelKind(modelType)
				if err != nil {
					return err
				}
				t, err := a.readTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				opts := pipeline.TrainOptions{
					Target:      target,
					Kind:        kind,
					TestSize:    a.cfg.TestSize,
					RandomState: a.cfg.RandomState,
					NEstimators: a.cfg.NEstimators,
				}
				fs := cmd.Flags()
				if fs.Changed("test-size") {
					opts.TestSize = testSize
				}
				if fs.Changed("random-state") {
					opts.RandomState = randomState
				}
				if fs.Changed("n-estimators") {
					opts.NEstimators = nEstimators
				}

				res, err := pipeline.Train(cmd.Context(), t, opts)
				if err != nil {
					return err
				}
				if err := res.Pipeline.Save(outModel); err != nil {
					return err
				}
				if err := os.WriteFile(outReport, []byte(res.Report), 0o644); err != nil {
					return errors.NewIOError("write report", outReport, err)
				}

				a.success("Model trained successfully.")
				a.println("%s", res.Report)
				a.success("Trained model saved to %s.", outModel)
				a.success("Model report saved to %s.", outReport)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&target, "target", "", "target column")
	fs.StringVar(&modelType, "model-type", "", "model type: regressor or classifier")
	fs.Float64Var(&testSize, "test-size", pipeline.DefaultTestSize, "fraction of rows held out for evaluation")
	fs.Int64Var(&randomState, "random-state", pipeline.DefaultRandomState, "seed for the split and the forest")
	fs.IntVar(&nEstimators, "n-estimators", 100, "number of trees")
	fs.StringVar(&outModel, "output-model", "", "path to save the trained model")
	fs.StringVar(&outReport, "output-report", "", "path to save the evaluation report")
	for _, name := range []string{"target", "model-type", "output-model", "output-report"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "report <path>",
		Short: "Generate a PDF report with summary statistics and a correlation heatmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stageReport, func() error {
				t, err := a.readTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := report.Generate(t, output); err != nil {
					return err
				}
				a.success("Report generated at %s.", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&output, "output-report", "report.pdf", "path of the PDF report")
	return cmd
}
