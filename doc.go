// Package dataauto automates routine data-analysis tasks from the command line
// and a small web dashboard.
//
// DataAuto chains tabular I/O, preprocessing, plotting, a random-forest
// trainer and a PDF report into one tool. Every stage can also run on a daily
// schedule.
//
// # Installation
//
//	go install github.com/YuminosukeSato/dataauto/cmd/dataauto@latest
//
// # Quick Start
//
//	dataauto load employees.csv
//	dataauto clean employees.csv --strategy median --columns Age,Salary --output-file cleaned.csv
//	dataauto remove-outlier cleaned.csv --column Salary --method IQR --output-file final.csv
//	dataauto scale final.csv --columns Age --method minmax --output-file scaled.csv
//	dataauto plot final.csv --plot-type heatmap --output-dir plots --interactive
//	dataauto train final.csv --target Salary --model-type regressor \
//	    --output-model model.gob --output-report report.txt
//	dataauto report final.csv --output-report report.pdf
//	dataauto schedule final.csv --schedule 02:00 --command train -- \
//	    --target Salary --model-type regressor --output-model model.gob --output-report report.txt
//	dataauto dashboard --addr :8501
//
// # Packages
//
//   - table: the in-memory column table every stage works on
//   - dataio: CSV, line-delimited JSON, Excel and SQL adapters
//   - preprocessing: missing-value filling, outlier removal, scaling, one-hot encoding
//   - sklearn/tree, sklearn/ensemble: CART trees and random forests on gonum matrices
//   - pipeline: preprocessing plus forest, evaluated on a seeded train/test split
//   - metrics: regression metrics and the classification report
//   - plotting: PNG charts with gonum/plot, HTML charts with go-echarts
//   - report: the PDF summary report
//   - scheduler: daily re-execution of CLI commands
//   - dashboard: upload, preview, plot and train over HTTP
//   - cli, config: the cobra command tree and viper configuration
//
// # Configuration
//
// Settings are read from ~/.dataauto/config.yaml, DATAAUTO_* environment
// variables and an optional .env file. Command-line flags take precedence.
//
// # License
//
// DataAuto is released under the MIT License.
package dataauto
