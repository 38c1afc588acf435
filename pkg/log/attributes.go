// Package log defines standard attribute keys for data-pipeline operations.
//
// Keys follow a hierarchical naming convention ("data.rows", "schedule.at")
// so records from different stages can be filtered together.
package log

// Operation context
const (
	// OperationKey names the CLI stage being performed.
	// Standard values are the Operation* constants below.
	OperationKey = "op"

	// ComponentKey identifies the package emitting the record.
	// Examples: "dataio", "preprocessing", "scheduler"
	ComponentKey = "component"

	// ModelNameKey identifies an estimator or transformer type.
	// Examples: "RandomForestRegressor", "StandardScaler"
	ModelNameKey = "model.name"
)

// Data shape and location
const (
	PathKey    = "data.path"
	FormatKey  = "data.format"
	RowsKey    = "data.rows"
	ColumnsKey = "data.columns"
	ColumnKey  = "data.column"

	// SheetKey is the Excel sheet name; TableKey the SQL table name.
	SheetKey  = "data.sheet"
	TableKey  = "data.table"
	DBTypeKey = "db.type"
)

// Preprocessing
const (
	StrategyKey   = "preprocess.strategy"
	MethodKey     = "preprocess.method"
	FilledKey     = "preprocess.filled"
	RemovedKey    = "preprocess.removed"
	LowerBoundKey = "preprocess.lower"
	UpperBoundKey = "preprocess.upper"
)

// Model training
const (
	TargetKey     = "train.target"
	ModelKindKey  = "train.kind"
	EstimatorsKey = "train.n_estimators"
	RandomSeedKey = "train.random_state"
	TrainRowsKey  = "train.rows"
	TestRowsKey   = "train.test_rows"
	FeaturesKey   = "train.features"
	DurationMsKey = "perf.duration_ms"
	MSEKey        = "metrics.mse"
	R2ScoreKey    = "metrics.r2"
	AccuracyKey   = "metrics.accuracy"
)

// Scheduling
const (
	TriggerIDKey  = "schedule.trigger_id"
	ScheduleAtKey = "schedule.at"
	NextRunKey    = "schedule.next_run"
	CommandKey    = "schedule.command"
	ArgsKey       = "schedule.args"
	ExitCodeKey   = "schedule.exit_code"
)

// Outputs
const (
	OutputKey = "output.path"
	AddrKey   = "http.addr"
)

// Error context
const (
	ErrorKey      = "error"
	ErrorTypeKey  = "error.type"
	StacktraceKey = "error.stacktrace"
)

// Standard operation names.
const (
	OperationLoad          = "load"
	OperationSave          = "save"
	OperationClean         = "clean"
	OperationRemoveOutlier = "remove-outlier"
	OperationScale         = "scale"
	OperationPlot          = "plot"
	OperationTrain         = "train"
	OperationReport        = "report"
	OperationSchedule      = "schedule"
	OperationDashboard     = "dashboard"

	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
)
