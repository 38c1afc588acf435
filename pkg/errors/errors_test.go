package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "StandardScaler.Fit",
			kind:     "empty data",
			err:      fmt.Errorf("test error"),
			wantMsg:  "dataauto: StandardScaler.Fit: empty data: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "RandomForestRegressor.Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "dataauto: RandomForestRegressor.Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			// 基本的なエラーメッセージの確認
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestColumnNotFoundError(t *testing.T) {
	err := NewColumnNotFoundError("RemoveOutliers", "Height", []string{"Age", "Salary"})

	want := "dataauto: RemoveOutliers: column 'Height' does not exist (available: Age, Salary)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	if !Is(err, ErrColumnNotFound) {
		t.Error("Expected Is(err, ErrColumnNotFound) to be true")
	}
	if Is(err, ErrTypeMismatch) {
		t.Error("ColumnNotFoundError must not match ErrTypeMismatch")
	}

	var cnf *ColumnNotFoundError
	if !As(err, &cnf) {
		t.Fatal("Error should be castable to *ColumnNotFoundError")
	}
	if cnf.Column != "Height" {
		t.Errorf("Column = %q, want Height", cnf.Column)
	}
}

func TestTypeMismatchError(t *testing.T) {
	err := NewTypeMismatchError("RemoveOutliers", "Name", "numeric", "text")

	want := "dataauto: RemoveOutliers: column 'Name' is text, expected numeric"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !Is(Wrap(err, "Error removing outliers"), ErrTypeMismatch) {
		t.Error("Expected wrapped TypeMismatchError to match ErrTypeMismatch")
	}
}

func TestUnsupportedOptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		option  string
		wantMsg string
	}{
		{
			name:    "strategy",
			err:     NewUnsupportedStrategyError("average", []string{"mean", "median"}),
			option:  OptionStrategy,
			wantMsg: "dataauto: unsupported strategy 'average' (choose from: mean, median)",
		},
		{
			name:    "method",
			err:     NewUnsupportedMethodError("MAD", []string{"IQR", "Z-score"}),
			option:  OptionMethod,
			wantMsg: "dataauto: unsupported method 'MAD' (choose from: IQR, Z-score)",
		},
		{
			name:    "model type",
			err:     NewUnsupportedModelTypeError("svm", []string{"regressor", "classifier"}),
			option:  OptionModelType,
			wantMsg: "dataauto: unsupported model type 'svm' (choose from: regressor, classifier)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.wantMsg)
			}
			if !Is(tt.err, ErrUnsupported) {
				t.Error("Expected Is(err, ErrUnsupported) to be true")
			}
			var uoe *UnsupportedOptionError
			if !As(tt.err, &uoe) || uoe.Option != tt.option {
				t.Errorf("Expected UnsupportedOptionError with option %q", tt.option)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	cause := fmt.Errorf("no such file or directory")
	err := NewIOError("read csv", "missing.csv", cause)

	if !Is(err, ErrIOFailure) {
		t.Error("Expected Is(err, ErrIOFailure) to be true")
	}
	if !Is(err, cause) {
		t.Error("IOError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "missing.csv") {
		t.Errorf("Error() should name the target: %v", err)
	}
}

func TestMalformedScheduleError(t *testing.T) {
	err := NewMalformedScheduleError("25:00", "hour out of range")

	want := "dataauto: malformed schedule time '25:00': hour out of range (expected 24-hour HH:MM)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !Is(err, ErrMalformedSchedule) {
		t.Error("Expected Is(err, ErrMalformedSchedule) to be true")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("OneHotEncoder", "Transform")

	want := "dataauto: OneHotEncoder: this model is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("MSE", 10, 8, 0)

	want := "dataauto: MSE: dimension mismatch on axis 0 (rows). Expected 10, got 8"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarn_RoutesToZerologFunc(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewColumnSkippedWarning("ScaleColumns", "Name", "column is not numeric"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	want := "ScaleColumns: skipping column 'Name': column is not numeric"
	if got[0].Error() != want {
		t.Errorf("warning = %q, want %q", got[0].Error(), want)
	}
}

func TestWarn_FallsBackToHandler(t *testing.T) {
	var got error
	SetWarningHandler(func(w error) { got = w })
	defer SetWarningHandler(nil)

	w := NewUndefinedMetricWarning("precision", "no predicted samples", 0)
	Warn(w)

	if got != w {
		t.Errorf("handler received %v, want %v", got, w)
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d rows, got %d", "TrainTestSplit", 10, 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in TrainTestSplit: expected 10 rows, got 0"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(1, 0); got != 0 {
		t.Errorf("SafeDivide(1, 0) = %v, want 0", got)
	}
	if got := SafeDivide(3, 4); got != 0.75 {
		t.Errorf("SafeDivide(3, 4) = %v, want 0.75", got)
	}
}
