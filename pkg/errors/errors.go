// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// データ読み込み・前処理・学習・スケジューリングの各段階で発生する失敗を、
// 構造化された型として表現します。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("dataauto-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ColumnSkippedWarning は前処理で列が処理対象から外された場合の警告です。
// 例えば、テキスト列に mean 戦略を指定した場合や、数値でない列のスケーリングなど。
type ColumnSkippedWarning struct {
	Op     string
	Column string
	Reason string
}

func (w *ColumnSkippedWarning) Error() string {
	return fmt.Sprintf("%s: skipping column '%s': %s", w.Op, w.Column, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ColumnSkippedWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Str("column", w.Column).
		Str("reason", w.Reason).
		Str("type", "ColumnSkippedWarning")
}

// NewColumnSkippedWarning は新しいColumnSkippedWarningを作成します。
func NewColumnSkippedWarning(op, column, reason string) *ColumnSkippedWarning {
	return &ColumnSkippedWarning{Op: op, Column: column, Reason: reason}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、適合率(precision)を計算する際に、あるクラスの予測が一つもなかった場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	データ操作のエラー型
//
// ===========================================================================

// ColumnNotFoundError は指定された列がテーブルに存在しない場合のエラーです。
type ColumnNotFoundError struct {
	Op        string
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("dataauto: %s: column '%s' does not exist", e.Op, e.Column)
	}
	return fmt.Sprintf("dataauto: %s: column '%s' does not exist (available: %s)",
		e.Op, e.Column, strings.Join(e.Available, ", "))
}

// Is は ErrColumnNotFound との比較を可能にします。
func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ColumnNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Strs("available", e.Available).
		Str("type", "ColumnNotFoundError")
}

// NewColumnNotFoundError は新しいColumnNotFoundErrorを作成し、スタックトレースを付与します。
func NewColumnNotFoundError(op, column string, available []string) error {
	err := &ColumnNotFoundError{Op: op, Column: column, Available: available}
	return errors.WithStack(err)
}

// TypeMismatchError は数値列が必要な箇所に数値でない列が渡された場合のエラーです。
// 値を暗黙的に数値へ変換することはありません。
type TypeMismatchError struct {
	Op       string
	Column   string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("dataauto: %s: column '%s' is %s, expected %s", e.Op, e.Column, e.Got, e.Expected)
}

// Is は ErrTypeMismatch との比較を可能にします。
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *TypeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("expected", e.Expected).
		Str("got", e.Got).
		Str("type", "TypeMismatchError")
}

// NewTypeMismatchError は新しいTypeMismatchErrorを作成し、スタックトレースを付与します。
func NewTypeMismatchError(op, column, expected, got string) error {
	err := &TypeMismatchError{Op: op, Column: column, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// オプションの種類
const (
	OptionStrategy  = "strategy"
	OptionMethod    = "method"
	OptionModelType = "model type"
	OptionFormat    = "format"
	OptionDBType    = "database type"
	OptionPlotType  = "plot type"
	OptionCommand   = "command"
)

// UnsupportedOptionError は列挙型オプションに未対応の値が渡された場合のエラーです。
// UnsupportedStrategy / UnsupportedMethod / UnsupportedModelType はすべてこの型で表現されます。
type UnsupportedOptionError struct {
	Option    string
	Value     string
	Supported []string
}

func (e *UnsupportedOptionError) Error() string {
	return fmt.Sprintf("dataauto: unsupported %s '%s' (choose from: %s)",
		e.Option, e.Value, strings.Join(e.Supported, ", "))
}

// Is は ErrUnsupported との比較を可能にします。
func (e *UnsupportedOptionError) Is(target error) bool {
	return target == ErrUnsupported
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedOptionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("option", e.Option).
		Str("value", e.Value).
		Strs("supported", e.Supported).
		Str("type", "UnsupportedOptionError")
}

// NewUnsupportedOptionError は新しいUnsupportedOptionErrorを作成し、スタックトレースを付与します。
func NewUnsupportedOptionError(option, value string, supported []string) error {
	err := &UnsupportedOptionError{Option: option, Value: value, Supported: supported}
	return errors.WithStack(err)
}

// NewUnsupportedStrategyError は欠損値補完戦略のエラーを作成します。
func NewUnsupportedStrategyError(value string, supported []string) error {
	return NewUnsupportedOptionError(OptionStrategy, value, supported)
}

// NewUnsupportedMethodError は外れ値除去・スケーリング手法のエラーを作成します。
func NewUnsupportedMethodError(value string, supported []string) error {
	return NewUnsupportedOptionError(OptionMethod, value, supported)
}

// NewUnsupportedModelTypeError はモデル種別のエラーを作成します。
func NewUnsupportedModelTypeError(value string, supported []string) error {
	return NewUnsupportedOptionError(OptionModelType, value, supported)
}

// IOError はファイルやデータベースの読み書きに失敗した場合のエラーです。
type IOError struct {
	Op     string
	Target string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("dataauto: %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is は ErrIOFailure との比較を可能にします。
func (e *IOError) Is(target error) bool {
	return target == ErrIOFailure
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *IOError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("target", e.Target).
		AnErr("cause", e.Err).
		Str("type", "IOError")
}

// NewIOError は新しいIOErrorを作成し、スタックトレースを付与します。
func NewIOError(op, target string, err error) error {
	ioErr := &IOError{Op: op, Target: target, Err: err}
	return errors.WithStack(ioErr)
}

// MalformedScheduleError は時刻指定の文字列が HH:MM 形式でない場合のエラーです。
type MalformedScheduleError struct {
	Value  string
	Reason string
}

func (e *MalformedScheduleError) Error() string {
	return fmt.Sprintf("dataauto: malformed schedule time '%s': %s (expected 24-hour HH:MM)", e.Value, e.Reason)
}

// Is は ErrMalformedSchedule との比較を可能にします。
func (e *MalformedScheduleError) Is(target error) bool {
	return target == ErrMalformedSchedule
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MalformedScheduleError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("value", e.Value).
		Str("reason", e.Reason).
		Str("type", "MalformedScheduleError")
}

// NewMalformedScheduleError は新しいMalformedScheduleErrorを作成し、スタックトレースを付与します。
func NewMalformedScheduleError(value, reason string) error {
	err := &MalformedScheduleError{Value: value, Reason: reason}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	モデル関連のエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("dataauto: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("dataauto: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dataauto: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("dataauto: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataauto: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("dataauto: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrColumnNotFound は ColumnNotFoundError の比較用です。
	ErrColumnNotFound = New("column not found")

	// ErrTypeMismatch は TypeMismatchError の比較用です。
	ErrTypeMismatch = New("type mismatch")

	// ErrUnsupported は UnsupportedOptionError の比較用です。
	ErrUnsupported = New("unsupported option")

	// ErrIOFailure は IOError の比較用です。
	ErrIOFailure = New("io failure")

	// ErrMalformedSchedule は MalformedScheduleError の比較用です。
	ErrMalformedSchedule = New("malformed schedule")
)
