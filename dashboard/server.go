// Package dashboard はアップロードしたデータの確認・グラフ表示・学習を行う
// Web 画面を提供します。データセットはプロセス内に一つだけ保持されます。
package dashboard

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/dataauto/dataio"
	"github.com/YuminosukeSato/dataauto/pipeline"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/plotting"
	"github.com/YuminosukeSato/dataauto/report"
	"github.com/YuminosukeSato/dataauto/table"
)

const (
	// DefaultMaxUpload はアップロードの上限（32 MiB）
	DefaultMaxUpload = 32 << 20
	previewRows      = 10
	shutdownTimeout  = 5 * time.Second
)

// Options はダッシュボードの設定です。
type Options struct {
	MaxUploadBytes int64
	// 学習の既定値。0 なら pipeline の既定値
	TestSize    float64
	RandomState int64
	NEstimators int
	Bins        int
}

func (o Options) withDefaults() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = DefaultMaxUpload
	}
	if o.TestSize <= 0 || o.TestSize >= 1 {
		o.TestSize = pipeline.DefaultTestSize
	}
	if o.RandomState == 0 {
		o.RandomState = pipeline.DefaultRandomState
	}
	if o.NEstimators <= 0 {
		o.NEstimators = 100
	}
	if o.Bins <= 0 {
		o.Bins = plotting.DefaultBins
	}
	return o
}

// Server はダッシュボードの HTTP ハンドラです。
type Server struct {
	opts   Options
	logger log.Logger

	mu   sync.RWMutex
	name string
	data *table.Table
}

// New は空の Server を作ります。
func New(opts Options) *Server {
	return &Server{
		opts:   opts.withDefaults(),
		logger: log.GetLoggerWithName("dashboard"),
	}
}

// SetData は表示するデータセットを置き換えます。
func (s *Server) SetData(name string, t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.data = name, t
}

func (s *Server) dataset() (string, *table.Table) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name, s.data
}

// Handler はルーティング済みのハンドラを返します。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /plot", s.handlePlot)
	mux.HandleFunc("POST /train", s.handleTrain)
	return mux
}

// Run は addr で待ち受け、ctx が取り消されたら終了処理をして戻ります。
func Run(ctx context.Context, addr string, opts Options) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           New(opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := log.GetLoggerWithName("dashboard")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("dashboard listening", log.OperationKey, log.OperationDashboard, log.AddrKey, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.NewIOError("listen", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown dashboard")
		}
		logger.Info("dashboard stopped", log.OperationKey, log.OperationDashboard)
		return nil
	})
	return g.Wait()
}

type page struct {
	Error    string
	Loaded   bool
	Name     string
	Rows     int
	Cols     int
	Header   []string
	Preview  [][]string
	Numeric  []string
	Summary  string
	TestSize float64
	Report   string
}

func (s *Server) render(w http.ResponseWriter, status int, p page) {
	name, t := s.dataset()
	p.TestSize = s.opts.TestSize
	if t != nil {
		p.Loaded = true
		p.Name = name
		p.Rows, p.Cols = t.NRows(), t.NCols()
		p.Header = t.Names()
		p.Preview = t.Head(previewRows).Records()
		p.Numeric = t.NumericNames()
		var sb strings.Builder
		if err := report.Summary(&sb, t); err == nil {
			p.Summary = sb.String()
		}
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		s.logger.Error("render page", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// status は利用者の入力に起因するエラーを 400 に対応づける
func status(err error) int {
	var (
		ve  *errors.ValueError
		vle *errors.ValidationError
	)
	switch {
	case errors.Is(err, errors.ErrColumnNotFound),
		errors.Is(err, errors.ErrTypeMismatch),
		errors.Is(err, errors.ErrUnsupported),
		errors.Is(err, errors.ErrIOFailure),
		errors.As(err, &ve),
		errors.As(err, &vle):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := status(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", err, log.OperationKey, log.OperationDashboard)
	}
	s.render(w, code, page{Error: err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, page{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		s.fail(w, "upload", errors.NewIOError("upload", "form", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, "upload", errors.NewIOError("upload", "file", err))
		return
	}
	defer file.Close()

	t, err := loadUpload(r.Context(), header.Filename, file)
	if err != nil {
		s.fail(w, "upload", err)
		return
	}
	s.SetData(header.Filename, t)
	s.logger.Info("dataset uploaded",
		log.OperationKey, log.OperationDashboard,
		log.PathKey, header.Filename,
		log.RowsKey, t.NRows(),
		log.ColumnsKey, t.NCols(),
	)
	s.render(w, http.StatusOK, page{})
}

// loadUpload は拡張子を保ったまま一時ファイルに書き出してから dataio で読む
func loadUpload(ctx context.Context, filename string, r io.Reader) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv", ".json", ".jsonl", ".ndjson", ".xlsx":
	default:
		return nil, errors.NewUnsupportedOptionError(errors.OptionFormat, ext, []string{".csv", ".json", ".jsonl", ".xlsx"})
	}

	tmp, err := os.CreateTemp("", "dataauto-upload-*"+ext)
	if err != nil {
		return nil, errors.NewIOError("upload", filename, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, errors.NewIOError("upload", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.NewIOError("upload", filename, err)
	}
	return dataio.Load(ctx, tmp.Name(), dataio.LoadOptions{Format: dataio.FormatFromPath(filename)})
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	_, t := s.dataset()
	if t == nil {
		http.Error(w, "no dataset loaded; upload a file first", http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	kind, err := plotting.ParseKind(q.Get("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec := plotting.Spec{Kind: kind, Column: q.Get("column"), X: q.Get("x"), Y: q.Get("y")}
	if cols := q.Get("columns"); cols != "" {
		spec.Columns = strings.Split(cols, ",")
	}

	var buf bytes.Buffer
	if err := plotting.WriteHTML(&buf, t, spec, s.opts.Bins); err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	_, t := s.dataset()
	if t == nil {
		s.render(w, http.StatusBadRequest, page{Error: "no dataset loaded; upload a file first"})
		return
	}
	kind, err := pipeline.ParseModelKind(r.FormValue("model_type"))
	if err != nil {
		s.fail(w, "train", err)
		return
	}
	opts := pipeline.TrainOptions{
		Target:      r.FormValue("target"),
		Kind:        kind,
		TestSize:    s.opts.TestSize,
		RandomState: s.opts.RandomState,
		NEstimators: s.opts.NEstimators,
	}
	if v := r.FormValue("test_size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.fail(w, "train", errors.NewValidationError("test_size", "must be a number", v))
			return
		}
		opts.TestSize = f
	}

	res, err := pipeline.Train(r.Context(), t.Clone(), opts)
	if err != nil {
		s.fail(w, "train", err)
		return
	}
	s.render(w, http.StatusOK, page{Report: res.Report})
}
