// Package scheduler は CLI のサブコマンドを毎日決まった時刻に再実行します。
//
// Scheduler は gocron の DailyJob を一つのトリガーとして登録し、トリガー ID
// （gocron のジョブ ID）から登録内容への対応表を持ちます。発火したコマンドは
// Runner に渡され、結果はログに残すだけです。
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
)

// DefaultStopTimeout は Stop / Close が gocron の停止を待つ時間の既定値
const DefaultStopTimeout = 10 * time.Second

// State はスケジューラの状態です。
type State int

const (
	// Idle はジョブの時刻監視が止まっている状態
	Idle State = iota
	// Armed は gocron がジョブの時刻を監視している状態
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Trigger は一日一回発火するコマンドの登録内容です。
type Trigger struct {
	ID      uuid.UUID
	Command Command
	Path    string
	Args    []string
	Hour    int
	Minute  int
	// Next は次に発火する時刻
	Next time.Time
}

// At は "HH:MM" 形式の発火時刻を返します。
func (t Trigger) At() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Option は Scheduler の設定を変更します。
type Option func(*Scheduler)

// WithClock は gocron が使う時計を差し替えます。テストでは clockwork.NewFakeClock を渡します。
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithLocation は HH:MM を解釈するタイムゾーンを設定します。既定は time.Local です。
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithStopTimeout は Stop / Close が gocron の停止を待つ時間を設定します。0 以下は無視されます。
func WithStopTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

// WithLogger はログの出力先を設定します。gocron 自身のログも同じ出力先に送られます。
func WithLogger(l log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler は登録されたトリガーを gocron に監視させ、時刻が来たら Runner を呼びます。
type Scheduler struct {
	runner      Runner
	clock       clockwork.Clock
	location    *time.Location
	stopTimeout time.Duration
	logger      log.Logger
	cron        gocron.Scheduler

	mu       sync.Mutex
	triggers map[uuid.UUID]*Trigger
	jobs     map[uuid.UUID]gocron.Job
	order    []uuid.UUID
	state    State
	runCtx   context.Context
	closed   bool

	inflight sync.WaitGroup
}

// New は Idle 状態の Scheduler を作ります。使い終わったら Close を呼んでください。
func New(runner Runner, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		runner:      runner,
		clock:       clockwork.NewRealClock(),
		location:    time.Local,
		stopTimeout: DefaultStopTimeout,
		triggers:    make(map[uuid.UUID]*Trigger),
		jobs:        make(map[uuid.UUID]gocron.Job),
		runCtx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("scheduler")
	}

	cron, err := gocron.NewScheduler(
		gocron.WithClock(s.clock),
		gocron.WithLocation(s.location),
		gocron.WithStopTimeout(s.stopTimeout),
		gocron.WithLogger(s.logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create scheduler")
	}
	s.cron = cron
	return s, nil
}

// nextRun は now より後で最初に来る hour:minute を返す
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Schedule は cmd を毎日 at（"HH:MM"）に path と args で実行するトリガーを登録します。
// 同じ内容を二度登録すると二つの独立したトリガーになります。
func (s *Scheduler) Schedule(cmd Command, path, at string, args ...string) (uuid.UUID, error) {
	hour, minute, err := ParseTime(at)
	if err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return uuid.Nil, errors.NewValueError("Schedule", "scheduler is closed")
	}

	tr := &Trigger{
		Command: cmd,
		Path:    path,
		Args:    append([]string(nil), args...),
		Hour:    hour,
		Minute:  minute,
	}
	job, err := s.cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(s.fire, tr),
		gocron.WithName(cmd.String()+" "+path+" at "+tr.At()),
	)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "schedule %s at %s", cmd, tr.At())
	}
	tr.ID = job.ID()
	tr.Next = s.next(job, tr)
	s.triggers[tr.ID] = tr
	s.jobs[tr.ID] = job
	s.order = append(s.order, tr.ID)

	s.logger.Info("command scheduled",
		log.OperationKey, log.OperationSchedule,
		log.TriggerIDKey, tr.ID.String(),
		log.CommandKey, cmd.String(),
		log.PathKey, path,
		log.ScheduleAtKey, tr.At(),
		log.NextRunKey, tr.Next.Format(time.RFC3339),
	)
	return tr.ID, nil
}

// next は gocron が計算した次の発火時刻を返す。まだ計算されていなければ現在時刻から求める
func (s *Scheduler) next(job gocron.Job, tr *Trigger) time.Time {
	if t, err := job.NextRun(); err == nil && !t.IsZero() {
		return t
	}
	return nextRun(s.clock.Now().In(s.location), tr.Hour, tr.Minute)
}

// Remove はトリガーを削除します。存在しなければ false を返します。
func (s *Scheduler) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.triggers[id]; !ok {
		return false
	}
	if err := s.cron.RemoveJob(id); err != nil {
		s.logger.Warn("failed to remove scheduled job", log.TriggerIDKey, id.String(), log.ErrorKey, err.Error())
	}
	delete(s.triggers, id)
	delete(s.jobs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Triggers は登録順のトリガーのコピーを返します。Next は gocron の次回実行時刻です。
func (s *Scheduler) Triggers() []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Trigger, 0, len(s.order))
	for _, id := range s.order {
		tr := *s.triggers[id]
		tr.Args = append([]string(nil), tr.Args...)
		tr.Next = s.next(s.jobs[id], &tr)
		out = append(out, tr)
	}
	return out
}

// State は現在の状態を返します。
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start は gocron を動かして Armed に移ります。Armed のときは何もしません。
// 発火したコマンドは ctx の下で実行されます。
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Armed || s.closed {
		return
	}
	s.runCtx = ctx
	s.state = Armed
	s.cron.Start()
}

// Stop は時刻の監視を止めて Idle に戻ります。Start で再開できます。
// 実行中のコマンドは止めません。待つ場合は Wait を使います。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != Armed {
		s.mu.Unlock()
		return
	}
	s.state = Idle
	s.mu.Unlock()

	// fire が s.mu を取るので、ロックを持ったまま gocron を止めない
	if err := s.cron.StopJobs(); err != nil {
		s.logger.Warn("scheduler did not stop in time", log.ErrorKey, err.Error())
	}
}

// Wait は発火済みのコマンドがすべて終わるまで待ちます。
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// Close は gocron を終了させます。Close 後の Scheduler は使えません。
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.state = Idle
	s.mu.Unlock()

	if err := s.cron.Shutdown(); err != nil {
		return errors.Wrap(err, "shutdown scheduler")
	}
	return nil
}

// fire は gocron のタスク。Runner は別の goroutine で動かし、すぐに戻る
func (s *Scheduler) fire(tr *Trigger) {
	s.mu.Lock()
	snapshot := *tr
	ctx := s.runCtx
	s.mu.Unlock()

	logger := s.logger.With(
		log.OperationKey, log.OperationSchedule,
		log.TriggerIDKey, snapshot.ID.String(),
		log.CommandKey, snapshot.Command.String(),
		log.PathKey, snapshot.Path,
	)
	logger.Info("scheduled command fired", log.ArgsKey, snapshot.Args)

	// inflight は成功時は fn の中、失敗時は onErr の中で Done にする
	s.inflight.Add(1)
	errors.SafeGo("scheduled "+snapshot.Command.String(), func() error {
		if err := s.runner.Run(ctx, snapshot.Command, snapshot.Path, snapshot.Args); err != nil {
			return err
		}
		logger.Info("scheduled command finished", log.ExitCodeKey, 0)
		s.inflight.Done()
		return nil
	}, func(err error) {
		defer s.inflight.Done()
		logger.Error("scheduled command failed", err, log.ExitCodeKey, exitCode(err))
	})
}
