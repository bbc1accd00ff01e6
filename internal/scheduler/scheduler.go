package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"LeverageGauge/internal/collector"
	"LeverageGauge/internal/dashboard"
	"LeverageGauge/internal/logger"
	"LeverageGauge/internal/metrics"
	"LeverageGauge/internal/model"
	"LeverageGauge/internal/notifier"
	"LeverageGauge/internal/recorder"
	"LeverageGauge/internal/strategy"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshCron runs a forced refresh five minutes past every hour.
const DefaultRefreshCron = "0 5 * * * *"

// historyLines is how many rows the /history command shows.
const historyLines = 10

// Source produces datasets, from cache (Collect) or freshly (Refresh).
type Source interface {
	Collect(ctx context.Context) (*model.Dataset, error)
	Refresh(ctx context.Context) (*model.Dataset, error)
}

// Scheduler runs the refresh cycle on a cron and serves the resulting view
// to the HTTP and chat front ends.
type Scheduler struct {
	Cron     *cron.Cron
	Source   Source
	Recorder recorder.Recorder
	// Notifier is nil when notifications are disabled.
	Notifier notifier.Notifier
	Metrics  *metrics.Metrics
	Ctx      context.Context

	mu           sync.Mutex
	lastRecorded string
	lastWarning  bool
	now          func() time.Time
}

// NewScheduler creates a new Scheduler. rec and n may be nil.
func NewScheduler(ctx context.Context, src Source, rec recorder.Recorder, n notifier.Notifier, m *metrics.Metrics) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Source:   src,
		Recorder: rec,
		Notifier: n,
		Metrics:  m,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// Register adds the refresh task. An empty expression uses DefaultRefreshCron.
func (s *Scheduler) Register(refreshCron string) error {
	if refreshCron == "" {
		refreshCron = DefaultRefreshCron
	}
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Infof("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Infof("scheduler stopped")
}

// RunNow executes the refresh task immediately.
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

// Dashboard produces the current view. force skips the cache read. Each new
// cycle is scored, exported as metrics and recorded once.
func (s *Scheduler) Dashboard(ctx context.Context, force bool) model.View {
	var (
		ds  *model.Dataset
		err error
	)
	if force {
		ds, err = s.Source.Refresh(ctx)
	} else {
		ds, err = s.Source.Collect(ctx)
	}
	if err != nil {
		if !errors.Is(err, collector.ErrNoData) {
			logger.Warnf("dashboard cycle aborted: %v", err)
		}
		return dashboard.NoData()
	}

	readings := strategy.ReadingsFrom(ds)
	score := strategy.Evaluate(readings)
	s.Metrics.SetScore(score.Score, score.SafetyWarning)
	s.record(ds, readings, score)
	return dashboard.Build(ds, score)
}

func (s *Scheduler) record(ds *model.Dataset, r model.Readings, score *model.LeverageScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ds.CycleID != "" && ds.CycleID == s.lastRecorded {
		return
	}
	if err := s.Recorder.RecordScore(recorder.NewScoreRecord(ds, r, score, s.now())); err != nil {
		logger.Errorf("record score: %v", err)
		return
	}
	s.lastRecorded = ds.CycleID
}

func (s *Scheduler) refreshTask() {
	logger.Infof("running refresh task")
	v := s.Dashboard(s.Ctx, true)
	if v.NoData {
		logger.Warnf("refresh produced no data")
	} else {
		logger.Infof("refresh complete: score=%d safety_warning=%v", v.Score, v.SafetyWarning)
	}
	s.notify(v)
}

func (s *Scheduler) notify(v model.View) {
	s.mu.Lock()
	header := ""
	if !v.NoData {
		header = notifier.FormatWarningTransition(s.lastWarning, v.SafetyWarning)
		s.lastWarning = v.SafetyWarning
	}
	s.mu.Unlock()

	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Send(s.Ctx, header+notifier.FormatScoreReport(v)); err != nil {
		logger.Errorf("send notification: %v", err)
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "/score", "score":
		return notifier.FormatScoreReport(s.Dashboard(ctx, false))
	case "/refresh", "refresh":
		return notifier.FormatScoreReport(s.Dashboard(ctx, true))
	case "/history", "history":
		recs, err := s.Recorder.ListScores(historyLines)
		if err != nil {
			logger.Errorf("list scores: %v", err)
			return "Score history unavailable."
		}
		lines := make([]notifier.ScoreLine, 0, len(recs))
		for _, r := range recs {
			lines = append(lines, notifier.ScoreLine{
				When:          r.Timestamp.Format("2006-01-02 15:04"),
				Score:         r.Score,
				SafetyWarning: r.SafetyWarning,
			})
		}
		return notifier.FormatHistory(lines)
	default:
		return notifier.FormatHelp()
	}
}
