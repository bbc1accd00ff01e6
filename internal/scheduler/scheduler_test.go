package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"LeverageGauge/internal/collector"
	"LeverageGauge/internal/metrics"
	"LeverageGauge/internal/model"
	"LeverageGauge/internal/recorder"
)

type fakeSource struct {
	ds        *model.Dataset
	err       error
	collects  int
	refreshes int
}

func (f *fakeSource) Collect(context.Context) (*model.Dataset, error) {
	f.collects++
	return f.ds, f.err
}

func (f *fakeSource) Refresh(context.Context) (*model.Dataset, error) {
	f.refreshes++
	return f.ds, f.err
}

type memRecorder struct {
	recs []recorder.ScoreRecord
}

func (m *memRecorder) RecordScore(r *recorder.ScoreRecord) error {
	m.recs = append(m.recs, *r)
	return nil
}

func (m *memRecorder) ListScores(limit int) ([]recorder.ScoreRecord, error) {
	out := []recorder.ScoreRecord{}
	for i := len(m.recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.recs[i])
	}
	return out, nil
}

func (m *memRecorder) Close() error { return nil }

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func testDataset(cycleID string, pe float64) *model.Dataset {
	walk := collector.GenerateWalk("SPY", 450, 260, time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC))
	last, _ := walk.Last()
	return &model.Dataset{
		CycleID:         cycleID,
		IndexDaily:      walk,
		VolatilityDaily: model.Series{{Date: last.Date, Value: 14}},
		Breadth:         model.Series{{Date: last.Date, Value: 1.2}},
		ValuationRatio:  pe,
		LastUpdated:     last.Date,
	}
}

func newTestScheduler(src Source) (*Scheduler, *memRecorder, *captureNotifier) {
	rec := &memRecorder{}
	n := &captureNotifier{}
	s := NewScheduler(context.Background(), src, rec, n, metrics.NewNop())
	s.now = func() time.Time { return time.Date(2024, 6, 28, 21, 5, 0, 0, time.UTC) }
	return s, rec, n
}

func TestDashboard_RecordsEachCycleOnce(t *testing.T) {
	src := &fakeSource{ds: testDataset("c1", 20)}
	s, rec, _ := newTestScheduler(src)

	v := s.Dashboard(context.Background(), false)
	if v.NoData {
		t.Fatal("expected data view")
	}
	s.Dashboard(context.Background(), false)
	if src.collects != 2 || src.refreshes != 0 {
		t.Errorf("collects=%d refreshes=%d", src.collects, src.refreshes)
	}
	if len(rec.recs) != 1 {
		t.Fatalf("expected one record for a repeated cycle, got %d", len(rec.recs))
	}
	if rec.recs[0].CycleID != "c1" || rec.recs[0].Score != v.Score {
		t.Errorf("unexpected record %+v", rec.recs[0])
	}

	src.ds = testDataset("c2", 20)
	s.Dashboard(context.Background(), true)
	if src.refreshes != 1 || len(rec.recs) != 2 {
		t.Errorf("refreshes=%d records=%d", src.refreshes, len(rec.recs))
	}
}

func TestDashboard_DemoModeRecordsOnce(t *testing.T) {
	col := collector.NewCollector(nil, nil, collector.Options{Demo: true, CallDelay: time.Second}, metrics.NewNop())
	s, rec, _ := newTestScheduler(col)
	ctx := context.Background()

	started := time.Now()
	first := s.Dashboard(ctx, false)
	second := s.Dashboard(ctx, false)
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Errorf("demo views should not wait on provider delays, took %v", elapsed)
	}
	if first.NoData || !first.Synthetic {
		t.Fatalf("expected synthetic view, got %+v", first)
	}
	if first.CycleID != second.CycleID {
		t.Errorf("cycle ids differ: %s / %s", first.CycleID, second.CycleID)
	}
	if len(rec.recs) != 1 {
		t.Errorf("expected one history row, got %d", len(rec.recs))
	}
}

func TestDashboard_NoData(t *testing.T) {
	src := &fakeSource{err: collector.ErrNoData}
	s, rec, _ := newTestScheduler(src)

	v := s.Dashboard(context.Background(), false)
	if !v.NoData || v.Score != 0 {
		t.Errorf("expected no-data view, got %+v", v)
	}
	if len(rec.recs) != 0 {
		t.Error("no-data cycles must not be recorded")
	}

	src.err = context.Canceled
	if v := s.Dashboard(context.Background(), true); !v.NoData {
		t.Error("aborted cycle should render as no data")
	}
}

func TestRefreshTask_NotifiesWithWarningTransitions(t *testing.T) {
	src := &fakeSource{ds: testDataset("c1", 25)}
	s, _, n := newTestScheduler(src)

	s.RunNow()
	src.ds = testDataset("c2", 25)
	s.RunNow()
	src.ds = testDataset("c3", 18)
	s.RunNow()

	if len(n.msgs) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(n.msgs))
	}
	if !strings.Contains(n.msgs[0], "Safety warning raised") {
		t.Errorf("first message should raise the warning:\n%s", n.msgs[0])
	}
	if strings.Contains(n.msgs[1], "raised") || strings.Contains(n.msgs[1], "cleared") {
		t.Errorf("unchanged warning should have no header:\n%s", n.msgs[1])
	}
	if !strings.Contains(n.msgs[2], "Safety warning cleared") {
		t.Errorf("third message should clear the warning:\n%s", n.msgs[2])
	}
	if src.refreshes != 3 {
		t.Errorf("refresh task must force a refresh, got %d", src.refreshes)
	}
}

func TestRefreshTask_NilNotifier(t *testing.T) {
	src := &fakeSource{ds: testDataset("c1", 20)}
	s := NewScheduler(context.Background(), src, nil, nil, metrics.NewNop())
	s.RunNow()
	if src.refreshes != 1 {
		t.Errorf("refreshes=%d", src.refreshes)
	}
}

func TestHandleCommand(t *testing.T) {
	src := &fakeSource{ds: testDataset("c1", 20)}
	s, _, _ := newTestScheduler(src)
	ctx := context.Background()

	if got := s.HandleCommand(ctx, "/score"); !strings.Contains(got, "Leverage score") {
		t.Errorf("/score reply = %q", got)
	}
	if got := s.HandleCommand(ctx, "/history"); !strings.Contains(got, "2024-06-28 21:05") {
		t.Errorf("/history reply = %q", got)
	}
	if got := s.HandleCommand(ctx, "/refresh"); !strings.Contains(got, "Leverage score") || src.refreshes != 1 {
		t.Errorf("/refresh reply = %q, refreshes=%d", got, src.refreshes)
	}
	if got := s.HandleCommand(ctx, "hello"); !strings.Contains(got, "/score") {
		t.Errorf("help reply = %q", got)
	}

	src.err = collector.ErrNoData
	if got := s.HandleCommand(ctx, "/score"); !strings.Contains(got, "No market data") {
		t.Errorf("no-data reply = %q", got)
	}
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestScheduler(&fakeSource{err: errors.New("unused")})
	if err := s.Register(""); err != nil {
		t.Fatalf("default cron rejected: %v", err)
	}
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected invalid cron error")
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}
