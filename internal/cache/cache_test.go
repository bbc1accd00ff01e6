package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"LeverageGauge/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

type failingStore struct{ *MemoryStore }

func (f *failingStore) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func testDataset() *model.Dataset {
	return &model.Dataset{
		CycleID: "cycle-1",
		IndexDaily: model.Series{
			{Date: "2024-01-02", Value: 472.16},
			{Date: "2024-01-03", Value: 468.79},
		},
		VolatilityDaily: model.Series{{Date: "2024-01-03", Value: 14.1}},
		ValuationRatio:  24.5,
		LastUpdated:     "2024-01-03",
		FetchedAt:       time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC),
	}
}

func TestHistoryCache_Freshness(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC)}
	h := NewHistoryCache(NewMemoryStore(), "", time.Hour, WithClock(clock.Now))

	ds := testDataset()
	if err := h.Write(ctx, ds); err != nil {
		t.Fatalf("Write: %v", err)
	}

	clock.t = clock.t.Add(time.Hour - time.Second)
	got, ok := h.Read(ctx)
	if !ok {
		t.Fatal("expected fresh hit just inside the window")
	}
	if got.CycleID != ds.CycleID || !reflect.DeepEqual(got.IndexDaily, ds.IndexDaily) || got.ValuationRatio != ds.ValuationRatio {
		t.Errorf("cached dataset changed: %+v", got)
	}
	if !got.FetchedAt.Equal(ds.FetchedAt) {
		t.Errorf("FetchedAt changed: %v vs %v", got.FetchedAt, ds.FetchedAt)
	}

	clock.t = clock.t.Add(2 * time.Second)
	if _, ok := h.Read(ctx); ok {
		t.Error("expected miss just past the window")
	}
}

func TestHistoryCache_FutureTimestampIsMiss(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC)}
	h := NewHistoryCache(NewMemoryStore(), "", time.Hour, WithClock(clock.Now))

	if err := h.Write(ctx, testDataset()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// host clock stepped back after the write
	clock.t = clock.t.Add(-time.Minute)
	if _, ok := h.Read(ctx); ok {
		t.Error("entry stamped in the future must not count as fresh")
	}
	clock.t = clock.t.Add(-24 * time.Hour)
	if _, ok := h.Read(ctx); ok {
		t.Error("entry stamped far in the future must not count as fresh")
	}
}

func TestHistoryCache_MissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	h := NewHistoryCache(store, "k", time.Hour)

	if _, ok := h.Read(ctx); ok {
		t.Error("expected miss on empty store")
	}

	for _, raw := range []string{`{not json`, `{"timestamp":"2024-01-01T00:00:00Z"}`, `{"data":{}}`} {
		_ = store.Set(ctx, "k", []byte(raw))
		if _, ok := h.Read(ctx); ok {
			t.Errorf("expected miss for corrupt entry %q", raw)
		}
	}
}

func TestHistoryCache_WriteFailureReturned(t *testing.T) {
	h := NewHistoryCache(&failingStore{MemoryStore: NewMemoryStore()}, "k", time.Hour)
	if err := h.Write(context.Background(), testDataset()); err == nil {
		t.Error("expected write error to be reported")
	}
	if err := h.Write(context.Background(), nil); err == nil {
		t.Error("expected error for nil dataset")
	}
}

func TestHistoryCache_Defaults(t *testing.T) {
	h := NewHistoryCache(NewMemoryStore(), "", 0)
	if h.key != DefaultKey {
		t.Errorf("key = %q, want %q", h.key, DefaultKey)
	}
	if h.Freshness() != DefaultFreshness {
		t.Errorf("freshness = %v, want %v", h.Freshness(), DefaultFreshness)
	}
}

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "a/b key", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "a/b key", []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "a/b key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("got %q, want %q", got, "two")
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreRoundTrip(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testStoreRoundTrip(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	testStoreRoundTrip(t, s)
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(Options{Backend: "etcd"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	s, err := Open(Options{Backend: BackendMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("expected *MemoryStore, got %T", s)
	}
}
