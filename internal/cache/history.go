package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"LeverageGauge/internal/logger"
	"LeverageGauge/internal/metrics"
	"LeverageGauge/internal/model"
)

const (
	// DefaultKey is the fixed identifier the dataset is cached under.
	DefaultKey = "leverage_dashboard_history"
	// DefaultFreshness is how long a cached dataset is served before a new
	// fetch cycle runs.
	DefaultFreshness = time.Hour
)

// HistoryCache reads and writes the single cached dataset entry.
type HistoryCache struct {
	store     Store
	key       string
	freshness time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option customizes a HistoryCache.
type Option func(*HistoryCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *HistoryCache) { h.now = now }
}

// WithMetrics attaches lookup counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HistoryCache) { h.metrics = m }
}

// NewHistoryCache wraps store. Empty key and non-positive freshness fall
// back to the defaults.
func NewHistoryCache(store Store, key string, freshness time.Duration, opts ...Option) *HistoryCache {
	if key == "" {
		key = DefaultKey
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	h := &HistoryCache{store: store, key: key, freshness: freshness, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Freshness returns the configured freshness window.
func (h *HistoryCache) Freshness() time.Duration { return h.freshness }

// Read returns the cached dataset when one exists and is younger than the
// freshness window. Absent, unreadable, corrupt, stale and future-stamped
// entries are all reported as a miss.
func (h *HistoryCache) Read(ctx context.Context) (*model.Dataset, bool) {
	raw, err := h.store.Get(ctx, h.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warnf("history cache read failed, treating as miss: %v", err)
		}
		h.metrics.ObserveCache("miss")
		return nil, false
	}

	var entry model.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Data == nil || entry.Timestamp.IsZero() {
		logger.Warnf("history cache entry %q is corrupt, ignoring", h.key)
		h.metrics.ObserveCache("corrupt")
		return nil, false
	}

	age := h.now().Sub(entry.Timestamp)
	if age < 0 {
		logger.Warnf("history cache entry %q is stamped in the future (%s ahead), ignoring", h.key, (-age).Round(time.Second))
		h.metrics.ObserveCache("stale")
		return nil, false
	}
	if age >= h.freshness {
		logger.Debugf("history cache entry is stale (age %s)", age.Round(time.Second))
		h.metrics.ObserveCache("stale")
		return nil, false
	}
	h.metrics.ObserveCache("hit")
	return entry.Data, true
}

// Write stores ds stamped with the current time. Failures (for example a
// full disk) are returned for the caller to log; they must never abort a
// cycle.
func (h *HistoryCache) Write(ctx context.Context, ds *model.Dataset) error {
	if ds == nil {
		return errors.New("nil dataset")
	}
	raw, err := json.Marshal(model.CacheEntry{Timestamp: h.now(), Data: ds})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := h.store.Set(ctx, h.key, raw); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}
