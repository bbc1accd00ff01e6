package collector

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"LeverageGauge/internal/cache"
	"LeverageGauge/internal/calculator"
	"LeverageGauge/internal/logger"
	"LeverageGauge/internal/metrics"
	"LeverageGauge/internal/model"
	"LeverageGauge/internal/series"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNoData means the primary index series could not be obtained, so the
// cycle produced no dataset.
var ErrNoData = errors.New("no data")

const (
	DefaultCallDelay      = time.Second
	DefaultBreadthPeriod  = 50
	DefaultValuationRatio = 20.0
)

// Symbols names the instruments requested each cycle.
type Symbols struct {
	Index      string
	Volatility string
	Breadth    string
	Valuation  string
}

// DefaultSymbols tracks the S&P 500 through SPY, volatility through VIX and
// breadth through the equal-weight RSP.
var DefaultSymbols = Symbols{Index: "SPY", Volatility: "VIX", Breadth: "RSP", Valuation: "SPY"}

// Options tunes a Collector.
type Options struct {
	Symbols          Symbols
	CallDelay        time.Duration
	BreadthPeriod    int
	DefaultValuation float64
	// Demo serves synthetic data when the fetcher has no credential.
	Demo bool
}

// Collector sequences provider calls and assembles datasets, consulting the
// history cache first. Cycles never overlap.
type Collector struct {
	Fetcher Fetcher
	Cache   *cache.HistoryCache
	Metrics *metrics.Metrics

	opts  Options
	demo  Fetcher
	mu    sync.Mutex
	// last synthetic dataset, held in memory only
	demoData *model.Dataset
	demoAt   time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCollector creates a Collector. Zero option fields take defaults.
func NewCollector(fetcher Fetcher, hc *cache.HistoryCache, opts Options, m *metrics.Metrics) *Collector {
	if opts.Symbols.Index == "" {
		opts.Symbols.Index = DefaultSymbols.Index
	}
	if opts.Symbols.Volatility == "" {
		opts.Symbols.Volatility = DefaultSymbols.Volatility
	}
	if opts.Symbols.Breadth == "" {
		opts.Symbols.Breadth = DefaultSymbols.Breadth
	}
	if opts.Symbols.Valuation == "" {
		opts.Symbols.Valuation = opts.Symbols.Index
	}
	if opts.CallDelay < 0 {
		opts.CallDelay = 0
	}
	if opts.BreadthPeriod <= 0 {
		opts.BreadthPeriod = DefaultBreadthPeriod
	}
	if opts.DefaultValuation <= 0 {
		opts.DefaultValuation = DefaultValuationRatio
	}
	c := &Collector{
		Fetcher: fetcher,
		Cache:   hc,
		Metrics: m,
		opts:    opts,
		now:     time.Now,
		sleep:   sleepContext,
	}
	if opts.Demo {
		c.demo = &MockFetcher{BasePrice: 450, Days: 400}
	}
	return c
}

// Collect returns the cached dataset while it is fresh, otherwise runs a
// fetch cycle.
func (c *Collector) Collect(ctx context.Context) (*model.Dataset, error) {
	return c.run(ctx, true)
}

// Refresh always runs a fetch cycle, ignoring any cached dataset.
func (c *Collector) Refresh(ctx context.Context) (*model.Dataset, error) {
	return c.run(ctx, false)
}

func (c *Collector) run(ctx context.Context, useCache bool) (*model.Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	started := time.Now()
	if useCache && c.Cache != nil {
		if ds, ok := c.Cache.Read(ctx); ok {
			c.Metrics.ObserveCycle("cached", started)
			return ds, nil
		}
	}

	fetcher := c.Fetcher
	synthetic := false
	if fetcher == nil || !fetcher.HasCredential() {
		if c.demo == nil {
			logger.Warnf("no API credential configured, skipping fetch cycle")
			c.Metrics.ObserveCycle("no_data", started)
			return nil, ErrNoData
		}
		if useCache && c.demoData != nil && c.now().Sub(c.demoAt) < c.freshness() {
			c.Metrics.ObserveCycle("cached", started)
			return c.demoData, nil
		}
		logger.Infof("no API credential configured, serving synthetic demo data")
		fetcher = c.demo
		synthetic = true
	}

	ds, err := c.assemble(ctx, fetcher, !synthetic)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			c.Metrics.ObserveCycle("no_data", started)
		} else {
			c.Metrics.ObserveCycle("canceled", started)
		}
		return nil, err
	}
	ds.Synthetic = synthetic

	if synthetic {
		c.demoData, c.demoAt = ds, c.now()
		c.Metrics.ObserveCycle("synthetic", started)
		return ds, nil
	}
	if c.Cache != nil {
		if err := c.Cache.Write(ctx, ds); err != nil {
			logger.Warnf("history cache write failed: %v", err)
		}
	}
	c.Metrics.ObserveCycle("ok", started)
	return ds, nil
}

func (c *Collector) freshness() time.Duration {
	if c.Cache != nil {
		return c.Cache.Freshness()
	}
	return cache.DefaultFreshness
}

// assemble issues the provider calls strictly in sequence. With throttle set
// a fixed delay separates them.
func (c *Collector) assemble(ctx context.Context, f Fetcher, throttle bool) (*model.Dataset, error) {
	delay := c.opts.CallDelay
	if !throttle {
		delay = 0
	}

	cycleID := uuid.New().String()
	log := logger.WithFields(logrus.Fields{"cycle_id": cycleID, "source": f.Name()})
	log.Infof("fetch cycle started")

	sym := c.opts.Symbols
	full := url.Values{"outputsize": []string{"full"}}

	indexPayload, ok := f.Query(ctx, Request{Function: FunctionDailySeries, Symbol: sym.Index, Params: full})
	indexDaily := model.Series{}
	if ok {
		indexDaily = series.Normalize(indexPayload, DailySeriesKey)
	}
	if len(indexDaily) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Errorf("primary series %s unavailable, cycle produced no data", sym.Index)
		return nil, ErrNoData
	}

	if err := c.sleep(ctx, delay); err != nil {
		return nil, err
	}
	volatility := model.Series{}
	if p, ok := f.Query(ctx, Request{Function: FunctionDailySeries, Symbol: sym.Volatility, Params: full}); ok {
		volatility = series.Normalize(p, DailySeriesKey)
	}
	if len(volatility) == 0 {
		log.Warnf("volatility series %s unavailable, using empty series", sym.Volatility)
	}

	if err := c.sleep(ctx, delay); err != nil {
		return nil, err
	}
	var breadth model.Series
	if p, ok := f.Query(ctx, Request{Function: FunctionDailySeries, Symbol: sym.Breadth, Params: full}); ok {
		breadth = BreadthProxy(series.Normalize(p, DailySeriesKey), c.opts.BreadthPeriod)
	}
	if len(breadth) == 0 {
		log.Warnf("breadth proxy %s unavailable, using synthetic point", sym.Breadth)
		breadth = model.Series{{Date: c.now().Format(model.DateLayout), Value: 0}}
	}

	if err := c.sleep(ctx, delay); err != nil {
		return nil, err
	}
	valuation := c.opts.DefaultValuation
	if p, ok := f.Query(ctx, Request{Function: FunctionOverview, Symbol: sym.Valuation}); ok {
		if v, ok := ParseRatio(p["PERatio"]); ok {
			valuation = v
		} else {
			log.Warnf("valuation ratio missing from overview, using default %.1f", valuation)
		}
	} else {
		log.Warnf("valuation overview unavailable, using default %.1f", valuation)
	}

	last, _ := indexDaily.Last()
	ds := &model.Dataset{
		CycleID:         cycleID,
		IndexDaily:      indexDaily,
		IndexWeekly:     series.Weekly(indexDaily),
		IndexMonthly:    series.Monthly(indexDaily),
		VolatilityDaily: volatility,
		Breadth:         breadth,
		ValuationRatio:  valuation,
		LastUpdated:     last.Date,
		FetchedAt:       c.now().UTC(),
	}
	log.WithFields(logrus.Fields{
		"daily":     len(ds.IndexDaily),
		"weekly":    len(ds.IndexWeekly),
		"monthly":   len(ds.IndexMonthly),
		"vol":       len(ds.VolatilityDaily),
		"breadth":   len(ds.Breadth),
		"valuation": ds.ValuationRatio,
	}).Infof("fetch cycle complete")
	return ds, nil
}

// BreadthProxy converts equal-weight benchmark closes into the percentage
// distance above their own trailing SMA. Positive values mean the typical
// constituent is trending up.
func BreadthProxy(closes model.Series, period int) model.Series {
	sma := calculator.SMA(closes, period)
	if len(sma) == 0 {
		return model.Series{}
	}
	out := make(model.Series, 0, len(sma))
	offset := period - 1
	for i, avg := range sma {
		if avg.Value == 0 {
			continue
		}
		c := closes[i+offset]
		out = append(out, model.Point{Date: c.Date, Value: (c.Value/avg.Value - 1) * 100})
	}
	return out
}

// ParseRatio reads a positive finite ratio from a provider field, which may
// be a string ("None" on missing data) or a number.
func ParseRatio(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
