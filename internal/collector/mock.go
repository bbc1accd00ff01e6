package collector

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"LeverageGauge/internal/model"
)

// MockFetcher serves deterministic synthetic payloads shaped like the real
// provider's. It backs demo mode and tests.
type MockFetcher struct {
	// BasePrice is the starting level of every generated walk.
	BasePrice float64
	// Days is the number of trading days generated per series.
	Days int
	// PERatio is returned by OVERVIEW requests.
	PERatio float64
	// Fail lists symbols whose requests report no data.
	Fail map[string]bool
	// Payloads overrides generated data per symbol.
	Payloads map[string]Payload
	// End is the last generated trading day; zero means today.
	End time.Time

	mu    sync.Mutex
	calls []Request
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) HasCredential() bool { return true }

// Calls returns the requests served so far.
func (m *MockFetcher) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockFetcher) Query(_ context.Context, req Request) (Payload, bool) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.Fail[req.Symbol] {
		return nil, false
	}
	if p, ok := m.Payloads[req.Symbol]; ok {
		return p, p != nil
	}
	switch req.Function {
	case FunctionOverview:
		pe := m.PERatio
		if pe == 0 {
			pe = 21.3
		}
		return Payload{"Symbol": req.Symbol, "PERatio": strconv.FormatFloat(pe, 'f', 2, 64)}, true
	default:
		return dailyPayload(m.walk(req.Symbol)), true
	}
}

func (m *MockFetcher) walk(symbol string) model.Series {
	days := m.Days
	if days <= 0 {
		days = 300
	}
	base := m.BasePrice
	if base <= 0 {
		base = 100
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return GenerateWalk(symbol, base, days, end)
}

// GenerateWalk builds a seeded random walk of trading-day closes ending on
// or before end. The same symbol always yields the same walk.
func GenerateWalk(symbol string, base float64, days int, end time.Time) model.Series {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	dates := make([]string, 0, days)
	d := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for len(dates) < days {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, d.Format(model.DateLayout))
		}
		d = d.AddDate(0, 0, -1)
	}

	out := make(model.Series, days)
	price := base
	for i := days - 1; i >= 0; i-- {
		out[days-1-i] = model.Point{Date: dates[i], Value: price}
		price *= 1 + (r.Float64()-0.48)*0.02
		if price <= 0 {
			price = base
		}
	}
	return out
}

func dailyPayload(s model.Series) Payload {
	dated := make(map[string]interface{}, len(s))
	for _, p := range s {
		dated[p.Date] = map[string]interface{}{
			"4. close": strconv.FormatFloat(p.Value, 'f', 4, 64),
		}
	}
	return Payload{
		"Meta Data":    map[string]interface{}{"1. Information": "Daily Prices"},
		DailySeriesKey: dated,
	}
}
