package model

import "time"

// DateLayout is the calendar-day format used for every Point date.
const DateLayout = "2006-01-02"

// Point is a single observation on one trading day.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Time parses the point date. ok is false when the date is malformed.
func (p Point) Time() (time.Time, bool) {
	t, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Series is a date-ascending, date-unique sequence of points.
// A nil or empty Series means "no data".
type Series []Point

// Values returns the point values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final point of the series.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Dataset is the bundle produced by one successful fetch cycle.
// It is never mutated after construction; the next cycle supersedes it.
type Dataset struct {
	CycleID         string    `json:"cycle_id"`
	IndexDaily      Series    `json:"index_daily"`
	IndexWeekly     Series    `json:"index_weekly"`
	IndexMonthly    Series    `json:"index_monthly"`
	VolatilityDaily Series    `json:"volatility_daily"`
	Breadth         Series    `json:"breadth"`
	ValuationRatio  float64   `json:"valuation_ratio"`
	LastUpdated     string    `json:"last_updated"`
	Synthetic       bool      `json:"synthetic"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// CacheEntry is the serialized form of a cached dataset.
type CacheEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Data      *Dataset  `json:"data"`
}
