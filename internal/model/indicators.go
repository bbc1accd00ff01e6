package model

import "math"

// Readings holds the latest indicator values feeding the score model.
// A NaN field means the reading is unavailable and its rule is skipped.
type Readings struct {
	Price          float64
	TrendAverage   float64
	RSI            float64
	Volatility     float64
	Breadth        float64
	ValuationRatio float64
}

// NoReadings returns Readings with every field unavailable.
func NoReadings() Readings {
	nan := math.NaN()
	return Readings{Price: nan, TrendAverage: nan, RSI: nan, Volatility: nan, Breadth: nan, ValuationRatio: nan}
}

// Available reports whether v holds a usable reading.
func Available(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
