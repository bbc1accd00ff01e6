package strategy

import (
	"fmt"

	"LeverageGauge/internal/model"
)

// Rule constants. Changing any of them changes every historical score.
const (
	Baseline = 50

	TrendPoints      = 15
	OversoldRSI      = 30.0
	OversoldPoints   = 20
	OverboughtRSI    = 70.0
	OverboughtPoints = -20
	CalmVolatility   = 20.0
	CalmPoints       = 10
	StressVolatility = 30.0
	StressPoints     = -20
	BreadthPoints    = 15

	MinScore = 0
	MaxScore = 100

	ValuationThreshold = 22.0
	SafetyCap          = 45
)

// scoreTrend adds points when price trades above its trend average.
func scoreTrend(r model.Readings) model.FactorScore {
	f := model.FactorScore{Name: "Trend"}
	if !model.Available(r.Price) || !model.Available(r.TrendAverage) {
		f.Commentary = "trend average unavailable"
		return f
	}
	if r.Price > r.TrendAverage {
		f.Points, f.Applied = TrendPoints, true
		f.Commentary = fmt.Sprintf("price %.2f above trend %.2f", r.Price, r.TrendAverage)
		return f
	}
	f.Commentary = fmt.Sprintf("price %.2f at or below trend %.2f", r.Price, r.TrendAverage)
	return f
}

// scoreMomentum rewards oversold and penalizes overbought RSI readings.
func scoreMomentum(r model.Readings) model.FactorScore {
	f := model.FactorScore{Name: "Momentum"}
	if !model.Available(r.RSI) {
		f.Commentary = "RSI unavailable"
		return f
	}
	switch {
	case r.RSI < OversoldRSI:
		f.Points, f.Applied = OversoldPoints, true
		f.Commentary = fmt.Sprintf("RSI=%.0f oversold", r.RSI)
	case r.RSI > OverboughtRSI:
		f.Points, f.Applied = OverboughtPoints, true
		f.Commentary = fmt.Sprintf("RSI=%.0f overbought", r.RSI)
	default:
		f.Commentary = fmt.Sprintf("RSI=%.0f neutral", r.RSI)
	}
	return f
}

// scoreVolatility rewards calm and penalizes stressed volatility.
func scoreVolatility(r model.Readings) model.FactorScore {
	f := model.FactorScore{Name: "Volatility"}
	if !model.Available(r.Volatility) {
		f.Commentary = "volatility unavailable"
		return f
	}
	switch {
	case r.Volatility < CalmVolatility:
		f.Points, f.Applied = CalmPoints, true
		f.Commentary = fmt.Sprintf("VIX=%.1f calm", r.Volatility)
	case r.Volatility > StressVolatility:
		f.Points, f.Applied = StressPoints, true
		f.Commentary = fmt.Sprintf("VIX=%.1f stressed", r.Volatility)
	default:
		f.Commentary = fmt.Sprintf("VIX=%.1f normal", r.Volatility)
	}
	return f
}

// scoreBreadth adds points when the breadth proxy is positive.
func scoreBreadth(r model.Readings) model.FactorScore {
	f := model.FactorScore{Name: "Breadth"}
	if !model.Available(r.Breadth) {
		f.Commentary = "breadth unavailable"
		return f
	}
	if r.Breadth > 0 {
		f.Points, f.Applied = BreadthPoints, true
		f.Commentary = fmt.Sprintf("breadth %+.2f%% positive", r.Breadth)
		return f
	}
	f.Commentary = fmt.Sprintf("breadth %+.2f%%", r.Breadth)
	return f
}
