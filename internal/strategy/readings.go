package strategy

import (
	"LeverageGauge/internal/calculator"
	"LeverageGauge/internal/model"
)

// Indicator periods used for the score readings.
const (
	TrendPeriod = 200
	RSIPeriod   = calculator.DefaultRSIPeriod
)

// ReadingsFrom derives the latest indicator values from a dataset. Readings
// that cannot be computed stay unavailable.
func ReadingsFrom(ds *model.Dataset) model.Readings {
	r := model.NoReadings()
	if ds == nil {
		return r
	}
	if v, ok := calculator.Latest(ds.IndexDaily); ok {
		r.Price = v
	}
	if v, ok := calculator.Latest(calculator.SMA(ds.IndexDaily, TrendPeriod)); ok {
		r.TrendAverage = v
	}
	if v, ok := calculator.Latest(calculator.RSI(ds.IndexDaily, RSIPeriod)); ok {
		r.RSI = v
	}
	if v, ok := calculator.Latest(ds.VolatilityDaily); ok {
		r.Volatility = v
	}
	if v, ok := calculator.Latest(ds.Breadth); ok {
		r.Breadth = v
	}
	if ds.ValuationRatio > 0 {
		r.ValuationRatio = ds.ValuationRatio
	}
	return r
}

// Score evaluates a dataset, returning the flat no-data score for nil.
func Score(ds *model.Dataset) *model.LeverageScore {
	if ds == nil {
		return NoDataScore()
	}
	return Evaluate(ReadingsFrom(ds))
}
