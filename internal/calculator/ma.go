// Package calculator implements the indicator engine. Every indicator is a
// pure function of its input series and period; inputs that are too short
// produce an empty series rather than an error.
package calculator

import "LeverageGauge/internal/model"

// SMA returns the trailing simple moving average, emitted from index
// period-1 onward.
func SMA(s model.Series, period int) model.Series {
	if period <= 0 || len(s) < period {
		return model.Series{}
	}
	out := make(model.Series, 0, len(s)-period+1)
	sum := 0.0
	for i, p := range s {
		sum += p.Value
		if i >= period {
			sum -= s[i-period].Value
		}
		if i >= period-1 {
			out = append(out, model.Point{Date: p.Date, Value: sum / float64(period)})
		}
	}
	return out
}

// EMA returns the exponential moving average seeded with the simple average
// of the first period values, smoothing constant k = 2/(period+1).
func EMA(s model.Series, period int) model.Series {
	if period <= 0 || len(s) < period {
		return model.Series{}
	}
	k := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += s[i].Value
	}
	ema := seed / float64(period)

	out := make(model.Series, 0, len(s)-period+1)
	out = append(out, model.Point{Date: s[period-1].Date, Value: ema})
	for i := period; i < len(s); i++ {
		ema = (s[i].Value-ema)*k + ema
		out = append(out, model.Point{Date: s[i].Date, Value: ema})
	}
	return out
}

// Latest returns the final value of an indicator series.
func Latest(s model.Series) (float64, bool) {
	p, ok := s.Last()
	if !ok {
		return 0, false
	}
	return p.Value, true
}
