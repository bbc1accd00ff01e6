package calculator

import "LeverageGauge/internal/model"

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// RSI computes the Wilder-smoothed relative strength index. The first value
// is emitted at index period; an average loss of zero yields exactly 100.
func RSI(s model.Series, period int) model.Series {
	if period <= 0 || len(s) < period+1 {
		return model.Series{}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := s[i].Value - s[i-1].Value
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p

	out := make(model.Series, 0, len(s)-period)
	out = append(out, model.Point{Date: s[period].Date, Value: rsiValue(avgGain, avgLoss)})

	for i := period + 1; i < len(s); i++ {
		change := s[i].Value - s[i-1].Value
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out = append(out, model.Point{Date: s[i].Date, Value: rsiValue(avgGain, avgLoss)})
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
