package calculator

import (
	"errors"
	"math"

	"LeverageGauge/internal/model"
)

// TradingDaysPerYear is the lookback used for 52-week ranges.
const TradingDaysPerYear = 252

// Range scans the most recent lookback points and returns the high and low.
// A lookback <= 0 scans the whole series.
func Range(s model.Series, lookback int) (high, low float64, err error) {
	if len(s) == 0 {
		return 0, 0, errors.New("no points provided")
	}
	start := 0
	if lookback > 0 && len(s) > lookback {
		start = len(s) - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range s[start:] {
		if p.Value > high {
			high = p.Value
		}
		if p.Value < low {
			low = p.Value
		}
	}
	return high, low, nil
}

// Position returns where current sits within [low, high], clamped to 0..1.
func Position(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
