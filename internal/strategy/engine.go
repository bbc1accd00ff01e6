package strategy

import (
	"fmt"

	"LeverageGauge/internal/model"
)

// Evaluate applies the rules in order: baseline, signal adjustments, clamp,
// then the valuation safety cap.
func Evaluate(r model.Readings) *model.LeverageScore {
	factors := []model.FactorScore{
		scoreTrend(r),
		scoreMomentum(r),
		scoreVolatility(r),
		scoreBreadth(r),
	}

	raw := Baseline
	for _, f := range factors {
		raw += f.Points
	}

	score := clamp(raw, MinScore, MaxScore)

	result := &model.LeverageScore{
		Score:   score,
		Raw:     raw,
		Factors: factors,
	}

	if model.Available(r.ValuationRatio) && r.ValuationRatio > ValuationThreshold {
		if result.Score > SafetyCap {
			result.Score = SafetyCap
		}
		result.SafetyWarning = true
		result.WarningMsg = fmt.Sprintf("valuation ratio %.1f above %.0f: score capped at %d", r.ValuationRatio, ValuationThreshold, SafetyCap)
	}
	return result
}

// NoDataScore is the flat score shown when no dataset is available.
func NoDataScore() *model.LeverageScore {
	return &model.LeverageScore{Score: 0, Raw: 0}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
