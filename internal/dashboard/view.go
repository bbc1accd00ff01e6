package dashboard

import (
	"fmt"

	"github.com/shopspring/decimal"

	"LeverageGauge/internal/calculator"
	"LeverageGauge/internal/model"
	"LeverageGauge/internal/strategy"
)

// Chart titles, in display order.
const (
	TitleDaily      = "S&P 500 Daily"
	TitleWeekly     = "S&P 500 Weekly"
	TitleMonthly    = "S&P 500 Monthly"
	TitleRSI        = "RSI 14"
	TitleVolatility = "Volatility"
	TitleBreadth    = "Breadth"
)

// Overlay periods drawn on the index charts.
const (
	ShortEMAPeriod = 20
	LongSMAPeriod  = strategy.TrendPeriod
)

// Build assembles the presentation payload for a dataset and its score.
// A nil dataset yields the no-data view with a flat zero score.
func Build(ds *model.Dataset, score *model.LeverageScore) model.View {
	if ds == nil {
		return NoData()
	}
	if score == nil {
		score = strategy.Score(ds)
	}

	daily := chart(TitleDaily, ds.IndexDaily)
	daily.Overlays = map[string]model.Series{
		fmt.Sprintf("EMA %d", ShortEMAPeriod): calculator.EMA(ds.IndexDaily, ShortEMAPeriod),
		fmt.Sprintf("SMA %d", LongSMAPeriod):  calculator.SMA(ds.IndexDaily, LongSMAPeriod),
	}
	daily.SubLabel = rangeLabel(ds.IndexDaily)

	weekly := chart(TitleWeekly, ds.IndexWeekly)
	weekly.Overlays = map[string]model.Series{
		fmt.Sprintf("EMA %d", ShortEMAPeriod): calculator.EMA(ds.IndexWeekly, ShortEMAPeriod),
	}

	return model.View{
		Synthetic:   ds.Synthetic,
		LastUpdated: ds.LastUpdated,
		CycleID:     ds.CycleID,
		Charts: []model.Chart{
			daily,
			weekly,
			chart(TitleMonthly, ds.IndexMonthly),
			chart(TitleRSI, calculator.RSI(ds.IndexDaily, strategy.RSIPeriod)),
			chart(TitleVolatility, ds.VolatilityDaily),
			chart(TitleBreadth, ds.Breadth),
		},
		Score:          score.Score,
		SafetyWarning:  score.SafetyWarning,
		ValuationRatio: ds.ValuationRatio,
		Detail:         score,
	}
}

// NoData is the view shown when no dataset could be produced.
func NoData() model.View {
	return model.View{
		NoData: true,
		Charts: []model.Chart{},
		Score:  strategy.NoDataScore().Score,
	}
}

func chart(title string, s model.Series) model.Chart {
	c := model.Chart{Title: title, Trend: TrendOf(s), Points: s}
	if s == nil {
		c.Points = model.Series{}
	}
	if v, ok := calculator.Latest(s); ok {
		c.Current = FormatValue(v)
	} else {
		c.Current = "n/a"
	}
	return c
}

// FormatValue renders v with two fixed decimals.
func FormatValue(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// TrendOf compares the last two points of s.
func TrendOf(s model.Series) model.Trend {
	if len(s) < 2 {
		return model.TrendFlat
	}
	prev, last := s[len(s)-2].Value, s[len(s)-1].Value
	switch {
	case last > prev:
		return model.TrendUp
	case last < prev:
		return model.TrendDown
	default:
		return model.TrendFlat
	}
}

// rangeLabel describes where the latest close sits in its 52-week range.
func rangeLabel(s model.Series) string {
	cur, ok := calculator.Latest(s)
	if !ok {
		return ""
	}
	high, low, err := calculator.Range(s, calculator.TradingDaysPerYear)
	if err != nil {
		return ""
	}
	pos, err := calculator.Position(cur, high, low)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("52w range %s - %s, at %s%%",
		FormatValue(low), FormatValue(high),
		decimal.NewFromFloat(pos*100).StringFixed(0))
}
