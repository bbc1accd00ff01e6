package notifier

import (
	"strings"
	"testing"

	"LeverageGauge/internal/model"
)

func TestFormatScoreReport(t *testing.T) {
	v := model.View{
		LastUpdated: "2024-06-28",
		Charts: []model.Chart{
			{Title: "S&P 500 Daily", Current: "5460.48", Trend: model.TrendUp, SubLabel: "52w range 4103.78 - 5487.03, at 98%"},
			{Title: "Volatility", Current: "12.44", Trend: model.TrendDown},
		},
		Score:          45,
		SafetyWarning:  true,
		ValuationRatio: 27.3,
		Detail: &model.LeverageScore{
			Score: 45, Raw: 75, SafetyWarning: true,
			Factors:    []model.FactorScore{{Name: "Trend", Points: 15, Applied: true, Commentary: "price above trend"}},
			WarningMsg: "valuation ratio 27.3 above 22: score capped at 45",
		},
	}

	msg := FormatScoreReport(v)
	for _, want := range []string{
		"2024-06-28",
		"▲ S&amp;P 500 Daily: 5460.48 (52w range",
		"▼ Volatility: 12.44",
		"Trend: +15 (price above trend)",
		"Leverage score: 45/100",
		"Valuation ratio: 27.3",
		"Safety warning:</b> valuation ratio 27.3 above 22",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "demo data") {
		t.Error("live report flagged as demo")
	}
}

func TestFormatScoreReport_NoDataAndDemo(t *testing.T) {
	msg := FormatScoreReport(model.View{NoData: true})
	if !strings.Contains(msg, "No market data") || !strings.Contains(msg, "Score: 0") {
		t.Errorf("unexpected no-data report: %s", msg)
	}

	demo := FormatScoreReport(model.View{Synthetic: true, Score: 60})
	if !strings.Contains(demo, "demo data") {
		t.Errorf("demo report not flagged: %s", demo)
	}
	if strings.Contains(demo, "Safety warning") {
		t.Errorf("unexpected warning: %s", demo)
	}
}

func TestFormatWarningTransition(t *testing.T) {
	tests := []struct {
		prev, cur bool
		want      string
	}{
		{false, true, "raised"},
		{true, false, "cleared"},
		{true, true, ""},
		{false, false, ""},
	}
	for _, tt := range tests {
		got := FormatWarningTransition(tt.prev, tt.cur)
		if tt.want == "" && got != "" {
			t.Errorf("(%v,%v) expected empty, got %q", tt.prev, tt.cur, got)
		}
		if tt.want != "" && !strings.Contains(got, tt.want) {
			t.Errorf("(%v,%v) = %q, want to contain %q", tt.prev, tt.cur, got, tt.want)
		}
	}
}

func TestFormatHistory(t *testing.T) {
	if got := FormatHistory(nil); !strings.Contains(got, "No score history") {
		t.Errorf("unexpected empty history: %q", got)
	}
	got := FormatHistory([]ScoreLine{{When: "2024-06-28 10:05", Score: 45, SafetyWarning: true}, {When: "2024-06-28 09:05", Score: 65}})
	if !strings.Contains(got, "2024-06-28 10:05  45 ⚠️") || !strings.Contains(got, "2024-06-28 09:05  65\n") {
		t.Errorf("unexpected history: %q", got)
	}
}
