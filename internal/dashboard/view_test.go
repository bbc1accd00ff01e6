package dashboard

import (
	"testing"
	"time"

	"LeverageGauge/internal/model"
	"LeverageGauge/internal/series"
	"LeverageGauge/internal/strategy"
)

func ramp(n int, start, step float64) model.Series {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make(model.Series, n)
	for i := 0; i < n; i++ {
		out[i] = model.Point{
			Date:  base.AddDate(0, 0, i).Format(model.DateLayout),
			Value: start + float64(i)*step,
		}
	}
	return out
}

func testDataset() *model.Dataset {
	daily := ramp(300, 100, 1)
	return &model.Dataset{
		CycleID:         "cycle-1",
		IndexDaily:      daily,
		IndexWeekly:     series.Weekly(daily),
		IndexMonthly:    series.Monthly(daily),
		VolatilityDaily: ramp(300, 30, -0.05),
		Breadth:         model.Series{{Date: "2023-10-28", Value: 1.5}},
		ValuationRatio:  21,
		LastUpdated:     daily[len(daily)-1].Date,
	}
}

func TestBuild_Charts(t *testing.T) {
	ds := testDataset()
	v := Build(ds, nil)

	if v.NoData {
		t.Fatal("expected data view")
	}
	wantTitles := []string{TitleDaily, TitleWeekly, TitleMonthly, TitleRSI, TitleVolatility, TitleBreadth}
	if len(v.Charts) != len(wantTitles) {
		t.Fatalf("expected %d charts, got %d", len(wantTitles), len(v.Charts))
	}
	for i, title := range wantTitles {
		if v.Charts[i].Title != title {
			t.Errorf("chart %d: title %q, want %q", i, v.Charts[i].Title, title)
		}
	}

	daily := v.Charts[0]
	if daily.Current != "399.00" {
		t.Errorf("daily current = %q", daily.Current)
	}
	if daily.Trend != model.TrendUp {
		t.Errorf("daily trend = %q", daily.Trend)
	}
	if len(daily.Overlays["EMA 20"]) != 281 || len(daily.Overlays["SMA 200"]) != 101 {
		t.Errorf("unexpected overlay lengths: %d, %d", len(daily.Overlays["EMA 20"]), len(daily.Overlays["SMA 200"]))
	}
	if daily.SubLabel != "52w range 148.00 - 399.00, at 100%" {
		t.Errorf("sub label = %q", daily.SubLabel)
	}

	if v.Charts[4].Trend != model.TrendDown {
		t.Errorf("volatility trend = %q", v.Charts[4].Trend)
	}
	if v.Charts[5].Trend != model.TrendFlat || v.Charts[5].Current != "1.50" {
		t.Errorf("breadth chart = %+v", v.Charts[5])
	}
	if v.LastUpdated != ds.LastUpdated || v.CycleID != "cycle-1" {
		t.Errorf("metadata not carried: %+v", v)
	}
}

func TestBuild_UsesGivenScore(t *testing.T) {
	score := &model.LeverageScore{Score: 45, SafetyWarning: true}
	v := Build(testDataset(), score)
	if v.Score != 45 || !v.SafetyWarning || v.Detail != score {
		t.Errorf("score not carried: %+v", v)
	}
}

func TestBuild_ComputesScoreWhenMissing(t *testing.T) {
	ds := testDataset()
	want := strategy.Score(ds).Score
	if got := Build(ds, nil).Score; got != want {
		t.Errorf("score = %d, want %d", got, want)
	}
}

func TestBuild_NoData(t *testing.T) {
	v := Build(nil, nil)
	if !v.NoData || v.Score != 0 || len(v.Charts) != 0 {
		t.Errorf("unexpected no-data view: %+v", v)
	}
}

func TestBuild_EmptySeries(t *testing.T) {
	ds := testDataset()
	ds.VolatilityDaily = nil
	c := Build(ds, nil).Charts[4]
	if c.Current != "n/a" || c.Trend != model.TrendFlat || c.Points == nil {
		t.Errorf("unexpected empty chart: %+v", c)
	}
}

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name string
		s    model.Series
		want model.Trend
	}{
		{"empty", nil, model.TrendFlat},
		{"single", model.Series{{Date: "2024-01-02", Value: 1}}, model.TrendFlat},
		{"up", model.Series{{Date: "2024-01-02", Value: 1}, {Date: "2024-01-03", Value: 2}}, model.TrendUp},
		{"down", model.Series{{Date: "2024-01-02", Value: 2}, {Date: "2024-01-03", Value: 1}}, model.TrendDown},
		{"flat", model.Series{{Date: "2024-01-02", Value: 2}, {Date: "2024-01-03", Value: 2}}, model.TrendFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendOf(tt.s); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5123.456, "5123.46"},
		{0.1 + 0.2, "0.30"},
		{20, "20.00"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
