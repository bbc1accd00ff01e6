package notifier

import (
	"fmt"
	"html"
	"strings"

	"LeverageGauge/internal/model"
)

// FormatScoreReport formats a dashboard view into a Telegram HTML message.
func FormatScoreReport(v model.View) string {
	var b strings.Builder

	if v.NoData {
		b.WriteString("📉 <b>LeverageGauge</b>\n\n")
		b.WriteString("No market data available. Score: 0\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📊 <b>LeverageGauge</b> | %s\n", html.EscapeString(v.LastUpdated)))
	if v.Synthetic {
		b.WriteString("<i>demo data, not live</i>\n")
	}
	b.WriteString("\n")

	for _, c := range v.Charts {
		b.WriteString(fmt.Sprintf("%s %s: %s", trendArrow(c.Trend), html.EscapeString(c.Title), html.EscapeString(c.Current)))
		if c.SubLabel != "" {
			b.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(c.SubLabel)))
		}
		b.WriteString("\n")
	}

	if v.Detail != nil && len(v.Detail.Factors) > 0 {
		b.WriteString("\n<b>Factors:</b>\n")
		for _, f := range v.Detail.Factors {
			b.WriteString(fmt.Sprintf("  %s: %+d (%s)\n", f.Name, f.Points, html.EscapeString(f.Commentary)))
		}
	}

	b.WriteString(fmt.Sprintf("\n💡 <b>Leverage score: %d/100</b>\n", v.Score))
	b.WriteString(fmt.Sprintf("Valuation ratio: %.1f\n", v.ValuationRatio))

	if v.SafetyWarning {
		msg := "valuation above threshold"
		if v.Detail != nil && v.Detail.WarningMsg != "" {
			msg = v.Detail.WarningMsg
		}
		b.WriteString(fmt.Sprintf("\n⚠️ <b>Safety warning:</b> %s\n", html.EscapeString(msg)))
	}
	return b.String()
}

// FormatWarningTransition returns a header line when the safety warning
// flips between cycles, or "" when it is unchanged.
func FormatWarningTransition(prev, cur bool) string {
	switch {
	case !prev && cur:
		return "🚨 <b>Safety warning raised</b>\n\n"
	case prev && !cur:
		return "✅ <b>Safety warning cleared</b>\n\n"
	default:
		return ""
	}
}

// FormatHelp lists the available bot commands.
func FormatHelp() string {
	return "Available commands:\n• /score current leverage score\n• /refresh force a data refresh\n• /history recent scores"
}

// FormatHistory renders recent scores, newest first.
func FormatHistory(scores []ScoreLine) string {
	if len(scores) == 0 {
		return "No score history recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent scores</b>\n\n")
	for _, s := range scores {
		flag := ""
		if s.SafetyWarning {
			flag = " ⚠️"
		}
		b.WriteString(fmt.Sprintf("%s  %d%s\n", s.When, s.Score, flag))
	}
	return b.String()
}

// ScoreLine is one row of FormatHistory.
type ScoreLine struct {
	When          string
	Score         int
	SafetyWarning bool
}

func trendArrow(t model.Trend) string {
	switch t {
	case model.TrendUp:
		return "▲"
	case model.TrendDown:
		return "▼"
	default:
		return "•"
	}
}
