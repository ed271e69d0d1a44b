package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomclarkson/marketlens/internal/models"
)

// formatAnalysis formats a stock analysis as markdown.
func formatAnalysis(a *models.StockAnalysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Analysis: %s\n\n", a.Ticker))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", a.GeneratedAt.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("**Recommendation:** %s (confidence %d%%)\n\n", a.Recommendation.Rating, a.Recommendation.Confidence))
	sb.WriteString(a.Recommendation.Summary + "\n\n")

	// Scores
	sb.WriteString("## Scores\n\n")
	sb.WriteString("| Category | Score | |\n")
	sb.WriteString("|----------|------:|---|\n")
	for _, row := range []struct {
		name  string
		score int
	}{
		{"Valuation", a.Scores.Valuation},
		{"Quality", a.Scores.Quality},
		{"Growth", a.Scores.Growth},
		{"Momentum", a.Scores.Momentum},
		{"**Overall**", a.Scores.Overall},
	} {
		sb.WriteString(fmt.Sprintf("| %s | %d/100 | `%s` |\n", row.name, row.score, scoreBar(row.score)))
	}
	sb.WriteString("\n")

	// Indicators
	if a.Indicators != nil {
		sb.WriteString("## Technical Indicators\n\n")
		sb.WriteString("| Indicator | Value |\n")
		sb.WriteString("|-----------|------:|\n")
		ind := a.Indicators
		for _, row := range []struct {
			name   string
			value  *float64
			format string
		}{
			{"RSI (14)", ind.RSI14, "%.1f"},
			{"MACD", ind.MACD, "%.3f"},
			{"MACD Signal", ind.MACDSignal, "%.3f"},
			{"MACD Histogram", ind.MACDHistogram, "%.3f"},
			{"SMA 20", ind.SMA20, "%.2f"},
			{"SMA 50", ind.SMA50, "%.2f"},
			{"Bollinger Upper", ind.BollingerUpper, "%.2f"},
			{"Bollinger Lower", ind.BollingerLower, "%.2f"},
			{"ATR (14)", ind.ATR14, "%.2f"},
			{"5d Change", ind.PriceChange5D, "%.1f%%"},
			{"20d Change", ind.PriceChange20D, "%.1f%%"},
			{"Volume Ratio", ind.VolumeRatio, "%.2fx"},
			{"From 52w High", ind.PctFrom52WeekHigh, "%.1f%%"},
			{"From 52w Low", ind.PctFrom52WeekLow, "%.1f%%"},
		} {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", row.name, fmtOpt(row.value, row.format)))
		}
		sb.WriteString("\n")
	}

	// Signals
	sb.WriteString("## Signals\n\n")
	if len(a.Signals) == 0 {
		sb.WriteString("No signals triggered.\n")
	} else {
		sb.WriteString("| Type | Indicator | Strength | Detail |\n")
		sb.WriteString("|------|-----------|----------|--------|\n")
		for _, sig := range a.Signals {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				string(sig.Type), sig.Indicator, strings.Repeat("+", sig.Strength), sig.Message))
		}
	}

	return sb.String()
}

// scoreBar renders a 10-slot bar for a 0-100 score.
func scoreBar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := score / 10
	return strings.Repeat("#", filled) + strings.Repeat(".", 10-filled)
}

// fmtOpt formats an optional metric, rendering absent values as a dash.
func fmtOpt(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// formatJobRuns formats job run history as a markdown table, newest first.
func formatJobRuns(runs []*models.JobRun) string {
	if len(runs) == 0 {
		return "No job runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString("| Created | Type | Ticker | Status | Duration |\n")
	sb.WriteString("|---------|------|--------|--------|---------:|\n")
	for _, run := range runs {
		duration := "-"
		if run.Status == models.JobStatusCompleted || run.Status == models.JobStatusFailed {
			duration = (time.Duration(run.DurationMS) * time.Millisecond).String()
		}
		status := run.Status
		if run.Error != "" {
			status = fmt.Sprintf("%s (%s)", run.Status, run.Error)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"), run.JobType, run.Ticker, status, duration))
	}
	return sb.String()
}
