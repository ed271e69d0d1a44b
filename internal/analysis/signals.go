package analysis

import (
	"fmt"

	"github.com/tomclarkson/marketlens/internal/models"
)

// GenerateSignals derives discrete bullish/bearish signals from a
// fundamentals snapshot and an optional indicator set. Rules are evaluated
// independently in a fixed order, each appending at most one signal; the
// result is not sorted or deduplicated. The signal list does not read the
// score breakdown.
func GenerateSignals(f *models.Fundamentals, ind *models.IndicatorSet) []models.Signal {
	signals := []models.Signal{}

	if ind != nil && ind.RSI14 != nil {
		rsi := *ind.RSI14
		if rsi < 30 {
			strength := 2
			if rsi < 20 {
				strength = 3
			}
			signals = append(signals, models.Signal{
				Type:      models.SignalBullish,
				Indicator: "RSI",
				Message:   fmt.Sprintf("Oversold: RSI at %.1f", rsi),
				Strength:  strength,
			})
		} else if rsi > 70 {
			strength := 2
			if rsi > 80 {
				strength = 3
			}
			signals = append(signals, models.Signal{
				Type:      models.SignalBearish,
				Indicator: "RSI",
				Message:   fmt.Sprintf("Overbought: RSI at %.1f", rsi),
				Strength:  strength,
			})
		}
	}

	if ind != nil && ind.MACDHistogram != nil {
		// A histogram of exactly zero counts as bearish.
		if *ind.MACDHistogram > 0 {
			signals = append(signals, models.Signal{
				Type:      models.SignalBullish,
				Indicator: "MACD",
				Message:   "MACD histogram positive: bullish momentum",
				Strength:  2,
			})
		} else {
			signals = append(signals, models.Signal{
				Type:      models.SignalBearish,
				Indicator: "MACD",
				Message:   "MACD histogram negative: bearish momentum",
				Strength:  2,
			})
		}
	}

	if f != nil && f.PE != nil && *f.PE > 0 && *f.PE < 15 {
		strength := 2
		if *f.PE < 10 {
			strength = 3
		}
		signals = append(signals, models.Signal{
			Type:      models.SignalBullish,
			Indicator: "Valuation",
			Message:   fmt.Sprintf("Attractive valuation: PE at %.1f", *f.PE),
			Strength:  strength,
		})
	}

	if f != nil && f.ROE != nil && *f.ROE > 0.20 {
		strength := 2
		if *f.ROE > 0.30 {
			strength = 3
		}
		signals = append(signals, models.Signal{
			Type:      models.SignalBullish,
			Indicator: "Quality",
			Message:   fmt.Sprintf("High return on equity: %.1f%%", *f.ROE*100),
			Strength:  strength,
		})
	}

	if f != nil && f.DebtToEquity != nil {
		de := *f.DebtToEquity
		if de < 0.3 {
			signals = append(signals, models.Signal{
				Type:      models.SignalBullish,
				Indicator: "Balance Sheet",
				Message:   fmt.Sprintf("Low leverage: debt/equity at %.2f", de),
				Strength:  2,
			})
		} else if de > 2 {
			strength := 2
			if de > 3 {
				strength = 3
			}
			signals = append(signals, models.Signal{
				Type:      models.SignalBearish,
				Indicator: "Balance Sheet",
				Message:   fmt.Sprintf("High leverage: debt/equity at %.2f", de),
				Strength:  strength,
			})
		}
	}

	if f != nil && f.RevenueCAGR5Y != nil && *f.RevenueCAGR5Y > 0.15 {
		strength := 2
		if *f.RevenueCAGR5Y > 0.25 {
			strength = 3
		}
		signals = append(signals, models.Signal{
			Type:      models.SignalBullish,
			Indicator: "Growth",
			Message:   fmt.Sprintf("Strong revenue growth: %.1f%% CAGR", *f.RevenueCAGR5Y*100),
			Strength:  strength,
		})
	}

	if ind != nil && ind.PriceChange20D != nil {
		chg := *ind.PriceChange20D
		if chg > 10 {
			signals = append(signals, models.Signal{
				Type:      models.SignalBullish,
				Indicator: "Momentum",
				Message:   fmt.Sprintf("Strong 20-day momentum: %+.1f%%", chg),
				Strength:  2,
			})
		} else if chg < -10 {
			signals = append(signals, models.Signal{
				Type:      models.SignalBearish,
				Indicator: "Momentum",
				Message:   fmt.Sprintf("Sharp 20-day decline: %+.1f%%", chg),
				Strength:  2,
			})
		}
	}

	return signals
}
