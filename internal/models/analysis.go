package models

import "time"

// IndicatorSet holds technical indicators evaluated as of the last bar of a
// price series. Each field is nil when the series is too short for that
// specific computation; one missing indicator never fails the others.
type IndicatorSet struct {
	RSI14             *float64 `json:"rsi_14,omitempty"`
	MACD              *float64 `json:"macd,omitempty"`
	MACDSignal        *float64 `json:"macd_signal,omitempty"`
	MACDHistogram     *float64 `json:"macd_histogram,omitempty"`
	SMA20             *float64 `json:"sma_20,omitempty"`
	SMA50             *float64 `json:"sma_50,omitempty"`
	EMA12             *float64 `json:"ema_12,omitempty"`
	EMA26             *float64 `json:"ema_26,omitempty"`
	BollingerUpper    *float64 `json:"bollinger_upper,omitempty"`
	BollingerMiddle   *float64 `json:"bollinger_middle,omitempty"`
	BollingerLower    *float64 `json:"bollinger_lower,omitempty"`
	ATR14             *float64 `json:"atr_14,omitempty"`
	PriceChange5D     *float64 `json:"price_change_5d,omitempty"`  // percent
	PriceChange20D    *float64 `json:"price_change_20d,omitempty"` // percent
	VolumeRatio       *float64 `json:"volume_ratio,omitempty"`
	PctFrom52WeekHigh *float64 `json:"pct_from_52_week_high,omitempty"`
	PctFrom52WeekLow  *float64 `json:"pct_from_52_week_low,omitempty"`
}

// ScoreBreakdown holds the four category scores and their weighted overall.
// All values are integers in [0,100]. Overall is always derived from the
// rounded category scores, never set independently.
type ScoreBreakdown struct {
	Valuation int `json:"valuation"`
	Quality   int `json:"quality"`
	Growth    int `json:"growth"`
	Momentum  int `json:"momentum"`
	Overall   int `json:"overall"`
}

// SignalType classifies a signal's direction
type SignalType string

const (
	SignalBullish SignalType = "bullish"
	SignalBearish SignalType = "bearish"
	SignalNeutral SignalType = "neutral"
)

// Signal is a discrete, thresholded interpretation of one indicator or
// fundamental metric. Strength is 1 (weak) to 3 (strong).
type Signal struct {
	Type      SignalType `json:"type"`
	Indicator string     `json:"indicator"`
	Message   string     `json:"message"`
	Strength  int        `json:"strength"`
}

// Rating values, strongest buy to strongest sell.
const (
	RatingStrongBuy  = "Strong Buy"
	RatingBuy        = "Buy"
	RatingHold       = "Hold"
	RatingSell       = "Sell"
	RatingStrongSell = "Strong Sell"
)

// Recommendation is the summarized verdict for one instrument.
type Recommendation struct {
	Rating     string `json:"rating"`
	Confidence int    `json:"confidence"` // 0-100
	Summary    string `json:"summary"`
}

// StockAnalysis is the full analysis output for one ticker: the indicator
// set, score breakdown, signal list, and recommendation computed from one
// (bars, fundamentals) input pair.
type StockAnalysis struct {
	Ticker         string         `json:"ticker"`
	Indicators     *IndicatorSet  `json:"indicators,omitempty"`
	Scores         ScoreBreakdown `json:"scores"`
	Signals        []Signal       `json:"signals"`
	Recommendation Recommendation `json:"recommendation"`
	GeneratedAt    time.Time      `json:"generated_at"`
}
