package analysis

import (
	"time"

	"github.com/tomclarkson/marketlens/internal/models"
)

// Analyzer runs the full analysis pipeline for a ticker: indicators from the
// price series, then scores, signals, and a recommendation from the
// (fundamentals, indicators) pair. It holds no state and is safe for
// concurrent use across instruments.
type Analyzer struct{}

// NewAnalyzer creates a new analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze computes a complete StockAnalysis from market data. A nil or
// empty price series yields no indicator set and a neutral momentum score;
// missing fundamentals simply leave their scoring rules inactive.
func (a *Analyzer) Analyze(data *models.MarketData) *models.StockAnalysis {
	if data == nil {
		data = &models.MarketData{}
	}

	var indicators *models.IndicatorSet
	if len(data.Bars) > 0 {
		indicators = ComputeIndicators(data.Bars)
	}

	scores := Score(data.Fundamentals, indicators)
	signals := GenerateSignals(data.Fundamentals, indicators)

	return &models.StockAnalysis{
		Ticker:         data.Ticker,
		Indicators:     indicators,
		Scores:         scores,
		Signals:        signals,
		Recommendation: Recommend(scores, signals),
		GeneratedAt:    time.Now(),
	}
}
