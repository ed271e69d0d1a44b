// Package interfaces defines service contracts for MarketLens
package interfaces

import (
	"context"

	"github.com/tomclarkson/marketlens/internal/models"
)

// AnalyzerService runs the analysis pipeline against live or cached data
type AnalyzerService interface {
	// CollectMarketData fetches and caches bars and fundamentals for tickers.
	// When force is true, all data is re-fetched regardless of freshness.
	CollectMarketData(ctx context.Context, tickers []string, force bool) error

	// AnalyzeTicker computes and stores a full analysis for one ticker
	AnalyzeTicker(ctx context.Context, ticker string, force bool) (*models.StockAnalysis, error)

	// AnalyzeTickers analyzes a batch, skipping tickers that fail
	AnalyzeTickers(ctx context.Context, tickers []string, force bool) ([]*models.StockAnalysis, error)

	// RenderPriceChart writes a PNG price chart for a ticker and returns its path
	RenderPriceChart(ctx context.Context, ticker string) (string, error)
}
