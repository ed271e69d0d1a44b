// Package interfaces defines service contracts for MarketLens
package interfaces

import (
	"context"
	"time"

	"github.com/tomclarkson/marketlens/internal/models"
)

// MarketDataClient provides access to an end-of-day market data API
type MarketDataClient interface {
	// GetEOD retrieves end-of-day price data, ascending by date
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)

	// GetFundamentals retrieves fundamental data
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)

	// GetExchangeSymbols retrieves all symbols for an exchange
	GetExchangeSymbols(ctx context.Context, exchange string) ([]*models.Symbol, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Limit  int
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}

// WithLimit sets the limit for EOD query
func WithLimit(limit int) EODOption {
	return func(p *EODParams) {
		p.Limit = limit
	}
}
