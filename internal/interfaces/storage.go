// Package interfaces defines service contracts for MarketLens
package interfaces

import (
	"context"
	"time"

	"github.com/tomclarkson/marketlens/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	MarketDataStorage() MarketDataStorage
	AnalysisStorage() AnalysisStorage
	JobRunStore() JobRunStore

	// DataPath returns the base market data directory path.
	DataPath() string

	// WriteRaw writes arbitrary binary data to a subdirectory atomically.
	// Key is sanitized for safe filenames (e.g. "bhp-au.png").
	WriteRaw(subdir, key string, data []byte) error

	Close() error
}

// MarketDataStorage handles cached market data persistence
type MarketDataStorage interface {
	// GetMarketData retrieves cached market data for a ticker
	GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error)

	// SaveMarketData persists market data
	SaveMarketData(ctx context.Context, data *models.MarketData) error

	// GetMarketDataBatch retrieves market data for multiple tickers
	GetMarketDataBatch(ctx context.Context, tickers []string) ([]*models.MarketData, error)

	// GetStaleTickers returns cached tickers older than maxAge seconds
	GetStaleTickers(ctx context.Context, maxAge int64) ([]string, error)
}

// AnalysisStorage handles analysis report persistence
type AnalysisStorage interface {
	// GetAnalysis retrieves the latest stored analysis for a ticker
	GetAnalysis(ctx context.Context, ticker string) (*models.StockAnalysis, error)

	// SaveAnalysis persists an analysis report
	SaveAnalysis(ctx context.Context, analysis *models.StockAnalysis) error

	// ListAnalyses returns stored analyses, newest first
	ListAnalyses(ctx context.Context, limit int) ([]*models.StockAnalysis, error)

	// DeleteAnalysis removes the stored analysis for a ticker
	DeleteAnalysis(ctx context.Context, ticker string) error
}

// JobRunStore records job executions for auditing
type JobRunStore interface {
	Create(ctx context.Context, run *models.JobRun) error
	Start(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, jobErr error, durationMS int64) error
	Get(ctx context.Context, id string) (*models.JobRun, error)
	List(ctx context.Context, limit int) ([]*models.JobRun, error)
	ListByTicker(ctx context.Context, ticker string) ([]*models.JobRun, error)
	PurgeCompleted(ctx context.Context, olderThan time.Time) (int, error)
}
