// Package analyzer provides the analysis pipeline service: collect market
// data, run the analysis engine, persist reports, and render charts.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomclarkson/marketlens/internal/analysis"
	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/interfaces"
	"github.com/tomclarkson/marketlens/internal/models"
)

// Service implements AnalyzerService
type Service struct {
	storage  interfaces.StorageManager
	client   interfaces.MarketDataClient
	analyzer *analysis.Analyzer
	charts   common.ChartsConfig
	logger   *common.Logger
}

// NewService creates a new analyzer service
func NewService(
	storage interfaces.StorageManager,
	client interfaces.MarketDataClient,
	charts common.ChartsConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		storage:  storage,
		client:   client,
		analyzer: analysis.NewAnalyzer(),
		charts:   charts,
		logger:   logger,
	}
}

// recordJob wraps fn in a JobRun record. Recording failures are logged but
// never fail the job itself.
func (s *Service) recordJob(ctx context.Context, jobType, ticker string, fn func() error) error {
	run := &models.JobRun{JobType: jobType, Ticker: ticker}
	if err := s.storage.JobRunStore().Create(ctx, run); err != nil {
		s.logger.Warn().Err(err).Str("type", jobType).Msg("Failed to record job run")
		return fn()
	}
	if err := s.storage.JobRunStore().Start(ctx, run.ID); err != nil {
		s.logger.Warn().Err(err).Str("id", run.ID).Msg("Failed to mark job run started")
	}

	start := time.Now()
	jobErr := fn()
	durationMS := time.Since(start).Milliseconds()

	if err := s.storage.JobRunStore().Complete(ctx, run.ID, jobErr, durationMS); err != nil {
		s.logger.Warn().Err(err).Str("id", run.ID).Msg("Failed to mark job run complete")
	}
	return jobErr
}

// CollectMarketData fetches and caches bars and fundamentals for tickers.
// When force is true, all data is re-fetched regardless of freshness.
func (s *Service) CollectMarketData(ctx context.Context, tickers []string, force bool) error {
	var failed []string
	for _, ticker := range tickers {
		err := s.recordJob(ctx, models.JobTypeCollectMarketData, ticker, func() error {
			return s.collectTicker(ctx, ticker, force)
		})
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Failed to collect market data")
			failed = append(failed, ticker)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to collect market data for: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *Service) collectTicker(ctx context.Context, ticker string, force bool) error {
	now := time.Now()
	s.logger.Debug().Str("ticker", ticker).Bool("force", force).Msg("Collecting market data")

	existing, _ := s.storage.MarketDataStorage().GetMarketData(ctx, ticker)

	marketData := &models.MarketData{
		Ticker:   ticker,
		Exchange: extractExchange(ticker),
	}
	if existing != nil {
		marketData = existing
	}

	// --- Bars ---
	if force || existing == nil || !common.IsFresh(existing.BarsUpdatedAt, common.FreshnessBars) {
		if !force && existing != nil && len(existing.Bars) > 0 {
			// Incremental fetch: only bars after the latest stored date
			latestDate := existing.Bars[len(existing.Bars)-1].Date
			fromDate := latestDate.AddDate(0, 0, 1)
			if fromDate.Before(now) {
				s.logger.Debug().Str("ticker", ticker).Str("from", fromDate.Format("2006-01-02")).Msg("Incremental bar fetch")
				eodResp, err := s.client.GetEOD(ctx, ticker, interfaces.WithDateRange(fromDate, now))
				if err != nil {
					return fmt.Errorf("incremental bar fetch: %w", err)
				}
				if len(eodResp.Data) > 0 {
					marketData.Bars = mergeBars(existing.Bars, eodResp.Data)
				}
			}
			marketData.BarsUpdatedAt = now
		} else {
			// Full fetch: three years covers the 252-bar trailing window with margin
			eodResp, err := s.client.GetEOD(ctx, ticker, interfaces.WithDateRange(now.AddDate(-3, 0, 0), now))
			if err != nil {
				return fmt.Errorf("bar fetch: %w", err)
			}
			marketData.Bars = eodResp.Data
			marketData.BarsUpdatedAt = now
		}
	}

	// --- Fundamentals ---
	if force || existing == nil || !common.IsFresh(existing.FundamentalsUpdatedAt, common.FreshnessFundamentals) {
		fundamentals, err := s.client.GetFundamentals(ctx, ticker)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Failed to fetch fundamentals")
		} else {
			marketData.Fundamentals = fundamentals
			marketData.Name = fundamentals.Name
			marketData.FundamentalsUpdatedAt = now
		}
	}

	return s.storage.MarketDataStorage().SaveMarketData(ctx, marketData)
}

// AnalyzeTicker computes and stores a full analysis for one ticker
func (s *Service) AnalyzeTicker(ctx context.Context, ticker string, force bool) (*models.StockAnalysis, error) {
	var result *models.StockAnalysis
	err := s.recordJob(ctx, models.JobTypeAnalyze, ticker, func() error {
		data, err := s.loadOrCollect(ctx, ticker, force)
		if err != nil {
			return err
		}

		result = s.analyzer.Analyze(data)
		if err := s.storage.AnalysisStorage().SaveAnalysis(ctx, result); err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}

		s.logger.Info().
			Str("ticker", ticker).
			Str("rating", result.Recommendation.Rating).
			Int("overall", result.Scores.Overall).
			Int("signals", len(result.Signals)).
			Msg("Analysis complete")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AnalyzeTickers analyzes a batch, skipping tickers that fail
func (s *Service) AnalyzeTickers(ctx context.Context, tickers []string, force bool) ([]*models.StockAnalysis, error) {
	results := make([]*models.StockAnalysis, 0, len(tickers))
	for _, ticker := range tickers {
		analysis, err := s.AnalyzeTicker(ctx, ticker, force)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Skipping ticker")
			continue
		}
		results = append(results, analysis)
	}
	if len(results) == 0 && len(tickers) > 0 {
		return nil, fmt.Errorf("all %d tickers failed analysis", len(tickers))
	}
	return results, nil
}

// loadOrCollect returns cached market data, collecting it first when absent,
// stale, or forced.
func (s *Service) loadOrCollect(ctx context.Context, ticker string, force bool) (*models.MarketData, error) {
	existing, err := s.storage.MarketDataStorage().GetMarketData(ctx, ticker)
	if err == nil && !force && common.IsFresh(existing.BarsUpdatedAt, common.FreshnessBars) {
		return existing, nil
	}

	if err := s.collectTicker(ctx, ticker, force); err != nil {
		// Stale cache beats no data at all
		if existing != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Collection failed, using cached data")
			return existing, nil
		}
		return nil, err
	}
	return s.storage.MarketDataStorage().GetMarketData(ctx, ticker)
}

// mergeBars appends new bars to existing, keeping the series ascending and
// dropping any overlap with the already-stored dates.
func mergeBars(existing, incoming []models.PriceBar) []models.PriceBar {
	if len(existing) == 0 {
		return incoming
	}
	latest := existing[len(existing)-1].Date
	merged := existing
	for _, bar := range incoming {
		if bar.Date.After(latest) {
			merged = append(merged, bar)
		}
	}
	return merged
}

// extractExchange returns the exchange suffix of a ticker like "BHP.AU".
func extractExchange(ticker string) string {
	if i := strings.LastIndex(ticker, "."); i >= 0 && i < len(ticker)-1 {
		return ticker[i+1:]
	}
	return ""
}

// Ensure Service implements AnalyzerService
var _ interfaces.AnalyzerService = (*Service)(nil)
