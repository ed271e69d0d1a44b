package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/models"
)

type analysisStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAnalysisStorage creates a new AnalysisStorage backed by BadgerHold.
// Reports are keyed by ticker, so saving replaces the previous analysis.
func NewAnalysisStorage(store *Store, logger *common.Logger) *analysisStorage {
	return &analysisStorage{store: store, logger: logger}
}

func (s *analysisStorage) GetAnalysis(_ context.Context, ticker string) (*models.StockAnalysis, error) {
	var analysis models.StockAnalysis
	err := s.store.db.Get(ticker, &analysis)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("analysis for '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get analysis for '%s': %w", ticker, err)
	}
	return &analysis, nil
}

func (s *analysisStorage) SaveAnalysis(_ context.Context, analysis *models.StockAnalysis) error {
	if analysis.Ticker == "" {
		return fmt.Errorf("analysis has no ticker")
	}
	if err := s.store.db.Upsert(analysis.Ticker, analysis); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	s.logger.Debug().Str("ticker", analysis.Ticker).Str("rating", analysis.Recommendation.Rating).Msg("Analysis saved")
	return nil
}

func (s *analysisStorage) ListAnalyses(_ context.Context, limit int) ([]*models.StockAnalysis, error) {
	var analyses []models.StockAnalysis
	if err := s.store.db.Find(&analyses, nil); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].GeneratedAt.After(analyses[j].GeneratedAt)
	})
	if limit > 0 && len(analyses) > limit {
		analyses = analyses[:limit]
	}

	result := make([]*models.StockAnalysis, len(analyses))
	for i := range analyses {
		result[i] = &analyses[i]
	}
	return result, nil
}

func (s *analysisStorage) DeleteAnalysis(_ context.Context, ticker string) error {
	err := s.store.db.Delete(ticker, models.StockAnalysis{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete analysis for '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Analysis deleted")
	return nil
}
