// Package storage provides the top-level StorageManager that coordinates
// the 2 storage areas: marketfs (cached market data) and badger (analysis
// reports and job run history).
package storage

import (
	"fmt"

	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/interfaces"
	"github.com/tomclarkson/marketlens/internal/storage/badger"
	"github.com/tomclarkson/marketlens/internal/storage/marketfs"
)

// Manager implements interfaces.StorageManager using 2 storage areas.
type Manager struct {
	market   *marketfs.Store
	analysis *badger.Store
	jobRuns  interfaces.JobRunStore
	reports  interfaces.AnalysisStorage
	logger   *common.Logger
}

// NewManager creates a new StorageManager with both storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	marketStore, err := marketfs.NewMarketStore(logger, config.Storage.Market.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create market store: %w", err)
	}

	analysisStore, err := badger.NewStore(logger, config.Storage.Analysis.Path)
	if err != nil {
		marketStore.Close()
		return nil, fmt.Errorf("failed to create analysis store: %w", err)
	}

	logger.Info().
		Str("market", config.Storage.Market.Path).
		Str("analysis", config.Storage.Analysis.Path).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		market:   marketStore,
		analysis: analysisStore,
		jobRuns:  badger.NewJobRunStore(analysisStore, logger),
		reports:  badger.NewAnalysisStorage(analysisStore, logger),
		logger:   logger,
	}, nil
}

func (m *Manager) MarketDataStorage() interfaces.MarketDataStorage {
	return m.market.MarketDataStorage()
}

func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.reports
}

func (m *Manager) JobRunStore() interfaces.JobRunStore {
	return m.jobRuns
}

func (m *Manager) DataPath() string {
	return m.market.DataPath()
}

func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	return m.market.WriteRaw(subdir, key, data)
}

func (m *Manager) Close() error {
	var firstErr error
	if err := m.market.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.analysis.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
