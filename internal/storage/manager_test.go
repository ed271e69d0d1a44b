package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	base := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Market.Path = filepath.Join(base, "market")
	cfg.Storage.Analysis.Path = filepath.Join(base, "analysis")

	mgr, err := NewManager(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestManagerWiresBothAreas(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	// Market area round trip.
	if err := mgr.MarketDataStorage().SaveMarketData(ctx, &models.MarketData{Ticker: "BHP.AU"}); err != nil {
		t.Fatalf("SaveMarketData failed: %v", err)
	}
	if _, err := mgr.MarketDataStorage().GetMarketData(ctx, "BHP.AU"); err != nil {
		t.Errorf("GetMarketData failed: %v", err)
	}

	// Analysis area round trip.
	analysis := &models.StockAnalysis{
		Ticker:         "BHP.AU",
		Recommendation: models.Recommendation{Rating: models.RatingHold},
	}
	if err := mgr.AnalysisStorage().SaveAnalysis(ctx, analysis); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if _, err := mgr.AnalysisStorage().GetAnalysis(ctx, "BHP.AU"); err != nil {
		t.Errorf("GetAnalysis failed: %v", err)
	}

	// Job runs share the analysis area.
	run := &models.JobRun{JobType: models.JobTypeAnalyze, Ticker: "BHP.AU"}
	if err := mgr.JobRunStore().Create(ctx, run); err != nil {
		t.Fatalf("JobRunStore Create failed: %v", err)
	}
	if _, err := mgr.JobRunStore().Get(ctx, run.ID); err != nil {
		t.Errorf("JobRunStore Get failed: %v", err)
	}
}

func TestManagerWriteRaw(t *testing.T) {
	mgr := newTestManager(t)

	if err := mgr.WriteRaw("charts", "test.png", []byte("png")); err != nil {
		t.Fatalf("WriteRaw failed: %v", err)
	}
	if mgr.DataPath() == "" {
		t.Error("DataPath empty")
	}
}
