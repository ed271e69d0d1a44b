package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/interfaces"
	"github.com/tomclarkson/marketlens/internal/models"
	"github.com/tomclarkson/marketlens/internal/storage"
)

// mockClient serves canned bars and fundamentals, filtered by the requested
// date range like the real API.
type mockClient struct {
	bars         []models.PriceBar
	fundamentals *models.Fundamentals
	eodErr       error
	eodCalls     int
	lastFrom     time.Time
}

func (m *mockClient) GetEOD(_ context.Context, _ string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	m.eodCalls++
	if m.eodErr != nil {
		return nil, m.eodErr
	}

	params := &interfaces.EODParams{}
	for _, opt := range opts {
		opt(params)
	}
	m.lastFrom = params.From

	resp := &models.EODResponse{}
	for _, bar := range m.bars {
		if !params.From.IsZero() && bar.Date.Before(params.From) {
			continue
		}
		if !params.To.IsZero() && bar.Date.After(params.To) {
			continue
		}
		resp.Data = append(resp.Data, bar)
	}
	return resp, nil
}

func (m *mockClient) GetFundamentals(_ context.Context, _ string) (*models.Fundamentals, error) {
	if m.fundamentals == nil {
		return nil, fmt.Errorf("no fundamentals")
	}
	return m.fundamentals, nil
}

func (m *mockClient) GetExchangeSymbols(_ context.Context, _ string) ([]*models.Symbol, error) {
	return nil, nil
}

func trendBars(n int, start, dailyChange float64) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	price := start
	base := time.Now().AddDate(0, 0, -n)
	for i := range bars {
		bars[i] = models.PriceBar{
			Date:     base.AddDate(0, 0, i).Truncate(24 * time.Hour),
			Open:     price - 0.5,
			High:     price + 0.5,
			Low:      price - 0.5,
			Close:    price,
			AdjClose: price,
			Volume:   1000,
		}
		price += dailyChange
	}
	return bars
}

func newTestService(t *testing.T, client interfaces.MarketDataClient) (*Service, interfaces.StorageManager) {
	t.Helper()
	base := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Market.Path = filepath.Join(base, "market")
	cfg.Storage.Analysis.Path = filepath.Join(base, "analysis")
	cfg.Charts.Width = 400
	cfg.Charts.Height = 300

	mgr, err := storage.NewManager(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	return NewService(mgr, client, cfg.Charts, common.NewSilentLogger()), mgr
}

func TestAnalyzeTickerEndToEnd(t *testing.T) {
	client := &mockClient{
		bars: trendBars(60, 100, 1),
		fundamentals: &models.Fundamentals{
			Ticker:        "BHP.AU",
			Name:          "BHP Group",
			PE:            models.Float(8),
			ROE:           models.Float(0.28),
			DebtToEquity:  models.Float(0.2),
			RevenueCAGR5Y: models.Float(0.22),
		},
	}
	svc, mgr := newTestService(t, client)
	ctx := context.Background()

	result, err := svc.AnalyzeTicker(ctx, "BHP.AU", false)
	if err != nil {
		t.Fatalf("AnalyzeTicker failed: %v", err)
	}
	if result.Ticker != "BHP.AU" {
		t.Errorf("Ticker = %q", result.Ticker)
	}
	if result.Scores.Overall <= 50 {
		t.Errorf("Overall = %d, want above neutral for quality value stock", result.Scores.Overall)
	}
	if result.Recommendation.Rating != models.RatingBuy && result.Recommendation.Rating != models.RatingStrongBuy {
		t.Errorf("Rating = %q, want Buy or Strong Buy", result.Recommendation.Rating)
	}

	// Analysis persisted.
	stored, err := mgr.AnalysisStorage().GetAnalysis(ctx, "BHP.AU")
	if err != nil {
		t.Fatalf("analysis not persisted: %v", err)
	}
	if stored.Recommendation.Rating != result.Recommendation.Rating {
		t.Errorf("stored rating = %q, want %q", stored.Recommendation.Rating, result.Recommendation.Rating)
	}

	// Job runs recorded: one collect (nested) plus one analyze.
	runs, err := mgr.JobRunStore().ListByTicker(ctx, "BHP.AU")
	if err != nil {
		t.Fatal(err)
	}
	var analyzeRun *models.JobRun
	for _, r := range runs {
		if r.JobType == models.JobTypeAnalyze {
			analyzeRun = r
		}
	}
	if analyzeRun == nil {
		t.Fatal("no analyze job run recorded")
	}
	if analyzeRun.Status != models.JobStatusCompleted {
		t.Errorf("job status = %q, want completed", analyzeRun.Status)
	}
}

func TestAnalyzeTickerUsesFreshCache(t *testing.T) {
	client := &mockClient{bars: trendBars(60, 100, 1)}
	svc, mgr := newTestService(t, client)
	ctx := context.Background()

	cached := &models.MarketData{
		Ticker:        "CBA.AU",
		Bars:          trendBars(30, 100, 0.5),
		BarsUpdatedAt: time.Now(),
	}
	if err := mgr.MarketDataStorage().SaveMarketData(ctx, cached); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AnalyzeTicker(ctx, "CBA.AU", false); err != nil {
		t.Fatalf("AnalyzeTicker failed: %v", err)
	}
	if client.eodCalls != 0 {
		t.Errorf("client called %d times, want 0 with fresh cache", client.eodCalls)
	}
}

func TestAnalyzeTickerForceRefetches(t *testing.T) {
	client := &mockClient{bars: trendBars(60, 100, 1)}
	svc, mgr := newTestService(t, client)
	ctx := context.Background()

	cached := &models.MarketData{
		Ticker:        "CBA.AU",
		Bars:          trendBars(30, 100, 0.5),
		BarsUpdatedAt: time.Now(),
	}
	if err := mgr.MarketDataStorage().SaveMarketData(ctx, cached); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AnalyzeTicker(ctx, "CBA.AU", true); err != nil {
		t.Fatalf("AnalyzeTicker failed: %v", err)
	}
	if client.eodCalls == 0 {
		t.Error("force should bypass the cache and hit the client")
	}
}

func TestCollectMarketDataIncremental(t *testing.T) {
	allBars := trendBars(61, 100, 1)
	client := &mockClient{bars: allBars}
	svc, mgr := newTestService(t, client)
	ctx := context.Background()

	// Stale cache holding all but the newest bar.
	cached := &models.MarketData{
		Ticker:        "BHP.AU",
		Bars:          allBars[:60],
		BarsUpdatedAt: time.Now().Add(-2 * time.Hour),
	}
	if err := mgr.MarketDataStorage().SaveMarketData(ctx, cached); err != nil {
		t.Fatal(err)
	}

	if err := svc.CollectMarketData(ctx, []string{"BHP.AU"}, false); err != nil {
		t.Fatalf("CollectMarketData failed: %v", err)
	}

	got, err := mgr.MarketDataStorage().GetMarketData(ctx, "BHP.AU")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Bars) != 61 {
		t.Errorf("bars after incremental collect = %d, want 61", len(got.Bars))
	}
	// The fetch window must start after the last cached bar.
	if !client.lastFrom.After(allBars[58].Date) {
		t.Errorf("incremental fetch from %v, want after %v", client.lastFrom, allBars[58].Date)
	}
	for i := 1; i < len(got.Bars); i++ {
		if !got.Bars[i].Date.After(got.Bars[i-1].Date) {
			t.Fatalf("bars not ascending at %d", i)
		}
	}
}

func TestCollectMarketDataFailure(t *testing.T) {
	client := &mockClient{eodErr: fmt.Errorf("boom")}
	svc, mgr := newTestService(t, client)
	ctx := context.Background()

	if err := svc.CollectMarketData(ctx, []string{"XYZ.AU"}, false); err == nil {
		t.Fatal("expected error when all fetches fail")
	}

	runs, err := mgr.JobRunStore().ListByTicker(ctx, "XYZ.AU")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != models.JobStatusFailed {
		t.Errorf("runs = %+v, want one failed run", runs)
	}
}

func TestAnalyzeTickersSkipsFailures(t *testing.T) {
	client := &mockClient{bars: trendBars(60, 100, 1)}
	svc, mgr := newTestService(t, client)
	ctx := context.Background()

	// One good cached ticker, one that will fail on fetch.
	good := &models.MarketData{
		Ticker:        "GOOD.AU",
		Bars:          trendBars(30, 100, 0.5),
		BarsUpdatedAt: time.Now(),
	}
	if err := mgr.MarketDataStorage().SaveMarketData(ctx, good); err != nil {
		t.Fatal(err)
	}
	client.eodErr = fmt.Errorf("boom")

	results, err := svc.AnalyzeTickers(ctx, []string{"GOOD.AU", "BAD.AU"}, false)
	if err != nil {
		t.Fatalf("AnalyzeTickers failed: %v", err)
	}
	if len(results) != 1 || results[0].Ticker != "GOOD.AU" {
		t.Errorf("results = %+v, want only GOOD.AU", results)
	}
}

func TestRenderPriceChart(t *testing.T) {
	client := &mockClient{bars: trendBars(60, 100, 1)}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	path, err := svc.RenderPriceChart(ctx, "BHP.AU")
	if err != nil {
		t.Fatalf("RenderPriceChart failed: %v", err)
	}
	if filepath.Base(path) != "bhp-au.png" {
		t.Errorf("chart file = %q, want bhp-au.png", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if len(data) == 0 || data[1] != 'P' || data[2] != 'N' || data[3] != 'G' {
		t.Error("output is not a PNG")
	}
}

func TestMergeBarsDropsOverlap(t *testing.T) {
	existing := trendBars(5, 100, 1)
	incoming := append([]models.PriceBar{existing[4]}, models.PriceBar{
		Date:  existing[4].Date.AddDate(0, 0, 1),
		Close: 110,
	})

	merged := mergeBars(existing, incoming)
	if len(merged) != 6 {
		t.Errorf("merged = %d bars, want 6", len(merged))
	}
}
