package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomclarkson/marketlens/internal/interfaces"
)

func TestGetEOD_AscendingBars(t *testing.T) {
	mockResp := `[
		{"date": "2025-03-26", "open": 42.10, "high": 43.50, "low": 41.80, "close": 43.25, "adjusted_close": 43.25, "volume": 5000000},
		{"date": "2025-03-27", "open": 43.30, "high": 44.00, "low": 43.00, "close": 43.80, "adjusted_close": 43.80, "volume": 4200000},
		{"date": "2025-03-28", "open": 43.80, "high": 44.50, "low": 43.60, "close": 44.20, "adjusted_close": 44.20, "volume": 3900000}
	]`

	var gotOrder string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrder = r.URL.Query().Get("order")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	result, err := client.GetEOD(context.Background(), "BHP.AU")
	if err != nil {
		t.Fatalf("GetEOD failed: %v", err)
	}

	if gotOrder != "a" {
		t.Errorf("order param = %q, want a", gotOrder)
	}
	if len(result.Data) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(result.Data))
	}
	if !result.Data[0].Date.Before(result.Data[2].Date) {
		t.Error("bars not ascending by date")
	}
	if result.Data[2].Close != 44.20 {
		t.Errorf("last close = %.2f, want 44.20", result.Data[2].Close)
	}
}

func TestGetEOD_DateRangeAndLimit(t *testing.T) {
	mockResp := `[
		{"date": "2025-03-26", "close": 43.25, "volume": 100},
		{"date": "2025-03-27", "close": 43.80, "volume": 100},
		{"date": "2025-03-28", "close": 44.20, "volume": 100}
	]`

	var gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	client := NewClient("test-key", WithBaseURL(srv.URL))
	result, err := client.GetEOD(context.Background(), "BHP.AU",
		interfaces.WithDateRange(from, to), interfaces.WithLimit(2))
	if err != nil {
		t.Fatalf("GetEOD failed: %v", err)
	}

	if gotFrom != "2025-03-01" || gotTo != "2025-03-31" {
		t.Errorf("date range = %q..%q", gotFrom, gotTo)
	}
	// Limit keeps the most recent bars.
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 bars after limit, got %d", len(result.Data))
	}
	if result.Data[0].Close != 43.80 {
		t.Errorf("first kept close = %.2f, want 43.80", result.Data[0].Close)
	}
}

func TestGetFundamentals_OptionalFieldsStayNil(t *testing.T) {
	// Only PE and market cap reported; everything else must stay nil.
	mockResp := `{
		"General": {"Name": "BHP Group", "Sector": "Basic Materials", "Industry": "Other Industrial Metals & Mining"},
		"Highlights": {"PERatio": 11.5, "MarketCapitalization": 150000000000}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	f, err := client.GetFundamentals(context.Background(), "BHP.AU")
	if err != nil {
		t.Fatalf("GetFundamentals failed: %v", err)
	}

	if f.PE == nil || *f.PE != 11.5 {
		t.Errorf("PE = %v, want 11.5", f.PE)
	}
	if f.Sector != "Basic Materials" {
		t.Errorf("Sector = %q", f.Sector)
	}
	for name, v := range map[string]*float64{
		"PEG": f.PEG, "ROE": f.ROE, "DebtToEquity": f.DebtToEquity,
		"GrossMargin": f.GrossMargin, "RevenueCAGR5Y": f.RevenueCAGR5Y, "FCFYield": f.FCFYield,
	} {
		if v != nil {
			t.Errorf("%s = %v, want nil for unreported metric", name, *v)
		}
	}
}

func TestGetFundamentals_DerivedRatios(t *testing.T) {
	mockResp := `{
		"General": {"Name": "Test Co"},
		"Highlights": {"MarketCapitalization": 1000000000},
		"Financials": {
			"Balance_Sheet": {"yearly": {
				"2024-06-30": {"date": "2024-06-30", "totalStockholderEquity": "500000000", "shortLongTermDebtTotal": "100000000", "totalCurrentAssets": "300000000", "totalCurrentLiabilities": "150000000"}
			}},
			"Cash_Flow": {"yearly": {
				"2024-06-30": {"date": "2024-06-30", "freeCashFlow": "80000000"}
			}},
			"Income_Statement": {"yearly": {
				"2024-06-30": {"date": "2024-06-30", "totalRevenue": "400000000", "grossProfit": "200000000", "netIncome": "60000000"},
				"2023-06-30": {"date": "2023-06-30", "totalRevenue": "380000000", "netIncome": "55000000"},
				"2022-06-30": {"date": "2022-06-30", "totalRevenue": "350000000", "netIncome": "48000000"},
				"2021-06-30": {"date": "2021-06-30", "totalRevenue": "320000000", "netIncome": "40000000"},
				"2020-06-30": {"date": "2020-06-30", "totalRevenue": "290000000", "netIncome": "35000000"},
				"2019-06-30": {"date": "2019-06-30", "totalRevenue": "248230", "netIncome": "30000000"}
			}}
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	f, err := client.GetFundamentals(context.Background(), "TEST.AU")
	if err != nil {
		t.Fatalf("GetFundamentals failed: %v", err)
	}

	if f.DebtToEquity == nil || *f.DebtToEquity != 0.2 {
		t.Errorf("DebtToEquity = %v, want 0.2", f.DebtToEquity)
	}
	if f.CurrentRatio == nil || *f.CurrentRatio != 2.0 {
		t.Errorf("CurrentRatio = %v, want 2.0", f.CurrentRatio)
	}
	if f.GrossMargin == nil || *f.GrossMargin != 0.5 {
		t.Errorf("GrossMargin = %v, want 0.5", f.GrossMargin)
	}
	if f.FCFYield == nil || *f.FCFYield < 7.99 || *f.FCFYield > 8.01 {
		t.Errorf("FCFYield = %v, want 8.0", f.FCFYield)
	}
	if f.RevenueCAGR5Y == nil {
		t.Fatal("RevenueCAGR5Y = nil, want derived value")
	}
	if *f.RevenueCAGR5Y < 3.0 {
		t.Errorf("RevenueCAGR5Y = %v, want large growth from tiny base", *f.RevenueCAGR5Y)
	}
	if f.EPSCAGR5Y == nil {
		t.Error("EPSCAGR5Y = nil, want derived value")
	}
}

func TestGet_RetriesOn500(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := client.GetEOD(context.Background(), "BHP.AU")
	if err != nil {
		t.Fatalf("GetEOD failed after retries: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server calls = %d, want 3", n)
	}
}

func TestGet_NoRetryOn404(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetEOD(context.Background(), "MISSING.AU")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server calls = %d, want 1 (no retry)", n)
	}
}

func TestGetExchangeSymbols(t *testing.T) {
	mockResp := `[
		{"Code": "BHP", "Name": "BHP Group", "Country": "Australia", "Exchange": "AU", "Currency": "AUD", "Type": "Common Stock"},
		{"Code": "CBA", "Name": "Commonwealth Bank", "Country": "Australia", "Exchange": "AU", "Currency": "AUD", "Type": "Common Stock"}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	symbols, err := client.GetExchangeSymbols(context.Background(), "AU")
	if err != nil {
		t.Fatalf("GetExchangeSymbols failed: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(symbols))
	}
	if symbols[0].Code != "BHP" {
		t.Errorf("first symbol = %q, want BHP", symbols[0].Code)
	}
}
