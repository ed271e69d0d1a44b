// Package models defines data structures for MarketLens
package models

import (
	"time"
)

// PriceBar represents a single day's price data.
// Series of PriceBar are kept ascending by date with no gap-filling:
// missing trading days are absent entries, never interpolated.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// MarketData holds all market data for a ticker
type MarketData struct {
	Ticker       string        `json:"ticker"`
	Exchange     string        `json:"exchange"`
	Name         string        `json:"name"`
	Bars         []PriceBar    `json:"bars"`
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
	LastUpdated  time.Time     `json:"last_updated"`
	// Per-component freshness timestamps
	BarsUpdatedAt         time.Time `json:"bars_updated_at"`
	FundamentalsUpdatedAt time.Time `json:"fundamentals_updated_at"`
}

// Fundamentals is a point-in-time fundamentals snapshot for a stock.
// Every metric is optional: a nil field means the data provider did not
// report it, which is distinct from a reported zero. Scoring rules skip
// absent metrics entirely.
type Fundamentals struct {
	Ticker          string     `json:"ticker"`
	Name            string     `json:"name,omitempty"`
	Sector          string     `json:"sector,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	PE              *float64   `json:"pe,omitempty"`
	PEG             *float64   `json:"peg,omitempty"`
	ROE             *float64   `json:"roe,omitempty"`
	ROIC            *float64   `json:"roic,omitempty"`
	GrossMargin     *float64   `json:"gross_margin,omitempty"`
	OperatingMargin *float64   `json:"operating_margin,omitempty"`
	DebtToEquity    *float64   `json:"debt_to_equity,omitempty"`
	CurrentRatio    *float64   `json:"current_ratio,omitempty"`
	FreeCashFlow    *float64   `json:"free_cash_flow,omitempty"`
	RevenueCAGR5Y   *float64   `json:"revenue_cagr_5y,omitempty"`
	EPSCAGR5Y       *float64   `json:"eps_cagr_5y,omitempty"`
	FCFYield        *float64   `json:"fcf_yield,omitempty"` // percentage value, e.g. 6.2 for 6.2%
	Price           *float64   `json:"price,omitempty"`
	MarketCap       *float64   `json:"market_cap,omitempty"`
	LastUpdated     time.Time  `json:"last_updated"`
}

// Symbol represents an exchange symbol
type Symbol struct {
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Country  string `json:"Country"`
	Exchange string `json:"Exchange"`
	Currency string `json:"Currency"`
	Type     string `json:"Type"`
}

// EODResponse represents the EODHD API response for daily bars
type EODResponse struct {
	Data []PriceBar `json:"data"`
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 {
	return &v
}
