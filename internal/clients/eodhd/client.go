// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/interfaces"
	"github.com/tomclarkson/marketlens/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
// EODHD mixes both, and reports "N/A" or "" for missing metrics.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// fptr converts an optional response field into an optional model field,
// preserving absence as nil.
func fptr(f *flexFloat64) *float64 {
	if f == nil {
		return nil
	}
	return models.Float(float64(*f))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// get performs a rate-limited GET request, retrying on 429 and 5xx with
// exponential backoff.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		c.logger.Debug().Str("url", c.baseURL+path).Int("attempt", attempt).Msg("EODHD API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to execute request: %w", err)
		} else {
			if resp.StatusCode == http.StatusOK {
				err := json.NewDecoder(resp.Body).Decode(result)
				resp.Body.Close()
				if err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
				return nil
			}

			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(body),
				Endpoint:   path,
			}
			if !retryable(resp.StatusCode) {
				return apiErr
			}
			lastErr = apiErr
		}

		if attempt < maxAttempts {
			c.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("EODHD request failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return lastErr
}

// GetEOD retrieves end-of-day price data, ascending by date
func (c *Client) GetEOD(ctx context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	params := &interfaces.EODParams{
		Period: "d",
	}
	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period", params.Period)
	urlParams.Set("order", "a")

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", ticker)

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, err
	}

	result := &models.EODResponse{
		Data: make([]models.PriceBar, len(bars)),
	}
	for i, bar := range bars {
		date, _ := time.Parse("2006-01-02", bar.Date)
		result.Data[i] = models.PriceBar{
			Date:     date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjustedClose,
			Volume:   bar.Volume,
		}
	}

	if params.Limit > 0 && len(result.Data) > params.Limit {
		result.Data = result.Data[len(result.Data)-params.Limit:]
	}

	return result, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// GetFundamentals retrieves fundamental data. Metrics the provider omits are
// left nil on the snapshot; ratios the API does not report directly are
// derived from the most recent annual statements.
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", ticker)

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	f := &models.Fundamentals{
		Ticker:          ticker,
		Name:            resp.General.Name,
		Sector:          resp.General.Sector,
		Industry:        resp.General.Industry,
		PE:              fptr(resp.Highlights.PERatio),
		PEG:             fptr(resp.Highlights.PEGRatio),
		ROE:             fptr(resp.Highlights.ReturnOnEquityTTM),
		OperatingMargin: fptr(resp.Highlights.OperatingMarginTTM),
		MarketCap:       fptr(resp.Highlights.MarketCapitalization),
		LastUpdated:     time.Now(),
	}

	c.deriveStatementRatios(f, &resp)

	return f, nil
}

// deriveStatementRatios fills the ratios EODHD reports only via full annual
// statements: leverage, liquidity, gross margin, free cash flow, yield, and
// the 5-year growth rates.
func (c *Client) deriveStatementRatios(f *models.Fundamentals, resp *fundamentalsResponse) {
	if bs := latestStatement(resp.Financials.BalanceSheet.Yearly); bs != nil {
		if bs.TotalStockholderEquity != nil && *bs.TotalStockholderEquity != 0 {
			equity := float64(*bs.TotalStockholderEquity)
			if bs.ShortLongTermDebtTotal != nil {
				f.DebtToEquity = models.Float(float64(*bs.ShortLongTermDebtTotal) / equity)
			}
		}
		if bs.TotalCurrentLiabilities != nil && *bs.TotalCurrentLiabilities != 0 && bs.TotalCurrentAssets != nil {
			f.CurrentRatio = models.Float(float64(*bs.TotalCurrentAssets) / float64(*bs.TotalCurrentLiabilities))
		}
	}

	if cf := latestStatement(resp.Financials.CashFlow.Yearly); cf != nil && cf.FreeCashFlow != nil {
		fcf := float64(*cf.FreeCashFlow)
		f.FreeCashFlow = models.Float(fcf)
		if f.MarketCap != nil && *f.MarketCap > 0 {
			f.FCFYield = models.Float(fcf / *f.MarketCap * 100)
		}
	}

	income := sortedStatements(resp.Financials.IncomeStatement.Yearly)
	if len(income) > 0 {
		latest := income[0]
		if latest.GrossProfit != nil && latest.TotalRevenue != nil && *latest.TotalRevenue != 0 {
			f.GrossMargin = models.Float(float64(*latest.GrossProfit) / float64(*latest.TotalRevenue))
		}
	}
	if len(income) > 5 {
		f.RevenueCAGR5Y = cagr(income[5].TotalRevenue, income[0].TotalRevenue, 5)
		f.EPSCAGR5Y = cagr(income[5].NetIncome, income[0].NetIncome, 5)
	}
}

// cagr computes the compound annual growth rate between two statement values,
// or nil when either endpoint is missing or non-positive.
func cagr(start, end *flexFloat64, years int) *float64 {
	if start == nil || end == nil || *start <= 0 || *end <= 0 {
		return nil
	}
	return models.Float(math.Pow(float64(*end)/float64(*start), 1.0/float64(years)) - 1)
}

type statementEntry struct {
	Date                    string       `json:"date"`
	TotalRevenue            *flexFloat64 `json:"totalRevenue"`
	GrossProfit             *flexFloat64 `json:"grossProfit"`
	NetIncome               *flexFloat64 `json:"netIncome"`
	TotalStockholderEquity  *flexFloat64 `json:"totalStockholderEquity"`
	ShortLongTermDebtTotal  *flexFloat64 `json:"shortLongTermDebtTotal"`
	TotalCurrentAssets      *flexFloat64 `json:"totalCurrentAssets"`
	TotalCurrentLiabilities *flexFloat64 `json:"totalCurrentLiabilities"`
	FreeCashFlow            *flexFloat64 `json:"freeCashFlow"`
}

// sortedStatements returns annual statements newest first.
func sortedStatements(yearly map[string]statementEntry) []statementEntry {
	keys := make([]string, 0, len(yearly))
	for k := range yearly {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]statementEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, yearly[k])
	}
	return out
}

func latestStatement(yearly map[string]statementEntry) *statementEntry {
	entries := sortedStatements(yearly)
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code     string `json:"Code"`
		Name     string `json:"Name"`
		Sector   string `json:"Sector"`
		Industry string `json:"Industry"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization *flexFloat64 `json:"MarketCapitalization"`
		PERatio              *flexFloat64 `json:"PERatio"`
		PEGRatio             *flexFloat64 `json:"PEGRatio"`
		ReturnOnEquityTTM    *flexFloat64 `json:"ReturnOnEquityTTM"`
		OperatingMarginTTM   *flexFloat64 `json:"OperatingMarginTTM"`
	} `json:"Highlights"`
	Financials struct {
		BalanceSheet struct {
			Yearly map[string]statementEntry `json:"yearly"`
		} `json:"Balance_Sheet"`
		CashFlow struct {
			Yearly map[string]statementEntry `json:"yearly"`
		} `json:"Cash_Flow"`
		IncomeStatement struct {
			Yearly map[string]statementEntry `json:"yearly"`
		} `json:"Income_Statement"`
	} `json:"Financials"`
}

// GetExchangeSymbols retrieves all symbols for an exchange
func (c *Client) GetExchangeSymbols(ctx context.Context, exchange string) ([]*models.Symbol, error) {
	path := fmt.Sprintf("/exchange-symbol-list/%s", exchange)

	var symbols []models.Symbol
	if err := c.get(ctx, path, nil, &symbols); err != nil {
		return nil, err
	}

	result := make([]*models.Symbol, len(symbols))
	for i := range symbols {
		result[i] = &symbols[i]
	}

	return result, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
