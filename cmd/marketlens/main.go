// Command marketlens analyzes stocks from end-of-day market data: it
// computes technical indicators, factor scores, and trading signals, and
// prints a rated report per ticker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomclarkson/marketlens/internal/clients/eodhd"
	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/services/analyzer"
	"github.com/tomclarkson/marketlens/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "analyze":
		runAnalyze(args)
	case "collect":
		runCollect(args)
	case "chart":
		runChart(args)
	case "jobs":
		runJobs(args)
	case "version":
		common.LoadVersionFromFile()
		fmt.Println(common.GetFullVersion())
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `marketlens - stock analysis from end-of-day market data

Usage:
  marketlens analyze [-force] TICKER [TICKER...]   analyze tickers and print reports
  marketlens collect [-force] TICKER [TICKER...]   fetch and cache market data
  marketlens chart TICKER [TICKER...]              render price charts (PNG)
  marketlens jobs [-limit N]                       show recent job runs
  marketlens version                               print version

Configuration is read from the file named by MARKETLENS_CONFIG (TOML),
with MARKETLENS_* environment overrides. The EODHD API key comes from
MARKETLENS_EODHD_API_KEY or EODHD_API_KEY.
`)
}

// bootstrap loads config and wires the storage, client, and service stack.
func bootstrap() (*analyzer.Service, *storage.Manager, *common.Logger, error) {
	cfg, err := common.LoadConfig(os.Getenv("MARKETLENS_CONFIG"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := common.NewLogger(cfg.Logging)

	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, nil, nil, err
	}

	mgr, err := storage.NewManager(logger, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open storage: %w", err)
	}

	client := eodhd.NewClient(apiKey,
		eodhd.WithBaseURL(cfg.Clients.EODHD.BaseURL),
		eodhd.WithRateLimit(cfg.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(cfg.Clients.EODHD.GetTimeout()),
		eodhd.WithLogger(logger),
	)

	svc := analyzer.NewService(mgr, client, cfg.Charts, logger)
	return svc, mgr, logger, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "marketlens: %v\n", err)
	os.Exit(1)
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	force := fs.Bool("force", false, "re-fetch market data regardless of cache freshness")
	fs.Parse(args)

	tickers := fs.Args()
	if len(tickers) == 0 {
		fatal(fmt.Errorf("analyze: at least one ticker required"))
	}

	svc, mgr, _, err := bootstrap()
	if err != nil {
		fatal(err)
	}
	defer mgr.Close()

	ctx, cancel := signalContext()
	defer cancel()

	results, err := svc.AnalyzeTickers(ctx, tickers, *force)
	if err != nil {
		fatal(err)
	}

	for _, result := range results {
		fmt.Println(formatAnalysis(result))
	}
	if len(results) < len(tickers) {
		fmt.Fprintf(os.Stderr, "warning: %d of %d tickers failed\n", len(tickers)-len(results), len(tickers))
	}
}

func runCollect(args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	force := fs.Bool("force", false, "re-fetch all data regardless of cache freshness")
	fs.Parse(args)

	tickers := fs.Args()
	if len(tickers) == 0 {
		fatal(fmt.Errorf("collect: at least one ticker required"))
	}

	svc, mgr, logger, err := bootstrap()
	if err != nil {
		fatal(err)
	}
	defer mgr.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := svc.CollectMarketData(ctx, tickers, *force); err != nil {
		fatal(err)
	}
	logger.Info().Int("tickers", len(tickers)).Msg("Market data collected")
}

func runChart(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	fs.Parse(args)

	tickers := fs.Args()
	if len(tickers) == 0 {
		fatal(fmt.Errorf("chart: at least one ticker required"))
	}

	svc, mgr, _, err := bootstrap()
	if err != nil {
		fatal(err)
	}
	defer mgr.Close()

	ctx, cancel := signalContext()
	defer cancel()

	for _, ticker := range tickers {
		path, err := svc.RenderPriceChart(ctx, ticker)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s: %s\n", ticker, path)
	}
}

func runJobs(args []string) {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum number of job runs to show")
	fs.Parse(args)

	_, mgr, _, err := bootstrap()
	if err != nil {
		fatal(err)
	}
	defer mgr.Close()

	ctx, cancel := signalContext()
	defer cancel()

	runs, err := mgr.JobRunStore().List(ctx, *limit)
	if err != nil {
		fatal(err)
	}
	fmt.Print(formatJobRuns(runs))
}
