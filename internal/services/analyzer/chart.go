package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tomclarkson/marketlens/internal/analysis"
	"github.com/tomclarkson/marketlens/internal/models"
)

// RenderPriceChart writes a PNG price chart for a ticker and returns its
// path. The chart shows the close series with 20- and 50-day moving average
// overlays where the history allows them.
func (s *Service) RenderPriceChart(ctx context.Context, ticker string) (string, error) {
	var path string
	err := s.recordJob(ctx, models.JobTypeRenderChart, ticker, func() error {
		data, err := s.loadOrCollect(ctx, ticker, false)
		if err != nil {
			return err
		}

		png, err := renderPriceChart(data, s.charts.Width, s.charts.Height)
		if err != nil {
			return err
		}

		key := chartKey(ticker)
		if err := s.storage.WriteRaw("charts", key, png); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		path = filepath.Join(s.storage.DataPath(), "charts", key)
		s.logger.Info().Str("ticker", ticker).Str("path", path).Msg("Chart rendered")
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func chartKey(ticker string) string {
	return strings.ToLower(strings.ReplaceAll(ticker, ".", "-")) + ".png"
}

// renderPriceChart renders a PNG line chart of closes with moving-average
// overlays. Returns raw PNG bytes.
func renderPriceChart(data *models.MarketData, width, height int) ([]byte, error) {
	if len(data.Bars) < 2 {
		return nil, fmt.Errorf("need at least 2 bars for %s, got %d", data.Ticker, len(data.Bars))
	}

	xValues := make([]time.Time, len(data.Bars))
	closeY := make([]float64, len(data.Bars))
	for i, b := range data.Bars {
		xValues[i] = b.Date
		closeY[i] = b.Close
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.0,
			},
			XValues: xValues,
			YValues: closeY,
		},
	}

	for _, overlay := range []struct {
		name   string
		period int
		color  string
	}{
		{"SMA 20", 20, "f59e0b"}, // amber-500
		{"SMA 50", 50, "9ca3af"}, // gray-400
	} {
		xs, ys := smaSeries(data.Bars, overlay.period)
		if len(xs) < 2 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name: overlay.name,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(overlay.color),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xs,
			YValues: ys,
		})
	}

	title := data.Ticker
	if data.Name != "" {
		title = fmt.Sprintf("%s (%s)", data.Name, data.Ticker)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// smaSeries computes the rolling simple moving average over the close
// series, one point per bar from index period-1 on.
func smaSeries(bars []models.PriceBar, period int) ([]time.Time, []float64) {
	if len(bars) < period {
		return nil, nil
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	xs := make([]time.Time, 0, len(bars)-period+1)
	ys := make([]float64, 0, len(bars)-period+1)
	for i := period; i <= len(closes); i++ {
		avg := analysis.SMA(closes[:i], period)
		if avg == nil {
			continue
		}
		xs = append(xs, bars[i-1].Date)
		ys = append(ys, *avg)
	}
	return xs, ys
}
