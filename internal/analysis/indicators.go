// Package analysis computes technical indicators, factor scores, trading
// signals, and recommendations from market data.
package analysis

import (
	"math"

	"github.com/tomclarkson/marketlens/internal/models"
)

// Default indicator periods.
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	BollingerPeriod  = 20
	BollingerK       = 2.0
	ATRPeriod        = 14
	VolumePeriod     = 20
	TradingDaysYear  = 252
)

// ComputeIndicators evaluates all technical indicators against the full
// series, as of the last bar. Bars must be ascending by date. Each indicator
// independently reports nil when the series is too short for it; the
// computation as a whole never fails.
func ComputeIndicators(bars []models.PriceBar) *models.IndicatorSet {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	set := &models.IndicatorSet{
		RSI14:          RSI(closes, RSIPeriod),
		SMA20:          SMA(closes, 20),
		SMA50:          SMA(closes, 50),
		EMA12:          EMA(closes, MACDFastPeriod),
		EMA26:          EMA(closes, MACDSlowPeriod),
		ATR14:          ATR(bars, ATRPeriod),
		PriceChange5D:  PriceChange(closes, 5),
		PriceChange20D: PriceChange(closes, 20),
		VolumeRatio:    VolumeRatio(bars, VolumePeriod),
	}

	set.MACD, set.MACDSignal, set.MACDHistogram = MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	set.BollingerUpper, set.BollingerMiddle, set.BollingerLower = Bollinger(closes, BollingerPeriod, BollingerK)
	set.PctFrom52WeekHigh, set.PctFrom52WeekLow = Position52Week(bars)

	return set
}

// SMA returns the mean of the last period closes, or nil with insufficient
// history.
func SMA(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return models.Float(sum / float64(period))
}

// EMA returns the exponential moving average as of the last value.
func EMA(closes []float64, period int) *float64 {
	series := emaSeries(closes, period)
	if series == nil {
		return nil
	}
	return models.Float(series[len(series)-1])
}

// emaSeries computes the full EMA array for an arbitrary numeric sequence.
// The seed is the simple average of the first period values, placed at index
// period-1; entries before that index are zero and not meaningful. The same
// recurrence serves both price EMAs and the MACD signal line.
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	out := make([]float64, len(values))
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	out[period-1] = seed / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// RSI computes the Relative Strength Index as a simple windowed average of
// gains and losses over the trailing period closes, not Wilder's smoothed
// recurrence. Downstream score and signal thresholds are calibrated to this
// variant.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	window := closes[len(closes)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return models.Float(100)
	}

	rs := avgGain / avgLoss
	return models.Float(100 - (100 / (1 + rs)))
}

// MACD computes the MACD line, signal line, and histogram as of the last
// bar. The MACD line needs len(closes) >= slow; the signal line additionally
// needs a MACD-line history of at least signalPeriod values, and is nil
// (along with the histogram) until then.
func MACD(closes []float64, fast, slow, signalPeriod int) (line, signal, histogram *float64) {
	if len(closes) < slow {
		return nil, nil, nil
	}

	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	macdLine := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fastEMA[i]-slowEMA[i])
	}

	line = models.Float(macdLine[len(macdLine)-1])
	if len(macdLine) < signalPeriod {
		return line, nil, nil
	}

	signalEMA := emaSeries(macdLine, signalPeriod)
	sig := signalEMA[len(signalEMA)-1]
	return line, models.Float(sig), models.Float(*line - sig)
}

// Bollinger computes Bollinger Bands over the last period closes using a
// population standard deviation (divide by period, not period-1).
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower *float64) {
	mid := SMA(closes, period)
	if mid == nil {
		return nil, nil, nil
	}

	variance := 0.0
	for _, c := range closes[len(closes)-period:] {
		d := c - *mid
		variance += d * d
	}
	sigma := math.Sqrt(variance / float64(period))

	return models.Float(*mid + k*sigma), mid, models.Float(*mid - k*sigma)
}

// ATR computes the Average True Range as a simple mean of the last period
// true-range values. Like RSI, this is the windowed variant, not Wilder's.
func ATR(bars []models.PriceBar, period int) *float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		high := bars[i].High
		low := bars[i].Low
		prevClose := bars[i-1].Close

		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		sum += tr
	}
	return models.Float(sum / float64(period))
}

// PriceChange returns the percentage change of the last close versus the
// close n bars earlier.
func PriceChange(closes []float64, n int) *float64 {
	if n <= 0 || len(closes) <= n {
		return nil
	}
	prev := closes[len(closes)-1-n]
	last := closes[len(closes)-1]
	return models.Float(((last - prev) / prev) * 100)
}

// VolumeRatio returns the latest volume as a ratio of the mean volume over
// the last period bars, or nil when that mean is zero.
func VolumeRatio(bars []models.PriceBar, period int) *float64 {
	if period <= 0 || len(bars) < period {
		return nil
	}

	var sum int64
	for _, b := range bars[len(bars)-period:] {
		sum += b.Volume
	}
	avg := float64(sum) / float64(period)
	if avg == 0 {
		return nil
	}
	return models.Float(float64(bars[len(bars)-1].Volume) / avg)
}

// Position52Week returns the percent distance of the latest close from the
// trailing 252-bar high and low.
func Position52Week(bars []models.PriceBar) (fromHigh, fromLow *float64) {
	if len(bars) < TradingDaysYear {
		return nil, nil
	}

	window := bars[len(bars)-TradingDaysYear:]
	high := window[0].High
	low := window[0].Low
	for _, b := range window[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}

	last := bars[len(bars)-1].Close
	return models.Float(((last - high) / high) * 100), models.Float(((last - low) / low) * 100)
}
