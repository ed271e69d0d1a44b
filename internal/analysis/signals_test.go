package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomclarkson/marketlens/internal/models"
)

func findSignal(signals []models.Signal, indicator string) *models.Signal {
	for i := range signals {
		if signals[i].Indicator == indicator {
			return &signals[i]
		}
	}
	return nil
}

func TestGenerateSignalsRSI(t *testing.T) {
	tests := []struct {
		name     string
		rsi      float64
		sigType  models.SignalType
		strength int
	}{
		{"deeply oversold", 15, models.SignalBullish, 3},
		{"oversold", 25, models.SignalBullish, 2},
		{"overbought", 75, models.SignalBearish, 2},
		{"deeply overbought", 85, models.SignalBearish, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := GenerateSignals(nil, &models.IndicatorSet{RSI14: models.Float(tt.rsi)})
			sig := findSignal(signals, "RSI")
			require.NotNil(t, sig)
			assert.Equal(t, tt.sigType, sig.Type)
			assert.Equal(t, tt.strength, sig.Strength)
		})
	}

	t.Run("neutral RSI emits nothing", func(t *testing.T) {
		signals := GenerateSignals(nil, &models.IndicatorSet{RSI14: models.Float(50)})
		assert.Nil(t, findSignal(signals, "RSI"))
	})
}

func TestGenerateSignalsMACDZeroIsBearish(t *testing.T) {
	// The histogram rule fires whenever a value is available; exactly zero
	// lands on the bearish side.
	signals := GenerateSignals(nil, &models.IndicatorSet{MACDHistogram: models.Float(0)})
	sig := findSignal(signals, "MACD")
	require.NotNil(t, sig)
	assert.Equal(t, models.SignalBearish, sig.Type)

	signals = GenerateSignals(nil, &models.IndicatorSet{MACDHistogram: models.Float(0.01)})
	sig = findSignal(signals, "MACD")
	require.NotNil(t, sig)
	assert.Equal(t, models.SignalBullish, sig.Type)
}

func TestGenerateSignalsFundamentals(t *testing.T) {
	f := &models.Fundamentals{
		PE:            models.Float(8),
		ROE:           models.Float(0.28),
		DebtToEquity:  models.Float(0.2),
		RevenueCAGR5Y: models.Float(0.22),
	}

	signals := GenerateSignals(f, nil)
	require.Len(t, signals, 4)

	// Emission follows rule order.
	assert.Equal(t, "Valuation", signals[0].Indicator)
	assert.Equal(t, 3, signals[0].Strength) // PE < 10
	assert.Equal(t, "Quality", signals[1].Indicator)
	assert.Equal(t, 2, signals[1].Strength) // ROE not above 0.30
	assert.Equal(t, "Balance Sheet", signals[2].Indicator)
	assert.Equal(t, "Growth", signals[3].Indicator)
	assert.Equal(t, 2, signals[3].Strength) // CAGR not above 0.25

	for _, s := range signals {
		assert.Equal(t, models.SignalBullish, s.Type)
	}
}

func TestGenerateSignalsLeverage(t *testing.T) {
	tests := []struct {
		name     string
		de       float64
		sigType  models.SignalType
		strength int
	}{
		{"low leverage", 0.1, models.SignalBullish, 2},
		{"high leverage", 2.5, models.SignalBearish, 2},
		{"extreme leverage", 3.5, models.SignalBearish, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := GenerateSignals(&models.Fundamentals{DebtToEquity: models.Float(tt.de)}, nil)
			sig := findSignal(signals, "Balance Sheet")
			require.NotNil(t, sig)
			assert.Equal(t, tt.sigType, sig.Type)
			assert.Equal(t, tt.strength, sig.Strength)
		})
	}

	t.Run("moderate leverage emits nothing", func(t *testing.T) {
		signals := GenerateSignals(&models.Fundamentals{DebtToEquity: models.Float(1.0)}, nil)
		assert.Nil(t, findSignal(signals, "Balance Sheet"))
	})
}

func TestGenerateSignalsMomentum(t *testing.T) {
	signals := GenerateSignals(nil, &models.IndicatorSet{PriceChange20D: models.Float(12)})
	sig := findSignal(signals, "Momentum")
	require.NotNil(t, sig)
	assert.Equal(t, models.SignalBullish, sig.Type)

	signals = GenerateSignals(nil, &models.IndicatorSet{PriceChange20D: models.Float(-12)})
	sig = findSignal(signals, "Momentum")
	require.NotNil(t, sig)
	assert.Equal(t, models.SignalBearish, sig.Type)

	signals = GenerateSignals(nil, &models.IndicatorSet{PriceChange20D: models.Float(5)})
	assert.Nil(t, findSignal(signals, "Momentum"))
}

func TestGenerateSignalsEmptyInputs(t *testing.T) {
	assert.Empty(t, GenerateSignals(nil, nil))
	assert.Empty(t, GenerateSignals(&models.Fundamentals{}, &models.IndicatorSet{}))
}

func TestGenerateSignalsNegativePEEmitsNoValuation(t *testing.T) {
	signals := GenerateSignals(&models.Fundamentals{PE: models.Float(-4)}, nil)
	assert.Nil(t, findSignal(signals, "Valuation"))
}
