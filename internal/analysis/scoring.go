package analysis

import (
	"math"

	"github.com/tomclarkson/marketlens/internal/models"
)

// Category weights for the overall score. Fixed design constants.
const (
	weightValuation = 0.25
	weightQuality   = 0.30
	weightGrowth    = 0.25
	weightMomentum  = 0.20
)

const neutralScore = 50.0

// Score maps a fundamentals snapshot and an optional indicator set to four
// category scores plus a weighted overall score. Each category starts at a
// neutral 50 and accumulates independent additive adjustments, one per
// available metric; absent metrics contribute nothing. Pure and
// deterministic.
func Score(f *models.Fundamentals, ind *models.IndicatorSet) models.ScoreBreakdown {
	valuation := roundClamp(valuationScore(f))
	quality := roundClamp(qualityScore(f))
	growth := roundClamp(growthScore(f))
	momentum := roundClamp(momentumScore(ind))

	// Overall uses the rounded category scores as multiplicands so that the
	// reported breakdown always recombines to the reported overall.
	overall := int(math.Round(
		float64(valuation)*weightValuation +
			float64(quality)*weightQuality +
			float64(growth)*weightGrowth +
			float64(momentum)*weightMomentum))

	return models.ScoreBreakdown{
		Valuation: valuation,
		Quality:   quality,
		Growth:    growth,
		Momentum:  momentum,
		Overall:   overall,
	}
}

func valuationScore(f *models.Fundamentals) float64 {
	score := neutralScore
	if f == nil {
		return score
	}

	if f.PE != nil {
		switch pe := *f.PE; {
		case pe < 0:
			score -= 10
		case pe < 10:
			score += 15
		case pe < 15:
			score += 10
		case pe < 20:
			score += 5
		case pe < 30:
			score -= 5
		default:
			score -= 10
		}
	}

	if f.PEG != nil {
		switch peg := *f.PEG; {
		case peg < 0:
			score -= 10
		case peg < 1:
			score += 15
		case peg < 1.5:
			score += 10
		case peg < 2:
			score += 5
		case peg < 3:
			score -= 5
		default:
			score -= 10
		}
	}

	if f.FCFYield != nil {
		switch y := *f.FCFYield; {
		case y > 10:
			score += 15
		case y > 5:
			score += 10
		case y > 3:
			score += 5
		case y < 0:
			score -= 10
		}
	}

	return score
}

func qualityScore(f *models.Fundamentals) float64 {
	score := neutralScore
	if f == nil {
		return score
	}

	if f.ROE != nil {
		switch roe := *f.ROE; {
		case roe > 0.20:
			score += 15
		case roe > 0.15:
			score += 10
		case roe > 0.10:
			score += 5
		case roe < 0:
			score -= 15
		case roe < 0.05:
			score -= 5
		}
	}

	if f.OperatingMargin != nil {
		switch m := *f.OperatingMargin; {
		case m > 0.25:
			score += 10
		case m > 0.15:
			score += 5
		case m < 0:
			score -= 10
		case m < 0.05:
			score -= 5
		}
	}

	if f.GrossMargin != nil {
		switch m := *f.GrossMargin; {
		case m > 0.50:
			score += 10
		case m > 0.35:
			score += 5
		case m < 0.20:
			score -= 5
		}
	}

	if f.DebtToEquity != nil {
		switch de := *f.DebtToEquity; {
		case de < 0.3:
			score += 10
		case de < 0.7:
			score += 5
		case de > 2.5:
			score -= 10
		case de > 1.5:
			score -= 5
		}
	}

	if f.CurrentRatio != nil {
		switch cr := *f.CurrentRatio; {
		case cr > 2:
			score += 5
		case cr < 1:
			score -= 5
		}
	}

	return score
}

// growthScore short-circuits to exactly 50 when neither CAGR metric is
// present. Other categories simply accumulate zero for missing metrics; this
// asymmetry is part of the scoring contract.
func growthScore(f *models.Fundamentals) float64 {
	if f == nil || (f.RevenueCAGR5Y == nil && f.EPSCAGR5Y == nil) {
		return neutralScore
	}

	score := neutralScore
	if f.RevenueCAGR5Y != nil {
		score += cagrAdjustment(*f.RevenueCAGR5Y)
	}
	if f.EPSCAGR5Y != nil {
		score += cagrAdjustment(*f.EPSCAGR5Y)
	}
	return score
}

func cagrAdjustment(cagr float64) float64 {
	switch {
	case cagr > 0.25:
		return 20
	case cagr > 0.15:
		return 15
	case cagr > 0.10:
		return 10
	case cagr > 0.05:
		return 5
	case cagr < -0.10:
		return -20
	case cagr < 0:
		return -10
	default:
		return 0
	}
}

// momentumScore is fixed at 50 when no indicator set is supplied.
func momentumScore(ind *models.IndicatorSet) float64 {
	if ind == nil {
		return neutralScore
	}

	score := neutralScore

	if ind.RSI14 != nil {
		switch rsi := *ind.RSI14; {
		case rsi >= 40 && rsi <= 60:
			score += 15 // neutral zone reads as healthy
		case rsi >= 30 && rsi <= 70:
			score += 5
		case rsi > 70:
			score -= 10
		default:
			score -= 5
		}
	}

	if ind.MACDHistogram != nil {
		if *ind.MACDHistogram > 0 {
			score += 10
		} else {
			score -= 10
		}
	}

	if ind.PriceChange20D != nil {
		switch chg := *ind.PriceChange20D; {
		case chg > 10:
			score += 15
		case chg > 5:
			score += 10
		case chg > 0:
			score += 5
		case chg < -10:
			score -= 15
		case chg < 0:
			score -= 5
		}
	}

	if ind.VolumeRatio != nil {
		switch vr := *ind.VolumeRatio; {
		case vr > 2:
			score += 10
		case vr > 1.5:
			score += 5
		}
	}

	return score
}

// roundClamp clamps a raw category score into [0,100] and rounds it to the
// nearest integer.
func roundClamp(score float64) int {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}
