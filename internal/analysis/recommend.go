package analysis

import (
	"fmt"
	"math"

	"github.com/tomclarkson/marketlens/internal/models"
)

// Recommend combines a score breakdown and a signal list into a single
// rating with a confidence percentage and a one-line summary.
//
// The rating cascade is evaluated in order, first match wins. The branches
// overlap rather than partitioning the score space (the Sell branch shadows
// most of Strong Sell); evaluation order determines the result.
func Recommend(scores models.ScoreBreakdown, signals []models.Signal) models.Recommendation {
	bullish, bearish := 0, 0
	for _, s := range signals {
		switch s.Type {
		case models.SignalBullish:
			bullish++
		case models.SignalBearish:
			bearish++
		}
	}
	signalScore := bullish - bearish

	var rating string
	switch {
	case scores.Overall >= 70 && signalScore >= 2:
		rating = models.RatingStrongBuy
	case scores.Overall >= 60 && signalScore >= 0:
		rating = models.RatingBuy
	case scores.Overall >= 40 && scores.Overall < 60:
		rating = models.RatingHold
	case scores.Overall < 40 && signalScore <= 0:
		rating = models.RatingSell
	case scores.Overall < 30 && signalScore < -1:
		rating = models.RatingStrongSell
	default:
		rating = models.RatingHold
	}

	return models.Recommendation{
		Rating:     rating,
		Confidence: confidence(scores, signalScore),
		Summary: fmt.Sprintf("%s: overall score %d/100 with %d bullish and %d bearish signals",
			rating, scores.Overall, bullish, bearish),
	}
}

// confidence grows with the number of categories that moved off the neutral
// default and with the magnitude of the net signal score, capped at 100.
func confidence(scores models.ScoreBreakdown, signalScore int) int {
	active := 0
	for _, s := range []int{scores.Valuation, scores.Quality, scores.Growth, scores.Momentum} {
		if s != 50 {
			active++
		}
	}

	c := (float64(active)/4.0)*50 + math.Abs(float64(signalScore))*10 + 30
	if c > 100 {
		c = 100
	}
	return int(math.Round(c))
}
