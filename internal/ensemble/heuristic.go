package ensemble

import (
	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// HeuristicPredict scores EMA position, RSI extremes and momentum into
// a Prediction without any trained state. The service falls back to it
// during cold start, before the first training run completes.
func HeuristicPredict(snap models.MarketSnapshot) models.Prediction {
	ind := snap.Indicators

	score := 0
	if snap.Price > ind.EMA {
		score++
	} else if snap.Price < ind.EMA {
		score--
	}
	if ind.RSI < 30 {
		score++
	} else if ind.RSI > 70 {
		score--
	}
	if ind.Momentum > 0.01 {
		score++
	} else if ind.Momentum < -0.01 {
		score--
	}

	var pred models.Prediction
	switch {
	case score > 0:
		pred.Direction = models.DirectionUp
		pred.DirectionConfidence = clamp(0.5+float64(score)*0.15, 0, 0.85)
	case score < 0:
		pred.Direction = models.DirectionDown
		pred.DirectionConfidence = clamp(0.5+float64(-score)*0.15, 0, 0.85)
	default:
		pred.Direction = models.DirectionSideways
		pred.DirectionConfidence = 0.4
	}

	// High volatility cuts confidence.
	if ind.Volatility > 0.25 {
		pred.DirectionConfidence *= 0.8
	}

	success := pred.DirectionConfidence * 0.9
	expected := pred.DirectionConfidence * 2.5
	pred.SuccessProbability = &success
	pred.ExpectedProfitPercent = &expected

	return pred
}
