package fusion

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Confidence thresholds and adjustments for the fusion steps. Fixed
// strategy parameters, not tunables derived from data.
const (
	directionGate = 0.7

	highSuccessProb  = 0.8
	lowSuccessProb   = 0.4
	successProbBoost = 0.3

	sentimentGate  = 0.3
	sentimentBoost = 0.1

	highVolatility = 0.25
	lowVolatility  = 0.10

	lateSessionHour       = 15
	lateSessionMultiplier = 0.8

	minConfidence = 0.1
)

// Engine fuses a model prediction, an optional sentiment score and the
// current snapshot into one actionable recommendation. Deterministic
// given identical inputs; the evaluation clock is passed in so the
// late-session rule is testable.
type Engine struct {
	logger zerolog.Logger
}

func New() *Engine {
	return &Engine{logger: log.With().Str("component", "fusion").Logger()}
}

// Recommend applies the ordered fusion steps. Each step may strengthen
// or weaken the action and confidence of the step before it, and each
// appends to the reasoning trail; nothing is ever overwritten silently.
func (e *Engine) Recommend(pred models.Prediction, sentiment *models.SentimentScore, snap models.MarketSnapshot, now time.Time) models.TradingRecommendation {
	rec := models.TradingRecommendation{
		Action:       models.ActionHold,
		Confidence:   0.5,
		RiskLevel:    models.RiskMedium,
		PositionSize: 1.0,
	}

	// 1. Direction prediction sets the action.
	if pred.Direction != "" {
		switch {
		case pred.Direction == models.DirectionUp && pred.DirectionConfidence > directionGate:
			rec.Action = models.ActionBuy
			rec.Reasoning = append(rec.Reasoning,
				fmt.Sprintf("AI predicts upward movement (%.2f confidence)", pred.DirectionConfidence))
		case pred.Direction == models.DirectionDown && pred.DirectionConfidence > directionGate:
			rec.Action = models.ActionSell
			rec.Reasoning = append(rec.Reasoning,
				fmt.Sprintf("AI predicts downward movement (%.2f confidence)", pred.DirectionConfidence))
		default:
			rec.Reasoning = append(rec.Reasoning,
				fmt.Sprintf("AI predicts %s movement with low confidence", strings.ToLower(pred.Direction)))
		}
	}

	// 2. Success probability strengthens or vetoes.
	if pred.SuccessProbability != nil {
		prob := *pred.SuccessProbability
		if prob > highSuccessProb {
			rec.Confidence = min(1.0, rec.Confidence+successProbBoost)
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("High success probability (%.2f)", prob))
		} else if prob < lowSuccessProb {
			rec.Action = models.ActionHold
			rec.Confidence = max(minConfidence, rec.Confidence-successProbBoost)
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("Low success probability (%.2f)", prob))
		}
	}

	// 3. Sentiment confirms an aligned action. The reasoning entry is
	// recorded even when the action does not match.
	if sentiment != nil {
		if sentiment.CompoundScore > sentimentGate {
			if rec.Action == models.ActionBuy {
				rec.Confidence = min(1.0, rec.Confidence+sentimentBoost)
			}
			rec.Reasoning = append(rec.Reasoning,
				fmt.Sprintf("Positive market sentiment (%.2f)", sentiment.CompoundScore))
		} else if sentiment.CompoundScore < -sentimentGate {
			if rec.Action == models.ActionSell {
				rec.Confidence = min(1.0, rec.Confidence+sentimentBoost)
			}
			rec.Reasoning = append(rec.Reasoning,
				fmt.Sprintf("Negative market sentiment (%.2f)", sentiment.CompoundScore))
		}
	}

	// 4. Volatility drives risk level and position sizing.
	volatility := snap.Indicators.Volatility
	if volatility > highVolatility {
		rec.RiskLevel = models.RiskHigh
		rec.PositionSize = 0.7
	} else if volatility < lowVolatility {
		rec.RiskLevel = models.RiskLow
		rec.PositionSize = 1.3
	}

	// 5. Late session trims size regardless of action. Uses the
	// evaluation clock, not the snapshot time.
	if now.Hour() >= lateSessionHour {
		rec.PositionSize *= lateSessionMultiplier
		rec.Reasoning = append(rec.Reasoning, "Reduced size due to market close proximity")
	}

	e.logger.Debug().
		Str("instrument", snap.Instrument).
		Str("action", rec.Action).
		Float64("confidence", rec.Confidence).
		Str("risk", rec.RiskLevel).
		Msg("recommendation generated")

	return rec
}

// OverallConfidence is the plain mean of whichever confidence signals
// are present, 0.5 when none are. Source-reliability weighting is
// deliberately not applied here.
func OverallConfidence(pred models.Prediction, sentiment *models.SentimentScore) float64 {
	var sum float64
	var count int

	if pred.Direction != "" {
		sum += pred.DirectionConfidence
		count++
	}
	if pred.SuccessProbability != nil {
		sum += *pred.SuccessProbability
		count++
	}
	if sentiment != nil {
		sum += sentiment.Confidence
		count++
	}

	if count == 0 {
		return 0.5
	}
	return sum / float64(count)
}
