package backtest

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Strategy selects the entry rule the simulator replays.
type Strategy string

const (
	// StrategyTechnical enters on the pure indicator rule alone.
	StrategyTechnical Strategy = "TECHNICAL_ONLY"
	// StrategyModelAssisted requires technical/model agreement, or a
	// high-confidence model override.
	StrategyModelAssisted Strategy = "MODEL_ASSISTED"
	// StrategyModelOnly enters on model confidence alone.
	StrategyModelOnly Strategy = "MODEL_ONLY"
)

// Entry rule parameters. Fixed strategy constants, not fitted values.
const (
	momentumThreshold   = 0.005
	modelConfidenceGate = 0.7
	overrideGate        = 0.8

	// 30% target / 20% stop: the fixed asymmetric reward/risk bracket.
	targetFactor = 0.30
	stopFactor   = 0.20

	// Outcome distribution: target-hit probability is confidence
	// scaled by this cap; 60% of the remainder resolves to stop-loss,
	// the rest to a manual exit near breakeven.
	maxTargetProbability = 0.7
	stopShare            = 0.6
)

// Predictor is the model interface the simulator consumes. The
// ensemble service satisfies it; tests supply stubs.
type Predictor interface {
	Predict(snap models.MarketSnapshot, now time.Time) (models.Prediction, error)
}

// Simulator replays historical snapshots through a strategy and
// resolves each entry with a stochastic outcome model. It does not look
// ahead into subsequent snapshots: the output measures signal quality
// under an assumed outcome distribution, not historical price-path
// fidelity.
type Simulator struct {
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewSimulator builds a simulator with an explicit seed so runs are
// reproducible. Pass time.Now().UnixNano() when reproducibility is not
// needed.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		rng:    rand.New(rand.NewSource(seed)),
		logger: log.With().Str("component", "backtest").Logger(),
	}
}

// Simulate runs one strategy over the snapshots in input order and
// returns the trade log. The predictor may be nil for
// StrategyTechnical; the model strategies skip snapshots whose
// prediction fails.
func (s *Simulator) Simulate(snapshots []models.MarketSnapshot, strategy Strategy, predictor Predictor) []models.SimulatedTrade {
	var trades []models.SimulatedTrade

	for _, snap := range snapshots {
		direction, confidence, ok := s.evaluate(snap, strategy, predictor)
		if !ok {
			continue
		}
		trades = append(trades, s.openTrade(snap, strategy, direction, confidence))
	}

	s.logger.Info().
		Str("strategy", string(strategy)).
		Int("snapshots", len(snapshots)).
		Int("trades", len(trades)).
		Msg("simulation complete")

	return trades
}

// evaluate applies the strategy's entry rule to one snapshot.
func (s *Simulator) evaluate(snap models.MarketSnapshot, strategy Strategy, predictor Predictor) (string, float64, bool) {
	switch strategy {
	case StrategyTechnical:
		direction, ok := technicalSignal(snap)
		return direction, 0.6, ok

	case StrategyModelAssisted:
		if _, ok := technicalSignal(snap); !ok {
			return "", 0, false
		}
		pred, ok := s.predict(snap, predictor)
		if !ok || pred.Direction == "" || pred.DirectionConfidence <= modelConfidenceGate {
			return "", 0, false
		}
		techBullish := snap.Indicators.Momentum > momentumThreshold
		agrees := (techBullish && pred.Direction == models.DirectionUp) ||
			(!techBullish && pred.Direction == models.DirectionDown)
		if agrees {
			return pred.Direction, min(0.95, pred.DirectionConfidence+0.1), true
		}
		if pred.DirectionConfidence > overrideGate {
			// High model confidence overrides technical disagreement.
			return pred.Direction, pred.DirectionConfidence, true
		}
		return "", 0, false

	case StrategyModelOnly:
		pred, ok := s.predict(snap, predictor)
		if !ok || pred.DirectionConfidence <= modelConfidenceGate {
			return "", 0, false
		}
		if pred.Direction != models.DirectionUp && pred.Direction != models.DirectionDown {
			return "", 0, false
		}
		return pred.Direction, pred.DirectionConfidence, true
	}
	return "", 0, false
}

func (s *Simulator) predict(snap models.MarketSnapshot, predictor Predictor) (models.Prediction, bool) {
	if predictor == nil {
		return models.Prediction{}, false
	}
	pred, err := predictor.Predict(snap, snap.Timestamp)
	if err != nil {
		s.logger.Debug().Err(err).Str("instrument", snap.Instrument).Msg("prediction failed, skipping snapshot")
		return models.Prediction{}, false
	}
	return pred, true
}

// technicalSignal fires when RSI is strictly between 30 and 70,
// momentum exceeds the threshold, and price sits on the
// momentum-consistent side of the EMA.
func technicalSignal(snap models.MarketSnapshot) (string, bool) {
	ind := snap.Indicators
	if ind.RSI <= 30 || ind.RSI >= 70 {
		return "", false
	}
	if ind.Momentum > momentumThreshold && snap.Price > ind.EMA {
		return models.DirectionUp, true
	}
	if ind.Momentum < -momentumThreshold && snap.Price < ind.EMA {
		return models.DirectionDown, true
	}
	return "", false
}

// openTrade brackets the entry with the fixed target/stop and resolves
// the outcome stochastically.
func (s *Simulator) openTrade(snap models.MarketSnapshot, strategy Strategy, direction string, confidence float64) models.SimulatedTrade {
	entry := snap.Price

	var target, stop float64
	if direction == models.DirectionUp {
		target = entry * (1 + targetFactor)
		stop = entry * (1 - stopFactor)
	} else {
		target = entry * (1 - targetFactor)
		stop = entry * (1 + stopFactor)
	}

	exit, outcome, duration := s.resolveOutcome(entry, target, stop, confidence)

	profitLoss := exit - entry
	if direction == models.DirectionDown {
		profitLoss = entry - exit
	}

	return models.SimulatedTrade{
		Timestamp:         snap.Timestamp,
		Strategy:          string(strategy),
		Direction:         direction,
		EntryPrice:        entry,
		TargetPrice:       target,
		StopLossPrice:     stop,
		ExitPrice:         exit,
		Outcome:           outcome,
		ProfitLoss:        profitLoss,
		ProfitLossPercent: profitLoss / entry * 100,
		Confidence:        confidence,
		DurationMinutes:   duration,
	}
}

// resolveOutcome draws the trade result. Target-hit probability scales
// with entry confidence, capped at maxTargetProbability; each path
// draws its own slippage and duration range.
func (s *Simulator) resolveOutcome(entry, target, stop, confidence float64) (exit float64, outcome string, duration int) {
	targetProbability := confidence * maxTargetProbability
	r := s.rng.Float64()

	switch {
	case r < targetProbability:
		exit = target * s.uniform(0.95, 1.0)
		outcome = models.OutcomeTargetHit
		duration = s.intBetween(5, 120)
	case r < targetProbability+stopShare:
		exit = stop * s.uniform(1.0, 1.05)
		outcome = models.OutcomeStopLossHit
		duration = s.intBetween(2, 60)
	default:
		exit = entry * s.uniform(0.98, 1.02)
		outcome = models.OutcomeManualExit
		duration = s.intBetween(10, 90)
	}
	return exit, outcome, duration
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Simulator) intBetween(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo)
}
