package ensemble

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kushalmehta2868/nifty-trading-bot/internal/features"
	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// TrainReport describes one completed training run.
type TrainReport struct {
	Samples   int       `json:"samples"`
	TrainedAt time.Time `json:"trained_at"`
	Metrics   Metrics   `json:"metrics"`
}

// Stats is a point-in-time view of the deployed ensemble state.
type Stats struct {
	Loaded       bool      `json:"loaded"`
	HasDirection bool      `json:"has_direction"`
	HasSuccess   bool      `json:"has_success"`
	HasReturn    bool      `json:"has_return"`
	FeatureCount int       `json:"feature_count"`
	Features     []string  `json:"features,omitempty"`
	LastTrained  time.Time `json:"last_trained"`
}

type deployed struct {
	ensemble  *Ensemble
	trainedAt time.Time
}

// Service owns the ensemble lifecycle. The fitted state (models, scaler
// and feature-name list) lives behind a single atomic pointer:
// retraining builds a complete new snapshot and swaps it in as one
// unit, so an in-flight Predict always sees either the fully old or
// fully new state, never a torn mix.
type Service struct {
	builder *features.Builder
	state   atomic.Pointer[deployed]
	logger  zerolog.Logger
}

func NewService(builder *features.Builder) *Service {
	return &Service{
		builder: builder,
		logger:  log.With().Str("component", "prediction_service").Logger(),
	}
}

// Train builds the training set, fits a fresh ensemble and atomically
// replaces the deployed state. The previous state serves predictions
// until the swap.
func (s *Service) Train(snapshots []models.MarketSnapshot, outcomes []models.TradeOutcome) (TrainReport, error) {
	vectors, labels := s.builder.BuildTraining(snapshots, outcomes)

	e, metrics, err := Fit(vectors, labels)
	if err != nil {
		return TrainReport{}, err
	}

	report := TrainReport{
		Samples:   len(vectors),
		TrainedAt: time.Now(),
		Metrics:   metrics,
	}
	s.state.Store(&deployed{ensemble: e, trainedAt: report.TrainedAt})

	s.logger.Info().
		Int("samples", report.Samples).
		Time("trained_at", report.TrainedAt).
		Msg("ensemble state replaced")

	return report, nil
}

// Replace swaps in an externally constructed ensemble (e.g. loaded by a
// persistence collaborator) as a single unit.
func (s *Service) Replace(e *Ensemble) {
	s.state.Store(&deployed{ensemble: e, trainedAt: time.Now()})
}

// Ready reports whether a trained ensemble is deployed.
func (s *Service) Ready() bool {
	return s.state.Load() != nil
}

// Predict runs the deployed ensemble against a live snapshot, using the
// feature-name ordering recorded at fit time. Before the first training
// run it falls back to the indicator heuristic so the decision path
// still produces a usable Prediction.
func (s *Service) Predict(snap models.MarketSnapshot, now time.Time) (models.Prediction, error) {
	current := s.state.Load()
	if current == nil {
		s.logger.Debug().Str("instrument", snap.Instrument).Msg("no trained state, using heuristic")
		return HeuristicPredict(snap), nil
	}

	fv := s.builder.BuildInference(snap, current.ensemble.Columns(), now)
	return current.ensemble.Predict(fv)
}

// Stats reports the deployed state for diagnostics.
func (s *Service) Stats() Stats {
	current := s.state.Load()
	if current == nil {
		return Stats{}
	}
	cols := current.ensemble.Columns()
	return Stats{
		Loaded:       true,
		HasDirection: current.ensemble.HasDirection(),
		HasSuccess:   current.ensemble.HasSuccess(),
		HasReturn:    current.ensemble.HasReturn(),
		FeatureCount: len(cols),
		Features:     cols,
		LastTrained:  current.trainedAt,
	}
}
