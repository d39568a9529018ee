package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kushalmehta2868/nifty-trading-bot/internal/ensemble"
	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Store wraps the PostgreSQL connection holding snapshots, realized
// trade outcomes and the training history.
type Store struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &Store{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS market_snapshots (
			id SERIAL PRIMARY KEY,
			instrument TEXT NOT NULL,
			ts TIMESTAMP NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			ema DOUBLE PRECISION,
			rsi DOUBLE PRECISION,
			momentum DOUBLE PRECISION,
			volatility DOUBLE PRECISION,
			bb_upper DOUBLE PRECISION,
			bb_middle DOUBLE PRECISION,
			bb_lower DOUBLE PRECISION,
			bb_squeeze BOOLEAN,
			trend TEXT,
			volatility_regime TEXT,
			time_of_day TEXT
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trade_outcomes (
			id SERIAL PRIMARY KEY,
			instrument TEXT NOT NULL,
			entry_time TIMESTAMP NOT NULL,
			exit_time TIMESTAMP NOT NULL,
			profit_loss_percent DOUBLE PRECISION NOT NULL,
			holding_minutes INTEGER NOT NULL,
			outcome TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS training_runs (
			id SERIAL PRIMARY KEY,
			trained_at TIMESTAMP NOT NULL,
			samples INTEGER NOT NULL,
			direction_algorithm TEXT,
			direction_cv_score DOUBLE PRECISION,
			success_accuracy DOUBLE PRECISION,
			success_auc DOUBLE PRECISION,
			return_r2 DOUBLE PRECISION,
			return_mae DOUBLE PRECISION,
			return_rmse DOUBLE PRECISION
		)
	`)
	return err
}

// SaveSnapshot persists one market observation.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.MarketSnapshot) error {
	var bbUpper, bbMiddle, bbLower sql.NullFloat64
	var bbSqueeze sql.NullBool
	if bb := snap.Indicators.Bollinger; bb != nil {
		bbUpper = sql.NullFloat64{Float64: bb.Upper, Valid: true}
		bbMiddle = sql.NullFloat64{Float64: bb.Middle, Valid: true}
		bbLower = sql.NullFloat64{Float64: bb.Lower, Valid: true}
		bbSqueeze = sql.NullBool{Bool: bb.Squeeze, Valid: true}
	}

	_, err := s.ExecContext(ctx, `
		INSERT INTO market_snapshots (
			instrument, ts, price, ema, rsi, momentum, volatility,
			bb_upper, bb_middle, bb_lower, bb_squeeze,
			trend, volatility_regime, time_of_day
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		snap.Instrument, snap.Timestamp, snap.Price,
		snap.Indicators.EMA, snap.Indicators.RSI, snap.Indicators.Momentum, snap.Indicators.Volatility,
		bbUpper, bbMiddle, bbLower, bbSqueeze,
		snap.Conditions.Trend, snap.Conditions.VolatilityRegime, snap.Conditions.TimeOfDay)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// SaveOutcome persists one realized trade outcome.
func (s *Store) SaveOutcome(ctx context.Context, outcome models.TradeOutcome) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO trade_outcomes (
			instrument, entry_time, exit_time, profit_loss_percent, holding_minutes, outcome
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		outcome.Instrument, outcome.EntryTime, outcome.ExitTime,
		outcome.ProfitLossPercent, int(outcome.HoldingDuration.Minutes()), outcome.Outcome)
	if err != nil {
		return fmt.Errorf("saving outcome: %w", err)
	}
	return nil
}

// LoadTrainingData returns all snapshots and outcomes for an
// instrument, snapshots in chronological order.
func (s *Store) LoadTrainingData(ctx context.Context, instrument string) ([]models.MarketSnapshot, []models.TradeOutcome, error) {
	snapshots, err := s.loadSnapshots(ctx, instrument)
	if err != nil {
		return nil, nil, err
	}
	outcomes, err := s.loadOutcomes(ctx, instrument)
	if err != nil {
		return nil, nil, err
	}
	return snapshots, outcomes, nil
}

func (s *Store) loadSnapshots(ctx context.Context, instrument string) ([]models.MarketSnapshot, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT instrument, ts, price, ema, rsi, momentum, volatility,
			bb_upper, bb_middle, bb_lower, bb_squeeze,
			trend, volatility_regime, time_of_day
		FROM market_snapshots
		WHERE instrument = $1
		ORDER BY ts ASC
	`, instrument)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.MarketSnapshot
	for rows.Next() {
		var snap models.MarketSnapshot
		var ema, rsi, momentum, volatility sql.NullFloat64
		var bbUpper, bbMiddle, bbLower sql.NullFloat64
		var bbSqueeze sql.NullBool
		var trend, volRegime, timeOfDay sql.NullString

		if err := rows.Scan(
			&snap.Instrument, &snap.Timestamp, &snap.Price,
			&ema, &rsi, &momentum, &volatility,
			&bbUpper, &bbMiddle, &bbLower, &bbSqueeze,
			&trend, &volRegime, &timeOfDay,
		); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}

		snap.Indicators.EMA = ema.Float64
		snap.Indicators.RSI = rsi.Float64
		snap.Indicators.Momentum = momentum.Float64
		snap.Indicators.Volatility = volatility.Float64
		if bbUpper.Valid {
			snap.Indicators.Bollinger = &models.BollingerBands{
				Upper:   bbUpper.Float64,
				Middle:  bbMiddle.Float64,
				Lower:   bbLower.Float64,
				Squeeze: bbSqueeze.Bool,
			}
		}
		snap.Conditions.Trend = trend.String
		snap.Conditions.VolatilityRegime = volRegime.String
		snap.Conditions.TimeOfDay = timeOfDay.String

		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *Store) loadOutcomes(ctx context.Context, instrument string) ([]models.TradeOutcome, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT instrument, entry_time, exit_time, profit_loss_percent, holding_minutes, outcome
		FROM trade_outcomes
		WHERE instrument = $1
		ORDER BY entry_time ASC
	`, instrument)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.TradeOutcome
	for rows.Next() {
		var outcome models.TradeOutcome
		var holdingMinutes int
		if err := rows.Scan(
			&outcome.Instrument, &outcome.EntryTime, &outcome.ExitTime,
			&outcome.ProfitLossPercent, &holdingMinutes, &outcome.Outcome,
		); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		outcome.HoldingDuration = time.Duration(holdingMinutes) * time.Minute
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

// RecordTraining appends one training run to the history.
func (s *Store) RecordTraining(ctx context.Context, report ensemble.TrainReport) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO training_runs (
			trained_at, samples, direction_algorithm, direction_cv_score,
			success_accuracy, success_auc, return_r2, return_mae, return_rmse
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		report.TrainedAt, report.Samples,
		report.Metrics.DirectionAlgorithm, report.Metrics.DirectionCVScore,
		report.Metrics.SuccessAccuracy, report.Metrics.SuccessAUC,
		report.Metrics.ReturnR2, report.Metrics.ReturnMAE, report.Metrics.ReturnRMSE)
	if err != nil {
		return fmt.Errorf("recording training run: %w", err)
	}
	return nil
}
