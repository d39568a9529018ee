package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kushalmehta2868/nifty-trading-bot/config"
	"github.com/kushalmehta2868/nifty-trading-bot/internal/backtest"
	"github.com/kushalmehta2868/nifty-trading-bot/internal/ensemble"
	"github.com/kushalmehta2868/nifty-trading-bot/internal/features"
	"github.com/kushalmehta2868/nifty-trading-bot/internal/fusion"
	"github.com/kushalmehta2868/nifty-trading-bot/internal/report"
	"github.com/kushalmehta2868/nifty-trading-bot/internal/sentiment"
	"github.com/kushalmehta2868/nifty-trading-bot/internal/store"
	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg := config.Load()

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	ctx := context.Background()

	if cfg.DBHost == "" {
		log.Fatal().Msg("DB_HOST is required")
	}
	db, err := store.New(store.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	snapshots, outcomes, err := db.LoadTrainingData(ctx, cfg.Instrument)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load training data")
	}
	log.Info().
		Str("instrument", cfg.Instrument).
		Int("snapshots", len(snapshots)).
		Int("outcomes", len(outcomes)).
		Msg("training data loaded")

	featureCfg := features.DefaultConfig()
	featureCfg.MaxMatchGap = time.Duration(cfg.MaxMatchGapMinutes) * time.Minute
	svc := ensemble.NewService(features.NewBuilder(featureCfg))

	trainReport, err := svc.Train(snapshots, outcomes)
	if err != nil {
		// Heuristic fallback covers prediction until enough data exists.
		log.Warn().Err(err).Msg("training skipped, predictions fall back to heuristics")
	} else {
		log.Info().
			Int("samples", trainReport.Samples).
			Str("direction_model", trainReport.Metrics.DirectionAlgorithm).
			Float64("direction_cv_score", trainReport.Metrics.DirectionCVScore).
			Float64("success_accuracy", trainReport.Metrics.SuccessAccuracy).
			Float64("return_r2", trainReport.Metrics.ReturnR2).
			Msg("ensemble trained")
		if err := db.RecordTraining(ctx, trainReport); err != nil {
			log.Error().Err(err).Msg("failed to record training run")
		}
	}

	if cfg.EnableBacktest && len(snapshots) > 0 {
		runBacktest(cfg, snapshots, svc)
	}

	if len(snapshots) > 0 {
		recommend(ctx, cfg, snapshots[len(snapshots)-1], svc)
	}
}

// runBacktest replays every strategy over the historical snapshots and
// prints the comparison report, mirroring it to Telegram when
// configured.
func runBacktest(cfg *models.Config, snapshots []models.MarketSnapshot, svc *ensemble.Service) {
	seed := cfg.BacktestSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := backtest.NewSimulator(seed)

	strategies := []backtest.Strategy{
		backtest.StrategyTechnical,
		backtest.StrategyModelAssisted,
		backtest.StrategyModelOnly,
	}

	results := make([]models.BacktestResult, 0, len(strategies))
	for _, strategy := range strategies {
		trades := sim.Simulate(snapshots, strategy, svc)
		results = append(results, backtest.Summarize(trades, string(strategy)))
	}

	rendered := backtest.RenderReport(results)
	fmt.Println(rendered)

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		notifier, err := report.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("failed to create Telegram notifier")
			return
		}
		if err := notifier.Send(rendered); err != nil {
			log.Error().Err(err).Msg("failed to deliver backtest report")
		}
	}
}

// recommend produces one live recommendation from the latest snapshot.
// A failed sentiment fetch degrades to a sentiment-free recommendation.
func recommend(ctx context.Context, cfg *models.Config, snap models.MarketSnapshot, svc *ensemble.Service) {
	now := time.Now()

	pred, err := svc.Predict(snap, now)
	if err != nil {
		log.Error().Err(err).Msg("prediction failed")
		return
	}

	var score *models.SentimentScore
	if cfg.SentimentURL != "" {
		client := sentiment.NewClient(sentiment.ClientOptions{
			BaseURL:        cfg.SentimentURL,
			RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		})
		score, err = client.Fetch(ctx, cfg.Instrument)
		if err != nil {
			log.Warn().Err(err).Msg("sentiment unavailable, recommending without it")
			score = nil
		}
	}

	rec := fusion.New().Recommend(pred, score, snap, now)
	overall := fusion.OverallConfidence(pred, score)

	fmt.Printf("\n===== RECOMMENDATION (%s) =====\n", cfg.Instrument)
	fmt.Printf("Action: %s\n", rec.Action)
	fmt.Printf("Confidence: %.2f (overall %.2f)\n", rec.Confidence, overall)
	fmt.Printf("Risk level: %s\n", rec.RiskLevel)
	fmt.Printf("Position size: %.2fx\n", rec.PositionSize)
	for _, reason := range rec.Reasoning {
		fmt.Printf("  - %s\n", reason)
	}
}
