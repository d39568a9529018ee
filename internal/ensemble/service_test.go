package ensemble

import (
	"testing"
	"time"

	"github.com/kushalmehta2868/nifty-trading-bot/internal/features"
	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

func TestServiceHeuristicFallback(t *testing.T) {
	svc := NewService(features.NewBuilder(features.DefaultConfig()))

	if svc.Ready() {
		t.Fatal("fresh service should not report ready")
	}

	snap := models.MarketSnapshot{
		Instrument: "NIFTY",
		Price:      101,
		Indicators: models.Indicators{EMA: 100, RSI: 55, Momentum: 0.02},
	}
	pred, err := svc.Predict(snap, time.Now())
	if err != nil {
		t.Fatalf("heuristic fallback should not fail: %v", err)
	}
	if pred.Direction == "" {
		t.Error("heuristic prediction should carry a direction")
	}
	if pred.SuccessProbability == nil || pred.ExpectedProfitPercent == nil {
		t.Error("heuristic prediction should carry success and profit estimates")
	}
}

func TestServiceTrainAndPredict(t *testing.T) {
	svc := NewService(features.NewBuilder(features.DefaultConfig()))
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	var snapshots []models.MarketSnapshot
	var outcomes []models.TradeOutcome
	for i := 0; i < 30; i++ {
		ts := base.Add(time.Duration(i) * 5 * time.Minute)
		price := 100 + float64(i)
		snapshots = append(snapshots, models.MarketSnapshot{
			Timestamp:  ts,
			Instrument: "NIFTY",
			Price:      price,
			Indicators: models.Indicators{EMA: price - 1, RSI: 50 + float64(i%20), Momentum: 0.01},
		})
		profit := 2.5
		if i%2 == 1 {
			profit = -2.5
		}
		outcomes = append(outcomes, models.TradeOutcome{
			Instrument:        "NIFTY",
			EntryTime:         ts,
			ProfitLossPercent: profit,
		})
	}

	report, err := svc.Train(snapshots, outcomes)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if report.Samples != 30 {
		t.Errorf("expected 30 training samples, got %d", report.Samples)
	}
	if !svc.Ready() {
		t.Fatal("service should report ready after training")
	}

	stats := svc.Stats()
	if !stats.Loaded {
		t.Error("stats should report loaded")
	}
	if stats.FeatureCount != len(stats.Features) {
		t.Errorf("feature count %d disagrees with feature list length %d",
			stats.FeatureCount, len(stats.Features))
	}
	if stats.LastTrained.IsZero() {
		t.Error("stats should record the training time")
	}

	pred, err := svc.Predict(snapshots[len(snapshots)-1], time.Now())
	if err != nil {
		t.Fatalf("Predict after training failed: %v", err)
	}
	if pred.Direction == "" {
		t.Error("trained prediction should carry a direction")
	}
}

func TestServiceTrainNoData(t *testing.T) {
	svc := NewService(features.NewBuilder(features.DefaultConfig()))

	if _, err := svc.Train(nil, nil); err == nil {
		t.Fatal("training with no data should fail")
	}
	if svc.Ready() {
		t.Error("failed training must not deploy state")
	}
}

func TestHeuristicPredict(t *testing.T) {
	tests := []struct {
		name          string
		snap          models.MarketSnapshot
		wantDirection string
		wantConf      float64
	}{
		{
			name: "bullish alignment",
			snap: models.MarketSnapshot{
				Price:      101,
				Indicators: models.Indicators{EMA: 100, RSI: 55, Momentum: 0.02},
			},
			wantDirection: models.DirectionUp,
			wantConf:      0.8,
		},
		{
			name: "bearish alignment",
			snap: models.MarketSnapshot{
				Price:      99,
				Indicators: models.Indicators{EMA: 100, RSI: 75, Momentum: -0.02},
			},
			wantDirection: models.DirectionDown,
			wantConf:      0.85,
		},
		{
			name: "no signal",
			snap: models.MarketSnapshot{
				Price:      100,
				Indicators: models.Indicators{EMA: 100, RSI: 50, Momentum: 0},
			},
			wantDirection: models.DirectionSideways,
			wantConf:      0.4,
		},
		{
			name: "high volatility cuts confidence",
			snap: models.MarketSnapshot{
				Price:      101,
				Indicators: models.Indicators{EMA: 100, RSI: 55, Momentum: 0.02, Volatility: 0.3},
			},
			wantDirection: models.DirectionUp,
			wantConf:      0.64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := HeuristicPredict(tt.snap)
			if pred.Direction != tt.wantDirection {
				t.Errorf("direction = %s, want %s", pred.Direction, tt.wantDirection)
			}
			if diff := pred.DirectionConfidence - tt.wantConf; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("confidence = %v, want %v", pred.DirectionConfidence, tt.wantConf)
			}
			if pred.SuccessProbability == nil || pred.ExpectedProfitPercent == nil {
				t.Fatal("heuristic must always estimate success and profit")
			}
		})
	}
}
