package models

import (
	"time"
)

// Trend labels reported by the upstream market-data collector.
const (
	TrendBullish  = "BULLISH"
	TrendBearish  = "BEARISH"
	TrendSideways = "SIDEWAYS"
)

// Volatility regime labels.
const (
	VolatilityLow    = "LOW"
	VolatilityMedium = "MEDIUM"
	VolatilityHigh   = "HIGH"
)

// Price direction labels produced by the prediction ensemble.
const (
	DirectionUp       = "UP"
	DirectionDown     = "DOWN"
	DirectionSideways = "SIDEWAYS"
)

// Trade outcome tags.
const (
	OutcomeTargetHit   = "TARGET_HIT"
	OutcomeStopLossHit = "STOP_LOSS_HIT"
	OutcomeManualExit  = "MANUAL_EXIT"
)

// Recommendation actions and risk levels.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"

	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// BollingerBands is the flattened Bollinger channel for one snapshot.
type BollingerBands struct {
	Upper   float64 `json:"upper"`
	Middle  float64 `json:"middle"`
	Lower   float64 `json:"lower"`
	Squeeze bool    `json:"squeeze"`
}

// Indicators holds the technical indicator values attached to a snapshot.
// Missing optional fields are zero values; the feature pipeline treats
// zero as "no signal", never as an error.
type Indicators struct {
	EMA        float64         `json:"ema"`
	RSI        float64         `json:"rsi"`
	Momentum   float64         `json:"momentum"`
	Volatility float64         `json:"volatility"`
	Bollinger  *BollingerBands `json:"bollingerBands,omitempty"`
}

// MarketConditions carries the coarse regime labels for a snapshot.
type MarketConditions struct {
	Trend            string `json:"trend"`
	VolatilityRegime string `json:"volatilityRegime"`
	TimeOfDay        string `json:"timeOfDay"`
}

// MarketSnapshot is one recorded market observation. Immutable once
// recorded; the core reads it, never mutates it.
type MarketSnapshot struct {
	Timestamp  time.Time        `json:"timestamp"`
	Instrument string           `json:"instrument"`
	Price      float64          `json:"price"`
	Indicators Indicators       `json:"indicators"`
	Conditions MarketConditions `json:"marketConditions"`
}

// TradeOutcome is one realized trade, used for training-target
// construction and backtest data preparation.
type TradeOutcome struct {
	Instrument        string        `json:"instrument"`
	EntryTime         time.Time     `json:"entryTime"`
	ExitTime          time.Time     `json:"exitTime"`
	ProfitLossPercent float64       `json:"profitLossPercent"`
	HoldingDuration   time.Duration `json:"holdingDuration"`
	Outcome           string        `json:"outcome"`
}

// FeatureVector is an ordered numeric row plus the column names that
// produced it. The column order recorded at fit time must be replayed
// identically at inference; a requested-but-missing column is 0.
type FeatureVector struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
}

// Prediction is the ensemble output. Any subset of the three model
// outputs may be absent: an empty Direction means the direction model
// was never trained, and the nil pointers mean the same for the other
// two models.
type Prediction struct {
	Direction             string   `json:"direction,omitempty"`
	DirectionConfidence   float64  `json:"direction_confidence,omitempty"`
	SuccessProbability    *float64 `json:"success_probability,omitempty"`
	ExpectedProfitPercent *float64 `json:"expected_profit_percent,omitempty"`
}

// SentimentScore is produced by the external sentiment collaborator.
// The core treats it as optional read-only input.
type SentimentScore struct {
	CompoundScore float64 `json:"compound_score"`
	Confidence    float64 `json:"confidence"`
	Label         string  `json:"sentiment_label"`
}

// TradingRecommendation is the fused actionable decision. Reasoning is
// an append-only audit trail and is never reordered.
type TradingRecommendation struct {
	Action       string   `json:"action"`
	Confidence   float64  `json:"confidence"`
	Reasoning    []string `json:"reasoning"`
	RiskLevel    string   `json:"risk_level"`
	PositionSize float64  `json:"position_size"`
}

// SimulatedTrade is one trade produced by the backtest simulator.
type SimulatedTrade struct {
	Timestamp         time.Time `json:"timestamp"`
	Strategy          string    `json:"strategy"`
	Direction         string    `json:"direction"`
	EntryPrice        float64   `json:"entry_price"`
	TargetPrice       float64   `json:"target_price"`
	StopLossPrice     float64   `json:"stop_loss_price"`
	ExitPrice         float64   `json:"exit_price"`
	Outcome           string    `json:"outcome"`
	ProfitLoss        float64   `json:"profit_loss"`
	ProfitLossPercent float64   `json:"profit_loss_percent"`
	Confidence        float64   `json:"confidence"`
	DurationMinutes   int       `json:"duration_minutes"`
}

// BacktestResult summarizes one strategy's simulated trades.
// ProfitFactor is +Inf when the strategy took wins but no losses; the
// textual report renders that case explicitly.
type BacktestResult struct {
	StrategyName     string  `json:"strategy_name"`
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	WinRate          float64 `json:"win_rate"`
	TotalProfit      float64 `json:"total_profit"`
	TotalLoss        float64 `json:"total_loss"`
	NetProfit        float64 `json:"net_profit"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	AvgTradeDuration float64 `json:"avg_trade_duration"`
	BestTrade        float64 `json:"best_trade"`
	WorstTrade       float64 `json:"worst_trade"`
	ProfitFactor     float64 `json:"profit_factor"`
}
