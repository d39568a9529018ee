package backtest

import (
	"math"
	"strings"
	"testing"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

func tradesFromReturns(returns ...float64) []models.SimulatedTrade {
	out := make([]models.SimulatedTrade, len(returns))
	for i, r := range returns {
		out[i] = models.SimulatedTrade{ProfitLossPercent: r, DurationMinutes: 30}
	}
	return out
}

func TestSummarizeEmpty(t *testing.T) {
	result := Summarize(nil, "TECHNICAL_ONLY")

	if result.StrategyName != "TECHNICAL_ONLY" {
		t.Errorf("strategy name = %s", result.StrategyName)
	}
	if result.TotalTrades != 0 || result.WinRate != 0 || result.SharpeRatio != 0 {
		t.Errorf("empty log should produce zeros: %+v", result)
	}
	if result.ProfitFactor != 0 {
		t.Errorf("empty log profit factor = %v, want 0", result.ProfitFactor)
	}
}

func TestSummarizeKnownSeries(t *testing.T) {
	result := Summarize(tradesFromReturns(5, -3, -4, 6), "MODEL_ONLY")

	if result.TotalTrades != 4 {
		t.Errorf("total trades = %d, want 4", result.TotalTrades)
	}
	if result.WinningTrades != 2 || result.LosingTrades != 2 {
		t.Errorf("wins/losses = %d/%d, want 2/2", result.WinningTrades, result.LosingTrades)
	}
	if result.WinRate != 50 {
		t.Errorf("win rate = %v, want 50", result.WinRate)
	}
	if result.TotalProfit != 11 || result.TotalLoss != 7 {
		t.Errorf("profit/loss = %v/%v, want 11/7", result.TotalProfit, result.TotalLoss)
	}
	if result.NetProfit != 4 {
		t.Errorf("net profit = %v, want 4", result.NetProfit)
	}
	if result.BestTrade != 6 || result.WorstTrade != -4 {
		t.Errorf("best/worst = %v/%v, want 6/-4", result.BestTrade, result.WorstTrade)
	}
	// Cumulative series 5, 2, -2, 4 never recovers the peak at 5 until
	// the end; the deepest gap below it is -7.
	if result.MaxDrawdown != -7 {
		t.Errorf("max drawdown = %v, want -7", result.MaxDrawdown)
	}
	if math.Abs(result.ProfitFactor-11.0/7.0) > 1e-9 {
		t.Errorf("profit factor = %v, want %v", result.ProfitFactor, 11.0/7.0)
	}
	if result.AvgTradeDuration != 30 {
		t.Errorf("avg duration = %v, want 30", result.AvgTradeDuration)
	}
}

func TestSummarizeNoLosses(t *testing.T) {
	result := Summarize(tradesFromReturns(2, 3), "TECHNICAL_ONLY")

	if result.WinRate != 100 {
		t.Errorf("win rate = %v, want 100", result.WinRate)
	}
	if !math.IsInf(result.ProfitFactor, 1) {
		t.Errorf("no-loss profit factor = %v, want +Inf", result.ProfitFactor)
	}
	if result.MaxDrawdown != 0 {
		t.Errorf("monotonic gains drawdown = %v, want 0", result.MaxDrawdown)
	}
}

func TestSummarizeZeroReturnIsLoss(t *testing.T) {
	result := Summarize(tradesFromReturns(0), "TECHNICAL_ONLY")

	if result.WinningTrades != 0 || result.LosingTrades != 1 {
		t.Errorf("zero return should count as losing, got %d/%d",
			result.WinningTrades, result.LosingTrades)
	}
}

func TestSharpeRatio(t *testing.T) {
	if got := sharpeRatio([]float64{1}); got != 0 {
		t.Errorf("single trade sharpe = %v, want 0", got)
	}
	if got := sharpeRatio([]float64{2, 2, 2}); got != 0 {
		t.Errorf("zero-variance sharpe = %v, want 0", got)
	}
	if got := sharpeRatio([]float64{3, 1, 4, 2}); got <= 0 {
		t.Errorf("profitable series sharpe = %v, want > 0", got)
	}
	if got := sharpeRatio([]float64{-3, -1, -4, -2}); got >= 0 {
		t.Errorf("losing series sharpe = %v, want < 0", got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"all gains", []float64{1, 2, 3}, 0},
		{"single dip", []float64{5, -3, -4, 6}, -7},
		// Cumulative series -1, -3 peaks at its first point, so the
		// deepest gap below the running maximum is -2, not the full -3.
		{"all losses", []float64{-1, -2}, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maxDrawdown(tt.returns); got != tt.want {
				t.Errorf("maxDrawdown(%v) = %v, want %v", tt.returns, got, tt.want)
			}
		})
	}
}

func TestCompareOrderAndContent(t *testing.T) {
	results := []models.BacktestResult{
		{StrategyName: "TECHNICAL_ONLY", TotalTrades: 10, WinRate: 40},
		{StrategyName: "MODEL_ASSISTED", TotalTrades: 5, WinRate: 60},
		{StrategyName: "MODEL_ONLY", TotalTrades: 7, WinRate: 55, ProfitFactor: math.Inf(1)},
	}

	table := Compare(results)

	first := strings.Index(table, "TECHNICAL_ONLY")
	second := strings.Index(table, "MODEL_ASSISTED")
	third := strings.Index(table, "MODEL_ONLY")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing strategy rows:\n%s", table)
	}
	if !(first < second && second < third) {
		t.Errorf("rows must appear in input order:\n%s", table)
	}
	if !strings.Contains(table, "inf") {
		t.Errorf("infinite profit factor should render as inf:\n%s", table)
	}
}

func TestRenderReport(t *testing.T) {
	results := []models.BacktestResult{
		{StrategyName: "TECHNICAL_ONLY", TotalTrades: 3, BestTrade: 2.5, WorstTrade: -1.0},
	}

	report := RenderReport(results)

	if !strings.Contains(report, "STRATEGY BACKTEST REPORT") {
		t.Error("missing report header")
	}
	if !strings.Contains(report, "TECHNICAL_ONLY STRATEGY DETAILS") {
		t.Error("missing per-strategy detail block")
	}
	if !strings.Contains(report, "Best trade: +2.50%") {
		t.Errorf("missing best trade line:\n%s", report)
	}
}
