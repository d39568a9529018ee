package backtest

import (
	"math"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Risk-analytics constants: annual risk-free rate spread over 252
// trading days, and the sqrt(252) annualization factor.
const (
	annualRiskFreeRate = 0.05
	tradingDaysPerYear = 252
)

// Summarize reduces a trade log to one BacktestResult. Pure and
// deterministic; trades are processed in input order. An empty log
// yields the all-zero result (profit factor 0, not infinite), which is
// distinct from the no-losses-but-wins case where the profit factor is
// +Inf.
func Summarize(trades []models.SimulatedTrade, strategyName string) models.BacktestResult {
	result := models.BacktestResult{StrategyName: strategyName}
	if len(trades) == 0 {
		return result
	}

	returns := make([]float64, len(trades))
	var totalDuration float64

	result.BestTrade = trades[0].ProfitLossPercent
	result.WorstTrade = trades[0].ProfitLossPercent

	for i, trade := range trades {
		pct := trade.ProfitLossPercent
		returns[i] = pct
		totalDuration += float64(trade.DurationMinutes)

		// Ties at exactly zero count as losing.
		if pct > 0 {
			result.WinningTrades++
			result.TotalProfit += pct
		} else {
			result.LosingTrades++
			result.TotalLoss += math.Abs(pct)
		}

		if pct > result.BestTrade {
			result.BestTrade = pct
		}
		if pct < result.WorstTrade {
			result.WorstTrade = pct
		}
	}

	result.TotalTrades = len(trades)
	result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	result.NetProfit = result.TotalProfit - result.TotalLoss
	result.AvgTradeDuration = totalDuration / float64(result.TotalTrades)

	result.MaxDrawdown = maxDrawdown(returns)
	result.SharpeRatio = sharpeRatio(returns)

	if result.TotalLoss > 0 {
		result.ProfitFactor = result.TotalProfit / result.TotalLoss
	} else {
		result.ProfitFactor = math.Inf(1)
	}

	return result
}

// maxDrawdown walks the cumulative percent-return series and returns
// the most negative gap below the running maximum (0 when returns never
// trend negative).
func maxDrawdown(returns []float64) float64 {
	var cumulative, runningMax, worst float64
	for i, r := range returns {
		cumulative += r
		if i == 0 || cumulative > runningMax {
			runningMax = cumulative
		}
		if drawdown := cumulative - runningMax; drawdown < worst {
			worst = drawdown
		}
	}
	return worst
}

// sharpeRatio is the mean daily-excess return over its standard
// deviation, annualized by sqrt(252). Fewer than two trades or zero
// variance yields 0 rather than a division by zero.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	dailyRiskFree := annualRiskFreeRate / tradingDaysPerYear
	excess := make([]float64, len(returns))
	var sum float64
	for i, r := range returns {
		excess[i] = r - dailyRiskFree
		sum += excess[i]
	}
	mean := sum / float64(len(excess))

	var variance float64
	for _, e := range excess {
		diff := e - mean
		variance += diff * diff
	}
	variance /= float64(len(excess) - 1)

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}
