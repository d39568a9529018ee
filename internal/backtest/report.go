package backtest

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Compare renders a side-by-side strategy table in input order. The
// ordering is stable: results appear exactly as given.
func Compare(results []models.BacktestResult) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "Strategy\tTrades\tWin Rate\tNet Profit\tMax Drawdown\tSharpe\tProfit Factor\tAvg Duration")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%.2f%%\t%.2f%%\t%.2f\t%s\t%.1f min\n",
			r.StrategyName,
			r.TotalTrades,
			r.WinRate,
			r.NetProfit,
			r.MaxDrawdown,
			r.SharpeRatio,
			formatProfitFactor(r.ProfitFactor),
			r.AvgTradeDuration,
		)
	}
	w.Flush()
	return sb.String()
}

// RenderReport produces the full human-readable backtest report: the
// comparison table followed by a detail block per strategy. Suitable
// for console output or writing to a file.
func RenderReport(results []models.BacktestResult) string {
	var sb strings.Builder

	sb.WriteString("===== STRATEGY BACKTEST REPORT =====\n\n")
	sb.WriteString(Compare(results))

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("\n%s STRATEGY DETAILS\n", strings.ToUpper(r.StrategyName)))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		sb.WriteString(fmt.Sprintf("Total trades: %d\n", r.TotalTrades))
		sb.WriteString(fmt.Sprintf("Winning trades: %d (%.1f%%)\n", r.WinningTrades, r.WinRate))
		sb.WriteString(fmt.Sprintf("Losing trades: %d\n", r.LosingTrades))
		sb.WriteString(fmt.Sprintf("Best trade: %+.2f%%\n", r.BestTrade))
		sb.WriteString(fmt.Sprintf("Worst trade: %.2f%%\n", r.WorstTrade))
		sb.WriteString(fmt.Sprintf("Net profit: %.2f%%\n", r.NetProfit))
		sb.WriteString(fmt.Sprintf("Profit factor: %s\n", formatProfitFactor(r.ProfitFactor)))
		sb.WriteString(fmt.Sprintf("Max drawdown: %.2f%%\n", r.MaxDrawdown))
		sb.WriteString(fmt.Sprintf("Sharpe ratio: %.2f\n", r.SharpeRatio))
		sb.WriteString(fmt.Sprintf("Avg trade duration: %.1f minutes\n", r.AvgTradeDuration))
	}

	return sb.String()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
