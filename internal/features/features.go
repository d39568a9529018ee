package features

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Config controls windowing and session boundaries for feature
// construction. The same configuration must be used at fit and
// inference time.
type Config struct {
	ChangeWindows []int // rolling pct-change and moving-average windows
	VolWindows    []int // rolling price stddev windows

	OpeningStartHour int // opening window is [start, end)
	OpeningEndHour   int
	ClosingStartHour int
	ClosingEndHour   int

	// MaxMatchGap bounds the snapshot-to-outcome matching during
	// training-target construction. Zero disables the bound.
	MaxMatchGap time.Duration
}

// DefaultConfig returns the windows the models were designed around.
func DefaultConfig() Config {
	return Config{
		ChangeWindows:    []int{5, 10, 20},
		VolWindows:       []int{10, 20},
		OpeningStartHour: 9,
		OpeningEndHour:   11,
		ClosingStartHour: 14,
		ClosingEndHour:   16,
	}
}

// Labels are the training targets aligned with the feature vectors
// returned by BuildTraining.
type Labels struct {
	Direction []string  // UP / DOWN / SIDEWAYS
	Success   []int     // 1 when the trade closed in profit
	Profit    []float64 // raw profit/loss percent
}

// Builder turns snapshot and outcome records into feature vectors.
// Pure transformation: deterministic given identical inputs and config.
type Builder struct {
	cfg    Config
	logger zerolog.Logger
}

func NewBuilder(cfg Config) *Builder {
	return &Builder{
		cfg:    cfg,
		logger: log.With().Str("component", "features").Logger(),
	}
}

// Columns returns the canonical column order for this configuration.
// The ensemble records this order at fit time and replays it at
// inference.
func (b *Builder) Columns() []string {
	cols := []string{
		"price", "hour", "minute", "day_of_week",
		"is_opening_hour", "is_closing_hour",
		"ema", "rsi", "momentum", "volatility",
		"bb_upper", "bb_middle", "bb_lower", "bb_squeeze", "bb_position",
		"rsi_oversold", "rsi_overbought", "rsi_normalized",
	}
	for _, w := range b.cfg.ChangeWindows {
		cols = append(cols, rollingName("price_change", w), rollingName("price_ma", w))
	}
	for _, w := range b.cfg.VolWindows {
		cols = append(cols, rollingName("price_volatility", w))
	}
	cols = append(cols,
		"trend_bullish", "trend_bearish",
		"vol_high", "vol_medium",
	)
	return cols
}

// BuildTraining matches each trade outcome to its nearest same-instrument
// snapshot and returns the feature row for that snapshot together with
// the three training targets. Snapshots are time-ordered per instrument
// before any windowed aggregation.
func (b *Builder) BuildTraining(snapshots []models.MarketSnapshot, outcomes []models.TradeOutcome) ([]models.FeatureVector, Labels) {
	ordered := orderByInstrumentTime(snapshots)
	rows := b.buildRows(ordered)
	columns := b.Columns()

	var (
		vectors []models.FeatureVector
		labels  Labels
		skipped int
	)

	for _, outcome := range outcomes {
		idx, dist, ok := nearestSnapshot(ordered, outcome)
		if !ok {
			skipped++
			continue
		}
		if b.cfg.MaxMatchGap > 0 && dist > b.cfg.MaxMatchGap {
			skipped++
			continue
		}

		vectors = append(vectors, models.FeatureVector{
			Columns: columns,
			Values:  project(rows[idx], columns),
		})
		labels.Direction = append(labels.Direction, directionLabel(outcome.ProfitLossPercent))
		labels.Success = append(labels.Success, successLabel(outcome.ProfitLossPercent))
		labels.Profit = append(labels.Profit, outcome.ProfitLossPercent)
	}

	b.logger.Debug().
		Int("snapshots", len(snapshots)).
		Int("outcomes", len(outcomes)).
		Int("examples", len(vectors)).
		Int("skipped", skipped).
		Msg("built training set")

	return vectors, labels
}

// BuildInference computes the feature row for a single live snapshot and
// projects it onto the fitted column order. Rolling-window columns have
// no history at inference time and default to 0, as does any other
// requested-but-missing column. Column reordering never happens here.
func (b *Builder) BuildInference(snap models.MarketSnapshot, columns []string, now time.Time) models.FeatureVector {
	if len(columns) == 0 {
		columns = b.Columns()
	}
	row := b.snapshotFeatures(snap, now)
	return models.FeatureVector{
		Columns: columns,
		Values:  project(row, columns),
	}
}

// buildRows computes one feature map per snapshot, maintaining rolling
// per-instrument price history. The input must already be ordered by
// instrument and timestamp; windows only see prior same-instrument
// observations plus the current one.
func (b *Builder) buildRows(ordered []models.MarketSnapshot) []map[string]float64 {
	rows := make([]map[string]float64, len(ordered))
	history := make(map[string][]float64)

	for i, snap := range ordered {
		row := b.snapshotFeatures(snap, snap.Timestamp)

		prices := append(history[snap.Instrument], snap.Price)
		history[snap.Instrument] = prices

		for _, w := range b.cfg.ChangeWindows {
			// pct change over w steps: needs w+1 points including current
			if len(prices) > w {
				prev := prices[len(prices)-1-w]
				if prev != 0 {
					row[rollingName("price_change", w)] = (snap.Price - prev) / prev
				}
			}
			if len(prices) >= w {
				row[rollingName("price_ma", w)] = mean(prices[len(prices)-w:])
			}
		}
		for _, w := range b.cfg.VolWindows {
			if len(prices) >= w {
				window := prices[len(prices)-w:]
				row[rollingName("price_volatility", w)] = sampleStdDev(window, mean(window))
			}
		}

		rows[i] = row
	}
	return rows
}

// snapshotFeatures computes the windowless features for one snapshot.
// The reference time is the snapshot timestamp during training and the
// evaluation time at inference.
func (b *Builder) snapshotFeatures(snap models.MarketSnapshot, ref time.Time) map[string]float64 {
	row := map[string]float64{
		"price":       snap.Price,
		"hour":        float64(ref.Hour()),
		"minute":      float64(ref.Minute()),
		"day_of_week": float64(int(ref.Weekday())),
	}
	hour := ref.Hour()
	row["is_opening_hour"] = boolFeature(hour >= b.cfg.OpeningStartHour && hour < b.cfg.OpeningEndHour)
	row["is_closing_hour"] = boolFeature(hour >= b.cfg.ClosingStartHour && hour < b.cfg.ClosingEndHour)

	ind := snap.Indicators
	row["ema"] = ind.EMA
	row["rsi"] = ind.RSI
	row["momentum"] = ind.Momentum
	row["volatility"] = ind.Volatility

	row["rsi_oversold"] = boolFeature(ind.RSI < 30)
	row["rsi_overbought"] = boolFeature(ind.RSI > 70)
	row["rsi_normalized"] = (ind.RSI - 50) / 50

	if bb := ind.Bollinger; bb != nil {
		row["bb_upper"] = bb.Upper
		row["bb_middle"] = bb.Middle
		row["bb_lower"] = bb.Lower
		row["bb_squeeze"] = boolFeature(bb.Squeeze)
		if bb.Upper != bb.Lower {
			row["bb_position"] = (snap.Price - bb.Lower) / (bb.Upper - bb.Lower)
		}
	}

	switch snap.Conditions.Trend {
	case models.TrendBullish:
		row["trend_bullish"] = 1
	case models.TrendBearish:
		row["trend_bearish"] = 1
	}
	switch snap.Conditions.VolatilityRegime {
	case models.VolatilityHigh:
		row["vol_high"] = 1
	case models.VolatilityMedium:
		row["vol_medium"] = 1
	}

	return row
}

// orderByInstrumentTime returns a copy sorted by instrument, then
// timestamp. Strict time-ordering before windowing is a correctness
// invariant for the rolling features.
func orderByInstrumentTime(snapshots []models.MarketSnapshot) []models.MarketSnapshot {
	ordered := make([]models.MarketSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Instrument != ordered[j].Instrument {
			return ordered[i].Instrument < ordered[j].Instrument
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered
}

// nearestSnapshot finds the same-instrument snapshot with minimum
// absolute time distance to the outcome's entry. Ties go to the first
// match in timestamp order.
func nearestSnapshot(ordered []models.MarketSnapshot, outcome models.TradeOutcome) (int, time.Duration, bool) {
	best := -1
	var bestDist time.Duration
	for i, snap := range ordered {
		if snap.Instrument != outcome.Instrument {
			continue
		}
		dist := snap.Timestamp.Sub(outcome.EntryTime)
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return best, bestDist, true
}

// project maps a feature row onto an ordered column list. Missing
// columns become 0: no-signal is not an error.
func project(row map[string]float64, columns []string) []float64 {
	values := make([]float64, len(columns))
	for i, col := range columns {
		values[i] = row[col]
	}
	return values
}

func directionLabel(profitPct float64) string {
	switch {
	case profitPct > 2:
		return models.DirectionUp
	case profitPct < -2:
		return models.DirectionDown
	default:
		return models.DirectionSideways
	}
}

func successLabel(profitPct float64) int {
	if profitPct > 0 {
		return 1
	}
	return 0
}

func rollingName(prefix string, window int) string {
	return prefix + "_" + strconv.Itoa(window)
}

func boolFeature(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}
