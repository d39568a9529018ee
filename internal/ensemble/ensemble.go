package ensemble

import (
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kushalmehta2868/nifty-trading-bot/internal/features"
	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// ErrScalerNotFitted means Predict was called on an ensemble whose
// scaler never saw training data. This is a configuration error, not a
// degraded-mode condition: callers must fit (or load) before predicting.
var ErrScalerNotFitted = errors.New("ensemble: feature scaler not fitted")

// ErrNoTrainingData means Fit received an empty training set.
var ErrNoTrainingData = errors.New("ensemble: no training examples")

const cvFolds = 3

// Metrics reports per-model validation scores from a Fit run.
type Metrics struct {
	DirectionAlgorithm string  `json:"direction_algorithm,omitempty"`
	DirectionCVScore   float64 `json:"direction_cv_score"`
	SuccessAccuracy    float64 `json:"success_accuracy"`
	SuccessAUC         float64 `json:"success_auc"`
	ReturnR2           float64 `json:"return_r2"`
	ReturnMAE          float64 `json:"return_mae"`
	ReturnRMSE         float64 `json:"return_rmse"`
}

// Ensemble holds the three fitted models and the shared feature scaler.
// The whole value is immutable after Fit; retraining builds a new
// Ensemble and swaps it in via Service.Replace.
type Ensemble struct {
	scaler  *StandardScaler
	columns []string

	direction        regressor
	directionClasses []string // encoded label order

	success *logisticModel
	ret     regressor

	logger zerolog.Logger
}

// Fit trains the three models on the given feature vectors. Any model
// whose target labels are unusable is simply left untrained; Predict
// then omits the corresponding field.
func Fit(vectors []models.FeatureVector, labels features.Labels) (*Ensemble, Metrics, error) {
	var metrics Metrics
	if len(vectors) == 0 {
		return nil, metrics, ErrNoTrainingData
	}

	e := &Ensemble{
		scaler:  &StandardScaler{},
		columns: vectors[0].Columns,
		logger:  log.With().Str("component", "ensemble").Logger(),
	}

	matrix := make([][]float64, len(vectors))
	for i, fv := range vectors {
		matrix[i] = fv.Values
	}
	e.scaler.Fit(matrix)
	scaled := e.scaler.TransformMatrix(matrix)

	e.fitDirection(scaled, labels.Direction, &metrics)
	e.fitSuccess(scaled, labels.Success, &metrics)
	e.fitReturn(scaled, labels.Profit, &metrics)

	e.logger.Info().
		Int("samples", len(vectors)).
		Int("features", len(e.columns)).
		Str("direction_model", metrics.DirectionAlgorithm).
		Float64("direction_cv_score", metrics.DirectionCVScore).
		Float64("success_auc", metrics.SuccessAUC).
		Float64("return_r2", metrics.ReturnR2).
		Msg("ensemble trained")

	return e, metrics, nil
}

// fitDirection encodes the categorical label and selects between two
// candidate estimator families under a temporally ordered 3-fold split:
// each fold validates on data strictly later than everything it trained
// on. The family with the best mean validation score is refit on the
// full set and kept.
func (e *Ensemble) fitDirection(X [][]float64, labels []string, metrics *Metrics) {
	if len(labels) != len(X) || len(labels) == 0 {
		return
	}

	classes := uniqueSorted(labels)
	encoded := make([]float64, len(labels))
	for i, label := range labels {
		encoded[i] = float64(indexOf(classes, label))
	}

	candidates := []func() regressor{
		func() regressor { return newRidgeRegressor() },
		func() regressor { return newKNNRegressor() },
	}

	folds := timeSeriesFolds(len(X), cvFolds)

	bestScore := math.Inf(-1)
	var bestName string
	var bestFactory func() regressor

	for _, factory := range candidates {
		if len(folds) == 0 {
			break
		}
		score := 0.0
		for _, fold := range folds {
			model := factory()
			model.Fit(X[:fold.trainEnd], encoded[:fold.trainEnd])
			score += rSquared(model, X[fold.trainEnd:fold.valEnd], encoded[fold.trainEnd:fold.valEnd])
		}
		score /= float64(len(folds))

		name := factory().Name()
		e.logger.Debug().Str("candidate", name).Float64("cv_score", score).Msg("direction candidate scored")
		if score > bestScore {
			bestScore = score
			bestName = name
			bestFactory = factory
		}
	}

	if bestFactory == nil {
		// Too few samples for a time-ordered split: fit the linear
		// family on everything and skip selection.
		bestFactory = candidates[0]
		bestName = bestFactory().Name()
		bestScore = 0
	}

	model := bestFactory()
	model.Fit(X, encoded)

	e.direction = model
	e.directionClasses = classes
	metrics.DirectionAlgorithm = bestName
	metrics.DirectionCVScore = bestScore
}

// fitSuccess trains the class-weighted binary classifier and evaluates
// it on a temporal holdout (last 20%).
func (e *Ensemble) fitSuccess(X [][]float64, labels []int, metrics *Metrics) {
	if len(labels) != len(X) || len(labels) == 0 {
		return
	}

	split := holdoutSplit(len(X))
	model := newLogisticModel()
	model.Fit(X[:split], labels[:split])

	if split < len(X) {
		probs := make([]float64, 0, len(X)-split)
		correct := 0
		for i := split; i < len(X); i++ {
			p := model.PredictProba(X[i])
			probs = append(probs, p)
			if (p >= 0.5) == (labels[i] == 1) {
				correct++
			}
		}
		metrics.SuccessAccuracy = float64(correct) / float64(len(X)-split)
		metrics.SuccessAUC = rocAUC(probs, labels[split:])
	}

	// Refit on the full set for the deployed model.
	model = newLogisticModel()
	model.Fit(X, labels)
	e.success = model
}

// fitReturn trains the continuous profit/loss regressor with a temporal
// holdout evaluated by R², MAE and RMSE.
func (e *Ensemble) fitReturn(X [][]float64, targets []float64, metrics *Metrics) {
	if len(targets) != len(X) || len(targets) == 0 {
		return
	}

	split := holdoutSplit(len(X))
	model := newRidgeRegressor()
	model.Fit(X[:split], targets[:split])

	if split < len(X) {
		var absErr, sqErr float64
		n := float64(len(X) - split)
		for i := split; i < len(X); i++ {
			diff := model.Predict(X[i]) - targets[i]
			absErr += math.Abs(diff)
			sqErr += diff * diff
		}
		metrics.ReturnMAE = absErr / n
		metrics.ReturnRMSE = math.Sqrt(sqErr / n)
		metrics.ReturnR2 = rSquared(model, X[split:], targets[split:])
	}

	model = newRidgeRegressor()
	model.Fit(X, targets)
	e.ret = model
}

// Predict runs every trained model against the feature vector. Untrained
// models leave their Prediction field absent; an unfitted scaler is the
// one fatal case.
func (e *Ensemble) Predict(fv models.FeatureVector) (models.Prediction, error) {
	var pred models.Prediction
	if e == nil || e.scaler == nil || !e.scaler.Fitted() {
		return pred, ErrScalerNotFitted
	}

	scaled := e.scaler.Transform(fv.Values)

	if e.direction != nil && len(e.directionClasses) > 0 {
		raw := e.direction.Predict(scaled)
		idx := int(math.Round(raw))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(e.directionClasses) {
			idx = len(e.directionClasses) - 1
		}
		pred.Direction = e.directionClasses[idx]
		pred.DirectionConfidence = clamp(1-math.Abs(raw-float64(idx)), 0, 1)
	}

	if e.success != nil {
		p := e.success.PredictProba(scaled)
		pred.SuccessProbability = &p
	}

	if e.ret != nil {
		v := e.ret.Predict(scaled)
		pred.ExpectedProfitPercent = &v
	}

	return pred, nil
}

// Columns returns the feature-name ordering recorded at fit time.
func (e *Ensemble) Columns() []string {
	return e.columns
}

// HasDirection reports whether the direction model was trained.
func (e *Ensemble) HasDirection() bool { return e != nil && e.direction != nil }

// HasSuccess reports whether the success-probability model was trained.
func (e *Ensemble) HasSuccess() bool { return e != nil && e.success != nil }

// HasReturn reports whether the expected-return model was trained.
func (e *Ensemble) HasReturn() bool { return e != nil && e.ret != nil }

type fold struct {
	trainEnd int
	valEnd   int
}

// timeSeriesFolds produces expanding-window folds: fold i trains on
// [0, trainEnd) and validates on [trainEnd, valEnd), so validation data
// is always strictly later than training data. Returns nil when there
// are too few samples for the requested fold count.
func timeSeriesFolds(n, folds int) []fold {
	testSize := n / (folds + 1)
	if testSize < 1 || n-folds*testSize < 1 {
		return nil
	}
	out := make([]fold, 0, folds)
	for i := 0; i < folds; i++ {
		trainEnd := n - (folds-i)*testSize
		out = append(out, fold{trainEnd: trainEnd, valEnd: trainEnd + testSize})
	}
	return out
}

func holdoutSplit(n int) int {
	split := n - n/5
	if split < 1 {
		split = n
	}
	return split
}

// rSquared is the coefficient of determination of model predictions on
// the given set. A constant target yields 0 rather than a division by
// zero.
func rSquared(model regressor, X [][]float64, y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	meanY := 0.0
	for _, v := range y {
		meanY += v
	}
	meanY /= float64(len(y))

	var ssRes, ssTot float64
	for i, row := range X {
		diff := y[i] - model.Predict(row)
		ssRes += diff * diff
		tot := y[i] - meanY
		ssTot += tot * tot
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// rocAUC computes area under the ROC curve by the Mann-Whitney rank
// statistic. Tied probabilities share their average rank (midrank), so
// the result does not depend on sort order within a tie group.
func rocAUC(probs []float64, labels []int) float64 {
	var posRankSum float64
	positives, negatives := 0, 0

	type scored struct {
		p     float64
		label int
	}
	items := make([]scored, len(probs))
	for i := range probs {
		items[i] = scored{p: probs[i], label: labels[i]}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].p < items[j].p })

	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].p == items[i].p {
			j++
		}
		midrank := float64(i+j+1) / 2 // average of ranks i+1 .. j
		for k := i; k < j; k++ {
			if items[k].label == 1 {
				posRankSum += midrank
				positives++
			} else {
				negatives++
			}
		}
		i = j
	}
	if positives == 0 || negatives == 0 {
		return 0
	}
	return (posRankSum - float64(positives)*float64(positives+1)/2) / (float64(positives) * float64(negatives))
}

func uniqueSorted(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	var out []string
	for _, label := range labels {
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
