package ensemble

import (
	"math"
	"sort"
)

// regressor is a trainable continuous estimator. Both candidate
// families used by direction model selection implement it.
type regressor interface {
	Name() string
	Fit(X [][]float64, y []float64)
	Predict(row []float64) float64
}

// ridgeRegressor is a linear model with L2 regularization, trained by
// batch gradient descent. Inputs are expected to be standardized, which
// keeps the fixed learning rate stable.
type ridgeRegressor struct {
	Lambda    float64
	LearnRate float64
	Epochs    int

	weights []float64
	bias    float64
}

func newRidgeRegressor() *ridgeRegressor {
	return &ridgeRegressor{Lambda: 0.1, LearnRate: 0.05, Epochs: 400}
}

func (r *ridgeRegressor) Name() string { return "ridge" }

func (r *ridgeRegressor) Fit(X [][]float64, y []float64) {
	if len(X) == 0 {
		return
	}
	cols := len(X[0])
	r.weights = make([]float64, cols)
	r.bias = 0

	n := float64(len(X))
	grad := make([]float64, cols)

	for epoch := 0; epoch < r.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		biasGrad := 0.0

		for i, row := range X {
			err := r.predictRaw(row) - y[i]
			for j, v := range row {
				grad[j] += err * v
			}
			biasGrad += err
		}
		for j := range r.weights {
			r.weights[j] -= r.LearnRate * (grad[j]/n + r.Lambda*r.weights[j]/n)
		}
		r.bias -= r.LearnRate * biasGrad / n
	}
}

func (r *ridgeRegressor) predictRaw(row []float64) float64 {
	sum := r.bias
	for j, w := range r.weights {
		if j < len(row) {
			sum += w * row[j]
		}
	}
	return sum
}

func (r *ridgeRegressor) Predict(row []float64) float64 {
	return r.predictRaw(row)
}

// knnRegressor predicts the mean target of the K nearest training rows
// by Euclidean distance. The second candidate family for direction
// model selection.
type knnRegressor struct {
	K int

	rows    [][]float64
	targets []float64
}

func newKNNRegressor() *knnRegressor {
	return &knnRegressor{K: 5}
}

func (k *knnRegressor) Name() string { return "knn" }

func (k *knnRegressor) Fit(X [][]float64, y []float64) {
	k.rows = X
	k.targets = y
}

func (k *knnRegressor) Predict(row []float64) float64 {
	if len(k.rows) == 0 {
		return 0
	}
	type neighbour struct {
		dist   float64
		target float64
	}
	neighbours := make([]neighbour, len(k.rows))
	for i, train := range k.rows {
		neighbours[i] = neighbour{dist: squaredDistance(row, train), target: k.targets[i]}
	}
	sort.Slice(neighbours, func(i, j int) bool { return neighbours[i].dist < neighbours[j].dist })

	count := k.K
	if count > len(neighbours) {
		count = len(neighbours)
	}
	sum := 0.0
	for i := 0; i < count; i++ {
		sum += neighbours[i].target
	}
	return sum / float64(count)
}

func squaredDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// logisticModel is a binary classifier trained by gradient descent with
// per-class weights, so the minority outcome class is not ignored.
type logisticModel struct {
	LearnRate float64
	Epochs    int

	weights []float64
	bias    float64
}

func newLogisticModel() *logisticModel {
	return &logisticModel{LearnRate: 0.1, Epochs: 400}
}

// Fit trains with inverse-frequency class weights (the "balanced"
// correction: weight_c = n / (2 * n_c)).
func (m *logisticModel) Fit(X [][]float64, y []int) {
	if len(X) == 0 {
		return
	}
	cols := len(X[0])
	m.weights = make([]float64, cols)
	m.bias = 0

	positives := 0
	for _, label := range y {
		if label == 1 {
			positives++
		}
	}
	negatives := len(y) - positives
	n := float64(len(y))

	weightFor := func(label int) float64 {
		if label == 1 {
			if positives == 0 {
				return 1
			}
			return n / (2 * float64(positives))
		}
		if negatives == 0 {
			return 1
		}
		return n / (2 * float64(negatives))
	}

	grad := make([]float64, cols)
	for epoch := 0; epoch < m.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		biasGrad := 0.0

		for i, row := range X {
			err := (m.PredictProba(row) - float64(y[i])) * weightFor(y[i])
			for j, v := range row {
				grad[j] += err * v
			}
			biasGrad += err
		}
		for j := range m.weights {
			m.weights[j] -= m.LearnRate * grad[j] / n
		}
		m.bias -= m.LearnRate * biasGrad / n
	}
}

// PredictProba returns P(y=1 | row).
func (m *logisticModel) PredictProba(row []float64) float64 {
	sum := m.bias
	for j, w := range m.weights {
		if j < len(row) {
			sum += w * row[j]
		}
	}
	return 1 / (1 + math.Exp(-sum))
}
