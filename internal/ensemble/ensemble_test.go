package ensemble

import (
	"errors"
	"testing"

	"github.com/kushalmehta2868/nifty-trading-bot/internal/features"
	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// separableTrainingSet builds two well-separated clusters with
// alternating labels so time-ordered folds stay balanced.
func separableTrainingSet(n int) ([]models.FeatureVector, features.Labels) {
	columns := []string{"signal", "noise"}
	var vectors []models.FeatureVector
	var labels features.Labels

	for i := 0; i < n; i++ {
		jitter := float64(i%7) * 0.01
		if i%2 == 0 {
			vectors = append(vectors, models.FeatureVector{
				Columns: columns,
				Values:  []float64{1 + jitter, 0.5},
			})
			labels.Direction = append(labels.Direction, models.DirectionUp)
			labels.Success = append(labels.Success, 1)
			labels.Profit = append(labels.Profit, 3+jitter)
		} else {
			vectors = append(vectors, models.FeatureVector{
				Columns: columns,
				Values:  []float64{-1 - jitter, 0.5},
			})
			labels.Direction = append(labels.Direction, models.DirectionDown)
			labels.Success = append(labels.Success, 0)
			labels.Profit = append(labels.Profit, -3-jitter)
		}
	}
	return vectors, labels
}

func TestFitEmpty(t *testing.T) {
	_, _, err := Fit(nil, features.Labels{})
	if !errors.Is(err, ErrNoTrainingData) {
		t.Fatalf("expected ErrNoTrainingData, got %v", err)
	}
}

func TestFitAndPredict(t *testing.T) {
	vectors, labels := separableTrainingSet(40)

	e, metrics, err := Fit(vectors, labels)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if !e.HasDirection() || !e.HasSuccess() || !e.HasReturn() {
		t.Fatalf("expected all three models trained: dir=%v succ=%v ret=%v",
			e.HasDirection(), e.HasSuccess(), e.HasReturn())
	}
	if metrics.DirectionAlgorithm == "" {
		t.Error("expected a direction algorithm to be selected")
	}

	pred, err := e.Predict(models.FeatureVector{
		Columns: e.Columns(),
		Values:  []float64{1.0, 0.5},
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if pred.Direction != models.DirectionUp {
		t.Errorf("deep in the positive cluster expected UP, got %s", pred.Direction)
	}
	if pred.DirectionConfidence < 0 || pred.DirectionConfidence > 1 {
		t.Errorf("direction confidence out of range: %v", pred.DirectionConfidence)
	}
	if pred.SuccessProbability == nil {
		t.Fatal("expected success probability")
	}
	if *pred.SuccessProbability <= 0.5 {
		t.Errorf("positive-cluster success probability = %v, want > 0.5", *pred.SuccessProbability)
	}
	if pred.ExpectedProfitPercent == nil {
		t.Fatal("expected profit estimate")
	}
	if *pred.ExpectedProfitPercent <= 0 {
		t.Errorf("positive-cluster expected profit = %v, want > 0", *pred.ExpectedProfitPercent)
	}
}

func TestPredictUnfitted(t *testing.T) {
	var e *Ensemble
	_, err := e.Predict(models.FeatureVector{Values: []float64{1, 2}})
	if !errors.Is(err, ErrScalerNotFitted) {
		t.Fatalf("expected ErrScalerNotFitted, got %v", err)
	}
}

func TestTimeSeriesFolds(t *testing.T) {
	folds := timeSeriesFolds(12, 3)
	if len(folds) != 3 {
		t.Fatalf("expected 3 folds, got %d", len(folds))
	}
	want := []fold{
		{trainEnd: 3, valEnd: 6},
		{trainEnd: 6, valEnd: 9},
		{trainEnd: 9, valEnd: 12},
	}
	for i, f := range folds {
		if f != want[i] {
			t.Errorf("fold %d = %+v, want %+v", i, f, want[i])
		}
	}

	// Validation is always strictly later than training.
	for i, f := range folds {
		if f.valEnd <= f.trainEnd {
			t.Errorf("fold %d has empty validation window: %+v", i, f)
		}
	}

	if got := timeSeriesFolds(3, 3); got != nil {
		t.Errorf("too few samples should yield no folds, got %v", got)
	}
}

func TestHoldoutSplit(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{10, 8},
		{5, 4},
		{4, 4}, // too small for a holdout
		{100, 80},
	}
	for _, tt := range tests {
		if got := holdoutSplit(tt.n); got != tt.want {
			t.Errorf("holdoutSplit(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestROCAUCPerfectSeparation(t *testing.T) {
	auc := rocAUC([]float64{0.1, 0.2, 0.8, 0.9}, []int{0, 0, 1, 1})
	if auc != 1.0 {
		t.Errorf("perfectly separated AUC = %v, want 1.0", auc)
	}

	inverted := rocAUC([]float64{0.9, 0.8, 0.2, 0.1}, []int{0, 0, 1, 1})
	if inverted != 0.0 {
		t.Errorf("inverted AUC = %v, want 0.0", inverted)
	}

	if got := rocAUC([]float64{0.5, 0.6}, []int{1, 1}); got != 0 {
		t.Errorf("single-class AUC = %v, want 0", got)
	}
}

func TestROCAUCTiedScores(t *testing.T) {
	// A score the classifier cannot distinguish carries no information:
	// tied probabilities must average out to 0.5 regardless of how the
	// sort happens to order them.
	if got := rocAUC([]float64{0.5, 0.5}, []int{1, 0}); got != 0.5 {
		t.Errorf("fully tied AUC = %v, want 0.5", got)
	}
	if got := rocAUC([]float64{0.5, 0.5, 0.5, 0.5}, []int{1, 0, 1, 0}); got != 0.5 {
		t.Errorf("fully tied AUC = %v, want 0.5", got)
	}

	// One informative score plus one tie: positives rank {1.5, 3},
	// giving (4.5 - 3) / (2 * 1) = 0.75.
	if got := rocAUC([]float64{0.4, 0.4, 0.9}, []int{1, 0, 1}); got != 0.75 {
		t.Errorf("partially tied AUC = %v, want 0.75", got)
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]string{"UP", "DOWN", "UP", "SIDEWAYS", "DOWN"})
	want := []string{"DOWN", "SIDEWAYS", "UP"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("class %d = %s, want %s", i, got[i], want[i])
		}
	}
}
