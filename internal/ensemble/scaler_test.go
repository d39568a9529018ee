package ensemble

import (
	"math"
	"testing"
)

func TestScalerFit(t *testing.T) {
	s := &StandardScaler{}
	if s.Fitted() {
		t.Fatal("scaler should not report fitted before Fit")
	}

	s.Fit([][]float64{
		{1, 10, 5},
		{3, 20, 5},
	})

	if !s.Fitted() {
		t.Fatal("scaler should report fitted after Fit")
	}
	if s.Mean[0] != 2 || s.Mean[1] != 15 || s.Mean[2] != 5 {
		t.Errorf("unexpected means: %v", s.Mean)
	}
	// Population std of {1,3} is 1, of {10,20} is 5.
	if s.Std[0] != 1 || s.Std[1] != 5 {
		t.Errorf("unexpected stds: %v", s.Std)
	}
	// Zero-variance column falls back to scale 1.
	if s.Std[2] != 1 {
		t.Errorf("zero-variance std = %v, want 1", s.Std[2])
	}
}

func TestScalerTransform(t *testing.T) {
	s := &StandardScaler{Mean: []float64{2, 15}, Std: []float64{1, 5}}

	got := s.Transform([]float64{3, 10})
	want := []float64{1, -1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Transform[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScalerTransformMatrixPreservesShape(t *testing.T) {
	s := &StandardScaler{}
	matrix := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	s.Fit(matrix)

	out := s.TransformMatrix(matrix)
	if len(out) != len(matrix) || len(out[0]) != len(matrix[0]) {
		t.Errorf("transform changed shape: %dx%d", len(out), len(out[0]))
	}
}
