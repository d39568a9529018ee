package ensemble

import "math"

// StandardScaler centers and scales features using statistics computed
// once on the training matrix. The same fitted scaler must be applied
// at inference time; a fresh scaler there would skew the distribution
// the models were trained on.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-column mean and population standard deviation.
// Zero-variance columns get scale 1 so Transform never divides by zero.
func (s *StandardScaler) Fit(matrix [][]float64) {
	if len(matrix) == 0 {
		return
	}
	cols := len(matrix[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	n := float64(len(matrix))
	for _, row := range matrix {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, row := range matrix {
		for j, v := range row {
			diff := v - s.Mean[j]
			s.Std[j] += diff * diff
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
}

// Fitted reports whether Fit has run.
func (s *StandardScaler) Fitted() bool {
	return len(s.Mean) > 0
}

// Transform scales a single row with the fitted statistics.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		if j < len(s.Mean) {
			out[j] = (v - s.Mean[j]) / s.Std[j]
		} else {
			out[j] = v
		}
	}
	return out
}

// TransformMatrix scales every row.
func (s *StandardScaler) TransformMatrix(matrix [][]float64) [][]float64 {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		out[i] = s.Transform(row)
	}
	return out
}
