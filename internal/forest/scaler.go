package forest

import (
	"fmt"
	"math"
)

// StandardScaler per-column centering and unit scaling
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes column means and population standard deviations.
// Constant columns get scale 1.
func FitScaler(X [][]float64) (*StandardScaler, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("fit scaler: empty matrix")
	}
	cols := len(X[0])
	s := &StandardScaler{Mean: make([]float64, cols), Scale: make([]float64, cols)}
	n := float64(len(X))
	for _, row := range X {
		if len(row) != cols {
			return nil, fmt.Errorf("fit scaler: ragged row of %d columns, want %d", len(row), cols)
		}
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Scale[j] += d * d
		}
	}
	for j := range s.Scale {
		std := math.Sqrt(s.Scale[j] / n)
		if std == 0 {
			std = 1
		}
		s.Scale[j] = std
	}
	return s, nil
}

// Transform scales one row into a new slice.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d columns, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

// TransformAll scales every row.
func (s *StandardScaler) TransformAll(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		r, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}
