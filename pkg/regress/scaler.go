package regress

import "math"

// StandardScaler centers features to zero mean and unit variance. Fit
// learns the statistics, Transform applies them. Constant features keep a
// std of 1 so transformed values stay finite.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	n := len(X)
	dims := len(X[0])
	s.Mean = make([]float64, dims)
	s.Std = make([]float64, dims)

	for _, row := range X {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= float64(n)
	}

	for _, row := range X {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / float64(n))
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
}

func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

func (s *StandardScaler) FitTransform(X [][]float64) [][]float64 {
	s.Fit(X)
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}
