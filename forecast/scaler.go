package forecast

import "gonum.org/v1/gonum/floats"

// MinMaxScaler maps each feature into [0, 1] using the range seen in Fit.
type MinMaxScaler struct {
	min   []float64
	scale []float64
}

// FitMinMax learns per-feature minimum and range from rows. A constant
// feature gets a range of 1 so it maps to zero instead of dividing by zero.
func FitMinMax(rows [][]float64) *MinMaxScaler {
	if len(rows) == 0 {
		return &MinMaxScaler{}
	}
	width := len(rows[0])
	s := &MinMaxScaler{min: make([]float64, width), scale: make([]float64, width)}
	col := make([]float64, len(rows))
	for f := 0; f < width; f++ {
		for r, row := range rows {
			col[r] = row[f]
		}
		lo, hi := floats.Min(col), floats.Max(col)
		s.min[f] = lo
		s.scale[f] = hi - lo
		if s.scale[f] == 0 {
			s.scale[f] = 1
		}
	}
	return s
}

// Transform scales one observation.
func (s *MinMaxScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for f, v := range row {
		out[f] = (v - s.min[f]) / s.scale[f]
	}
	return out
}

// Inverse maps a scaled observation back to original units.
func (s *MinMaxScaler) Inverse(row []float64) []float64 {
	out := make([]float64, len(row))
	for f, v := range row {
		out[f] = v*s.scale[f] + s.min[f]
	}
	return out
}
