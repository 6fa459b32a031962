package statistic

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a set of values.
type Stats struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
	Total float64
}

// Describe computes count, mean, min, max and total. All fields are zero for no values.
func Describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	return Stats{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		Total: floats.Sum(values),
	}
}
