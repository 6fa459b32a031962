package cleaning

import (
	"fmt"
	"math"
)

// Policy fills missing numeric values. Missing entries are NaN on input; entries
// still NaN on output are dropped by the caller.
type Policy interface {
	Name() string
	Impute(values []float64) []float64
}

const (
	PolicySkipMissing     = "skip"
	PolicyForwardFillMean = "ffill_mean"
)

// SkipMissing leaves gaps untouched so that rows with missing values are dropped.
type SkipMissing struct{}

// Name implements Policy.
func (SkipMissing) Name() string { return PolicySkipMissing }

// Impute returns a copy of values.
func (SkipMissing) Impute(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

// ForwardFillMean carries the last present value forward, then fills remaining
// leading gaps with the mean of the values that were present originally.
type ForwardFillMean struct{}

// Name implements Policy.
func (ForwardFillMean) Name() string { return PolicyForwardFillMean }

// Impute implements Policy.
func (ForwardFillMean) Impute(values []float64) []float64 {
	out := make([]float64, len(values))
	var (
		sum   float64
		count int
		last  = math.NaN()
	)
	for i, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
			last = v
		}
		out[i] = last
	}
	if count == 0 {
		return out
	}
	mean := sum / float64(count)
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = mean
		}
	}
	return out
}

// PolicyByName resolves a configured policy name. Empty selects SkipMissing.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", PolicySkipMissing:
		return SkipMissing{}, nil
	case PolicyForwardFillMean:
		return ForwardFillMean{}, nil
	default:
		return nil, fmt.Errorf("cleaning: unknown imputation policy %q", name)
	}
}
