package statistic

import "errors"

var (
	// ErrInvalidPeriod is returned when a period selector is unsupported.
	ErrInvalidPeriod = errors.New("statistic: invalid period")
	// ErrInvalidAggregation is returned when an aggregation is unsupported.
	ErrInvalidAggregation = errors.New("statistic: invalid aggregation")
	// ErrInvalidTimestamp is returned when a zero timestamp is bucketed.
	ErrInvalidTimestamp = errors.New("statistic: invalid timestamp")
)
