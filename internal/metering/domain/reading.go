package metering

import (
	"math"
	"time"
)

// Reading is one timestamped meter value.
type Reading struct {
	Timestamp time.Time
	Value     float64
}

// NewReading validates and builds a reading.
func NewReading(ts time.Time, value float64) (Reading, error) {
	if ts.IsZero() {
		return Reading{}, ErrInvalidReading
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Reading{}, ErrInvalidReading
	}
	return Reading{Timestamp: ts, Value: value}, nil
}

// Point is one entry of the combined series: a reading tagged with its building.
type Point struct {
	Building  string
	Timestamp time.Time
	Value     float64
}

// Series is the union of every building's readings.
type Series []Point

// Total sums every point value.
func (s Series) Total() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}
