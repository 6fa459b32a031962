package metering

import "sort"

// Building accumulates the readings of one building.
// Aggregates are always computed from SortedSeries, never from the raw buffer.
type Building struct {
	name     string
	readings []Reading
}

// NewBuilding creates an empty building.
func NewBuilding(name string) (*Building, error) {
	if name == "" {
		return nil, ErrEmptyBuildingName
	}
	return &Building{name: name}, nil
}

// Name returns the building name.
func (b *Building) Name() string { return b.name }

// Add appends a reading in arrival order. Duplicates are kept.
func (b *Building) Add(r Reading) {
	b.readings = append(b.readings, r)
}

// Len returns the number of readings.
func (b *Building) Len() int { return len(b.readings) }

// SortedSeries returns a copy of the readings ordered by timestamp.
// Equal timestamps keep insertion order.
func (b *Building) SortedSeries() []Reading {
	out := make([]Reading, len(b.readings))
	copy(out, b.readings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Total returns the sum of all values, 0 for an empty building.
func (b *Building) Total() float64 {
	var total float64
	for _, r := range b.readings {
		total += r.Value
	}
	return total
}

// Values returns the values in timestamp order.
func (b *Building) Values() []float64 {
	sorted := b.SortedSeries()
	values := make([]float64, len(sorted))
	for i, r := range sorted {
		values[i] = r.Value
	}
	return values
}
