package statistic

import (
	"sort"

	metering "campus-energy/internal/metering/domain"
)

// Aggregation names the reduction applied inside a bucket.
type Aggregation string

const (
	AggregationSum  Aggregation = "SUM"
	AggregationMean Aggregation = "MEAN"
	AggregationMin  Aggregation = "MIN"
	AggregationMax  Aggregation = "MAX"
)

// IsValid checks if the aggregation is supported.
func (a Aggregation) IsValid() bool {
	switch a {
	case AggregationSum, AggregationMean, AggregationMin, AggregationMax:
		return true
	default:
		return false
	}
}

// Bucket is the immutable aggregate of the readings sharing a building and period key.
// Building is empty for campus-wide buckets.
type Bucket struct {
	Building    string
	Key         PeriodKey
	Aggregation Aggregation
	Count       int
	Value       float64
}

type bucketID struct {
	building string
	key      string
}

type accumulator struct {
	building string
	key      PeriodKey
	count    int
	sum      float64
	min      float64
	max      float64
}

func (a *accumulator) add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.count++
	a.sum += v
}

func (a *accumulator) value(agg Aggregation) float64 {
	switch agg {
	case AggregationMean:
		return a.sum / float64(a.count)
	case AggregationMin:
		return a.min
	case AggregationMax:
		return a.max
	default:
		return a.sum
	}
}

// Sum totals readings per building and period key.
func Sum(series metering.Series, period Period) ([]Bucket, error) {
	return Resample(series, period, AggregationSum, true)
}

// Mean averages readings per building and period key.
func Mean(series metering.Series, period Period) ([]Bucket, error) {
	return Resample(series, period, AggregationMean, true)
}

// Min keeps the smallest reading per building and period key.
func Min(series metering.Series, period Period) ([]Bucket, error) {
	return Resample(series, period, AggregationMin, true)
}

// Max keeps the largest reading per building and period key.
func Max(series metering.Series, period Period) ([]Bucket, error) {
	return Resample(series, period, AggregationMax, true)
}

// SumAcrossBuildings totals readings per period key over the whole campus.
func SumAcrossBuildings(series metering.Series, period Period) ([]Bucket, error) {
	return Resample(series, period, AggregationSum, false)
}

// MeanAcrossBuildings averages readings per period key over the whole campus.
func MeanAcrossBuildings(series metering.Series, period Period) ([]Bucket, error) {
	return Resample(series, period, AggregationMean, false)
}

// Resample groups the series by period key, and by building when byBuilding is
// set, then reduces each group with agg. Buckets are ordered by building name,
// then chronologically. An empty series yields no buckets.
func Resample(series metering.Series, period Period, agg Aggregation, byBuilding bool) ([]Bucket, error) {
	if !period.IsValid() {
		return nil, ErrInvalidPeriod
	}
	if !agg.IsValid() {
		return nil, ErrInvalidAggregation
	}

	groups := make(map[bucketID]*accumulator)
	for _, p := range series {
		key, err := KeyOf(period, p.Timestamp)
		if err != nil {
			return nil, err
		}
		building := ""
		if byBuilding {
			building = p.Building
		}
		id := bucketID{building: building, key: key.String()}
		acc, ok := groups[id]
		if !ok {
			acc = &accumulator{building: building, key: key}
			groups[id] = acc
		}
		acc.add(p.Value)
	}

	buckets := make([]Bucket, 0, len(groups))
	for _, acc := range groups {
		buckets = append(buckets, Bucket{
			Building:    acc.building,
			Key:         acc.key,
			Aggregation: agg,
			Count:       acc.count,
			Value:       acc.value(agg),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Building != buckets[j].Building {
			return buckets[i].Building < buckets[j].Building
		}
		return buckets[i].Key.Less(buckets[j].Key)
	})
	return buckets, nil
}

// Total sums bucket values.
func Total(buckets []Bucket) float64 {
	var total float64
	for _, b := range buckets {
		total += b.Value
	}
	return total
}

// ByBuilding splits buckets per building, preserving order.
func ByBuilding(buckets []Bucket) map[string][]Bucket {
	out := make(map[string][]Bucket)
	for _, b := range buckets {
		out[b.Building] = append(out[b.Building], b)
	}
	return out
}

// Fill inserts empty buckets for the calendar keys missing between each
// building's first and last bucket, so a gap reads as zero consumption.
// Buckets must be ordered as Resample returns them. Hour-of-day buckets are
// returned unchanged.
func Fill(buckets []Bucket) []Bucket {
	if len(buckets) == 0 || buckets[0].Key.Period == PeriodHourOfDay {
		return buckets
	}
	out := make([]Bucket, 0, len(buckets))
	for i, b := range buckets {
		if i > 0 && buckets[i-1].Building == b.Building {
			prev := buckets[i-1]
			next := PeriodKey{Period: prev.Key.Period, Start: prev.Key.End(), Hour: -1}
			for next.Start.Before(b.Key.Start) {
				out = append(out, Bucket{Building: b.Building, Key: next, Aggregation: b.Aggregation})
				next = PeriodKey{Period: next.Period, Start: next.End(), Hour: -1}
			}
		}
		out = append(out, b)
	}
	return out
}
