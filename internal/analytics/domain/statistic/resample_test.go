package statistic

import (
	"errors"
	"math"
	"testing"
	"time"

	metering "campus-energy/internal/metering/domain"
)

func ts(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

func exampleSeries() metering.Series {
	return metering.Series{
		{Building: "A", Timestamp: ts(time.January, 1, 10), Value: 5},
		{Building: "A", Timestamp: ts(time.January, 1, 14), Value: 3},
		{Building: "B", Timestamp: ts(time.January, 2, 10), Value: 4},
	}
}

func TestSumDailyAndHourOfDay(t *testing.T) {
	series := exampleSeries()

	daily, err := Sum(series, PeriodDay)
	if err != nil {
		t.Fatalf("daily sum: %v", err)
	}
	if len(daily) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(daily))
	}
	if daily[0].Building != "A" || daily[0].Key.String() != "2024-01-01" || daily[0].Value != 8 || daily[0].Count != 2 {
		t.Fatalf("unexpected first daily bucket %+v", daily[0])
	}

	hours, err := SumAcrossBuildings(series, PeriodHourOfDay)
	if err != nil {
		t.Fatalf("hourly sum: %v", err)
	}
	if len(hours) != 2 || hours[0].Key.Hour != 10 || hours[0].Value != 9 || hours[0].Building != "" {
		t.Fatalf("unexpected hour buckets %+v", hours)
	}
	if hours[1].Key.String() != "14" {
		t.Fatalf("expected hour 14 second, got %s", hours[1].Key)
	}
}

func TestBucketSumsMatchRawTotal(t *testing.T) {
	series := metering.Series{}
	for i := 0; i < 200; i++ {
		building := []string{"A", "B", "C"}[i%3]
		series = append(series, metering.Point{
			Building:  building,
			Timestamp: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i*7) * time.Hour),
			Value:     float64(i%11) + 0.25,
		})
	}
	raw := series.Total()
	for _, period := range []Period{PeriodDay, PeriodWeek, PeriodHourOfDay} {
		for _, byBuilding := range []bool{true, false} {
			buckets, err := Resample(series, period, AggregationSum, byBuilding)
			if err != nil {
				t.Fatalf("%s: %v", period, err)
			}
			if math.Abs(Total(buckets)-raw) > 1e-9 {
				t.Fatalf("%s byBuilding=%v: expected %v, got %v", period, byBuilding, raw, Total(buckets))
			}
		}
	}
}

func TestDailyBucketsSumToWeeklyBucket(t *testing.T) {
	series := metering.Series{}
	// 2024-01-01 is a Monday; cover two full weeks plus a spill-over day.
	for day := 1; day <= 15; day++ {
		for _, hour := range []int{0, 9, 23} {
			series = append(series, metering.Point{Building: "A", Timestamp: ts(time.January, day, hour), Value: float64(day) + float64(hour)/10})
		}
	}

	weekly, err := Sum(series, PeriodWeek)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	daily, err := Sum(series, PeriodDay)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(weekly) != 3 {
		t.Fatalf("expected 3 weekly buckets, got %d", len(weekly))
	}
	if weekly[0].Key.String() != "2024-01-07" || weekly[1].Key.String() != "2024-01-14" {
		t.Fatalf("expected weeks labelled by their Sunday, got %s %s", weekly[0].Key, weekly[1].Key)
	}
	for _, w := range weekly {
		var sum float64
		for _, d := range daily {
			if w.Key.Contains(d.Key.Start) {
				sum += d.Value
			}
		}
		if math.Abs(sum-w.Value) > 1e-9 {
			t.Fatalf("week %s: daily sum %v != weekly %v", w.Key, sum, w.Value)
		}
	}
}

func TestWeekKeyForSunday(t *testing.T) {
	key, err := KeyOf(PeriodWeek, ts(time.January, 7, 23))
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if !key.Start.Equal(ts(time.January, 1, 0)) || key.String() != "2024-01-07" {
		t.Fatalf("unexpected week key start=%s label=%s", key.Start, key)
	}
	next, _ := KeyOf(PeriodWeek, ts(time.January, 8, 0))
	if next.String() != "2024-01-14" {
		t.Fatalf("expected Monday to open the next week, got %s", next)
	}
}

func TestMeanMinMaxAreSeparateOperations(t *testing.T) {
	series := exampleSeries()
	mean, _ := Mean(series, PeriodDay)
	min, _ := Min(series, PeriodDay)
	max, _ := Max(series, PeriodDay)
	if mean[0].Value != 4 || mean[0].Aggregation != AggregationMean {
		t.Fatalf("unexpected mean %+v", mean[0])
	}
	if min[0].Value != 3 || max[0].Value != 5 {
		t.Fatalf("unexpected min/max %v/%v", min[0].Value, max[0].Value)
	}
	campus, _ := MeanAcrossBuildings(series, PeriodHourOfDay)
	if campus[0].Value != 4.5 {
		t.Fatalf("expected campus mean 4.5 at hour 10, got %v", campus[0].Value)
	}
}

func TestResampleEmptySeries(t *testing.T) {
	buckets, err := Sum(nil, PeriodWeek)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(buckets) != 0 {
		t.Fatalf("expected no buckets, got %d", len(buckets))
	}
}

func TestResampleRejectsInvalidSelectors(t *testing.T) {
	if _, err := Sum(exampleSeries(), Period("MONTH")); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := Resample(exampleSeries(), PeriodDay, Aggregation("MEDIAN"), true); !errors.Is(err, ErrInvalidAggregation) {
		t.Fatalf("expected ErrInvalidAggregation, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	got := Describe([]float64{5, 3, 4})
	want := Stats{Count: 3, Mean: 4, Min: 3, Max: 5, Total: 12}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if Describe(nil) != (Stats{}) {
		t.Fatalf("expected zero stats for no values")
	}
}

func TestFillInsertsEmptyCalendarKeys(t *testing.T) {
	series := metering.Series{
		{Building: "A", Timestamp: ts(time.January, 1, 8), Value: 10},
		{Building: "A", Timestamp: ts(time.January, 15, 8), Value: 20},
		{Building: "B", Timestamp: ts(time.January, 3, 8), Value: 1},
	}

	weekly, err := Sum(series, PeriodWeek)
	if err != nil {
		t.Fatalf("weekly sum: %v", err)
	}
	filled := Fill(weekly)
	if len(filled) != 4 {
		t.Fatalf("expected 4 weekly buckets, got %+v", filled)
	}
	wantLabels := []string{"2024-01-07", "2024-01-14", "2024-01-21", "2024-01-07"}
	wantValues := []float64{10, 0, 20, 1}
	for i, b := range filled {
		if b.Key.String() != wantLabels[i] || b.Value != wantValues[i] {
			t.Fatalf("bucket %d: expected %s=%v, got %s=%v", i, wantLabels[i], wantValues[i], b.Key, b.Value)
		}
	}
	if filled[1].Building != "A" || filled[1].Count != 0 || filled[1].Aggregation != AggregationSum {
		t.Fatalf("unexpected gap bucket %+v", filled[1])
	}

	daily, err := Sum(series, PeriodDay)
	if err != nil {
		t.Fatalf("daily sum: %v", err)
	}
	filledDaily := Fill(daily)
	if len(filledDaily) != 16 {
		t.Fatalf("expected 15 days for A and 1 for B, got %d", len(filledDaily))
	}
	if Total(filledDaily) != Total(daily) {
		t.Fatalf("fill changed the total: %v != %v", Total(filledDaily), Total(daily))
	}
}

func TestFillLeavesHourOfDayAlone(t *testing.T) {
	hours, err := Sum(exampleSeries(), PeriodHourOfDay)
	if err != nil {
		t.Fatalf("hourly sum: %v", err)
	}
	if got := Fill(hours); len(got) != len(hours) {
		t.Fatalf("expected %d hour buckets, got %d", len(hours), len(got))
	}
}
