package reporting

import (
	"time"

	"campus-energy/internal/analytics/domain/statistic"
	metering "campus-energy/internal/metering/domain"
)

// Clock provides time for report generation.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// NoPeakHour marks a summary without readings.
const NoPeakHour = -1

// BuildingSummary holds the per-building statistics of one run.
type BuildingSummary struct {
	Building string
	statistic.Stats
}

// PeakHour is the busiest hour of day of one building.
type PeakHour struct {
	Building string
	Hour     int
	Total    float64
}

// WeeklyAverage is the mean of a building's weekly totals.
type WeeklyAverage struct {
	Building string
	Weeks    int
	Value    float64
}

// Summary is the write-once result of a run.
type Summary struct {
	GeneratedAt time.Time

	CampusTotal      float64
	TopBuilding      string
	TopBuildingTotal float64
	PeakHour         int
	PeakHourTotal    float64

	BuildingCount int
	ReadingCount  int

	Buildings      []BuildingSummary
	Daily          []statistic.Bucket
	Weekly         []statistic.Bucket
	HourOfDay      []statistic.Bucket
	PeakByBuilding []PeakHour
	WeeklyAverages []WeeklyAverage
}

// Empty reports whether the run produced no readings.
func (s Summary) Empty() bool { return s.ReadingCount == 0 }

// Build derives every figure of the report from the fleet. A nil or empty
// fleet yields a zero-valued summary.
func Build(fleet *metering.Fleet, clock Clock) (Summary, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	summary := Summary{GeneratedAt: clock.Now(), PeakHour: NoPeakHour}
	if fleet == nil {
		return summary, nil
	}

	series := fleet.Combined()
	summary.CampusTotal = series.Total()
	summary.BuildingCount = fleet.Len()
	summary.ReadingCount = len(series)

	for _, name := range fleet.Names() {
		b, _ := fleet.Building(name)
		summary.Buildings = append(summary.Buildings, BuildingSummary{
			Building: name,
			Stats:    statistic.Describe(b.Values()),
		})
	}

	daily, err := statistic.Sum(series, statistic.PeriodDay)
	if err != nil {
		return summary, err
	}
	weekly, err := statistic.Sum(series, statistic.PeriodWeek)
	if err != nil {
		return summary, err
	}
	summary.Daily = statistic.Fill(daily)
	summary.Weekly = statistic.Fill(weekly)
	if summary.HourOfDay, err = statistic.SumAcrossBuildings(series, statistic.PeriodHourOfDay); err != nil {
		return summary, err
	}
	perBuildingHours, err := statistic.Sum(series, statistic.PeriodHourOfDay)
	if err != nil {
		return summary, err
	}

	if summary.Empty() {
		return summary, nil
	}

	summary.TopBuilding, summary.TopBuildingTotal, _ = TopBuilding(summary.Buildings)
	summary.PeakHour, summary.PeakHourTotal, _ = PeakHourOf(summary.HourOfDay)

	hoursByBuilding := statistic.ByBuilding(perBuildingHours)
	weeksByBuilding := statistic.ByBuilding(summary.Weekly)
	for _, name := range fleet.Names() {
		if hour, total, ok := PeakHourOf(hoursByBuilding[name]); ok {
			summary.PeakByBuilding = append(summary.PeakByBuilding, PeakHour{Building: name, Hour: hour, Total: total})
		}
		if weeks := weeksByBuilding[name]; len(weeks) > 0 {
			summary.WeeklyAverages = append(summary.WeeklyAverages, WeeklyAverage{
				Building: name,
				Weeks:    len(weeks),
				Value:    statistic.Total(weeks) / float64(len(weeks)),
			})
		}
	}
	return summary, nil
}

// TopBuilding returns the building with the largest total. Candidates must be
// sorted by name; among equal totals the first, lexicographically smallest, wins.
func TopBuilding(buildings []BuildingSummary) (string, float64, bool) {
	if len(buildings) == 0 {
		return "", 0, false
	}
	best := buildings[0]
	for _, b := range buildings[1:] {
		if b.Total > best.Total {
			best = b
		}
	}
	return best.Building, best.Total, true
}

// PeakHourOf returns the hour-of-day bucket with the largest value. Buckets come
// ordered by hour, so ties resolve to the earliest hour.
func PeakHourOf(buckets []statistic.Bucket) (int, float64, bool) {
	if len(buckets) == 0 {
		return NoPeakHour, 0, false
	}
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.Value > best.Value {
			best = b
		}
	}
	return best.Key.Hour, best.Value, true
}
