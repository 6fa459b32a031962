package statistic

import (
	"fmt"
	"time"
)

// Period selects how timestamps are grouped into buckets.
type Period string

const (
	PeriodDay       Period = "DAY"
	PeriodWeek      Period = "WEEK"
	PeriodHourOfDay Period = "HOUR_OF_DAY"
)

// IsValid checks if the period is one of the supported values.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodHourOfDay:
		return true
	default:
		return false
	}
}

// PeriodKey identifies one bucket of a period.
//
// Calendar periods use the timestamp's own location. Weeks run Monday 00:00
// through the end of Sunday and are labelled by the Sunday that closes them, so
// the seven day keys of a week always fall inside exactly one week key.
// Hour-of-day keys collapse all calendar days onto the hours 0-23.
type PeriodKey struct {
	Period Period
	Start  time.Time
	Hour   int
}

// KeyOf derives the bucket key of ts for the given period.
func KeyOf(period Period, ts time.Time) (PeriodKey, error) {
	if !period.IsValid() {
		return PeriodKey{}, ErrInvalidPeriod
	}
	if ts.IsZero() {
		return PeriodKey{}, ErrInvalidTimestamp
	}
	switch period {
	case PeriodDay:
		return PeriodKey{Period: period, Start: truncateToDay(ts), Hour: -1}, nil
	case PeriodWeek:
		day := truncateToDay(ts)
		offset := (int(day.Weekday()) + 6) % 7
		return PeriodKey{Period: period, Start: day.AddDate(0, 0, -offset), Hour: -1}, nil
	default:
		return PeriodKey{Period: period, Hour: ts.Hour()}, nil
	}
}

// End returns the exclusive end of a calendar key, zero for hour-of-day keys.
func (k PeriodKey) End() time.Time {
	switch k.Period {
	case PeriodDay:
		return k.Start.AddDate(0, 0, 1)
	case PeriodWeek:
		return k.Start.AddDate(0, 0, 7)
	default:
		return time.Time{}
	}
}

// Label returns the date a calendar key is reported under: the day itself, or
// the Sunday ending the week.
func (k PeriodKey) Label() time.Time {
	if k.Period == PeriodWeek {
		return k.Start.AddDate(0, 0, 6)
	}
	return k.Start
}

// Contains reports whether ts falls inside a calendar key.
func (k PeriodKey) Contains(ts time.Time) bool {
	if k.Period == PeriodHourOfDay {
		return ts.Hour() == k.Hour
	}
	return !ts.Before(k.Start) && ts.Before(k.End())
}

// String returns the stable textual key.
func (k PeriodKey) String() string {
	switch k.Period {
	case PeriodDay, PeriodWeek:
		return k.Label().Format("2006-01-02")
	case PeriodHourOfDay:
		return fmt.Sprintf("%02d", k.Hour)
	default:
		return ""
	}
}

// Less orders keys chronologically, hour-of-day keys by hour.
func (k PeriodKey) Less(other PeriodKey) bool {
	if k.Period == PeriodHourOfDay && other.Period == PeriodHourOfDay {
		return k.Hour < other.Hour
	}
	if !k.Start.Equal(other.Start) {
		return k.Start.Before(other.Start)
	}
	return k.String() < other.String()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
