package interfaces

import (
	"encoding/csv"
	"io"
	"strconv"

	"campus-energy/internal/analytics/domain/statistic"
	metering "campus-energy/internal/metering/domain"
	reporting "campus-energy/internal/reporting/domain"
)

// TimestampLayout is used for timestamps in tabular outputs.
const TimestampLayout = "2006-01-02 15:04:05"

// WriteCleanedCSV writes the combined dataset as timestamp, kwh, building.
func WriteCleanedCSV(w io.Writer, series metering.Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"timestamp", "kwh", "building"}); err != nil {
		return err
	}
	for _, p := range series {
		if err := writer.Write([]string{
			p.Timestamp.Format(TimestampLayout),
			formatFloat(p.Value),
			p.Building,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBuildingSummaryCSV writes building, mean, min, max, total.
func WriteBuildingSummaryCSV(w io.Writer, buildings []reporting.BuildingSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"building", "mean", "min", "max", "total"}); err != nil {
		return err
	}
	for _, b := range buildings {
		if err := writer.Write([]string{
			b.Building,
			formatFloat(b.Mean),
			formatFloat(b.Min),
			formatFloat(b.Max),
			formatFloat(b.Total),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBucketsCSV writes resampled buckets as building, period, kwh, readings.
func WriteBucketsCSV(w io.Writer, buckets []statistic.Bucket) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"building", "period", "kwh", "readings"}); err != nil {
		return err
	}
	for _, b := range buckets {
		if err := writer.Write([]string{
			b.Building,
			b.Key.String(),
			formatFloat(b.Value),
			strconv.Itoa(b.Count),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
