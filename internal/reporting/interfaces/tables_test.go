package interfaces

import (
	"bytes"
	"testing"
	"time"

	"campus-energy/internal/analytics/domain/statistic"
	metering "campus-energy/internal/metering/domain"
	reporting "campus-energy/internal/reporting/domain"
)

func TestWriteCleanedCSV(t *testing.T) {
	var buf bytes.Buffer
	series := metering.Series{
		{Building: "A", Timestamp: time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), Value: 5},
		{Building: "B", Timestamp: time.Date(2024, time.January, 2, 10, 30, 0, 0, time.UTC), Value: 4.25},
	}
	if err := WriteCleanedCSV(&buf, series); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "timestamp,kwh,building\n2024-01-01 10:00:00,5,A\n2024-01-02 10:30:00,4.25,B\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestWriteCleanedCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCleanedCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "timestamp,kwh,building\n" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestWriteBuildingSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []reporting.BuildingSummary{
		{Building: "A", Stats: statistic.Stats{Count: 2, Mean: 4, Min: 3, Max: 5, Total: 8}},
		{Building: "Empty"},
	}
	if err := WriteBuildingSummaryCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "building,mean,min,max,total\nA,4,3,5,8\nEmpty,0,0,0,0\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestWriteBucketsCSV(t *testing.T) {
	key, err := statistic.KeyOf(statistic.PeriodWeek, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteBucketsCSV(&buf, []statistic.Bucket{{Building: "A", Key: key, Count: 3, Value: 9.5}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "building,period,kwh,readings\nA,2024-01-07,9.5,3\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}
