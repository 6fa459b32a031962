package csvsource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"campus-energy/internal/metering/cleaning"
	metering "campus-energy/internal/metering/domain"
)

func TestParseSkipsMalformedRowsAndContinues(t *testing.T) {
	input := strings.Join([]string{
		"timestamp,kwh",
		"2024-01-01 10:00:00,5.0",
		"not-a-date,7.0",
		"2024-01-01 14:00:00,abc",
		"2024-01-01 16:00:00,3.0",
		"2024-01-01 17:00:00",
		"2024-01-02T08:00:00Z,1.5",
	}, "\n")

	fragment, err := Parse(strings.NewReader(input), "data/Library_jan.csv", Schema{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fragment.Building != "Library" {
		t.Fatalf("expected building Library, got %q", fragment.Building)
	}
	if len(fragment.Readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(fragment.Readings))
	}
	want := metering.RowStats{Total: 6, Accepted: 3, Skipped: 3}
	if fragment.Rows != want {
		t.Fatalf("expected %+v, got %+v", want, fragment.Rows)
	}
	if fragment.Readings[1].Value != 3.0 {
		t.Fatalf("expected the row after a bad one to be kept, got %+v", fragment.Readings)
	}
}

func TestParseForwardFillMean(t *testing.T) {
	input := "timestamp,kwh\n2024-01-01 01:00,\n2024-01-01 02:00,2\n2024-01-01 03:00,x\n2024-01-01 04:00,6\n"
	fragment, err := Parse(strings.NewReader(input), "Gym.csv", Schema{Policy: cleaning.ForwardFillMean{}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := make([]float64, len(fragment.Readings))
	for i, r := range fragment.Readings {
		got[i] = r.Value
	}
	want := []float64{4, 2, 2, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if fragment.Rows.Imputed != 2 || fragment.Rows.Accepted != 4 {
		t.Fatalf("unexpected row stats %+v", fragment.Rows)
	}
}

func TestParseSchemaMismatch(t *testing.T) {
	_, err := Parse(strings.NewReader("time,energy\n2024-01-01,1\n"), "Gym.csv", Schema{})
	if !errors.Is(err, metering.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	_, err = Parse(strings.NewReader(""), "Gym.csv", Schema{})
	if !errors.Is(err, metering.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch for empty source, got %v", err)
	}
}

func TestParseColumnNamesAreCaseSensitive(t *testing.T) {
	_, err := Parse(strings.NewReader("Timestamp,KWH\n2024-01-01,1\n"), "Gym.csv", Schema{})
	if !errors.Is(err, metering.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestParseDetectColumns(t *testing.T) {
	input := "\ufeffMeter,Reading Time,Energy kWh\nm1,2024-03-01 00:00,2.5\n"
	fragment, err := Parse(strings.NewReader(input), "Hall_1.csv", Schema{DetectColumns: true})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(fragment.Readings) != 1 || fragment.Readings[0].Value != 2.5 {
		t.Fatalf("unexpected readings %+v", fragment.Readings)
	}
}

func TestParseDetectColumnsRejectsSharedColumn(t *testing.T) {
	input := "timestamp_value\n2024-03-01 00:00\n"
	_, err := Parse(strings.NewReader(input), "Hall_1.csv", Schema{DetectColumns: true})
	if !errors.Is(err, metering.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2024, time.January, 2, 10, 30, 0, 0, time.UTC)
	for _, raw := range []string{"2024-01-02T10:30:00Z", "2024-01-02 10:30:00", "2024-01-02 10:30", "01/02/2024 10:30"} {
		got, err := ParseTimestamp(raw)
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: expected %s, got %s", raw, want, got)
		}
	}
	if _, err := ParseTimestamp("yesterday"); !errors.Is(err, metering.ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestDiscoverAndLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "B_1.csv"), []byte("timestamp,kwh\n2024-01-01 00:00,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "A_1.csv"), []byte("timestamp,kwh\n2024-01-01 00:00,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir, "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "A_1.csv" {
		t.Fatalf("unexpected files %v", files)
	}

	fragment, err := Load(files[0], Schema{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fragment.Building != "A" || len(fragment.Readings) != 1 {
		t.Fatalf("unexpected fragment %+v", fragment)
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), "")
	if !errors.Is(err, metering.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), Schema{})
	if !errors.Is(err, metering.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}
