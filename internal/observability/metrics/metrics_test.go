package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := New()
	m.ObserveSource(ResultSuccess)
	m.ObserveSource(ResultSkipped)
	m.ObserveSource("")
	m.AddRows(10, 2, 3)
	m.ObserveArtifact("summary.txt", "")
	m.ObserveExport("postgres", ResultError)

	if got := testutil.ToFloat64(m.SourcesTotal.WithLabelValues(ResultSuccess)); got != 2 {
		t.Fatalf("expected 2 successful sources, got %v", got)
	}
	if got := testutil.ToFloat64(m.RowsTotal.WithLabelValues(RowsSkipped)); got != 3 {
		t.Fatalf("expected 3 skipped rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.ArtifactsTotal.WithLabelValues("summary.txt", ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 artifact, got %v", got)
	}
	if got := testutil.ToFloat64(m.ExportsTotal.WithLabelValues("postgres", ResultError)); got != 1 {
		t.Fatalf("expected 1 failed export, got %v", got)
	}
	count, err := testutil.GatherAndCount(m.Registry(), "campus_energy_sources_total", "campus_energy_exports_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 series in the run registry, got %d", count)
	}
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRun(2, 3, 12, time.Unix(1700000000, 0), 1500*time.Millisecond)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, line := range []string{
		"campus_energy_campus_total_kwh 12",
		"campus_energy_buildings 2",
		"campus_energy_run_duration_seconds 1.5",
	} {
		if !strings.Contains(string(data), line) {
			t.Fatalf("expected %q in:\n%s", line, data)
		}
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveSource(ResultSuccess)
	m.AddRows(1, 1, 1)
	m.ObserveRun(1, 1, 1, time.Now(), time.Second)
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
