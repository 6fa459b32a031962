package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	metering "campus-energy/internal/metering/domain"
	reporting "campus-energy/internal/reporting/domain"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestNewSummaryRepositoryRejectsNilDB(t *testing.T) {
	if _, err := NewSummaryRepository(nil); !errors.Is(err, ErrNilDB) {
		t.Fatalf("expected ErrNilDB, got %v", err)
	}
}

func TestSummaryRepository_ExportIsIdempotent(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo, err := NewSummaryRepository(db, WithTables("energy_building_summary_test", "energy_daily_totals_test"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	_, _ = db.ExecContext(ctx, "DELETE FROM energy_building_summary_test")
	_, _ = db.ExecContext(ctx, "DELETE FROM energy_daily_totals_test")

	fleet := metering.NewFleet("_")
	_, _ = fleet.Merge(metering.Fragment{Building: "A", Readings: []metering.Reading{
		{Timestamp: time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), Value: 5},
		{Timestamp: time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC), Value: 3},
	}})
	_, _ = fleet.Merge(metering.Fragment{Building: "B", Readings: []metering.Reading{
		{Timestamp: time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC), Value: 4},
	}})
	summary, err := reporting.Build(fleet, fixedClock{now: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("build summary: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.Export(ctx, "run-1", summary, fleet.Combined()); err != nil {
			t.Fatalf("export #%d: %v", i+1, err)
		}
	}

	total, err := repo.TotalByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("total by run: %v", err)
	}
	if total != 12 {
		t.Fatalf("expected 12, got %v", total)
	}

	var days int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM energy_daily_totals_test WHERE run_key = $1", "run-1").Scan(&days); err != nil {
		t.Fatalf("count days: %v", err)
	}
	if days != 2 {
		t.Fatalf("expected 2 daily rows, got %d", days)
	}
}
