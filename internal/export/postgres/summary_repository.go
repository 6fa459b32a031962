package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	metering "campus-energy/internal/metering/domain"
	reporting "campus-energy/internal/reporting/domain"
)

const (
	defaultSummaryTable = "energy_building_summary"
	defaultDailyTable   = "energy_daily_totals"
)

var (
	// ErrNilDB is returned when the exporter has no database handle.
	ErrNilDB = errors.New("postgres export: nil db")
	// ErrEmptyRunKey is returned when a run key is missing.
	ErrEmptyRunKey = errors.New("postgres export: empty run key")
)

// SummaryRepository upserts per-building summaries and daily totals keyed by run.
type SummaryRepository struct {
	db           *sql.DB
	summaryTable string
	dailyTable   string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SummaryRepository)

// WithTables overrides the default table names.
func WithTables(summaryTable, dailyTable string) RepositoryOption {
	return func(repo *SummaryRepository) {
		if summaryTable != "" {
			repo.summaryTable = summaryTable
		}
		if dailyTable != "" {
			repo.dailyTable = dailyTable
		}
	}
}

// NewSummaryRepository creates a repository using the default table names.
func NewSummaryRepository(db *sql.DB, opts ...RepositoryOption) (*SummaryRepository, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	repo := &SummaryRepository{
		db:           db,
		summaryTable: defaultSummaryTable,
		dailyTable:   defaultDailyTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// Name identifies the sink in logs and metrics.
func (r *SummaryRepository) Name() string { return "postgres" }

// EnsureSchema creates the tables when missing.
func (r *SummaryRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	run_key TEXT NOT NULL,
	building TEXT NOT NULL,
	readings INTEGER NOT NULL,
	mean_kwh DOUBLE PRECISION NOT NULL,
	min_kwh DOUBLE PRECISION NOT NULL,
	max_kwh DOUBLE PRECISION NOT NULL,
	total_kwh DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_key, building)
)`, r.summaryTable),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	run_key TEXT NOT NULL,
	building TEXT NOT NULL,
	day DATE NOT NULL,
	kwh DOUBLE PRECISION NOT NULL,
	readings INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_key, building, day)
)`, r.dailyTable),
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Export upserts the run's building summaries and daily totals in one transaction.
func (r *SummaryRepository) Export(ctx context.Context, runKey string, summary reporting.Summary, _ metering.Series) error {
	if runKey == "" {
		return ErrEmptyRunKey
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	summaryQuery := fmt.Sprintf(`
INSERT INTO %s (
	run_key,
	building,
	readings,
	mean_kwh,
	min_kwh,
	max_kwh,
	total_kwh
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (run_key, building)
DO UPDATE SET
	readings = EXCLUDED.readings,
	mean_kwh = EXCLUDED.mean_kwh,
	min_kwh = EXCLUDED.min_kwh,
	max_kwh = EXCLUDED.max_kwh,
	total_kwh = EXCLUDED.total_kwh,
	updated_at = NOW()`, r.summaryTable)
	for _, b := range summary.Buildings {
		if _, err := tx.ExecContext(ctx, summaryQuery, runKey, b.Building, b.Count, b.Mean, b.Min, b.Max, b.Total); err != nil {
			return fmt.Errorf("upsert summary %s: %w", b.Building, err)
		}
	}

	dailyQuery := fmt.Sprintf(`
INSERT INTO %s (
	run_key,
	building,
	day,
	kwh,
	readings
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (run_key, building, day)
DO UPDATE SET
	kwh = EXCLUDED.kwh,
	readings = EXCLUDED.readings,
	updated_at = NOW()`, r.dailyTable)
	for _, d := range summary.Daily {
		if _, err := tx.ExecContext(ctx, dailyQuery, runKey, d.Building, d.Key.Start, d.Value, d.Count); err != nil {
			return fmt.Errorf("upsert daily %s %s: %w", d.Building, d.Key, err)
		}
	}
	return tx.Commit()
}

// TotalByRun sums the exported building totals of a run.
func (r *SummaryRepository) TotalByRun(ctx context.Context, runKey string) (float64, error) {
	var total sql.NullFloat64
	query := fmt.Sprintf(`SELECT SUM(total_kwh) FROM %s WHERE run_key = $1`, r.summaryTable)
	if err := r.db.QueryRowContext(ctx, query, runKey).Scan(&total); err != nil {
		return 0, err
	}
	return total.Float64, nil
}
