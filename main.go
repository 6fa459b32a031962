package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	dashboard "campus-energy/internal/dashboard/application"
	"campus-energy/internal/export/influx"
	"campus-energy/internal/export/postgres"
	"campus-energy/internal/observability/metrics"
)

type options struct {
	configPath string
	dataDir    string
	outDir     string
	workers    int
}

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Printf(".env load error: %v", err)
	}

	opts := parseFlags()
	cfg, err := dashboard.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	applyFlags(&cfg, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporters, closeExporters := buildExporters(ctx, cfg.Export, logger)
	defer closeExporters()

	pipeline, err := dashboard.NewPipeline(cfg, logger,
		dashboard.WithMetrics(metrics.New()),
		dashboard.WithExporters(exporters...),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.Printf("run failed: %v", err)
		closeExporters()
		os.Exit(1)
	}
	fmt.Printf("Dashboard outputs written to %s (%d files)\n", cfg.OutputDir, len(result.Artifacts))
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", os.Getenv("ENERGY_CONFIG"), "yaml config file (optional)")
	flag.StringVar(&opts.dataDir, "data", "", "directory of meter CSV files")
	flag.StringVar(&opts.outDir, "out", "", "output directory")
	flag.IntVar(&opts.workers, "workers", 0, "parallel source readers")
	flag.Parse()
	return opts
}

// applyFlags lets explicit flags win over env and yaml settings.
func applyFlags(cfg *dashboard.Config, opts options) {
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}
	if opts.workers > 0 {
		cfg.IngestWorkers = opts.workers
	}
}

// buildExporters connects the configured sinks. A sink that cannot be reached
// is logged and left out of the run.
func buildExporters(ctx context.Context, cfg dashboard.ExportConfig, logger *log.Logger) ([]dashboard.Exporter, func()) {
	var (
		exporters []dashboard.Exporter
		closers   []func()
	)

	if cfg.PostgresEnabled() {
		if repo, db, err := openPostgres(ctx, cfg.PostgresDSN); err != nil {
			logger.Printf("postgres export disabled: %v", err)
		} else {
			exporters = append(exporters, repo)
			closers = append(closers, func() { _ = db.Close() })
		}
	}

	if cfg.InfluxEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		writer, err := influx.NewReadingWriter(connectCtx, influx.Config{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		})
		cancel()
		if err != nil {
			logger.Printf("influx export disabled: %v", err)
		} else {
			exporters = append(exporters, writer)
			closers = append(closers, writer.Close)
		}
	}

	closed := false
	return exporters, func() {
		if closed {
			return
		}
		closed = true
		for _, c := range closers {
			c()
		}
	}
}

func openPostgres(ctx context.Context, dsn string) (*postgres.SummaryRepository, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	repo, err := postgres.NewSummaryRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := repo.EnsureSchema(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}
