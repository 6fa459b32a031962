package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"campus-energy/internal/artifact"
	"campus-energy/internal/metering/cleaning"
	metering "campus-energy/internal/metering/domain"
	"campus-energy/internal/metering/infrastructure/csvsource"
	"campus-energy/internal/observability/metrics"
	"campus-energy/internal/reporting/charts"
	reporting "campus-energy/internal/reporting/domain"
	"campus-energy/internal/reporting/interfaces"
)

// Artifact names written to the output directory.
const (
	CleanedDataFile     = "cleaned_energy_data.csv"
	BuildingSummaryFile = "building_summary.csv"
	DailyTotalsFile     = "daily_totals.csv"
	WeeklyTotalsFile    = "weekly_totals.csv"
	SummaryTextFile     = "summary.txt"
	SummaryXLSXFile     = "building_summary.xlsx"
	SummaryPDFFile      = "summary.pdf"
)

const runKeyLayout = "20060102T150405Z"

// Exporter pushes the results of a run to an external sink.
type Exporter interface {
	Name() string
	Export(ctx context.Context, runKey string, summary reporting.Summary, series metering.Series) error
}

// Result describes a finished run.
type Result struct {
	RunKey         string
	Summary        reporting.Summary
	Sources        int
	SkippedSources int
	Rows           metering.RowStats
	Charts         int
	Artifacts      []string
}

// Pipeline ingests every source, derives the summary and writes all artifacts.
type Pipeline struct {
	cfg       Config
	logger    *log.Logger
	clock     reporting.Clock
	metrics   *metrics.Metrics
	exporters []Exporter
	report    *interfaces.TextReport
	policy    cleaning.Policy
}

// Option configures a pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for the report timestamp.
func WithClock(clock reporting.Clock) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithMetrics records run metrics into m instead of a pipeline-owned registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithExporters adds optional sinks run after the artifacts are written.
func WithExporters(exporters ...Exporter) Option {
	return func(p *Pipeline) { p.exporters = append(p.exporters, exporters...) }
}

// NewPipeline validates cfg and builds a pipeline.
func NewPipeline(cfg Config, logger *log.Logger, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := cleaning.PolicyByName(cfg.Imputation)
	if err != nil {
		return nil, err
	}
	report, err := interfaces.NewTextReport(interfaces.DefaultTemplate)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		clock:   reporting.SystemClock{},
		metrics: metrics.New(),
		report:  report,
		policy:  policy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes one dashboard run. Unreadable sources, chart failures and
// export failures are logged and skipped; only an unusable output directory
// stops the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	var result Result

	out, err := artifact.NewWriter(p.cfg.OutputDir)
	if err != nil {
		return result, err
	}

	fleet, err := p.ingest(ctx, &result)
	if err != nil {
		return result, err
	}
	if fleet.ReadingCount() == 0 {
		p.logger.Printf("dashboard: %v (sources=%d)", metering.ErrEmptyDataset, result.Sources)
	}

	series := fleet.Combined()
	summary, err := reporting.Build(fleet, p.clock)
	if err != nil {
		return result, err
	}
	result.Summary = summary
	result.RunKey = summary.GeneratedAt.UTC().Format(runKeyLayout)

	tables := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{CleanedDataFile, func(w io.Writer) error { return interfaces.WriteCleanedCSV(w, series) }},
		{BuildingSummaryFile, func(w io.Writer) error { return interfaces.WriteBuildingSummaryCSV(w, summary.Buildings) }},
		{DailyTotalsFile, func(w io.Writer) error { return interfaces.WriteBucketsCSV(w, summary.Daily) }},
		{WeeklyTotalsFile, func(w io.Writer) error { return interfaces.WriteBucketsCSV(w, summary.Weekly) }},
	}
	for _, table := range tables {
		if err := p.publish(out, &result, table.name, table.fn); err != nil {
			return result, err
		}
	}

	text, err := p.report.Render(summary)
	if err != nil {
		return result, err
	}
	if err := p.publishBytes(out, &result, SummaryTextFile, text); err != nil {
		return result, err
	}

	dashboard, err := p.renderCharts(out, &result, summary)
	if err != nil {
		return result, err
	}

	if err := p.writeDocuments(out, &result, summary, dashboard); err != nil {
		return result, err
	}

	p.export(ctx, result.RunKey, summary, series)

	finished := p.clock.Now()
	p.metrics.ObserveRun(summary.BuildingCount, summary.ReadingCount, summary.CampusTotal, finished, time.Since(started))
	if p.cfg.MetricsFile != "" {
		if err := p.metrics.WriteTextfile(out.Path(p.cfg.MetricsFile)); err != nil {
			p.logger.Printf("dashboard: metrics textfile: %v", err)
		} else {
			result.Artifacts = append(result.Artifacts, out.Path(p.cfg.MetricsFile))
		}
	}

	p.logger.Printf("dashboard: run=%s buildings=%d readings=%d total_kwh=%.2f artifacts=%d",
		result.RunKey, summary.BuildingCount, summary.ReadingCount, summary.CampusTotal, len(result.Artifacts))
	return result, nil
}

// ingest loads every source into an isolated fragment, then merges the
// fragments in file order so the fleet is identical for any worker count.
func (p *Pipeline) ingest(ctx context.Context, result *Result) (*metering.Fleet, error) {
	fleet := metering.NewFleet(p.cfg.NameSeparator)

	files, err := csvsource.Discover(p.cfg.DataDir, p.cfg.FilePattern)
	if err != nil {
		if !errors.Is(err, metering.ErrSourceUnavailable) {
			return nil, err
		}
		p.logger.Printf("dashboard: data dir skipped: %v", err)
		files = nil
	}
	result.Sources = len(files)

	schema := csvsource.Schema{
		TimestampColumn: p.cfg.TimestampColumn,
		ValueColumn:     p.cfg.ValueColumn,
		DetectColumns:   p.cfg.DetectColumns,
		Policy:          p.policy,
		Separator:       p.cfg.NameSeparator,
	}

	fragments := make([]metering.Fragment, len(files))
	loadErrs := make([]error, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.IngestWorkers)
	for i, path := range files {
		i, path := i, path
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			fragments[i], loadErrs[i] = csvsource.Load(path, schema)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, fragment := range fragments {
		if loadErrs[i] != nil {
			p.skipSource(result, files[i], loadErrs[i])
			continue
		}
		if _, err := fleet.Merge(fragment); err != nil {
			p.skipSource(result, files[i], err)
			continue
		}
		result.Rows = result.Rows.Add(fragment.Rows)
		p.metrics.ObserveSource(metrics.ResultSuccess)
		p.metrics.AddRows(fragment.Rows.Accepted, fragment.Rows.Imputed, fragment.Rows.Skipped)
		if fragment.Rows.Skipped > 0 {
			p.logger.Printf("dashboard: source=%s skipped_rows=%d", files[i], fragment.Rows.Skipped)
		}
	}
	return fleet, nil
}

func (p *Pipeline) skipSource(result *Result, path string, err error) {
	result.SkippedSources++
	p.metrics.ObserveSource(metrics.ResultError)
	p.logger.Printf("dashboard: source skipped path=%s: %v", path, err)
}

// renderCharts writes each chart that renders and the composite of those that
// did. It returns the composite PNG, or nil when no chart rendered.
func (p *Pipeline) renderCharts(out *artifact.Writer, result *Result, summary reporting.Summary) ([]byte, error) {
	renders := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{charts.TrendDailyFile, func() ([]byte, error) { return charts.RenderDailyTrend(summary.Daily) }},
		{charts.AvgWeeklyFile, func() ([]byte, error) { return charts.RenderWeeklyAverage(summary.WeeklyAverages) }},
		{charts.PeakScatterFile, func() ([]byte, error) { return charts.RenderPeakScatter(summary.PeakByBuilding) }},
	}
	var images [][]byte
	for _, r := range renders {
		data, err := r.render()
		if err != nil {
			p.metrics.ObserveArtifact(r.name, metrics.ResultSkipped)
			p.logger.Printf("dashboard: chart skipped name=%s: %v", r.name, err)
			continue
		}
		if err := p.publishBytes(out, result, r.name, data); err != nil {
			return nil, err
		}
		images = append(images, data)
		result.Charts++
	}
	if len(images) == 0 {
		p.metrics.ObserveArtifact(charts.DashboardFile, metrics.ResultSkipped)
		p.logger.Printf("dashboard: composite skipped: no chart rendered")
		return nil, nil
	}
	composite, err := charts.Composite(images...)
	if err != nil {
		p.metrics.ObserveArtifact(charts.DashboardFile, metrics.ResultSkipped)
		p.logger.Printf("dashboard: composite skipped: %v", err)
		return nil, nil
	}
	if err := p.publishBytes(out, result, charts.DashboardFile, composite); err != nil {
		return nil, err
	}
	return composite, nil
}

func (p *Pipeline) writeDocuments(out *artifact.Writer, result *Result, summary reporting.Summary, dashboard []byte) error {
	docs := []struct {
		name  string
		build func() ([]byte, error)
	}{
		{SummaryXLSXFile, func() ([]byte, error) { return interfaces.BuildSummaryXLSX(summary) }},
		{SummaryPDFFile, func() ([]byte, error) { return interfaces.BuildSummaryPDF(summary, dashboard) }},
	}
	for _, doc := range docs {
		data, err := doc.build()
		if err != nil {
			p.metrics.ObserveArtifact(doc.name, metrics.ResultError)
			p.logger.Printf("dashboard: document skipped name=%s: %v", doc.name, err)
			continue
		}
		if err := p.publishBytes(out, result, doc.name, data); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) export(ctx context.Context, runKey string, summary reporting.Summary, series metering.Series) {
	for _, exporter := range p.exporters {
		if err := exporter.Export(ctx, runKey, summary, series); err != nil {
			p.metrics.ObserveExport(exporter.Name(), metrics.ResultError)
			p.logger.Printf("dashboard: export failed sink=%s: %v", exporter.Name(), err)
			continue
		}
		p.metrics.ObserveExport(exporter.Name(), metrics.ResultSuccess)
		p.logger.Printf("dashboard: exported sink=%s run=%s", exporter.Name(), runKey)
	}
}

// publish writes an artifact. A failed write means the output directory is
// no longer usable, which ends the run.
func (p *Pipeline) publish(out *artifact.Writer, result *Result, name string, fn func(io.Writer) error) error {
	path, err := out.Write(name, fn)
	return p.record(result, name, path, err)
}

func (p *Pipeline) publishBytes(out *artifact.Writer, result *Result, name string, data []byte) error {
	path, err := out.WriteBytes(name, data)
	return p.record(result, name, path, err)
}

func (p *Pipeline) record(result *Result, name, path string, err error) error {
	if err != nil {
		p.metrics.ObserveArtifact(name, metrics.ResultError)
		return fmt.Errorf("%w: %v", artifact.ErrOutputUnavailable, err)
	}
	p.metrics.ObserveArtifact(name, metrics.ResultSuccess)
	result.Artifacts = append(result.Artifacts, path)
	return nil
}
