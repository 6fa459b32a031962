package influx

import (
	"context"
	"errors"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	metering "campus-energy/internal/metering/domain"
	reporting "campus-energy/internal/reporting/domain"
)

const (
	defaultMeasurement = "energy_reading"
	defaultBatchSize   = 500
)

// Config holds the InfluxDB v2 connection settings.
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// PointWriter is the subset of the blocking write API the exporter uses.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// ReadingWriter writes cleaned readings as InfluxDB points.
type ReadingWriter struct {
	writer      PointWriter
	measurement string
	batchSize   int
	close       func()
}

// NewReadingWriter connects to InfluxDB and verifies its health.
func NewReadingWriter(ctx context.Context, cfg Config) (*ReadingWriter, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("influx export: url, org and bucket are required")
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("influx export: health check: %w", err)
	}
	w := NewReadingWriterFor(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Measurement)
	w.close = client.Close
	return w, nil
}

// NewReadingWriterFor wraps an existing point writer.
func NewReadingWriterFor(writer PointWriter, measurement string) *ReadingWriter {
	if measurement == "" {
		measurement = defaultMeasurement
	}
	return &ReadingWriter{
		writer:      writer,
		measurement: measurement,
		batchSize:   defaultBatchSize,
	}
}

// Name identifies the sink in logs and metrics.
func (w *ReadingWriter) Name() string { return "influx" }

// Export writes one point per reading, tagged by building, in batches.
func (w *ReadingWriter) Export(ctx context.Context, _ string, _ reporting.Summary, series metering.Series) error {
	if w == nil || w.writer == nil {
		return errors.New("influx export: nil writer")
	}
	batch := make([]*write.Point, 0, w.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.writer.WritePoint(ctx, batch...); err != nil {
			return fmt.Errorf("influx export: %w", err)
		}
		batch = batch[:0]
		return nil
	}
	for _, p := range series {
		batch = append(batch, write.NewPoint(
			w.measurement,
			map[string]string{"building": p.Building},
			map[string]interface{}{"kwh": p.Value},
			p.Timestamp,
		))
		if len(batch) == w.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Close releases the client.
func (w *ReadingWriter) Close() {
	if w != nil && w.close != nil {
		w.close()
	}
}
