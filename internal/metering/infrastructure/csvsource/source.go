package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"campus-energy/internal/metering/cleaning"
	metering "campus-energy/internal/metering/domain"
)

const (
	DefaultTimestampColumn = "timestamp"
	DefaultValueColumn     = "kwh"
	DefaultPattern         = "*.csv"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Schema describes how rows of a source are interpreted.
type Schema struct {
	TimestampColumn string
	ValueColumn     string
	// DetectColumns falls back to keyword classification when the configured
	// column names are absent from the header.
	DetectColumns bool
	Policy        cleaning.Policy
	Separator     string
}

func (s Schema) withDefaults() Schema {
	if s.TimestampColumn == "" {
		s.TimestampColumn = DefaultTimestampColumn
	}
	if s.ValueColumn == "" {
		s.ValueColumn = DefaultValueColumn
	}
	if s.Policy == nil {
		s.Policy = cleaning.SkipMissing{}
	}
	if s.Separator == "" {
		s.Separator = metering.DefaultNameSeparator
	}
	return s
}

// Discover lists the files of dir matching pattern in lexical order.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", metering.ErrSourceUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s: not a directory", metering.ErrSourceUnavailable, dir)
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, path := range matches {
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Load reads one source file completely and closes it before returning.
func Load(path string, schema Schema) (metering.Fragment, error) {
	file, err := os.Open(path)
	if err != nil {
		return metering.Fragment{}, fmt.Errorf("%w: %v", metering.ErrSourceUnavailable, err)
	}
	defer file.Close()
	return Parse(file, path, schema)
}

type candidate struct {
	ts    time.Time
	value float64
}

// Parse converts tabular rows into readings. Rows with an unparseable timestamp
// are skipped; rows with a missing or non-numeric value are handed to the
// imputation policy and skipped when it leaves them empty.
func Parse(r io.Reader, source string, schema Schema) (metering.Fragment, error) {
	schema = schema.withDefaults()
	name, err := metering.BuildingNameFromSource(source, schema.Separator)
	if err != nil {
		return metering.Fragment{}, err
	}
	fragment := metering.Fragment{Source: source, Building: name}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fragment, fmt.Errorf("%w: %s: empty source", metering.ErrSchemaMismatch, source)
		}
		return fragment, fmt.Errorf("%w: %s: %v", metering.ErrSourceUnavailable, source, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	tsIdx, valueIdx, err := resolveColumns(header, schema)
	if err != nil {
		return fragment, fmt.Errorf("%w: %s", err, source)
	}

	var rows []candidate
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				fragment.Rows.Total++
				fragment.Rows.Skipped++
				continue
			}
			return fragment, fmt.Errorf("%w: %s: %v", metering.ErrSourceUnavailable, source, err)
		}
		fragment.Rows.Total++
		ts, err := ParseTimestamp(field(record, tsIdx))
		if err != nil {
			fragment.Rows.Skipped++
			continue
		}
		rows = append(rows, candidate{ts: ts, value: parseValue(field(record, valueIdx))})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.value
	}
	filled := schema.Policy.Impute(values)

	fragment.Readings = make([]metering.Reading, 0, len(rows))
	for i, row := range rows {
		reading, err := metering.NewReading(row.ts, filled[i])
		if err != nil {
			fragment.Rows.Skipped++
			continue
		}
		if math.IsNaN(row.value) {
			fragment.Rows.Imputed++
		}
		fragment.Rows.Accepted++
		fragment.Readings = append(fragment.Readings, reading)
	}
	return fragment, nil
}

func resolveColumns(header []string, schema Schema) (int, int, error) {
	tsIdx, valueIdx := indexOf(header, schema.TimestampColumn), indexOf(header, schema.ValueColumn)
	if (tsIdx < 0 || valueIdx < 0) && schema.DetectColumns {
		matches := cleaning.ClassifyColumns(header, cleaning.MeterRules)
		if tsIdx < 0 && matches[cleaning.CategoryTimestamp].Found {
			tsIdx = matches[cleaning.CategoryTimestamp].Index
		}
		if valueIdx < 0 && matches[cleaning.CategoryValue].Found {
			valueIdx = matches[cleaning.CategoryValue].Index
		}
	}
	if tsIdx < 0 {
		return -1, -1, fmt.Errorf("%w: missing column %q", metering.ErrSchemaMismatch, schema.TimestampColumn)
	}
	if valueIdx < 0 || valueIdx == tsIdx {
		return -1, -1, fmt.Errorf("%w: missing column %q", metering.ErrSchemaMismatch, schema.ValueColumn)
	}
	return tsIdx, valueIdx, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseValue(raw string) float64 {
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// ParseTimestamp accepts the layouts meter exports commonly use. Values without
// a zone are interpreted as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, metering.ErrMalformedRow
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", metering.ErrMalformedRow, raw)
}
