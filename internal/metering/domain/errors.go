package metering

import "errors"

var (
	// ErrSourceUnavailable is returned when a source directory or file cannot be read.
	ErrSourceUnavailable = errors.New("metering: source unavailable")
	// ErrSchemaMismatch is returned when a source lacks the timestamp or value column.
	ErrSchemaMismatch = errors.New("metering: schema mismatch")
	// ErrMalformedRow is returned for a row whose timestamp cannot be parsed.
	// Unparseable values become gaps for the imputation policy instead.
	// Ingestion counts these rows and never surfaces them individually.
	ErrMalformedRow = errors.New("metering: malformed row")
	// ErrEmptyDataset is reported when no valid reading exists across all sources.
	ErrEmptyDataset = errors.New("metering: empty dataset")
	// ErrEmptyBuildingName is returned when a building name cannot be derived.
	ErrEmptyBuildingName = errors.New("metering: empty building name")
	// ErrInvalidReading is returned when a reading violates its invariants.
	ErrInvalidReading = errors.New("metering: invalid reading")
)
