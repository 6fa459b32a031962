package metering

import (
	"path/filepath"
	"sort"
	"strings"
)

// DefaultNameSeparator splits a source name into building name and suffix.
const DefaultNameSeparator = "_"

// Fragment is the isolated result of ingesting one source.
type Fragment struct {
	Source   string
	Building string
	Readings []Reading
	Rows     RowStats
}

// RowStats counts what happened to the rows of one source.
type RowStats struct {
	Total    int
	Accepted int
	Imputed  int
	Skipped  int
}

// Add merges two row counters.
func (s RowStats) Add(other RowStats) RowStats {
	return RowStats{
		Total:    s.Total + other.Total,
		Accepted: s.Accepted + other.Accepted,
		Imputed:  s.Imputed + other.Imputed,
		Skipped:  s.Skipped + other.Skipped,
	}
}

// BuildingNameFromSource derives the building name from a source identifier:
// the base name without extension, cut at the first separator.
func BuildingNameFromSource(source, sep string) (string, error) {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if sep == "" {
		sep = DefaultNameSeparator
	}
	name, _, _ := strings.Cut(base, sep)
	name = strings.TrimSpace(name)
	if name == "" || name == "." {
		return "", ErrEmptyBuildingName
	}
	return name, nil
}

// Fleet owns every building of one run.
type Fleet struct {
	separator string
	buildings map[string]*Building
	order     []string
}

// NewFleet creates an empty fleet using sep to derive building names.
func NewFleet(sep string) *Fleet {
	if sep == "" {
		sep = DefaultNameSeparator
	}
	return &Fleet{
		separator: sep,
		buildings: make(map[string]*Building),
	}
}

// IngestSource adds readings of a source to the building named after it.
// The building is registered even when readings is empty.
func (f *Fleet) IngestSource(source string, readings []Reading) (*Building, error) {
	name, err := BuildingNameFromSource(source, f.separator)
	if err != nil {
		return nil, err
	}
	return f.addTo(name, readings)
}

// Merge adds a parsed fragment. Fragments must be merged by a single goroutine.
func (f *Fleet) Merge(fragment Fragment) (*Building, error) {
	if fragment.Building == "" {
		return f.IngestSource(fragment.Source, fragment.Readings)
	}
	return f.addTo(fragment.Building, fragment.Readings)
}

func (f *Fleet) addTo(name string, readings []Reading) (*Building, error) {
	b, ok := f.buildings[name]
	if !ok {
		var err error
		b, err = NewBuilding(name)
		if err != nil {
			return nil, err
		}
		f.buildings[name] = b
		f.order = append(f.order, name)
	}
	for _, r := range readings {
		b.Add(r)
	}
	return b, nil
}

// Building looks up a building by name.
func (f *Fleet) Building(name string) (*Building, bool) {
	b, ok := f.buildings[name]
	return b, ok
}

// Buildings returns every building in insertion order, empty ones included.
func (f *Fleet) Buildings() []*Building {
	out := make([]*Building, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.buildings[name])
	}
	return out
}

// Names returns building names sorted lexicographically.
func (f *Fleet) Names() []string {
	names := make([]string, len(f.order))
	copy(names, f.order)
	sort.Strings(names)
	return names
}

// Len returns the number of buildings.
func (f *Fleet) Len() int { return len(f.order) }

// ReadingCount returns the number of readings across buildings.
func (f *Fleet) ReadingCount() int {
	var n int
	for _, b := range f.buildings {
		n += b.Len()
	}
	return n
}

// Combined flattens every building's sorted readings, in insertion order.
func (f *Fleet) Combined() Series {
	series := make(Series, 0, f.ReadingCount())
	for _, name := range f.order {
		for _, r := range f.buildings[name].SortedSeries() {
			series = append(series, Point{Building: name, Timestamp: r.Timestamp, Value: r.Value})
		}
	}
	return series
}
