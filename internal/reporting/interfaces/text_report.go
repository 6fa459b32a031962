package interfaces

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	reporting "campus-energy/internal/reporting/domain"
)

const notAvailable = "n/a"

// DefaultTemplate is the fixed layout of summary.txt.
const DefaultTemplate = `Campus Energy Summary
Generated: {{.Generated}}

Total campus consumption (kWh): {{.CampusTotal}}
Highest-consuming building: {{.TopBuilding}}
Peak load hour of day (0-23): {{.PeakHour}}
Buildings tracked: {{.Buildings}} (readings: {{.Readings}})

Weekly trends: See output CSVs for per-building weekly totals.
`

// ReportData provides fields for rendering the text report.
type ReportData struct {
	Generated   string
	CampusTotal string
	TopBuilding string
	PeakHour    string
	Buildings   int
	Readings    int
}

// NewReportData formats summary figures for the template.
func NewReportData(s reporting.Summary) ReportData {
	data := ReportData{
		Generated:   s.GeneratedAt.Format(time.RFC3339),
		CampusTotal: fmt.Sprintf("%.2f", s.CampusTotal),
		TopBuilding: s.TopBuilding,
		PeakHour:    fmt.Sprintf("%d", s.PeakHour),
		Buildings:   s.BuildingCount,
		Readings:    s.ReadingCount,
	}
	if data.TopBuilding == "" {
		data.TopBuilding = notAvailable
	}
	if s.PeakHour == reporting.NoPeakHour {
		data.PeakHour = notAvailable
	}
	return data
}

// TextReport renders the plain-text summary.
type TextReport struct {
	tpl *template.Template
}

// NewTextReport parses a report template, falling back to DefaultTemplate.
func NewTextReport(tpl string) (*TextReport, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("summary").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &TextReport{tpl: parsed}, nil
}

// Render applies the template to a summary.
func (r *TextReport) Render(s reporting.Summary) ([]byte, error) {
	if r == nil || r.tpl == nil {
		return nil, errors.New("text report: nil template")
	}
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, NewReportData(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
