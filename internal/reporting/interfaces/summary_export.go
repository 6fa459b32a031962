package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"campus-energy/internal/analytics/domain/statistic"
	reporting "campus-energy/internal/reporting/domain"
)

const dashboardImageName = "dashboard"

// BuildSummaryPDF renders the summary figures, the building table and, when
// given, the composite dashboard image.
func BuildSummaryPDF(s reporting.Summary, dashboardPNG []byte) ([]byte, error) {
	data := NewReportData(s)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Campus Energy Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", s.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total campus consumption (kWh): %s", data.CampusTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Highest-consuming building: %s", data.TopBuilding))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Peak load hour of day (0-23): %s", data.PeakHour))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Buildings: %d  Readings: %d", s.BuildingCount, s.ReadingCount))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Building", "1", 0, "C", false, 0, "")
	pdf.CellFormat(32, 6, "Mean", "1", 0, "C", false, 0, "")
	pdf.CellFormat(32, 6, "Min", "1", 0, "C", false, 0, "")
	pdf.CellFormat(32, 6, "Max", "1", 0, "C", false, 0, "")
	pdf.CellFormat(36, 6, "Total (kWh)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, b := range s.Buildings {
		pdf.CellFormat(50, 6, b.Building, "1", 0, "L", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%.3f", b.Mean), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%.3f", b.Min), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%.3f", b.Max), "1", 0, "R", false, 0, "")
		pdf.CellFormat(36, 6, fmt.Sprintf("%.3f", b.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(dashboardPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(dashboardImageName, opts, bytes.NewReader(dashboardPNG))
		if err := pdf.Error(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		pdf.ImageOptions(dashboardImageName, 10, 10, 190, 0, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryXLSX renders the summary, per-building statistics and the daily
// and weekly totals as one workbook.
func BuildSummaryXLSX(s reporting.Summary) ([]byte, error) {
	data := NewReportData(s)

	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	buildingsSheet := "buildings"
	f.SetSheetName("Sheet1", summarySheet)
	for _, name := range []string{buildingsSheet, "daily", "weekly"} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Campus Energy Summary")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", data.Generated)
	_ = f.SetCellValue(summarySheet, "A4", "Total campus consumption (kWh)")
	_ = f.SetCellValue(summarySheet, "B4", s.CampusTotal)
	_ = f.SetCellValue(summarySheet, "A5", "Highest-consuming building")
	_ = f.SetCellValue(summarySheet, "B5", data.TopBuilding)
	_ = f.SetCellValue(summarySheet, "A6", "Peak load hour of day (0-23)")
	_ = f.SetCellValue(summarySheet, "B6", data.PeakHour)
	_ = f.SetCellValue(summarySheet, "A7", "Buildings")
	_ = f.SetCellValue(summarySheet, "B7", s.BuildingCount)
	_ = f.SetCellValue(summarySheet, "A8", "Readings")
	_ = f.SetCellValue(summarySheet, "B8", s.ReadingCount)

	_ = f.SetCellValue(buildingsSheet, "A1", "Building")
	_ = f.SetCellValue(buildingsSheet, "B1", "Mean")
	_ = f.SetCellValue(buildingsSheet, "C1", "Min")
	_ = f.SetCellValue(buildingsSheet, "D1", "Max")
	_ = f.SetCellValue(buildingsSheet, "E1", "Total (kWh)")
	_ = f.SetCellValue(buildingsSheet, "F1", "Readings")
	for i, b := range s.Buildings {
		row := i + 2
		_ = f.SetCellValue(buildingsSheet, fmt.Sprintf("A%d", row), b.Building)
		_ = f.SetCellValue(buildingsSheet, fmt.Sprintf("B%d", row), b.Mean)
		_ = f.SetCellValue(buildingsSheet, fmt.Sprintf("C%d", row), b.Min)
		_ = f.SetCellValue(buildingsSheet, fmt.Sprintf("D%d", row), b.Max)
		_ = f.SetCellValue(buildingsSheet, fmt.Sprintf("E%d", row), b.Total)
		_ = f.SetCellValue(buildingsSheet, fmt.Sprintf("F%d", row), b.Count)
	}

	writeBucketSheet(f, "daily", s.Daily)
	writeBucketSheet(f, "weekly", s.Weekly)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBucketSheet(f *excelize.File, sheet string, buckets []statistic.Bucket) {
	_ = f.SetCellValue(sheet, "A1", "Building")
	_ = f.SetCellValue(sheet, "B1", "Period")
	_ = f.SetCellValue(sheet, "C1", "kWh")
	_ = f.SetCellValue(sheet, "D1", "Readings")
	for i, b := range buckets {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.Building)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Key.String())
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.Value)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.Count)
	}
}
