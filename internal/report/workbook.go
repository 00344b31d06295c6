package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/croplens/croplens/internal/dataset"
	"github.com/croplens/croplens/internal/query"
)

const (
	sheetOverview   = "Overview"
	sheetProduction = "Production"
	sheetProducers  = "Top Producers"
	sheetMissing    = "Missing Data"

	producersPerItem = 15
	producerItems    = 5
)

// WriteWorkbook writes a four-sheet XLSX report: dataset overview,
// production summary for the latest year, top producers for the top
// items, and the missing-data audit.
func WriteWorkbook(ds *dataset.Dataset, path string) error {
	if ds.Len() == 0 {
		return fmt.Errorf("nothing to export: dataset is empty")
	}
	year := query.LatestYear(ds)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetOverview)
	for _, name := range []string{sheetProduction, sheetProducers, sheetMissing} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	writeOverviewSheet(f, ds, year)
	summary := query.ProductionSummary(ds, year)
	writeProductionSheet(f, summary)
	writeProducersSheet(f, ds, summary, year)
	writeMissingSheet(f, ds)

	if idx, err := f.GetSheetIndex(sheetOverview); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeOverviewSheet(f *excelize.File, ds *dataset.Dataset, year int) {
	p := ds.Profile()
	miss := query.Missing(ds)

	rows := []struct {
		label string
		value any
	}{
		{"Source", ds.Source},
		{"Shape", ds.Shape.String()},
		{"Sampled", ds.Sampled},
		{"Records", p.Records},
		{"Areas", p.Areas},
		{"Items", p.Items},
		{"Elements", p.Elements},
		{"First year", p.YearMin},
		{"Latest year", year},
		{"Missing values", miss.MissingCells},
		{"Missing %", fmt.Sprintf("%.2f", miss.Percentage)},
	}
	for i, r := range rows {
		f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", i+1), r.label)
		f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", i+1), r.value)
	}
	f.SetColWidth(sheetOverview, "A", "A", 18)
	f.SetColWidth(sheetOverview, "B", "B", 60)
}

func writeProductionSheet(f *excelize.File, summary []query.ItemTotal) {
	headers := []string{"Item", "Unit", "Total_Production"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetProduction, cell, h)
		f.SetColWidth(sheetProduction, cell[:1], cell[:1], 24)
	}
	for i, row := range summary {
		r := i + 2
		f.SetCellValue(sheetProduction, fmt.Sprintf("A%d", r), row.Item)
		f.SetCellValue(sheetProduction, fmt.Sprintf("B%d", r), row.Unit)
		f.SetCellValue(sheetProduction, fmt.Sprintf("C%d", r), row.Total)
	}
}

func writeProducersSheet(f *excelize.File, ds *dataset.Dataset, summary []query.ItemTotal, year int) {
	headers := []string{"Item", "Rank", "Area", "Value", "Unit"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetProducers, cell, h)
		f.SetColWidth(sheetProducers, cell[:1], cell[:1], 22)
	}
	items := summary
	if len(items) > producerItems {
		items = items[:producerItems]
	}
	row := 2
	for _, it := range items {
		top := query.TopProducers(ds, it.Item, year, producersPerItem)
		for rank, av := range top {
			f.SetCellValue(sheetProducers, fmt.Sprintf("A%d", row), it.Item)
			f.SetCellValue(sheetProducers, fmt.Sprintf("B%d", row), rank+1)
			f.SetCellValue(sheetProducers, fmt.Sprintf("C%d", row), av.Area)
			f.SetCellValue(sheetProducers, fmt.Sprintf("D%d", row), av.Value)
			f.SetCellValue(sheetProducers, fmt.Sprintf("E%d", row), av.Unit)
			row++
		}
	}
}

func writeMissingSheet(f *excelize.File, ds *dataset.Dataset) {
	rep := query.Missing(ds)
	headers := []string{"Year", "Cells", "Missing", "Missing %"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetMissing, cell, h)
		f.SetColWidth(sheetMissing, cell[:1], cell[:1], 14)
	}
	for i, y := range rep.ByYear {
		r := i + 2
		pct := 0.0
		if y.Cells > 0 {
			pct = float64(y.Missing) / float64(y.Cells) * 100
		}
		f.SetCellValue(sheetMissing, fmt.Sprintf("A%d", r), y.Year)
		f.SetCellValue(sheetMissing, fmt.Sprintf("B%d", r), y.Cells)
		f.SetCellValue(sheetMissing, fmt.Sprintf("C%d", r), y.Missing)
		f.SetCellValue(sheetMissing, fmt.Sprintf("D%d", r), fmt.Sprintf("%.2f", pct))
	}
	totalRow := len(rep.ByYear) + 2
	f.SetCellValue(sheetMissing, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(sheetMissing, fmt.Sprintf("B%d", totalRow), rep.TotalCells)
	f.SetCellValue(sheetMissing, fmt.Sprintf("C%d", totalRow), rep.MissingCells)
	f.SetCellValue(sheetMissing, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("%.2f", rep.Percentage))
}
