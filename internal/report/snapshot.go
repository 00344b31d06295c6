// Package report produces the one-way exports: the latest-year CSV
// snapshot pair and the XLSX workbook. Nothing here reads back what it
// writes; the Dataset stays the only source of truth.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/croplens/croplens/internal/dataset"
	"github.com/croplens/croplens/internal/query"
	"github.com/croplens/croplens/internal/utils"
)

// Snapshot describes the files WriteSnapshot produced.
type Snapshot struct {
	Year        int
	CrossPath   string
	SummaryPath string
	CrossRows   int
	SummaryRows int
}

// WriteSnapshot exports the latest-year cross-section as
// latest_year_{year}.csv with columns Country, Item, Element, Unit,
// Value, and the production summary as production_summary_{year}.csv
// with columns Item, Unit, Total_Production. Both files are written
// atomically. Missing values export as empty cells.
func WriteSnapshot(ds *dataset.Dataset, outDir string) (*Snapshot, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("nothing to export: dataset is empty")
	}
	if err := utils.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	year := query.LatestYear(ds)
	snap := &Snapshot{
		Year:        year,
		CrossPath:   filepath.Join(outDir, fmt.Sprintf("latest_year_%d.csv", year)),
		SummaryPath: filepath.Join(outDir, fmt.Sprintf("production_summary_%d.csv", year)),
	}

	cross, n, err := crossSectionCSV(ds, year)
	if err != nil {
		return nil, err
	}
	snap.CrossRows = n
	if err := utils.SafeWriteFile(snap.CrossPath, cross); err != nil {
		return nil, fmt.Errorf("write %s: %w", snap.CrossPath, err)
	}

	summary, n, err := summaryCSV(ds, year)
	if err != nil {
		return nil, err
	}
	snap.SummaryRows = n
	if err := utils.SafeWriteFile(snap.SummaryPath, summary); err != nil {
		return nil, fmt.Errorf("write %s: %w", snap.SummaryPath, err)
	}
	return snap, nil
}

func crossSectionCSV(ds *dataset.Dataset, year int) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Country", "Item", "Element", "Unit", "Value"}); err != nil {
		return nil, 0, fmt.Errorf("write header: %w", err)
	}
	rows := 0
	for _, rec := range ds.Records {
		if rec.Year != year {
			continue
		}
		val := ""
		if rec.HasValue {
			val = strconv.FormatFloat(rec.Value, 'f', -1, 64)
		}
		if err := w.Write([]string{rec.Area, rec.Item, rec.Element, rec.Unit, val}); err != nil {
			return nil, 0, fmt.Errorf("write row: %w", err)
		}
		rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), rows, nil
}

func summaryCSV(ds *dataset.Dataset, year int) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Item", "Unit", "Total_Production"}); err != nil {
		return nil, 0, fmt.Errorf("write header: %w", err)
	}
	summary := query.ProductionSummary(ds, year)
	for _, row := range summary {
		total := strconv.FormatFloat(row.Total, 'f', -1, 64)
		if err := w.Write([]string{row.Item, row.Unit, total}); err != nil {
			return nil, 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), len(summary), nil
}
