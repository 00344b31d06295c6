package query

import (
	"sort"

	"github.com/croplens/croplens/internal/dataset"
)

// ItemTotal is one row of the production summary: worldwide Production
// of an (Item, Unit) pair summed over a single year.
type ItemTotal struct {
	Item  string
	Unit  string
	Total float64
}

// ProductionSummary groups Production at the given year by (Item, Unit)
// and sums the values. Groups whose sum is not positive are dropped.
// Descending by total, ties by Item ascending.
func ProductionSummary(ds *dataset.Dataset, year int) []ItemTotal {
	type groupKey struct {
		item, unit string
	}
	sums := make(map[groupKey]float64)
	for _, rec := range ds.Records {
		if rec.Element != ElementProduction || rec.Year != year {
			continue
		}
		if !rec.HasValue {
			continue
		}
		sums[groupKey{rec.Item, rec.Unit}] += rec.Value
	}
	out := make([]ItemTotal, 0, len(sums))
	for k, total := range sums {
		if total <= 0 {
			continue
		}
		out = append(out, ItemTotal{Item: k.item, Unit: k.unit, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Item < out[j].Item
		}
		return out[i].Total > out[j].Total
	})
	return out
}

// MissingReport is the dataset-wide missing-value audit. Counts come
// from the loader's slot accounting, so a wide-shape source reports the
// cells its pivot dropped.
type MissingReport struct {
	TotalCells   int
	MissingCells int
	Percentage   float64
	ByYear       []YearMissing
}

// YearMissing is the audit for one year.
type YearMissing struct {
	Year    int
	Cells   int
	Missing int
}

// Missing builds the missing-value report, years ascending. Percentage
// is 0 for an empty dataset.
func Missing(ds *dataset.Dataset) MissingReport {
	rep := MissingReport{}
	years := make([]int, 0, len(ds.CellsByYear))
	for y := range ds.CellsByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		cells := ds.CellsByYear[y]
		missing := ds.MissingByYear[y]
		rep.TotalCells += cells
		rep.MissingCells += missing
		rep.ByYear = append(rep.ByYear, YearMissing{Year: y, Cells: cells, Missing: missing})
	}
	if rep.TotalCells > 0 {
		rep.Percentage = float64(rep.MissingCells) / float64(rep.TotalCells) * 100
	}
	return rep
}
