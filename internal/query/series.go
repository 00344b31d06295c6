package query

import (
	"sort"

	"github.com/croplens/croplens/internal/dataset"
)

// YearValue is one point of a time series.
type YearValue struct {
	Year  int
	Value float64
	Unit  string
}

// TimeSeries returns the (Year, Value, Unit) sequence for one
// (area, item, element) triple, ascending by Year. Missing values are
// excluded. Empty slice when nothing matches.
func TimeSeries(ds *dataset.Dataset, area, item, element string) []YearValue {
	var out []YearValue
	for _, rec := range ds.Records {
		if rec.Area != area || rec.Item != item || rec.Element != element {
			continue
		}
		if !rec.HasValue {
			continue
		}
		out = append(out, YearValue{Year: rec.Year, Value: rec.Value, Unit: rec.Unit})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
