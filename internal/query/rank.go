package query

import (
	"sort"

	"github.com/croplens/croplens/internal/dataset"
)

// AreaValue is one (Area, Value) ranking entry.
type AreaValue struct {
	Area  string
	Value float64
	Unit  string
}

// ItemValue is one (Item, Value) ranking entry.
type ItemValue struct {
	Item  string
	Value float64
	Unit  string
}

// TopProducers ranks areas by Production of item at year, descending.
// Only positive values rank; zero and negative values are treated as
// absent here. Ties break by Area ascending so equal values always come
// back in the same order. The result is truncated to n.
func TopProducers(ds *dataset.Dataset, item string, year, n int) []AreaValue {
	if n <= 0 {
		return nil
	}
	var out []AreaValue
	for _, rec := range ds.Records {
		if rec.Item != item || rec.Element != ElementProduction || rec.Year != year {
			continue
		}
		if !rec.HasValue || rec.Value <= 0 {
			continue
		}
		out = append(out, AreaValue{Area: rec.Area, Value: rec.Value, Unit: rec.Unit})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Area < out[j].Area
		}
		return out[i].Value > out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RegionalComparison returns every area's Production of item at year,
// descending by value. Missing values are excluded but zero and
// negative values are kept, unlike TopProducers: the comparison view
// shows who reported nothing produced, the ranking view does not.
func RegionalComparison(ds *dataset.Dataset, item string, year int) []AreaValue {
	var out []AreaValue
	for _, rec := range ds.Records {
		if rec.Item != item || rec.Element != ElementProduction || rec.Year != year {
			continue
		}
		if !rec.HasValue {
			continue
		}
		out = append(out, AreaValue{Area: rec.Area, Value: rec.Value, Unit: rec.Unit})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Area < out[j].Area
		}
		return out[i].Value > out[j].Value
	})
	return out
}

// CountryPortfolio ranks the items area produced at year, descending by
// Production value, positive values only, truncated to topN. Ties break
// by Item ascending.
func CountryPortfolio(ds *dataset.Dataset, area string, year, topN int) []ItemValue {
	if topN <= 0 {
		return nil
	}
	var out []ItemValue
	for _, rec := range ds.Records {
		if rec.Area != area || rec.Element != ElementProduction || rec.Year != year {
			continue
		}
		if !rec.HasValue || rec.Value <= 0 {
			continue
		}
		out = append(out, ItemValue{Item: rec.Item, Value: rec.Value, Unit: rec.Unit})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Item < out[j].Item
		}
		return out[i].Value > out[j].Value
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
