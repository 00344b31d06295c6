package query

import (
	"sort"

	"github.com/croplens/croplens/internal/dataset"
)

// Areas returns the distinct area names, sorted.
func Areas(ds *dataset.Dataset) []string {
	return distinct(ds, func(r dataset.Record) string { return r.Area })
}

// Items returns the distinct item names, sorted.
func Items(ds *dataset.Dataset) []string {
	return distinct(ds, func(r dataset.Record) string { return r.Item })
}

// ElementNames returns the distinct element names, sorted.
func ElementNames(ds *dataset.Dataset) []string {
	return distinct(ds, func(r dataset.Record) string { return r.Element })
}

// Years returns the distinct years, ascending.
func Years(ds *dataset.Dataset) []int {
	seen := make(map[int]struct{})
	for _, rec := range ds.Records {
		seen[rec.Year] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// LatestYear returns the highest year in the dataset, or 0 when it is
// empty.
func LatestYear(ds *dataset.Dataset) int {
	latest := 0
	for _, rec := range ds.Records {
		if rec.Year > latest {
			latest = rec.Year
		}
	}
	return latest
}

func distinct(ds *dataset.Dataset, key func(dataset.Record) string) []string {
	seen := make(map[string]struct{})
	for _, rec := range ds.Records {
		k := key(rec)
		if k == "" {
			continue
		}
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
