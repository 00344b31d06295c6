// Package query implements the read side of CropLens: pure functions
// over an immutable dataset.Dataset. Every operation returns plain
// slices; an empty result is a valid outcome, not an error, and
// computations that can be mathematically undefined report ok == false
// instead of inventing a zero.
package query

import (
	"github.com/croplens/croplens/internal/dataset"
)

// ElementProduction is the element name the ranking and summary
// operations are defined over.
const ElementProduction = "Production"

// Filter returns the Records matching every provided predicate. An
// empty string places no constraint on that dimension, so
// Filter(ds, "", "", "") returns the whole table. Input order is
// preserved.
func Filter(ds *dataset.Dataset, area, item, element string) []dataset.Record {
	var out []dataset.Record
	for _, rec := range ds.Records {
		if area != "" && rec.Area != area {
			continue
		}
		if item != "" && rec.Item != item {
			continue
		}
		if element != "" && rec.Element != element {
			continue
		}
		out = append(out, rec)
	}
	return out
}
