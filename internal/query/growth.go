package query

import (
	"math"

	"github.com/croplens/croplens/internal/dataset"
)

// CAGR computes the compound annual growth rate of Production for
// (area, item) between startYear and endYear, as a percentage:
//
//	((end/start)^(1/(endYear-startYear)) - 1) * 100
//
// The computation is undefined, ok == false, when either endpoint is
// missing, either endpoint is <= 0, or the two years are equal (the
// exponent would divide by zero). Callers render the undefined case as
// an absent value, never as 0.
func CAGR(ds *dataset.Dataset, area, item string, startYear, endYear int) (pct float64, ok bool) {
	if endYear == startYear {
		return 0, false
	}
	start, startOK := productionAt(ds, area, item, startYear)
	end, endOK := productionAt(ds, area, item, endYear)
	if !startOK || !endOK {
		return 0, false
	}
	if start <= 0 || end <= 0 {
		return 0, false
	}
	n := float64(endYear - startYear)
	return (math.Pow(end/start, 1/n) - 1) * 100, true
}

func productionAt(ds *dataset.Dataset, area, item string, year int) (float64, bool) {
	for _, rec := range ds.Records {
		if rec.Area != area || rec.Item != item || rec.Element != ElementProduction || rec.Year != year {
			continue
		}
		if !rec.HasValue {
			continue
		}
		return rec.Value, true
	}
	return 0, false
}
