package query

import (
	"math"
	"testing"

	"github.com/croplens/croplens/internal/dataset"
)

func rec(area, item, element string, year int, value float64) dataset.Record {
	return dataset.Record{
		Area:     area,
		Item:     item,
		Element:  element,
		Year:     year,
		Value:    value,
		HasValue: true,
		Unit:     "t",
	}
}

func missing(area, item, element string, year int) dataset.Record {
	return dataset.Record{Area: area, Item: item, Element: element, Year: year, Unit: "t"}
}

// testDataset assembles a Dataset the way the loader would, including
// the per-year slot accounting.
func testDataset(recs ...dataset.Record) *dataset.Dataset {
	ds := &dataset.Dataset{
		Records:       recs,
		CellsByYear:   make(map[int]int),
		MissingByYear: make(map[int]int),
	}
	for _, r := range recs {
		ds.CellsByYear[r.Year]++
		if !r.HasValue {
			ds.MissingByYear[r.Year]++
		}
	}
	return ds
}

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestFilter(t *testing.T) {
	ds := testDataset(
		rec("Afghanistan", "Apples", "Production", 2020, 500),
		rec("Afghanistan", "Wheat", "Production", 2020, 900),
		rec("Brazil", "Apples", "Yield", 2020, 12),
		rec("Brazil", "Apples", "Production", 2020, 800),
	)

	all := Filter(ds, "", "", "")
	if len(all) != 4 {
		t.Fatalf("unfiltered = %d records, want 4", len(all))
	}
	apples := Filter(ds, "", "Apples", "")
	if len(apples) != 3 {
		t.Fatalf("item filter = %d records, want 3", len(apples))
	}
	one := Filter(ds, "Brazil", "Apples", "Production")
	if len(one) != 1 || one[0].Value != 800 {
		t.Fatalf("full filter = %#v", one)
	}
	if got := Filter(ds, "Narnia", "", ""); len(got) != 0 {
		t.Fatalf("no-match filter = %d records, want empty", len(got))
	}
}

// Adding a predicate can only shrink the result: filter(a,i,e) is a
// subset of filter(a,i,-), which is a subset of filter(a,-,-).
func TestFilterMonotonicity(t *testing.T) {
	ds := testDataset(
		rec("Afghanistan", "Apples", "Production", 2020, 500),
		rec("Afghanistan", "Apples", "Yield", 2020, 3),
		rec("Afghanistan", "Wheat", "Production", 2020, 900),
		rec("Brazil", "Apples", "Production", 2020, 800),
	)

	narrow := Filter(ds, "Afghanistan", "Apples", "Production")
	mid := Filter(ds, "Afghanistan", "Apples", "")
	wide := Filter(ds, "Afghanistan", "", "")

	if !(len(narrow) <= len(mid) && len(mid) <= len(wide)) {
		t.Fatalf("sizes not monotone: %d, %d, %d", len(narrow), len(mid), len(wide))
	}
	contains := func(haystack []dataset.Record, needle dataset.Record) bool {
		for _, r := range haystack {
			if r == needle {
				return true
			}
		}
		return false
	}
	for _, r := range narrow {
		if !contains(mid, r) {
			t.Fatalf("narrow record %#v not in mid result", r)
		}
	}
	for _, r := range mid {
		if !contains(wide, r) {
			t.Fatalf("mid record %#v not in wide result", r)
		}
	}
}

func TestTimeSeries(t *testing.T) {
	// Out of order on purpose; one missing point; one foreign record.
	ds := testDataset(
		rec("Afghanistan", "Apples", "Production", 2021, 550),
		rec("Afghanistan", "Apples", "Production", 2020, 500),
		missing("Afghanistan", "Apples", "Production", 2019),
		rec("Brazil", "Apples", "Production", 2020, 800),
	)

	ts := TimeSeries(ds, "Afghanistan", "Apples", "Production")
	if len(ts) != 2 {
		t.Fatalf("series = %d points, want 2", len(ts))
	}
	if ts[0].Year != 2020 || ts[0].Value != 500 {
		t.Fatalf("first point = %#v", ts[0])
	}
	if ts[1].Year != 2021 || ts[1].Value != 550 {
		t.Fatalf("second point = %#v", ts[1])
	}
	if ts[0].Unit != "t" {
		t.Fatalf("unit = %q", ts[0].Unit)
	}

	if got := TimeSeries(ds, "Narnia", "Apples", "Production"); len(got) != 0 {
		t.Fatalf("no-match series = %d points, want empty", len(got))
	}
}

func TestTopProducers(t *testing.T) {
	ds := testDataset(
		rec("A", "Rice", "Production", 2023, 100),
		rec("B", "Rice", "Production", 2023, 300),
		rec("C", "Rice", "Production", 2023, 0),
		rec("D", "Rice", "Production", 2023, 200),
		rec("E", "Rice", "Yield", 2023, 999),
		rec("F", "Rice", "Production", 2022, 999),
	)

	top := TopProducers(ds, "Rice", 2023, 3)
	want := []AreaValue{
		{Area: "B", Value: 300, Unit: "t"},
		{Area: "D", Value: 200, Unit: "t"},
		{Area: "A", Value: 100, Unit: "t"},
	}
	if len(top) != len(want) {
		t.Fatalf("top = %#v, want %#v", top, want)
	}
	for i := range want {
		if top[i] != want[i] {
			t.Fatalf("top[%d] = %#v, want %#v", i, top[i], want[i])
		}
	}
}

func TestTopProducersBoundAndOrder(t *testing.T) {
	ds := testDataset(
		rec("A", "Rice", "Production", 2023, 100),
		rec("B", "Rice", "Production", 2023, 300),
		rec("D", "Rice", "Production", 2023, 200),
	)
	for _, n := range []int{0, 1, 2, 3, 10} {
		top := TopProducers(ds, "Rice", 2023, n)
		if len(top) > n {
			t.Fatalf("n=%d returned %d entries", n, len(top))
		}
		for i, av := range top {
			if av.Value <= 0 {
				t.Fatalf("n=%d entry %d not positive: %#v", n, i, av)
			}
			if i > 0 && top[i-1].Value < av.Value {
				t.Fatalf("n=%d not non-increasing: %#v", n, top)
			}
		}
	}
}

func TestTopProducersTieBreak(t *testing.T) {
	ds := testDataset(
		rec("Zambia", "Rice", "Production", 2023, 200),
		rec("Angola", "Rice", "Production", 2023, 200),
		rec("Malta", "Rice", "Production", 2023, 200),
	)
	top := TopProducers(ds, "Rice", 2023, 3)
	wantOrder := []string{"Angola", "Malta", "Zambia"}
	for i, want := range wantOrder {
		if top[i].Area != want {
			t.Fatalf("tie order = %#v, want %v", top, wantOrder)
		}
	}
}

func TestRegionalComparisonKeepsNonPositive(t *testing.T) {
	ds := testDataset(
		rec("A", "Rice", "Production", 2023, 100),
		rec("C", "Rice", "Production", 2023, 0),
		missing("B", "Rice", "Production", 2023),
	)
	cmp := RegionalComparison(ds, "Rice", 2023)
	if len(cmp) != 2 {
		t.Fatalf("comparison = %#v, want A and C", cmp)
	}
	if cmp[0].Area != "A" || cmp[1].Area != "C" || cmp[1].Value != 0 {
		t.Fatalf("comparison = %#v", cmp)
	}
}

func TestCAGRConcrete(t *testing.T) {
	ds := testDataset(
		rec("Afghanistan", "Apples", "Production", 2020, 500),
		rec("Afghanistan", "Apples", "Production", 2021, 550),
	)
	pct, ok := CAGR(ds, "Afghanistan", "Apples", 2020, 2021)
	if !ok {
		t.Fatalf("CAGR undefined, want 10.0")
	}
	if !almostEqual(pct, 10.0, 1e-9) {
		t.Fatalf("CAGR = %v, want 10.0", pct)
	}
}

func TestCAGRUndefined(t *testing.T) {
	ds := testDataset(
		rec("Afghanistan", "Apples", "Production", 2020, 500),
		rec("Afghanistan", "Apples", "Production", 2021, 550),
		rec("Afghanistan", "Wheat", "Production", 2020, 0),
		rec("Afghanistan", "Wheat", "Production", 2021, 100),
		missing("Brazil", "Apples", "Production", 2020),
		rec("Brazil", "Apples", "Production", 2021, 100),
	)

	cases := []struct {
		name       string
		area, item string
		start, end int
	}{
		{"same year", "Afghanistan", "Apples", 2020, 2020},
		{"missing start record", "Afghanistan", "Apples", 2019, 2021},
		{"missing start value", "Brazil", "Apples", 2020, 2021},
		{"zero start", "Afghanistan", "Wheat", 2020, 2021},
		{"unknown series", "Narnia", "Apples", 2020, 2021},
	}
	for _, tc := range cases {
		if _, ok := CAGR(ds, tc.area, tc.item, tc.start, tc.end); ok {
			t.Fatalf("%s: CAGR defined, want undefined", tc.name)
		}
	}
}

func TestProductionSummary(t *testing.T) {
	ds := testDataset(
		rec("A", "Rice", "Production", 2023, 100),
		rec("B", "Rice", "Production", 2023, 300),
		rec("A", "Wheat", "Production", 2023, 50),
		rec("A", "Eggs", "Production", 2023, 0),
		rec("A", "Rice", "Yield", 2023, 5),
		missing("C", "Wheat", "Production", 2023),
	)

	sum := ProductionSummary(ds, 2023)
	if len(sum) != 2 {
		t.Fatalf("summary = %#v, want Rice and Wheat", sum)
	}
	if sum[0].Item != "Rice" || sum[0].Total != 400 || sum[0].Unit != "t" {
		t.Fatalf("summary[0] = %#v", sum[0])
	}
	if sum[1].Item != "Wheat" || sum[1].Total != 50 {
		t.Fatalf("summary[1] = %#v", sum[1])
	}
}

func TestProductionSummaryGroupsByUnit(t *testing.T) {
	ds := testDataset(
		rec("A", "Eggs", "Production", 2023, 10),
		func() dataset.Record {
			r := rec("B", "Eggs", "Production", 2023, 7)
			r.Unit = "1000 No"
			return r
		}(),
	)
	sum := ProductionSummary(ds, 2023)
	if len(sum) != 2 {
		t.Fatalf("summary = %#v, want two (Item, Unit) groups", sum)
	}
}

func TestCountryPortfolio(t *testing.T) {
	ds := testDataset(
		rec("Afghanistan", "Apples", "Production", 2023, 500),
		rec("Afghanistan", "Wheat", "Production", 2023, 900),
		rec("Afghanistan", "Eggs", "Production", 2023, 0),
		rec("Afghanistan", "Rice", "Production", 2023, 200),
		rec("Brazil", "Apples", "Production", 2023, 999),
	)

	p := CountryPortfolio(ds, "Afghanistan", 2023, 2)
	if len(p) != 2 {
		t.Fatalf("portfolio = %#v, want 2 entries", p)
	}
	if p[0].Item != "Wheat" || p[1].Item != "Apples" {
		t.Fatalf("portfolio = %#v", p)
	}
}

func TestMissingReport(t *testing.T) {
	ds := testDataset(
		rec("A", "Rice", "Production", 2020, 100),
		missing("B", "Rice", "Production", 2020),
		rec("A", "Rice", "Production", 2021, 110),
		missing("B", "Rice", "Production", 2021),
		missing("C", "Rice", "Production", 2021),
	)

	rep := Missing(ds)
	if rep.TotalCells != 5 || rep.MissingCells != 3 {
		t.Fatalf("totals = %d/%d, want 5/3", rep.TotalCells, rep.MissingCells)
	}
	byYearSum := 0
	for _, y := range rep.ByYear {
		byYearSum += y.Missing
	}
	if byYearSum != rep.MissingCells {
		t.Fatalf("per-year sum %d != total %d", byYearSum, rep.MissingCells)
	}
	if !almostEqual(rep.Percentage, 3.0/5.0*100, 1e-9) {
		t.Fatalf("percentage = %v", rep.Percentage)
	}
	if len(rep.ByYear) != 2 || rep.ByYear[0].Year != 2020 || rep.ByYear[1].Year != 2021 {
		t.Fatalf("by-year = %#v", rep.ByYear)
	}
	if rep.ByYear[1].Missing != 2 {
		t.Fatalf("2021 missing = %d, want 2", rep.ByYear[1].Missing)
	}
}

func TestMissingReportEmptyDataset(t *testing.T) {
	rep := Missing(testDataset())
	if rep.Percentage != 0 || rep.TotalCells != 0 {
		t.Fatalf("empty report = %#v", rep)
	}
}

func TestDims(t *testing.T) {
	ds := testDataset(
		rec("Brazil", "Wheat", "Yield", 2021, 1),
		rec("Afghanistan", "Apples", "Production", 2020, 2),
		rec("Brazil", "Apples", "Production", 2023, 3),
	)

	if got := Areas(ds); len(got) != 2 || got[0] != "Afghanistan" || got[1] != "Brazil" {
		t.Fatalf("areas = %#v", got)
	}
	if got := Items(ds); len(got) != 2 || got[0] != "Apples" || got[1] != "Wheat" {
		t.Fatalf("items = %#v", got)
	}
	if got := ElementNames(ds); len(got) != 2 || got[0] != "Production" || got[1] != "Yield" {
		t.Fatalf("elements = %#v", got)
	}
	if got := Years(ds); len(got) != 3 || got[0] != 2020 || got[2] != 2023 {
		t.Fatalf("years = %#v", got)
	}
	if got := LatestYear(ds); got != 2023 {
		t.Fatalf("latest year = %d", got)
	}
	if got := LatestYear(testDataset()); got != 0 {
		t.Fatalf("latest year of empty = %d", got)
	}
}
