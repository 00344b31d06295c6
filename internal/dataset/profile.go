package dataset

import (
	"math"
	"sort"
)

// Profile summarizes a loaded Dataset for verification output: distinct
// dimension counts, the year span, and running value statistics.
type Profile struct {
	Records  int
	Areas    int
	Items    int
	Elements int
	Units    int

	YearMin int
	YearMax int

	// Value stats over present values only.
	ValueCount int
	ValueMin   float64
	ValueMax   float64
	ValueMean  float64
	ValueStd   float64

	MissingValues int

	// TopItems are the most frequent Items by record count, capped at 8.
	TopItems []ItemCount
}

type ItemCount struct {
	Item  string
	Count int
}

// Profile computes summary statistics in one pass using Welford's
// update for mean and variance.
func (d *Dataset) Profile() Profile {
	p := Profile{
		Records:  d.Len(),
		ValueMin: math.Inf(1),
		ValueMax: math.Inf(-1),
	}
	areas := map[string]struct{}{}
	items := map[string]int{}
	elements := map[string]struct{}{}
	units := map[string]struct{}{}

	var n int
	var mean, m2 float64
	for _, rec := range d.Records {
		areas[rec.Area] = struct{}{}
		items[rec.Item]++
		elements[rec.Element] = struct{}{}
		if rec.Unit != "" {
			units[rec.Unit] = struct{}{}
		}
		if p.YearMin == 0 || rec.Year < p.YearMin {
			p.YearMin = rec.Year
		}
		if rec.Year > p.YearMax {
			p.YearMax = rec.Year
		}
		if !rec.HasValue {
			p.MissingValues++
			continue
		}
		if rec.Value < p.ValueMin {
			p.ValueMin = rec.Value
		}
		if rec.Value > p.ValueMax {
			p.ValueMax = rec.Value
		}
		n++
		delta := rec.Value - mean
		mean += delta / float64(n)
		m2 += delta * (rec.Value - mean)
	}
	p.Areas = len(areas)
	p.Items = len(items)
	p.Elements = len(elements)
	p.Units = len(units)
	p.ValueCount = n
	if n > 0 {
		p.ValueMean = mean
	}
	if n > 1 {
		p.ValueStd = math.Sqrt(m2 / float64(n-1))
	}
	if n == 0 {
		p.ValueMin, p.ValueMax = 0, 0
	}

	tops := make([]ItemCount, 0, len(items))
	for it, c := range items {
		tops = append(tops, ItemCount{Item: it, Count: c})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Item < tops[j].Item
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > 8 {
		tops = tops[:8]
	}
	p.TopItems = tops
	return p
}
