package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/croplens/croplens/internal/query"
)

var pngMagic = []byte("\x89PNG")

func encode(t *testing.T, p *plot.Plot) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodePNG(p, 6*vg.Inch, 3*vg.Inch, &buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("output is not a PNG (starts %q)", buf.Bytes()[:8])
	}
	return buf.Bytes()
}

func TestTimeSeriesLines(t *testing.T) {
	p, err := TimeSeriesLines("Apples Production", "Production (t)", []Series{
		{Name: "Afghanistan", Points: []query.YearValue{{Year: 2020, Value: 500}, {Year: 2021, Value: 550}}},
		{Name: "Brazil", Points: []query.YearValue{{Year: 2020, Value: 800}, {Year: 2021, Value: 780}}},
	})
	if err != nil {
		t.Fatalf("TimeSeriesLines: %v", err)
	}
	encode(t, p)
}

func TestTimeSeriesLinesEmpty(t *testing.T) {
	p, err := TimeSeriesLines("Nothing", "Production", nil)
	if err != nil {
		t.Fatalf("TimeSeriesLines with no series: %v", err)
	}
	encode(t, p)
}

func TestBars(t *testing.T) {
	top := []query.AreaValue{
		{Area: "Brazil", Value: 800, Unit: "t"},
		{Area: "Afghanistan", Value: 500, Unit: "t"},
	}
	p, err := TopProducersBar("Apples", 2021, top)
	if err != nil {
		t.Fatalf("TopProducersBar: %v", err)
	}
	encode(t, p)

	p, err = ComparisonBarH("Apples", 2021, top)
	if err != nil {
		t.Fatalf("ComparisonBarH: %v", err)
	}
	encode(t, p)

	p, err = PortfolioBar("Brazil", 2021, []query.ItemValue{
		{Item: "Apples", Value: 800, Unit: "t"},
		{Item: "Wheat", Value: 300, Unit: "t"},
	})
	if err != nil {
		t.Fatalf("PortfolioBar: %v", err)
	}
	encode(t, p)

	p, err = SummaryBar(2021, []query.ItemTotal{
		{Item: "Apples", Unit: "t", Total: 1300},
		{Item: "Wheat", Unit: "t", Total: 300},
	})
	if err != nil {
		t.Fatalf("SummaryBar: %v", err)
	}
	encode(t, p)
}

func TestGrowthBars(t *testing.T) {
	p, err := GrowthBars("Apples CAGR 2010-2021", []GrowthRow{
		{Area: "Brazil", Pct: 4.2},
		{Area: "Afghanistan", Pct: -1.3},
		{Area: "Chad", Pct: 0},
	})
	if err != nil {
		t.Fatalf("GrowthBars: %v", err)
	}
	encode(t, p)
}

func TestMissingHeatGrid(t *testing.T) {
	grid := &PresenceGrid{
		Items:  []string{"Apples", "Wheat"},
		Years:  []int{2019, 2020, 2021},
		Values: [][]float64{{1, 0.5, 0}, {0.2, 1, 1}},
	}
	p, err := MissingHeatGrid("Data Coverage", grid)
	if err != nil {
		t.Fatalf("MissingHeatGrid: %v", err)
	}
	encode(t, p)

	if _, err := MissingHeatGrid("empty", &PresenceGrid{}); err == nil {
		t.Fatalf("MissingHeatGrid accepted an empty grid")
	}
	bad := &PresenceGrid{Items: []string{"A"}, Years: []int{2020, 2021}, Values: [][]float64{{1}}}
	if _, err := MissingHeatGrid("ragged", bad); err == nil {
		t.Fatalf("MissingHeatGrid accepted a ragged grid")
	}
}

func TestPanel(t *testing.T) {
	var plots []*plot.Plot
	for i := 0; i < 4; i++ {
		p, err := SummaryBar(2021, []query.ItemTotal{{Item: "Apples", Unit: "t", Total: float64(100 * (i + 1))}})
		if err != nil {
			t.Fatalf("SummaryBar: %v", err)
		}
		plots = append(plots, p)
	}
	var buf bytes.Buffer
	if err := EncodePanelPNG(plots, 2, 2, 8*vg.Inch, 5*vg.Inch, &buf); err != nil {
		t.Fatalf("EncodePanelPNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("panel output is not a PNG")
	}

	if err := EncodePanelPNG(plots, 1, 2, 8*vg.Inch, 5*vg.Inch, &buf); err == nil {
		t.Fatalf("EncodePanelPNG accepted 4 plots in a 1x2 grid")
	}
}

func TestWritePNG(t *testing.T) {
	p, err := SummaryBar(2021, []query.ItemTotal{{Item: "Apples", Unit: "t", Total: 100}})
	if err != nil {
		t.Fatalf("SummaryBar: %v", err)
	}
	path := filepath.Join(t.TempDir(), "chart.png")
	if err := WritePNG(p, 6*vg.Inch, 3*vg.Inch, path); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("file is not a PNG")
	}
}
