package charts

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PresenceGrid is an item x year matrix of data coverage, the input of
// MissingHeatGrid. Values holds one row per item, one column per year;
// a cell is the fraction of expected measurements present in [0, 1].
type PresenceGrid struct {
	Items  []string
	Years  []int
	Values [][]float64
}

// Dims, Z, X and Y implement plotter.GridXYZ.
func (g *PresenceGrid) Dims() (c, r int) { return len(g.Years), len(g.Items) }

func (g *PresenceGrid) Z(c, r int) float64 { return g.Values[r][c] }

func (g *PresenceGrid) X(c int) float64 { return float64(g.Years[c]) }

func (g *PresenceGrid) Y(r int) float64 { return float64(r) }

// MissingHeatGrid draws data coverage per item and year as a heat map.
// Dark cells mark sparse years.
func MissingHeatGrid(title string, grid *PresenceGrid) (*plot.Plot, error) {
	if len(grid.Items) == 0 || len(grid.Years) == 0 {
		return nil, fmt.Errorf("heat grid: empty grid")
	}
	for r := range grid.Values {
		if len(grid.Values[r]) != len(grid.Years) {
			return nil, fmt.Errorf("heat grid: row %d has %d cells, want %d", r, len(grid.Values[r]), len(grid.Years))
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"

	h := plotter.NewHeatMap(grid, palette.Heat(12, 255))
	h.Min, h.Max = 0, 1
	p.Add(h)

	// Item names on the Y axis instead of row indexes.
	p.NominalY(grid.Items...)
	return p, nil
}
