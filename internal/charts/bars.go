package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/croplens/croplens/internal/query"
)

// TopProducersBar draws the producer ranking as vertical bars, highest
// first, name ticks rotated so long country names stay readable.
func TopProducersBar(item string, year int, top []query.AreaValue) (*plot.Plot, error) {
	labels := make([]string, len(top))
	values := make(plotter.Values, len(top))
	unit := ""
	for i, av := range top {
		labels[i] = av.Area
		values[i] = av.Value
		if unit == "" {
			unit = av.Unit
		}
	}
	return verticalBars(fmt.Sprintf("Top Producers of %s (%d)", item, year), axisLabel("Production", unit), labels, values, barBlue)
}

// PortfolioBar draws one country's leading items for a year.
func PortfolioBar(area string, year int, rows []query.ItemValue) (*plot.Plot, error) {
	labels := make([]string, len(rows))
	values := make(plotter.Values, len(rows))
	unit := ""
	for i, iv := range rows {
		labels[i] = iv.Item
		values[i] = iv.Value
		if unit == "" {
			unit = iv.Unit
		}
	}
	return verticalBars(fmt.Sprintf("%s Production Portfolio (%d)", area, year), axisLabel("Production", unit), labels, values, barOrange)
}

// SummaryBar draws the worldwide production summary totals.
func SummaryBar(year int, rows []query.ItemTotal) (*plot.Plot, error) {
	labels := make([]string, len(rows))
	values := make(plotter.Values, len(rows))
	for i, it := range rows {
		labels[i] = it.Item
		values[i] = it.Total
	}
	return verticalBars(fmt.Sprintf("Global Production by Item (%d)", year), "Total Production", labels, values, barGreen)
}

// ComparisonBarH draws the regional comparison as horizontal bars so
// zero-valued areas remain visible as empty slots next to their names.
func ComparisonBarH(item string, year int, rows []query.AreaValue) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Production by Country (%d)", item, year)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	unit := ""
	if len(rows) > 0 {
		unit = rows[0].Unit
	}
	p.X.Label.Text = axisLabel("Production", unit)

	// Reverse so the largest bar renders at the top.
	labels := make([]string, len(rows))
	values := make(plotter.Values, len(rows))
	for i, av := range rows {
		j := len(rows) - 1 - i
		labels[j] = av.Area
		values[j] = av.Value
	}
	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, fmt.Errorf("comparison bars: %w", err)
	}
	bars.Horizontal = true
	bars.Color = barBlue
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(labels...)
	return p, nil
}

// GrowthRow is one country's growth rate for the growth chart.
type GrowthRow struct {
	Area string
	Pct  float64
}

// GrowthBars draws per-country growth rates, gains in green and losses
// in red on a shared axis.
func GrowthBars(title string, rows []GrowthRow) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "CAGR (%)"
	p.Add(plotter.NewGrid())

	labels := make([]string, len(rows))
	gains := make(plotter.Values, len(rows))
	losses := make(plotter.Values, len(rows))
	for i, r := range rows {
		labels[i] = r.Area
		if r.Pct >= 0 {
			gains[i] = r.Pct
		} else {
			losses[i] = r.Pct
		}
	}

	gainBars, err := plotter.NewBarChart(gains, vg.Points(16))
	if err != nil {
		return nil, fmt.Errorf("growth bars: %w", err)
	}
	gainBars.Color = barGreen
	gainBars.LineStyle.Width = vg.Length(0)

	lossBars, err := plotter.NewBarChart(losses, vg.Points(16))
	if err != nil {
		return nil, fmt.Errorf("growth bars: %w", err)
	}
	lossBars.Color = barRed
	lossBars.LineStyle.Width = vg.Length(0)

	p.Add(gainBars, lossBars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}

func verticalBars(title, yLabel string, labels []string, values plotter.Values, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = c
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}

func axisLabel(base, unit string) string {
	if unit == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, unit)
}

// CategoryBar draws generic labeled counts, used for the element mix
// and records-per-year panels of the summary dashboard.
func CategoryBar(title, yLabel string, labels []string, counts []float64) (*plot.Plot, error) {
	values := make(plotter.Values, len(counts))
	copy(values, counts)
	return verticalBars(title, yLabel, labels, values, barOrange)
}
