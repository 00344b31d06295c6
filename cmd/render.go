package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gopkg.in/yaml.v3"

	"github.com/croplens/croplens/internal/charts"
	"github.com/croplens/croplens/internal/dataset"
	"github.com/croplens/croplens/internal/query"
	"github.com/croplens/croplens/internal/utils"
)

var (
	renDataDir   string
	renOutputDir string
	renSample    bool
	renManifest  string
	renQuiet     bool
)

// chartJob is one entry of the render manifest. Unset parameters fall
// back per kind: latest year, leading item, sensible n.
type chartJob struct {
	Kind    string   `yaml:"kind"`
	Item    string   `yaml:"item,omitempty"`
	Area    string   `yaml:"area,omitempty"`
	Areas   []string `yaml:"areas,omitempty"`
	Element string   `yaml:"element,omitempty"`
	Year    int      `yaml:"year,omitempty"`
	N       int      `yaml:"n,omitempty"`
	Out     string   `yaml:"out"`
}

type renderManifest struct {
	Charts []chartJob `yaml:"charts"`
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the chart set as PNG files",
	Long: `Render writes the default chart set (production trends, top producers,
regional comparison, growth rates, data availability, and the summary
dashboard) to the output directory. A YAML manifest can replace the
default set with explicit chart jobs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(dataDirOr(renDataDir), sampleOr(cmd, renSample))
		if err != nil {
			return err
		}
		outDir := outputDirOr(renOutputDir)
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		var jobs []chartJob
		if renManifest != "" {
			jobs, err = loadManifest(renManifest)
			if err != nil {
				return err
			}
		} else {
			jobs = defaultJobs(ds)
		}
		if len(jobs) == 0 {
			return fmt.Errorf("nothing to render: dataset has no production data")
		}

		total := len(jobs)
		for i, job := range jobs {
			if !renQuiet {
				fmt.Printf("[%d/%d] Rendering %s...\n", i+1, total, job.Out)
			}
			path, err := runChartJob(ds, job, outDir)
			if err != nil {
				return fmt.Errorf("render %s: %w", job.Out, err)
			}
			if !renQuiet {
				fmt.Printf("✓ Wrote %s\n", path)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renDataDir, "data", "", "data directory with the FAO CSV files (default from config)")
	renderCmd.Flags().StringVar(&renOutputDir, "output", "", "output directory for the PNG files (default from config)")
	renderCmd.Flags().BoolVar(&renSample, "sample", false, "limited-memory load: keep every 10th row")
	renderCmd.Flags().StringVar(&renManifest, "manifest", "", "YAML manifest of chart jobs (replaces the default set)")
	renderCmd.Flags().BoolVar(&renQuiet, "quiet", false, "suppress progress output")
}

func loadManifest(path string) ([]chartJob, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m renderManifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Charts) == 0 {
		return nil, fmt.Errorf("manifest lists no charts")
	}
	for i, job := range m.Charts {
		if job.Out == "" {
			return nil, fmt.Errorf("manifest chart %d: missing out file name", i+1)
		}
	}
	return m.Charts, nil
}

// defaultJobs is the static report set, centered on the item with the
// highest production total in the latest year.
func defaultJobs(ds *dataset.Dataset) []chartJob {
	year := query.LatestYear(ds)
	lead := leadingItem(ds, year)
	if lead == "" {
		return nil
	}
	return []chartJob{
		{Kind: "trends", Item: lead, Out: "production_trends.png"},
		{Kind: "producers", Item: lead, Year: year, N: 15, Out: "top_producers.png"},
		{Kind: "compare", Item: lead, Year: year, Out: "regional_comparison.png"},
		{Kind: "growth", Item: lead, N: 10, Out: "growth_rates.png"},
		{Kind: "availability", N: 8, Out: "data_availability.png"},
		{Kind: "summary", Year: year, Out: "summary_dashboard.png"},
	}
}

func runChartJob(ds *dataset.Dataset, job chartJob, outDir string) (string, error) {
	year := job.Year
	if year == 0 {
		year = query.LatestYear(ds)
	}
	out := filepath.Join(outDir, job.Out)

	switch job.Kind {
	case "trends":
		item := jobItem(ds, job, year)
		element := job.Element
		if element == "" {
			element = query.ElementProduction
		}
		areas := job.Areas
		if len(areas) == 0 {
			for _, av := range query.TopProducers(ds, item, year, 5) {
				areas = append(areas, av.Area)
			}
		}
		var series []charts.Series
		unit := ""
		for _, area := range areas {
			pts := query.TimeSeries(ds, area, item, element)
			if len(pts) == 0 {
				continue
			}
			if unit == "" {
				unit = pts[0].Unit
			}
			series = append(series, charts.Series{Name: area, Points: pts})
		}
		yLabel := element
		if unit != "" {
			yLabel = fmt.Sprintf("%s (%s)", element, unit)
		}
		p, err := charts.TimeSeriesLines(fmt.Sprintf("%s %s by Country", item, element), yLabel, series)
		if err != nil {
			return "", err
		}
		return out, charts.WritePNG(p, charts.Width, charts.Height, out)

	case "producers":
		item := jobItem(ds, job, year)
		n := job.N
		if n <= 0 {
			n = 15
		}
		p, err := charts.TopProducersBar(item, year, query.TopProducers(ds, item, year, n))
		if err != nil {
			return "", err
		}
		return out, charts.WritePNG(p, charts.Width, charts.Height, out)

	case "compare":
		item := jobItem(ds, job, year)
		p, err := charts.ComparisonBarH(item, year, query.RegionalComparison(ds, item, year))
		if err != nil {
			return "", err
		}
		return out, charts.WritePNG(p, charts.Width, charts.Height, out)

	case "portfolio":
		area := job.Area
		if area == "" {
			if areas := query.Areas(ds); len(areas) > 0 {
				area = areas[0]
			}
		}
		n := job.N
		if n <= 0 {
			n = 10
		}
		p, err := charts.PortfolioBar(area, year, query.CountryPortfolio(ds, area, year, n))
		if err != nil {
			return "", err
		}
		return out, charts.WritePNG(p, charts.Width, charts.Height, out)

	case "growth":
		item := jobItem(ds, job, year)
		n := job.N
		if n <= 0 {
			n = 10
		}
		years := query.Years(ds)
		if len(years) < 2 {
			return "", fmt.Errorf("growth chart needs at least two years of data")
		}
		first, last := years[0], years[len(years)-1]
		var rows []charts.GrowthRow
		for _, av := range query.TopProducers(ds, item, last, n) {
			if pct, ok := query.CAGR(ds, av.Area, item, first, last); ok {
				rows = append(rows, charts.GrowthRow{Area: av.Area, Pct: pct})
			}
		}
		p, err := charts.GrowthBars(fmt.Sprintf("%s Production Growth %d to %d", item, first, last), rows)
		if err != nil {
			return "", err
		}
		return out, charts.WritePNG(p, charts.Width, charts.Height, out)

	case "availability":
		n := job.N
		if n <= 0 {
			n = 8
		}
		grid := availabilityGrid(ds, n)
		p, err := charts.MissingHeatGrid("Data Availability by Item and Year", grid)
		if err != nil {
			return "", err
		}
		return out, charts.WritePNG(p, charts.Width, charts.Height, out)

	case "summary":
		plots, err := summaryPanel(ds, year)
		if err != nil {
			return "", err
		}
		return out, charts.WritePanelPNG(plots, 2, 2, charts.PanelWidth, charts.PanelHeight, out)

	default:
		return "", fmt.Errorf("unknown chart kind: %q", job.Kind)
	}
}

func jobItem(ds *dataset.Dataset, job chartJob, year int) string {
	if job.Item != "" {
		return job.Item
	}
	return leadingItem(ds, year)
}

func leadingItem(ds *dataset.Dataset, year int) string {
	if summary := query.ProductionSummary(ds, year); len(summary) > 0 {
		return summary[0].Item
	}
	if items := query.Items(ds); len(items) > 0 {
		return items[0]
	}
	return ""
}

// availabilityGrid counts valued records per (item, year) for the most
// frequent items, normalized to [0,1] against the densest cell.
func availabilityGrid(ds *dataset.Dataset, topN int) *charts.PresenceGrid {
	profile := ds.Profile()
	items := make([]string, 0, topN)
	for i, ic := range profile.TopItems {
		if i >= topN {
			break
		}
		items = append(items, ic.Item)
	}
	years := query.Years(ds)

	rowOf := make(map[string]int, len(items))
	for i, item := range items {
		rowOf[item] = i
	}
	colOf := make(map[int]int, len(years))
	for i, year := range years {
		colOf[year] = i
	}

	values := make([][]float64, len(items))
	for i := range values {
		values[i] = make([]float64, len(years))
	}
	maxCount := 0.0
	for _, rec := range ds.Records {
		if !rec.HasValue {
			continue
		}
		r, ok := rowOf[rec.Item]
		if !ok {
			continue
		}
		c, ok := colOf[rec.Year]
		if !ok {
			continue
		}
		values[r][c]++
		if values[r][c] > maxCount {
			maxCount = values[r][c]
		}
	}
	if maxCount > 0 {
		for r := range values {
			for c := range values[r] {
				values[r][c] /= maxCount
			}
		}
	}
	return &charts.PresenceGrid{Items: items, Years: years, Values: values}
}

// summaryPanel builds the four plots of the 2x2 overview dashboard.
func summaryPanel(ds *dataset.Dataset, year int) ([]*plot.Plot, error) {
	summary := query.ProductionSummary(ds, year)
	top := summary
	if len(top) > 5 {
		top = top[:5]
	}
	itemsPlot, err := charts.SummaryBar(year, top)
	if err != nil {
		return nil, err
	}

	elementCounts := make(map[string]int)
	for _, rec := range ds.Records {
		elementCounts[rec.Element]++
	}
	elements := make([]string, 0, len(elementCounts))
	for name := range elementCounts {
		elements = append(elements, name)
	}
	sort.Strings(elements)
	counts := make([]float64, len(elements))
	for i, name := range elements {
		counts[i] = float64(elementCounts[name])
	}
	mixPlot, err := charts.CategoryBar("Records by Element", "Records", elements, counts)
	if err != nil {
		return nil, err
	}

	years := query.Years(ds)
	perYear := make(map[int]int)
	for _, rec := range ds.Records {
		perYear[rec.Year]++
	}
	yearLabels := make([]string, len(years))
	yearCounts := make([]float64, len(years))
	for i, y := range years {
		yearLabels[i] = strconv.Itoa(y)
		yearCounts[i] = float64(perYear[y])
	}
	yearPlot, err := charts.CategoryBar("Records per Year", "Records", yearLabels, yearCounts)
	if err != nil {
		return nil, err
	}

	lead := leadingItem(ds, year)
	producersPlot, err := charts.TopProducersBar(lead, year, query.TopProducers(ds, lead, year, 5))
	if err != nil {
		return nil, err
	}

	return []*plot.Plot{itemsPlot, mixPlot, yearPlot, producersPlot}, nil
}
