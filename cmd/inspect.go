package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/croplens/croplens/internal/dataset"
	"github.com/croplens/croplens/internal/query"
)

var (
	insDataDir    string
	insSample     bool
	insSampleRows int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load the dataset and print a verification report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(dataDirOr(insDataDir), sampleOr(cmd, insSample))
		if err != nil {
			return err
		}

		printProfile(ds)
		printLookups(ds)
		printColumnFill(ds)
		printSampleRows(ds, insSampleRows)
		printMissingReport(ds)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&insDataDir, "data", "", "data directory with the FAO CSV files (default from config)")
	inspectCmd.Flags().BoolVar(&insSample, "sample", false, "limited-memory load: keep every 10th row")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to print")
}

func printProfile(ds *dataset.Dataset) {
	p := ds.Profile()

	color.Yellow("\nDataset Profile")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Source", ds.Source})
	table.Append([]string{"Shape", ds.Shape.String()})
	table.Append([]string{"Sampled", strconv.FormatBool(ds.Sampled)})
	table.Append([]string{"Records", strconv.Itoa(p.Records)})
	table.Append([]string{"Areas", strconv.Itoa(p.Areas)})
	table.Append([]string{"Items", strconv.Itoa(p.Items)})
	table.Append([]string{"Elements", strconv.Itoa(p.Elements)})
	table.Append([]string{"Units", strconv.Itoa(p.Units)})
	if p.Records > 0 {
		table.Append([]string{"Years", fmt.Sprintf("%d to %d", p.YearMin, p.YearMax)})
	}
	if p.ValueCount > 0 {
		table.Append([]string{"Value min", formatValue(p.ValueMin)})
		table.Append([]string{"Value max", formatValue(p.ValueMax)})
		table.Append([]string{"Value mean", fmt.Sprintf("%.2f", p.ValueMean)})
		table.Append([]string{"Value stddev", fmt.Sprintf("%.2f", p.ValueStd)})
	}
	table.Render()
}

func printLookups(ds *dataset.Dataset) {
	color.Yellow("\nLookup Tables")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Table", "Entries"})
	table.Append([]string{"Area codes", strconv.Itoa(len(ds.AreaCodes))})
	table.Append([]string{"Item codes", strconv.Itoa(len(ds.ItemCodes))})
	table.Append([]string{"Elements", strconv.Itoa(len(ds.Elements))})
	table.Render()
}

// printColumnFill reports empty cells per column over the canonical
// records, the Value column counted as HasValue == false.
func printColumnFill(ds *dataset.Dataset) {
	var emptyUnit, emptyFlag, missingValue int
	for _, rec := range ds.Records {
		if rec.Unit == "" {
			emptyUnit++
		}
		if rec.Flag == "" {
			emptyFlag++
		}
		if !rec.HasValue {
			missingValue++
		}
	}

	color.Yellow("\nColumn Fill")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Column", "Missing"})
	table.Append([]string{"Value", strconv.Itoa(missingValue)})
	table.Append([]string{"Unit", strconv.Itoa(emptyUnit)})
	table.Append([]string{"Flag", strconv.Itoa(emptyFlag)})
	table.Render()
}

func printSampleRows(ds *dataset.Dataset, n int) {
	if n <= 0 || ds.Len() == 0 {
		return
	}
	if n > ds.Len() {
		n = ds.Len()
	}

	color.Yellow("\nSample Rows")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Area", "Item", "Element", "Year", "Value", "Unit", "Flag"})
	for _, rec := range ds.Records[:n] {
		value := ""
		if rec.HasValue {
			value = formatValue(rec.Value)
		}
		table.Append([]string{
			rec.Area,
			rec.Item,
			rec.Element,
			strconv.Itoa(rec.Year),
			value,
			rec.Unit,
			rec.Flag,
		})
	}
	table.Render()
}

func printMissingReport(ds *dataset.Dataset) {
	report := query.Missing(ds)

	color.Yellow("\nMissing Data")
	if report.TotalCells == 0 {
		fmt.Println("no measurement slots recorded")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Year", "Slots", "Missing"})
	for _, ym := range report.ByYear {
		table.Append([]string{
			strconv.Itoa(ym.Year),
			strconv.Itoa(ym.Cells),
			strconv.Itoa(ym.Missing),
		})
	}
	table.Render()

	if report.MissingCells == 0 {
		color.Green("✓ No missing values (%d slots)", report.TotalCells)
	} else {
		color.Yellow("⚠ %d of %d slots missing (%.2f%%)",
			report.MissingCells, report.TotalCells, report.Percentage)
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
