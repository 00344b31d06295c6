package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/croplens/croplens/internal/report"
)

var (
	expDataDir   string
	expOutputDir string
	expSample    bool
	expWorkbook  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest-year snapshot CSVs (and optionally an XLSX report)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(dataDirOr(expDataDir), sampleOr(cmd, expSample))
		if err != nil {
			return err
		}
		outDir := outputDirOr(expOutputDir)

		snap, err := report.WriteSnapshot(ds, outDir)
		if err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Printf("✓ Wrote %s (%d rows)\n", snap.CrossPath, snap.CrossRows)
		fmt.Printf("✓ Wrote %s (%d rows)\n", snap.SummaryPath, snap.SummaryRows)

		if expWorkbook {
			path := filepath.Join(outDir, fmt.Sprintf("croplens_report_%d.xlsx", snap.Year))
			if err := report.WriteWorkbook(ds, path); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Printf("✓ Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expDataDir, "data", "", "data directory with the FAO CSV files (default from config)")
	exportCmd.Flags().StringVar(&expOutputDir, "output", "", "output directory for the snapshot files (default from config)")
	exportCmd.Flags().BoolVar(&expSample, "sample", false, "limited-memory load: keep every 10th row")
	exportCmd.Flags().BoolVar(&expWorkbook, "xlsx", false, "also write the multi-sheet XLSX report")
}
