package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/croplens/croplens/internal/config"
	"github.com/croplens/croplens/internal/dataset"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "croplens",
	Short: "CropLens: explore FAO crop production data from the terminal",
	Long: `CropLens loads the FAO crop production CSV bundle (main file plus the
area, item and element lookup tables), answers production queries over
it, renders charts, exports snapshot reports, and serves a local
dashboard.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.croplens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	if err := cfgpkg.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load .env: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to flag values and defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	if debug {
		cfg.LogLevel = "debug"
	}
}

// dataDirOr resolves the data directory: flag, then config, then the
// built-in default.
func dataDirOr(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if cfg != nil && cfg.DataDir != "" {
		return cfg.DataDir
	}
	return "./data"
}

// outputDirOr resolves the output directory the same way.
func outputDirOr(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if cfg != nil && cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	return "./output"
}

// sampleOr resolves the sampling switch. An explicit flag beats config.
func sampleOr(cmd *cobra.Command, flagVal bool) bool {
	if cmd.Flags().Changed("sample") {
		return flagVal
	}
	if cfg != nil {
		return cfg.Sample
	}
	return false
}

func logger() *logrus.Logger {
	c := cfg
	if c == nil {
		c = &cfgpkg.Global{LogLevel: "info"}
	}
	return cfgpkg.Logger(c)
}

// loadDataset loads and announces the dataset every data command starts
// from.
func loadDataset(dataDir string, sample bool) (*dataset.Dataset, error) {
	ds, err := dataset.Load(dataDir, dataset.Options{Sample: sample})
	if err != nil {
		return nil, err
	}
	suffix := ""
	if ds.Sampled {
		suffix = ", sampled"
	}
	fmt.Printf("✓ Loaded %d records from %s (%s shape%s)\n",
		ds.Len(), filepath.Base(ds.Source), ds.Shape, suffix)
	return ds, nil
}
