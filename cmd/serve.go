package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/croplens/croplens/internal/server"
)

var (
	srvDataDir string
	srvPort    int
	srvSample  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the CropLens dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(dataDirOr(srvDataDir), sampleOr(cmd, srvSample))
		if err != nil {
			return err
		}

		port := srvPort
		if !cmd.Flags().Changed("port") && cfg != nil && cfg.Port > 0 {
			port = cfg.Port
		}

		srv, err := server.New(ds, logger())
		if err != nil {
			return err
		}
		fmt.Printf("✓ Dashboard at http://localhost:%d\n", port)
		return srv.ListenAndServe(fmt.Sprintf(":%d", port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvDataDir, "data", "", "data directory with the FAO CSV files (default from config)")
	serveCmd.Flags().IntVar(&srvPort, "port", 8050, "listen port (default from config when unset)")
	serveCmd.Flags().BoolVar(&srvSample, "sample", false, "limited-memory load: keep every 10th row")
}
