package cli

import (
	"github.com/spf13/cobra"

	"etf-watcher/internal/app"
)

var (
	exportProvider string
	exportCSVPath  string
	exportPNGPath  string
	exportTop      int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored listing as CSV and/or a top-yields PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Provider:  exportProvider,
			CSVPath:   exportCSVPath,
			PNGPath:   exportPNGPath,
			TopYields: exportTop,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportProvider, "provider", "", "Provider whose listing to export")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().IntVar(&exportTop, "top", 0, "Number of funds in the yield chart (defaults to config)")
}
