package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"etf-watcher/internal/app"
)

var (
	showProvider string
	showLimit    int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display stored listings for a provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showProvider == "" {
			return fmt.Errorf("--provider is required")
		}
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Provider: showProvider,
			Limit:    showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showProvider, "provider", "", "Provider whose listing to display")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of funds to display")
}
