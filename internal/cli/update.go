package cli

import (
	"github.com/spf13/cobra"

	"etf-watcher/internal/app"
)

var updateForce bool

var updateCmd = &cobra.Command{
	Use:   "update [provider ...]",
	Short: "Crawl providers and persist fresh listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.UpdateOptions{
			Providers: args,
			Force:     updateForce,
		}

		return getApp().Update(cmd.Context(), opts)
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Update even when stored data is still fresh")
}
