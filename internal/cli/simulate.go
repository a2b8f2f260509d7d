package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"etf-watcher/internal/app"
)

var (
	simulateTicker string
	simulateAmount float64
	simulateMonths int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-dividend",
	Short: "Estimate dividend income for a stored ticker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateTicker == "" {
			return errors.New("--ticker is required")
		}
		if simulateAmount <= 0 {
			return errors.New("--amount must be greater than zero")
		}
		if simulateMonths < 1 {
			return errors.New("--months must be at least 1")
		}

		opts := app.SimulateOptions{
			Ticker: simulateTicker,
			Amount: decimal.NewFromFloat(simulateAmount),
			Months: simulateMonths,
		}

		return getApp().SimulateDividend(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateTicker, "ticker", "", "Fund ticker symbol")
	simulateCmd.Flags().Float64Var(&simulateAmount, "amount", 0, "Investment amount in USD")
	simulateCmd.Flags().IntVar(&simulateMonths, "months", 12, "Holding period in months")
}
