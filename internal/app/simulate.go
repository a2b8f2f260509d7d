package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"etf-watcher/internal/model"
)

// SimulateDividend projects payout income for a hypothetical position in a
// stored ticker and prints the estimate.
func (a *App) SimulateDividend(ctx context.Context, opts SimulateOptions) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	up, err := a.newUpdater(st)
	if err != nil {
		return err
	}

	etf, err := up.FindTicker(opts.Ticker)
	if err != nil {
		return err
	}

	estimate, err := model.EstimateDividends(*etf, opts.Amount, opts.Months)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Ticker\t%s\n", estimate.Ticker)
	fmt.Fprintf(writer, "Fund\t%s\n", sanitizeInline(estimate.FundName))
	fmt.Fprintf(writer, "Investment\t%s\n", formatDecimal(estimate.InvestmentAmount, 2))
	fmt.Fprintf(writer, "Shares purchased\t%s\n", estimate.SharesPurchased.String())
	fmt.Fprintf(writer, "Current price\t%s\n", formatDecimal(estimate.CurrentPrice, 2))
	fmt.Fprintf(writer, "Distribution yield %%\t%s\n", estimate.DistributionYield.String())
	fmt.Fprintf(writer, "Annual dividend\t%s\n", formatDecimal(estimate.AnnualDividend, 2))
	fmt.Fprintf(writer, "Monthly dividend\t%s\n", formatDecimal(estimate.MonthlyDividend, 2))
	fmt.Fprintf(writer, "Total over %d months\t%s\n", estimate.HoldingMonths, formatDecimal(estimate.TotalDividend, 2))
	writer.Flush()

	return nil
}
