package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"etf-watcher/internal/updater"
)

// Show prints the stored listing of one provider.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.Provider == "" {
		return errors.New("provider is required")
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}

	records, err := st.Load(opts.Provider, updater.KindListing)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no records stored; run update first")
		return nil
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Ticker\tFund\tNAV\tAs Of\tExpense%\t1Y%\tYield%\tFrequency")

	for _, etf := range records {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			etf.Ticker,
			truncate(sanitizeInline(etf.FundName), 48),
			formatDecimal(etf.NAV, 2),
			etf.NAVAsOf.String(),
			formatDecimal(etf.ExpenseRatio, 2),
			decimalOrDash(etf.OneYearReturn, 2),
			decimalOrDash(etf.DistributionYield, 2),
			string(etf.DistributionFrequency),
		)
	}

	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

func decimalOrDash(d *decimal.Decimal, places int32) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(places)
}
