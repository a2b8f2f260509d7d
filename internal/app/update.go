package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"etf-watcher/internal/updater"
)

// Update runs a one-shot crawl for the named providers, or for every
// registered provider when none are named, and prints a summary table.
// It errors only when not a single provider delivered or kept data.
func (a *App) Update(ctx context.Context, opts UpdateOptions) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	up, err := a.newUpdater(st)
	if err != nil {
		return err
	}

	var results []updater.RunResult
	if len(opts.Providers) == 0 {
		summary := up.UpdateAll(ctx, opts.Force)
		results = summary.Results
	} else {
		for _, name := range opts.Providers {
			src, ok := up.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown provider %q (known: %s)", name, strings.Join(up.Providers(), ", "))
			}
			results = append(results, up.UpdateOne(ctx, src, opts.Force))
		}
	}

	printUpdateResults(os.Stdout, results)

	usable := 0
	for _, result := range results {
		if result.Success || result.Skipped {
			usable++
		}
	}
	if usable == 0 {
		return errors.New("every provider update failed")
	}
	return nil
}

func printUpdateResults(w io.Writer, results []updater.RunResult) {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Provider\tStatus\tRecords\tSeconds\tDetail")

	for _, result := range results {
		status := "ok"
		detail := ""
		switch {
		case result.Skipped:
			status = "skipped"
			detail = result.Reason
		case !result.Success:
			status = "failed"
			detail = result.Error
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%d\t%.1f\t%s\n",
			result.Provider,
			status,
			result.Count,
			result.DurationSeconds,
			sanitizeInline(detail),
		)
	}

	writer.Flush()
}
