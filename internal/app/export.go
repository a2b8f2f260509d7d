package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"etf-watcher/internal/model"
	"etf-watcher/internal/updater"
)

// Export writes a provider's stored listing as CSV and/or renders its top
// distribution yields as a PNG bar chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.Provider == "" {
		return errors.New("provider is required")
	}

	opts.TopYields = a.Config.ResolveTopYields(opts.TopYields)

	st, err := a.openStore()
	if err != nil {
		return err
	}
	records, err := st.Load(opts.Provider, updater.KindListing)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Str("provider", opts.Provider).Msg("nothing stored; nothing to export")
		return nil
	}

	if opts.CSVPath != "" {
		if err := writeListingCSV(opts.CSVPath, records); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.CSVPath).Int("records", len(records)).Msg("csv written")
	}

	if opts.PNGPath != "" {
		if err := writeYieldChartPNG(opts.PNGPath, records, opts.TopYields); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.PNGPath).Int("top", opts.TopYields).Msg("chart written")
	}

	return nil
}

func writeListingCSV(path string, records []model.ETF) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"ticker", "fund_name", "isin", "cusip", "inception_date",
		"nav_amount", "nav_as_of", "expense_ratio",
		"ytd_return", "one_year_return", "three_year_return",
		"five_year_return", "ten_year_return", "since_inception_return",
		"asset_class", "region", "market_type",
		"distribution_yield", "distribution_frequency",
		"product_page_url", "detail_page_url",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, etf := range records {
		inception := ""
		if etf.InceptionDate != nil {
			inception = etf.InceptionDate.String()
		}
		record := []string{
			etf.Ticker,
			etf.FundName,
			etf.ISIN,
			etf.CUSIP,
			inception,
			etf.NAV.String(),
			etf.NAVAsOf.String(),
			etf.ExpenseRatio.String(),
			decimalOrEmpty(etf.YTDReturn),
			decimalOrEmpty(etf.OneYearReturn),
			decimalOrEmpty(etf.ThreeYearReturn),
			decimalOrEmpty(etf.FiveYearReturn),
			decimalOrEmpty(etf.TenYearReturn),
			decimalOrEmpty(etf.SinceInceptionReturn),
			etf.AssetClass,
			etf.Region,
			etf.MarketType,
			decimalOrEmpty(etf.DistributionYield),
			string(etf.DistributionFrequency),
			etf.ProductPageURL,
			etf.DetailPageURL,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeYieldChartPNG(path string, records []model.ETF, top int) error {
	type yield struct {
		ticker string
		value  float64
	}

	yields := make([]yield, 0, len(records))
	for _, etf := range records {
		if etf.DistributionYield == nil || etf.DistributionYield.Sign() <= 0 {
			continue
		}
		yields = append(yields, yield{ticker: etf.Ticker, value: etf.DistributionYield.InexactFloat64()})
	}
	if len(yields) == 0 {
		return errors.New("no distribution yield data to chart")
	}

	sort.Slice(yields, func(i, j int) bool { return yields[i].value > yields[j].value })
	if top > 0 && len(yields) > top {
		yields = yields[:top]
	}

	bars := make([]chart.Value, len(yields))
	for i, y := range yields {
		bars[i] = chart.Value{Label: y.ticker, Value: y.value}
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	graph := chart.BarChart{
		Title:    "Top distribution yields (%)",
		Width:    1280,
		Height:   720,
		BarWidth: 40,
		Bars:     bars,
	}
	return graph.Render(chart.PNG, file)
}

func decimalOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
