package crawler

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

const (
	firstTrustName       = "firsttrust"
	firstTrustDefaultURL = "https://www.ftportfolios.com"
	firstTrustListPath   = "/Retail/etf/etflist.aspx"

	// Placeholder First Trust prints for cells without data.
	firstTrustEmptyCell = "-------"
)

// FirstTrust scrapes the First Trust ETF list page. The page carries plain
// HTML tables; the listing table is recognized by its header row and columns
// are located by header text rather than position.
type FirstTrust struct {
	opts    Options
	client  *http.Client
	logger  zerolog.Logger
	baseURL string
}

var _ Source = (*FirstTrust)(nil)

func NewFirstTrust(opts Options, logger zerolog.Logger) *FirstTrust {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = firstTrustDefaultURL
	}
	return &FirstTrust{
		opts:    opts,
		client:  newHTTPClient(opts.Timeout),
		logger:  logger.With().Str("source", firstTrustName).Logger(),
		baseURL: baseURL,
	}
}

func (c *FirstTrust) Name() string { return firstTrustName }

func (c *FirstTrust) Fetch(ctx context.Context) ([]byte, error) {
	return fetchURL(ctx, c.client, firstTrustName, c.baseURL+firstTrustListPath, c.opts.UserAgent)
}

func (c *FirstTrust) Parse(raw []byte) ([]model.ETF, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Source: firstTrustName, Err: err}
	}

	var etfs []model.ETF
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		headers := cellTexts(rows.First())
		if !isListingTable(headers) {
			return
		}

		tickerIdx := columnIndex(headers, "ticker")
		nameIdx := columnIndex(headers, "fund")
		inceptionIdx := columnIndex(headers, "inception")
		navIdx := columnIndex(headers, "nav")
		yieldIdx := columnIndex(headers, "sec yield")
		if tickerIdx < 0 || nameIdx < 0 || inceptionIdx < 0 {
			return
		}

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() < 3 {
				return
			}
			texts := cellTexts(row)

			ticker := textAt(texts, tickerIdx)
			name := textAt(texts, nameIdx)
			if ticker == "" || name == "" || ticker == "TickerSymbol" {
				return
			}

			detailURL := ""
			if href, ok := cells.Eq(tickerIdx).Find("a[href]").Attr("href"); ok {
				detailURL = c.baseURL + href
			}

			etfs = append(etfs, model.ETF{
				Ticker:            ticker,
				FundName:          name,
				InceptionDate:     parseDateAny(tableCell(texts, inceptionIdx), "01/02/06"),
				NAV:               parsePriceCell(tableCell(texts, navIdx)),
				NAVAsOf:           model.Today(),
				DistributionYield: parsePercentCell(tableCell(texts, yieldIdx)),
				ProductPageURL:    detailURL,
				DetailPageURL:     detailURL,
			})
		})
	})

	c.logger.Debug().Int("etfs", len(etfs)).Msg("parsed listing tables")
	return etfs, nil
}

// isListingTable reports whether a header row names the columns the listing
// table is known to carry.
func isListingTable(headers []string) bool {
	joined := strings.ToLower(strings.Join(headers, " "))
	for _, required := range []string{"ticker", "fund", "inception"} {
		if !strings.Contains(joined, required) {
			return false
		}
	}
	return true
}

func columnIndex(headers []string, name string) int {
	for i, header := range headers {
		if strings.Contains(strings.ToLower(header), name) {
			return i
		}
	}
	return -1
}

func cellTexts(row *goquery.Selection) []string {
	cells := row.Find("th, td")
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}

func textAt(texts []string, idx int) string {
	if idx < 0 || idx >= len(texts) {
		return ""
	}
	return texts[idx]
}

func tableCell(texts []string, idx int) string {
	text := textAt(texts, idx)
	if text == firstTrustEmptyCell {
		return ""
	}
	return text
}

// parsePriceCell reads cells such as "$30.12" or "$1,204.50".
func parsePriceCell(text string) decimal.Decimal {
	if text == "" {
		return decimal.Zero
	}
	text = strings.ReplaceAll(strings.ReplaceAll(text, "$", ""), ",", "")
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parsePercentCell reads cells such as "2.31%".
func parsePercentCell(text string) *decimal.Decimal {
	if text == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(text, "%"))
	if err != nil {
		return nil
	}
	d = d.Round(2)
	return &d
}
