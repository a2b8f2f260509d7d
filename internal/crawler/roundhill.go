package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

const (
	roundhillName       = "roundhill"
	roundhillDefaultURL = "https://www.roundhillinvestments.com/etf"
)

var roundhillExpensePattern = regexp.MustCompile(`(?i)(?:expense ratio|net expense)[:\s]*(\d+\.\d+)%`)

// Roundhill crawls the Roundhill Investments site. The listing page only
// links to per-fund pages, so Fetch walks the listing for tickers, downloads
// every fund page, and bundles the lot into one payload for Parse.
type Roundhill struct {
	opts    Options
	client  *http.Client
	logger  zerolog.Logger
	baseURL string
}

var _ Source = (*Roundhill)(nil)

func NewRoundhill(opts Options, logger zerolog.Logger) *Roundhill {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = roundhillDefaultURL
	}
	return &Roundhill{
		opts:    opts,
		client:  newHTTPClient(opts.Timeout),
		logger:  logger.With().Str("source", roundhillName).Logger(),
		baseURL: baseURL,
	}
}

func (c *Roundhill) Name() string { return roundhillName }

// roundhillBundle is the payload Fetch hands to Parse: every fund page that
// could be downloaded, keyed by upper-case ticker.
type roundhillBundle struct {
	Pages map[string]string `json:"pages"`
}

func (c *Roundhill) Fetch(ctx context.Context) ([]byte, error) {
	listing, err := fetchURL(ctx, c.client, roundhillName, c.baseURL, c.opts.UserAgent)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(listing))
	if err != nil {
		return nil, &ParseError{Source: roundhillName, Err: err}
	}

	tickers := extractRoundhillTickers(doc)
	c.logger.Debug().Int("tickers", len(tickers)).Msg("found fund links")

	bundle := roundhillBundle{Pages: make(map[string]string, len(tickers))}
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, &TransportError{Source: roundhillName, Err: err}
		}
		page, err := fetchURL(ctx, c.client, roundhillName, c.detailURL(ticker), c.opts.UserAgent)
		if err != nil {
			c.logger.Warn().Err(err).Str("ticker", ticker).Msg("skipping fund page")
			continue
		}
		bundle.Pages[ticker] = string(page)
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, &ParseError{Source: roundhillName, Err: err}
	}
	return payload, nil
}

func (c *Roundhill) detailURL(ticker string) string {
	return c.baseURL + "/" + strings.ToLower(ticker) + "/"
}

// extractRoundhillTickers collects fund tickers from listing page links of
// the form ../etf/<ticker>/ or /etf/<ticker>/.
func extractRoundhillTickers(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.Contains(href, "etf/") {
			return
		}
		var ticker string
		switch {
		case strings.Contains(href, "../etf/"):
			ticker = strings.Trim(strings.Replace(href, "../etf/", "", 1), "/")
		case strings.Contains(href, "/etf/"):
			parts := strings.Split(href, "/etf/")
			ticker = strings.Trim(parts[len(parts)-1], "/")
		default:
			return
		}
		if validRoundhillTicker(ticker) {
			seen[strings.ToUpper(ticker)] = struct{}{}
		}
	})

	tickers := make([]string, 0, len(seen))
	for ticker := range seen {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

func validRoundhillTicker(ticker string) bool {
	if ticker == "" || len(ticker) > 5 {
		return false
	}
	stripped := strings.ReplaceAll(ticker, "-", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (c *Roundhill) Parse(raw []byte) ([]model.ETF, error) {
	var bundle roundhillBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, &ParseError{Source: roundhillName, Err: err}
	}

	tickers := make([]string, 0, len(bundle.Pages))
	for ticker := range bundle.Pages {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	etfs := make([]model.ETF, 0, len(tickers))
	for _, ticker := range tickers {
		etf, ok := c.parseFundPage(ticker, bundle.Pages[ticker])
		if !ok {
			continue
		}
		etfs = append(etfs, etf)
	}
	return etfs, nil
}

func (c *Roundhill) parseFundPage(ticker, page string) (model.ETF, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		c.logger.Warn().Err(err).Str("ticker", ticker).Msg("unreadable fund page")
		return model.ETF{}, false
	}

	heading := doc.Find("h1").First()
	if heading.Length() == 0 {
		c.logger.Warn().Str("ticker", ticker).Msg("fund page has no heading")
		return model.ETF{}, false
	}
	fullName := strings.TrimSpace(heading.Text())
	fundName := strings.TrimSpace(strings.ReplaceAll(fullName, ticker, ""))

	expenseRatio := decimal.Zero
	if m := roundhillExpensePattern.FindStringSubmatch(doc.Text()); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			expenseRatio = d
		}
	}

	pageURL := c.detailURL(ticker)
	return model.ETF{
		Ticker:         ticker,
		FundName:       fundName,
		ISIN:           "N/A",
		CUSIP:          "N/A",
		NAV:            decimal.Zero,
		NAVAsOf:        model.Today(),
		ExpenseRatio:   expenseRatio,
		AssetClass:     "Unknown",
		Region:         "Unknown",
		MarketType:     "Unknown",
		ProductPageURL: pageURL,
		DetailPageURL:  pageURL,
	}, true
}
