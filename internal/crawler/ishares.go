package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

const (
	isharesName       = "ishares"
	isharesDefaultURL = "https://www.ishares.com/us/product-screener/product-screener-v3.1.jsn"
	isharesConfigPath = "/templatedata/config/product-screener-v3/data/en/us-ishares/ishares-product-screener-backend-config"
)

// IShares crawls the iShares US product screener. The screener answers with
// one JSON object keyed by portfolio ID, where numeric fields arrive wrapped
// as {"r": <value>} and dates as {"d": "<Mon D, YYYY>"}.
type IShares struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

var _ Source = (*IShares)(nil)

func NewIShares(opts Options, logger zerolog.Logger) *IShares {
	if opts.BaseURL == "" {
		opts.BaseURL = isharesDefaultURL
	}
	return &IShares{
		opts:   opts,
		client: newHTTPClient(opts.Timeout),
		logger: logger.With().Str("source", isharesName).Logger(),
	}
}

func (c *IShares) Name() string { return isharesName }

func (c *IShares) Fetch(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return nil, &TransportError{Source: isharesName, Err: err}
	}
	q := u.Query()
	q.Set("dcrPath", isharesConfigPath)
	q.Set("siteEntryPassthrough", "true")
	u.RawQuery = q.Encode()
	return fetchURL(ctx, c.client, isharesName, u.String(), c.opts.UserAgent)
}

type isharesWrapped struct {
	Raw flexDecimal `json:"r"`
}

type isharesDate struct {
	Display string `json:"d"`
}

func (d *isharesDate) date() *model.Date {
	if d == nil {
		return nil
	}
	return parseDateAny(d.Display, "Jan 02, 2006")
}

type isharesFund struct {
	LocalExchangeTicker string          `json:"localExchangeTicker"`
	FundName            string          `json:"fundName"`
	ISIN                string          `json:"isin"`
	CUSIP               string          `json:"cusip"`
	InceptionDate       *isharesDate    `json:"inceptionDate"`
	NavAmount           *isharesWrapped `json:"navAmount"`
	NavAmountAsOf       *isharesDate    `json:"navAmountAsOf"`
	Fees                *isharesWrapped `json:"fees"`

	// Quarterly NAV figures are preferred, price figures are the fallback.
	QuarterlyNavYearToDate               *isharesWrapped `json:"quarterlyNavYearToDate"`
	PriceYearToDate                      *isharesWrapped `json:"priceYearToDate"`
	QuarterlyNavOneYearAnnualized        *isharesWrapped `json:"quarterlyNavOneYearAnnualized"`
	PriceOneYearAnnualized               *isharesWrapped `json:"priceOneYearAnnualized"`
	QuarterlyNavThreeYearAnnualized      *isharesWrapped `json:"quarterlyNavThreeYearAnnualized"`
	PriceThreeYearAnnualized             *isharesWrapped `json:"priceThreeYearAnnualized"`
	QuarterlyNavFiveYearAnnualized       *isharesWrapped `json:"quarterlyNavFiveYearAnnualized"`
	PriceFiveYearAnnualized              *isharesWrapped `json:"priceFiveYearAnnualized"`
	QuarterlyNavTenYearAnnualized        *isharesWrapped `json:"quarterlyNavTenYearAnnualized"`
	PriceTenYearAnnualized               *isharesWrapped `json:"priceTenYearAnnualized"`
	QuarterlyNavSinceInceptionAnnualized *isharesWrapped `json:"quarterlyNavSinceInceptionAnnualized"`
	PriceSinceInceptionAnnualized        *isharesWrapped `json:"priceSinceInceptionAnnualized"`

	AladdinAssetClass string          `json:"aladdinAssetClass"`
	AladdinRegion     string          `json:"aladdinRegion"`
	AladdinMarketType string          `json:"aladdinMarketType"`
	DistributionYield *isharesWrapped `json:"distributionYield"`
	ProductPageURL    string          `json:"productPageUrl"`
}

func (c *IShares) Parse(raw []byte) ([]model.ETF, error) {
	var screener map[string]json.RawMessage
	if err := json.Unmarshal(raw, &screener); err != nil {
		return nil, &ParseError{Source: isharesName, Err: err}
	}

	ids := make([]string, 0, len(screener))
	for id := range screener {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	etfs := make([]model.ETF, 0, len(ids))
	dropped := 0
	for _, id := range ids {
		var fund isharesFund
		if err := json.Unmarshal(screener[id], &fund); err != nil {
			dropped++
			continue
		}
		if fund.LocalExchangeTicker == "" || fund.FundName == "" || fund.ISIN == "" {
			dropped++
			continue
		}
		etfs = append(etfs, model.ETF{
			Ticker:               fund.LocalExchangeTicker,
			FundName:             fund.FundName,
			ISIN:                 fund.ISIN,
			CUSIP:                fund.CUSIP,
			InceptionDate:        fund.InceptionDate.date(),
			NAV:                  wrappedOr(fund.NavAmount, decimal.Zero),
			NAVAsOf:              dateOrToday(fund.NavAmountAsOf.date()),
			ExpenseRatio:         wrappedOr(fund.Fees, decimal.Zero),
			YTDReturn:            firstWrapped(fund.QuarterlyNavYearToDate, fund.PriceYearToDate),
			OneYearReturn:        firstWrapped(fund.QuarterlyNavOneYearAnnualized, fund.PriceOneYearAnnualized),
			ThreeYearReturn:      firstWrapped(fund.QuarterlyNavThreeYearAnnualized, fund.PriceThreeYearAnnualized),
			FiveYearReturn:       firstWrapped(fund.QuarterlyNavFiveYearAnnualized, fund.PriceFiveYearAnnualized),
			TenYearReturn:        firstWrapped(fund.QuarterlyNavTenYearAnnualized, fund.PriceTenYearAnnualized),
			SinceInceptionReturn: firstWrapped(fund.QuarterlyNavSinceInceptionAnnualized, fund.PriceSinceInceptionAnnualized),
			AssetClass:           valueOr(fund.AladdinAssetClass, "Unknown"),
			Region:               valueOr(fund.AladdinRegion, "Unknown"),
			MarketType:           valueOr(fund.AladdinMarketType, "Unknown"),
			DistributionYield:    wrappedDecimal(fund.DistributionYield),
			ProductPageURL:       fund.ProductPageURL,
			DetailPageURL:        fund.ProductPageURL,
		})
	}
	if dropped > 0 {
		c.logger.Debug().Int("dropped", dropped).Msg("skipped unreadable screener entries")
	}
	return etfs, nil
}

func wrappedDecimal(w *isharesWrapped) *decimal.Decimal {
	if w == nil {
		return nil
	}
	return w.Raw.decimal()
}

func wrappedOr(w *isharesWrapped, fallback decimal.Decimal) decimal.Decimal {
	if d := wrappedDecimal(w); d != nil {
		return *d
	}
	return fallback
}

func firstWrapped(candidates ...*isharesWrapped) *decimal.Decimal {
	for _, w := range candidates {
		if d := wrappedDecimal(w); d != nil {
			return d
		}
	}
	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func dateOrToday(d *model.Date) model.Date {
	if d != nil {
		return *d
	}
	return model.Today()
}
