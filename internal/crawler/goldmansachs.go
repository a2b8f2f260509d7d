package crawler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

const (
	goldmanName       = "goldmansachs"
	goldmanDefaultURL = "https://am.gs.com/services/funds"
	goldmanProductURL = "https://am.gs.com/en-us/institutions/products/"
)

const goldmanFundsQuery = `
query getFunds($fundRequest: FundRequest) {
  fundData(fundRequest: $fundRequest) {
    funds {
      fundName
      fundType
      pvNumber
      shareClasses {
        shareClassId
        ticker
        shareClassInceptionDate
        baseCurrency
        distributionFrequency
        dailyPerformance {
          nav {
            asAtDate
            value
          }
          shareClassNetAssets {
            asAtDate
            value
          }
        }
        monthlyPerformance {
          asAtDate
          annualisedReturns1yr
          annualisedReturns3yr
          annualisedReturns5yr
          annualisedReturns10yr
          annualisedReturnsSinceIncept
        }
      }
    }
  }
}
`

// GoldmanSachs crawls the Goldman Sachs Asset Management fund catalog over
// its GraphQL endpoint. A fund may list several share classes, each with its
// own ticker, and every share class becomes one record.
type GoldmanSachs struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

var _ Source = (*GoldmanSachs)(nil)

func NewGoldmanSachs(opts Options, logger zerolog.Logger) *GoldmanSachs {
	if opts.BaseURL == "" {
		opts.BaseURL = goldmanDefaultURL
	}
	return &GoldmanSachs{
		opts:   opts,
		client: newHTTPClient(opts.Timeout),
		logger: logger.With().Str("source", goldmanName).Logger(),
	}
}

func (c *GoldmanSachs) Name() string { return goldmanName }

type goldmanRequest struct {
	OperationName string           `json:"operationName"`
	Variables     goldmanVariables `json:"variables"`
	Query         string           `json:"query"`
}

type goldmanVariables struct {
	FundRequest goldmanFundRequest `json:"fundRequest"`
}

type goldmanFundRequest struct {
	Country       string             `json:"country"`
	Language      string             `json:"language"`
	Audience      string             `json:"audience"`
	DisabledFunds []string           `json:"disabledFunds"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
	SortBy        string             `json:"sortBy"`
	SortOrder     string             `json:"sortOrder"`
	FilterParam   goldmanFilterParam `json:"filterParam"`
}

type goldmanFilterParam struct {
	SearchText string `json:"searchText"`
}

func (c *GoldmanSachs) Fetch(ctx context.Context) ([]byte, error) {
	payload := goldmanRequest{
		OperationName: "getFunds",
		Variables: goldmanVariables{
			FundRequest: goldmanFundRequest{
				Country:       "us",
				Language:      "en",
				Audience:      "institutions",
				DisabledFunds: []string{},
				Limit:         500,
				Offset:        0,
				SortBy:        "FN",
				SortOrder:     "ASC",
			},
		},
		Query: goldmanFundsQuery,
	}
	return postJSON(ctx, c.client, goldmanName, c.opts.BaseURL, payload, c.opts.UserAgent)
}

type goldmanResponse struct {
	Data struct {
		FundData struct {
			Funds []goldmanFund `json:"funds"`
		} `json:"fundData"`
	} `json:"data"`
}

type goldmanFund struct {
	FundName     string              `json:"fundName"`
	FundType     string              `json:"fundType"`
	ShareClasses []goldmanShareClass `json:"shareClasses"`
}

type goldmanShareClass struct {
	ShareClassID          string `json:"shareClassId"`
	Ticker                string `json:"ticker"`
	InceptionDate         string `json:"shareClassInceptionDate"`
	DistributionFrequency string `json:"distributionFrequency"`
	DailyPerformance      struct {
		NAV struct {
			AsAtDate string      `json:"asAtDate"`
			Value    flexDecimal `json:"value"`
		} `json:"nav"`
	} `json:"dailyPerformance"`
	MonthlyPerformance struct {
		Returns1yr         flexDecimal `json:"annualisedReturns1yr"`
		Returns3yr         flexDecimal `json:"annualisedReturns3yr"`
		Returns5yr         flexDecimal `json:"annualisedReturns5yr"`
		Returns10yr        flexDecimal `json:"annualisedReturns10yr"`
		ReturnsSinceIncept flexDecimal `json:"annualisedReturnsSinceIncept"`
	} `json:"monthlyPerformance"`
}

func (c *GoldmanSachs) Parse(raw []byte) ([]model.ETF, error) {
	var resp goldmanResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ParseError{Source: goldmanName, Err: err}
	}

	var etfs []model.ETF
	for _, fund := range resp.Data.FundData.Funds {
		if fund.FundType != "ETF" {
			continue
		}
		for _, sc := range fund.ShareClasses {
			if sc.Ticker == "" {
				continue
			}
			productURL := goldmanProductURL + sc.Ticker
			etfs = append(etfs, model.ETF{
				Ticker:                sc.Ticker,
				FundName:              fund.FundName,
				ISIN:                  valueOr(sc.ShareClassID, "N/A"),
				CUSIP:                 "N/A",
				InceptionDate:         parseDateAny(sc.InceptionDate, "2006-01-02"),
				NAV:                   sc.DailyPerformance.NAV.Value.decimalOr(decimal.Zero),
				NAVAsOf:               dateOrToday(parseDateAny(sc.DailyPerformance.NAV.AsAtDate, "2006-01-02")),
				ExpenseRatio:          decimal.Zero,
				OneYearReturn:         sc.MonthlyPerformance.Returns1yr.decimal(),
				ThreeYearReturn:       sc.MonthlyPerformance.Returns3yr.decimal(),
				FiveYearReturn:        sc.MonthlyPerformance.Returns5yr.decimal(),
				TenYearReturn:         sc.MonthlyPerformance.Returns10yr.decimal(),
				SinceInceptionReturn:  sc.MonthlyPerformance.ReturnsSinceIncept.decimal(),
				AssetClass:            "Unknown",
				Region:                "US",
				MarketType:            "ETF",
				DistributionFrequency: model.ParseFrequency(sc.DistributionFrequency),
				ProductPageURL:        productURL,
				DetailPageURL:         productURL,
			})
		}
	}
	c.logger.Debug().Int("etfs", len(etfs)).Msg("parsed fund catalog")
	return etfs, nil
}
