package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

const (
	vanguardName       = "vanguard"
	vanguardDefaultURL = "https://investor.vanguard.com/investment-products/list/funddetail/all"
	vanguardProfileURL = "https://investor.vanguard.com/investment-products/etfs/profile/"
)

// Vanguard crawls the Vanguard fund detail API. The response mixes ETFs with
// mutual funds, so entities without the isETF flag are skipped.
type Vanguard struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

var _ Source = (*Vanguard)(nil)

func NewVanguard(opts Options, logger zerolog.Logger) *Vanguard {
	if opts.BaseURL == "" {
		opts.BaseURL = vanguardDefaultURL
	}
	return &Vanguard{
		opts:   opts,
		client: newHTTPClient(opts.Timeout),
		logger: logger.With().Str("source", vanguardName).Logger(),
	}
}

func (c *Vanguard) Name() string { return vanguardName }

func (c *Vanguard) Fetch(ctx context.Context) ([]byte, error) {
	return fetchURL(ctx, c.client, vanguardName, c.opts.BaseURL, c.opts.UserAgent)
}

type vanguardResponse struct {
	Fund struct {
		Entity []json.RawMessage `json:"entity"`
	} `json:"fund"`
	Size int `json:"size"`
}

type vanguardEntity struct {
	Profile struct {
		Ticker        string      `json:"ticker"`
		LongName      string      `json:"longName"`
		ShortName     string      `json:"shortName"`
		CUSIP         string      `json:"cusip"`
		ExpenseRatio  flexDecimal `json:"expenseRatio"`
		InceptionDate string      `json:"inceptionDate"`
		IsETF         bool        `json:"isETF"`
		Style         string      `json:"style"`
	} `json:"profile"`
	DailyPrice struct {
		Regular struct {
			Price    flexDecimal `json:"price"`
			AsOfDate string      `json:"asOfDate"`
		} `json:"regular"`
	} `json:"dailyPrice"`
	MonthEndAvgAnnualRtn struct {
		FundReturn struct {
			OneYearPct        flexDecimal `json:"oneYearPct"`
			ThreeYearPct      flexDecimal `json:"threeYearPct"`
			FiveYearPct       flexDecimal `json:"fiveYearPct"`
			TenYearPct        flexDecimal `json:"tenYearPct"`
			SinceInceptionPct flexDecimal `json:"sinceInceptionPct"`
		} `json:"fundReturn"`
	} `json:"monthEndAvgAnnualRtn"`
	Yield struct {
		YieldPct flexDecimal `json:"yieldPct"`
	} `json:"yield"`
}

func (c *Vanguard) Parse(raw []byte) ([]model.ETF, error) {
	var resp vanguardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ParseError{Source: vanguardName, Err: err}
	}

	etfs := make([]model.ETF, 0, len(resp.Fund.Entity))
	dropped := 0
	for _, item := range resp.Fund.Entity {
		var entity vanguardEntity
		if err := json.Unmarshal(item, &entity); err != nil {
			dropped++
			continue
		}
		if !entity.Profile.IsETF {
			continue
		}
		ticker := strings.TrimSpace(entity.Profile.Ticker)
		if ticker == "" {
			continue
		}

		fundName := entity.Profile.LongName
		if fundName == "" {
			fundName = entity.Profile.ShortName
		}
		profileURL := vanguardProfileURL + strings.ToLower(ticker)

		etfs = append(etfs, model.ETF{
			Ticker:               ticker,
			FundName:             fundName,
			ISIN:                 "N/A",
			CUSIP:                valueOr(entity.Profile.CUSIP, "N/A"),
			InceptionDate:        parseVanguardDate(entity.Profile.InceptionDate),
			NAV:                  entity.DailyPrice.Regular.Price.decimalOr(decimal.Zero),
			NAVAsOf:              dateOrToday(parseVanguardDate(entity.DailyPrice.Regular.AsOfDate)),
			ExpenseRatio:         entity.Profile.ExpenseRatio.decimalOr(decimal.Zero),
			OneYearReturn:        entity.MonthEndAvgAnnualRtn.FundReturn.OneYearPct.decimal(),
			ThreeYearReturn:      entity.MonthEndAvgAnnualRtn.FundReturn.ThreeYearPct.decimal(),
			FiveYearReturn:       entity.MonthEndAvgAnnualRtn.FundReturn.FiveYearPct.decimal(),
			TenYearReturn:        entity.MonthEndAvgAnnualRtn.FundReturn.TenYearPct.decimal(),
			SinceInceptionReturn: entity.MonthEndAvgAnnualRtn.FundReturn.SinceInceptionPct.decimal(),
			AssetClass:           valueOr(entity.Profile.Style, "Unknown"),
			Region:               "North America",
			MarketType:           "Developed",
			DistributionYield:    entity.Yield.YieldPct.decimal(),
			ProductPageURL:       profileURL,
			DetailPageURL:        profileURL,
		})
	}
	if dropped > 0 {
		c.logger.Debug().Int("dropped", dropped).Msg("skipped unreadable fund entities")
	}
	c.logger.Debug().Int("funds", resp.Size).Int("etfs", len(etfs)).Msg("parsed fund list")
	return etfs, nil
}

// parseVanguardDate reads timestamps such as "2025-02-07T00:00:00-05:00" as
// well as bare dates.
func parseVanguardDate(value string) *model.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		d := model.DateOf(t)
		return &d
	}
	return parseDateAny(value, "2006-01-02")
}
