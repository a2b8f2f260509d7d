package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Frequency enumerates distribution payout cadences.
type Frequency string

const (
	FrequencyWeekly     Frequency = "Weekly"
	FrequencyMonthly    Frequency = "Monthly"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencySemiAnnual Frequency = "Semi-Annual"
	FrequencyAnnual     Frequency = "Annual"
	FrequencyVariable   Frequency = "Variable"
	FrequencyNone       Frequency = "None"
	FrequencyUnknown    Frequency = "Unknown"
)

// ParseFrequency normalises the many upstream spellings of a payout cadence.
// Unrecognised values map to FrequencyUnknown.
func ParseFrequency(s string) Frequency {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "", " ", "", "_", "").Replace(normalized)

	switch normalized {
	case "weekly":
		return FrequencyWeekly
	case "monthly":
		return FrequencyMonthly
	case "quarterly":
		return FrequencyQuarterly
	case "semiannual", "semiannually":
		return FrequencySemiAnnual
	case "annual", "annually", "yearly":
		return FrequencyAnnual
	case "variable":
		return FrequencyVariable
	case "none":
		return FrequencyNone
	default:
		return FrequencyUnknown
	}
}

// ETF is one normalised listing entry. Percentages are expressed as plain
// numbers (0.03 means 0.03%), money amounts in the fund's listing currency.
type ETF struct {
	Ticker        string `json:"ticker"`
	FundName      string `json:"fund_name"`
	ISIN          string `json:"isin,omitempty"`
	CUSIP         string `json:"cusip,omitempty"`
	InceptionDate *Date  `json:"inception_date,omitempty"`

	NAV     decimal.Decimal `json:"nav_amount"`
	NAVAsOf Date            `json:"nav_as_of"`

	ExpenseRatio decimal.Decimal `json:"expense_ratio"`

	YTDReturn            *decimal.Decimal `json:"ytd_return,omitempty"`
	OneYearReturn        *decimal.Decimal `json:"one_year_return,omitempty"`
	ThreeYearReturn      *decimal.Decimal `json:"three_year_return,omitempty"`
	FiveYearReturn       *decimal.Decimal `json:"five_year_return,omitempty"`
	TenYearReturn        *decimal.Decimal `json:"ten_year_return,omitempty"`
	SinceInceptionReturn *decimal.Decimal `json:"since_inception_return,omitempty"`

	AssetClass string `json:"asset_class,omitempty"`
	Region     string `json:"region,omitempty"`
	MarketType string `json:"market_type,omitempty"`

	DistributionYield     *decimal.Decimal `json:"distribution_yield,omitempty"`
	DistributionFrequency Frequency        `json:"distribution_frequency,omitempty"`

	ProductPageURL string `json:"product_page_url,omitempty"`
	DetailPageURL  string `json:"detail_page_url,omitempty"`
}
