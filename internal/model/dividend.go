package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoYieldData marks a fund without distribution yield figures; dividend
// projections cannot be computed for it.
var ErrNoYieldData = errors.New("no distribution yield data")

var (
	dec12      = decimal.NewFromInt(12)
	decHundred = decimal.NewFromInt(100)
)

// DividendEstimate projects payout income for a hypothetical position.
// Money amounts are rounded to cents.
type DividendEstimate struct {
	Ticker            string          `json:"ticker"`
	FundName          string          `json:"fund_name"`
	InvestmentAmount  decimal.Decimal `json:"investment_amount"`
	SharesPurchased   decimal.Decimal `json:"shares_purchased"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	DistributionYield decimal.Decimal `json:"distribution_yield"`
	AnnualDividend    decimal.Decimal `json:"annual_dividend_estimate"`
	MonthlyDividend   decimal.Decimal `json:"monthly_dividend_estimate"`
	TotalDividend     decimal.Decimal `json:"total_dividend_estimate"`
	HoldingMonths     int             `json:"holding_period_months"`
}

// EstimateDividends computes the projected income of investing the given
// amount into the fund and holding it for the given number of months. The
// yield is treated as a flat annual percentage paid out monthly.
func EstimateDividends(etf ETF, investment decimal.Decimal, months int) (DividendEstimate, error) {
	if investment.Sign() <= 0 {
		return DividendEstimate{}, fmt.Errorf("investment amount must be positive, got %s", investment)
	}
	if months < 1 {
		return DividendEstimate{}, fmt.Errorf("holding period must be at least one month, got %d", months)
	}
	if etf.DistributionYield == nil || etf.DistributionYield.IsZero() {
		return DividendEstimate{}, fmt.Errorf("%s: %w", etf.Ticker, ErrNoYieldData)
	}
	if etf.NAV.Sign() <= 0 {
		return DividendEstimate{}, fmt.Errorf("%s has no usable price", etf.Ticker)
	}

	shares := investment.Div(etf.NAV)
	annual := investment.Mul(etf.DistributionYield.Div(decHundred))
	monthly := annual.Div(dec12)
	total := monthly.Mul(decimal.NewFromInt(int64(months)))

	return DividendEstimate{
		Ticker:            etf.Ticker,
		FundName:          etf.FundName,
		InvestmentAmount:  investment,
		SharesPurchased:   shares.Round(2),
		CurrentPrice:      etf.NAV,
		DistributionYield: *etf.DistributionYield,
		AnnualDividend:    annual.Round(2),
		MonthlyDividend:   monthly.Round(2),
		TotalDividend:     total.Round(2),
		HoldingMonths:     months,
	}, nil
}
