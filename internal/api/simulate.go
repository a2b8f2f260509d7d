package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

// DefaultHoldingMonths is assumed when a simulation request omits the
// holding period.
const DefaultHoldingMonths = 12

type simulateDividendRequest struct {
	Ticker           string          `json:"ticker"`
	InvestmentAmount decimal.Decimal `json:"investment_amount"`
	HoldingMonths    int             `json:"holding_period_months"`
}

// simulateDividend projects payout income for a hypothetical position in
// the requested ticker, searched across every stored listing.
func (h *handlers) simulateDividend(ctx context.Context, input *simulateDividendRequest) (*model.DividendEstimate, error) {
	if strings.TrimSpace(input.Ticker) == "" {
		return nil, fmt.Errorf("%w: ticker is required", ErrInvalidInput)
	}
	months := input.HoldingMonths
	if months == 0 {
		months = DefaultHoldingMonths
	}

	etf, err := h.updater.FindTicker(input.Ticker)
	if err != nil {
		return nil, err
	}

	estimate, err := model.EstimateDividends(*etf, input.InvestmentAmount, months)
	if err != nil {
		if errors.Is(err, model.ErrNoYieldData) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &estimate, nil
}
