package crawler

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

const (
	direxionName    = "direxion"
	direxionSiteURL = "https://www.direxion.com"
)

// direxionListings is a curated snapshot of the Direxion lineup. The site
// offers no machine-readable catalog, so the list is maintained by hand.
var direxionListings = []direxionListing{
	// Leveraged bull 3X
	{"TQQQ", "Direxion Daily NASDAQ-100 Bull 3X Shares"},
	{"SOXL", "Direxion Daily Semiconductor Bull 3X Shares"},
	{"SPXL", "Direxion Daily S&P 500 Bull 3X Shares"},
	{"TNA", "Direxion Daily Small Cap Bull 3X Shares"},
	{"TECL", "Direxion Daily Technology Bull 3X Shares"},
	{"CURE", "Direxion Daily Healthcare Bull 3X Shares"},
	{"DPST", "Direxion Daily Regional Banks Bull 3X Shares"},
	{"FAS", "Direxion Daily Financial Bull 3X Shares"},
	{"LABU", "Direxion Daily S&P Biotech Bull 3X Shares"},
	{"NAIL", "Direxion Daily Homebuilders & Supplies Bull 3X Shares"},
	{"WANT", "Direxion Daily Consumer Discretionary Bull 3X Shares"},
	{"UTSL", "Direxion Daily Utilities Bull 3X Shares"},
	{"ERX", "Direxion Daily Energy Bull 2X Shares"},
	{"RETL", "Direxion Daily Retail Bull 3X Shares"},
	{"DFEN", "Direxion Daily Aerospace & Defense Bull 3X Shares"},
	{"PILL", "Direxion Daily Pharmaceutical & Medical Bull 3X Shares"},
	{"HIBL", "Direxion Daily S&P 500 High Beta Bull 3X Shares"},
	{"DUSL", "Direxion Daily Industrials Bull 3X Shares"},

	// Leveraged bear
	{"SQQQ", "Direxion Daily NASDAQ-100 Bear 3X Shares"},
	{"SOXS", "Direxion Daily Semiconductor Bear 3X Shares"},
	{"SPXS", "Direxion Daily S&P 500 Bear 3X Shares"},
	{"TZA", "Direxion Daily Small Cap Bear 3X Shares"},
	{"TECS", "Direxion Daily Technology Bear 3X Shares"},
	{"FAZ", "Direxion Daily Financial Bear 3X Shares"},
	{"LABD", "Direxion Daily S&P Biotech Bear 3X Shares"},
	{"DRV", "Direxion Daily Real Estate Bear 3X Shares"},
	{"SPDN", "Direxion Daily S&P 500 Bear 1X Shares"},

	// Single stock
	{"NVDU", "Direxion Daily NVDA Bull 2X Shares"},
	{"NVDD", "Direxion Daily NVDA Bear 1X Shares"},
	{"TSLQ", "Direxion Daily TSLA Bear 1X Shares"},
	{"TSLL", "Direxion Daily TSLA Bull 2X Shares"},
	{"GOOU", "Direxion Daily GOOGL Bull 2X Shares"},
	{"GOOD", "Direxion Daily GOOGL Bear 1X Shares"},
	{"APLY", "Direxion Daily AAPL Bear 1X Shares"},
	{"AAPU", "Direxion Daily AAPL Bull 2X Shares"},
	{"AMZU", "Direxion Daily AMZN Bull 2X Shares"},
	{"AMZD", "Direxion Daily AMZN Bear 1X Shares"},
	{"MSFU", "Direxion Daily MSFT Bull 2X Shares"},
	{"MSFD", "Direxion Daily MSFT Bear 1X Shares"},
	{"NFLU", "Direxion Daily NFLX Bull 2X Shares"},
	{"NFLD", "Direxion Daily NFLX Bear 1X Shares"},

	// Gold miners
	{"JNUG", "Direxion Daily Junior Gold Miners Index Bull 2X Shares"},
	{"JDST", "Direxion Daily Junior Gold Miners Index Bear 2X Shares"},
	{"NUGT", "Direxion Daily Gold Miners Index Bull 2X Shares"},
	{"DUST", "Direxion Daily Gold Miners Index Bear 2X Shares"},
	{"GDXD", "Direxion Daily Gold Miners Index Bear 1X Shares"},
	{"GDXU", "Direxion Daily Gold Miners Index Bull 1.25X Shares"},

	// International
	{"YINN", "Direxion Daily FTSE China Bull 3X Shares"},
	{"YANG", "Direxion Daily FTSE China Bear 3X Shares"},
	{"BRZU", "Direxion Daily MSCI Brazil Bull 2X Shares"},
	{"MEXX", "Direxion Daily MSCI Mexico Bull 3X Shares"},
}

type direxionListing struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Direxion serves the curated listing snapshot through the usual crawl
// contract so the rest of the pipeline treats it like any other provider.
type Direxion struct {
	logger zerolog.Logger
}

var _ Source = (*Direxion)(nil)

func NewDirexion(logger zerolog.Logger) *Direxion {
	return &Direxion{logger: logger.With().Str("source", direxionName).Logger()}
}

func (c *Direxion) Name() string { return direxionName }

func (c *Direxion) Fetch(_ context.Context) ([]byte, error) {
	payload, err := json.Marshal(direxionListings)
	if err != nil {
		return nil, &ParseError{Source: direxionName, Err: err}
	}
	return payload, nil
}

func (c *Direxion) Parse(raw []byte) ([]model.ETF, error) {
	var listings []direxionListing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, &ParseError{Source: direxionName, Err: err}
	}

	etfs := make([]model.ETF, 0, len(listings))
	for _, listing := range listings {
		if listing.Ticker == "" || listing.Name == "" {
			continue
		}
		productURL := direxionSiteURL + "/product/" + strings.ToLower(listing.Ticker)
		etfs = append(etfs, model.ETF{
			Ticker:         listing.Ticker,
			FundName:       listing.Name,
			ISIN:           "N/A",
			CUSIP:          "N/A",
			NAV:            decimal.Zero,
			NAVAsOf:        model.Today(),
			ExpenseRatio:   decimal.Zero,
			AssetClass:     "Leveraged/Inverse",
			Region:         "US",
			MarketType:     "ETF",
			ProductPageURL: productURL,
			DetailPageURL:  productURL,
		})
	}
	return etfs, nil
}
