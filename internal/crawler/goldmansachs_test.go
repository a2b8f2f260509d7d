package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"etf-watcher/internal/model"
)

const goldmanFixture = `{
	"data": {
		"fundData": {
			"funds": [
				{
					"fundName": "Goldman Sachs MarketBeta US Equity ETF",
					"fundType": "ETF",
					"shareClasses": [
						{
							"shareClassId": "GSUS-INST",
							"ticker": "GSUS",
							"shareClassInceptionDate": "2019-05-14",
							"distributionFrequency": "Quarterly",
							"dailyPerformance": {
								"nav": {"asAtDate": "2025-08-20", "value": 78.61}
							},
							"monthlyPerformance": {
								"annualisedReturns1yr": "21.31",
								"annualisedReturns3yr": "13.2",
								"annualisedReturns5yr": "15.01",
								"annualisedReturns10yr": "--",
								"annualisedReturnsSinceIncept": "14.9"
							}
						},
						{"shareClassId": "NO-TICKER", "ticker": ""}
					]
				},
				{
					"fundName": "Goldman Sachs Financial Square Government Fund",
					"fundType": "Mutual Fund",
					"shareClasses": [{"shareClassId": "FGTXX-1", "ticker": "FGTXX"}]
				}
			]
		}
	}
}`

func TestGoldmanSachsParse(t *testing.T) {
	c := NewGoldmanSachs(Options{}, testLogger())

	etfs, err := c.Parse([]byte(goldmanFixture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(etfs) != 1 {
		t.Fatalf("expected only ETF share classes with tickers, got %d records", len(etfs))
	}

	etf := etfs[0]
	if etf.Ticker != "GSUS" {
		t.Errorf("ticker = %q", etf.Ticker)
	}
	if etf.FundName != "Goldman Sachs MarketBeta US Equity ETF" {
		t.Errorf("fund name = %q", etf.FundName)
	}
	if etf.ISIN != "GSUS-INST" || etf.CUSIP != "N/A" {
		t.Errorf("identifiers = %q %q", etf.ISIN, etf.CUSIP)
	}
	if etf.InceptionDate == nil || etf.InceptionDate.String() != "2019-05-14" {
		t.Errorf("inception = %v", etf.InceptionDate)
	}
	if !etf.NAV.Equal(mustDecimal(t, "78.61")) || etf.NAVAsOf.String() != "2025-08-20" {
		t.Errorf("nav = %s as of %s", etf.NAV, etf.NAVAsOf)
	}
	if !etf.ExpenseRatio.IsZero() {
		t.Errorf("the catalog carries no expense ratio, got %s", etf.ExpenseRatio)
	}
	if etf.OneYearReturn == nil || !etf.OneYearReturn.Equal(mustDecimal(t, "21.31")) {
		t.Errorf("1y = %v", etf.OneYearReturn)
	}
	if etf.TenYearReturn != nil {
		t.Errorf("placeholder returns should stay unset, got %v", etf.TenYearReturn)
	}
	if etf.SinceInceptionReturn == nil || !etf.SinceInceptionReturn.Equal(mustDecimal(t, "14.9")) {
		t.Errorf("since inception = %v", etf.SinceInceptionReturn)
	}
	if etf.DistributionFrequency != model.FrequencyQuarterly {
		t.Errorf("frequency = %q", etf.DistributionFrequency)
	}
	if etf.Region != "US" || etf.MarketType != "ETF" || etf.AssetClass != "Unknown" {
		t.Errorf("classification = %q %q %q", etf.AssetClass, etf.Region, etf.MarketType)
	}
	want := "https://am.gs.com/en-us/institutions/products/GSUS"
	if etf.ProductPageURL != want || etf.DetailPageURL != want {
		t.Errorf("urls = %q %q", etf.ProductPageURL, etf.DetailPageURL)
	}
}

func TestGoldmanSachsFetchPostsQuery(t *testing.T) {
	var got goldmanRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(goldmanFixture))
	}))
	defer srv.Close()

	c := NewGoldmanSachs(Options{BaseURL: srv.URL}, testLogger())
	raw, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("empty payload")
	}

	if got.OperationName != "getFunds" {
		t.Errorf("operation = %q", got.OperationName)
	}
	fr := got.Variables.FundRequest
	if fr.Country != "us" || fr.Audience != "institutions" || fr.Limit != 500 {
		t.Errorf("fund request = %+v", fr)
	}
	if !strings.Contains(got.Query, "fundData(fundRequest: $fundRequest)") {
		t.Error("query body missing fundData selection")
	}
}
