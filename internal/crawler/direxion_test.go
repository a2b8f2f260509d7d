package crawler

import (
	"context"
	"testing"
)

func TestDirexionRun(t *testing.T) {
	c := NewDirexion(testLogger())

	etfs, err := Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(etfs) != len(direxionListings) {
		t.Fatalf("expected %d records, got %d", len(direxionListings), len(etfs))
	}

	tqqq := etfs[0]
	if tqqq.Ticker != "TQQQ" || tqqq.FundName != "Direxion Daily NASDAQ-100 Bull 3X Shares" {
		t.Errorf("first record = %q %q", tqqq.Ticker, tqqq.FundName)
	}
	if tqqq.AssetClass != "Leveraged/Inverse" || tqqq.Region != "US" || tqqq.MarketType != "ETF" {
		t.Errorf("classification = %q %q %q", tqqq.AssetClass, tqqq.Region, tqqq.MarketType)
	}
	if tqqq.ProductPageURL != "https://www.direxion.com/product/tqqq" {
		t.Errorf("product url = %q", tqqq.ProductPageURL)
	}
	if !tqqq.NAV.IsZero() || tqqq.NAVAsOf.IsZero() {
		t.Errorf("nav defaults = %s as of %s", tqqq.NAV, tqqq.NAVAsOf)
	}
	if tqqq.InceptionDate != nil {
		t.Errorf("inception = %v", tqqq.InceptionDate)
	}
}

func TestDirexionParseSkipsIncompleteEntries(t *testing.T) {
	c := NewDirexion(testLogger())

	etfs, err := c.Parse([]byte(`[{"ticker":"TQQQ","name":"Direxion Daily NASDAQ-100 Bull 3X Shares"},{"ticker":"","name":"x"},{"ticker":"Y","name":""}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(etfs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(etfs))
	}
}
