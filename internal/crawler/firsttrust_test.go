package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const firstTrustFixture = `<html><body>
<table>
	<tr><td>Quick Links</td></tr>
	<tr><td>About Us</td></tr>
</table>
<table>
	<tr>
		<th>TickerSymbol</th><th>Fund Name</th><th>Inception Date</th><th>NAV</th><th>30-Day SEC Yield</th>
	</tr>
	<tr>
		<td><a href="/retail/etf/etfsummary.aspx?Ticker=FXL">FXL</a></td>
		<td>First Trust Technology AlphaDEX Fund</td>
		<td>05/08/07</td>
		<td>$171.70</td>
		<td>0.00%</td>
	</tr>
	<tr>
		<td>TickerSymbol</td><td>Fund Name</td><td>Inception Date</td><td>NAV</td><td>30-Day SEC Yield</td>
	</tr>
	<tr>
		<td>FYX</td>
		<td>First Trust Small Cap Core AlphaDEX Fund</td>
		<td>-------</td>
		<td>-------</td>
		<td>1.33%</td>
	</tr>
	<tr>
		<td></td><td>Row Without Ticker</td><td>01/01/20</td><td>$1.00</td><td>2.00%</td>
	</tr>
</table>
</body></html>`

func TestFirstTrustParse(t *testing.T) {
	c := NewFirstTrust(Options{}, testLogger())

	etfs, err := c.Parse([]byte(firstTrustFixture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(etfs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(etfs))
	}

	fxl := etfs[0]
	if fxl.Ticker != "FXL" || fxl.FundName != "First Trust Technology AlphaDEX Fund" {
		t.Errorf("identity = %q %q", fxl.Ticker, fxl.FundName)
	}
	if fxl.InceptionDate == nil || fxl.InceptionDate.String() != "2007-05-08" {
		t.Errorf("inception = %v", fxl.InceptionDate)
	}
	if !fxl.NAV.Equal(mustDecimal(t, "171.70")) {
		t.Errorf("nav = %s", fxl.NAV)
	}
	if fxl.DistributionYield == nil || !fxl.DistributionYield.IsZero() {
		t.Errorf("yield = %v", fxl.DistributionYield)
	}
	wantURL := firstTrustDefaultURL + "/retail/etf/etfsummary.aspx?Ticker=FXL"
	if fxl.DetailPageURL != wantURL {
		t.Errorf("detail url = %q", fxl.DetailPageURL)
	}

	fyx := etfs[1]
	if fyx.Ticker != "FYX" {
		t.Fatalf("second row = %q", fyx.Ticker)
	}
	if fyx.InceptionDate != nil {
		t.Errorf("placeholder inception should stay unset, got %v", fyx.InceptionDate)
	}
	if !fyx.NAV.IsZero() {
		t.Errorf("placeholder nav = %s", fyx.NAV)
	}
	if fyx.DistributionYield == nil || !fyx.DistributionYield.Equal(mustDecimal(t, "1.33")) {
		t.Errorf("yield = %v", fyx.DistributionYield)
	}
	if fyx.DetailPageURL != "" {
		t.Errorf("row without link should have no detail url, got %q", fyx.DetailPageURL)
	}
}

func TestFirstTrustParseIgnoresPagesWithoutListing(t *testing.T) {
	c := NewFirstTrust(Options{}, testLogger())

	etfs, err := c.Parse([]byte(`<html><body><table><tr><th>News</th></tr><tr><td>none</td></tr></table></body></html>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(etfs) != 0 {
		t.Fatalf("expected no rows, got %d", len(etfs))
	}
}

func TestFirstTrustFetchPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != firstTrustListPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(firstTrustFixture))
	}))
	defer srv.Close()

	c := NewFirstTrust(Options{BaseURL: srv.URL}, testLogger())
	raw, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	etfs, err := c.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(etfs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(etfs))
	}
	if etfs[0].DetailPageURL != srv.URL+"/retail/etf/etfsummary.aspx?Ticker=FXL" {
		t.Errorf("detail url should resolve against the configured base, got %q", etfs[0].DetailPageURL)
	}
}

func TestColumnIndex(t *testing.T) {
	headers := []string{"TickerSymbol", "Fund Name", "Inception Date", "NAV", "30-Day SEC Yield"}

	cases := []struct {
		name string
		want int
	}{
		{"ticker", 0},
		{"fund", 1},
		{"inception", 2},
		{"nav", 3},
		{"sec yield", 4},
		{"expense", -1},
	}
	for _, tc := range cases {
		if got := columnIndex(headers, tc.name); got != tc.want {
			t.Errorf("columnIndex(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}
