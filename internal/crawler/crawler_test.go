package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

type stubSource struct {
	name     string
	payload  []byte
	fetchErr error
	parsed   []model.ETF
	parseErr error
	gotRaw   []byte
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]byte, error) {
	return s.payload, s.fetchErr
}

func (s *stubSource) Parse(raw []byte) ([]model.ETF, error) {
	s.gotRaw = raw
	return s.parsed, s.parseErr
}

func TestRunFetchesThenParses(t *testing.T) {
	src := &stubSource{
		name:    "stub",
		payload: []byte(`{"ok":true}`),
		parsed:  []model.ETF{{Ticker: "AAA"}},
	}

	etfs, err := Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(etfs) != 1 || etfs[0].Ticker != "AAA" {
		t.Fatalf("unexpected result: %+v", etfs)
	}
	if string(src.gotRaw) != `{"ok":true}` {
		t.Errorf("Parse received %q", src.gotRaw)
	}
}

func TestRunStopsOnFetchError(t *testing.T) {
	fetchErr := &TransportError{Source: "stub", Err: errors.New("boom")}
	src := &stubSource{name: "stub", fetchErr: fetchErr}

	_, err := Run(context.Background(), src)
	if err == nil {
		t.Fatal("expected error")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if src.gotRaw != nil {
		t.Error("Parse should not run after a fetch failure")
	}
}

func TestErrorTypesUnwrap(t *testing.T) {
	cause := errors.New("connection refused")

	var err error = &TransportError{Source: "vanguard", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
	if got := err.Error(); got != "vanguard: fetch failed: connection refused" {
		t.Errorf("unexpected message %q", got)
	}

	err = &ParseError{Source: "ishares", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ParseError should unwrap to its cause")
	}
	if got := err.Error(); got != "ishares: parse failed: connection refused" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestFlexDecimalAcceptsQuotedAndBareNumbers(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		absent bool
	}{
		{in: `12.5`, want: "12.5"},
		{in: `"12.5"`, want: "12.5"},
		{in: `"  3.01 "`, want: "3.01"},
		{in: `null`, absent: true},
		{in: `""`, absent: true},
		{in: `"--"`, absent: true},
		{in: `"N/A"`, absent: true},
	}
	for _, tc := range cases {
		var f flexDecimal
		if err := f.UnmarshalJSON([]byte(tc.in)); err != nil {
			t.Fatalf("unmarshal %q: %v", tc.in, err)
		}
		got := f.decimal()
		if tc.absent {
			if got != nil {
				t.Errorf("%q: expected nil, got %s", tc.in, got)
			}
			continue
		}
		if got == nil || !got.Equal(mustDecimal(t, tc.want)) {
			t.Errorf("%q: expected %s, got %v", tc.in, tc.want, got)
		}
	}
}
