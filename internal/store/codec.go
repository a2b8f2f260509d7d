package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"etf-watcher/internal/model"
)

// record is the persisted wire form of model.ETF. Decimals and dates travel
// as strings so JSON and msgpack segments carry identical documents; field
// names and order must stay in sync with model.ETF's JSON tags.
type record struct {
	Ticker        string `json:"ticker" msgpack:"ticker"`
	FundName      string `json:"fund_name" msgpack:"fund_name"`
	ISIN          string `json:"isin,omitempty" msgpack:"isin,omitempty"`
	CUSIP         string `json:"cusip,omitempty" msgpack:"cusip,omitempty"`
	InceptionDate string `json:"inception_date,omitempty" msgpack:"inception_date,omitempty"`

	NAV     string `json:"nav_amount" msgpack:"nav_amount"`
	NAVAsOf string `json:"nav_as_of" msgpack:"nav_as_of"`

	ExpenseRatio string `json:"expense_ratio" msgpack:"expense_ratio"`

	YTDReturn            string `json:"ytd_return,omitempty" msgpack:"ytd_return,omitempty"`
	OneYearReturn        string `json:"one_year_return,omitempty" msgpack:"one_year_return,omitempty"`
	ThreeYearReturn      string `json:"three_year_return,omitempty" msgpack:"three_year_return,omitempty"`
	FiveYearReturn       string `json:"five_year_return,omitempty" msgpack:"five_year_return,omitempty"`
	TenYearReturn        string `json:"ten_year_return,omitempty" msgpack:"ten_year_return,omitempty"`
	SinceInceptionReturn string `json:"since_inception_return,omitempty" msgpack:"since_inception_return,omitempty"`

	AssetClass string `json:"asset_class,omitempty" msgpack:"asset_class,omitempty"`
	Region     string `json:"region,omitempty" msgpack:"region,omitempty"`
	MarketType string `json:"market_type,omitempty" msgpack:"market_type,omitempty"`

	DistributionYield     string `json:"distribution_yield,omitempty" msgpack:"distribution_yield,omitempty"`
	DistributionFrequency string `json:"distribution_frequency,omitempty" msgpack:"distribution_frequency,omitempty"`

	ProductPageURL string `json:"product_page_url,omitempty" msgpack:"product_page_url,omitempty"`
	DetailPageURL  string `json:"detail_page_url,omitempty" msgpack:"detail_page_url,omitempty"`
}

func toRecord(e model.ETF) record {
	return record{
		Ticker:                e.Ticker,
		FundName:              e.FundName,
		ISIN:                  e.ISIN,
		CUSIP:                 e.CUSIP,
		InceptionDate:         dateString(e.InceptionDate),
		NAV:                   e.NAV.String(),
		NAVAsOf:               e.NAVAsOf.String(),
		ExpenseRatio:          e.ExpenseRatio.String(),
		YTDReturn:             decimalString(e.YTDReturn),
		OneYearReturn:         decimalString(e.OneYearReturn),
		ThreeYearReturn:       decimalString(e.ThreeYearReturn),
		FiveYearReturn:        decimalString(e.FiveYearReturn),
		TenYearReturn:         decimalString(e.TenYearReturn),
		SinceInceptionReturn:  decimalString(e.SinceInceptionReturn),
		AssetClass:            e.AssetClass,
		Region:                e.Region,
		MarketType:            e.MarketType,
		DistributionYield:     decimalString(e.DistributionYield),
		DistributionFrequency: string(e.DistributionFrequency),
		ProductPageURL:        e.ProductPageURL,
		DetailPageURL:         e.DetailPageURL,
	}
}

func (r record) toETF() (model.ETF, error) {
	etf := model.ETF{
		Ticker:                r.Ticker,
		FundName:              r.FundName,
		ISIN:                  r.ISIN,
		CUSIP:                 r.CUSIP,
		AssetClass:            r.AssetClass,
		Region:                r.Region,
		MarketType:            r.MarketType,
		DistributionFrequency: model.Frequency(r.DistributionFrequency),
		ProductPageURL:        r.ProductPageURL,
		DetailPageURL:         r.DetailPageURL,
	}

	var err error
	if etf.NAV, err = parseDecimal(r.NAV, "nav_amount"); err != nil {
		return model.ETF{}, err
	}
	if etf.ExpenseRatio, err = parseDecimal(r.ExpenseRatio, "expense_ratio"); err != nil {
		return model.ETF{}, err
	}
	if etf.NAVAsOf, err = model.ParseDate(r.NAVAsOf); err != nil {
		return model.ETF{}, err
	}
	if etf.InceptionDate, err = parseDate(r.InceptionDate); err != nil {
		return model.ETF{}, err
	}

	opts := []struct {
		dst  **decimal.Decimal
		raw  string
		name string
	}{
		{&etf.YTDReturn, r.YTDReturn, "ytd_return"},
		{&etf.OneYearReturn, r.OneYearReturn, "one_year_return"},
		{&etf.ThreeYearReturn, r.ThreeYearReturn, "three_year_return"},
		{&etf.FiveYearReturn, r.FiveYearReturn, "five_year_return"},
		{&etf.TenYearReturn, r.TenYearReturn, "ten_year_return"},
		{&etf.SinceInceptionReturn, r.SinceInceptionReturn, "since_inception_return"},
		{&etf.DistributionYield, r.DistributionYield, "distribution_yield"},
	}
	for _, opt := range opts {
		if *opt.dst, err = parseOptionalDecimal(opt.raw, opt.name); err != nil {
			return model.ETF{}, err
		}
	}

	return etf, nil
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func dateString(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

func parseOptionalDecimal(s, field string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return &d, nil
}

func parseDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// encodeRecords marshals every record separately so segment sizes can be
// computed exactly before any file is written.
func encodeRecords(etfs []model.ETF, format Format) ([][]byte, error) {
	items := make([][]byte, 0, len(etfs))
	for i := range etfs {
		rec := toRecord(etfs[i])

		var payload []byte
		var err error
		switch format {
		case FormatMsgpack:
			payload, err = msgpack.Marshal(rec)
		default:
			payload, err = json.Marshal(rec)
		}
		if err != nil {
			return nil, fmt.Errorf("encode record %d (%s): %w", i, etfs[i].Ticker, err)
		}
		items = append(items, payload)
	}
	return items, nil
}

// segmentSize is the exact byte length of a segment holding count items
// whose encodings sum to payloadBytes.
func segmentSize(count, payloadBytes int, format Format) int {
	if format == FormatMsgpack {
		return msgpackArrayHeaderLen(count) + payloadBytes
	}
	if count == 0 {
		return 2
	}
	return 2 + payloadBytes + count - 1
}

func msgpackArrayHeaderLen(n int) int {
	switch {
	case n < 16:
		return 1
	case n <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

// packSegments groups per-record encodings greedily: a record joins the
// current segment unless that would push the segment past the byte limit.
// A single record larger than the limit becomes a segment on its own.
func packSegments(items [][]byte, limit int, format Format) [][][]byte {
	var groups [][][]byte
	var current [][]byte
	currentBytes := 0

	for _, item := range items {
		if len(current) > 0 && segmentSize(len(current)+1, currentBytes+len(item), format) > limit {
			groups = append(groups, current)
			current = nil
			currentBytes = 0
		}
		current = append(current, item)
		currentBytes += len(item)
	}
	if len(current) > 0 || len(groups) == 0 {
		groups = append(groups, current)
	}
	return groups
}

// segmentPayload assembles per-record encodings into a single array document.
func segmentPayload(items [][]byte, format Format) ([]byte, error) {
	if format == FormatMsgpack {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		if err := enc.EncodeArrayLen(len(items)); err != nil {
			return nil, fmt.Errorf("encode array header: %w", err)
		}
		for _, item := range items {
			buf.Write(item)
		}
		return buf.Bytes(), nil
	}

	total := 0
	for _, item := range items {
		total += len(item)
	}
	var buf bytes.Buffer
	buf.Grow(segmentSize(len(items), total, FormatJSON))
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func decodeSegment(payload []byte, format Format) ([]model.ETF, error) {
	var records []record
	var err error
	switch format {
	case FormatMsgpack:
		err = msgpack.Unmarshal(payload, &records)
	default:
		err = json.Unmarshal(payload, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s segment: %w", format, err)
	}

	etfs := make([]model.ETF, 0, len(records))
	for i, rec := range records {
		etf, convErr := rec.toETF()
		if convErr != nil {
			return nil, fmt.Errorf("record %d: %w", i, convErr)
		}
		etfs = append(etfs, etf)
	}
	return etfs, nil
}
