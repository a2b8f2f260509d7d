package crawler

import (
	"bytes"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"etf-watcher/internal/model"
)

// flexDecimal reads an upstream numeric field that may arrive as a bare JSON
// number, a quoted string, or null. Placeholder values such as "--" or "N/A"
// simply fail to parse and are treated as absent.
type flexDecimal string

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "null" {
		s = ""
	}
	*f = flexDecimal(strings.TrimSpace(s))
	return nil
}

func (f flexDecimal) decimal() *decimal.Decimal {
	if f == "" {
		return nil
	}
	d, err := decimal.NewFromString(string(f))
	if err != nil {
		return nil
	}
	return &d
}

func (f flexDecimal) decimalOr(fallback decimal.Decimal) decimal.Decimal {
	if d := f.decimal(); d != nil {
		return *d
	}
	return fallback
}

// parseDateAny tries each layout in turn and reports the first match.
func parseDateAny(value string, layouts ...string) *model.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			d := model.DateOf(t)
			return &d
		}
	}
	return nil
}
