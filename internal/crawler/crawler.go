package crawler

import (
	"context"
	"time"

	"etf-watcher/internal/model"
)

// Source is one upstream fund provider. Fetch performs all network I/O for a
// crawl and returns a single raw payload; Parse turns that payload into
// records without touching the network, dropping entries it cannot read and
// failing only when the payload as a whole is unusable.
type Source interface {
	// Name is the stable collection key for this provider.
	Name() string
	// Fetch retrieves the raw upstream payload.
	Fetch(ctx context.Context) ([]byte, error)
	// Parse extracts the full listing from a previously fetched payload.
	Parse(raw []byte) ([]model.ETF, error)
}

// Options configure a networked source.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Run executes one complete crawl: fetch, then parse. The result is always
// the provider's full current listing, never a diff.
func Run(ctx context.Context, src Source) ([]model.ETF, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return src.Parse(raw)
}
