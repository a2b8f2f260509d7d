package updater

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"etf-watcher/internal/crawler"
	"etf-watcher/internal/model"
	"etf-watcher/internal/store"
)

// KindListing is the dataset kind every source produces: the provider's full
// current listing.
const KindListing = "listing"

const (
	DefaultFreshnessWindow = 24 * time.Hour
	DefaultAdapterTimeout  = 5 * time.Minute
	DefaultConcurrency     = 4
)

var ErrTickerNotFound = errors.New("ticker not found")

// RunResult is the outcome of one provider update. A skipped run sets
// Skipped with a reason; Success reports an actual run that saved data.
type RunResult struct {
	Provider        string          `json:"provider"`
	Success         bool            `json:"success"`
	Skipped         bool            `json:"skipped,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Count           int             `json:"count"`
	Error           string          `json:"error,omitempty"`
	Manifest        *store.Manifest `json:"manifest,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
}

// Summary aggregates one update pass across every registered source.
type Summary struct {
	StartedAt       time.Time   `json:"started_at"`
	Providers       int         `json:"providers"`
	Succeeded       int         `json:"succeeded"`
	Skipped         int         `json:"skipped"`
	Failed          int         `json:"failed"`
	TotalETFs       int         `json:"total_etfs"`
	Results         []RunResult `json:"results"`
	DurationSeconds float64     `json:"duration_seconds"`
}

// Options configure the update orchestrator.
type Options struct {
	// FreshnessWindow is how recent a dataset must be for an unforced update
	// to be skipped.
	FreshnessWindow time.Duration
	// AdapterTimeout bounds one source's full crawl.
	AdapterTimeout time.Duration
	// Concurrency caps how many sources update at once.
	Concurrency int
	// Format selects the segment serialization for saved datasets.
	Format store.Format
}

// Updater runs source crawls and lands their results in the dataset store.
// Failures stay inside the per-provider result; one source can never take
// down another's update.
type Updater struct {
	store       store.DatasetStore
	sources     []crawler.Source
	byName      map[string]crawler.Source
	freshFor    time.Duration
	timeout     time.Duration
	concurrency int
	format      store.Format
	logger      zerolog.Logger
}

// New validates the source set and returns an orchestrator over it. Source
// names must sanitize cleanly and be unique, since they double as collection
// names on disk.
func New(opts Options, st store.DatasetStore, sources []crawler.Source, logger zerolog.Logger) (*Updater, error) {
	if st == nil {
		return nil, errors.New("dataset store is required")
	}
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultFreshnessWindow
	}
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = DefaultAdapterTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	switch opts.Format {
	case "":
		opts.Format = store.FormatJSON
	case store.FormatJSON, store.FormatMsgpack:
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", opts.Format)
	}

	byName := make(map[string]crawler.Source, len(sources))
	for _, src := range sources {
		key, err := store.SanitizeName(src.Name())
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name(), err)
		}
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("duplicate source %q", key)
		}
		byName[key] = src
	}

	return &Updater{
		store:       st,
		sources:     sources,
		byName:      byName,
		freshFor:    opts.FreshnessWindow,
		timeout:     opts.AdapterTimeout,
		concurrency: opts.Concurrency,
		format:      opts.Format,
		logger:      logger.With().Str("component", "updater").Logger(),
	}, nil
}

// Providers lists the registered source names, sorted.
func (u *Updater) Providers() []string {
	names := make([]string, 0, len(u.byName))
	for name := range u.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a provider name to its source. The name goes through the
// same sanitization as dataset names, so lookups match on-disk collections.
func (u *Updater) Lookup(name string) (crawler.Source, bool) {
	key, err := store.SanitizeName(name)
	if err != nil {
		return nil, false
	}
	src, ok := u.byName[key]
	return src, ok
}

// IsFresh reports whether the dataset was updated within the given window.
// A missing or unreadable manifest counts as stale, never as an error.
func (u *Updater) IsFresh(collection, kind string, within time.Duration) bool {
	if within <= 0 {
		return false
	}
	manifest, err := u.store.Manifest(collection, kind)
	if err != nil || manifest == nil || manifest.UpdatedAt.IsZero() {
		return false
	}
	return time.Since(manifest.UpdatedAt) < within
}

// UpdateOne crawls a single source and saves its listing. All failures are
// captured in the result rather than returned.
func (u *Updater) UpdateOne(ctx context.Context, src crawler.Source, force bool) RunResult {
	start := time.Now()
	name := src.Name()
	logger := u.logger.With().Str("provider", name).Logger()
	res := RunResult{Provider: name}

	if !force && u.IsFresh(name, KindListing, u.freshFor) {
		res.Skipped = true
		res.Reason = fmt.Sprintf("data newer than %s", u.freshFor)
		res.DurationSeconds = time.Since(start).Seconds()
		logger.Info().Str("reason", res.Reason).Msg("update skipped")
		return res
	}

	runCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	etfs, err := crawler.Run(runCtx, src)
	if err != nil {
		res.Error = err.Error()
		res.DurationSeconds = time.Since(start).Seconds()
		logger.Error().Err(err).Msg("update failed")
		return res
	}
	if len(etfs) == 0 {
		// Keeping yesterday's dataset beats replacing it with nothing.
		res.Error = "no data retrieved"
		res.DurationSeconds = time.Since(start).Seconds()
		logger.Error().Msg("update returned no data, keeping previous dataset")
		return res
	}

	manifest, err := u.store.Save(name, KindListing, etfs, u.format)
	if err != nil {
		res.Error = fmt.Sprintf("save dataset: %v", err)
		res.DurationSeconds = time.Since(start).Seconds()
		logger.Error().Err(err).Msg("save failed")
		return res
	}

	res.Success = true
	res.Count = len(etfs)
	res.Manifest = manifest
	res.DurationSeconds = time.Since(start).Seconds()
	logger.Info().
		Int("etfs", res.Count).
		Bool("chunked", manifest.Chunked).
		Float64("seconds", res.DurationSeconds).
		Msg("update complete")
	return res
}

// UpdateAll updates every registered source concurrently and aggregates the
// per-provider outcomes. It never returns an error: failures are counted.
func (u *Updater) UpdateAll(ctx context.Context, force bool) Summary {
	start := time.Now()
	results := make([]RunResult, len(u.sources))

	sem := make(chan struct{}, u.concurrency)
	var wg sync.WaitGroup
	for i, src := range u.sources {
		wg.Add(1)
		go func(i int, src crawler.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = u.UpdateOne(ctx, src, force)
		}(i, src)
	}
	wg.Wait()

	summary := Summary{
		StartedAt: start.UTC(),
		Providers: len(u.sources),
		Results:   results,
	}
	for _, res := range results {
		switch {
		case res.Skipped:
			summary.Skipped++
		case res.Success:
			summary.Succeeded++
			summary.TotalETFs += res.Count
		default:
			summary.Failed++
		}
	}
	summary.DurationSeconds = time.Since(start).Seconds()

	u.logger.Info().
		Int("providers", summary.Providers).
		Int("succeeded", summary.Succeeded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("etfs", summary.TotalETFs).
		Float64("seconds", summary.DurationSeconds).
		Msg("update pass finished")
	return summary
}

// Collection loads the stored listing for one provider. A provider that has
// never been crawled loads as an empty slice.
func (u *Updater) Collection(name string) ([]model.ETF, error) {
	return u.store.Load(name, KindListing)
}

// All loads every registered provider's listing. Unreadable datasets are
// logged and returned empty so one bad directory cannot hide the rest.
func (u *Updater) All() map[string][]model.ETF {
	out := make(map[string][]model.ETF, len(u.byName))
	for name := range u.byName {
		etfs, err := u.store.Load(name, KindListing)
		if err != nil {
			u.logger.Warn().Err(err).Str("provider", name).Msg("failed to load dataset")
			etfs = []model.ETF{}
		}
		out[name] = etfs
	}
	return out
}

// FindTicker scans all stored listings for a ticker, case-insensitively.
// Providers are scanned in name order, so duplicated tickers resolve
// deterministically.
func (u *Updater) FindTicker(ticker string) (*model.ETF, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, ErrTickerNotFound
	}
	for _, name := range u.Providers() {
		etfs, err := u.store.Load(name, KindListing)
		if err != nil {
			u.logger.Warn().Err(err).Str("provider", name).Msg("failed to load dataset")
			continue
		}
		for i := range etfs {
			if strings.EqualFold(etfs[i].Ticker, ticker) {
				etf := etfs[i]
				return &etf, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
}
