package api

import (
	"context"
	"fmt"

	"github.com/fulldump/box"

	"etf-watcher/internal/model"
	"etf-watcher/internal/store"
)

// listProvider returns the stored listing of one provider.
func (h *handlers) listProvider(ctx context.Context) ([]model.ETF, error) {
	name, err := store.SanitizeName(box.GetUrlParameter(ctx, "provider"))
	if err != nil {
		return nil, err
	}
	if _, ok := h.updater.Lookup(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	records, err := h.updater.Collection(name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: provider %s has not been crawled yet", ErrNoData, name)
	}
	return records, nil
}

// listAll returns every stored listing grouped by provider.
func (h *handlers) listAll(ctx context.Context) map[string][]model.ETF {
	return h.updater.All()
}

// combined flattens all stored listings into a single slice, ordered by
// provider name.
func (h *handlers) combined(ctx context.Context) []model.ETF {
	all := h.updater.All()

	out := []model.ETF{}
	for _, name := range h.updater.Providers() {
		out = append(out, all[name]...)
	}
	return out
}
