package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fulldump/box"

	"etf-watcher/internal/store"
	"etf-watcher/internal/updater"
)

// updateProvider crawls one provider immediately and reports the outcome.
// A failed crawl is still a 200: the failure lives inside the result.
func (h *handlers) updateProvider(ctx context.Context) (*updater.RunResult, error) {
	name, err := store.SanitizeName(box.GetUrlParameter(ctx, "provider"))
	if err != nil {
		return nil, err
	}
	src, ok := h.updater.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	result := h.updater.UpdateOne(ctx, src, forceRequested(box.GetRequest(ctx)))
	return &result, nil
}

// updateAll crawls every registered provider and reports the summary.
func (h *handlers) updateAll(ctx context.Context) updater.Summary {
	return h.updater.UpdateAll(ctx, forceRequested(box.GetRequest(ctx)))
}

func forceRequested(r *http.Request) bool {
	force, err := strconv.ParseBool(r.URL.Query().Get("force"))
	return err == nil && force
}
