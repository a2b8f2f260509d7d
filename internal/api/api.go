// Package api exposes the read and admin HTTP surface: stored listings,
// on-demand updates, scheduler control and dividend simulation. Every
// route speaks JSON; failures render as {"error": {"message": ...}}.
package api

import (
	"context"
	"time"

	"github.com/fulldump/box"
	"github.com/rs/zerolog"

	"etf-watcher/internal/crawler"
	"etf-watcher/internal/model"
	"etf-watcher/internal/updater"
)

// Updater is the slice of the update orchestrator the API drives.
type Updater interface {
	Providers() []string
	Lookup(name string) (crawler.Source, bool)
	Collection(name string) ([]model.ETF, error)
	All() map[string][]model.ETF
	FindTicker(ticker string) (*model.ETF, error)
	UpdateOne(ctx context.Context, src crawler.Source, force bool) updater.RunResult
	UpdateAll(ctx context.Context, force bool) updater.Summary
}

// Scheduler is the slice of the daily scheduler the API reports on and
// triggers. A disabled scheduler is still a valid implementation; it just
// reports Running() == false.
type Scheduler interface {
	Running() bool
	NextRunTime() (time.Time, bool)
	Timezone() string
	ScheduledTime() string
	RunNow()
}

type handlers struct {
	updater   Updater
	scheduler Scheduler
}

// Build assembles the HTTP API on top of the orchestrator and scheduler.
func Build(up Updater, sch Scheduler, version string, logger zerolog.Logger) *box.B {
	h := &handlers{updater: up, scheduler: sch}

	b := box.NewBox()
	b.WithInterceptors(
		accessLog(logger.With().Str("component", "api").Logger()),
		box.SetResponseHeader("Content-Type", "application/json"),
		box.RecoverFromPanic,
		renderError,
	)

	b.Resource("/health").
		WithActions(box.Get(health))

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	etf := b.Resource("/api/etf")

	etf.Resource("/list").
		WithActions(box.Get(h.listAll))
	etf.Resource("/list/{provider}").
		WithActions(box.Get(h.listProvider))
	etf.Resource("/all").
		WithActions(box.Get(h.combined))

	etf.Resource("/update").
		WithActions(box.Post(h.updateAll))
	etf.Resource("/update/{provider}").
		WithActions(box.Post(h.updateProvider))

	etf.Resource("/scheduler/status").
		WithActions(box.Get(h.schedulerStatus))
	etf.Resource("/scheduler/run-now").
		WithActions(box.Post(h.schedulerRunNow))

	etf.Resource("/simulate-dividend").
		WithActions(box.Post(h.simulateDividend))

	return b
}

type healthResponse struct {
	Status string `json:"status"`
}

func health() healthResponse {
	return healthResponse{Status: "ok"}
}
