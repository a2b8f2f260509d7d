package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"etf-watcher/internal/alerting"
	"etf-watcher/internal/api"
	"etf-watcher/internal/config"
	"etf-watcher/internal/crawler"
	"etf-watcher/internal/scheduler"
	"etf-watcher/internal/store"
	"etf-watcher/internal/updater"
	"etf-watcher/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newSources builds the adapter fleet, restricted to crawler.sources when
// that list is set.
func (a *App) newSources() ([]crawler.Source, error) {
	opts := crawler.Options{
		Timeout:   a.Config.Crawler.RequestTimeout,
		UserAgent: a.Config.Crawler.UserAgent,
	}

	all := []crawler.Source{
		crawler.NewIShares(opts, a.Logger),
		crawler.NewVanguard(opts, a.Logger),
		crawler.NewGoldmanSachs(opts, a.Logger),
		crawler.NewFirstTrust(opts, a.Logger),
		crawler.NewRoundhill(opts, a.Logger),
		crawler.NewDirexion(a.Logger),
	}
	if len(a.Config.Crawler.Sources) == 0 {
		return all, nil
	}

	byName := make(map[string]crawler.Source, len(all))
	for _, src := range all {
		byName[src.Name()] = src
	}

	picked := make([]crawler.Source, 0, len(a.Config.Crawler.Sources))
	for _, name := range a.Config.Crawler.Sources {
		src, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown crawler source %q in config", name)
		}
		picked = append(picked, src)
	}
	return picked, nil
}

func (a *App) openStore() (*store.Store, error) {
	return store.New(store.Options{
		Root:         a.Config.Store.Root,
		MaxChunkSize: a.Config.Store.MaxChunkSize,
	}, a.Logger)
}

func (a *App) newUpdater(st store.DatasetStore) (*updater.Updater, error) {
	sources, err := a.newSources()
	if err != nil {
		return nil, err
	}
	return updater.New(updater.Options{
		FreshnessWindow: a.Config.Updater.FreshnessWindow,
		AdapterTimeout:  a.Config.Updater.AdapterTimeout,
		Concurrency:     a.Config.Updater.Concurrency,
		Format:          store.Format(a.Config.Store.Format),
	}, st, sources, a.Logger)
}

// newNotifier returns the configured notifier, or nil when alerting is off.
func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	tg := a.Config.Alerting.Telegram
	return alerting.NewTelegramNotifier(tg.BotToken, tg.ChatID, tg.APIBase, tg.Timeout, a.Logger)
}

// updateJob adapts a full update pass into a scheduler job. Partial failure
// is tolerated; the job only errors when no provider delivered data.
func (a *App) updateJob(up *updater.Updater, notifier alerting.Notifier) scheduler.Job {
	return func(ctx context.Context) error {
		summary := up.UpdateAll(ctx, false)
		if notifier != nil && summary.Failed > 0 {
			if err := notifier.Notify(ctx, notificationFor(summary)); err != nil {
				a.Logger.Error().Err(err).Msg("failed to dispatch update notification")
			}
		}
		if summary.Succeeded == 0 && summary.Failed > 0 {
			return fmt.Errorf("update failed for all %d providers", summary.Failed)
		}
		return nil
	}
}

func notificationFor(summary updater.Summary) alerting.Notification {
	note := alerting.Notification{
		StartedAt:       summary.StartedAt,
		Providers:       summary.Providers,
		Succeeded:       summary.Succeeded,
		Skipped:         summary.Skipped,
		Failed:          summary.Failed,
		TotalETFs:       summary.TotalETFs,
		DurationSeconds: summary.DurationSeconds,
	}
	for _, result := range summary.Results {
		if result.Error != "" {
			note.FailedProviders = append(note.FailedProviders, result.Provider)
		}
	}
	return note
}

// Run starts the daily scheduler and the HTTP API, and blocks until a
// termination signal arrives or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := a.openStore()
	if err != nil {
		return err
	}
	up, err := a.newUpdater(st)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(scheduler.Options{
		Hour:     a.Config.Scheduler.Hour,
		Minute:   a.Config.Scheduler.Minute,
		Timezone: a.Config.Scheduler.Timezone,
	}, a.updateJob(up, a.newNotifier()), a.Logger)
	if err != nil {
		return err
	}

	if a.Config.Scheduler.Enabled {
		sched.Start()
		defer sched.Stop()
	} else {
		a.Logger.Warn().Msg("scheduler disabled; updates run only on demand")
	}

	srv := &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      api.Build(up, sched, version.Version, a.Logger),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	a.Logger.Info().Msg("stopped")
	return nil
}

// UpdateOptions configure a one-shot update run.
type UpdateOptions struct {
	Providers []string
	Force     bool
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Provider string
	Limit    int
}

// ExportOptions hold parameters for exporting a stored listing.
type ExportOptions struct {
	Provider  string
	CSVPath   string
	PNGPath   string
	TopYields int
}

// SimulateOptions configure a dividend simulation.
type SimulateOptions struct {
	Ticker string
	Amount decimal.Decimal
	Months int
}
