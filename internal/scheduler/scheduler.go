package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job is the work fired on each scheduled run.
type Job func(ctx context.Context) error

const (
	DefaultHour     = 18
	DefaultMinute   = 0
	DefaultTimezone = "America/New_York"
)

// Options place the daily trigger on the wall clock.
type Options struct {
	// Hour and Minute are the local firing time in Timezone.
	Hour   int
	Minute int
	// Timezone is an IANA zone name such as "America/New_York".
	Timezone string
}

// Scheduler fires a job once a day at a fixed local time. It is an owned
// instance: construct it, Start it, Stop it. Manual runs are always
// available through RunNow, whether or not the schedule is active.
type Scheduler struct {
	hour   int
	minute int
	loc    *time.Location
	job    Job
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a Scheduler instance.
func New(opts Options, job Job, logger zerolog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("scheduler job is required")
	}
	if opts.Hour < 0 || opts.Hour > 23 {
		return nil, fmt.Errorf("hour %d out of range", opts.Hour)
	}
	if opts.Minute < 0 || opts.Minute > 59 {
		return nil, fmt.Errorf("minute %d out of range", opts.Minute)
	}
	if opts.Timezone == "" {
		opts.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", opts.Timezone, err)
	}

	return &Scheduler{
		hour:   opts.Hour,
		minute: opts.Minute,
		loc:    loc,
		job:    job,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Start activates the daily trigger. Calling Start on a running scheduler
// logs and does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn().Msg("scheduler already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(ctx, s.done)

	s.logger.Info().
		Str("at", s.ScheduledTime()).
		Str("timezone", s.Timezone()).
		Time("next_run", s.nextAfter(time.Now())).
		Msg("scheduler started")
}

// Stop cancels the schedule and waits for the loop to exit. Stopping a
// stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow fires the job immediately in its own goroutine, independent of the
// schedule.
func (s *Scheduler) RunNow() {
	go s.fire(context.Background(), "manual")
}

// Running reports whether the daily trigger is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRunTime reports the next scheduled firing. ok is false when the
// scheduler is stopped.
func (s *Scheduler) NextRunTime() (next time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}, false
	}
	return s.nextAfter(time.Now()), true
}

// Timezone is the IANA name of the firing zone.
func (s *Scheduler) Timezone() string {
	return s.loc.String()
}

// ScheduledTime is the firing time as "HH:MM".
func (s *Scheduler) ScheduledTime() string {
	return fmt.Sprintf("%02d:%02d", s.hour, s.minute)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		next := s.nextAfter(time.Now())
		timer := time.NewTimer(time.Until(next))
		s.logger.Debug().Time("next_run", next).Msg("waiting for next run")

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.fire(ctx, "schedule")
	}
}

// fire runs the job, containing panics and logging failures so the loop
// survives any job outcome.
func (s *Scheduler) fire(ctx context.Context, trigger string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("trigger", trigger).Msg("job panicked")
		}
	}()

	s.logger.Info().Str("trigger", trigger).Msg("running job")
	if err := s.job(ctx); err != nil {
		s.logger.Error().Err(err).Str("trigger", trigger).Msg("job failed")
	}
}

// nextAfter computes the first firing strictly after now. Building the
// candidate with time.Date in the target location keeps the wall-clock time
// stable across DST transitions.
func (s *Scheduler) nextAfter(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.loc)
	}
	return next
}
