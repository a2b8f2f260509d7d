package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopJob(context.Context) error { return nil }

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{}, nil, zerolog.Nop()); err == nil {
		t.Error("nil job should be rejected")
	}
	if _, err := New(Options{Hour: 24}, noopJob, zerolog.Nop()); err == nil {
		t.Error("hour out of range should be rejected")
	}
	if _, err := New(Options{Minute: 60}, noopJob, zerolog.Nop()); err == nil {
		t.Error("minute out of range should be rejected")
	}
	if _, err := New(Options{Timezone: "Nowhere/Invalid"}, noopJob, zerolog.Nop()); err == nil {
		t.Error("unknown timezone should be rejected")
	}

	s, err := New(Options{Hour: 18, Timezone: "UTC"}, noopJob, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.ScheduledTime() != "18:00" {
		t.Errorf("scheduled time = %q", s.ScheduledTime())
	}
	if s.Timezone() != "UTC" {
		t.Errorf("timezone = %q", s.Timezone())
	}
}

func TestNextAfterRollsToTomorrow(t *testing.T) {
	s, err := New(Options{Hour: 18, Minute: 30, Timezone: "UTC"}, noopJob, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	morning := time.Date(2025, time.August, 20, 9, 0, 0, 0, time.UTC)
	next := s.nextAfter(morning)
	if want := time.Date(2025, time.August, 20, 18, 30, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	evening := time.Date(2025, time.August, 20, 19, 0, 0, 0, time.UTC)
	next = s.nextAfter(evening)
	if want := time.Date(2025, time.August, 21, 18, 30, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	// A run must never fire twice for the same wall-clock slot.
	exactly := time.Date(2025, time.August, 20, 18, 30, 0, 0, time.UTC)
	next = s.nextAfter(exactly)
	if want := time.Date(2025, time.August, 21, 18, 30, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	// Month rollover normalizes through time.Date.
	endOfMonth := time.Date(2025, time.August, 31, 23, 0, 0, 0, time.UTC)
	next = s.nextAfter(endOfMonth)
	if want := time.Date(2025, time.September, 1, 18, 30, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextAfterKeepsWallClockAcrossDST(t *testing.T) {
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skip("tzdata unavailable")
	}
	s, err := New(Options{Hour: 18, Timezone: "America/New_York"}, noopJob, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// 2025-03-09 is the spring-forward date in the US.
	before := time.Date(2025, time.March, 8, 19, 0, 0, 0, s.loc)
	next := s.nextAfter(before)
	if next.Hour() != 18 || next.Day() != 9 {
		t.Errorf("next = %v, want 18:00 on March 9", next)
	}
	if _, offset := next.Zone(); offset != -4*60*60 {
		t.Errorf("next should land in EDT, got offset %d", offset)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	s, err := New(Options{Hour: 18, Timezone: "UTC"}, noopJob, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Running() {
		t.Fatal("new scheduler should be stopped")
	}
	if _, ok := s.NextRunTime(); ok {
		t.Error("stopped scheduler has no next run")
	}

	s.Start()
	if !s.Running() {
		t.Fatal("scheduler should be running after Start")
	}
	next, ok := s.NextRunTime()
	if !ok || !next.After(time.Now()) {
		t.Errorf("next run = %v, %v", next, ok)
	}

	s.Start() // second Start is a no-op
	if !s.Running() {
		t.Fatal("repeated Start should leave the scheduler running")
	}

	s.Stop()
	if s.Running() {
		t.Fatal("scheduler should be stopped after Stop")
	}
	s.Stop() // second Stop is a no-op
}

func TestRunNowFiresWithoutSchedule(t *testing.T) {
	fired := make(chan struct{}, 1)
	job := func(context.Context) error {
		fired <- struct{}{}
		return nil
	}
	s, err := New(Options{Hour: 18, Timezone: "UTC"}, job, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.RunNow()
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not fire")
	}
	if s.Running() {
		t.Error("RunNow must not activate the schedule")
	}
}

func TestFireContainsPanics(t *testing.T) {
	var calls atomic.Int64
	job := func(context.Context) error {
		calls.Add(1)
		panic("exploded")
	}
	s, err := New(Options{Hour: 18, Timezone: "UTC"}, job, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.fire(context.Background(), "manual")
	s.fire(context.Background(), "manual")
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}
