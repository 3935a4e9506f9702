package batch

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"
)

const (
	// DefaultDecay is the factor applied to the wait after every call.
	DefaultDecay = 0.666
	// DefaultFloor is the shortest wait the schedule shrinks to.
	DefaultFloor = 10 * time.Second
	// DefaultRetries is how many waits a Backoff allows.
	DefaultRetries = 30
)

// Sleeper suspends the caller for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Backoff is a decreasing wait schedule with a retry budget. The first call to
// Wait adopts its argument as the current wait; each call sleeps for the
// current wait and then shrinks it by Decay, never below Floor. Durations are
// truncated to whole milliseconds.
type Backoff struct {
	Decay   float64
	Floor   time.Duration
	Retries int

	current time.Duration
	started bool
	sleep   Sleeper
	logger  *slog.Logger
}

// NewBackoff returns a Backoff with the default decay, floor, and budget.
func NewBackoff() *Backoff {
	return &Backoff{
		Decay:   DefaultDecay,
		Floor:   DefaultFloor,
		Retries: DefaultRetries,
		sleep:   sleepContext,
	}
}

// Wait sleeps for the current wait and advances the schedule. It fails with
// ErrRetryBudgetExhausted once Retries waits have been spent.
func (b *Backoff) Wait(ctx context.Context, initial time.Duration) error {
	if initial <= 0 {
		return errors.New("initial wait time is required")
	}
	if b.Retries <= 0 {
		return ErrRetryBudgetExhausted
	}
	if !b.started {
		b.current = initial
		b.started = true
	}

	wait := b.current
	b.current = b.next(wait)
	b.Retries--

	b.log().Debug("sleeping before next poll", "wait", wait, "retriesLeft", b.Retries)
	sleep := b.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, wait)
}

// SetSleeper replaces how Wait suspends the caller.
func (b *Backoff) SetSleeper(s Sleeper) {
	b.sleep = s
}

// Reset restarts the schedule so the next Wait adopts its argument again.
// The retry budget is not refilled.
func (b *Backoff) Reset() {
	b.current = 0
	b.started = false
}

func (b *Backoff) next(d time.Duration) time.Duration {
	ms := math.Floor(float64(d.Milliseconds()) * b.Decay)
	next := time.Duration(ms) * time.Millisecond
	if next < b.Floor {
		return b.Floor
	}
	return next
}

func (b *Backoff) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
