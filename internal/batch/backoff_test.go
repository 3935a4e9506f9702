package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// recordingBackoff returns a Backoff whose sleeps are recorded instead of taken.
func recordingBackoff() (*Backoff, *[]time.Duration) {
	var slept []time.Duration
	b := NewBackoff()
	b.SetSleeper(func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})
	return b, &slept
}

func TestBackoff_FloorBindsImmediately(t *testing.T) {
	b, slept := recordingBackoff()
	for i := 0; i < 5; i++ {
		if err := b.Wait(context.Background(), 10*time.Second); err != nil {
			t.Fatalf("Wait #%d: %v", i+1, err)
		}
	}
	want := []time.Duration{10 * time.Second, 10 * time.Second, 10 * time.Second, 10 * time.Second, 10 * time.Second}
	if diff := cmp.Diff(want, *slept); diff != "" {
		t.Errorf("sleeps mismatch (-want +got):\n%s", diff)
	}
}

func TestBackoff_DecreasingSequence(t *testing.T) {
	b, slept := recordingBackoff()
	for i := 0; i < 7; i++ {
		if err := b.Wait(context.Background(), 60*time.Second); err != nil {
			t.Fatalf("Wait #%d: %v", i+1, err)
		}
	}
	ms := time.Millisecond
	want := []time.Duration{
		60000 * ms,
		39960 * ms,
		26613 * ms,
		17724 * ms,
		11804 * ms,
		10000 * ms,
		10000 * ms,
	}
	if diff := cmp.Diff(want, *slept); diff != "" {
		t.Errorf("sleeps mismatch (-want +got):\n%s", diff)
	}
}

func TestBackoff_InitialIgnoredAfterFirstCall(t *testing.T) {
	b, slept := recordingBackoff()
	_ = b.Wait(context.Background(), 60*time.Second)
	_ = b.Wait(context.Background(), 5*time.Second)
	if got := (*slept)[1]; got != 39960*time.Millisecond {
		t.Errorf("second wait = %v, want 39.96s", got)
	}
}

func TestBackoff_RetryBudget(t *testing.T) {
	b, slept := recordingBackoff()
	for i := 0; i < DefaultRetries; i++ {
		if err := b.Wait(context.Background(), 10*time.Second); err != nil {
			t.Fatalf("Wait #%d: %v", i+1, err)
		}
		if b.Retries != DefaultRetries-i-1 {
			t.Fatalf("Retries after %d waits = %d", i+1, b.Retries)
		}
	}
	err := b.Wait(context.Background(), 10*time.Second)
	if !errors.Is(err, ErrRetryBudgetExhausted) {
		t.Fatalf("Wait after budget = %v, want ErrRetryBudgetExhausted", err)
	}
	if len(*slept) != DefaultRetries {
		t.Errorf("slept %d times, want %d", len(*slept), DefaultRetries)
	}
}

func TestBackoff_RequiresInitial(t *testing.T) {
	b, slept := recordingBackoff()
	if err := b.Wait(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero initial wait")
	}
	if len(*slept) != 0 || b.Retries != DefaultRetries {
		t.Error("a rejected Wait must not sleep or spend budget")
	}
}

func TestBackoff_Reset(t *testing.T) {
	b, slept := recordingBackoff()
	_ = b.Wait(context.Background(), 60*time.Second)
	_ = b.Wait(context.Background(), 60*time.Second)
	b.Reset()
	_ = b.Wait(context.Background(), 30*time.Second)
	if got := (*slept)[2]; got != 30*time.Second {
		t.Errorf("wait after Reset = %v, want 30s", got)
	}
	if b.Retries != DefaultRetries-3 {
		t.Errorf("Retries = %d, Reset must not refill the budget", b.Retries)
	}
}

func TestBackoff_ContextCanceled(t *testing.T) {
	b := NewBackoff()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait = %v, want context.Canceled", err)
	}
}
