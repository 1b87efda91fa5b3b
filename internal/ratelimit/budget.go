package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMaxCallsPerWindow = 100
	DefaultWindow            = 120 * time.Second
)

// Clock abstracts time so pacing can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Budget paces batches so that at most MaxCallsPerWindow calls start per Window.
// It is a calculation only: throttling responses are handled by the API client.
type Budget struct {
	MaxCallsPerWindow int
	Window            time.Duration
	clock             Clock
}

// New creates a Budget. Non-positive values fall back to the defaults.
func New(maxCallsPerWindow int, window time.Duration, clock Clock) *Budget {
	if maxCallsPerWindow <= 0 {
		maxCallsPerWindow = DefaultMaxCallsPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Budget{
		MaxCallsPerWindow: maxCallsPerWindow,
		Window:            window,
		clock:             clock,
	}
}

// RecordBatchStart marks the start of a batch and returns its start instant.
func (b *Budget) RecordBatchStart() time.Time {
	return b.clock.Now()
}

// DelayBeforeNext returns how long to wait before the next batch may start,
// measured from the start of the previous batch.
func (b *Budget) DelayBeforeNext(batchStartedAt time.Time) time.Duration {
	elapsed := b.clock.Now().Sub(batchStartedAt)
	if remaining := b.Window - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}

// BatchSize clamps a requested batch size to [1, MaxCallsPerWindow].
func (b *Budget) BatchSize(requested int) int {
	if requested <= 0 || requested > b.MaxCallsPerWindow {
		return b.MaxCallsPerWindow
	}
	return requested
}

// EstimatedDuration is the wall time a run of n full batches needs at minimum.
func (b *Budget) EstimatedDuration(batches int) time.Duration {
	if batches <= 0 {
		return 0
	}
	return time.Duration(batches) * b.Window
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
