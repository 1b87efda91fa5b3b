package harvest

import (
	"context"
	"errors"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/metrics"
	"github.com/mauv0809/ladder-harvester/internal/notifier"
	"github.com/mauv0809/ladder-harvester/internal/pubsub"
	"github.com/mauv0809/ladder-harvester/internal/ratelimit"
	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// ErrFatalFetch wraps a fetch failure that every further call would repeat, such as rejected credentials.
var ErrFatalFetch = errors.New("fatal fetch failure")

// BackupFunc snapshots the store before a destructive roster reconciliation.
// It returns the backup path, or "" when there was nothing to back up.
type BackupFunc func(now time.Time) (string, error)

// Harvester drives the four harvest stages against the store.
type Harvester struct {
	store    ladder.Store
	client   riot.Client
	budget   *ratelimit.Budget
	metrics  metrics.Metrics
	counters metrics.CounterStore
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	backup   BackupFunc
	clock    ratelimit.Clock
	sleep    func(ctx context.Context, d time.Duration) error
}

// Options configures a Harvester. Store, Client and Budget are required.
type Options struct {
	Store    ladder.Store
	Client   riot.Client
	Budget   *ratelimit.Budget
	Metrics  metrics.Metrics
	Counters metrics.CounterStore
	Notifier notifier.Notifier
	PubSub   pubsub.PubSubClient
	Backup   BackupFunc
	Clock    ratelimit.Clock
	// Sleep replaces the pacing sleep. Used in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// stage describes one frontier-driven stage: items of type T are fetched into rows of type R.
type stage[T, R any] struct {
	name     ladder.Stage
	frontier func(ctx context.Context) ([]T, error)
	fetch    func(ctx context.Context, item T) ([]R, error)
	commit   func(ctx context.Context, rows []R) (int, error)
	describe func(item T) []any
}
