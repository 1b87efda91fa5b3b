// Package app wires the harvester and its collaborators from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder-harvester/internal/config"
	"github.com/mauv0809/ladder-harvester/internal/database"
	"github.com/mauv0809/ladder-harvester/internal/harvest"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/metrics"
	"github.com/mauv0809/ladder-harvester/internal/notifier"
	"github.com/mauv0809/ladder-harvester/internal/notifier/slack"
	"github.com/mauv0809/ladder-harvester/internal/pubsub"
	"github.com/mauv0809/ladder-harvester/internal/ratelimit"
	"github.com/mauv0809/ladder-harvester/internal/riot"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds everything a harvest process needs.
type App struct {
	DB             *sql.DB
	Store          ladder.Store
	Counters       metrics.CounterStore
	Metrics        *metrics.Service
	MetricsHandler http.Handler
	Harvester      *harvest.Harvester
	PubSub         pubsub.PubSubClient

	teardown func()
}

// Build opens the store and constructs the harvester. Slack and Pub/Sub are only used
// when configured. The caller must call Close.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	regions, err := riot.ParseRegions(cfg.Riot.Regions)
	if err != nil {
		return nil, fmt.Errorf("invalid regions: %w", err)
	}

	startTime := time.Now()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("Database initialization time recorded", "duration_ms", time.Since(startTime).Milliseconds())

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)

	var n notifier.Notifier = notifier.Noop{}
	if cfg.SlackEnabled() {
		n = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Info("Slack is not configured, notifications are disabled")
	}

	var ps pubsub.PubSubClient = pubsub.Noop{}
	if cfg.PubSubEnabled() {
		ps, err = pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			dbTeardown()
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
	}

	client := riot.NewClient(riot.Options{
		APIKey:             cfg.Riot.APIKey,
		Regions:            regions,
		MaxThrottleRetries: cfg.Riot.MaxThrottleRetries,
		PerSecond:          cfg.RateLimit.PerSecond,
		OnThrottle:         metricsSvc.IncThrottled,
	})

	store := ladder.New(db)
	counters := metrics.New(db)
	a := &App{
		DB:             db,
		Store:          store,
		Counters:       counters,
		Metrics:        metricsSvc,
		MetricsHandler: metrics.NewMetricsHandler(reg),
		PubSub:         ps,
		teardown:       dbTeardown,
	}
	a.Harvester = harvest.New(harvest.Options{
		Store:    store,
		Client:   client,
		Budget:   ratelimit.New(cfg.RateLimit.MaxCallsPerWindow, cfg.RateLimit.Window, nil),
		Metrics:  metricsSvc,
		Counters: counters,
		Notifier: n,
		PubSub:   ps,
		Backup:   BackupFunc(cfg),
	})
	return a, nil
}

// BackupFunc returns the pre-reconciliation backup for the configured store.
// Remote and in-memory stores have no file to copy, so they get no backup.
func BackupFunc(cfg config.Config) harvest.BackupFunc {
	if cfg.Turso.PrimaryURL != "" || cfg.DBName == ":memory:" {
		return nil
	}
	return func(now time.Time) (string, error) {
		return database.CreateBackup(cfg.DBName, cfg.BackupDir, now)
	}
}

// Close releases the Pub/Sub client and the database.
func (a *App) Close() {
	if err := a.PubSub.Close(); err != nil {
		log.Warn("Error closing pubsub client", "error", err)
	}
	log.Info("Closing database connection")
	a.teardown()
}
