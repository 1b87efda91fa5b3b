package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder-harvester/internal/app"
	"github.com/mauv0809/ladder-harvester/internal/config"
	server "github.com/mauv0809/ladder-harvester/internal/http"
)

func main() {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}
	cfg.ApplyLogLevel()

	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to start harvester", "error", err)
	}
	defer a.Close()

	s := server.NewServer(a.Store, a.Counters, a.MetricsHandler, a.Harvester)
	log.Info("Startup time recorded", "duration_ms", time.Since(startTime).Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	// A background run stops at its next batch boundary; its committed batches are kept.
	s.Close()
	log.Info("Server process shutting down")
}
