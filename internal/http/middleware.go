package http

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type contextKey string

const runParamsKey contextKey = "runParams"

// runParams are the query flags shared by every harvest trigger.
type runParams struct {
	// Batches is the raw batch ceiling; stages other than the roster require it.
	Batches string
	DryRun  bool
	Verbose bool
	// Wait runs the harvest inside the request instead of in the background.
	Wait bool
	// WithRoster is false only for /run/all?roster=false.
	WithRoster bool
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogMiddleware logs every request with its final status and latency.
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// runParamsMiddleware parses the harvest trigger flags into the request context.
// verbose=true raises the global log level to debug until the request returns; a run
// started in the background falls back to the configured level.
func runParamsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := runParams{
			Batches:    query.Get("batches"),
			DryRun:     query.Get("dry_run") == "true",
			Verbose:    query.Get("verbose") == "true",
			Wait:       query.Get("wait") == "true",
			WithRoster: query.Get("roster") != "false",
		}
		if params.Verbose {
			level := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(level)
		}
		log.Debug("Parsed run parameters", "batches", params.Batches, "dry_run", params.DryRun, "wait", params.Wait, "roster", params.WithRoster)

		ctx := context.WithValue(r.Context(), runParamsKey, params)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// runParamsFromContext returns the parsed flags, or the defaults when the middleware did not run.
func runParamsFromContext(ctx context.Context) runParams {
	if params, ok := ctx.Value(runParamsKey).(runParams); ok {
		return params
	}
	return runParams{WithRoster: true}
}
