package http

import (
	"context"
	"net/http"

	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/metrics"
)

func NewServer(store ladder.Store, counters metrics.CounterStore, metricsHandler http.Handler, harvester Harvester) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	server := &Server{
		Store:          store,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Harvester:      harvester,
		Router:         http.NewServeMux(),
		baseCtx:        ctx,
		cancel:         cancel,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), requestLogMiddleware))
	s.Router.Handle("GET /summary", Chain(s.SummaryHandler(), requestLogMiddleware))
	s.Router.Handle("POST /run/{stage}", Chain(s.RunHandler(), requestLogMiddleware, runParamsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Close cancels background runs and waits for them to stop at their next batch boundary.
func (s *Server) Close() {
	s.cancel()
	s.runs.Wait()
}
