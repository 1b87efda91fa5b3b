package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_stage_runs_total",
			Help: "The total number of stage runs started.",
		}, []string{"stage"}),
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_batches_total",
			Help: "The total number of batches committed.",
		}, []string{"stage"}),
		ItemsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_items_fetched_total",
			Help: "The total number of frontier items fetched successfully.",
		}, []string{"stage"}),
		ItemsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_items_failed_total",
			Help: "The total number of frontier items skipped after a failed fetch.",
		}, []string{"stage"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_rows_written_total",
			Help: "The total number of rows written to the store.",
		}, []string{"stage"}),
		FrontierSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "harvester_frontier_size",
			Help: "The frontier size seen at the start of the last run of a stage.",
		}, []string{"stage"}),
		PacingDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_pacing_delay_seconds",
			Help:    "The pacing sleep between batches.",
			Buckets: []float64{0, 1, 5, 15, 30, 60, 90, 120},
		}),
		Throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_throttled_responses_total",
			Help: "The total number of 429 responses received from the Riot API.",
		}),
		ReconcileDeltas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_roster_changes_total",
			Help: "The total number of roster rows inserted, updated and deleted by reconciliation.",
		}, []string{"change"}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
	}

	reg.MustRegister(
		s.StageRuns,
		s.Batches,
		s.ItemsFetched,
		s.ItemsFailed,
		s.RowsWritten,
		s.FrontierSize,
		s.PacingDelay,
		s.Throttled,
		s.ReconcileDeltas,
		s.NotifSent,
		s.NotifFailed,
	)

	return s
}

func (s *Service) IncStageRuns(stage string) {
	s.StageRuns.WithLabelValues(stage).Inc()
}

func (s *Service) IncBatches(stage string) {
	s.Batches.WithLabelValues(stage).Inc()
}

func (s *Service) IncItemsFetched(stage string) {
	s.ItemsFetched.WithLabelValues(stage).Inc()
}

func (s *Service) IncItemsFailed(stage string) {
	s.ItemsFailed.WithLabelValues(stage).Inc()
}

func (s *Service) AddRowsWritten(stage string, n int) {
	s.RowsWritten.WithLabelValues(stage).Add(float64(n))
}

func (s *Service) SetFrontierSize(stage string, n int) {
	s.FrontierSize.WithLabelValues(stage).Set(float64(n))
}

func (s *Service) ObservePacingDelay(seconds float64) {
	s.PacingDelay.Observe(seconds)
}

func (s *Service) IncThrottled() {
	s.Throttled.Inc()
}

func (s *Service) ObserveReconcile(inserted, updated, deleted int) {
	s.ReconcileDeltas.WithLabelValues("inserted").Add(float64(inserted))
	s.ReconcileDeltas.WithLabelValues("updated").Add(float64(updated))
	s.ReconcileDeltas.WithLabelValues("deleted").Add(float64(deleted))
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}
