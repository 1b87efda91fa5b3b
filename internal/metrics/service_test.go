package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCountsPerStage(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncBatches("identifiers")
	svc.IncBatches("identifiers")
	svc.IncBatches("details")
	svc.AddRowsWritten("details", 7)
	svc.SetFrontierSize("matches", 250)
	svc.ObserveReconcile(2, 1, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.Batches.WithLabelValues("identifiers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Batches.WithLabelValues("details")))
	assert.Equal(t, 7.0, testutil.ToFloat64(svc.RowsWritten.WithLabelValues("details")))
	assert.Equal(t, 250.0, testutil.ToFloat64(svc.FrontierSize.WithLabelValues("matches")))
	assert.Equal(t, 2.0, testutil.ToFloat64(svc.ReconcileDeltas.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.ReconcileDeltas.WithLabelValues("deleted")))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)
	svc.IncThrottled()

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "harvester_throttled_responses_total 1")
}
