package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/database"
	"github.com/mauv0809/ladder-harvester/internal/harvest"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/metrics"
	"github.com/mauv0809/ladder-harvester/internal/notifier"
	"github.com/mauv0809/ladder-harvester/internal/pubsub"
	"github.com/mauv0809/ladder-harvester/internal/ratelimit"
	"github.com/mauv0809/ladder-harvester/internal/riot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer initializes a new server with a test database and a mock Riot client.
func setupTestServer(t *testing.T, client riot.Client) (*Server, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	store := ladder.New(db)
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	harvester := harvest.New(harvest.Options{
		Store:    store,
		Client:   client,
		Budget:   ratelimit.New(100, 120*time.Second, nil),
		Metrics:  metricsSvc,
		Counters: metrics.New(db),
		Notifier: notifier.NewMock(),
		PubSub:   pubsub.NewMock(),
		Sleep:    func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	})
	server := NewServer(store, metrics.New(db), metricsHandler, harvester)

	teardown := func() {
		server.Close()
		dbTeardown()
	}
	return server, teardown
}

func rosterClient() *riot.MockClient {
	client := riot.NewMockClient()
	client.ListTopPlayersFunc = func(ctx context.Context) ([]riot.PlayerRecord, error) {
		return []riot.PlayerRecord{
			{SourcePlayerID: "P1", RankTier: riot.TierChallenger, Region: riot.RegionEUW},
			{SourcePlayerID: "P2", RankTier: riot.TierGrandmaster, Region: riot.RegionKR},
		}, nil
	}
	return client
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t, riot.NewMockClient())
	defer teardown()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestRunHandler_RosterThenSummary(t *testing.T) {
	server, teardown := setupTestServer(t, rosterClient())
	defer teardown()

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/roster?wait=true", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp runResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	require.Len(t, resp.Reports, 1)
	require.NotNil(t, resp.Reports[0].Reconcile)
	assert.Equal(t, 2, resp.Reports[0].Reconcile.Inserted)

	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("GET", "/summary", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var sum summaryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Players)
	assert.Equal(t, 2, sum.PlayersWithoutIdentifier)
	assert.Equal(t, 2, sum.Counters["roster_written"])
}

func TestRunHandler_RequiresBatches(t *testing.T) {
	server, teardown := setupTestServer(t, riot.NewMockClient())
	defer teardown()

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/identifiers?wait=true", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/identifiers?wait=true&batches=all", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRunHandler_UnknownStage(t *testing.T) {
	server, teardown := setupTestServer(t, riot.NewMockClient())
	defer teardown()

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/leaderboard?batches=1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRunHandler_ConcurrentRunRejected(t *testing.T) {
	server, teardown := setupTestServer(t, riot.NewMockClient())
	defer teardown()

	server.runMu.Lock()
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/details?batches=1", nil))
	server.runMu.Unlock()

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRunHandler_FatalFailureIsBadGateway(t *testing.T) {
	client := riot.NewMockClient()
	client.ListTopPlayersFunc = func(ctx context.Context) ([]riot.PlayerRecord, error) {
		return nil, riot.ErrUnauthorized
	}
	server, teardown := setupTestServer(t, client)
	defer teardown()

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/all?batches=all&wait=true", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var resp runResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
	assert.Len(t, resp.Reports, 1, "stages after the roster are not run")
}

func TestRunHandler_BackgroundRun(t *testing.T) {
	client := rosterClient()
	server, teardown := setupTestServer(t, client)
	defer teardown()

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/all?batches=all", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp runResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Status)
	assert.Equal(t, "all", resp.Batches)

	server.runs.Wait()
	count, err := server.Store.CountPlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, client.FetchPlayerIdentifierCalls, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	server, teardown := setupTestServer(t, rosterClient())
	defer teardown()

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("POST", "/run/roster?wait=true", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `harvester_roster_changes_total{change="inserted"} 2`)
}

func TestRunHandler_RequiresPost(t *testing.T) {
	server, teardown := setupTestServer(t, riot.NewMockClient())
	defer teardown()

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest("GET", "/run/roster", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
