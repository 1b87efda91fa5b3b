package ladder_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/database"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/riot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (ladder.Store, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return ladder.New(db), db, teardown
}

// seedPlayers reconciles the given players into the store and assigns each a global id of "g-<id>".
func seedPlayers(t *testing.T, store ladder.Store, now time.Time, ids ...string) {
	t.Helper()
	ctx := context.Background()

	snapshot := make([]riot.PlayerRecord, 0, len(ids))
	results := make([]ladder.IdentifierResult, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, riot.PlayerRecord{SourcePlayerID: id, RankTier: riot.TierChallenger, Region: riot.RegionEUW})
		results = append(results, ladder.IdentifierResult{SourcePlayerID: id, Region: riot.RegionEUW, GlobalID: "g-" + id})
	}
	_, err := store.ReconcilePlayers(ctx, snapshot, now)
	require.NoError(t, err)
	_, err = store.SetGlobalIDs(ctx, results, now)
	require.NoError(t, err)
}

func TestSetGlobalIDs(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	_, err := store.ReconcilePlayers(ctx, []riot.PlayerRecord{
		{SourcePlayerID: "p1", RankTier: riot.TierChallenger, Region: riot.RegionEUW},
	}, t0)
	require.NoError(t, err)

	written, err := store.SetGlobalIDs(ctx, []ladder.IdentifierResult{
		{SourcePlayerID: "p1", Region: riot.RegionEUW, GlobalID: "puuid-1"},
		{SourcePlayerID: "gone", Region: riot.RegionEUW, GlobalID: "puuid-2"},
	}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	player, err := store.GetPlayer(ctx, "p1", riot.RegionEUW)
	require.NoError(t, err)
	require.NotNil(t, player.GlobalID)
	assert.Equal(t, "puuid-1", *player.GlobalID)
	assert.Equal(t, t0, player.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), player.UpdatedAt)

	_, err = store.GetPlayer(ctx, "gone", riot.RegionEUW)
	assert.ErrorIs(t, err, ladder.ErrNotFound)
}

func TestInsertMatchRefs_DedupAcrossPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	seedPlayers(t, store, t0, "p1", "p2")

	written, err := store.InsertMatchRefs(ctx, []ladder.MatchRef{
		{MatchID: "EUW1_1", OwnerGlobalID: "g-p1", Region: riot.RegionEUW, CreatedAt: t0},
		{MatchID: "EUW1_2", OwnerGlobalID: "g-p1", Region: riot.RegionEUW, CreatedAt: t0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	// The same match seen through another player is not stored twice.
	written, err = store.InsertMatchRefs(ctx, []ladder.MatchRef{
		{MatchID: "EUW1_2", OwnerGlobalID: "g-p2", Region: riot.RegionEUW, CreatedAt: t0},
		{MatchID: "EUW1_3", OwnerGlobalID: "g-p2", Region: riot.RegionEUW, CreatedAt: t0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	count, err := store.CountMatchRefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInsertMatchDetails_InsertOnly(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	seedPlayers(t, store, t0, "p1")

	_, err := store.InsertMatchRefs(ctx, []ladder.MatchRef{
		{MatchID: "EUW1_1", OwnerGlobalID: "g-p1", Region: riot.RegionEUW, CreatedAt: t0},
	})
	require.NoError(t, err)

	detail := ladder.MatchDetail{MatchID: "EUW1_1", DurationSeconds: 1500, GameVersion: "14.10", QueueID: 420, WinningTeamID: 100, CreatedAt: t0}
	written, err := store.InsertMatchDetails(ctx, []ladder.MatchDetail{detail})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	detail.WinningTeamID = 200
	written, err = store.InsertMatchDetails(ctx, []ladder.MatchDetail{detail})
	require.NoError(t, err)
	assert.Equal(t, 0, written)

	count, err := store.CountMatchDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInsertMatchDetails_RollsBackWholeBatch(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	seedPlayers(t, store, t0, "p1")

	_, err := store.InsertMatchRefs(ctx, []ladder.MatchRef{
		{MatchID: "EUW1_1", OwnerGlobalID: "g-p1", Region: riot.RegionEUW, CreatedAt: t0},
	})
	require.NoError(t, err)

	// The second detail has no match reference, so the foreign key rejects it.
	_, err = store.InsertMatchDetails(ctx, []ladder.MatchDetail{
		{MatchID: "EUW1_1", WinningTeamID: 100, CreatedAt: t0},
		{MatchID: "EUW1_unknown", WinningTeamID: 100, CreatedAt: t0},
	})
	require.Error(t, err)

	count, err := store.CountMatchDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSummary(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	_, err := store.ReconcilePlayers(ctx, []riot.PlayerRecord{
		{SourcePlayerID: "p1", RankTier: riot.TierChallenger, Region: riot.RegionEUW},
		{SourcePlayerID: "p2", RankTier: riot.TierGrandmaster, Region: riot.RegionEUW},
		{SourcePlayerID: "p3", RankTier: riot.TierChallenger, Region: riot.RegionKR},
	}, t0)
	require.NoError(t, err)
	_, err = store.SetGlobalIDs(ctx, []ladder.IdentifierResult{{SourcePlayerID: "p1", Region: riot.RegionEUW, GlobalID: "g-p1"}}, t0)
	require.NoError(t, err)
	_, err = store.InsertMatchRefs(ctx, []ladder.MatchRef{
		{MatchID: "EUW1_1", OwnerGlobalID: "g-p1", Region: riot.RegionEUW, CreatedAt: t0},
		{MatchID: "EUW1_2", OwnerGlobalID: "g-p1", Region: riot.RegionEUW, CreatedAt: t0},
	})
	require.NoError(t, err)
	_, err = store.InsertMatchDetails(ctx, []ladder.MatchDetail{{MatchID: "EUW1_1", WinningTeamID: 100, CreatedAt: t0}})
	require.NoError(t, err)

	sum, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Players)
	assert.Equal(t, 1, sum.PlayersWithIdentifier)
	assert.Equal(t, 2, sum.PlayersWithoutIdentifier)
	assert.Equal(t, 2, sum.MatchRefs)
	assert.Equal(t, 1, sum.MatchDetails)
	assert.Equal(t, 1, sum.MatchesWithoutDetail)
	assert.Equal(t, []ladder.RegionTierCount{
		{Region: riot.RegionEUW, Tier: riot.TierChallenger, Count: 1},
		{Region: riot.RegionEUW, Tier: riot.TierGrandmaster, Count: 1},
		{Region: riot.RegionKR, Tier: riot.TierChallenger, Count: 1},
	}, sum.ByRegionTier)
}

func TestSummary_ScanErrorIsReturned(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	// Swap in a players table without constraints so a row with a NULL region can exist.
	for _, stmt := range []string{
		`ALTER TABLE players RENAME TO players_strict`,
		`CREATE TABLE players (id INTEGER PRIMARY KEY, source_player_id TEXT, rank_tier TEXT, region TEXT, global_id TEXT, created_at INTEGER, updated_at INTEGER)`,
		`INSERT INTO players (source_player_id, rank_tier, region, created_at, updated_at) VALUES ('p1', 'Challenger', 'euw1', 0, 0)`,
		`INSERT INTO players (source_player_id, rank_tier, region, created_at, updated_at) VALUES ('p2', 'Challenger', NULL, 0, 0)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err := store.Summary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan region tier row")
}

func TestMatchDetailFromRecord(t *testing.T) {
	detail, err := ladder.MatchDetailFromRecord(riot.MatchDetailRecord{
		MatchID:         "EUW1_1",
		DurationSeconds: 1800,
		GameVersion:     "14.10",
		QueueID:         420,
		StartTimestamp:  1700000000000,
		Teams: []riot.TeamRecord{
			{TeamID: 100, Win: false},
			{TeamID: 200, Win: true, EarlySurrender: true},
		},
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, 200, detail.WinningTeamID)
	assert.True(t, detail.HadEarlySurrender)
	assert.Equal(t, t0, detail.CreatedAt)

	_, err = ladder.MatchDetailFromRecord(riot.MatchDetailRecord{MatchID: "bad"}, t0)
	assert.ErrorIs(t, err, riot.ErrMalformed)
}
