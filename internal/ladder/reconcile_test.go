package ladder_test

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/riot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func player(id string, tier riot.RankTier) riot.PlayerRecord {
	return riot.PlayerRecord{SourcePlayerID: id, RankTier: tier, Region: riot.RegionEUW}
}

func tierOf(t *testing.T, store ladder.Store, id string) riot.RankTier {
	t.Helper()
	p, err := store.GetPlayer(context.Background(), id, riot.RegionEUW)
	require.NoError(t, err)
	return p.RankTier
}

func TestReconcilePlayers_Scenario(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	s1 := []riot.PlayerRecord{player("P1", riot.TierGrandmaster), player("P2", riot.TierChallenger)}
	stats, err := store.ReconcilePlayers(ctx, s1, t0)
	require.NoError(t, err)
	assert.Equal(t, ladder.ReconcileStats{Before: 0, After: 2, Inserted: 2, Updated: 0, Deleted: 0}, stats)

	t1 := t0.Add(24 * time.Hour)
	s2 := []riot.PlayerRecord{player("P1", riot.TierChallenger), player("P3", riot.TierGrandmaster)}
	stats, err = store.ReconcilePlayers(ctx, s2, t1)
	require.NoError(t, err)
	assert.Equal(t, ladder.ReconcileStats{Before: 2, After: 2, Inserted: 1, Updated: 1, Deleted: 1}, stats)

	assert.Equal(t, riot.TierChallenger, tierOf(t, store, "P1"))
	assert.Equal(t, riot.TierGrandmaster, tierOf(t, store, "P3"))
	_, err = store.GetPlayer(ctx, "P2", riot.RegionEUW)
	assert.ErrorIs(t, err, ladder.ErrNotFound)

	p1, err := store.GetPlayer(ctx, "P1", riot.RegionEUW)
	require.NoError(t, err)
	assert.Equal(t, t0, p1.CreatedAt)
	assert.Equal(t, t1, p1.UpdatedAt)

	p3, err := store.GetPlayer(ctx, "P3", riot.RegionEUW)
	require.NoError(t, err)
	assert.Equal(t, t1, p3.CreatedAt)
	assert.Equal(t, t1, p3.UpdatedAt)
}

func TestReconcilePlayers_Idempotent(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	snapshot := []riot.PlayerRecord{player("P1", riot.TierChallenger), player("P2", riot.TierGrandmaster)}
	_, err := store.ReconcilePlayers(ctx, snapshot, t0)
	require.NoError(t, err)
	before, err := store.GetPlayer(ctx, "P1", riot.RegionEUW)
	require.NoError(t, err)

	stats, err := store.ReconcilePlayers(ctx, snapshot, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, ladder.ReconcileStats{Before: 2, After: 2}, stats)

	after, err := store.GetPlayer(ctx, "P1", riot.RegionEUW)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReconcilePlayers_SameIDInTwoRegions(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	stats, err := store.ReconcilePlayers(ctx, []riot.PlayerRecord{
		{SourcePlayerID: "P1", RankTier: riot.TierChallenger, Region: riot.RegionEUW},
		{SourcePlayerID: "P1", RankTier: riot.TierChallenger, Region: riot.RegionKR},
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)
}

func TestReconcilePlayers_DuplicateKeysCollapse(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	stats, err := store.ReconcilePlayers(ctx, []riot.PlayerRecord{
		player("P1", riot.TierGrandmaster),
		player("P1", riot.TierChallenger),
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, ladder.ReconcileStats{Before: 0, After: 1, Inserted: 1}, stats)
	assert.Equal(t, riot.TierChallenger, tierOf(t, store, "P1"))
}

func TestReconcilePlayers_FailureLeavesPriorState(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	_, err := store.ReconcilePlayers(ctx, []riot.PlayerRecord{player("P1", riot.TierGrandmaster), player("P2", riot.TierChallenger)}, t0)
	require.NoError(t, err)

	// An empty source id violates a table constraint after the update of P1 was applied.
	_, err = store.ReconcilePlayers(ctx, []riot.PlayerRecord{
		player("P1", riot.TierChallenger),
		player("P3", riot.TierChallenger),
		player("", riot.TierChallenger),
	}, t0.Add(time.Hour))
	require.Error(t, err)

	count, err := store.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, riot.TierGrandmaster, tierOf(t, store, "P1"))
	assert.Equal(t, riot.TierChallenger, tierOf(t, store, "P2"))
}

func TestReconcilePlayers_DeletedPlayerKeepsMatchRefs(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	seedPlayers(t, store, t0, "P1")

	_, err := store.InsertMatchRefs(ctx, []ladder.MatchRef{
		{MatchID: "EUW1_1", OwnerGlobalID: "g-P1", Region: riot.RegionEUW, CreatedAt: t0},
	})
	require.NoError(t, err)

	stats, err := store.ReconcilePlayers(ctx, []riot.PlayerRecord{player("P2", riot.TierChallenger)}, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Deleted)

	count, err := store.CountMatchRefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
