package ladder

import (
	"context"
	"sync"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	ReconcilePlayersFunc         func(ctx context.Context, snapshot []riot.PlayerRecord, now time.Time) (ReconcileStats, error)
	SetGlobalIDsFunc             func(ctx context.Context, results []IdentifierResult, now time.Time) (int, error)
	InsertMatchRefsFunc          func(ctx context.Context, refs []MatchRef) (int, error)
	InsertMatchDetailsFunc       func(ctx context.Context, details []MatchDetail) (int, error)
	PlayersNeedingIdentifierFunc func(ctx context.Context) ([]PlayerKey, error)
	PlayersNeedingMatchesFunc    func(ctx context.Context) ([]MatchFrontier, error)
	MatchesNeedingDetailFunc     func(ctx context.Context) ([]MatchKey, error)
	FrontierCursorFunc           func(ctx context.Context, globalID string) (time.Time, error)
	GetPlayerFunc                func(ctx context.Context, sourcePlayerID string, region riot.Region) (*Player, error)
	SummaryFunc                  func(ctx context.Context) (Summary, error)

	// Call records
	ReconcilePlayersCalls   [][]riot.PlayerRecord
	SetGlobalIDsCalls       [][]IdentifierResult
	InsertMatchRefsCalls    [][]MatchRef
	InsertMatchDetailsCalls [][]MatchDetail
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) ReconcilePlayers(ctx context.Context, snapshot []riot.PlayerRecord, now time.Time) (ReconcileStats, error) {
	m.mu.Lock()
	m.ReconcilePlayersCalls = append(m.ReconcilePlayersCalls, snapshot)
	fn := m.ReconcilePlayersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, snapshot, now)
	}
	return ReconcileStats{After: len(snapshot), Inserted: len(snapshot)}, nil
}

func (m *MockStore) SetGlobalIDs(ctx context.Context, results []IdentifierResult, now time.Time) (int, error) {
	m.mu.Lock()
	m.SetGlobalIDsCalls = append(m.SetGlobalIDsCalls, results)
	fn := m.SetGlobalIDsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, results, now)
	}
	return len(results), nil
}

func (m *MockStore) InsertMatchRefs(ctx context.Context, refs []MatchRef) (int, error) {
	m.mu.Lock()
	m.InsertMatchRefsCalls = append(m.InsertMatchRefsCalls, refs)
	fn := m.InsertMatchRefsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, refs)
	}
	return len(refs), nil
}

func (m *MockStore) InsertMatchDetails(ctx context.Context, details []MatchDetail) (int, error) {
	m.mu.Lock()
	m.InsertMatchDetailsCalls = append(m.InsertMatchDetailsCalls, details)
	fn := m.InsertMatchDetailsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, details)
	}
	return len(details), nil
}

func (m *MockStore) PlayersNeedingIdentifier(ctx context.Context) ([]PlayerKey, error) {
	if m.PlayersNeedingIdentifierFunc != nil {
		return m.PlayersNeedingIdentifierFunc(ctx)
	}
	return []PlayerKey{}, nil
}

func (m *MockStore) PlayersNeedingMatches(ctx context.Context) ([]MatchFrontier, error) {
	if m.PlayersNeedingMatchesFunc != nil {
		return m.PlayersNeedingMatchesFunc(ctx)
	}
	return []MatchFrontier{}, nil
}

func (m *MockStore) MatchesNeedingDetail(ctx context.Context) ([]MatchKey, error) {
	if m.MatchesNeedingDetailFunc != nil {
		return m.MatchesNeedingDetailFunc(ctx)
	}
	return []MatchKey{}, nil
}

func (m *MockStore) FrontierCursor(ctx context.Context, globalID string) (time.Time, error) {
	if m.FrontierCursorFunc != nil {
		return m.FrontierCursorFunc(ctx, globalID)
	}
	return time.Time{}, ErrNotFound
}

func (m *MockStore) GetPlayer(ctx context.Context, sourcePlayerID string, region riot.Region) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, sourcePlayerID, region)
	}
	return nil, ErrNotFound
}

func (m *MockStore) CountPlayers(ctx context.Context) (int, error)      { return 0, nil }
func (m *MockStore) CountMatchRefs(ctx context.Context) (int, error)    { return 0, nil }
func (m *MockStore) CountMatchDetails(ctx context.Context) (int, error) { return 0, nil }

func (m *MockStore) Summary(ctx context.Context) (Summary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx)
	}
	return Summary{ByRegionTier: []RegionTierCount{}}, nil
}
