package riot

import (
	"context"
	"sync"
	"time"
)

// MockClient is a mock implementation of the Client interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	ListTopPlayersFunc        func(ctx context.Context) ([]PlayerRecord, error)
	FetchPlayerIdentifierFunc func(ctx context.Context, sourcePlayerID string, region Region) (string, error)
	ListMatchIDsFunc          func(ctx context.Context, globalID string, region Region, since time.Time) ([]string, error)
	FetchMatchDetailFunc      func(ctx context.Context, matchID string, region Region) (MatchDetailRecord, error)

	// Call records
	ListTopPlayersCalls        int
	FetchPlayerIdentifierCalls []string
	ListMatchIDsCalls          []ListMatchIDsCall
	FetchMatchDetailCalls      []string
}

// ListMatchIDsCall holds the arguments for a call to ListMatchIDs.
type ListMatchIDsCall struct {
	GlobalID string
	Region   Region
	Since    time.Time
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListTopPlayersCalls = 0
	m.FetchPlayerIdentifierCalls = nil
	m.ListMatchIDsCalls = nil
	m.FetchMatchDetailCalls = nil
}

func (m *MockClient) ListTopPlayers(ctx context.Context) ([]PlayerRecord, error) {
	m.mu.Lock()
	m.ListTopPlayersCalls++
	fn := m.ListTopPlayersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return []PlayerRecord{}, nil
}

func (m *MockClient) FetchPlayerIdentifier(ctx context.Context, sourcePlayerID string, region Region) (string, error) {
	m.mu.Lock()
	m.FetchPlayerIdentifierCalls = append(m.FetchPlayerIdentifierCalls, sourcePlayerID)
	fn := m.FetchPlayerIdentifierFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, sourcePlayerID, region)
	}
	return "puuid-" + sourcePlayerID, nil
}

func (m *MockClient) ListMatchIDs(ctx context.Context, globalID string, region Region, since time.Time) ([]string, error) {
	m.mu.Lock()
	m.ListMatchIDsCalls = append(m.ListMatchIDsCalls, ListMatchIDsCall{GlobalID: globalID, Region: region, Since: since})
	fn := m.ListMatchIDsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, globalID, region, since)
	}
	return []string{}, nil
}

func (m *MockClient) FetchMatchDetail(ctx context.Context, matchID string, region Region) (MatchDetailRecord, error) {
	m.mu.Lock()
	m.FetchMatchDetailCalls = append(m.FetchMatchDetailCalls, matchID)
	fn := m.FetchMatchDetailFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, region)
	}
	return MatchDetailRecord{
		MatchID: matchID,
		Teams:   []TeamRecord{{TeamID: 100, Win: true}, {TeamID: 200}},
	}, nil
}
