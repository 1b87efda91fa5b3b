package riot

import (
	"context"
	"time"
)

// Client defines the Riot API operations the harvester depends on.
// Throttling is retried inside the client; every returned error is terminal for that call.
type Client interface {
	ListTopPlayers(ctx context.Context) ([]PlayerRecord, error)
	FetchPlayerIdentifier(ctx context.Context, sourcePlayerID string, region Region) (string, error)
	ListMatchIDs(ctx context.Context, globalID string, region Region, since time.Time) ([]string, error)
	FetchMatchDetail(ctx context.Context, matchID string, region Region) (MatchDetailRecord, error)
}
