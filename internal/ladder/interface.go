package ladder

import (
	"context"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// Store defines the interface for the harvested ladder data.
type Store interface {
	// Reconciliation
	ReconcilePlayers(ctx context.Context, snapshot []riot.PlayerRecord, now time.Time) (ReconcileStats, error)

	// Stage writes, each committed in a single transaction.
	SetGlobalIDs(ctx context.Context, results []IdentifierResult, now time.Time) (int, error)
	InsertMatchRefs(ctx context.Context, refs []MatchRef) (int, error)
	InsertMatchDetails(ctx context.Context, details []MatchDetail) (int, error)

	// Frontier
	PlayersNeedingIdentifier(ctx context.Context) ([]PlayerKey, error)
	PlayersNeedingMatches(ctx context.Context) ([]MatchFrontier, error)
	MatchesNeedingDetail(ctx context.Context) ([]MatchKey, error)
	FrontierCursor(ctx context.Context, globalID string) (time.Time, error)

	// Reads
	GetPlayer(ctx context.Context, sourcePlayerID string, region riot.Region) (*Player, error)
	CountPlayers(ctx context.Context) (int, error)
	CountMatchRefs(ctx context.Context) (int, error)
	CountMatchDetails(ctx context.Context) (int, error)
	Summary(ctx context.Context) (Summary, error)
}
