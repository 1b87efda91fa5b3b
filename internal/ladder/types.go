package ladder

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// store handles all database operations for the harvested ladder.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player is a stored roster entry.
type Player struct {
	ID             int64
	SourcePlayerID string
	RankTier       riot.RankTier
	Region         riot.Region
	GlobalID       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlayerKey is the natural key of a player. It is the work item of the identifier stage.
type PlayerKey struct {
	SourcePlayerID string
	Region         riot.Region
}

// MatchFrontier is the work item of the match id stage.
type MatchFrontier struct {
	SourcePlayerID string
	GlobalID       string
	Region         riot.Region
	// Since is the latest created_at of the player's match references, or the player's own created_at.
	Since time.Time
}

// MatchKey is the work item of the match detail stage.
type MatchKey struct {
	MatchID string
	Region  riot.Region
}

// IdentifierResult is a resolved global id for one player.
type IdentifierResult struct {
	SourcePlayerID string
	Region         riot.Region
	GlobalID       string
}

// MatchRef is a discovered match id.
type MatchRef struct {
	MatchID       string
	OwnerGlobalID string
	Region        riot.Region
	CreatedAt     time.Time
}

// MatchDetail is the stored subset of a match.
type MatchDetail struct {
	MatchID           string
	DurationSeconds   int64
	GameVersion       string
	QueueID           int
	WinningTeamID     int
	HadEarlySurrender bool
	StartTimestamp    int64
	CreatedAt         time.Time
}

// ReconcileStats are the row counts of one roster reconciliation.
type ReconcileStats struct {
	Before   int `json:"before"`
	After    int `json:"after"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
}

// RegionTierCount is the number of players of one tier in one region.
type RegionTierCount struct {
	Region riot.Region   `json:"region"`
	Tier   riot.RankTier `json:"tier"`
	Count  int           `json:"count"`
}

// Summary reports per-stage progress of the store.
type Summary struct {
	Players                  int               `json:"players"`
	PlayersWithIdentifier    int               `json:"players_with_identifier"`
	PlayersWithoutIdentifier int               `json:"players_without_identifier"`
	MatchRefs                int               `json:"match_refs"`
	MatchDetails             int               `json:"match_details"`
	MatchesWithoutDetail     int               `json:"matches_without_detail"`
	ByRegionTier             []RegionTierCount `json:"by_region_tier"`
}
