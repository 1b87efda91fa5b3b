package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// New creates a new Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// SetGlobalIDs stores resolved identifiers. All rows are written in one transaction.
// Players removed by a concurrent roster refresh are silently skipped.
func (s *store) SetGlobalIDs(ctx context.Context, results []IdentifierResult, now time.Time) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE players SET global_id = ?, updated_at = ?
		WHERE source_player_id = ? AND region = ?
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, r := range results {
		res, err := stmt.ExecContext(ctx, r.GlobalID, now.Unix(), r.SourcePlayerID, string(r.Region))
		if err != nil {
			return 0, fmt.Errorf("failed to set global id for player %s/%s: %w", r.Region, r.SourcePlayerID, err)
		}
		written += affected(res)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// InsertMatchRefs stores discovered match ids. A match id that is already known is ignored,
// whichever player it was discovered through.
func (s *store) InsertMatchRefs(ctx context.Context, refs []MatchRef) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO match_refs (match_id, owner_global_id, region, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, ref := range refs {
		res, err := stmt.ExecContext(ctx, ref.MatchID, ref.OwnerGlobalID, string(ref.Region), ref.CreatedAt.Unix())
		if err != nil {
			return 0, fmt.Errorf("failed to insert match ref %s: %w", ref.MatchID, err)
		}
		written += affected(res)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// InsertMatchDetails stores match details. Details are never overwritten once present.
func (s *store) InsertMatchDetails(ctx context.Context, details []MatchDetail) (int, error) {
	if len(details) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO match_details (
			match_id, duration_seconds, game_version, queue_id,
			winning_team_id, had_early_surrender, start_timestamp, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, d := range details {
		res, err := stmt.ExecContext(ctx,
			d.MatchID, d.DurationSeconds, d.GameVersion, d.QueueID,
			d.WinningTeamID, d.HadEarlySurrender, d.StartTimestamp, d.CreatedAt.Unix(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert match detail %s: %w", d.MatchID, err)
		}
		written += affected(res)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// GetPlayer retrieves a single player by natural key.
func (s *store) GetPlayer(ctx context.Context, sourcePlayerID string, region riot.Region) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p                    Player
		globalID             sql.NullString
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_player_id, rank_tier, region, global_id, created_at, updated_at
		FROM players
		WHERE source_player_id = ? AND region = ?
	`, sourcePlayerID, string(region)).Scan(&p.ID, &p.SourcePlayerID, &p.RankTier, &p.Region, &globalID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s/%s: %w", region, sourcePlayerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player: %w", err)
	}
	if globalID.Valid {
		p.GlobalID = &globalID.String
	}
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return &p, nil
}

func (s *store) CountPlayers(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM players")
}

func (s *store) CountMatchRefs(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM match_refs")
}

func (s *store) CountMatchDetails(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM match_details")
}

// Summary counts the progress of every stage.
func (s *store) Summary(ctx context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM players),
			(SELECT COUNT(*) FROM players WHERE global_id IS NOT NULL),
			(SELECT COUNT(*) FROM match_refs),
			(SELECT COUNT(*) FROM match_details),
			(SELECT COUNT(*) FROM match_refs r LEFT JOIN match_details d ON d.match_id = r.match_id WHERE d.match_id IS NULL)
	`).Scan(&sum.Players, &sum.PlayersWithIdentifier, &sum.MatchRefs, &sum.MatchDetails, &sum.MatchesWithoutDetail)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query summary: %w", err)
	}
	sum.PlayersWithoutIdentifier = sum.Players - sum.PlayersWithIdentifier

	rows, err := s.db.QueryContext(ctx, `
		SELECT region, rank_tier, COUNT(*)
		FROM players
		GROUP BY region, rank_tier
		ORDER BY region, rank_tier
	`)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query players by region: %w", err)
	}
	defer rows.Close()

	sum.ByRegionTier = []RegionTierCount{}
	for rows.Next() {
		var c RegionTierCount
		if err := rows.Scan(&c.Region, &c.Tier, &c.Count); err != nil {
			return Summary{}, fmt.Errorf("failed to scan region tier row: %w", err)
		}
		sum.ByRegionTier = append(sum.ByRegionTier, c)
	}
	return sum, rows.Err()
}

func (s *store) count(ctx context.Context, query string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

func affected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
