package ladder

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PlayersNeedingIdentifier returns the players whose global id is still unknown, in insertion order.
func (s *store) PlayersNeedingIdentifier(ctx context.Context) ([]PlayerKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_player_id, region
		FROM players
		WHERE global_id IS NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query identifier frontier: %w", err)
	}
	defer rows.Close()

	keys := []PlayerKey{}
	for rows.Next() {
		var k PlayerKey
		if err := rows.Scan(&k.SourcePlayerID, &k.Region); err != nil {
			return nil, fmt.Errorf("failed to scan player key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// PlayersNeedingMatches returns every player with a global id together with the instant
// after which its matches are still unknown.
func (s *store) PlayersNeedingMatches(ctx context.Context) ([]MatchFrontier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.source_player_id, p.global_id, p.region, COALESCE(MAX(r.created_at), p.created_at)
		FROM players p
		LEFT JOIN match_refs r ON r.owner_global_id = p.global_id
		WHERE p.global_id IS NOT NULL
		GROUP BY p.id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query match frontier: %w", err)
	}
	defer rows.Close()

	items := []MatchFrontier{}
	for rows.Next() {
		var (
			f     MatchFrontier
			since int64
		)
		if err := rows.Scan(&f.SourcePlayerID, &f.GlobalID, &f.Region, &since); err != nil {
			return nil, fmt.Errorf("failed to scan match frontier: %w", err)
		}
		f.Since = fromUnix(since)
		items = append(items, f)
	}
	return items, rows.Err()
}

// MatchesNeedingDetail returns the match references that have no detail row yet.
func (s *store) MatchesNeedingDetail(ctx context.Context) ([]MatchKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.match_id, r.region
		FROM match_refs r
		LEFT JOIN match_details d ON d.match_id = r.match_id
		WHERE d.match_id IS NULL
		ORDER BY r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query detail frontier: %w", err)
	}
	defer rows.Close()

	keys := []MatchKey{}
	for rows.Next() {
		var k MatchKey
		if err := rows.Scan(&k.MatchID, &k.Region); err != nil {
			return nil, fmt.Errorf("failed to scan match key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// FrontierCursor computes the cursor of a single player. It is recomputed on every call.
func (s *store) FrontierCursor(ctx context.Context, globalID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var since sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(
			(SELECT MAX(created_at) FROM match_refs WHERE owner_global_id = ?),
			(SELECT MIN(created_at) FROM players WHERE global_id = ?)
		)
	`, globalID, globalID).Scan(&since)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to compute frontier cursor for %s: %w", globalID, err)
	}
	if !since.Valid {
		return time.Time{}, fmt.Errorf("player %s: %w", globalID, ErrNotFound)
	}
	return fromUnix(since.Int64), nil
}
