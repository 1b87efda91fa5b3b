package ladder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// ReconcilePlayers makes the players table equal to the snapshot, keyed by
// (source_player_id, region). Unchanged rows are left alone, rank changes bump
// updated_at, new rows are inserted and rows missing from the snapshot are deleted.
// The whole diff runs in one transaction. Duplicate keys in the snapshot collapse
// to their last occurrence.
func (s *store) ReconcilePlayers(ctx context.Context, snapshot []riot.PlayerRecord, now time.Time) (ReconcileStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ReconcileStats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := currentRanks(ctx, tx)
	if err != nil {
		return ReconcileStats{}, err
	}
	stats := ReconcileStats{Before: len(current)}

	wanted := make(map[PlayerKey]riot.RankTier, len(snapshot))
	order := make([]PlayerKey, 0, len(snapshot))
	for _, p := range snapshot {
		key := PlayerKey{SourcePlayerID: p.SourcePlayerID, Region: p.Region}
		if _, seen := wanted[key]; !seen {
			order = append(order, key)
		}
		wanted[key] = p.RankTier
	}

	for _, key := range order {
		tier := wanted[key]
		stored, exists := current[key]
		switch {
		case !exists:
			_, err = tx.ExecContext(ctx, `
				INSERT INTO players (source_player_id, rank_tier, region, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)
			`, key.SourcePlayerID, string(tier), string(key.Region), now.Unix(), now.Unix())
			if err != nil {
				return ReconcileStats{}, fmt.Errorf("failed to insert player %s/%s: %w", key.Region, key.SourcePlayerID, err)
			}
			stats.Inserted++
		case stored != tier:
			_, err = tx.ExecContext(ctx, `
				UPDATE players SET rank_tier = ?, updated_at = ?
				WHERE source_player_id = ? AND region = ?
			`, string(tier), now.Unix(), key.SourcePlayerID, string(key.Region))
			if err != nil {
				return ReconcileStats{}, fmt.Errorf("failed to update player %s/%s: %w", key.Region, key.SourcePlayerID, err)
			}
			stats.Updated++
		}
	}

	for key := range current {
		if _, keep := wanted[key]; keep {
			continue
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM players WHERE source_player_id = ? AND region = ?", key.SourcePlayerID, string(key.Region))
		if err != nil {
			return ReconcileStats{}, fmt.Errorf("failed to delete player %s/%s: %w", key.Region, key.SourcePlayerID, err)
		}
		stats.Deleted++
	}

	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&stats.After); err != nil {
		return ReconcileStats{}, fmt.Errorf("failed to count players: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ReconcileStats{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("Reconciled players", "before", stats.Before, "after", stats.After, "inserted", stats.Inserted, "updated", stats.Updated, "deleted", stats.Deleted)
	return stats, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func currentRanks(ctx context.Context, q queryer) (map[PlayerKey]riot.RankTier, error) {
	rows, err := q.QueryContext(ctx, "SELECT source_player_id, region, rank_tier FROM players")
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	current := make(map[PlayerKey]riot.RankTier)
	for rows.Next() {
		var (
			key  PlayerKey
			tier riot.RankTier
		)
		if err := rows.Scan(&key.SourcePlayerID, &key.Region, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		current[key] = tier
	}
	return current, rows.Err()
}
