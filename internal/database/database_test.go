package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"players", "match_refs", "match_details"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enforced")
}

func TestInitDB_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladder.db")

	db, teardown, err := InitDB(path, "", "")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO players (source_player_id, rank_tier, region, created_at, updated_at) VALUES ('s1', 'Challenger', 'kr', 1, 1)`)
	require.NoError(t, err)
	teardown()

	db, teardown, err = InitDB(path, "", "")
	require.NoError(t, err)
	defer teardown()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM players").Scan(&count))
	assert.Equal(t, 1, count, "re-opening must not reset existing data")
}

func TestCreateBackup(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ladder.db")
	backupDir := filepath.Join(dir, "backups")

	t.Run("missing database file is not an error", func(t *testing.T) {
		path, err := CreateBackup(dbPath, backupDir, time.Now())
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("copies file with timestamped name", func(t *testing.T) {
		require.NoError(t, os.WriteFile(dbPath, []byte("sqlite bytes"), 0o644))
		now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

		path, err := CreateBackup(dbPath, backupDir, now)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(backupDir, "ladder_backup_20250102_030405.db"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "sqlite bytes", string(data))
	})
}
