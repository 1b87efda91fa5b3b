package database

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// CreateBackup copies the store file into backupDir under a timestamped name.
// It returns an empty path when there is no database file to back up yet.
func CreateBackup(dbPath, backupDir string, now time.Time) (string, error) {
	info, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		log.Warn("No database file exists yet to backup", "path", dbPath)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat database file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("database path %s is a directory", dbPath)
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	backupPath := filepath.Join(backupDir, fmt.Sprintf("%s_backup_%s.db", base, now.Format("20060102_150405")))

	if err := copyFile(dbPath, backupPath, info.Mode()); err != nil {
		return "", err
	}
	log.Info("Created database backup", "path", backupPath)
	return backupPath, nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy database: %w", err)
	}
	return out.Close()
}
