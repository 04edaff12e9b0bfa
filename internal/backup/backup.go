// Package backup copies the SQLite database file aside at startup and keeps
// only the most recent copies. Failures here are diagnostic, never fatal.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const keepBackups = 10

// Run copies the database file at dbPath into backupDir with a timestamped
// name and prunes older backups beyond the retention count. A missing
// database file (first run, in-memory DB) is not an error.
func Run(dbPath, backupDir string) (string, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return "", nil
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	dest := filepath.Join(backupDir, fmt.Sprintf("inventory_backup_%s.db", stamp))
	if err := copyFile(dbPath, dest); err != nil {
		return "", fmt.Errorf("copy backup: %w", err)
	}

	if err := prune(backupDir); err != nil {
		return dest, fmt.Errorf("prune backups: %w", err)
	}
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// prune deletes the oldest backups beyond the retention count. Timestamped
// names sort chronologically, so lexical order is age order.
func prune(backupDir string) error {
	matches, err := filepath.Glob(filepath.Join(backupDir, "inventory_backup_*.db"))
	if err != nil {
		return err
	}
	if len(matches) <= keepBackups {
		return nil
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-keepBackups] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}
