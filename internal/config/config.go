package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort     string
	DatabasePath string
	BackupDir    string
	StaticDir    string
	SeedCSV      string
	OpenBrowser  bool
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "database/inventory.db"
	}

	backupDir := os.Getenv("BACKUP_DIR")
	if backupDir == "" {
		backupDir = "backups"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "frontend"
	}

	openBrowser := true
	if v := os.Getenv("OPEN_BROWSER"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid OPEN_BROWSER value %q, defaulting to true", v)
		} else {
			openBrowser = parsed
		}
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	return Config{
		HTTPPort:     port,
		DatabasePath: dbPath,
		BackupDir:    backupDir,
		StaticDir:    staticDir,
		SeedCSV:      os.Getenv("SEED_CSV"),
		OpenBrowser:  openBrowser,
	}
}
