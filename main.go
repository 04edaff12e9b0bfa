package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"

	"homeovault/m/internal/api"
	"homeovault/m/internal/backup"
	"homeovault/m/internal/config"
	"homeovault/m/internal/database"
	"homeovault/m/internal/inventory"
	"homeovault/m/internal/migrations"
	"homeovault/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	// Backup runs before the database is opened so the copy is consistent.
	// Every startup diagnostic is logged, never fatal.
	if dest, err := backup.Run(cfg.DatabasePath, cfg.BackupDir); err != nil {
		log.Printf("backup failed: %v", err)
	} else if dest != "" {
		log.Printf("backup created: %s", dest)
	}

	db := database.Connect(cfg.DatabasePath)
	defer db.Close()

	migrations.Run(db)

	var integrity string
	if err := db.Get(&integrity, `PRAGMA integrity_check`); err != nil {
		log.Printf("integrity check error: %v", err)
	} else if integrity != "ok" {
		log.Printf("CRITICAL: database integrity check failed: %s", integrity)
	} else {
		log.Printf("database integrity check: OK")
	}

	if cfg.SeedCSV != "" {
		seed.RestoreCatalog(db, cfg.SeedCSV)
	}

	svc := inventory.New(db)

	if report, err := svc.StartupScan(context.Background()); err != nil {
		log.Printf("startup scan failed: %v", err)
	} else {
		report.Log()
	}

	handler := api.New(svc, cfg.StaticDir)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HomeoVault inventory server starting on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	if cfg.OpenBrowser {
		if err := browser.OpenURL("http://localhost:" + cfg.HTTPPort); err != nil {
			log.Printf("could not open browser: %v", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server stopped")
}
