package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/salesboard-lab/project-salesboard/internal/analytics"
	corecfg "github.com/salesboard-lab/project-salesboard/internal/core/config"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage/postgres"
	"github.com/salesboard-lab/project-salesboard/internal/ingestion"
	"github.com/salesboard-lab/project-salesboard/internal/migrations"
	"github.com/salesboard-lab/project-salesboard/internal/orders"
	"github.com/salesboard-lab/project-salesboard/internal/server"
)

func main() {
	configPath := flag.String("config", "salesboard.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	// Migrations must run before the adapter validates the schema, so open a
	// plain pool first, migrate, then hand the DSN to the adapter.
	if err := runMigrations(cfg); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 3. Initialize Services
	ingestionSvc := ingestion.NewService(dbAdapter, cfg.Server.MaxUploadSizeMB, ingestion.Mode(cfg.Ingestion.Mode))
	analyticsSvc := analytics.NewService(dbAdapter)
	ordersSvc := orders.NewService(dbAdapter)

	// 4. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	analyticsSvc.RegisterRoutes(srv.Engine)
	ordersSvc.RegisterRoutes(srv.Engine)

	// 5. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func runMigrations(cfg *corecfg.Config) error {
	db, err := migrations.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrations.RunMigrations(db, cfg.Database.AutoMigrate)
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
