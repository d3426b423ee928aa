package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/majdishami/BudgetBuddy-V2/internal/backup"
	"github.com/majdishami/BudgetBuddy-V2/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting backup-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	manager := backup.NewManager(repo, cfg.BackupDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.BackupSchedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		path, err := manager.Create(runCtx)
		if err != nil {
			logger.Error("Scheduled backup failed", "error", err)
			return
		}
		logger.Info("Scheduled backup written", "file", path)
	})
	if err != nil {
		logger.Error("Invalid backup schedule", "schedule", cfg.BackupSchedule, "error", err)
		os.Exit(1)
	}

	// Take one snapshot on startup so a fresh deployment is covered before
	// the first scheduled run.
	if path, err := manager.Create(ctx); err != nil {
		logger.Error("Startup backup failed", "error", err)
	} else {
		logger.Info("Startup backup written", "file", path)
	}

	scheduler.Start()
	logger.Info("Backup scheduler running", "schedule", cfg.BackupSchedule, "dir", cfg.BackupDir)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Backup-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
