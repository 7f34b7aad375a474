package main

import (
	"context"
	"flag"
	"time"

	"github.com/vncsmyrnk/idolvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/idolvote/internal/config"
	"github.com/vncsmyrnk/idolvote/internal/core/services"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load config")
	}
	utils.InitLogger(cfg.AppName + "-codecleanup")

	retention := flag.Duration("retention", cfg.CodeRetention, "Keep used or expired codes for this long")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	cleanupService := services.NewCleanupService(postgres.NewCodeRepository(db), *retention)

	utils.Logger.Info("Starting one-time code cleanup job...")

	removed, err := cleanupService.PurgeExpiredCodes(ctx)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error purging one-time codes")
	}

	utils.Logger.Infof("Code cleanup completed successfully, %d codes removed.", removed)
}
