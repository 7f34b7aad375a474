package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/vncsmyrnk/idolvote/internal/adapters/notify"
	"github.com/vncsmyrnk/idolvote/internal/adapters/ratelimit"
	"github.com/vncsmyrnk/idolvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/idolvote/internal/adapters/token"
	"github.com/vncsmyrnk/idolvote/internal/config"
	"github.com/vncsmyrnk/idolvote/internal/core/services"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load config")
	}
	utils.InitLogger(cfg.AppName + "-createadmin")

	var username, password string
	flag.StringVar(&username, "username", os.Getenv("ADMIN_USERNAME"), "Admin username")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "Admin password")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	authService := services.NewAuthService(
		postgres.NewUserRepository(db),
		postgres.NewAdminRepository(db),
		postgres.NewCodeRepository(db),
		token.NewIssuer(cfg.JWTSecret, cfg.TokenExpiry),
		notify.NewLogSender(),
		ratelimit.Noop{},
		services.AuthOptions{},
	)

	admin, err := authService.CreateAdmin(ctx, username, password)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create admin")
	}

	utils.Logger.WithField("admin_id", admin.ID).Infof("Admin user %q created successfully.", admin.Username)
}
