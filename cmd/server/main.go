package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vncsmyrnk/idolvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/idolvote/internal/adapters/notify"
	"github.com/vncsmyrnk/idolvote/internal/adapters/ratelimit"
	"github.com/vncsmyrnk/idolvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/idolvote/internal/adapters/storage/local"
	"github.com/vncsmyrnk/idolvote/internal/adapters/token"
	"github.com/vncsmyrnk/idolvote/internal/config"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/core/services"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load config")
	}
	utils.InitLogger(cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	windowRepo := postgres.NewWindowRepository(db)
	contestantRepo := postgres.NewContestantRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	resultsRepo := postgres.NewResultsRepository(db)
	userRepo := postgres.NewUserRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	codeRepo := postgres.NewCodeRepository(db)

	images, err := local.NewImageStore(cfg.ImageDir, "images")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to prepare image storage")
	}

	var limiter ports.RateLimiter = ratelimit.Noop{}
	if cfg.RedisAddr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to connect to redis")
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.OTPRateLimit, cfg.OTPRateWindow)
	} else {
		utils.Logger.Warn("REDIS_ADDR not set, code requests are not rate limited")
	}

	// Services
	authService := services.NewAuthService(
		userRepo,
		adminRepo,
		codeRepo,
		token.NewIssuer(cfg.JWTSecret, cfg.TokenExpiry),
		codeSender(cfg),
		limiter,
		services.AuthOptions{CodeExpiry: cfg.CodeExpiry, CodeLength: cfg.CodeLength},
	)
	windowService := services.NewWindowService(windowRepo, contestantRepo)
	contestantService := services.NewContestantService(contestantRepo, images)
	voteService := services.NewVoteService(windowRepo, contestantRepo, voteRepo)
	resultsService := services.NewResultsService(windowRepo, resultsRepo)
	cleanupService := services.NewCleanupService(codeRepo, cfg.CodeRetention)

	c := cron.New()
	_, err = c.AddFunc(cfg.CleanupSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := cleanupService.PurgeExpiredCodes(jobCtx); err != nil {
			utils.Logger.WithError(err).Error("Scheduled code cleanup failed")
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule code cleanup cron")
	}
	c.Start()
	defer c.Stop()

	handler := http.NewHandler(authService, http.Handlers{
		Auth:        http.NewAuthHandler(authService),
		Contestants: http.NewContestantHandler(contestantService),
		Windows:     http.NewWindowHandler(windowService),
		Votes:       http.NewVoteHandler(voteService),
		Dashboard:   http.NewDashboardHandler(resultsService),
	}, http.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		ImageDir:       cfg.ImageDir,
	})

	server := &stdhttp.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			utils.Logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Fatal("Shutdown failed")
	}
}

func codeSender(cfg *config.Config) ports.CodeSender {
	var sms, email ports.CodeSender = notify.NewLogSender(), notify.NewLogSender()
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		sms = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone, cfg.OrganizationName)
	} else {
		utils.Logger.Warn("Twilio not configured, SMS codes are written to the log")
	}
	if cfg.SendGridAPIKey != "" {
		email = notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.OrganizationName, cfg.CodeExpiry)
	} else {
		utils.Logger.Warn("SendGrid not configured, email codes are written to the log")
	}
	return notify.NewRouter(sms, email)
}
