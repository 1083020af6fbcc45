package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobzen/identity-service/internal/api"
	"github.com/jobzen/identity-service/internal/core/service"
	"github.com/jobzen/identity-service/internal/infrastructure/config"
	mongodb "github.com/jobzen/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/jobzen/identity-service/internal/infrastructure/db/redis"
	"github.com/jobzen/identity-service/internal/infrastructure/mail"
	"github.com/jobzen/identity-service/internal/infrastructure/oauth"
	"github.com/jobzen/identity-service/internal/infrastructure/queue"
	"github.com/jobzen/identity-service/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	auditRepo := mongodb.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("audit index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Outbound mail ---
	notifier, err := mail.NewSMTPNotifier(mail.Config{
		Host:        cfg.Mail.Host,
		Port:        cfg.Mail.Port,
		Username:    cfg.Mail.Username,
		Password:    cfg.Mail.Password,
		From:        cfg.Mail.From,
		FrontendURL: cfg.FrontendURL,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("smtp client setup failed")
	}

	// --- OAuth providers ---
	var providers []oauth.Provider
	if cfg.GitHub.ClientID != "" {
		providers = append(providers, oauth.NewGitHub(oauth.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			CallbackURL:  cfg.GitHub.CallbackURL,
		}))
	}
	if cfg.Google.ClientID != "" {
		providers = append(providers, oauth.NewGoogle(oauth.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			CallbackURL:  cfg.Google.CallbackURL,
		}))
	}

	// --- Audit pipeline ---
	auditService := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditService, log)
	dispatcher.Start(ctx)

	tokenTTL, err := time.ParseDuration(cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.JWTTTL).Msg("invalid JWT_TTL")
	}

	e := api.NewRouter(api.RouterDeps{
		DB:          db,
		Redis:       rdb,
		Notifier:    notifier,
		Providers:   providers,
		Audit:       dispatcher,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    tokenTTL,
		FrontendURL: cfg.FrontendURL,
		Logger:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("identity service listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
