package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itdesk/helpdesk-api/internal/api"
	"github.com/itdesk/helpdesk-api/internal/api/handler"
	"github.com/itdesk/helpdesk-api/internal/core/service"
	mongodb "github.com/itdesk/helpdesk-api/internal/infrastructure/db/mongo"
	redisdb "github.com/itdesk/helpdesk-api/internal/infrastructure/db/redis"
	"github.com/itdesk/helpdesk-api/internal/infrastructure/queue"
	"github.com/itdesk/helpdesk-api/internal/infrastructure/seed"
	"github.com/itdesk/helpdesk-api/internal/pkg/config"
	"github.com/itdesk/helpdesk-api/pkg/logger"
)

const (
	serviceName     = "helpdesk-api"
	shutdownTimeout = 10 * time.Second
)

//	@title						Help Desk API
//	@version					1.0
//	@description				Authentication and user management for the IT help desk.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Level: "error"})
		l := logger.Get()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     serviceName,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create audit indexes")
	}

	auditQueue := queue.NewAuditDispatcher(0, auditRepo, logger.For("audit"))
	auditQueue.Start()

	limiter := redisdb.NewLoginLimiter(rdb, redisdb.LimiterConfig{
		MaxAttempts: cfg.Login.MaxAttempts,
		Window:      cfg.Login.LockoutWindow,
	})

	// --- Services ---
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.AccessTokenTTL,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token service")
	}
	userService := service.NewUserService(userRepo, auditQueue, logger.For("users"))
	authService := service.NewAuthService(userRepo, auditQueue, limiter, tokens, userService, logger.For("auth"))

	if cfg.UsersSeedPath != "" {
		inputs, err := seed.LoadFile(cfg.UsersSeedPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load seed users")
		}
		created, err := seed.Apply(ctx, userService, inputs, logger.For("seed"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed users")
		}
		log.Info().Int("created", created).Int("total", len(inputs)).Msg("seed users applied")
	}

	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Users:      userService,
		Tokens:     tokens,
		Principals: userRepo,
		Readiness: map[string]handler.Pinger{
			"mongodb": mongodb.Ping(db),
			"redis":   redisdb.Ping(rdb),
		},
		Log: logger.For("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting helpdesk api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := auditQueue.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit queue did not drain before shutdown")
	}
}
