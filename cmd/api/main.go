package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/threadly/threadly-api/internal/api"
	"github.com/threadly/threadly-api/internal/core/service"
	"github.com/threadly/threadly-api/internal/infrastructure/config"
	mongodb "github.com/threadly/threadly-api/internal/infrastructure/db/mongo"
	redisdb "github.com/threadly/threadly-api/internal/infrastructure/db/redis"
	"github.com/threadly/threadly-api/internal/infrastructure/queue"
	"github.com/threadly/threadly-api/internal/realtime"
	"github.com/threadly/threadly-api/pkg/logger"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	chatRepo := mongodb.NewChatRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	gameRepo := mongodb.NewGameRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"chats": chatRepo.EnsureIndexes,
		"users": userRepo.EnsureIndexes,
		"games": gameRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("failed to ensure indexes")
		}
	}

	presence := redisdb.NewPresenceStore(rdb)

	// --- Services ---
	chatService := service.NewChatService(chatRepo, userRepo, log)
	userService := service.NewUserService(userRepo, presence, cfg.JWTSecret, tokenTTL, log)
	gameService := service.NewGameService(gameRepo, log)

	// --- Realtime fan-out ---
	hub := realtime.NewHub(gameService, presence, log)
	go hub.Run(ctx)

	dispatcher := queue.NewDispatcher(cfg.WSWorkers, hub, log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		DB:          db,
		Redis:       rdb,
		Hub:         hub,
		Updates:     dispatcher,
		ChatService: chatService,
		UserService: userService,
		GameService: gameService,
		JWTSecret:   cfg.JWTSecret,
		Logger:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("threadly api started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server exited")
}
