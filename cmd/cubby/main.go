package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/banterhq/cubby/internal/api"
	"github.com/banterhq/cubby/internal/auth"
	"github.com/banterhq/cubby/internal/config"
	"github.com/banterhq/cubby/internal/database"
	"github.com/banterhq/cubby/internal/events"
	redisclient "github.com/banterhq/cubby/internal/redis"
	"github.com/banterhq/cubby/internal/service"
	"github.com/banterhq/cubby/internal/snowflake"
	"github.com/banterhq/cubby/internal/storage"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))
	ctx := context.Background()

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store, err := storage.NewMinIOClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
	if err != nil {
		slog.Error("minio", "error", err)
		os.Exit(1)
	}

	sf, err := snowflake.NewGenerator(1)
	if err != nil {
		slog.Error("snowflake", "error", err)
		os.Exit(1)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	rooms := database.NewRoomRepository(pool)
	messages := database.NewMessageRepository(pool)
	attachments := database.NewAttachmentRepository(pool)

	// --- Events ---

	hub := events.NewHub(rooms)

	// --- Services ---

	resolver := service.NewAccessResolver(attachments, messages, rooms)
	fileSvc := service.NewFileService(attachments, messages, resolver, store, sf, hub, cfg.PublicBaseURL)
	userSvc := service.NewUserService(users, attachments, store, rdb)

	// --- Handlers ---

	fileHandler := api.NewFileHandler(fileSvc)
	userHandler := api.NewUserHandler(users, userSvc)

	deps := &api.Dependencies{
		Files:        fileHandler,
		Users:        userHandler,
		Hub:          hub,
		TokenService: tokenSvc,
		Redis:        rdb,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Session-Id"},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("cubby starting", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
