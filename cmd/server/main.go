package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"hotel/docs" // swagger docs

	"hotel/internal/auth"
	"hotel/internal/cache"
	"hotel/internal/config"
	"hotel/internal/db"
	"hotel/internal/handler"
	"hotel/internal/logging"
	"hotel/internal/repository"
	"hotel/internal/router"
	"hotel/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Hotel Management API
// @version 1.0
// @description Hotel backend with user accounts, JWT sessions and room inventory.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logging, cfg.Env)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.Database, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	if cfg.Database.Reset {
		logger.Warn("RESET_DB set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	cacheClient, err := cache.Connect(pingCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cancel()
	if err != nil {
		logger.Warn("redis unreachable, running without cache and token revocation", "addr", cfg.Redis.Addr, "error", err)
	}
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roomRepo := repository.NewRoomRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewBcryptHasher(auth.BcryptCost)

	// Initialize services
	userService := service.NewUserService(userRepo, hasher, jwtService, tokenStore, logger)
	roomService := service.NewRoomService(roomRepo, cacheClient, logger)

	e := echo.New()
	router.Register(e, cfg, logger,
		router.Security{JWT: jwtService, TokenStore: tokenStore},
		router.Handlers{
			Users:  handler.NewUserHandler(userService),
			Rooms:  handler.NewRoomHandler(roomService),
			Health: handler.NewHealthHandler(gormDB, logger),
		},
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return e.Shutdown(shutdownCtx)
}
