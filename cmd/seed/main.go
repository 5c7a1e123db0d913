package main

import (
	"context"
	"flag"
	"os"
	"time"

	"hotel/internal/auth"
	"hotel/internal/cache"
	"hotel/internal/config"
	"hotel/internal/db"
	"hotel/internal/logging"
	"hotel/internal/repository"
)

func main() {
	roomsSource := flag.String("rooms", "", "JSON file path or http(s) URL with rooms to upsert")
	skipAdmin := flag.Bool("skip-admin", false, "do not create or promote the admin account")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.Logging, cfg.Env).With("component", "seed")
	logger.Info("starting seed")

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.Open(cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if !*skipAdmin {
		admin := adminFromEnv()
		if admin.Email == "" || admin.Password == "" {
			logger.Warn("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set, skipping admin account")
		} else {
			hasher := auth.NewBcryptHasher(auth.BcryptCost)
			created, err := seedAdmin(ctx, repository.NewUserRepository(gormDB), hasher, admin)
			if err != nil {
				logger.Error("seed admin", "error", err)
				os.Exit(1)
			}
			logger.Info("admin account ready", "email", admin.Email, "created", created)
		}
	}

	if *roomsSource == "" {
		logger.Info("no -rooms source given, skipping rooms")
		return
	}

	rooms, err := loadRooms(ctx, *roomsSource)
	if err != nil {
		logger.Error("load rooms", "source", *roomsSource, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded rooms", "count", len(rooms))

	roomCache, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unreachable, running servers may serve cached rooms until they expire",
			"addr", cfg.Redis.Addr, "error", err)
	}
	defer roomCache.Close()

	result, err := seedRooms(ctx, repository.NewRoomRepository(gormDB), roomCache, rooms)
	if err != nil {
		logger.Error("seed rooms", "error", err)
		os.Exit(1)
	}

	logger.Info("seed completed",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"total", result.Created+result.Updated,
	)
	if result.StaleCache > 0 {
		logger.Warn("some room cache entries were not invalidated", "rooms", result.StaleCache)
	}
}

func adminFromEnv() AdminSeed {
	return AdminSeed{
		Email:     os.Getenv("SEED_ADMIN_EMAIL"),
		Password:  os.Getenv("SEED_ADMIN_PASSWORD"),
		FirstName: envOr("SEED_ADMIN_FIRST_NAME", "Admin"),
		LastName:  envOr("SEED_ADMIN_LAST_NAME", "User"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
