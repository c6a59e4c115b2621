// Package main provisions the first super admin account. Public registration
// never grants elevated roles, so a fresh deployment runs this once before
// opening the API.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/config"
	"github.com/ijwi/citizen-server/internal/database"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/services"
	"github.com/ijwi/citizen-server/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	name := os.Getenv("SEED_ADMIN_NAME")
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if name == "" || email == "" || password == "" {
		sugar.Fatal("SEED_ADMIN_NAME, SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}
	loc := models.Location{
		Province: os.Getenv("SEED_ADMIN_PROVINCE"),
		District: os.Getenv("SEED_ADMIN_DISTRICT"),
		Sector:   os.Getenv("SEED_ADMIN_SECTOR"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.ApplyMigrations(ctx, pool); err != nil {
		sugar.Fatalf("Failed to apply migrations: %v", err)
	}

	users := services.NewUserService(store.NewPostgres(pool), nil, cfg.JWTSecret, cfg.TokenTTL, sugar)
	admin, err := users.Bootstrap(ctx, name, email, password, loc)
	if err != nil {
		sugar.Fatalf("Bootstrap failed: %v", err)
	}

	sugar.Infow("Super admin created", "id", admin.ID, "email", admin.Email)
}
