package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/storefront/storefront-go/internal/lib/logger/sl"
	"github.com/storefront/storefront-go/internal/repository"
)

func main() {
	_ = godotenv.Load()

	var (
		dsn     string
		timeout time.Duration
	)
	flag.StringVar(&dsn, "dsn", os.Getenv("DATABASE_DSN"), "MySQL data source name")
	flag.DurationVar(&timeout, "timeout", time.Minute, "time allowed for all migrations")
	flag.Parse()

	if dsn == "" {
		slog.Error("dsn is required: pass -dsn or set DATABASE_DSN")
		os.Exit(1)
	}

	db, err := repository.NewDB(dsn)
	if err != nil {
		slog.Error("opening database", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := repository.Migrate(ctx, db); err != nil {
		slog.Error("migrating database", sl.Err(err))
		db.Close()
		os.Exit(1)
	}

	slog.Info("migrations applied")
}
