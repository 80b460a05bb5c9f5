package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/storefront-go/internal/config"
	"github.com/storefront/storefront-go/internal/crypto"
	"github.com/storefront/storefront-go/internal/handler"
	"github.com/storefront/storefront-go/internal/lib/logger"
	"github.com/storefront/storefront-go/internal/lib/logger/sl"
	"github.com/storefront/storefront-go/internal/repository"
	"github.com/storefront/storefront-go/internal/service"
	"github.com/storefront/storefront-go/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", sl.Err(err))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.IsProduction(), cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users     service.UserStore
		addresses service.AddressStore
		pinger    handler.Pinger
	)

	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		users, addresses = store.Users(), store.Addresses()
	default:
		db, err := repository.NewDB(cfg.DatabaseDSN)
		if err != nil {
			log.Error("opening database", sl.Err(err))
			os.Exit(1)
		}
		defer db.Close()

		if cfg.DBAutoMigrate {
			if err := repository.Migrate(ctx, db); err != nil {
				log.Error("migrating database", sl.Err(err))
				os.Exit(1)
			}
		}

		users, addresses, pinger = repository.NewUserRepository(db), repository.NewAddressRepository(db), db
	}

	var denylist service.Denylist
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		dl := session.NewRedisDenylist(rdb)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := dl.Ping(pingCtx); err != nil {
			log.Warn("redis ping failed, revocation checks will error until it is reachable", sl.Err(err))
		}
		cancel()
		denylist = dl
		log.Info("token denylist enabled", slog.String("redis_addr", cfg.Redis.Addr))
	} else {
		log.Info("token denylist disabled, logout does not revoke issued tokens")
	}

	tokens, err := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Error("creating token issuer", sl.Err(err))
		os.Exit(1)
	}

	authService := service.NewAuthService(log, users, crypto.NewHasher(cfg.BcryptCost), tokens, denylist)
	profileService := service.NewProfileService(users, addresses)

	router := handler.NewRouter(ctx, handler.RouterConfig{
		Auth:           handler.NewAuthHandler(authService, log),
		Profile:        handler.NewProfileHandler(profileService, log),
		Health:         handler.NewHealthHandler(pinger, log),
		Authenticator:  authService,
		Log:            log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("port", cfg.Port), slog.String("env", cfg.Env), slog.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("server error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced shutdown", sl.Err(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}
