package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gitlab.com/digineat/trade-orders/internal/config"
	"gitlab.com/digineat/trade-orders/internal/events"
	"gitlab.com/digineat/trade-orders/internal/seed"
	"gitlab.com/digineat/trade-orders/internal/service"
	"gitlab.com/digineat/trade-orders/internal/storage"
	"gitlab.com/digineat/trade-orders/internal/validation"
)

type backend interface {
	service.OrderStorage
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	// Command line flags override the loaded configuration
	configPath := flag.String("config", "", "path to config file")
	listenAddr := flag.String("listen", "", "HTTP server listen port")
	storageKind := flag.String("storage", "", "storage backend: memory, sqlite or redis")
	dbPath := flag.String("db", "", "path to SQLite database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.Port = *listenAddr
	}
	if *storageKind != "" {
		cfg.Storage = *storageKind
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatalf("Invalid log level %q: %v", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to open %s storage: %v", cfg.Storage, err)
	}
	defer store.Close()

	if cfg.SeedCount > 0 {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		if err := seed.Orders(ctx, store, cfg.SeedCount, rng); err != nil {
			logger.Fatalf("Failed to seed orders: %v", err)
		}
	}

	hub := events.NewHub(64)
	svc := service.NewOrderService(store, validation.New(validation.DefaultMarketPrices()), hub)

	// Initialize HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           logRequests(newServer(svc, hub, store).routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s with %s storage", serverAddr, cfg.Storage)
		logger.Infof("Health check: http://localhost%s/api/v1/health", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infoln("Shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
	logger.Infoln("Server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config) (backend, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		s, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case config.StorageRedis:
		cli, err := storage.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStorage(cli), nil
	default:
		return storage.NewMemoryStorage(), nil
	}
}
