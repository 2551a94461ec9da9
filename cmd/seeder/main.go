package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"math/rand"
	"time"

	_ "github.com/mattn/go-sqlite3"
	logger "github.com/sirupsen/logrus"
	"gitlab.com/digineat/trade-orders/internal/seed"
	"gitlab.com/digineat/trade-orders/internal/storage"
)

func main() {
	// Command line flags
	dbPath := flag.String("db", "data.db", "path to SQLite database")
	count := flag.Int("count", 25, "number of random trade orders to insert")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	// Initialize database connection
	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	logger.Infof("Seeder started against %s with seed %d", *dbPath, *randSeed)

	if err := seedDatabase(context.Background(), db, *count, rand.New(rand.NewSource(*randSeed))); err != nil {
		logger.Fatalf("Failed to seed trade orders: %v", err)
	}
}

func seedDatabase(ctx context.Context, db *sql.DB, count int, rng *rand.Rand) error {
	store := storage.NewSQLiteStorage(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := seed.Orders(ctx, store, count, rng); err != nil {
		return fmt.Errorf("failed to insert orders: %w", err)
	}

	orders, err := store.FindAll(ctx)
	if err != nil {
		return err
	}
	logger.Infof("Database now contains %d active trade orders", len(orders))
	return nil
}
