// Command emails prints the stored early-access subscriptions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/db"
	"github.com/smartforge/landing/internal/repositories"
	"go.uber.org/zap"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of rows to print")
	offset := flag.Int("offset", 0, "rows to skip")
	asJSON := flag.Bool("json", false, "print rows as JSON lines")
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.PoolOptions{
		MaxConns:       2,
		ConnectTimeout: cfg.PGConnectTimeout,
		IdleTimeout:    cfg.PGIdleTimeout,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	repo := repositories.NewSubscriptionRepo(pool)

	total, err := repo.Count(ctx)
	if err != nil {
		log.Fatal("failed to count subscriptions", zap.Error(err))
	}
	subs, err := repo.List(ctx, *limit, *offset)
	if err != nil {
		log.Fatal("failed to list subscriptions", zap.Error(err))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, s := range subs {
			_ = enc.Encode(s)
		}
		return
	}

	fmt.Printf("Total subscriptions: %d\n", total)
	for _, s := range subs {
		fmt.Printf("%6d  %-40s  %s\n", s.ID, s.Email, s.CreatedAt.Format(time.RFC3339))
	}
}
