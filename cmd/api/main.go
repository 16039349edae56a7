package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/owlcentral/forecast-api/internal/config"
	"github.com/owlcentral/forecast-api/internal/handlers"
	"github.com/owlcentral/forecast-api/internal/logic"
	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/predict"
	"github.com/owlcentral/forecast-api/internal/rating"
	"github.com/owlcentral/forecast-api/internal/store"
	"github.com/owlcentral/forecast-api/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ClickHouse: game history warehouse.
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("parse clickhouse url: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer ch.Close()

	// Postgres: seed ratings + history sink.
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	// Redis: forecast cache.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	seedRatings, err := store.LoadInitialRatings(ctx, pg)
	if err != nil {
		return fmt.Errorf("load initial ratings: %w", err)
	}
	logger.Sugar().Infow("Loaded initial ratings", "entities", len(seedRatings))

	engine := predict.NewPlayerTrueSkill(models.DefaultLeague(), rating.DefaultParams(), seedRatings)

	writer := worker.NewHistoryWriter(worker.Config{
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Postgres:      pg,
		Logger:        logger,
	})
	writer.Start(ctx)
	defer writer.Stop()

	svc := logic.NewForecastService(logic.Config{
		Source:     store.NewClickHouseSource(ch),
		Engine:     engine,
		Redis:      rdb,
		History:    writer,
		Logger:     logger,
		Iterations: cfg.SimIterations,
		Shards:     cfg.SimShards,
		Seed:       cfg.SimSeed,
		CacheTTL:   cfg.CacheTTL,
	})

	if err := svc.Train(ctx); err != nil {
		return fmt.Errorf("initial training: %w", err)
	}
	if runID, err := svc.PersistHistory(ctx); err != nil {
		logger.Sugar().Warnw("Ratings history not persisted", "error", err)
	} else {
		logger.Sugar().Infow("Ratings history persisted", "run", runID)
	}

	h := handlers.New(handlers.Config{
		Forecast:       svc,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Postgres:       pg,
		ClickHouse:     ch,
		Redis:          redisPinger{rdb},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar().Infow("API listening", "port", cfg.Port, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// redisPinger adapts the redis client to the handler's Pinger.
type redisPinger struct {
	c *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.c.Ping(ctx).Err()
}
