// Package worker implements the buffered writer that persists ratings
// history to Postgres: an in-memory queue drained by a background
// goroutine, batch inserts on size or interval, graceful shutdown with
// a final flush.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	historyRowsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_history_rows_queued_total",
		Help: "Total number of ratings-history rows queued for persistence",
	})

	historyRowsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_history_rows_written_total",
		Help: "Total number of ratings-history rows written to Postgres",
	})

	historyRowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_history_rows_failed_total",
		Help: "Total number of ratings-history rows that failed to persist",
	})

	historyQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forecast_history_queue_depth",
		Help: "Current depth of the history writer queue",
	})

	historyFlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forecast_history_flush_duration_seconds",
		Help:    "Duration of history batch inserts",
		Buckets: prometheus.DefBuckets,
	})
)

// Row is one persisted rating: an entity's skill at a (stage, match
// number) point, tagged with the training run and the environment scale
// it is expressed in.
type Row struct {
	RunID       uuid.UUID
	Stage       string
	MatchNumber int
	Entity      string
	Mu          float64
	Sigma       float64
	EnvMu       float64
	EnvSigma    float64
}

// PgBatcher is the subset of the pgx pool the writer needs.
type PgBatcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Config configures the history writer.
type Config struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Postgres      PgBatcher
	Logger        *zap.Logger
}

// HistoryWriter drains queued rows into Postgres in batches.
type HistoryWriter struct {
	config Config
	queue  chan Row
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.SugaredLogger
}

// NewHistoryWriter creates a writer with sane defaults.
func NewHistoryWriter(cfg Config) *HistoryWriter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &HistoryWriter{
		config: cfg,
		queue:  make(chan Row, cfg.QueueSize),
		logger: cfg.Logger.Sugar(),
	}
}

// Start launches the drain goroutine.
func (w *HistoryWriter) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.drain()

	w.logger.Infow("History writer started",
		"queueSize", w.config.QueueSize,
		"batchSize", w.config.BatchSize,
	)
}

// Stop flushes outstanding rows and shuts the writer down.
func (w *HistoryWriter) Stop() {
	w.logger.Info("Stopping history writer...")
	close(w.queue)
	w.wg.Wait()
	w.cancel()
	w.logger.Info("History writer stopped")
}

// Enqueue adds a row to the queue. Returns false once the writer is
// shutting down.
func (w *HistoryWriter) Enqueue(row Row) bool {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warnw("Failed to enqueue history row (writer stopped)", "error", r)
		}
	}()

	select {
	case w.queue <- row:
		historyRowsQueued.Inc()
		return true
	case <-w.ctx.Done():
		return false
	}
}

// QueueDepth returns the current queue size.
func (w *HistoryWriter) QueueDepth() int {
	return len(w.queue)
}

func (w *HistoryWriter) drain() {
	defer w.wg.Done()

	batch := make([]Row, 0, w.config.BatchSize)
	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := w.writeBatch(batch); err != nil {
			w.logger.Errorw("History batch insert failed",
				"batchSize", len(batch),
				"error", err,
			)
			historyRowsFailed.Add(float64(len(batch)))
		} else {
			historyRowsWritten.Add(float64(len(batch)))
		}
		historyFlushDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case row, ok := <-w.queue:
			if !ok {
				flush()
				return
			}
			historyQueueDepth.Set(float64(len(w.queue)))

			batch = append(batch, row)
			if len(batch) >= w.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-w.ctx.Done():
			flush()
			return
		}
	}
}

func (w *HistoryWriter) writeBatch(rows []Row) error {
	b := &pgx.Batch{}
	for _, row := range rows {
		b.Queue(`
			INSERT INTO ratings_history
				(run_id, stage, match_number, entity, mu, sigma, env_mu, env_sigma)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, row.RunID, row.Stage, row.MatchNumber, row.Entity,
			row.Mu, row.Sigma, row.EnvMu, row.EnvSigma)
	}

	results := w.config.Postgres.SendBatch(context.Background(), b)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
