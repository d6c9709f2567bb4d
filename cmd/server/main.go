package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"vitae/internal/artifact"
	"vitae/internal/auth/revocation"
	"vitae/internal/auth/tokens"
	"vitae/internal/extraction"
	"vitae/internal/ops"
	"vitae/internal/pipeline"
	"vitae/internal/platform/config"
	"vitae/internal/platform/httpserver"
	"vitae/internal/platform/logger"
	"vitae/internal/platform/metrics"
	"vitae/internal/platform/middleware"
	"vitae/internal/platform/postgres"
	"vitae/internal/platform/redis"
	profilemetrics "vitae/internal/profile/metrics"
	"vitae/internal/profile/service"
	"vitae/internal/profile/store"
)

const (
	shutdownTimeout = 10 * time.Second
	topicPartitions = 3
)

// main wires the reconciliation pipeline and the ops surface. Business logic
// lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.Open(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	tokenService := tokens.New(cfg.JWTSigningKey, revocationStore(db, redisClient, log), tokens.WithLogger(log))

	reconciler := service.New(st, extraction.NewFileProvider(),
		service.WithLogger(log),
		service.WithMetrics(profilemetrics.New()),
		service.WithRenderers(
			artifact.NewPDFRenderer(cfg.ArtifactDir, artifact.WithLogger(log)),
			artifact.NewTimelineRenderer(cfg.ArtifactDir, artifact.WithLogger(log)),
		),
	)

	jobs := make(chan pipeline.Job)
	worker := pipeline.NewWorker(reconciler, jobs,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics.New()),
		pipeline.WithConcurrency(cfg.WorkerConcurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(worker.Run(gctx))
	})

	if cfg.Kafka.Enabled() {
		source, err := pipeline.NewKafkaSource(cfg.Kafka, log)
		if err != nil {
			return err
		}
		defer source.Close()
		if err := source.EnsureTopic(ctx, topicPartitions, 1); err != nil {
			return err
		}
		log.Info("consuming upload jobs", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group)
		g.Go(func() error {
			return ignoreCanceled(source.Run(gctx, jobs))
		})
	} else {
		log.Warn("no kafka brokers configured, pipeline is idle")
	}

	opts := []ops.Option{
		ops.WithLogger(log),
		ops.WithMetricsGuard(middleware.RequireToken(tokenService, log)),
	}
	if db != nil {
		opts = append(opts, ops.WithCheck("postgres", db.PingContext))
	}
	if redisClient != nil {
		opts = append(opts, ops.WithCheck("redis", func(ctx context.Context) error {
			return redis.Health(ctx, redisClient)
		}))
	}
	srv := httpserver.New(cfg.Addr, ops.NewRouter(opts...), log)

	g.Go(func() error {
		log.Info("starting vitae", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("vitae stopped")
	return nil
}

// openStore uses Postgres when DATABASE_URL is set and an in-memory store
// otherwise.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger) (store.TxRunner, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory record store")
		return store.NewInMemory(store.WithMemoryTxTimeout(cfg.TxTimeout)), nil, nil
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgres(db, store.WithPostgresTxTimeout(cfg.TxTimeout)), db, nil
}

// revocationStore prefers a shared backend and falls back to process memory.
func revocationStore(db *sql.DB, client *goredis.Client, log *slog.Logger) revocation.Store {
	if st := revocation.Shared(db, client); st != nil {
		return st
	}
	log.Warn("token revocations are kept in memory")
	return revocation.NewMemory()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
