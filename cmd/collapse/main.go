// Command collapse merges Persons that share an email. It runs once and
// exits non-zero when any email group could not be merged.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vitae/internal/platform/config"
	"vitae/internal/platform/logger"
	"vitae/internal/platform/postgres"
	"vitae/internal/profile/collapse"
	profilemetrics "vitae/internal/profile/metrics"
	"vitae/internal/profile/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer db.Close()

	collapser := collapse.New(store.NewPostgres(db, store.WithPostgresTxTimeout(cfg.TxTimeout)),
		collapse.WithLogger(log),
		collapse.WithMetrics(profilemetrics.New()),
	)
	report, err := collapser.Run(ctx)
	if err != nil {
		log.Error("collapse run failed", "error", err)
		return 2
	}

	for _, f := range report.Failed {
		log.Error("email group not merged", "email", f.Email, "error", f.Err)
	}
	log.Info("collapse finished",
		"groups_merged", len(report.Merged),
		"persons_removed", len(report.Removed()),
		"groups_failed", len(report.Failed),
	)
	if len(report.Failed) > 0 {
		return 1
	}
	return 0
}
