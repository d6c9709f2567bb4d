package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"vitae/internal/platform/metrics"
	"vitae/internal/profile/service"
	dErrors "vitae/pkg/domain-errors"
)

// Reconciler runs one reconciliation cycle.
type Reconciler interface {
	Process(ctx context.Context, req service.Request) (*service.Outcome, error)
}

// Worker drains a job channel, running a bounded number of cycles at once.
// A failing job is logged and counted; it never stops the worker.
type Worker struct {
	inbox       <-chan Job
	reconciler  Reconciler
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type WorkerOption func(*Worker)

func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithConcurrency caps the number of cycles in flight. Values below one are
// ignored.
func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func NewWorker(reconciler Reconciler, inbox <-chan Job, opts ...WorkerOption) *Worker {
	w := &Worker{
		inbox:       inbox,
		reconciler:  reconciler,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes jobs until the inbox closes or ctx is done, then waits for
// the cycles already started. Every received job is finished; jobs whose
// cycle ran after ctx was done are finished as not processed.
func (w *Worker) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(w.concurrency)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case job, ok := <-w.inbox:
			if !ok {
				break loop
			}
			g.Go(func() error {
				w.handle(ctx, job)
				job.Finish(ctx.Err() == nil)
				return nil
			})
		}
	}
	_ = g.Wait()
	return ctx.Err()
}

func (w *Worker) handle(ctx context.Context, job Job) {
	w.metrics.JobStarted()
	defer w.metrics.JobFinished()
	start := time.Now()

	outcome, err := w.reconciler.Process(ctx, service.Request{
		DocumentID:    job.DocumentID,
		FallbackEmail: job.FallbackEmail,
	})
	w.metrics.ObserveJob(time.Since(start))
	if err != nil {
		w.metrics.IncrementJobs("failed")
		w.logger.ErrorContext(ctx, "upload job failed",
			"document_id", job.DocumentID,
			"uploaded_by", job.UploadedBy,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		return
	}
	w.metrics.IncrementJobs("ok")
	w.logger.InfoContext(ctx, "upload job done",
		"document_id", job.DocumentID,
		"person_id", outcome.PersonID,
		"cycle_id", outcome.CycleID.String(),
	)
}
