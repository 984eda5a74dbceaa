// internal/service/worker.go
package service

import (
	"context"
	"log/slog"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/queue"
)

// PayloadHandler applies one raw provider event.
type PayloadHandler interface {
	HandlePayload(ctx context.Context, contentType string, body []byte) (*ReconcileResult, error)
}

// Worker drains provider events relayed onto a work queue.
type Worker struct {
	Handler PayloadHandler
	JobChan <-chan queue.Delivery
	Logger  *slog.Logger
}

func NewWorker(handler PayloadHandler, jobChan <-chan queue.Delivery, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		Handler: handler,
		JobChan: jobChan,
		Logger:  logger,
	}
}

// Start processes jobs until the channel closes or ctx is done.
func (w *Worker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.JobChan:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job queue.Delivery) {
	result, err := w.Handler.HandlePayload(ctx, job.ContentType, job.Body)
	if err == nil {
		w.Logger.Debug("provider event processed", "matched", result.Matched, "applied", result.Applied)
		if ackErr := job.Ack(); ackErr != nil {
			w.Logger.Error("ack failed", "error", ackErr)
		}
		return
	}

	// Malformed or unsigned events never succeed; storage errors get one retry.
	requeue := !job.Redelivered && !permanent(err)
	w.Logger.Warn("provider event failed", "error", err, "requeue", requeue)
	if nackErr := job.Nack(requeue); nackErr != nil {
		w.Logger.Error("nack failed", "error", nackErr)
	}
}

func permanent(err error) bool {
	return appErrors.IsValidation(err) || appErrors.IsUnauthorized(err) || appErrors.IsNotFound(err)
}
