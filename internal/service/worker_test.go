package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/queue"
)

type stubHandler struct {
	err error
}

func (s stubHandler) HandlePayload(context.Context, string, []byte) (*ReconcileResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ReconcileResult{Received: true, Matched: true, Applied: true}, nil
}

// outcome records how a job was settled.
type outcome struct {
	mu      sync.Mutex
	acked   bool
	nacked  bool
	requeue bool
}

func job(o *outcome, redelivered bool, wg *sync.WaitGroup) queue.Delivery {
	return queue.Delivery{
		ContentType: "application/json",
		Body:        []byte(`{}`),
		Redelivered: redelivered,
		Ack: func() error {
			o.mu.Lock()
			o.acked = true
			o.mu.Unlock()
			wg.Done()
			return nil
		},
		Nack: func(requeue bool) error {
			o.mu.Lock()
			o.nacked, o.requeue = true, requeue
			o.mu.Unlock()
			wg.Done()
			return nil
		},
	}
}

func runJob(t *testing.T, handler PayloadHandler, redelivered bool) *outcome {
	t.Helper()
	jobs := make(chan queue.Delivery, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	o := &outcome{}
	jobs <- job(o, redelivered, &wg)
	close(jobs)

	worker := NewWorker(handler, jobs, discardLogger())
	worker.Start(context.Background())
	wg.Wait()
	return o
}

func TestWorkerAcksProcessedEvents(t *testing.T) {
	o := runJob(t, stubHandler{}, false)
	assert.True(t, o.acked)
	assert.False(t, o.nacked)
}

func TestWorkerDropsInvalidEvents(t *testing.T) {
	o := runJob(t, stubHandler{err: appErrors.NewValidation("bad payload")}, false)
	assert.True(t, o.nacked)
	assert.False(t, o.requeue)
}

func TestWorkerRetriesStorageErrorsOnce(t *testing.T) {
	storage := stubHandler{err: errors.New("connection reset")}

	o := runJob(t, storage, false)
	assert.True(t, o.nacked)
	assert.True(t, o.requeue)

	o = runJob(t, storage, true)
	assert.True(t, o.nacked)
	assert.False(t, o.requeue)
}
