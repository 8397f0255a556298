package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDispatchesThroughMux(t *testing.T) {
	mux := NewMux()
	done := make(chan Job, 1)
	mux.Handle("notify.review", func(ctx context.Context, job Job) error {
		done <- job
		return nil
	})

	q := NewQueue("notifications", mux.Process, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "notify.review", Payload: "day-1"}))
	select {
	case job := <-done:
		assert.Equal(t, "day-1", job.Payload)
		assert.NotEmpty(t, job.ID)
	case <-time.After(time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "any"}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never succeeded")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{Type: "any"}))
}

func TestMuxUnknownType(t *testing.T) {
	err := NewMux().Process(context.Background(), Job{Type: "missing"})
	assert.Error(t, err)
}
