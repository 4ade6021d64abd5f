package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsTask(t *testing.T) {
	done := make(chan Task, 1)
	q := NewQueue("exports", func(_ context.Context, task Task) error {
		done <- task
		return nil
	}, Options{Workers: 1, Backoff: time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task{ID: "exp-1", Kind: "students"}))

	select {
	case task := <-done:
		assert.Equal(t, "exp-1", task.ID)
		assert.Equal(t, "students", task.Kind)
		assert.False(t, task.QueuedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}
}

func TestQueueRetriesUntilExhausted(t *testing.T) {
	var runs int32
	q := NewQueue("exports", func(context.Context, Task) error {
		atomic.AddInt32(&runs, 1)
		return fmt.Errorf("render failed")
	}, Options{Workers: 1, MaxAttempts: 3, Backoff: time.Millisecond})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Task{ID: "exp-2", Kind: "fee_ledger"}))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) == 3
	}, 2*time.Second, 5*time.Millisecond)

	q.Stop()
	assert.Equal(t, int32(3), atomic.LoadInt32(&runs))
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("exports", func(context.Context, Task) error { return nil }, Options{})
	err := q.Enqueue(Task{ID: "exp-3"})
	require.Error(t, err)
}
