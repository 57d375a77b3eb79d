package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerManager_ProcessesJobs(t *testing.T) {
	w := NewWorkerManager(10, 3, nil)
	var sum atomic.Int64
	var wg sync.WaitGroup
	w.SetWorker(func(_ int, job interface{}) {
		sum.Add(int64(job.(int)))
		wg.Done()
	})

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	for i := 1; i <= 10; i++ {
		wg.Add(1)
		require.True(t, w.Enqueue(i))
	}
	wg.Wait()
	assert.Equal(t, int64(55), sum.Load())

	w.Exit()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWorkersTerminated)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestWorkerManager_EnqueueAfterExit(t *testing.T) {
	w := NewWorkerManager(1, 1, nil)
	w.Exit()
	w.Exit()
	assert.False(t, w.Enqueue("job"))
}

func TestWorkerManager_StartWithoutHandler(t *testing.T) {
	w := NewWorkerManager(1, 1, nil)
	assert.Error(t, w.Start())
}
