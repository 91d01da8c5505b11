package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsSubmittedTasks(t *testing.T) {
	q := NewQueue(2, 16, time.Second)
	q.Start()

	var ran int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := q.Submit("count", func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&ran, 1)
			return nil
		})
		require.True(t, ok)
	}

	wg.Wait()
	q.Stop()
	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestQueueSubmitNeverBlocksWhenFull(t *testing.T) {
	q := NewQueue(1, 1, time.Second)
	// not started: nothing drains the buffer

	assert.True(t, q.Submit("first", func(ctx context.Context) error { return nil }))

	done := make(chan bool, 1)
	go func() {
		done <- q.Submit("second", func(ctx context.Context) error { return nil })
	}()

	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
}

func TestQueueSurvivesFailingAndPanickingTasks(t *testing.T) {
	q := NewQueue(1, 8, time.Second)
	q.Start()

	var ran int32
	q.Submit("fails", func(ctx context.Context) error { return errors.New("boom") })
	q.Submit("panics", func(ctx context.Context) error { panic("boom") })
	q.Submit("ok", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	q.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestQueueAppliesTaskTimeout(t *testing.T) {
	q := NewQueue(1, 1, 20*time.Millisecond)
	q.Start()

	errCh := make(chan error, 1)
	q.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return ctx.Err()
	})

	q.Stop()
	assert.ErrorIs(t, <-errCh, context.DeadlineExceeded)
}

func TestQueueRejectsAfterStop(t *testing.T) {
	q := NewQueue(1, 4, time.Second)
	q.Start()
	q.Stop()

	assert.False(t, q.Submit("late", func(ctx context.Context) error { return nil }))
	// second stop is a no-op
	q.Stop()
}

func TestInlineRunsSynchronously(t *testing.T) {
	ran := false
	ok := Inline{}.Submit("inline", func(ctx context.Context) error {
		ran = true
		return errors.New("ignored")
	})

	assert.True(t, ok)
	assert.True(t, ran)
}
