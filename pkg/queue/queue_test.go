package queue

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue() *Queue {
	return New(WithLogger(testutil.DiscardLogger()))
}

func TestQueueRunsTasksInSubmissionOrder(t *testing.T) {
	q := newTestQueue()

	var mu sync.Mutex
	var order []int
	var handles []*Pending
	for i := 1; i <= 20; i++ {
		i := i
		handles = append(handles, q.Submit(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}))
	}

	for _, h := range handles {
		require.NoError(t, h.Wait(context.Background()))
	}

	expected := make([]int, 20)
	for i := range expected {
		expected[i] = i + 1
	}
	assert.Equal(t, expected, order)
	assert.Equal(t, uint64(20), handles[19].ID())
}

func TestQueueNeverOverlapsTasks(t *testing.T) {
	q := newTestQueue()

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := q.Submit(func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					m := atomic.LoadInt32(&maxRunning)
					if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
			assert.NoError(t, p.Wait(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestQueueFailureDoesNotPoisonLaterTasks(t *testing.T) {
	q := newTestQueue()
	boom := stderrors.New("boom")

	first := q.Submit(func(ctx context.Context) error { return boom })
	second := q.Submit(func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, first.Wait(context.Background()), boom)
	assert.NoError(t, second.Wait(context.Background()))
}

func TestQueueRecoversPanickingTask(t *testing.T) {
	q := newTestQueue()

	panicking := q.Submit(func(ctx context.Context) error { panic("kaboom") })
	after := q.Submit(func(ctx context.Context) error { return nil })

	err := panicking.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInternal))
	assert.Contains(t, err.Error(), "kaboom")
	assert.NoError(t, after.Wait(context.Background()))
}

func TestQueueHungTaskKeepsLaterTasksPending(t *testing.T) {
	q := newTestQueue()

	release := make(chan struct{})
	started := make(chan struct{})
	hung := q.Submit(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	var ran atomic.Bool
	later := q.Submit(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, later.Wait(ctx), context.DeadlineExceeded)
	assert.False(t, ran.Load(), "task behind a hung task must not run early")
	assert.True(t, q.InFlight())
	assert.Equal(t, 1, q.Len())

	close(release)
	require.NoError(t, hung.Wait(context.Background()))
	require.NoError(t, later.Wait(context.Background()))
	assert.True(t, ran.Load(), "abandoned wait must not drop the task")
}

func TestQueueErrBeforeCompletion(t *testing.T) {
	q := newTestQueue()

	release := make(chan struct{})
	p := q.Submit(func(ctx context.Context) error {
		<-release
		return stderrors.New("late")
	})
	assert.NoError(t, p.Err())

	close(release)
	<-p.Done()
	assert.EqualError(t, p.Err(), "late")
}

func TestQueueDrain(t *testing.T) {
	q := newTestQueue()
	require.NoError(t, q.Drain(context.Background()), "empty queue drains immediately")

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		q.Submit(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			count.Add(1)
			return nil
		})
	}

	require.NoError(t, q.Drain(context.Background()))
	assert.Equal(t, int32(5), count.Load())
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.InFlight())

	// The queue restarts its drain loop after going idle.
	p := q.Submit(func(ctx context.Context) error { return nil })
	assert.NoError(t, p.Wait(context.Background()))
}

func TestQueuePassesConfiguredContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "queue")
	q := New(WithContext(ctx), WithLogger(testutil.DiscardLogger()))

	var got interface{}
	p := q.Submit(func(ctx context.Context) error {
		got = ctx.Value(key{})
		return nil
	})
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, "queue", got)
}

func TestQueueNotInFlightOnceWaitReturns(t *testing.T) {
	q := newTestQueue()
	for i := 0; i < 200; i++ {
		p := q.Submit(func(ctx context.Context) error { return nil })
		require.NoError(t, p.Wait(context.Background()))
		require.False(t, q.InFlight(), "iteration %d", i)
		require.Equal(t, 0, q.Len())
	}
}
