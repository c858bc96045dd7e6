// Package queue provides a strictly serialized, unbounded FIFO task runner.
//
// A Queue runs at most one task at a time, in the order tasks were
// submitted. Submitting never blocks and never rejects: pending depth is
// unbounded. Each submission returns a Pending handle that completes when
// the task has run.
//
// There is no task cancellation and no timeout. A task that never returns
// blocks every task queued behind it, and no queued task is ever dropped.
// Callers that stop waiting (Pending.Wait with a cancelled context) only
// abandon the wait; the task still runs in its turn.
//
// A failing or panicking task only affects its own Pending result. The
// queue keeps draining.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/logging"
	"github.com/sirupsen/logrus"
)

// Task is a unit of work run by the queue.
type Task func(ctx context.Context) error

// Pending tracks a submitted task.
type Pending struct {
	id        uint64
	task      Task
	submitted time.Time
	done      chan struct{}
	err       error
}

// ID returns the submission sequence number, starting at 1.
func (p *Pending) ID() uint64 {
	return p.id
}

// Done is closed once the task has finished running.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the task result. It is only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the task has run or ctx ends. Abandoning the wait does
// not remove the task from the queue.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue is a concurrency-1 FIFO task runner. The zero value is not usable;
// use New.
type Queue struct {
	mu       sync.Mutex
	pending  []*Pending
	draining bool
	inFlight bool
	idle     chan struct{}
	nextID   uint64

	ctx    context.Context
	logger *logrus.Entry
}

// Option configures a Queue.
type Option func(*Queue)

// WithContext sets the context passed to every task.
func WithContext(ctx context.Context) Option {
	return func(q *Queue) {
		q.ctx = ctx
	}
}

// WithLogger sets the logger used for task tracing.
func WithLogger(logger *logrus.Entry) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = logging.NewLogger("refresh-queue")
	}
	return q
}

// Submit appends task to the queue and returns its handle.
func (q *Queue) Submit(task Task) *Pending {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	p := &Pending{
		id:        q.nextID,
		task:      task,
		submitted: time.Now(),
		done:      make(chan struct{}),
	}
	q.pending = append(q.pending, p)

	q.logger.WithFields(logrus.Fields{
		"task":  p.id,
		"depth": len(q.pending),
	}).Debug("Task queued")

	if !q.draining {
		q.draining = true
		q.idle = make(chan struct{})
		go q.drain()
	}

	return p
}

// Len returns the number of tasks waiting to run, excluding the one in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// InFlight reports whether a task is currently running.
func (q *Queue) InFlight() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Drain blocks until the queue has no pending or running task, or ctx ends.
func (q *Queue) Drain(ctx context.Context) error {
	q.mu.Lock()
	if !q.draining {
		q.mu.Unlock()
		return nil
	}
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain runs tasks one at a time until the queue is empty.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			close(q.idle)
			q.mu.Unlock()
			return
		}
		p := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.inFlight = true
		q.mu.Unlock()

		err := q.run(p)

		q.mu.Lock()
		q.inFlight = false
		q.mu.Unlock()

		p.err = err
		close(p.done)
	}
}

// run executes a single task, converting a panic into that task's error.
func (q *Queue) run(p *Pending) (err error) {
	start := time.Now()
	log := q.logger.WithField("task", p.id)
	log.WithField("waited", start.Sub(p.submitted)).Debug("Task started")

	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(fmt.Errorf("%v", r), errors.ErrCodeInternal, "queued task panicked").
				WithDetail("task", p.id)
		}
		entry := log.WithField("duration", time.Since(start))
		if err != nil {
			entry.WithError(err).Warn("Task failed")
		} else {
			entry.Debug("Task finished")
		}
	}()

	return p.task(q.ctx)
}
