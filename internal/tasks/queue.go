// Package tasks runs fire-and-forget work (view counters, audit writes)
// off the request path. Failures are logged and never reach the caller.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Func func(ctx context.Context) error

// Dispatcher accepts background work. Submit reports whether the task was
// accepted; it never blocks.
type Dispatcher interface {
	Submit(name string, fn Func) bool
}

type job struct {
	name string
	fn   Func
}

// Queue is a fixed pool of workers draining a bounded channel.
type Queue struct {
	jobs    chan job
	workers int
	timeout time.Duration
	log     *logrus.Entry

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewQueue(workers, size int, timeout time.Duration) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	return &Queue{
		jobs:    make(chan job, size),
		workers: workers,
		timeout: timeout,
		log:     logrus.WithField("component", "tasks"),
	}
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.closed {
		return
	}
	q.started = true

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.log.WithField("workers", q.workers).Info("Task queue started")
}

// Stop refuses new work and waits for queued tasks to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.log.Info("Task queue stopped")
}

func (q *Queue) Submit(name string, fn Func) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.log.WithField("task", name).Warn("Task queue closed, dropping task")
		return false
	}

	select {
	case q.jobs <- job{name: name, fn: fn}:
		return true
	default:
		q.log.WithField("task", name).Warn("Task queue full, dropping task")
		return false
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		run(q.log, q.timeout, j.name, j.fn)
	}
}

func run(log *logrus.Entry, timeout time.Duration, name string, fn Func) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"task":  name,
				"panic": fmt.Sprint(r),
			}).Error("Background task panicked")
		}
	}()

	if err := fn(ctx); err != nil {
		log.WithFields(logrus.Fields{
			"task":     name,
			"duration": time.Since(start),
		}).WithError(err).Error("Background task failed")
	}
}

// Inline runs each task synchronously on Submit. Used in tests and tools
// where a queue would only add nondeterminism.
type Inline struct {
	Timeout time.Duration
}

func (i Inline) Submit(name string, fn Func) bool {
	run(logrus.WithField("component", "tasks"), i.Timeout, name, fn)
	return true
}
