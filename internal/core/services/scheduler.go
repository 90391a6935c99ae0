package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/veridoc-labs/veridoc/internal/logger"
)

// ErrAlreadyScheduled means a task with the same key is queued or
// running. At most one in-flight task per key is the scheduling
// contract the processing pipeline relies on.
var ErrAlreadyScheduled = errors.New("a task for this key is already scheduled")

// ErrSchedulerStopped means the pool no longer accepts tasks.
var ErrSchedulerStopped = errors.New("scheduler is stopped")

// Task is a unit of background work.
type Task func(ctx context.Context) error

// WithRetry wraps a task with an explicit retry policy: up to attempts
// invocations with a fixed delay between them. Retry is always this
// visible decorator around the task, never an implicit default.
func WithRetry(attempts int, delay time.Duration, task Task) Task {
	if attempts < 1 {
		attempts = 1
	}
	return func(ctx context.Context) error {
		var err error
		for attempt := 1; attempt <= attempts; attempt++ {
			if err = task(ctx); err == nil {
				return nil
			}
			if attempt == attempts {
				break
			}
			logger.Warn("Task attempt %d/%d failed: %v (retrying in %s)", attempt, attempts, err, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		return err
	}
}

// job pairs a task with its dedup key.
type job struct {
	key  string
	task Task
}

// WorkerPool executes tasks on a fixed set of workers with an
// at-most-one-in-flight guarantee per key. Tasks for different keys
// have no ordering and may run fully concurrently.
type WorkerPool struct {
	workers int
	queue   chan job
	stop    chan struct{}

	mu       sync.Mutex
	cond     *sync.Cond
	running  bool
	inFlight map[string]bool
	sending  int

	wg sync.WaitGroup
}

// NewWorkerPool creates a pool with the given number of workers.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	p := &WorkerPool{
		workers:  workers,
		queue:    make(chan job, 64),
		stop:     make(chan struct{}),
		inFlight: make(map[string]bool),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start launches the workers. Tasks run with the given context; a
// cancelled context stops task execution but queued bookkeeping still
// drains.
func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	logger.Debug("Worker pool started: %d workers", p.workers)
}

// Submit queues a task under a key, blocking while the queue is full.
// A key with a task already queued or running is rejected with
// ErrAlreadyScheduled. Stop unblocks a pending submission with
// ErrSchedulerStopped.
func (p *WorkerPool) Submit(key string, task Task) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrSchedulerStopped
	}
	if p.inFlight[key] {
		p.mu.Unlock()
		return ErrAlreadyScheduled
	}

	// Claim the key under the lock but send outside it: workers take
	// the same lock to retire a finished key, so holding it across a
	// full-queue send would wedge the pool.
	p.inFlight[key] = true
	p.sending++
	p.mu.Unlock()

	var err error
	select {
	case p.queue <- job{key: key, task: task}:
	case <-p.stop:
		err = ErrSchedulerStopped
	}

	p.mu.Lock()
	p.sending--
	if err != nil {
		delete(p.inFlight, key)
	}
	p.cond.Broadcast()
	p.mu.Unlock()
	return err
}

// Stop closes the queue and waits for workers to finish the tasks
// already accepted. Submissions parked on a full queue are released
// with ErrSchedulerStopped.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	// Wake parked senders, then wait until none remain before closing
	// the queue under them.
	close(p.stop)
	p.mu.Lock()
	for p.sending > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()

	close(p.queue)
	p.wg.Wait()
	logger.Debug("Worker pool stopped")
}

// Wait blocks until every accepted task has finished, without stopping
// the pool. Used by one-shot commands that submit and then exit.
func (p *WorkerPool) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.inFlight) > 0 {
		p.cond.Wait()
	}
}

// worker consumes jobs until the queue closes.
func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for j := range p.queue {
		if err := j.task(ctx); err != nil {
			logger.Warn("Task %s failed: %v", j.key, err)
		}

		p.mu.Lock()
		delete(p.inFlight, j.key)
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}
