package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of background work, such as one archive sweep.
type Task struct {
	ID       string
	Kind     string
	Enqueued time.Time
}

// TaskFunc executes a task. Returning an error triggers a retry.
type TaskFunc func(context.Context, Task) error

// Options tune the queue. Zero values fall back to sane defaults.
type Options struct {
	Workers    int
	Buffer     int
	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Buffer <= 0 {
		o.Buffer = 16
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Queue dispatches tasks to a fixed pool of worker goroutines. Retries happen
// inline in the worker with linear backoff, so a failing task never blocks
// the queue channel.
type Queue struct {
	name string
	run  TaskFunc
	opts Options

	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue that feeds tasks to run.
func NewQueue(name string, run TaskFunc, opts Options) *Queue {
	opts = opts.withDefaults()
	return &Queue{
		name:  name,
		run:   run,
		opts:  opts,
		tasks: make(chan Task, opts.Buffer),
	}
}

// Start launches the workers. Subsequent calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.started = true
	q.opts.Logger.Info("task queue started", zap.String("queue", q.name), zap.Int("workers", q.opts.Workers))
}

// Stop signals the workers and waits for in-flight tasks to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.opts.Logger.Info("task queue stopped", zap.String("queue", q.name))
}

// Enqueue submits a task. It fails when the queue is not running or the
// buffer is full, so callers can surface backpressure instead of blocking.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	started := q.started
	ctx := q.ctx
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %q not started", q.name)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %q stopped: %w", q.name, ctx.Err())
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue %q full", q.name)
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.attempt(task)
		}
	}
}

func (q *Queue) attempt(task Task) {
	log := q.opts.Logger.With(zap.String("queue", q.name), zap.String("task_id", task.ID), zap.String("kind", task.Kind))
	for try := 1; ; try++ {
		err := q.run(q.ctx, task)
		if err == nil {
			return
		}
		if try > q.opts.MaxRetries {
			log.Error("task abandoned after retries", zap.Int("attempts", try), zap.Error(err))
			return
		}
		log.Warn("task failed, backing off", zap.Int("attempt", try), zap.Error(err))

		wait := time.Duration(try) * q.opts.Backoff
		timer := time.NewTimer(wait)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
