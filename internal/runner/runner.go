// Package runner executes runnables on a bounded set of worker goroutines
// and signals when each one has finished.
package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// ErrClosed is reported by tasks submitted after Wait
var ErrClosed = errors.New("runner pool closed")

// Runnable is a unit of work executed on a worker goroutine.
type Runnable interface {
	Run() error
}

// RunnableFunc adapts a function to Runnable
type RunnableFunc func() error

func (f RunnableFunc) Run() error { return f() }

// Task tracks one submitted Runnable.
type Task struct {
	id   string
	done chan struct{}
	err  error
}

// ID returns the task's unique identifier
func (t *Task) ID() string { return t.id }

// Done is closed once the runnable has returned
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the runnable's error. Only valid after Done is closed.
func (t *Task) Err() error { return t.err }

// Pool runs submitted work with at most a fixed number of concurrent workers.
type Pool struct {
	workers *pool.Pool
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool

	hooksMu sync.RWMutex
	hooks   []func(*Task)
}

// New creates a pool with the given number of workers (minimum 1)
func New(workers int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: pool.New().WithMaxGoroutines(workers),
		logger:  logger,
	}
}

// OnDone registers a hook invoked on the worker goroutine after each task finishes.
func (p *Pool) OnDone(fn func(*Task)) {
	p.hooksMu.Lock()
	p.hooks = append(p.hooks, fn)
	p.hooksMu.Unlock()
}

// Submit schedules r. It blocks while every worker is busy.
func (p *Pool) Submit(r Runnable) *Task {
	task := &Task{id: uuid.NewString(), done: make(chan struct{})}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		task.err = ErrClosed
		close(task.done)
		return task
	}

	p.logger.Debug("task submitted", "task", task.id)
	p.workers.Go(func() {
		p.execute(task, r)
	})
	return task
}

func (p *Pool) execute(task *Task, r Runnable) {
	defer func() {
		if rec := recover(); rec != nil {
			task.err = fmt.Errorf("task panicked: %v", rec)
			p.logger.Error("task panicked", "task", task.id, "error", task.err)
		}
		close(task.done)
		p.logger.Debug("task finished", "task", task.id, "error", task.err)

		p.hooksMu.RLock()
		hooks := p.hooks
		p.hooksMu.RUnlock()
		for _, hook := range hooks {
			hook(task)
		}
	}()
	task.err = r.Run()
}

// Wait closes the pool to new work and blocks until every task has finished.
func (p *Pool) Wait() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.workers.Wait()
}
