// Package dispatch provides the single foreground execution context that
// owns every mutation of the store. Background work (scan resolution,
// notification sends) never writes directly; it hands a closure back to the
// loop, which applies results in arrival order. This keeps per-item movement
// ordering without fine-grained locking.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// ErrStopped is returned for work submitted after the loop has shut down
var ErrStopped = errors.New("dispatch loop stopped")

type task struct {
	fn     func() error
	result chan error // nil for fire-and-forget posts
}

// Loop runs submitted closures one at a time on a dedicated goroutine
type Loop struct {
	tasks    chan task
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	logger   *logger.Logger
}

// New creates a loop. Start must be called before submitting work.
func New(log *logger.Logger) *Loop {
	return &Loop{
		tasks:  make(chan task, 64),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: log,
	}
}

// Start launches the loop goroutine
func (l *Loop) Start() {
	go l.run()
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		select {
		case <-l.stop:
			// Drain tasks already queued so callers blocked in Do are released
			for {
				select {
				case t := <-l.tasks:
					l.fail(t)
				default:
					return
				}
			}
		case t := <-l.tasks:
			l.exec(t)
		}
	}
}

func (l *Loop) exec(t task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("panic in dispatched task")
			if t.result != nil {
				t.result <- errors.New("panic in dispatched task")
			}
		}
	}()

	err := t.fn()
	if t.result != nil {
		t.result <- err
	}
}

func (l *Loop) fail(t task) {
	if t.result != nil {
		t.result <- ErrStopped
	}
}

// Do runs fn on the loop and waits for its result. Returns ctx.Err() if the
// context ends before the task has been picked up; a task that has started
// always runs to completion.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)

	select {
	case l.tasks <- task{fn: fn, result: result}:
	case <-l.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. Posts after shutdown are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- task{fn: func() error { fn(); return nil }}:
	case <-l.stop:
		l.logger.Warn().Msg("post dropped, dispatch loop stopped")
	}
}

// Stop shuts the loop down and waits for the goroutine to exit
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
	<-l.done
}
