// Package dispatch provides a serial execution context for UI callbacks.
package dispatch

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by TryPost after Close.
var ErrClosed = errors.New("dispatch loop closed")

// Loop runs posted functions one at a time, in order, on a single goroutine.
type Loop struct {
	logger *zap.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewLoop starts a loop.
func NewLoop(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		logger: logger.Named("dispatch"),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// Post queues fn. Functions posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	if err := l.TryPost(fn); err != nil {
		l.logger.Debug("Dropping task posted after close")
	}
}

// TryPost queues fn, or reports ErrClosed.
func (l *Loop) TryPost(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	l.mu.Unlock()
	return nil
}

// Async runs work on its own goroutine and then queues done on the loop. Use
// it for blocking calls such as dialogs so queued tasks keep running; work
// must not touch state owned by the loop. done may be nil.
func (l *Loop) Async(work, done func()) {
	go func() {
		l.call(work)
		if done != nil {
			l.Post(done)
		}
	}()
}

// Close stops accepting work, runs what is already queued and waits for the
// loop to exit. It must not be called from a posted function.
func (l *Loop) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.wake)
	}
	l.mu.Unlock()
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			l.call(fn)
		}
		if closed && len(batch) == 0 {
			return
		}
		if len(batch) == 0 {
			<-l.wake
		}
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Recovered from panic in dispatched task", zap.Any("panic", r))
		}
	}()
	fn()
}
