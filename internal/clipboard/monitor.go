package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/config"
)

// ErrTooManyErrors is reported through the failure callback when the monitor
// gives up after consecutive unexpected read errors.
var ErrTooManyErrors = errors.New("too many unexpected clipboard errors")

// State is the lifecycle state of a Monitor.
type State int

const (
	Stopped State = iota
	Running
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Failed:
		return "failed"
	default:
		return "stopped"
	}
}

// Snapshot is the last accepted clipboard content.
type Snapshot struct {
	Content    string
	ObservedAt time.Time
}

// Monitor polls a Clipboard and reports new content.
//
// The change callback runs through the dispatcher, never on the polling
// goroutine, and is not invoked for changes accepted before the most recent
// Stop.
type Monitor struct {
	clip      Clipboard
	cfg       config.MonitorConfig
	onChange  func(content string)
	onFailure func(err error)
	dispatch  func(func())
	logger    *zap.Logger
	now       func() time.Time

	processing atomic.Bool
	generation atomic.Uint64

	mu       sync.Mutex
	state    State
	stopCh   chan struct{}
	doneCh   chan struct{}
	snapshot Snapshot
}

// NewMonitor creates a stopped monitor. dispatch hands callbacks to the
// embedding UI's execution context; nil runs each callback on its own
// goroutine. onFailure may be nil.
func NewMonitor(clip Clipboard, cfg config.MonitorConfig, onChange func(string), onFailure func(error), dispatch func(func()), logger *zap.Logger) *Monitor {
	if dispatch == nil {
		dispatch = func(fn func()) { go fn() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		clip:      clip,
		cfg:       cfg,
		onChange:  onChange,
		onFailure: onFailure,
		dispatch:  dispatch,
		logger:    logger.Named("monitor"),
		now:       time.Now,
	}
}

// Start begins polling. It is a no-op while already running. Cancelling ctx
// stops the monitor like Stop.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Running {
		return
	}
	m.state = Running
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	gen := m.generation.Add(1)
	go m.run(ctx, m.stopCh, m.doneCh, gen)
}

// Stop ends polling and waits for the polling goroutine to exit, which takes
// at most one sleep interval. It is a no-op unless running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	m.state = Stopped
	m.generation.Add(1)
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	<-done
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns the last accepted content.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// SetProcessing marks a write-back as in flight. While set the monitor does
// not read the clipboard.
func (m *Monitor) SetProcessing(active bool) {
	m.processing.Store(active)
	if active {
		m.logger.Debug("Clipboard processing started")
	} else {
		m.logger.Debug("Clipboard processing finished")
	}
}

// Processing reports whether a write-back is in flight.
func (m *Monitor) Processing() bool {
	return m.processing.Load()
}

func (m *Monitor) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}, gen uint64) {
	defer close(done)
	m.logger.Info("Clipboard monitor started")

	rec := recovery{cfg: m.cfg}
	for {
		var wait time.Duration
		if m.processing.Load() {
			wait = m.cfg.ProcessingBackoff()
		} else {
			var err error
			wait, err = m.poll(gen, &rec)
			if err != nil {
				m.logger.Error("Too many unexpected errors, stopping monitor", zap.Error(err))
				if m.finish(gen, Failed) && m.onFailure != nil {
					m.dispatch(func() { m.onFailure(err) })
				}
				return
			}
		}

		select {
		case <-stop:
			m.logger.Info("Clipboard monitor stopped")
			return
		case <-ctx.Done():
			m.finish(gen, Stopped)
			m.logger.Info("Clipboard monitor stopped", zap.NamedError("reason", ctx.Err()))
			return
		case <-time.After(wait):
		}
	}
}

// poll does one read-decide step and returns how long to sleep. A non-nil
// error means the monitor must give up.
func (m *Monitor) poll(gen uint64, rec *recovery) (time.Duration, error) {
	text, err := m.clip.Read()
	if err != nil {
		wait, fatal := rec.next(err)
		switch classify(err) {
		case classSoft:
			m.logger.Debug("Clipboard not readable as text", zap.Error(err))
		case classLocked:
			if rec.locked == 0 {
				m.logger.Warn("Too many clipboard access errors, pausing monitor",
					zap.Duration("cooldown", wait))
			} else {
				m.logger.Info("Clipboard locked", zap.Int("attempt", rec.locked))
			}
		default:
			m.logger.Error("Unexpected clipboard error", zap.Int("attempt", rec.failures), zap.Error(err))
		}
		return wait, fatal
	}
	rec.reset()

	now := m.now()
	m.mu.Lock()
	last := m.snapshot
	accepted := text != last.Content && shouldAccept(now, last.ObservedAt, m.cfg.Debounce())
	if accepted {
		m.snapshot = Snapshot{Content: text, ObservedAt: now}
		last = m.snapshot
	}
	m.mu.Unlock()

	if accepted {
		m.logger.Info("Clipboard changed", zap.String("preview", Preview(text, 50)))
		m.emit(gen, text)
	}
	return pollInterval(now.Sub(last.ObservedAt), m.cfg), nil
}

func (m *Monitor) emit(gen uint64, content string) {
	if m.onChange == nil {
		return
	}
	m.dispatch(func() {
		if m.generation.Load() != gen {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("Recovered from panic in change callback", zap.Any("panic", r))
			}
		}()
		m.onChange(content)
	})
}

// finish moves the monitor to state if gen is still the live run. It reports
// whether the transition happened.
func (m *Monitor) finish(gen uint64, state State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation.Load() != gen || m.state != Running {
		return false
	}
	m.state = state
	m.generation.Add(1)
	return true
}

// shouldAccept reports whether a differing value observed at now is far
// enough from the last accepted change to count as a new change.
func shouldAccept(now, lastChange time.Time, debounce time.Duration) bool {
	return now.Sub(lastChange) > debounce
}

// pollInterval picks the sleep tier from the time since the last accepted
// change: short while active, longer as the clipboard stays quiet.
func pollInterval(sinceChange time.Duration, cfg config.MonitorConfig) time.Duration {
	switch {
	case sinceChange < cfg.ActiveWindow():
		return cfg.ActiveInterval()
	case sinceChange < cfg.IdleWindow():
		return cfg.IdleInterval()
	default:
		return cfg.DormantInterval()
	}
}

// recovery tracks consecutive read failures.
type recovery struct {
	cfg      config.MonitorConfig
	locked   int
	failures int
}

func (r *recovery) reset() {
	r.locked, r.failures = 0, 0
}

// next returns the backoff for err, and a non-nil error once the unexpected
// error ceiling is reached.
func (r *recovery) next(err error) (time.Duration, error) {
	switch classify(err) {
	case classSoft:
		return r.cfg.SoftErrorBackoff(), nil
	case classLocked:
		r.locked++
		if r.locked >= r.cfg.LockedCeiling {
			r.locked = 0
			return r.cfg.LockedCooldown(), nil
		}
		return time.Duration(r.locked) * r.cfg.LockedBackoffStep(), nil
	default:
		r.failures++
		if r.failures >= r.cfg.FailureCeiling {
			return 0, fmt.Errorf("%w: %d in a row, last: %w", ErrTooManyErrors, r.failures, err)
		}
		return r.cfg.FailureBackoff(), nil
	}
}

// Preview shortens text for log output.
func Preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}
