// Package anonymize reacts to clipboard changes: it substitutes the active
// pairs and writes the result back, without reprocessing its own writes.
package anonymize

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/clipboard"
	"github.com/TanaroSch/clipboard-anonymizer/internal/config"
	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

// ProcessingHook is the part of the monitor the service drives while a
// write-back is in flight.
type ProcessingHook interface {
	SetProcessing(active bool)
}

// Notifier receives the events the embedding UI displays.
type Notifier interface {
	// ContentDetected is called with every new raw clipboard value.
	ContentDetected(content string)
	// ContentModified is called after substituted text was written back.
	ContentModified(original, modified string, applied []replace.Applied)
	// WriteFailed is called when writing substituted text back failed.
	WriteFailed(err error)
}

// NopNotifier ignores all events.
type NopNotifier struct{}

func (NopNotifier) ContentDetected(string)                           {}
func (NopNotifier) ContentModified(string, string, []replace.Applied) {}
func (NopNotifier) WriteFailed(error)                                {}

// Service is the change callback of a clipboard monitor.
type Service struct {
	clip     clipboard.Clipboard
	hook     ProcessingHook
	notifier Notifier
	delays   config.WriteBackConfig
	logger   *zap.Logger

	mu           sync.RWMutex
	mode         replace.Mode
	pairs        []replace.Pair
	lastProduced string

	paused   atomic.Bool
	inflight sync.WaitGroup

	// writes counts running write-backs. processing stays set until the
	// last one finishes.
	writesMu sync.Mutex
	writes   int
}

// NewService creates a service writing to clip. The hook is usually set
// later with SetHook, once the monitor exists.
func NewService(clip clipboard.Clipboard, mode replace.Mode, delays config.WriteBackConfig, notifier Notifier, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		clip:     clip,
		notifier: notifier,
		delays:   delays,
		logger:   logger.Named("anonymize"),
		mode:     mode,
	}
}

// SetHook attaches the monitor whose reads are suspended during write-back.
func (s *Service) SetHook(hook ProcessingHook) {
	s.mu.Lock()
	s.hook = hook
	s.mu.Unlock()
}

// SetPairs replaces the active pair list. The list must be validated.
func (s *Service) SetPairs(pairs []replace.Pair) {
	cp := append([]replace.Pair(nil), pairs...)
	s.mu.Lock()
	s.pairs = cp
	s.mu.Unlock()
	s.logger.Info("Active pairs updated", zap.Int("count", len(cp)))
}

// Pairs returns a copy of the active pair list.
func (s *Service) Pairs() []replace.Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]replace.Pair(nil), s.pairs...)
}

// SetMode switches the replacement mode.
func (s *Service) SetMode(mode replace.Mode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.logger.Info("Replacement mode changed", zap.Stringer("mode", mode))
}

// Mode returns the current replacement mode.
func (s *Service) Mode() replace.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetPaused suspends or resumes processing. Detected content is still
// reported while paused.
func (s *Service) SetPaused(paused bool) {
	s.paused.Store(paused)
}

// Paused reports whether processing is suspended.
func (s *Service) Paused() bool {
	return s.paused.Load()
}

// LastProduced returns the most recent content the service settled on.
func (s *Service) LastProduced() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastProduced
}

// HandleChange processes newly detected clipboard content.
func (s *Service) HandleChange(content string) {
	s.notifier.ContentDetected(content)
	if s.paused.Load() {
		return
	}

	s.mu.Lock()
	if content == s.lastProduced {
		s.mu.Unlock()
		s.logger.Debug("Skipping content we just set")
		return
	}
	result, applied := replace.ApplyReport(content, s.mode, s.pairs)
	s.lastProduced = result
	hook := s.hook
	s.mu.Unlock()

	if result == content {
		s.logger.Debug("No replacement needed")
		return
	}

	for _, a := range applied {
		s.logger.Debug("Applied replacement",
			zap.Stringer("direction", a.Direction),
			zap.String("from", a.From()),
			zap.String("to", a.To()),
			zap.Int("count", a.Count))
	}

	s.beginWrite(hook)
	s.inflight.Add(1)
	go s.writeBack(hook, content, result, applied)
}

// Wait blocks until all in-flight write-backs finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) writeBack(hook ProcessingHook, original, result string, applied []replace.Applied) {
	op := uuid.NewString()
	log := s.logger.With(zap.String("op", op))

	defer s.inflight.Done()
	defer s.endWrite(hook)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic in write-back", zap.Any("panic", r))
		}
	}()

	time.Sleep(s.delays.SettleDelay())

	if err := s.clip.Write(result); err != nil {
		log.Error("Failed to write clipboard", zap.Error(err))
		s.notifier.WriteFailed(err)
		return
	}
	log.Info("Clipboard content anonymized",
		zap.Int("replacements", replace.Total(applied)),
		zap.String("preview", clipboard.Preview(result, 50)))
	s.notifier.ContentModified(original, result, applied)

	time.Sleep(s.delays.PropagateDelay())
}

func (s *Service) beginWrite(hook ProcessingHook) {
	s.writesMu.Lock()
	defer s.writesMu.Unlock()
	s.writes++
	if s.writes == 1 && hook != nil {
		hook.SetProcessing(true)
	}
}

func (s *Service) endWrite(hook ProcessingHook) {
	s.writesMu.Lock()
	defer s.writesMu.Unlock()
	s.writes--
	if s.writes == 0 && hook != nil {
		hook.SetProcessing(false)
	}
}
