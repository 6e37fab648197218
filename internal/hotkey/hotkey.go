// Package hotkey binds global keyboard shortcuts to application actions.
package hotkey

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// SelectBackend returns the backend for the running display server.
func SelectBackend(logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ds := DetectDisplayServer()
	logger.Info("Detected display server", zap.Stringer("display", ds))

	switch ds {
	case DisplayServerWindows, DisplayServerX11, DisplayServerMacOS:
		return NewLegacyBackend(logger), nil
	case DisplayServerWayland:
		return nil, fmt.Errorf("%w: global shortcuts are not supported on Wayland", ErrBackendNotAvailable)
	default:
		return nil, ErrBackendNotAvailable
	}
}

// Manager keeps the application's hotkey bindings.
type Manager struct {
	backend Backend
	post    func(func())
	logger  *zap.Logger

	mu    sync.Mutex
	bound map[string]RegisteredHotkey
}

// NewManager creates a manager on backend. Hotkey actions are handed to
// post; nil runs them on the listener goroutine.
func NewManager(backend Backend, post func(func()), logger *zap.Logger) *Manager {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		backend: backend,
		post:    post,
		logger:  logger.Named("hotkey"),
		bound:   make(map[string]RegisteredHotkey),
	}
}

// Bind registers combo and runs action on every press. An empty combo is
// ignored.
func (m *Manager) Bind(name, combo string, action func()) error {
	if combo == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.bound[combo]; dup {
		return fmt.Errorf("hotkey %q for %s is already bound", combo, name)
	}
	hk, err := m.backend.Register(combo)
	if err != nil {
		return fmt.Errorf("hotkey for %s: %w", name, err)
	}
	m.bound[combo] = hk

	go func() {
		for range hk.Keydown() {
			m.logger.Info("Hotkey pressed", zap.String("hotkey", combo), zap.String("action", name))
			m.post(action)
		}
	}()
	return nil
}

// UnregisterAll releases every binding.
func (m *Manager) UnregisterAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.backend.UnregisterAll(); err != nil {
		m.logger.Warn("Error unregistering hotkeys", zap.Error(err))
	}
	m.bound = make(map[string]RegisteredHotkey)
}
