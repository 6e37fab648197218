package hotkey

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.design/x/hotkey"
)

// LegacyBackend grabs hotkeys through golang.design/x/hotkey. It works on
// Windows, macOS and X11, not on Wayland.
type LegacyBackend struct {
	logger *zap.Logger

	mu   sync.Mutex
	keys map[string]*legacyHotkey
}

// NewLegacyBackend creates the backend.
func NewLegacyBackend(logger *zap.Logger) *LegacyBackend {
	return &LegacyBackend{logger: logger, keys: make(map[string]*legacyHotkey)}
}

func (b *LegacyBackend) Name() string {
	return "golang.design/x/hotkey"
}

// Register grabs combo, registering one grab per lock-key variant where the
// platform needs it. Registering the same combo twice returns the first
// handle.
func (b *LegacyBackend) Register(combo string) (RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.keys[combo]; ok {
		return existing, nil
	}

	mods, key, err := parseHotkey(combo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hotkey %q: %w", combo, err)
	}

	lh := &legacyHotkey{
		combo:   combo,
		keydown: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		logger:  b.logger,
	}
	for _, variant := range expandModifiers(mods) {
		hk := hotkey.New(variant, key)
		if err := hk.Register(); err != nil {
			if len(lh.grabs) == 0 {
				return nil, fmt.Errorf("failed to register hotkey %q: %w", combo, err)
			}
			// Lock-key variants can collide with grabs of other programs.
			b.logger.Debug("Skipping hotkey variant", zap.String("hotkey", combo), zap.Error(err))
			continue
		}
		lh.grabs = append(lh.grabs, hk)
	}
	lh.start()

	b.keys[combo] = lh
	b.logger.Info("Registered hotkey", zap.String("hotkey", combo), zap.Int("grabs", len(lh.grabs)))
	return lh, nil
}

func (b *LegacyBackend) UnregisterAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for combo, lh := range b.keys {
		if err := lh.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(b.keys, combo)
	}
	return errors.Join(errs...)
}

// legacyHotkey fans the keydown events of all grabs for one combo into a
// single channel.
type legacyHotkey struct {
	combo   string
	grabs   []*hotkey.Hotkey
	keydown chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	logger  *zap.Logger
}

func (lh *legacyHotkey) Keydown() <-chan struct{} {
	return lh.keydown
}

func (lh *legacyHotkey) start() {
	for _, hk := range lh.grabs {
		lh.wg.Add(1)
		go func(hk *hotkey.Hotkey) {
			defer lh.wg.Done()
			for {
				select {
				case <-lh.stop:
					return
				case <-hk.Keydown():
					select {
					case lh.keydown <- struct{}{}:
					default:
						// A press is already pending.
					}
				}
			}
		}(hk)
	}
}

func (lh *legacyHotkey) Close() error {
	var errs []error
	lh.once.Do(func() {
		close(lh.stop)
		lh.wg.Wait()
		for _, hk := range lh.grabs {
			if err := hk.Unregister(); err != nil {
				errs = append(errs, fmt.Errorf("failed to unregister hotkey %q: %w", lh.combo, err))
			}
		}
		close(lh.keydown)
	})
	return errors.Join(errs...)
}
