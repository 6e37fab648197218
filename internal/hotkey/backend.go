package hotkey

import "errors"

// ErrBackendNotAvailable is returned when global hotkeys cannot be grabbed
// on the current display server.
var ErrBackendNotAvailable = errors.New("no hotkey backend available on this system")

// Backend registers global hotkeys on one display system.
type Backend interface {
	// Register grabs combo, e.g. "ctrl+shift+alt+p".
	Register(combo string) (RegisteredHotkey, error)
	// UnregisterAll releases every hotkey of this backend.
	UnregisterAll() error
	Name() string
}

// RegisteredHotkey is a grabbed hotkey.
type RegisteredHotkey interface {
	// Keydown receives a value per press. It is closed by Close.
	Keydown() <-chan struct{}
	Close() error
}
