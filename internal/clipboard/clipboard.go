// Package clipboard provides the clipboard capability and the monitor that
// polls it for changes.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard is the text clipboard capability. Implementations must tolerate
// concurrent external writers; failures are expected, not exceptional.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

var (
	// ErrUnsupportedFormat means the clipboard holds something that is not text.
	ErrUnsupportedFormat = errors.New("clipboard content is not text")
	// ErrUnavailable means the clipboard could not be read right now.
	ErrUnavailable = errors.New("clipboard temporarily unavailable")
	// ErrLocked means another process holds the clipboard open.
	ErrLocked = errors.New("clipboard locked by another process")
)

// errorClass buckets read errors for the monitor's recovery policy.
type errorClass int

const (
	classSoft errorClass = iota
	classLocked
	classUnexpected
)

func classify(err error) errorClass {
	switch {
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrUnavailable):
		return classSoft
	case errors.Is(err, ErrLocked):
		return classLocked
	default:
		return classUnexpected
	}
}

// System is the OS clipboard.
type System struct{}

// NewSystem returns the OS clipboard. It fails when no clipboard backend is
// usable, e.g. no xclip/xsel/wl-clipboard on Linux.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, errors.New("no clipboard utilities available (install xclip, xsel or wl-clipboard)")
	}
	return &System{}, nil
}

func (System) Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", translate(err)
	}
	return text, nil
}

func (System) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return translate(err)
	}
	return nil
}

// translate maps backend errors onto the package taxonomy. The backends only
// report plain error values, so this goes by type first and message second.
func translate(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// xclip/xsel/wl-paste also exit non-zero when the selection is empty
		// or not text. A lost display is not that and must count.
		if backendDown(string(exitErr.Stderr)) {
			return fmt.Errorf("clipboard backend failed: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "openclipboard"), strings.Contains(msg, "access is denied"):
		return fmt.Errorf("%w: %v", ErrLocked, err)
	case strings.Contains(msg, "format"), strings.Contains(msg, "target"):
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "temporarily"):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

// backendDown reports whether stderr of a clipboard tool says it cannot reach
// the display server.
func backendDown(stderr string) bool {
	msg := strings.ToLower(stderr)
	for _, marker := range []string{
		"can't open display",
		"cannot open display",
		"failed to connect to a wayland",
		"connection refused",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Memory is an in-process clipboard for tests of Clipboard consumers.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns a Memory clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}
