package replace

import (
	"fmt"
	"strings"
)

// Mode selects which side of a pair is treated as the search target.
type Mode int

const (
	// Bidirectional replaces original with replacement when the original is
	// present, otherwise replacement with original.
	Bidirectional Mode = iota
	// LeftToRight only replaces original with replacement.
	LeftToRight
	// RightToLeft only replaces replacement with original.
	RightToLeft
)

// DefaultMode is the mode used when nothing was selected.
const DefaultMode = Bidirectional

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bidirectional", "bidi", "both":
		return Bidirectional, nil
	case "left-to-right", "ltr", "forward":
		return LeftToRight, nil
	case "right-to-left", "rtl", "reverse":
		return RightToLeft, nil
	default:
		return DefaultMode, fmt.Errorf("unknown replacement mode %q", s)
	}
}

// String returns the canonical config value of the mode.
func (m Mode) String() string {
	switch m {
	case LeftToRight:
		return "left-to-right"
	case RightToLeft:
		return "right-to-left"
	case Bidirectional:
		return "bidirectional"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Description is the human readable label shown in menus and notifications.
func (m Mode) Description() string {
	switch m {
	case LeftToRight:
		return "Left → Right only"
	case RightToLeft:
		return "Right → Left only"
	case Bidirectional:
		return "Bidirectional"
	default:
		return "Unknown"
	}
}

// Next cycles through the modes in menu order.
func (m Mode) Next() Mode {
	switch m {
	case LeftToRight:
		return RightToLeft
	case RightToLeft:
		return Bidirectional
	default:
		return LeftToRight
	}
}

// Modes lists all modes in menu order.
func Modes() []Mode {
	return []Mode{LeftToRight, RightToLeft, Bidirectional}
}
