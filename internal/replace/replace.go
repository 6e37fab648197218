// Package replace implements literal substitution of text pairs in three
// directional modes, and the validation rules a pair list must satisfy
// before it is handed to the engine.
package replace

import "strings"

// Pair is one substitution rule. Original is the left side, Replacement the
// right side.
type Pair struct {
	Original    string
	Replacement string
}

// Blank reports whether either side is empty after trimming whitespace.
// Blank pairs never take part in a substitution.
func (p Pair) Blank() bool {
	return strings.TrimSpace(p.Original) == "" || strings.TrimSpace(p.Replacement) == ""
}

// Direction is the way a pair fired during one substitution pass.
type Direction int

const (
	Forward Direction = iota // original -> replacement
	Reverse                  // replacement -> original
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Applied describes one pair that changed the result.
type Applied struct {
	Pair      Pair
	Direction Direction
	Count     int
}

// From returns the literal that was searched for.
func (a Applied) From() string {
	if a.Direction == Reverse {
		return a.Pair.Replacement
	}
	return a.Pair.Original
}

// To returns the literal that was written.
func (a Applied) To() string {
	if a.Direction == Reverse {
		return a.Pair.Original
	}
	return a.Pair.Replacement
}

// Total sums the replaced occurrences of a report.
func Total(applied []Applied) int {
	n := 0
	for _, a := range applied {
		n += a.Count
	}
	return n
}

// Apply substitutes pairs in content according to mode.
// It assumes pairs passed Validate.
func Apply(content string, mode Mode, pairs []Pair) string {
	out, _ := ApplyReport(content, mode, pairs)
	return out
}

// ApplyReport is Apply that also reports which pairs changed the text.
//
// Presence of a literal is always tested against the unmodified content, so
// a substitution made by an earlier pair can neither trigger nor suppress a
// later one. The replacements themselves accumulate.
func ApplyReport(content string, mode Mode, pairs []Pair) (string, []Applied) {
	if content == "" {
		return content, nil
	}

	result := content
	var applied []Applied

	for _, p := range pairs {
		if p.Blank() {
			continue
		}

		dir, ok := direction(content, mode, p)
		if !ok {
			continue
		}

		from, to := p.Original, p.Replacement
		if dir == Reverse {
			from, to = to, from
		}

		n := strings.Count(result, from)
		if n == 0 {
			continue
		}
		result = strings.ReplaceAll(result, from, to)
		applied = append(applied, Applied{Pair: p, Direction: dir, Count: n})
	}

	return result, applied
}

// direction decides which way p fires for the given input, if at all.
func direction(input string, mode Mode, p Pair) (Direction, bool) {
	switch mode {
	case LeftToRight:
		return Forward, strings.Contains(input, p.Original)
	case RightToLeft:
		return Reverse, strings.Contains(input, p.Replacement)
	default:
		if strings.Contains(input, p.Original) {
			return Forward, true
		}
		if strings.Contains(input, p.Replacement) {
			return Reverse, true
		}
		return Forward, false
	}
}
