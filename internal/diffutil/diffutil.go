// Package diffutil compares clipboard text before and after substitution.
package diffutil

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a line of a comparison.
type Kind int

const (
	Unchanged Kind = iota
	Changed
	Inserted
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Changed:
		return "changed"
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// Line is one line of a comparison with its inline segments.
type Line struct {
	Kind     Kind
	Original int // 1-based line number in the original, 0 if inserted
	Modified int // 1-based line number in the modified text, 0 if deleted
	Segments []diffmatchpatch.Diff
}

// Summary counts the line kinds of a comparison.
type Summary struct {
	OriginalLines int
	ModifiedLines int
	Changed       int
	Inserted      int
	Deleted       int
	// Substitutions is the number of inline replaced spans.
	Substitutions int
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lines: %d original, %d modified\n", s.OriginalLines, s.ModifiedLines)
	fmt.Fprintf(&b, "Changed: %d, inserted: %d, deleted: %d\n", s.Changed, s.Inserted, s.Deleted)
	fmt.Fprintf(&b, "Substituted spans: %d\n", s.Substitutions)
	return b.String()
}

// Comparison is the result of Compare.
type Comparison struct {
	Lines   []Line
	Summary Summary
}

// Compare diffs original against modified at word granularity, which keeps
// replaced names and identifiers in one piece.
func Compare(original, modified string) Comparison {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 5 * time.Second

	diffs := wordDiff(dmp, original, modified)
	lines := splitLines(diffs)

	sum := Summary{
		OriginalLines: lineCount(original),
		ModifiedLines: lineCount(modified),
		Substitutions: substitutions(diffs),
	}
	for _, l := range lines {
		switch l.Kind {
		case Changed:
			sum.Changed++
		case Inserted:
			sum.Inserted++
		case Deleted:
			sum.Deleted++
		}
	}
	return Comparison{Lines: lines, Summary: sum}
}

// Context drops unchanged lines further than n lines from any change.
// Callers detect the gaps from the line numbers.
func (c Comparison) Context(n int) []Line {
	if n < 0 {
		return c.Lines
	}
	keep := make([]bool, len(c.Lines))
	for i, l := range c.Lines {
		if l.Kind == Unchanged {
			continue
		}
		for j := max(0, i-n); j <= min(len(c.Lines)-1, i+n); j++ {
			keep[j] = true
		}
	}
	var out []Line
	for i, l := range c.Lines {
		if keep[i] {
			out = append(out, l)
		}
	}
	return out
}

// wordDiff maps every word and whitespace run onto a rune, diffs the rune
// strings and expands the result back to text.
func wordDiff(dmp *diffmatchpatch.DiffMatchPatch, a, b string) []diffmatchpatch.Diff {
	index := map[string]rune{}
	var vocab []string
	encode := func(s string) string {
		var out []rune
		for _, tok := range tokenize(s) {
			r, ok := index[tok]
			if !ok {
				r = rune(len(vocab) + 1)
				if r >= 0xD800 {
					r += 0x800 // skip surrogates, they do not survive string conversion
				}
				index[tok] = r
				vocab = append(vocab, tok)
			}
			out = append(out, r)
		}
		return string(out)
	}

	ea, eb := encode(a), encode(b)
	diffs := dmp.DiffMain(ea, eb, false)
	for i, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(vocab[decode(r)])
		}
		diffs[i].Text = sb.String()
	}
	return dmp.DiffCleanupMerge(diffs)
}

func decode(r rune) int {
	if r >= 0xD800+0x800 {
		r -= 0x800
	}
	return int(r) - 1
}

// tokenize splits s into runs of word characters, runs of spaces and single
// other characters. Newlines are always their own token.
func tokenize(s string) []string {
	var toks []string
	start := -1
	class := func(r rune) int {
		switch {
		case r == '\n':
			return 0
		case unicode.IsSpace(r):
			return 1
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			return 2
		default:
			return 3
		}
	}
	prev := -1
	for i, r := range s {
		c := class(r)
		if start >= 0 && (c != prev || c == 0 || c == 3) {
			toks = append(toks, s[start:i])
			start = -1
		}
		if start < 0 {
			start = i
		}
		prev = c
	}
	if start >= 0 {
		toks = append(toks, s[start:])
	}
	return toks
}

func splitLines(diffs []diffmatchpatch.Diff) []Line {
	var (
		lines []Line
		segs  []diffmatchpatch.Diff
		orig  = 1
		mod   = 1
	)
	flush := func() {
		if len(segs) == 0 {
			return
		}
		l := classify(segs)
		switch l.Kind {
		case Inserted:
			l.Modified = mod
			mod++
		case Deleted:
			l.Original = orig
			orig++
		default:
			l.Original, l.Modified = orig, mod
			orig++
			mod++
		}
		lines = append(lines, l)
		segs = nil
	}

	for _, d := range diffs {
		text := d.Text
		for text != "" {
			i := strings.IndexByte(text, '\n')
			if i < 0 {
				segs = append(segs, diffmatchpatch.Diff{Type: d.Type, Text: text})
				break
			}
			segs = append(segs, diffmatchpatch.Diff{Type: d.Type, Text: text[:i+1]})
			text = text[i+1:]
			flush()
		}
	}
	flush()
	return lines
}

// classify decides the kind of a line from its segments. A line keeping any
// text of its own is changed, not inserted or deleted.
func classify(segs []diffmatchpatch.Diff) Line {
	var eq, del, ins bool
	for _, s := range segs {
		switch s.Type {
		case diffmatchpatch.DiffEqual:
			eq = eq || strings.TrimSpace(s.Text) != ""
		case diffmatchpatch.DiffDelete:
			del = true
		case diffmatchpatch.DiffInsert:
			ins = true
		}
	}
	l := Line{Segments: segs}
	switch {
	case !del && !ins:
		l.Kind = Unchanged
	case del && !ins && !eq:
		l.Kind = Deleted
	case ins && !del && !eq:
		l.Kind = Inserted
	default:
		l.Kind = Changed
	}
	return l
}

// substitutions counts delete runs directly followed by an insert.
func substitutions(diffs []diffmatchpatch.Diff) int {
	n := 0
	for i := 0; i+1 < len(diffs); i++ {
		if diffs[i].Type == diffmatchpatch.DiffDelete && diffs[i+1].Type == diffmatchpatch.DiffInsert {
			n++
		}
	}
	return n
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
