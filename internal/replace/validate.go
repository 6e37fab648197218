package replace

import (
	"fmt"
	"strings"
)

// Field identifies which side of a pair an issue refers to.
type Field int

const (
	FieldLeft Field = iota + 1
	FieldRight
	FieldBoth
)

// Issue is a validation problem of a single pair.
type Issue struct {
	Index   int // zero based position in the list
	Field   Field
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("Pair %d: %s", i.Index+1, i.Message)
}

// Report is the result of Validate.
type Report struct {
	Pairs  []Pair
	Issues []Issue
}

// Valid reports whether no pair has an issue.
func (r Report) Valid() bool {
	return len(r.Issues) == 0
}

// IssueFor returns the issue of pair i, if any.
func (r Report) IssueFor(i int) (Issue, bool) {
	for _, is := range r.Issues {
		if is.Index == i {
			return is, true
		}
	}
	return Issue{}, false
}

// ValidPairs returns the trimmed pairs without an issue, in order.
func (r Report) ValidPairs() []Pair {
	out := make([]Pair, 0, len(r.Pairs))
	for i, p := range r.Pairs {
		if _, bad := r.IssueFor(i); bad {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Validate checks a pair list. Both sides must be non-blank and no literal
// may appear more than once across the whole list, on either side.
// Sides are compared after trimming surrounding whitespace.
func Validate(pairs []Pair) Report {
	trimmed := make([]Pair, len(pairs))
	locations := make(map[string][]string)

	for i, p := range pairs {
		t := Pair{Original: strings.TrimSpace(p.Original), Replacement: strings.TrimSpace(p.Replacement)}
		trimmed[i] = t
		if t.Original != "" {
			locations[t.Original] = append(locations[t.Original], location(i, FieldLeft))
		}
		if t.Replacement != "" {
			locations[t.Replacement] = append(locations[t.Replacement], location(i, FieldRight))
		}
	}

	report := Report{Pairs: trimmed}
	for i, p := range trimmed {
		if p.Blank() {
			field := FieldBoth
			switch {
			case p.Original != "" && p.Replacement == "":
				field = FieldRight
			case p.Original == "" && p.Replacement != "":
				field = FieldLeft
			}
			report.Issues = append(report.Issues, Issue{Index: i, Field: field, Message: "Both fields must be filled."})
			continue
		}

		leftDup := len(locations[p.Original]) > 1
		rightDup := len(locations[p.Replacement]) > 1

		switch {
		case leftDup && rightDup:
			report.Issues = append(report.Issues, Issue{Index: i, Field: FieldBoth,
				Message: "Both values are already used elsewhere"})
		case leftDup:
			report.Issues = append(report.Issues, Issue{Index: i, Field: FieldLeft,
				Message: fmt.Sprintf("Left value '%s' is already used in: %s",
					p.Original, others(locations[p.Original], location(i, FieldLeft)))})
		case rightDup:
			report.Issues = append(report.Issues, Issue{Index: i, Field: FieldRight,
				Message: fmt.Sprintf("Right value '%s' is already used in: %s",
					p.Replacement, others(locations[p.Replacement], location(i, FieldRight)))})
		}
	}

	return report
}

func location(i int, f Field) string {
	side := "left"
	if f == FieldRight {
		side = "right"
	}
	return fmt.Sprintf("Pair %d (%s)", i+1, side)
}

func others(all []string, self string) string {
	rest := make([]string, 0, len(all))
	for _, l := range all {
		if l != self {
			rest = append(rest, l)
		}
	}
	return strings.Join(rest, ", ")
}
