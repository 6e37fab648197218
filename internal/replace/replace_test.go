package replace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		mode  Mode
		input string
		want  string
	}{
		{
			name:  "bidirectional names",
			pairs: []Pair{{"Alice", "Person1"}, {"Bob", "Person2"}},
			mode:  Bidirectional,
			input: "Alice met Bob",
			want:  "Person1 met Person2",
		},
		{
			name:  "left to right leaves replacement tokens",
			pairs: []Pair{{"foo", "bar"}},
			mode:  LeftToRight,
			input: "bar foo bar",
			want:  "bar bar bar",
		},
		{
			name:  "right to left",
			pairs: []Pair{{"X", "Y"}},
			mode:  RightToLeft,
			input: "Y and X",
			want:  "X and X",
		},
		{
			name:  "bidirectional reverses when only replacement present",
			pairs: []Pair{{"Alice", "Person1"}},
			mode:  Bidirectional,
			input: "Person1 says hi, Person1",
			want:  "Alice says hi, Alice",
		},
		{
			name:  "bidirectional prefers forward when both present",
			pairs: []Pair{{"Alice", "Person1"}},
			mode:  Bidirectional,
			input: "Alice and Person1",
			want:  "Person1 and Person1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.input, tt.mode, tt.pairs))
		})
	}
}

func TestApply_NoMatchIsIdentity(t *testing.T) {
	pairs := []Pair{{"alpha", "beta"}, {"gamma", "delta"}}
	inputs := []string{"", "unchanged text", "ALPHA Gamma", "  \n\t"}

	for _, mode := range Modes() {
		for _, in := range inputs {
			assert.Equal(t, in, Apply(in, mode, pairs), "mode=%s input=%q", mode, in)
			assert.Equal(t, in, Apply(in, mode, nil), "mode=%s input=%q", mode, in)
		}
	}
}

func TestApply_RightToLeftMirrorsLeftToRight(t *testing.T) {
	pairs := []Pair{{"cat", "dog"}, {"red", "blue"}}
	swapped := []Pair{{"dog", "cat"}, {"blue", "red"}}
	input := "a red cat and a blue dog"

	assert.Equal(t, Apply(input, LeftToRight, pairs), Apply(input, RightToLeft, swapped))
	assert.Equal(t, Apply(input, RightToLeft, pairs), Apply(input, LeftToRight, swapped))
}

func TestApply_BlankPairsAreInert(t *testing.T) {
	pairs := []Pair{{"", "x"}, {"a", "   "}, {" ", " "}}
	for _, mode := range Modes() {
		assert.Equal(t, "a b c", Apply("a b c", mode, pairs))
	}
}

func TestApply_DetectionUsesOriginalInput(t *testing.T) {
	// The first pair introduces "B" into the result; the second pair must not
	// fire because "B" was absent from the input.
	pairs := []Pair{{"A", "B"}, {"B", "C"}}
	assert.Equal(t, "B", Apply("A", LeftToRight, pairs))

	// And an earlier pair removing a literal must not stop a later pair whose
	// literal was in the input.
	pairs = []Pair{{"ab", "zz"}, {"b", "y"}}
	assert.Equal(t, "zz y", Apply("ab b", LeftToRight, pairs))
}

func TestApply_BidirectionalFiresOneDirection(t *testing.T) {
	pairs := []Pair{{"on", "off"}}
	// Both present: only the forward direction fires, so the pre-existing
	// "off" stays and "on" becomes "off".
	assert.Equal(t, "off off", Apply("on off", Bidirectional, pairs))
}

func TestApply_NotIdempotent(t *testing.T) {
	pairs := []Pair{{"Alice", "Person1"}}
	once := Apply("Alice", Bidirectional, pairs)
	twice := Apply(once, Bidirectional, pairs)

	require.Equal(t, "Person1", once)
	// Reapplying flips the value back; this is expected, not a bug.
	assert.Equal(t, "Alice", twice)
	assert.NotEqual(t, once, twice)
}

func TestApply_DoesNotMutatePairs(t *testing.T) {
	pairs := []Pair{{"a", "b"}}
	_ = Apply("aaa", LeftToRight, pairs)
	assert.Equal(t, []Pair{{"a", "b"}}, pairs)
}

func TestApplyReport(t *testing.T) {
	pairs := []Pair{{"Alice", "Person1"}, {"Bob", "Person2"}, {"Eve", "Person3"}}
	out, applied := ApplyReport("Alice, Alice and Person2", Bidirectional, pairs)

	assert.Equal(t, "Person1, Person1 and Bob", out)
	require.Len(t, applied, 2)
	assert.Equal(t, Forward, applied[0].Direction)
	assert.Equal(t, 2, applied[0].Count)
	assert.Equal(t, "Alice", applied[0].From())
	assert.Equal(t, Reverse, applied[1].Direction)
	assert.Equal(t, "Person2", applied[1].From())
	assert.Equal(t, "Bob", applied[1].To())
	assert.Equal(t, 3, Total(applied))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":              Bidirectional,
		"bidirectional": Bidirectional,
		"LTR":           LeftToRight,
		"left-to-right": LeftToRight,
		" rtl ":         RightToLeft,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("sideways")
	assert.Error(t, err)

	for _, m := range Modes() {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestMode_Next(t *testing.T) {
	assert.Equal(t, RightToLeft, LeftToRight.Next())
	assert.Equal(t, Bidirectional, RightToLeft.Next())
	assert.Equal(t, LeftToRight, Bidirectional.Next())
}
