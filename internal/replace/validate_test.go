package replace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidList(t *testing.T) {
	r := Validate([]Pair{{" Alice ", "Person1"}, {"Bob", " Person2"}})

	assert.True(t, r.Valid())
	assert.Equal(t, []Pair{{"Alice", "Person1"}, {"Bob", "Person2"}}, r.ValidPairs())
}

func TestValidate_BlankSides(t *testing.T) {
	r := Validate([]Pair{{"Alice", ""}, {"", "Person2"}, {" ", ""}})

	require.Len(t, r.Issues, 3)
	assert.Equal(t, FieldRight, r.Issues[0].Field)
	assert.Equal(t, FieldLeft, r.Issues[1].Field)
	assert.Equal(t, FieldBoth, r.Issues[2].Field)
	for _, is := range r.Issues {
		assert.Equal(t, "Both fields must be filled.", is.Message)
	}
	assert.Empty(t, r.ValidPairs())
}

func TestValidate_DuplicateLeft(t *testing.T) {
	r := Validate([]Pair{{"Alice", "Person1"}, {"Alice", "Person2"}})

	require.Len(t, r.Issues, 2)
	assert.Equal(t, FieldLeft, r.Issues[0].Field)
	assert.Equal(t, "Left value 'Alice' is already used in: Pair 2 (left)", r.Issues[0].Message)
	assert.Equal(t, "Left value 'Alice' is already used in: Pair 1 (left)", r.Issues[1].Message)
}

func TestValidate_CrossSideReuse(t *testing.T) {
	// A literal used as the right side of one pair and the left side of
	// another is ambiguous as a substitution target.
	r := Validate([]Pair{{"Alice", "Bob"}, {"Bob", "Carol"}})

	require.Len(t, r.Issues, 2)
	first, ok := r.IssueFor(0)
	require.True(t, ok)
	assert.Equal(t, FieldRight, first.Field)
	assert.Equal(t, "Right value 'Bob' is already used in: Pair 2 (left)", first.Message)

	second, ok := r.IssueFor(1)
	require.True(t, ok)
	assert.Equal(t, FieldLeft, second.Field)
}

func TestValidate_BothDuplicated(t *testing.T) {
	r := Validate([]Pair{{"a", "b"}, {"b", "a"}})

	require.Len(t, r.Issues, 2)
	assert.Equal(t, FieldBoth, r.Issues[0].Field)
	assert.Equal(t, "Both values are already used elsewhere", r.Issues[0].Message)
}

func TestValidate_SameLiteralWithinPair(t *testing.T) {
	r := Validate([]Pair{{"same", "same"}})
	assert.False(t, r.Valid())
}

func TestValidate_ValidPairsSkipsOnlyBadOnes(t *testing.T) {
	r := Validate([]Pair{{"a", "b"}, {"", "c"}, {"d", "e"}})

	assert.False(t, r.Valid())
	assert.Equal(t, []Pair{{"a", "b"}, {"d", "e"}}, r.ValidPairs())
	assert.Equal(t, "Pair 2: Both fields must be filled.", r.Issues[0].String())
}
