package diffutil

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_SingleSubstitution(t *testing.T) {
	c := Compare("Hi Alice", "Hi PERSON_1")

	require.Len(t, c.Lines, 1)
	line := c.Lines[0]
	assert.Equal(t, Changed, line.Kind)
	assert.Equal(t, 1, line.Original)
	assert.Equal(t, 1, line.Modified)
	assert.Equal(t, []diffmatchpatch.Diff{
		{Type: diffmatchpatch.DiffEqual, Text: "Hi "},
		{Type: diffmatchpatch.DiffDelete, Text: "Alice"},
		{Type: diffmatchpatch.DiffInsert, Text: "PERSON_1"},
	}, line.Segments)

	assert.Equal(t, Summary{OriginalLines: 1, ModifiedLines: 1, Changed: 1, Substitutions: 1}, c.Summary)
}

func TestCompare_KeepsWordsWhole(t *testing.T) {
	// A character diff would match the shared "a" and "e".
	c := Compare("Jane", "Anna")
	require.Len(t, c.Lines, 1)
	assert.Equal(t, []diffmatchpatch.Diff{
		{Type: diffmatchpatch.DiffDelete, Text: "Jane"},
		{Type: diffmatchpatch.DiffInsert, Text: "Anna"},
	}, c.Lines[0].Segments)
}

func TestCompare_Identical(t *testing.T) {
	c := Compare("same\ntext\n", "same\ntext\n")
	require.Len(t, c.Lines, 2)
	for _, l := range c.Lines {
		assert.Equal(t, Unchanged, l.Kind)
	}
	assert.Zero(t, c.Summary.Substitutions)
	assert.Equal(t, 2, c.Summary.OriginalLines)
}

func TestCompare_DeletedLine(t *testing.T) {
	c := Compare("a\nb\n", "b\n")
	require.Len(t, c.Lines, 2)

	assert.Equal(t, Deleted, c.Lines[0].Kind)
	assert.Equal(t, 1, c.Lines[0].Original)
	assert.Zero(t, c.Lines[0].Modified)

	assert.Equal(t, Unchanged, c.Lines[1].Kind)
	assert.Equal(t, 2, c.Lines[1].Original)
	assert.Equal(t, 1, c.Lines[1].Modified)
	assert.Equal(t, 1, c.Summary.Deleted)
}

func TestCompare_InsertedLine(t *testing.T) {
	c := Compare("b\n", "b\nc\n")
	require.Len(t, c.Lines, 2)

	assert.Equal(t, Unchanged, c.Lines[0].Kind)
	assert.Equal(t, Inserted, c.Lines[1].Kind)
	assert.Zero(t, c.Lines[1].Original)
	assert.Equal(t, 2, c.Lines[1].Modified)
	assert.Equal(t, 1, c.Summary.Inserted)
}

func TestComparison_Context(t *testing.T) {
	original := "one\ntwo\nAlice\nfour\nfive\n"
	modified := "one\ntwo\nPERSON_1\nfour\nfive\n"
	c := Compare(original, modified)
	require.Len(t, c.Lines, 5)

	only := c.Context(0)
	require.Len(t, only, 1)
	assert.Equal(t, 3, only[0].Original)

	around := c.Context(1)
	require.Len(t, around, 3)
	assert.Equal(t, 2, around[0].Original)
	assert.Equal(t, 4, around[2].Original)

	assert.Len(t, c.Context(-1), 5)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"Hi", ",", "  ", "Alice_1", "\n", "\n", "x"}, tokenize("Hi,  Alice_1\n\nx"))
	assert.Empty(t, tokenize(""))
}

func TestSummaryString(t *testing.T) {
	s := Summary{OriginalLines: 2, ModifiedLines: 2, Changed: 1, Substitutions: 3}
	assert.Contains(t, s.String(), "Substituted spans: 3")
	assert.Contains(t, s.String(), "Changed: 1, inserted: 0, deleted: 0")
}
