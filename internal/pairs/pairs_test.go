package pairs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParse(t *testing.T) {
	input := `
# people
Alice = PERSON_1
  Bob=PERSON_2  
url = https://example.com/?a=b
dangling

 = lonely
`
	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []replace.Pair{
		{Original: "Alice", Replacement: "PERSON_1"},
		{Original: "Bob", Replacement: "PERSON_2"},
		{Original: "url", Replacement: "https://example.com/?a=b"},
		{Original: "dangling", Replacement: ""},
		{Original: "", Replacement: "lonely"},
	}, got)
}

func TestParse_DanglingLineIsFlagged(t *testing.T) {
	got, err := Parse(strings.NewReader("dangling\n"))
	require.NoError(t, err)

	report := replace.Validate(got)
	assert.False(t, report.Valid())
	assert.Empty(t, report.ValidPairs())
}

func TestFormat_SkipsEmptyPairs(t *testing.T) {
	var buf bytes.Buffer
	err := Format(&buf, []replace.Pair{
		{Original: "Alice", Replacement: "PERSON_1"},
		{Original: " ", Replacement: ""},
		{Original: "half", Replacement: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice = PERSON_1\nhalf = \n", buf.String())
}

func TestLoad_MissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveLoadAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "pairs.txt")
	list := []replace.Pair{{Original: "Alice", Replacement: "PERSON_1"}}

	require.NoError(t, Save(path, list))
	require.NoError(t, Append(path, replace.Pair{Original: "Bob", Replacement: "PERSON_2"}))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []replace.Pair{
		{Original: "Alice", Replacement: "PERSON_1"},
		{Original: "Bob", Replacement: "PERSON_2"},
	}, got)
}

func TestAppend_KeepsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.txt")
	require.NoError(t, os.WriteFile(path, []byte("# people\nAlice = PERSON_1"), 0o600))

	require.NoError(t, Append(path, replace.Pair{Original: "Bob", Replacement: "PERSON_2"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# people\nAlice = PERSON_1\nBob = PERSON_2\n", string(data))
}

func TestResolve(t *testing.T) {
	list := []replace.Pair{
		{Original: "{{ employer }}", Replacement: "COMPANY"},
		{Original: "{{name}} Smith", Replacement: "PERSON_{{unknown}}"},
	}
	got, missing := Resolve(list, map[string]string{"employer": "Acme Corp", "name": "Jane"})

	assert.Equal(t, []replace.Pair{
		{Original: "Acme Corp", Replacement: "COMPANY"},
		{Original: "Jane Smith", Replacement: "PERSON_{{unknown}}"},
	}, got)
	assert.Equal(t, []string{"unknown"}, missing)
	assert.Equal(t, "{{ employer }}", list[0].Original, "input must not be modified")
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.txt")
	require.NoError(t, Save(path, nil))

	changed := make(chan struct{}, 4)
	w := NewWatcher(path, 20*time.Millisecond, func() { changed <- struct{}{} }, nil)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("Alice = PERSON_1\n"), 0o600))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.txt")

	changed := make(chan struct{}, 4)
	w := NewWatcher(path, 20*time.Millisecond, func() { changed <- struct{}{} }, nil)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))

	select {
	case <-changed:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
	w.Stop()
	w.Stop()
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("employer"))
	assert.True(t, ValidName("api_key.v2-x"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("two words"))
	assert.False(t, ValidName("{{x}}"))
}
