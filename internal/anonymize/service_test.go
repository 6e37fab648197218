package anonymize

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/TanaroSch/clipboard-anonymizer/internal/clipboard"
	"github.com/TanaroSch/clipboard-anonymizer/internal/config"
	"github.com/TanaroSch/clipboard-anonymizer/internal/leaktest"
	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, leaktest.Options()...)
}

type hookRecorder struct {
	mu    sync.Mutex
	calls []bool
}

func (h *hookRecorder) SetProcessing(active bool) {
	h.mu.Lock()
	h.calls = append(h.calls, active)
	h.mu.Unlock()
}

func (h *hookRecorder) Calls() []bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]bool(nil), h.calls...)
}

type notifierRecorder struct {
	mu       sync.Mutex
	detected []string
	modified []string
	applied  [][]replace.Applied
	failures []error
}

func (n *notifierRecorder) ContentDetected(content string) {
	n.mu.Lock()
	n.detected = append(n.detected, content)
	n.mu.Unlock()
}

func (n *notifierRecorder) ContentModified(_, modified string, applied []replace.Applied) {
	n.mu.Lock()
	n.modified = append(n.modified, modified)
	n.applied = append(n.applied, applied)
	n.mu.Unlock()
}

func (n *notifierRecorder) WriteFailed(err error) {
	n.mu.Lock()
	n.failures = append(n.failures, err)
	n.mu.Unlock()
}

type failingClipboard struct{ err error }

func (f failingClipboard) Read() (string, error) { return "", f.err }
func (f failingClipboard) Write(string) error    { return f.err }

type panickingClipboard struct{}

func (panickingClipboard) Read() (string, error) { return "", nil }
func (panickingClipboard) Write(string) error    { panic("backend exploded") }

// gatedClipboard blocks every Write until the test releases it.
type gatedClipboard struct {
	entered chan string
	release chan struct{}
}

func newGatedClipboard() *gatedClipboard {
	return &gatedClipboard{entered: make(chan string), release: make(chan struct{})}
}

func (g *gatedClipboard) Read() (string, error) { return "", nil }

func (g *gatedClipboard) Write(text string) error {
	g.entered <- text
	<-g.release
	return nil
}

var alice = []replace.Pair{{Original: "Alice", Replacement: "PERSON_1"}}

func newTestService(clip clipboard.Clipboard, n Notifier) (*Service, *hookRecorder) {
	s := NewService(clip, replace.Bidirectional, config.WriteBackConfig{}, n, nil)
	h := &hookRecorder{}
	s.SetHook(h)
	s.SetPairs(alice)
	return s, h
}

func TestService_WritesSubstitutedText(t *testing.T) {
	clip := clipboard.NewMemory("")
	n := &notifierRecorder{}
	s, h := newTestService(clip, n)

	s.HandleChange("Hi Alice")
	s.Wait()

	got, err := clip.Read()
	require.NoError(t, err)
	assert.Equal(t, "Hi PERSON_1", got)
	assert.Equal(t, []bool{true, false}, h.Calls())
	assert.Equal(t, []string{"Hi Alice"}, n.detected)
	assert.Equal(t, []string{"Hi PERSON_1"}, n.modified)
	require.Len(t, n.applied, 1)
	assert.Equal(t, 1, replace.Total(n.applied[0]))
	assert.Equal(t, "Hi PERSON_1", s.LastProduced())
}

func TestService_SuppressesOwnWrite(t *testing.T) {
	clip := clipboard.NewMemory("")
	n := &notifierRecorder{}
	s, h := newTestService(clip, n)

	s.HandleChange("Hi Alice")
	s.Wait()

	// The monitor then observes our own write.
	s.HandleChange("Hi PERSON_1")
	s.Wait()

	assert.Equal(t, []bool{true, false}, h.Calls())
	assert.Len(t, n.modified, 1)
	got, _ := clip.Read()
	assert.Equal(t, "Hi PERSON_1", got)
}

func TestService_NoWriteWhenUnchanged(t *testing.T) {
	clip := clipboard.NewMemory("untouched")
	n := &notifierRecorder{}
	s, h := newTestService(clip, n)

	s.HandleChange("nothing to replace")
	s.Wait()

	assert.Empty(t, h.Calls())
	assert.Empty(t, n.modified)
	got, _ := clip.Read()
	assert.Equal(t, "untouched", got)
	assert.Equal(t, "nothing to replace", s.LastProduced())
}

func TestService_Paused(t *testing.T) {
	clip := clipboard.NewMemory("")
	n := &notifierRecorder{}
	s, h := newTestService(clip, n)

	s.SetPaused(true)
	assert.True(t, s.Paused())
	s.HandleChange("Hi Alice")
	s.Wait()

	assert.Empty(t, h.Calls())
	assert.Equal(t, []string{"Hi Alice"}, n.detected)
	got, _ := clip.Read()
	assert.Empty(t, got)

	s.SetPaused(false)
	s.HandleChange("Hi Alice")
	s.Wait()
	got, _ = clip.Read()
	assert.Equal(t, "Hi PERSON_1", got)
}

func TestService_WriteFailureClearsProcessing(t *testing.T) {
	boom := errors.New("write refused")
	n := &notifierRecorder{}
	s, h := newTestService(failingClipboard{err: boom}, n)

	s.HandleChange("Hi Alice")
	s.Wait()

	assert.Equal(t, []bool{true, false}, h.Calls())
	require.Len(t, n.failures, 1)
	assert.ErrorIs(t, n.failures[0], boom)
	assert.Empty(t, n.modified)
}

func TestService_PanicInWriteClearsProcessing(t *testing.T) {
	s, h := newTestService(panickingClipboard{}, nil)

	s.HandleChange("Hi Alice")
	s.Wait()

	assert.Equal(t, []bool{true, false}, h.Calls())
}

func TestService_OverlappingWriteBacksKeepProcessing(t *testing.T) {
	clip := newGatedClipboard()
	n := &notifierRecorder{}
	s, h := newTestService(clip, n)

	s.HandleChange("Hi Alice")
	<-clip.entered
	s.HandleChange("Alice again")
	<-clip.entered

	clip.release <- struct{}{}
	assert.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.modified) == 1
	}, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool {
		s.writesMu.Lock()
		defer s.writesMu.Unlock()
		return s.writes == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, []bool{true}, h.Calls(), "processing must stay set while a write-back is pending")

	clip.release <- struct{}{}
	s.Wait()
	assert.Equal(t, []bool{true, false}, h.Calls())
}

func TestService_ModeChangesDirection(t *testing.T) {
	clip := clipboard.NewMemory("")
	s, _ := newTestService(clip, nil)
	s.SetMode(replace.RightToLeft)
	assert.Equal(t, replace.RightToLeft, s.Mode())

	s.HandleChange("Alice met PERSON_1")
	s.Wait()

	got, _ := clip.Read()
	assert.Equal(t, "Alice met Alice", got)
}

func TestService_SetPairsCopies(t *testing.T) {
	s, _ := newTestService(clipboard.NewMemory(""), nil)
	list := []replace.Pair{{Original: "a", Replacement: "b"}}
	s.SetPairs(list)
	list[0].Original = "changed"

	assert.Equal(t, "a", s.Pairs()[0].Original)
}

func TestService_WithoutHook(t *testing.T) {
	clip := clipboard.NewMemory("")
	s := NewService(clip, replace.LeftToRight, config.WriteBackConfig{}, nil, nil)
	s.SetPairs(alice)

	s.HandleChange("Alice")
	s.Wait()

	got, _ := clip.Read()
	assert.Equal(t, "PERSON_1", got)
}
