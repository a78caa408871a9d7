package session_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/bastiangx/predict/pkg/host"
	"github.com/bastiangx/predict/pkg/session"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

type stubPredictor struct {
	words   []string
	symbols []dictionary.Symbol
	// returned for every word query when set
	fixed []string
	err   error
}

func (p *stubPredictor) Words(prefix string) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.fixed != nil {
		return p.fixed, nil
	}
	var out []string
	for _, w := range p.words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (p *stubPredictor) Symbols(prefix string) ([]dictionary.Symbol, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []dictionary.Symbol
	for _, s := range p.symbols {
		if strings.HasPrefix(s.Shortcode, prefix) {
			out = append(out, s)
		}
	}
	return out, nil
}

// labelCounter counts labels written, ignoring the clears on exit.
type labelCounter struct {
	*host.Surface
	labels int
}

func (h *labelCounter) SetRowLabel(row int, label string) {
	if label != "" {
		h.labels++
	}
	h.Surface.SetRowLabel(row, label)
}

var testPredictor = &stubPredictor{
	words: []string{"car", "case", "cat", "catalog", "dog"},
	symbols: []dictionary.Symbol{
		{Shortcode: "sad", Text: "\U0001F622"},
		{Shortcode: "scream", Text: "\U0001F631"},
		{Shortcode: "see_no_evil", Text: "\U0001F648"},
		{Shortcode: "smile", Text: "\U0001F604"},
		{Shortcode: "smiley", Text: "\U0001F603"},
		{Shortcode: "smirk", Text: "\U0001F60F"},
		{Shortcode: "sob", Text: "\U0001F62D"},
		{Shortcode: "technologist", Text: "\U0001F9D1‍\U0001F4BB"},
	},
}

func newSession(t *testing.T, pred *stubPredictor, pageSize int) (*session.Session, *labelCounter) {
	t.Helper()
	h := &labelCounter{Surface: host.NewSurface(pageSize)}
	return session.New(pred, h), h
}

func typeText(s *session.Session, text string) {
	for _, r := range text {
		s.HandleKeyEvent(uint32(r), 0, 0)
	}
}

func press(s *session.Session, keyval uint32) bool {
	return s.HandleKeyEvent(keyval, 0, 0)
}

func ctrl(s *session.Session, keyval uint32) bool {
	return s.HandleKeyEvent(keyval, 0, session.ControlMask)
}

func kinds(ops []host.Op) []host.OpKind {
	out := make([]host.OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func TestWordLookupCommitsSuffix(t *testing.T) {
	s, h := newSession(t, testPredictor, 2)

	typeText(s, "ca")
	assert.Equal(t, "ca", s.WordBuffer())
	assert.Equal(t, []host.Op{
		{Kind: host.OpCommit, Text: "c"},
		{Kind: host.OpCommit, Text: "a"},
	}, h.Drain())

	require.True(t, ctrl(s, 'w'))
	assert.Equal(t, session.WordLookup, s.Mode())
	assert.Equal(t, []host.Op{
		{Kind: host.OpUpdateList, Items: []string{"car", "case", "cat", "catalog"}},
		{Kind: host.OpShowList},
	}, h.Drain())

	// "cat" sits on the second page
	require.True(t, press(s, session.KeyDown))
	require.True(t, press(s, session.KeyDown))
	require.True(t, press(s, session.KeyReturn))

	ops := h.Drain()
	require.NotEmpty(t, ops)
	assert.Equal(t, host.Op{Kind: host.OpCommit, Text: "t"}, ops[0])
	assert.Contains(t, kinds(ops), host.OpHideList)
	assert.Equal(t, "cat", h.Committed())
	assert.Equal(t, session.Normal, s.Mode())
	assert.Empty(t, s.WordBuffer())
}

func TestWordLookupRequeriesAsYouType(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	typeText(s, "c")
	require.True(t, ctrl(s, 'w'))
	h.Drain()

	typeText(s, "at")
	assert.Equal(t, "cat", s.WordBuffer())
	assert.Equal(t, []host.Op{
		{Kind: host.OpCommit, Text: "a"},
		{Kind: host.OpUpdateList, Items: []string{"car", "case", "cat", "catalog"}},
		{Kind: host.OpCommit, Text: "t"},
		{Kind: host.OpUpdateList, Items: []string{"cat", "catalog"}},
	}, h.Drain())

	// space accepts the selection, then separates words
	require.True(t, press(s, session.KeySpace))
	assert.Equal(t, "cat ", h.Committed())
	assert.Equal(t, session.Normal, s.Mode())
	assert.Empty(t, s.WordBuffer())
}

func TestWordLookupNeedsText(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	assert.False(t, ctrl(s, 'w'))
	assert.Equal(t, session.Normal, s.Mode())
	assert.Empty(t, h.Drain())
}

func TestWordLookupFailureStaysNormal(t *testing.T) {
	pred := &stubPredictor{err: errors.New("boom")}
	s, h := newSession(t, pred, 5)
	typeText(s, "ca")
	h.Drain()

	assert.False(t, ctrl(s, 'w'))
	assert.Equal(t, session.Normal, s.Mode())
	assert.Equal(t, []host.Op{{Kind: host.OpHideList}}, h.Drain())
}

func TestBackspaceToEmptyLeavesWordLookup(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	typeText(s, "c")
	require.True(t, ctrl(s, 'w'))
	h.Drain()

	assert.False(t, press(s, session.KeyBackSpace), "the echoed character is left for the host to delete")
	assert.Equal(t, session.Normal, s.Mode())
	assert.Empty(t, s.WordBuffer())
	assert.False(t, h.View().ListVisible)
	assert.Contains(t, kinds(h.Drain()), host.OpHideList)
}

func TestBackspaceInWordLookupRequeries(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	typeText(s, "cat")
	require.True(t, ctrl(s, 'w'))
	h.Drain()

	assert.False(t, press(s, session.KeyBackSpace))
	assert.Equal(t, "ca", s.WordBuffer())
	assert.Equal(t, session.WordLookup, s.Mode())
	assert.Equal(t, []host.Op{
		{Kind: host.OpUpdateList, Items: []string{"car", "case", "cat", "catalog"}},
	}, h.Drain())
}

func TestSymbolInputCommitsLabel(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	typeText(s, "hi ")
	committed := h.Committed()
	h.Drain()

	require.True(t, ctrl(s, 'e'))
	assert.Equal(t, session.SymbolInput, s.Mode())
	assert.Equal(t, []host.Op{
		{Kind: host.OpUpdateList, Items: []string{}},
		{Kind: host.OpShowList},
		{Kind: host.OpShowComposing, Text: ""},
	}, h.Drain())

	typeText(s, "smi")
	assert.Equal(t, "smi", s.SymbolBuffer())
	assert.NotContains(t, kinds(h.Drain()), host.OpCommit, "shortcode characters are never echoed")
	assert.Equal(t, "smi", h.View().Composing)

	rows := h.View().Rows
	require.Len(t, rows, 3)
	assert.Equal(t, host.Row{Text: "smile", Label: "\U0001F604"}, rows[0])

	require.True(t, press(s, session.KeyDown))
	require.True(t, press(s, session.KeyReturn))
	assert.Equal(t, committed+"\U0001F603", h.Committed())
	assert.Equal(t, session.Normal, s.Mode())
	assert.Empty(t, s.SymbolBuffer())
	assert.Empty(t, s.WordBuffer())
	assert.False(t, h.View().ComposingVisible)
}

func TestSymbolInputSpaceCommitsThenSpaces(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	require.True(t, ctrl(s, 'e'))
	typeText(s, "tech")
	require.True(t, press(s, session.KeySpace))
	assert.Equal(t, "\U0001F9D1‍\U0001F4BB ", h.Committed())
	assert.Equal(t, session.Normal, s.Mode())
}

func TestLabelsOnlyRecomputedOnPageChange(t *testing.T) {
	s, h := newSession(t, testPredictor, 3)
	require.True(t, ctrl(s, 'e'))

	typeText(s, "s")
	assert.Equal(t, 3, h.labels, "first page labeled with the query")

	steps := []struct {
		key      uint32
		page     int
		expected int
	}{
		{session.KeyDown, 0, 0},
		{session.KeyDown, 0, 0},
		{session.KeyDown, 1, 3},
		{session.KeyUp, 0, 3},
		{session.KeyUp, 0, 0},
		{session.KeyPageDown, 1, 3},
		{session.KeyPageDown, 2, 1},
		{session.KeyPageDown, 2, 0},
		{session.KeyPageUp, 1, 3},
	}
	for i, step := range steps {
		h.labels = 0
		require.True(t, press(s, step.key))
		assert.Equal(t, step.page, h.PageIndex(), "step %d", i)
		assert.Equal(t, step.expected, h.labels, "step %d", i)
	}

	// first row of page 1 is smile
	require.True(t, press(s, session.KeyReturn))
	assert.Equal(t, "\U0001F604", h.Committed())
}

func TestRequeryInvalidatesLabels(t *testing.T) {
	s, h := newSession(t, testPredictor, 3)
	require.True(t, ctrl(s, 'e'))
	typeText(s, "s")
	h.labels = 0

	typeText(s, "m")
	assert.Equal(t, 3, h.labels)
	rows := h.View().Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "\U0001F604", rows[0].Label)
	assert.Equal(t, "\U0001F60F", rows[2].Label)
}

func TestSymbolBackspace(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	require.True(t, ctrl(s, 'e'))

	assert.True(t, press(s, session.KeyBackSpace), "empty query swallows backspace")
	assert.Equal(t, session.SymbolInput, s.Mode())

	typeText(s, "so")
	require.Len(t, h.View().Rows, 1)

	require.True(t, press(s, session.KeyBackSpace))
	assert.Equal(t, "s", s.SymbolBuffer())
	assert.Len(t, h.View().Rows, 5)

	require.True(t, press(s, session.KeyBackSpace))
	assert.Empty(t, s.SymbolBuffer())
	assert.Empty(t, h.View().Rows)
	assert.Equal(t, session.SymbolInput, s.Mode())
}

func TestEscapeCancelsSymbolInput(t *testing.T) {
	s, h := newSession(t, testPredictor, 3)
	assert.False(t, press(s, session.KeyEscape))

	require.True(t, ctrl(s, 'e'))
	typeText(s, "smi")
	h.Drain()

	require.True(t, press(s, session.KeyEscape))
	assert.Equal(t, session.Normal, s.Mode())
	assert.Empty(t, s.SymbolBuffer())

	ops := h.Drain()
	assert.Equal(t, []host.OpKind{
		host.OpHideList, host.OpHideComposing,
		host.OpLabel, host.OpLabel, host.OpLabel,
	}, kinds(ops))
	for _, op := range ops[2:] {
		assert.Empty(t, op.Text)
	}
	assert.Empty(t, h.Committed())
	assert.False(t, h.View().ListVisible)
}

func TestModeChordsOnlyFromNormal(t *testing.T) {
	s, _ := newSession(t, testPredictor, 5)
	typeText(s, "ca")
	require.True(t, ctrl(s, 'w'))
	assert.False(t, ctrl(s, 'e'))
	assert.Equal(t, session.WordLookup, s.Mode())

	s.Reset()
	require.True(t, ctrl(s, 'e'))
	assert.False(t, ctrl(s, 'w'))
	assert.Equal(t, session.SymbolInput, s.Mode())
}

func TestRejectedModifiers(t *testing.T) {
	testCases := []struct {
		description string
		keyval      uint32
		mods        session.Modifier
	}{
		{"alt", 'a', session.Mod1Mask},
		{"super", 'a', session.Mod4Mask},
		{"release", 'a', session.ReleaseMask},
		{"ctrl alt", 'e', session.ControlMask | session.Mod1Mask},
		{"unbound ctrl", 'x', session.ControlMask},
		{"caps lock", 'a', session.LockMask},
		{"unknown key", 0xffbe, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			s, h := newSession(t, testPredictor, 5)
			typeText(s, "ca")
			h.Drain()

			assert.False(t, s.HandleKeyEvent(tc.keyval, 0, tc.mods))
			assert.Equal(t, session.Normal, s.Mode())
			assert.Equal(t, "ca", s.WordBuffer())
			assert.Empty(t, h.Drain())
		})
	}
}

func TestShiftIsAllowed(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	assert.True(t, s.HandleKeyEvent('C', 0, session.ShiftMask))
	assert.Equal(t, "C", h.Committed())
	assert.True(t, s.HandleKeyEvent('E', 0, session.ControlMask|session.ShiftMask))
	assert.Equal(t, session.SymbolInput, s.Mode())
}

func TestNormalModePassThrough(t *testing.T) {
	s, h := newSession(t, testPredictor, 5)
	typeText(s, "ab")
	h.Drain()

	assert.False(t, press(s, session.KeyUp))
	assert.False(t, press(s, session.KeyPageDown))
	assert.False(t, press(s, session.KeyBackSpace))
	assert.Equal(t, "a", s.WordBuffer())
	assert.False(t, press(s, session.KeyReturn))
	assert.Empty(t, s.WordBuffer())
	assert.Empty(t, h.Drain())
}

func TestCommitFailureStillResets(t *testing.T) {
	pred := &stubPredictor{fixed: []string{"dog"}}
	s, h := newSession(t, pred, 5)
	typeText(s, "ca")
	require.True(t, ctrl(s, 'w'))

	require.True(t, press(s, session.KeyReturn))
	assert.Equal(t, "ca", h.Committed())
	assert.Equal(t, session.Normal, s.Mode())
	assert.Empty(t, s.WordBuffer())

	// nothing to commit in an empty list
	require.True(t, ctrl(s, 'e'))
	require.True(t, press(s, session.KeyReturn))
	assert.Equal(t, "ca", h.Committed())
	assert.Equal(t, session.Normal, s.Mode())
}

func TestSymbolLookupErrorKeepsState(t *testing.T) {
	pred := &stubPredictor{symbols: testPredictor.symbols}
	s, h := newSession(t, pred, 5)
	require.True(t, ctrl(s, 'e'))
	typeText(s, "sm")
	require.Len(t, h.View().Rows, 3)

	pred.err = errors.New("boom")
	assert.True(t, press(s, 'i'))
	assert.Equal(t, session.SymbolInput, s.Mode())
	assert.Equal(t, "smi", s.SymbolBuffer())
	assert.Len(t, h.View().Rows, 3)
}

func TestCustomBindings(t *testing.T) {
	h := host.NewSurface(5)
	s := session.New(testPredictor, h, session.WithBindings(session.Bindings{SymbolMode: ';'}))
	assert.False(t, ctrl(s, 'e'))
	assert.True(t, ctrl(s, ';'))
	assert.Equal(t, session.SymbolInput, s.Mode())
}
