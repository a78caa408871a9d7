package host

import (
	"testing"

	"github.com/bastiangx/predict/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ session.Host = (*Surface)(nil)

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestLookupTableCursor(t *testing.T) {
	tbl := NewLookupTable(3, false)
	assert.False(t, tbl.CursorDown(), "empty table has nowhere to go")

	tbl.Replace(items(7))
	assert.False(t, tbl.CursorUp())
	assert.Equal(t, 0, tbl.Cursor())

	for i := 0; i < 3; i++ {
		require.True(t, tbl.CursorDown())
	}
	assert.Equal(t, 3, tbl.Cursor())
	assert.Equal(t, 1, tbl.PageIndex())
	assert.Equal(t, 0, tbl.CursorInPage())
	assert.Equal(t, []string{"d", "e", "f"}, tbl.Page())

	for tbl.CursorDown() {
	}
	assert.Equal(t, 6, tbl.Cursor())
	assert.Equal(t, []string{"g"}, tbl.Page())
}

func TestLookupTablePaging(t *testing.T) {
	testCases := []struct {
		description string
		round       bool
		moves       []func(*LookupTable) bool
		expected    int
	}{
		{"page down keeps row", false, []func(*LookupTable) bool{(*LookupTable).CursorDown, (*LookupTable).PageDown}, 4},
		{"page down clamps to last", false, []func(*LookupTable) bool{(*LookupTable).CursorDown, (*LookupTable).PageDown, (*LookupTable).PageDown}, 6},
		{"page up from first page", false, []func(*LookupTable) bool{(*LookupTable).PageUp}, 0},
		{"page down wraps", true, []func(*LookupTable) bool{(*LookupTable).PageDown, (*LookupTable).PageDown, (*LookupTable).PageDown}, 0},
		{"page up wraps", true, []func(*LookupTable) bool{(*LookupTable).CursorDown, (*LookupTable).PageUp}, 6},
		{"cursor up wraps", true, []func(*LookupTable) bool{(*LookupTable).CursorUp}, 6},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			tbl := NewLookupTable(3, tc.round)
			tbl.Replace(items(7))
			for _, move := range tc.moves {
				move(tbl)
			}
			assert.Equal(t, tc.expected, tbl.Cursor())
		})
	}
}

func TestLookupTableReplaceResets(t *testing.T) {
	tbl := NewLookupTable(0, false)
	assert.Equal(t, DefaultPageSize, tbl.PageSize())

	tbl.Replace(items(10))
	tbl.PageDown()
	require.True(t, tbl.SetLabel(1, "x"))
	assert.False(t, tbl.SetLabel(DefaultPageSize, "x"))

	tbl.Replace(items(2))
	assert.Equal(t, 0, tbl.Cursor())
	assert.Empty(t, tbl.Label(1))
	_, ok := tbl.Candidate(2)
	assert.False(t, ok)
}

func TestSurfaceRecordsOps(t *testing.T) {
	s := NewSurface(2)
	s.CommitText("c")
	s.ShowCandidates()
	s.ReplaceCandidates([]string{"smile", "smiley", "smirk"})
	s.SetRowLabel(0, "\U0001F604")
	s.SetRowLabel(5, "ignored")
	s.ShowComposingText("smi")

	ops := s.Drain()
	assert.Equal(t, []Op{
		{Kind: OpCommit, Text: "c"},
		{Kind: OpShowList},
		{Kind: OpUpdateList, Items: []string{"smile", "smiley", "smirk"}},
		{Kind: OpLabel, Row: 0, Text: "\U0001F604"},
		{Kind: OpShowComposing, Text: "smi"},
	}, ops)
	assert.Empty(t, s.Drain())

	v := s.View()
	assert.True(t, v.ListVisible)
	assert.Equal(t, []Row{{Text: "smile", Label: "\U0001F604"}, {Text: "smiley"}}, v.Rows)
	assert.Equal(t, "smi", v.Composing)

	require.True(t, s.PageDown())
	v = s.View()
	assert.Equal(t, 1, v.Page)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "smirk", v.Rows[0].Text)

	s.HideCandidates()
	s.HideComposingText()
	assert.Empty(t, s.View().Rows)
	assert.False(t, s.View().ComposingVisible)
}

func TestSurfaceCommitted(t *testing.T) {
	s := NewSurface(5)
	s.CommitText("ca")
	s.CommitText("t ")
	s.CommitText("\U0001F604")
	s.DeleteLastRune()
	assert.Equal(t, "cat ", s.Committed())

	empty := NewSurface(5)
	empty.DeleteLastRune()
	assert.Empty(t, empty.Committed())
}
