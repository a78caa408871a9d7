package host

import "strings"

// OpKind names a host call recorded by a Surface.
type OpKind string

const (
	OpCommit        OpKind = "commit"
	OpShowList      OpKind = "show_list"
	OpHideList      OpKind = "hide_list"
	OpUpdateList    OpKind = "update_list"
	OpLabel         OpKind = "label"
	OpShowComposing OpKind = "show_composing"
	OpHideComposing OpKind = "hide_composing"
)

// Op is one recorded host call.
type Op struct {
	Kind  OpKind   `msgpack:"kind"`
	Text  string   `msgpack:"text,omitempty"`
	Items []string `msgpack:"items,omitempty"`
	Row   int      `msgpack:"row,omitempty"`
}

// Row is a visible candidate and its label.
type Row struct {
	Text  string `msgpack:"text"`
	Label string `msgpack:"label,omitempty"`
}

// View is a snapshot of what a front end should display.
type View struct {
	ListVisible      bool   `msgpack:"list_visible"`
	Rows             []Row  `msgpack:"rows,omitempty"`
	Cursor           int    `msgpack:"cursor"`
	Page             int    `msgpack:"page"`
	Composing        string `msgpack:"composing,omitempty"`
	ComposingVisible bool   `msgpack:"composing_visible"`
}

// Surface is a host backed by a LookupTable that records every call. It
// keeps the text committed so far so front ends without a text buffer of
// their own can display it.
type Surface struct {
	table            *LookupTable
	ops              []Op
	committed        strings.Builder
	listVisible      bool
	composing        string
	composingVisible bool
}

// NewSurface creates a surface with the given page size.
func NewSurface(pageSize int) *Surface {
	return &Surface{table: NewLookupTable(pageSize, false)}
}

// Table exposes the underlying lookup table.
func (s *Surface) Table() *LookupTable { return s.table }

func (s *Surface) CommitText(text string) {
	s.committed.WriteString(text)
	s.record(Op{Kind: OpCommit, Text: text})
}

func (s *Surface) ShowCandidates() {
	s.listVisible = true
	s.record(Op{Kind: OpShowList})
}

func (s *Surface) HideCandidates() {
	s.listVisible = false
	s.record(Op{Kind: OpHideList})
}

func (s *Surface) ReplaceCandidates(items []string) {
	s.table.Replace(items)
	s.record(Op{Kind: OpUpdateList, Items: append([]string{}, items...)})
}

func (s *Surface) SetRowLabel(row int, label string) {
	if s.table.SetLabel(row, label) {
		s.record(Op{Kind: OpLabel, Row: row, Text: label})
	}
}

func (s *Surface) CursorInPage() int { return s.table.CursorInPage() }
func (s *Surface) PageIndex() int { return s.table.PageIndex() }
func (s *Surface) PageSize() int { return s.table.PageSize() }
func (s *Surface) CursorUp() bool { return s.table.CursorUp() }
func (s *Surface) CursorDown() bool { return s.table.CursorDown() }
func (s *Surface) PageUp() bool { return s.table.PageUp() }
func (s *Surface) PageDown() bool { return s.table.PageDown() }

func (s *Surface) ShowComposingText(text string) {
	s.composing = text
	s.composingVisible = true
	s.record(Op{Kind: OpShowComposing, Text: text})
}

func (s *Surface) HideComposingText() {
	s.composing = ""
	s.composingVisible = false
	s.record(Op{Kind: OpHideComposing})
}

// Drain returns the calls recorded since the last Drain.
func (s *Surface) Drain() []Op {
	ops := s.ops
	s.ops = nil
	return ops
}

// Committed returns all text committed so far.
func (s *Surface) Committed() string { return s.committed.String() }

// DeleteLastRune removes the last committed character, as a text field
// would on an unconsumed Backspace.
func (s *Surface) DeleteLastRune() {
	text := []rune(s.committed.String())
	if len(text) == 0 {
		return
	}
	s.committed.Reset()
	s.committed.WriteString(string(text[:len(text)-1]))
}

// View returns the visible page with its labels.
func (s *Surface) View() View {
	v := View{
		ListVisible:      s.listVisible,
		Cursor:           s.table.CursorInPage(),
		Page:             s.table.PageIndex(),
		Composing:        s.composing,
		ComposingVisible: s.composingVisible,
	}
	if !s.listVisible {
		return v
	}
	for i, text := range s.table.Page() {
		v.Rows = append(v.Rows, Row{Text: text, Label: s.table.Label(i)})
	}
	return v
}

func (s *Surface) record(op Op) {
	s.ops = append(s.ops, op)
}
