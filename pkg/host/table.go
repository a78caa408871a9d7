// Package host provides an in-process candidate surface for sessions: a
// lookup table with cursor and paging, and a Surface that records every call
// a session makes so it can be replayed to a real front end.
package host

// DefaultPageSize is the number of rows shown at once.
const DefaultPageSize = 5

// LookupTable is a candidate list with an absolute cursor split into pages.
// Cursor and page moves clamp at the ends unless Round is set, in which case
// they wrap.
type LookupTable struct {
	pageSize int
	round    bool
	items    []string
	labels   []string
	cursor   int
}

// NewLookupTable creates an empty table. A pageSize below one uses
// DefaultPageSize.
func NewLookupTable(pageSize int, round bool) *LookupTable {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &LookupTable{
		pageSize: pageSize,
		round:    round,
		labels:   make([]string, pageSize),
	}
}

// Replace swaps in a new candidate list, moves the cursor to the first row
// and clears all labels.
func (t *LookupTable) Replace(items []string) {
	t.items = append(t.items[:0], items...)
	t.cursor = 0
	clear(t.labels)
}

// Len is the number of candidates.
func (t *LookupTable) Len() int { return len(t.items) }

// PageSize is the number of rows per page.
func (t *LookupTable) PageSize() int { return t.pageSize }

// Cursor is the absolute index of the selected candidate.
func (t *LookupTable) Cursor() int { return t.cursor }

// CursorInPage is the selected row within the visible page.
func (t *LookupTable) CursorInPage() int { return t.cursor % t.pageSize }

// PageIndex is the index of the visible page.
func (t *LookupTable) PageIndex() int { return t.cursor / t.pageSize }

// Candidate returns the item at absolute index i.
func (t *LookupTable) Candidate(i int) (string, bool) {
	if i < 0 || i >= len(t.items) {
		return "", false
	}
	return t.items[i], true
}

// SetLabel sets the label of a row in the visible page.
func (t *LookupTable) SetLabel(row int, label string) bool {
	if row < 0 || row >= t.pageSize {
		return false
	}
	t.labels[row] = label
	return true
}

// Label returns the label of a row in the visible page.
func (t *LookupTable) Label(row int) string {
	if row < 0 || row >= t.pageSize {
		return ""
	}
	return t.labels[row]
}

// CursorUp moves the cursor one row back.
func (t *LookupTable) CursorUp() bool {
	if len(t.items) == 0 {
		return false
	}
	if t.cursor == 0 {
		if !t.round {
			return false
		}
		t.cursor = len(t.items) - 1
		return true
	}
	t.cursor--
	return true
}

// CursorDown moves the cursor one row forward.
func (t *LookupTable) CursorDown() bool {
	if len(t.items) == 0 {
		return false
	}
	if t.cursor == len(t.items)-1 {
		if !t.round {
			return false
		}
		t.cursor = 0
		return true
	}
	t.cursor++
	return true
}

// PageUp moves the cursor to the same row of the previous page.
func (t *LookupTable) PageUp() bool {
	if len(t.items) == 0 {
		return false
	}
	if t.cursor < t.pageSize {
		if !t.round {
			return false
		}
		last := t.pages() - 1
		t.cursor = min(last*t.pageSize+t.CursorInPage(), len(t.items)-1)
		return true
	}
	t.cursor -= t.pageSize
	return true
}

// PageDown moves the cursor to the same row of the next page, or to the
// last candidate when the next page is short.
func (t *LookupTable) PageDown() bool {
	if len(t.items) == 0 {
		return false
	}
	if t.PageIndex() == t.pages()-1 {
		if !t.round {
			return false
		}
		t.cursor = t.CursorInPage()
		return true
	}
	t.cursor = min(t.cursor+t.pageSize, len(t.items)-1)
	return true
}

// Page returns the candidates of the visible page.
func (t *LookupTable) Page() []string {
	start := t.PageIndex() * t.pageSize
	if start >= len(t.items) {
		return nil
	}
	end := min(start+t.pageSize, len(t.items))
	return t.items[start:end]
}

func (t *LookupTable) pages() int {
	return (len(t.items) + t.pageSize - 1) / t.pageSize
}
