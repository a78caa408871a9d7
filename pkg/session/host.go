package session

// Host is the text-input surface a session drives. The host owns the
// candidate cursor and paging; the session only asks where the cursor is.
//
// ReplaceCandidates resets the cursor to the first row and drops every row
// label.
type Host interface {
	CommitText(text string)

	ShowCandidates()
	HideCandidates()
	ReplaceCandidates(items []string)
	SetRowLabel(row int, label string)

	CursorInPage() int
	PageIndex() int
	PageSize() int
	CursorUp() bool
	CursorDown() bool
	PageUp() bool
	PageDown() bool

	ShowComposingText(text string)
	HideComposingText()
}
