/*
Package session maps key events onto lookups and host updates.

A Session has three modes:

	Normal       printable keys are echoed to the host and remembered in the
	             word buffer
	WordLookup   the dictionary candidates for the word buffer are shown and
	             refreshed as more characters are typed
	SymbolInput  keys build a shortcode query that is never echoed; the
	             candidate rows show shortcodes and their labels carry the
	             symbol text

Every commit or cancel returns the session to Normal with empty buffers.

A Session belongs to a single input context and must not be used from more
than one goroutine. The Predictor it queries may be shared.
*/
package session

import (
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/predict/internal/logger"
	"github.com/bastiangx/predict/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Mode is the state of a session.
type Mode int

const (
	Normal Mode = iota
	WordLookup
	SymbolInput
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case WordLookup:
		return "word"
	case SymbolInput:
		return "symbol"
	default:
		return "unknown"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithBindings replaces the Control chords that switch modes.
func WithBindings(b Bindings) Option {
	return func(s *Session) {
		if b.SymbolMode != 0 {
			s.bindings.SymbolMode = foldASCII(b.SymbolMode)
		}
		if b.WordMode != 0 {
			s.bindings.WordMode = foldASCII(b.WordMode)
		}
	}
}

// WithLogger sets the logger used for lookup and commit failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is the per-context prediction state machine.
type Session struct {
	pred     suggest.Predictor
	host     Host
	bindings Bindings
	logger   *log.Logger

	mode         Mode
	wordBuffer   string
	symbolBuffer string

	// rows and the symbol text behind each row, as of the last query
	candidates  []string
	symbolTexts []string

	labelCache      []string
	lastLabeledPage int
	labelsValid     bool
}

// New creates a session in Normal mode.
func New(pred suggest.Predictor, h Host, opts ...Option) *Session {
	s := &Session{
		pred:     pred,
		host:     h,
		bindings: DefaultBindings(),
		logger:   logger.New("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// WordBuffer returns the characters echoed since the last word boundary.
func (s *Session) WordBuffer() string { return s.wordBuffer }

// SymbolBuffer returns the pending shortcode query.
func (s *Session) SymbolBuffer() string { return s.symbolBuffer }

// Reset cancels any lookup and clears both buffers. Hosts call it when the
// input context loses focus.
func (s *Session) Reset() { s.resetToNormal() }

// HandleKeyEvent processes one key press and reports whether it was
// consumed. Keys that are not consumed should be handled by the host as if
// no session existed.
func (s *Session) HandleKeyEvent(keyval, keycode uint32, mods Modifier) bool {
	s.logger.Debug("key", "keyval", keyval, "keycode", keycode, "mods", uint32(mods), "mode", s.mode)

	if mods&ReleaseMask != 0 {
		return false
	}
	if mods&ControlMask != 0 {
		if mods&^(ControlMask|ShiftMask) != 0 {
			return false
		}
		switch foldASCII(keyval) {
		case s.bindings.SymbolMode:
			return s.enableSymbolInput()
		case s.bindings.WordMode:
			return s.enableWordLookup()
		}
		return false
	}
	if mods&^ShiftMask != 0 {
		return false
	}

	switch keyval {
	case KeySpace:
		return s.handleSpace()
	case KeyReturn, KeyKPEnter:
		return s.handleReturn()
	case KeyBackSpace:
		return s.handleBackspace()
	case KeyEscape:
		return s.handleEscape()
	case KeyUp:
		return s.navigate(s.host.CursorUp)
	case KeyDown:
		return s.navigate(s.host.CursorDown)
	case KeyPageUp:
		return s.navigate(s.host.PageUp)
	case KeyPageDown:
		return s.navigate(s.host.PageDown)
	}
	if isPrintable(keyval) {
		return s.handleChar(rune(keyval))
	}
	return false
}

func (s *Session) enableSymbolInput() bool {
	if s.mode != Normal {
		return false
	}
	s.mode = SymbolInput
	s.symbolBuffer = ""
	s.setCandidates(nil, nil)
	s.host.ShowCandidates()
	s.host.ShowComposingText("")
	return true
}

func (s *Session) enableWordLookup() bool {
	if s.mode != Normal || s.wordBuffer == "" {
		return false
	}
	words, err := s.pred.Words(s.wordBuffer)
	if err != nil {
		s.logger.Error("word lookup failed", "prefix", s.wordBuffer, "err", err)
		s.host.HideCandidates()
		return false
	}
	s.mode = WordLookup
	s.setCandidates(words, nil)
	s.host.ShowCandidates()
	return true
}

func (s *Session) handleChar(r rune) bool {
	if s.mode == SymbolInput {
		s.symbolBuffer += string(r)
		s.updateSymbols()
		return true
	}

	s.wordBuffer += string(r)
	s.host.CommitText(string(r))
	if s.mode == WordLookup {
		s.updateWords()
	}
	return true
}

func (s *Session) handleSpace() bool {
	if s.mode != Normal {
		s.commitSelection()
	}
	s.host.CommitText(" ")
	s.wordBuffer = ""
	return true
}

func (s *Session) handleReturn() bool {
	if s.mode == Normal {
		s.wordBuffer = ""
		return false
	}
	s.commitSelection()
	return true
}

func (s *Session) handleBackspace() bool {
	switch s.mode {
	case SymbolInput:
		if s.symbolBuffer == "" {
			return true
		}
		s.symbolBuffer = dropLastRune(s.symbolBuffer)
		s.updateSymbols()
		return true
	case WordLookup:
		s.wordBuffer = dropLastRune(s.wordBuffer)
		s.updateWords()
	default:
		s.wordBuffer = dropLastRune(s.wordBuffer)
	}
	// the echoed character is still in the host's text
	return false
}

func (s *Session) handleEscape() bool {
	if s.mode != SymbolInput {
		return false
	}
	s.resetToNormal()
	return true
}

func (s *Session) navigate(move func() bool) bool {
	if s.mode == Normal {
		return false
	}
	move()
	s.refreshLabels()
	return true
}

func (s *Session) updateWords() {
	if s.wordBuffer == "" {
		s.resetToNormal()
		return
	}
	words, err := s.pred.Words(s.wordBuffer)
	if err != nil {
		s.logger.Error("word lookup failed", "prefix", s.wordBuffer, "err", err)
		return
	}
	s.setCandidates(words, nil)
}

func (s *Session) updateSymbols() {
	s.host.ShowComposingText(s.symbolBuffer)
	if s.symbolBuffer == "" {
		s.setCandidates(nil, nil)
		return
	}
	symbols, err := s.pred.Symbols(s.symbolBuffer)
	if err != nil {
		s.logger.Error("symbol lookup failed", "prefix", s.symbolBuffer, "err", err)
		return
	}
	rows := make([]string, len(symbols))
	texts := make([]string, len(symbols))
	for i, sym := range symbols {
		rows[i] = sym.Shortcode
		texts[i] = sym.Text
	}
	s.setCandidates(rows, texts)
	s.refreshLabels()
}

// setCandidates replaces the list and drops every label derived from the
// previous query.
func (s *Session) setCandidates(rows, texts []string) {
	s.candidates = rows
	s.symbolTexts = texts
	s.labelCache = s.labelCache[:0]
	s.labelsValid = false
	if rows == nil {
		rows = []string{}
	}
	s.host.ReplaceCandidates(rows)
}

// refreshLabels labels the visible page from the symbol text of the last
// query. It only walks the page when the page index moved.
func (s *Session) refreshLabels() {
	if s.mode != SymbolInput || len(s.symbolTexts) == 0 {
		return
	}
	page := s.host.PageIndex()
	if s.labelsValid && page == s.lastLabeledPage {
		return
	}

	size := s.host.PageSize()
	start := page * size
	end := min(start+size, len(s.symbolTexts))
	s.labelCache = s.labelCache[:0]
	for i := start; i < end; i++ {
		s.labelCache = append(s.labelCache, s.symbolTexts[i])
		s.host.SetRowLabel(i-start, s.symbolTexts[i])
	}
	s.lastLabeledPage = page
	s.labelsValid = true
	s.logger.Debug("labeled page", "page", page, "rows", len(s.labelCache))
}

// commitSelection commits the candidate under the cursor and resets the
// session, whether or not the candidate could be converted.
func (s *Session) commitSelection() {
	mode := s.mode
	defer s.resetToNormal()

	var text string
	var err error
	switch mode {
	case WordLookup:
		text, err = s.selectedWordSuffix()
	case SymbolInput:
		text, err = s.selectedSymbol()
	default:
		return
	}
	if err != nil {
		s.logger.Warn("commit skipped", "err", err)
		return
	}
	if text != "" {
		s.host.CommitText(text)
	}
}

func (s *Session) selectedWordSuffix() (string, error) {
	size := s.host.PageSize()
	row := s.host.CursorInPage()
	idx := s.host.PageIndex()*size + row
	if size <= 0 || row < 0 || idx >= len(s.candidates) {
		return "", &CommitError{Mode: WordLookup, Index: idx, Err: ErrNoCandidate}
	}
	word := s.candidates[idx]
	if !utf8.ValidString(word) {
		return "", &CommitError{Mode: WordLookup, Index: idx, Err: ErrInvalidText}
	}
	suffix, ok := strings.CutPrefix(word, s.wordBuffer)
	if !ok {
		return "", &CommitError{Mode: WordLookup, Index: idx, Err: ErrCandidateMismatch}
	}
	return suffix, nil
}

func (s *Session) selectedSymbol() (string, error) {
	s.refreshLabels()
	row := s.host.CursorInPage()
	if row < 0 || row >= len(s.labelCache) {
		return "", &CommitError{Mode: SymbolInput, Index: row, Err: ErrNoCandidate}
	}
	text := s.labelCache[row]
	if !utf8.ValidString(text) {
		return "", &CommitError{Mode: SymbolInput, Index: row, Err: ErrInvalidText}
	}
	return text, nil
}

func (s *Session) resetToNormal() {
	prev := s.mode
	s.mode = Normal
	s.wordBuffer = ""
	s.symbolBuffer = ""
	s.candidates = nil
	s.symbolTexts = nil
	s.labelCache = s.labelCache[:0]
	s.labelsValid = false
	s.lastLabeledPage = 0

	if prev == Normal {
		return
	}
	s.host.HideCandidates()
	if prev == SymbolInput {
		s.host.HideComposingText()
		for row := 0; row < s.host.PageSize(); row++ {
			s.host.SetRowLabel(row, "")
		}
	}
}

func dropLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
