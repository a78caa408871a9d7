package suggest

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/charmbracelet/log"
)

// ErrInvalidPrefix is returned for prefixes that are not valid UTF-8.
var ErrInvalidPrefix = errors.New("prefix is not valid UTF-8")

// QueryError is local to a single lookup; the engine stays usable.
type QueryError struct {
	Op     string
	Prefix string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Prefix, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Limits bounds how many candidates a single lookup may return.
type Limits struct {
	MaxWords   int
	MaxSymbols int
}

// DefaultLimits returns the caps used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxWords: 64, MaxSymbols: 64}
}

func (l Limits) normalized() Limits {
	def := DefaultLimits()
	if l.MaxWords <= 0 {
		l.MaxWords = def.MaxWords
	}
	if l.MaxSymbols <= 0 {
		l.MaxSymbols = def.MaxSymbols
	}
	return l
}

// Engine is the read-only prediction handle. It is safe for concurrent use;
// nothing in it changes after construction.
type Engine struct {
	words   WordIndex
	symbols *dictionary.Symbols
	limits  Limits
}

// NewEngine wires already loaded indexes into an engine.
func NewEngine(words WordIndex, symbols *dictionary.Symbols, limits Limits) (*Engine, error) {
	if words == nil {
		return nil, errors.New("engine requires a word index")
	}
	if symbols == nil {
		return nil, errors.New("engine requires a symbol index")
	}
	return &Engine{words: words, symbols: symbols, limits: limits.normalized()}, nil
}

// Load reads the standard artifacts from dataDir. Any missing or corrupt
// artifact fails the whole load.
func Load(dataDir string, limits Limits) (*Engine, error) {
	return LoadPaths(dictionary.ArtifactPaths(dataDir), limits)
}

// LoadPaths is Load with explicit artifact locations.
func LoadPaths(paths dictionary.Paths, limits Limits) (*Engine, error) {
	dict, err := dictionary.LoadDictionary(paths.Dictionary)
	if err != nil {
		return nil, err
	}
	return LoadWithWords(dict, paths, limits)
}

// LoadWithWords loads the symbol artifacts from paths and pairs them with an
// already built word index.
func LoadWithWords(words WordIndex, paths dictionary.Paths, limits Limits) (*Engine, error) {
	symbols, err := dictionary.LoadSymbols(paths.Shortcodes, paths.Symbols)
	if err != nil {
		return nil, err
	}
	e, err := NewEngine(words, symbols, limits)
	if err != nil {
		return nil, err
	}
	log.Debugf("Engine ready: words=[%d], symbols=[%d], limits=%+v", words.Len(), symbols.Len(), e.limits)
	return e, nil
}

// Words returns up to Limits.MaxWords dictionary words starting with prefix.
// An empty prefix returns the leading words of the dictionary.
func (e *Engine) Words(prefix string) ([]string, error) {
	if !utf8.ValidString(prefix) {
		return nil, &QueryError{Op: "words", Prefix: prefix, Err: ErrInvalidPrefix}
	}
	words, err := e.words.WithPrefix(prefix, e.limits.MaxWords)
	if err != nil {
		return nil, &QueryError{Op: "words", Prefix: prefix, Err: err}
	}
	return words, nil
}

// Symbols returns up to Limits.MaxSymbols shortcodes starting with prefix,
// each resolved to its symbol text.
func (e *Engine) Symbols(prefix string) ([]dictionary.Symbol, error) {
	if !utf8.ValidString(prefix) {
		return nil, &QueryError{Op: "symbols", Prefix: prefix, Err: ErrInvalidPrefix}
	}
	symbols, err := e.symbols.WithPrefix(prefix, e.limits.MaxSymbols)
	if err != nil {
		return nil, &QueryError{Op: "symbols", Prefix: prefix, Err: err}
	}
	return symbols, nil
}

// Limits returns the caps in effect.
func (e *Engine) Limits() Limits { return e.limits }

// Stats returns index sizes and caps.
func (e *Engine) Stats() map[string]int {
	return map[string]int{
		"words":      e.words.Len(),
		"symbols":    e.symbols.Len(),
		"maxWords":   e.limits.MaxWords,
		"maxSymbols": e.limits.MaxSymbols,
	}
}
