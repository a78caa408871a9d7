/*
Package dictionary builds and loads the on-disk prefix indexes.

Two indexes exist. The dictionary is a vellum FST used as a sorted set of
words. The symbol index is a vellum FST mapping each shortcode to a dense id,
plus a payload table holding the symbol text for every id, since FST values
can only be integers:

	shortcodes.fst   "smile" -> 41, "smiley" -> 42, ...
	symbols.bin      msgpack ["...", ..., "😄", "😃", ...]

Builders require keys in strictly increasing byte order and fail on anything
else; callers sort explicitly before building. Loaded indexes are immutable
and safe for concurrent readers.
*/
package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/blevesearch/vellum"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Symbol is a shortcode with the symbol text it expands to.
type Symbol struct {
	Shortcode string `msgpack:"s"`
	Text      string `msgpack:"t"`
}

// Dictionary is an immutable sorted set of words.
type Dictionary struct {
	fst *vellum.FST
}

// Symbols is an immutable sorted map of shortcode to symbol text.
type Symbols struct {
	fst     *vellum.FST
	payload []string
}

// LoadDictionary reads a dictionary artifact.
func LoadDictionary(path string) (*Dictionary, error) {
	fst, err := loadFST(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded dictionary %s: %d words", path, fst.Len())
	return &Dictionary{fst: fst}, nil
}

// LoadSymbols reads the shortcode automaton and its payload table and checks
// that every id resolves to a non-empty payload entry.
func LoadSymbols(fstPath, payloadPath string) (*Symbols, error) {
	fst, err := loadFST(fstPath)
	if err != nil {
		return nil, err
	}

	if err := ValidateFileFormat(payloadPath, FormatPayload); err != nil {
		return nil, &LoadError{Path: payloadPath, Err: err}
	}
	data, err := os.ReadFile(payloadPath)
	if err != nil {
		return nil, &LoadError{Path: payloadPath, Err: err}
	}
	var payload []string
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, &LoadError{Path: payloadPath, Err: fmt.Errorf("corrupt payload table: %w", err)}
	}
	if len(payload) != fst.Len() {
		return nil, &LoadError{Path: payloadPath, Err: fmt.Errorf("%w: %d entries for %d keys", ErrPayloadCount, len(payload), fst.Len())}
	}

	s := &Symbols{fst: fst, payload: payload}
	if err := s.verify(); err != nil {
		return nil, &LoadError{Path: payloadPath, Err: err}
	}
	log.Debugf("Loaded symbols %s: %d shortcodes", fstPath, fst.Len())
	return s, nil
}

// verify walks every key once so a bad id fails at load instead of at query.
func (s *Symbols) verify() error {
	return scan(s.fst, nil, 0, func(key []byte, id uint64) error {
		if id >= uint64(len(s.payload)) {
			return fmt.Errorf("%w: %q -> %d", ErrPayloadMissing, key, id)
		}
		if s.payload[id] == "" {
			return fmt.Errorf("%w: %q -> %d", ErrEmptyPayload, key, id)
		}
		return nil
	})
}

func loadFST(path string) (*vellum.FST, error) {
	if err := ValidateFileFormat(path, FormatFST); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("corrupt automaton: %w", err)}
	}
	return fst, nil
}

// Len is the number of words.
func (d *Dictionary) Len() int { return d.fst.Len() }

// WithPrefix returns up to limit words starting with prefix, in ascending
// byte order. A limit of zero or less means no bound.
func (d *Dictionary) WithPrefix(prefix string, limit int) ([]string, error) {
	var words []string
	err := scan(d.fst, []byte(prefix), limit, func(key []byte, _ uint64) error {
		words = append(words, string(key))
		return nil
	})
	return words, err
}

// Contains reports whether word is in the dictionary.
func (d *Dictionary) Contains(word string) bool {
	ok, err := d.fst.Contains([]byte(word))
	return err == nil && ok
}

// Len is the number of shortcodes.
func (s *Symbols) Len() int { return len(s.payload) }

// WithPrefix returns up to limit symbols whose shortcode starts with prefix,
// in ascending shortcode order. A limit of zero or less means no bound.
func (s *Symbols) WithPrefix(prefix string, limit int) ([]Symbol, error) {
	var symbols []Symbol
	err := scan(s.fst, []byte(prefix), limit, func(key []byte, id uint64) error {
		if id >= uint64(len(s.payload)) {
			return fmt.Errorf("%w: %q -> %d", ErrPayloadMissing, key, id)
		}
		symbols = append(symbols, Symbol{Shortcode: string(key), Text: s.payload[id]})
		return nil
	})
	return symbols, err
}

// Lookup returns the symbol text of an exact shortcode.
func (s *Symbols) Lookup(shortcode string) (string, bool) {
	id, ok, err := s.fst.Get([]byte(shortcode))
	if err != nil || !ok || id >= uint64(len(s.payload)) {
		return "", false
	}
	return s.payload[id], true
}

// scan visits the keys starting with prefix in order, stopping after limit
// keys when limit is positive.
func scan(fst *vellum.FST, prefix []byte, limit int, visit func(key []byte, val uint64) error) error {
	it, err := fst.Iterator(prefix, prefixEnd(prefix))
	if errors.Is(err, vellum.ErrIteratorDone) {
		return nil
	}
	if err != nil {
		return err
	}
	defer it.Close()

	for n := 0; limit <= 0 || n < limit; n++ {
		key, val := it.Current()
		if err := visit(key, val); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			if errors.Is(err, vellum.ErrIteratorDone) {
				return nil
			}
			return err
		}
	}
	return nil
}

// prefixEnd is the smallest key greater than every key starting with
// prefix, or nil when no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
