package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bastiangx/predict/pkg/source"
	"github.com/blevesearch/vellum"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// keyGuard enforces strictly increasing insertion order. vellum accepts a
// repeated key silently, so repeats are rejected here.
type keyGuard struct {
	last  string
	count int
}

func (g *keyGuard) check(key string) error {
	if !utf8.ValidString(key) {
		return &BuildError{Op: "insert", Key: key, Err: ErrInvalidKey}
	}
	if g.count > 0 {
		switch {
		case key == g.last:
			return &BuildError{Op: "insert", Key: key, Err: ErrDuplicateKey}
		case key < g.last:
			return &BuildError{Op: "insert", Key: key, Err: fmt.Errorf("%w: after %q", ErrOutOfOrder, g.last)}
		}
	}
	g.last = key
	g.count++
	return nil
}

// SetBuilder writes a dictionary FST. Words must be inserted in strictly
// increasing byte order.
type SetBuilder struct {
	fst    *vellum.Builder
	guard  keyGuard
	closed bool
}

// NewSetBuilder starts a dictionary FST written to w.
func NewSetBuilder(w io.Writer) (*SetBuilder, error) {
	b, err := vellum.New(w, nil)
	if err != nil {
		return nil, &BuildError{Op: "init", Err: err}
	}
	return &SetBuilder{fst: b}, nil
}

// Insert adds the next word.
func (b *SetBuilder) Insert(word string) error {
	if b.closed {
		return &BuildError{Op: "insert", Key: word, Err: ErrBuilderClosed}
	}
	if err := b.guard.check(word); err != nil {
		return err
	}
	if err := b.fst.Insert([]byte(word), 0); err != nil {
		return &BuildError{Op: "insert", Key: word, Err: err}
	}
	return nil
}

// Len is the number of words inserted so far.
func (b *SetBuilder) Len() int { return b.guard.count }

// Close finishes the FST and flushes it to the writer.
func (b *SetBuilder) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.fst.Close(); err != nil {
		return &BuildError{Op: "finish", Err: err}
	}
	return nil
}

// MapBuilder writes the shortcode FST and its payload table. Each shortcode
// is mapped to the next sequential id and its symbol text is stored at that
// id in the payload table.
type MapBuilder struct {
	fst      *vellum.Builder
	payloadW io.Writer
	payload  []string
	guard    keyGuard
	closed   bool
}

// NewMapBuilder starts a shortcode FST written to fstW; the payload table is
// written to payloadW on Close.
func NewMapBuilder(fstW, payloadW io.Writer) (*MapBuilder, error) {
	b, err := vellum.New(fstW, nil)
	if err != nil {
		return nil, &BuildError{Op: "init", Err: err}
	}
	return &MapBuilder{fst: b, payloadW: payloadW}, nil
}

// Insert adds the next shortcode with its symbol text.
func (b *MapBuilder) Insert(shortcode, symbol string) error {
	if b.closed {
		return &BuildError{Op: "insert", Key: shortcode, Err: ErrBuilderClosed}
	}
	if symbol == "" {
		return &BuildError{Op: "insert", Key: shortcode, Err: ErrEmptyPayload}
	}
	if !utf8.ValidString(symbol) {
		return &BuildError{Op: "insert", Key: shortcode, Err: fmt.Errorf("symbol text is not valid UTF-8")}
	}
	if err := b.guard.check(shortcode); err != nil {
		return err
	}
	id := uint64(len(b.payload))
	if err := b.fst.Insert([]byte(shortcode), id); err != nil {
		return &BuildError{Op: "insert", Key: shortcode, Err: err}
	}
	b.payload = append(b.payload, symbol)
	return nil
}

// Len is the number of shortcodes inserted so far.
func (b *MapBuilder) Len() int { return len(b.payload) }

// Close finishes the FST and writes the payload table in id order.
func (b *MapBuilder) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.fst.Close(); err != nil {
		return &BuildError{Op: "finish", Err: err}
	}
	if err := msgpack.NewEncoder(b.payloadW).Encode(b.payload); err != nil {
		return &BuildError{Op: "payload", Err: err}
	}
	return nil
}

// pendingFile is an artifact written to a temp file and renamed into place
// only once the whole build succeeded.
type pendingFile struct {
	path string
	file *os.File
	buf  *bufio.Writer
}

func createPending(path string) (*pendingFile, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return nil, &BuildError{Op: "create", Key: path, Err: err}
	}
	return &pendingFile{path: path, file: f, buf: bufio.NewWriter(f)}, nil
}

func (p *pendingFile) Write(data []byte) (int, error) { return p.buf.Write(data) }

func (p *pendingFile) commit() error {
	if err := p.buf.Flush(); err != nil {
		p.discard()
		return &BuildError{Op: "write", Key: p.path, Err: err}
	}
	if err := p.file.Close(); err != nil {
		os.Remove(p.file.Name())
		return &BuildError{Op: "write", Key: p.path, Err: err}
	}
	if err := os.Rename(p.file.Name(), p.path); err != nil {
		os.Remove(p.file.Name())
		return &BuildError{Op: "rename", Key: p.path, Err: err}
	}
	return nil
}

func (p *pendingFile) discard() {
	p.file.Close()
	os.Remove(p.file.Name())
}

// BuildDictionary writes the dictionary artifact at path. words must already
// be sorted and free of repeats.
func BuildDictionary(path string, words []string) error {
	out, err := createPending(path)
	if err != nil {
		return err
	}
	b, err := NewSetBuilder(out)
	if err != nil {
		out.discard()
		return err
	}
	for _, word := range words {
		if err := b.Insert(word); err != nil {
			out.discard()
			return err
		}
	}
	if err := b.Close(); err != nil {
		out.discard()
		return err
	}
	if err := out.commit(); err != nil {
		return err
	}
	log.Debugf("Wrote dictionary %s: %d words", path, b.Len())
	return nil
}

// BuildSymbols writes the shortcode FST at fstPath and the payload table at
// payloadPath. Pairs must already be sorted by shortcode and free of repeats.
func BuildSymbols(fstPath, payloadPath string, pairs []source.Pair) error {
	fstOut, err := createPending(fstPath)
	if err != nil {
		return err
	}
	payloadOut, err := createPending(payloadPath)
	if err != nil {
		fstOut.discard()
		return err
	}
	fail := func(err error) error {
		fstOut.discard()
		payloadOut.discard()
		return err
	}

	b, err := NewMapBuilder(fstOut, payloadOut)
	if err != nil {
		return fail(err)
	}
	for _, p := range pairs {
		if err := b.Insert(p.Shortcode, p.Symbol); err != nil {
			return fail(err)
		}
	}
	if err := b.Close(); err != nil {
		return fail(err)
	}
	if err := fstOut.commit(); err != nil {
		payloadOut.discard()
		return err
	}
	if err := payloadOut.commit(); err != nil {
		os.Remove(fstPath)
		return err
	}
	log.Debugf("Wrote shortcodes %s and symbols %s: %d entries", fstPath, payloadPath, b.Len())
	return nil
}
