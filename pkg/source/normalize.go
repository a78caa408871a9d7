// Package source turns raw shortcode and word list inputs into the clean,
// sortable records the index builders consume.
//
// Shortcode sources map a shortcode to an asset reference such as
//
//	https://github.githubassets.com/images/icons/emoji/unicode/1f469-200d-1f4bb.png?v8
//
// where the final path segment encodes one or more hexadecimal codepoints
// joined by '-'. ParseAssetRef decodes that segment into the symbol text.
package source

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

var (
	// ErrMalformedRef means the reference has no usable final segment.
	ErrMalformedRef = errors.New("malformed asset reference")
	// ErrInvalidHex means a codepoint piece is not hexadecimal.
	ErrInvalidHex = errors.New("invalid hex codepoint")
	// ErrInvalidCodepoint means a hex value is not a Unicode scalar value.
	ErrInvalidCodepoint = errors.New("invalid codepoint")
)

const codepointSep = "-"

// Pair is a decoded shortcode and the symbol text it expands to.
type Pair struct {
	Shortcode string
	Symbol    string
}

// RecordError reports a source record that was dropped during normalization.
type RecordError struct {
	Shortcode string
	Ref       string
	Err       error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("shortcode %q (%s): %v", e.Shortcode, e.Ref, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ParseAssetRef decodes the codepoints encoded in the last path segment of
// ref. The extension and any query suffix are ignored.
func ParseAssetRef(ref string) (string, error) {
	segment := ref
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		segment = ref[i+1:]
	}
	if i := strings.IndexAny(segment, ".?"); i >= 0 {
		segment = segment[:i]
	}
	if segment == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedRef, ref)
	}

	var sb strings.Builder
	for _, piece := range strings.Split(segment, codepointSep) {
		r, err := parseCodepoint(piece)
		if err != nil {
			return "", err
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func parseCodepoint(piece string) (rune, error) {
	v, err := strconv.ParseUint(piece, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, piece)
	}
	r := rune(v)
	if v > utf8.MaxRune || !utf8.ValidRune(r) {
		return 0, fmt.Errorf("%w: U+%X", ErrInvalidCodepoint, v)
	}
	return r, nil
}

// Normalize decodes every record and returns the pairs that decoded cleanly.
// Dropped records are returned separately; one bad record never fails the
// whole source. The output order is not meaningful.
func Normalize(records map[string]string) ([]Pair, []*RecordError) {
	pairs := make([]Pair, 0, len(records))
	var dropped []*RecordError

	for _, shortcode := range slices.Sorted(maps.Keys(records)) {
		ref := records[shortcode]
		symbol, err := ParseAssetRef(ref)
		if err != nil {
			log.Debugf("Dropping shortcode %q: %v", shortcode, err)
			dropped = append(dropped, &RecordError{Shortcode: shortcode, Ref: ref, Err: err})
			continue
		}
		pairs = append(pairs, Pair{Shortcode: shortcode, Symbol: symbol})
	}
	return pairs, dropped
}

// Merge combines shortcode sources. Later sources win on conflicting keys.
func Merge(sources ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, src := range sources {
		maps.Copy(merged, src)
	}
	return merged
}
