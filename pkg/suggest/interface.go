// Package suggest is the query side: bounded prefix lookups over the loaded
// word and symbol indexes, shared read-only by every session.
package suggest

import "github.com/bastiangx/predict/pkg/dictionary"

// Predictor answers the two prefix queries a session issues.
type Predictor interface {
	// Words returns dictionary words starting with prefix, ascending.
	Words(prefix string) ([]string, error)

	// Symbols returns shortcodes starting with prefix with their symbol text, ascending.
	Symbols(prefix string) ([]dictionary.Symbol, error)
}

// WordIndex is a sorted word set that can be scanned by prefix.
// Both *dictionary.Dictionary and *TrieIndex satisfy it.
type WordIndex interface {
	WithPrefix(prefix string, limit int) ([]string, error)
	Len() int
}
