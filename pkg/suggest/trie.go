package suggest

import (
	"errors"
	"sync"

	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/tchap/go-patricia/v2/patricia"
)

var errLimitReached = errors.New("limit reached")

// TrieIndex is an in-memory word index for plain word lists that have no
// prebuilt artifact. It follows the same contract as the dictionary FST:
// words must arrive sorted and unique.
type TrieIndex struct {
	trie  *patricia.Trie
	count int
	// patricia sorts sparse child lists in place while walking
	mu sync.Mutex
}

// NewTrieIndex builds a trie from sorted, unique words.
func NewTrieIndex(words []string) (*TrieIndex, error) {
	idx := &TrieIndex{trie: patricia.NewTrie()}
	for i, word := range words {
		if i > 0 {
			switch prev := words[i-1]; {
			case word == prev:
				return nil, &dictionary.BuildError{Op: "insert", Key: word, Err: dictionary.ErrDuplicateKey}
			case word < prev:
				return nil, &dictionary.BuildError{Op: "insert", Key: word, Err: dictionary.ErrOutOfOrder}
			}
		}
		idx.trie.Insert(patricia.Prefix(word), true)
		idx.count++
	}
	return idx, nil
}

// Len is the number of words.
func (t *TrieIndex) Len() int { return t.count }

// WithPrefix returns up to limit words starting with prefix, ascending.
func (t *TrieIndex) WithPrefix(prefix string, limit int) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var words []string
	err := t.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		words = append(words, string(p))
		if limit > 0 && len(words) >= limit {
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, err
	}
	return words, nil
}
