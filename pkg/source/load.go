package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// LoadJSON reads a JSON object of shortcode to asset reference, the shape
// served by the GitHub emoji API.
func LoadJSON(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shortcode source %s: %w", path, err)
	}
	records := make(map[string]string)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse shortcode source %s: %w", path, err)
	}
	return records, nil
}

// LoadYAML reads a YAML mapping of shortcode to asset reference. Bare
// codepoint sequences such as "1f44d-1f3fd" are valid references too.
func LoadYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shortcode source %s: %w", path, err)
	}
	records := make(map[string]string)
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse shortcode source %s: %w", path, err)
	}
	return records, nil
}

// LoadFile picks a loader from the file extension.
func LoadFile(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported shortcode source %s (expected .json, .yaml or .yml)", path)
	}
}

// ReadWordList reads one word per line. Blank lines and lines starting with
// '#' are skipped. Lines that are not valid UTF-8 are an error.
func ReadWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("line %d: invalid UTF-8", lineNo)
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return words, nil
}

// ReadWordFile opens path and reads it with ReadWordList.
func ReadWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer f.Close()

	words, err := ReadWordList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// SortWords sorts words by byte order and removes repeats in place.
// It returns the sorted slice and how many duplicates were removed.
func SortWords(words []string) ([]string, int) {
	slices.Sort(words)
	n := len(words)
	words = slices.Compact(words)
	return words, n - len(words)
}

// SortPairs sorts pairs by shortcode and keeps the first pair of any
// repeated shortcode.
func SortPairs(pairs []Pair) ([]Pair, int) {
	slices.SortStableFunc(pairs, func(a, b Pair) int {
		return strings.Compare(a.Shortcode, b.Shortcode)
	})
	n := len(pairs)
	pairs = slices.CompactFunc(pairs, func(a, b Pair) bool {
		return a.Shortcode == b.Shortcode
	})
	return pairs, n - len(pairs)
}
