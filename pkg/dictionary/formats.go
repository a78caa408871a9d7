package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Standard artifact names inside a data directory.
const (
	DictionaryFile = "dictionary.fst"
	ShortcodesFile = "shortcodes.fst"
	SymbolsFile    = "symbols.bin"
)

// FileFormat represents the artifact kinds a data directory holds
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatFST                 // vellum automaton
	FormatPayload             // msgpack string table
)

// FormatInfo contains metadata about an artifact format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatFST: {
		Format:      FormatFST,
		Description: "Sorted-key automaton",
		Extensions:  []string{".fst"},
		MinSize:     16, // vellum header
	},
	FormatPayload: {
		Format:      FormatPayload,
		Description: "Symbol payload table",
		Extensions:  []string{".bin"},
		MinSize:     1, // msgpack array header
	},
}

// Paths holds the artifact locations of one data directory.
type Paths struct {
	Dictionary string
	Shortcodes string
	Symbols    string
}

// ArtifactPaths returns the standard artifact paths inside dir.
func ArtifactPaths(dir string) Paths {
	return Paths{
		Dictionary: filepath.Join(dir, DictionaryFile),
		Shortcodes: filepath.Join(dir, ShortcodesFile),
		Symbols:    filepath.Join(dir, SymbolsFile),
	}
}

// ValidateFileFormat checks that a file exists, is large enough and carries
// the extension of the expected format.
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			log.Debugf("%s validated as %s (%d bytes)", filename, formatInfo.Description, fileInfo.Size())
			return nil
		}
	}
	return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
		filename, ext, formatInfo.Description, formatInfo.Extensions)
}

// DetectFileFormat guesses the format of a file from its extension.
func DetectFileFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".fst":
		return FormatFST, nil
	case ".bin":
		return FormatPayload, nil
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
