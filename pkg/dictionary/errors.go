package dictionary

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfOrder     = errors.New("key out of order")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrInvalidKey     = errors.New("key is not valid UTF-8")
	ErrEmptyPayload   = errors.New("empty symbol text")
	ErrBuilderClosed  = errors.New("builder already closed")
	ErrPayloadCount   = errors.New("payload count does not match key count")
	ErrPayloadMissing = errors.New("id has no payload entry")
)

// BuildError is returned when an index cannot be constructed. No artifact is
// left behind when a build fails.
type BuildError struct {
	Op  string
	Key string
	Err error
}

func (e *BuildError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("build %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("build %s: %v", e.Op, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// LoadError is returned when an artifact is missing or corrupt.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
