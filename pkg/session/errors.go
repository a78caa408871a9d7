package session

import (
	"errors"
	"fmt"
)

var (
	ErrNoCandidate       = errors.New("no candidate under the cursor")
	ErrCandidateMismatch = errors.New("candidate does not extend the typed word")
	ErrInvalidText       = errors.New("candidate is not valid UTF-8")
)

// CommitError describes a candidate that could not be turned into host
// text. It is logged and the commit is skipped.
type CommitError struct {
	Mode  Mode
	Index int
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit in %s at row %d: %v", e.Mode, e.Index, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
