package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound signals a missing or expired session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidIndex signals a candidate index outside [0, size).
	ErrInvalidIndex = errors.New("invalid candidate index")
	// ErrCandidateHidden signals an explicit commit on a row the filter hides.
	ErrCandidateHidden = errors.New("candidate is hidden")
	// ErrNoVisibleCandidates signals an implicit commit with nothing visible.
	ErrNoVisibleCandidates = errors.New("no visible candidates")
	// ErrInvalidCandidates signals a candidate list rejected by service limits.
	ErrInvalidCandidates = errors.New("invalid candidates")
	// ErrInvalidTag signals a tag rejected by service limits.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrTooManyTags signals a required tag set at its configured limit.
	ErrTooManyTags = errors.New("too many required tags")
)

// IndexError wraps ErrInvalidIndex with the offending index and the set size.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %d not in [0, %d)", ErrInvalidIndex.Error(), e.Index, e.Size)
}

func (e *IndexError) Unwrap() error { return ErrInvalidIndex }

// NewIndexError creates an invalid index error.
func NewIndexError(index, size int) error {
	return &IndexError{Index: index, Size: size}
}
