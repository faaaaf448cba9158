package tagfind

import "github.com/kailas-cloud/tagfind/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidIndex        = domain.ErrInvalidIndex
	ErrCandidateHidden     = domain.ErrCandidateHidden
	ErrNoVisibleCandidates = domain.ErrNoVisibleCandidates
)
