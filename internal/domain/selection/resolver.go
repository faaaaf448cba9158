package selection

import (
	"fmt"

	"github.com/kailas-cloud/tagfind/internal/domain"
	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
)

// Resolver turns commit requests into at most one Choice per session.
// The zero value is Idle with no choice.
type Resolver struct {
	state  State
	choice Choice
}

// Reconstruct hydrates a Resolver from storage without validation.
func Reconstruct(state State, choice Choice) Resolver {
	return Resolver{state: state, choice: choice}
}

// State returns the lifecycle state.
func (r *Resolver) State() State { return r.state }

// Choice returns the current choice, None before resolution.
func (r *Resolver) Choice() Choice { return r.choice }

// Resolved reports whether the session has a choice.
func (r *Resolver) Resolved() bool { return r.state == Resolved }

// Touch records a tag edit: Idle moves to Filtering.
func (r *Resolver) Touch() {
	if r.state == Idle {
		r.state = Filtering
	}
}

// CommitExplicit chooses candidate index if it is currently visible.
// A rejected commit leaves the state untouched and returns ErrInvalidIndex
// or ErrCandidateHidden. Once resolved it returns the existing choice.
func (r *Resolver) CommitExplicit(set candidate.Set, vis tagfilter.Visibility, index int) (Choice, error) {
	if r.Resolved() {
		return r.Choice(), nil
	}
	if !set.InRange(index) {
		return None(), domain.NewIndexError(index, set.Len())
	}
	if !vis.Visible(index) {
		return None(), fmt.Errorf("commit %d: %w", index, domain.ErrCandidateHidden)
	}
	r.resolve(Chosen(index, set.At(index).Ref()))
	return r.choice, nil
}

// CommitFirstVisible chooses the lowest-index visible candidate.
// With nothing visible it returns ErrNoVisibleCandidates and stays put.
func (r *Resolver) CommitFirstVisible(set candidate.Set, vis tagfilter.Visibility) (Choice, error) {
	if r.Resolved() {
		return r.Choice(), nil
	}
	idx, ok := vis.First()
	if !ok || !set.InRange(idx) {
		return None(), domain.ErrNoVisibleCandidates
	}
	r.resolve(Chosen(idx, set.At(idx).Ref()))
	return r.choice, nil
}

func (r *Resolver) resolve(c Choice) {
	r.choice = c
	r.state = Resolved
}
