package session

import (
	"time"

	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
	"github.com/kailas-cloud/tagfind/internal/domain/selection"
	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
)

// Session is one find-by-tag interaction: candidates, required tags and
// the resolved choice. It is not safe for concurrent use.
type Session struct {
	id         string
	candidates candidate.Set
	engine     *tagfilter.Engine
	resolver   selection.Resolver
	visibility tagfilter.Visibility
	revision   int
	createdAt  int64
}

// New creates an empty session. Call Reset to load candidates.
func New(id string, policy tagfilter.EmptyPolicy) *Session {
	s := &Session{
		id:        id,
		engine:    tagfilter.NewEngine(policy),
		createdAt: time.Now().Unix(),
	}
	s.recompute()
	return s
}

// Reconstruct hydrates a session from storage without validation.
// Visibility is recomputed, never stored.
func Reconstruct(
	id string, policy tagfilter.EmptyPolicy,
	candidates []candidate.Candidate, required []string,
	state selection.State, choice selection.Choice,
	revision int, createdAt int64,
) *Session {
	s := &Session{
		id:         id,
		candidates: candidate.NewSet(candidates, nil),
		engine:     tagfilter.NewEngine(policy),
		resolver:   selection.Reconstruct(state, choice),
		revision:   revision,
		createdAt:  createdAt,
	}
	for _, t := range required {
		s.engine.Add(t)
	}
	s.recompute()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Revision returns the mutation counter.
func (s *Session) Revision() int { return s.revision }

// CreatedAt returns the creation time as a unix timestamp.
func (s *Session) CreatedAt() int64 { return s.createdAt }

// Policy returns the empty filter policy.
func (s *Session) Policy() tagfilter.EmptyPolicy { return s.engine.Policy() }

// Reset starts over with a new candidate list: required tags and the
// choice are cleared. An empty list gives a session where nothing can
// ever be committed.
func (s *Session) Reset(items []candidate.Candidate, overrideNames []string) tagfilter.Visibility {
	s.candidates.Reset(items, overrideNames)
	s.engine = tagfilter.NewEngine(s.engine.Policy())
	s.resolver = selection.Resolver{}
	s.revision++
	s.recompute()
	return s.visibility
}

// Candidates returns the candidate set.
func (s *Session) Candidates() candidate.Set { return s.candidates }

// Len returns the number of candidates.
func (s *Session) Len() int { return s.candidates.Len() }

// At returns candidate i. Panics when i is out of range.
func (s *Session) At(i int) candidate.Candidate { return s.candidates.At(i) }

// RequiredTags returns the required tags in insertion order.
func (s *Session) RequiredTags() []string { return s.engine.Required().Tags() }

// AddTag requires tag and recomputes visibility.
func (s *Session) AddTag(tag string) tagfilter.Visibility {
	return s.edit(func(e *tagfilter.Engine) bool { return e.Add(tag) })
}

// RemoveTag stops requiring tag and recomputes visibility.
func (s *Session) RemoveTag(tag string) tagfilter.Visibility {
	return s.edit(func(e *tagfilter.Engine) bool { return e.Remove(tag) })
}

// ClearTags drops every required tag and recomputes visibility.
func (s *Session) ClearTags() tagfilter.Visibility {
	return s.edit(func(e *tagfilter.Engine) bool { return e.Clear() })
}

// Visibility returns the visibility for the current required tags.
func (s *Session) Visibility() tagfilter.Visibility { return s.visibility }

// CanCommit reports whether an implicit commit would resolve the session.
func (s *Session) CanCommit() bool {
	return !s.resolver.Resolved() && s.visibility.Count() > 0
}

// State returns the selection state.
func (s *Session) State() selection.State { return s.resolver.State() }

// Choice returns the resolved choice, None until resolved.
func (s *Session) Choice() selection.Choice { return s.resolver.Choice() }

// CommitExplicit resolves to candidate index if it is visible.
func (s *Session) CommitExplicit(index int) (selection.Choice, error) {
	wasResolved := s.resolver.Resolved()
	c, err := s.resolver.CommitExplicit(s.candidates, s.visibility, index)
	if err == nil && !wasResolved {
		s.revision++
	}
	return c, err
}

// CommitFirstVisible resolves to the lowest-index visible candidate.
func (s *Session) CommitFirstVisible() (selection.Choice, error) {
	wasResolved := s.resolver.Resolved()
	c, err := s.resolver.CommitFirstVisible(s.candidates, s.visibility)
	if err == nil && !wasResolved {
		s.revision++
	}
	return c, err
}

// edit applies a tag mutation unless the session is resolved. The revision
// moves only when the required tags or the state actually changed.
func (s *Session) edit(fn func(e *tagfilter.Engine) bool) tagfilter.Visibility {
	if s.resolver.Resolved() {
		return s.visibility
	}
	before := s.resolver.State()
	s.resolver.Touch()
	if !fn(s.engine) && s.resolver.State() == before {
		return s.visibility
	}
	s.revision++
	s.recompute()
	return s.visibility
}

func (s *Session) recompute() {
	s.visibility = s.engine.Recompute(s.candidates)
}
