package tagfind

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
	"github.com/kailas-cloud/tagfind/internal/domain/selection"
	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
	"github.com/kailas-cloud/tagfind/internal/domain/vocabulary"
)

const defaultSuggestionLimit = 5

// State is the selection state of a Session.
type State string

// Session states.
const (
	StateIdle      State = "idle"
	StateFiltering State = "filtering"
	StateResolved  State = "resolved"
)

// Visibility tells which entities match the required tags.
type Visibility struct {
	inner tagfilter.Visibility
}

// Len returns the number of entities.
func (v Visibility) Len() int { return v.inner.Len() }

// Count returns the number of visible entities.
func (v Visibility) Count() int { return v.inner.Count() }

// Visible reports whether entity i is visible. Out of range is false.
func (v Visibility) Visible(i int) bool { return v.inner.Visible(i) }

// Indexes returns the visible positions in ascending order.
func (v Visibility) Indexes() []int { return v.inner.Indexes() }

// Flags returns one flag per entity.
func (v Visibility) Flags() []bool { return v.inner.Flags() }

// TagCount is a tag with the number of entities carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// Suggestion is a known tag close to a requested one.
type Suggestion struct {
	Tag      string
	Count    int
	Distance int
}

// Session narrows a list of T by required tags and resolves one of them.
// It is not safe for concurrent use.
type Session[T any] struct {
	describe func(T) Candidate
	items    []T
	inner    *domsession.Session
	cfg      sessionConfig
	obs      *observer
}

// New creates a Session using describe to read each entity's name and tags.
func New[T any](describe func(T) Candidate, opts ...Option) (*Session[T], error) {
	if describe == nil {
		return nil, errors.New("tagfind: describe func is required")
	}

	cfg := sessionConfig{
		maxDistance: vocabulary.DefaultMaxDistance,
		maxSuggest:  defaultSuggestionLimit,
	}
	for _, o := range opts {
		o.apply(&cfg)
	}

	var policy tagfilter.EmptyPolicy
	switch cfg.emptyFilter {
	case HideAll:
		policy = tagfilter.HideAll
	case ShowAll:
		policy = tagfilter.ShowAll
	default:
		return nil, fmt.Errorf("tagfind: unknown empty filter %d", cfg.emptyFilter)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Session[T]{
		describe: describe,
		inner:    domsession.New(uuid.NewString(), policy),
		cfg:      cfg,
		obs:      obs,
	}, nil
}

// NewTagged creates a Session for a struct type T carrying tagfind struct
// tags: one `tagfind:"tags"` field ([]string, or a string split on commas
// or on `tagfind:"tags,sep=;"`), and optional `tagfind:"name"` and
// `tagfind:"ref"` fields.
func NewTagged[T any](opts ...Option) (*Session[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	return New(func(item T) Candidate { return meta.toCandidate(item) }, opts...)
}

// ID returns the session identifier used in logs.
func (s *Session[T]) ID() string { return s.inner.ID() }

// Reset replaces the entities and starts over: required tags and the
// choice are cleared. overrideNames[i], when present, is the display name
// of entity i.
func (s *Session[T]) Reset(items []T, overrideNames []string) Visibility {
	s.items = slices.Clone(items)
	cands := make([]candidate.Candidate, len(items))
	for i, item := range items {
		cands[i] = s.describe(item).toDomain(i)
	}

	start := time.Now()
	vis := s.inner.Reset(cands, overrideNames)
	s.obs.edited(s.ID(), "reset", start, statusOK, vis.Count())
	return Visibility{inner: vis}
}

// Len returns the number of entities.
func (s *Session[T]) Len() int { return len(s.items) }

// At returns entity i. Panics when i is out of range.
func (s *Session[T]) At(i int) T {
	_ = s.inner.At(i)
	return s.items[i]
}

// Name returns the display name of entity i. Panics when i is out of range.
func (s *Session[T]) Name(i int) string { return s.inner.At(i).Name() }

// AddTag requires tag. Adding a present or empty tag changes nothing.
func (s *Session[T]) AddTag(tag string) Visibility {
	return s.edit("add_tag", func() tagfilter.Visibility { return s.inner.AddTag(tag) })
}

// RemoveTag stops requiring tag.
func (s *Session[T]) RemoveTag(tag string) Visibility {
	return s.edit("remove_tag", func() tagfilter.Visibility { return s.inner.RemoveTag(tag) })
}

// ClearTags drops every required tag.
func (s *Session[T]) ClearTags() Visibility {
	return s.edit("clear_tags", s.inner.ClearTags)
}

// RequiredTags returns the required tags in the order they were added.
func (s *Session[T]) RequiredTags() []string { return s.inner.RequiredTags() }

// Visibility returns the visibility for the current required tags.
func (s *Session[T]) Visibility() Visibility { return Visibility{inner: s.inner.Visibility()} }

// CanCommit reports whether CommitFirstVisible would resolve the session.
func (s *Session[T]) CanCommit() bool { return s.inner.CanCommit() }

// State returns the selection state.
func (s *Session[T]) State() State { return State(s.inner.State().String()) }

// CommitExplicit resolves the session to entity index. It fails with
// ErrInvalidIndex or ErrCandidateHidden and leaves the session unchanged.
// On a resolved session it returns the existing choice.
func (s *Session[T]) CommitExplicit(index int) (T, error) {
	start := time.Now()
	ch, err := s.inner.CommitExplicit(index)
	s.obs.committed(s.ID(), "commit_explicit", start, err)
	if err != nil {
		var zero T
		return zero, err //nolint:wrapcheck // sentinel is part of the API
	}
	return s.items[ch.Index()], nil
}

// CommitFirstVisible resolves the session to the lowest-index visible
// entity. It reports false when nothing is visible.
func (s *Session[T]) CommitFirstVisible() (T, bool) {
	start := time.Now()
	ch, err := s.inner.CommitFirstVisible()
	s.obs.committed(s.ID(), "commit_first_visible", start, err)
	if err != nil {
		var zero T
		return zero, false
	}
	return s.items[ch.Index()], true
}

// Choice returns the resolved entity and its index.
func (s *Session[T]) Choice() (T, int, bool) {
	ch := s.inner.Choice()
	if s.inner.State() != selection.Resolved || ch.IsNone() {
		var zero T
		return zero, -1, false
	}
	return s.items[ch.Index()], ch.Index(), true
}

// Vocabulary returns the tags of the current entities, most used first,
// filtered by a case-insensitive prefix.
func (s *Session[T]) Vocabulary(prefix string) []TagCount {
	entries := vocabulary.Build(s.inner.Candidates()).WithPrefix(prefix)
	out := make([]TagCount, len(entries))
	for i, e := range entries {
		out[i] = TagCount{Tag: e.Tag, Count: e.Count}
	}
	return out
}

// Suggest returns known tags within the configured edit distance of tag.
func (s *Session[T]) Suggest(tag string) []Suggestion {
	sugg := vocabulary.Build(s.inner.Candidates()).Suggest(tag, s.cfg.maxDistance, s.cfg.maxSuggest)
	out := make([]Suggestion, len(sugg))
	for i, sg := range sugg {
		out[i] = Suggestion{Tag: sg.Tag, Count: sg.Count, Distance: sg.Distance}
	}
	return out
}

func (s *Session[T]) edit(op string, fn func() tagfilter.Visibility) Visibility {
	status := statusOK
	if s.inner.State() == selection.Resolved {
		status = statusIgnored
	}
	start := time.Now()
	vis := fn()
	s.obs.edited(s.ID(), op, start, status, vis.Count())
	return Visibility{inner: vis}
}
