package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tagfind/internal/domain"
	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
	"github.com/kailas-cloud/tagfind/internal/domain/selection"
	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
	"github.com/kailas-cloud/tagfind/internal/domain/vocabulary"
	"github.com/kailas-cloud/tagfind/internal/logger"
	"github.com/kailas-cloud/tagfind/internal/metrics"
)

// Default limits applied when a Config field is zero.
const (
	DefaultMaxCandidates       = 10000
	DefaultMaxTagsPerCandidate = 64
	DefaultMaxRequiredTags     = 16
	DefaultMaxTagLength        = 128
	DefaultSuggestionLimit     = 5
)

// CandidateInput is one candidate as supplied by a caller.
// An empty Ref defaults to the candidate's position.
type CandidateInput struct {
	Ref  string
	Name string
	Tags []string
}

// Limits bounds what a single session may hold.
type Limits struct {
	MaxCandidates       int
	MaxTagsPerCandidate int
	MaxRequiredTags     int
	MaxTagLength        int
}

// Config configures the session service.
type Config struct {
	Limits             Limits
	EmptyFilter        tagfilter.EmptyPolicy
	SuggestionDistance int
	SuggestionLimit    int
}

func (c *Config) applyDefaults() {
	if c.Limits.MaxCandidates <= 0 {
		c.Limits.MaxCandidates = DefaultMaxCandidates
	}
	if c.Limits.MaxTagsPerCandidate <= 0 {
		c.Limits.MaxTagsPerCandidate = DefaultMaxTagsPerCandidate
	}
	if c.Limits.MaxRequiredTags <= 0 {
		c.Limits.MaxRequiredTags = DefaultMaxRequiredTags
	}
	if c.Limits.MaxTagLength <= 0 {
		c.Limits.MaxTagLength = DefaultMaxTagLength
	}
	if c.SuggestionDistance <= 0 {
		c.SuggestionDistance = vocabulary.DefaultMaxDistance
	}
	if c.SuggestionLimit <= 0 {
		c.SuggestionLimit = DefaultSuggestionLimit
	}
}

// CommitResult is the outcome of a commit request. A rejected commit is
// not an error: Committed is false and Reason tells why.
type CommitResult struct {
	Session   *domsession.Session
	Committed bool
	Reason    error
}

// Service drives find-by-tag sessions stored in a Repository.
// Operations on the same session are serialized.
type Service struct {
	repo  Repository
	cfg   Config
	locks *keyedMutex
	newID func() string
}

// New creates a session service.
func New(repo Repository, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{
		repo:  repo,
		cfg:   cfg,
		locks: newKeyedMutex(),
		newID: uuid.NewString,
	}
}

// Limits returns the effective limits.
func (s *Service) Limits() Limits { return s.cfg.Limits }

// Start validates candidates and stores a new session.
func (s *Service) Start(
	ctx context.Context, items []CandidateInput, overrideNames []string,
) (*domsession.Session, error) {
	cands, err := s.buildCandidates(items)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	sess := domsession.New(s.newID(), s.cfg.EmptyFilter)
	sess.Reset(cands, overrideNames)

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	metrics.SessionsStartedTotal.Inc()
	logger.FromContext(ctx).Debug("Session started",
		zap.String("session", sess.ID()),
		zap.Int("candidates", sess.Len()),
		zap.String("empty_filter", s.cfg.EmptyFilter.String()),
	)
	return sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*domsession.Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// AddTag requires tag in session id. An empty tag changes nothing.
func (s *Service) AddTag(ctx context.Context, id, tag string) (*domsession.Session, error) {
	if tag != "" {
		if err := s.validateTag(tag); err != nil {
			return nil, fmt.Errorf("add tag: %w", err)
		}
	}
	return s.edit(ctx, id, "add", func(sess *domsession.Session) error {
		required := sess.RequiredTags()
		if !slices.Contains(required, tag) && len(required) >= s.cfg.Limits.MaxRequiredTags {
			return fmt.Errorf("limit %d: %w", s.cfg.Limits.MaxRequiredTags, domain.ErrTooManyTags)
		}
		sess.AddTag(tag)
		return nil
	})
}

// RemoveTag stops requiring tag in session id.
func (s *Service) RemoveTag(ctx context.Context, id, tag string) (*domsession.Session, error) {
	return s.edit(ctx, id, "remove", func(sess *domsession.Session) error {
		sess.RemoveTag(tag)
		return nil
	})
}

// ClearTags drops all required tags in session id.
func (s *Service) ClearTags(ctx context.Context, id string) (*domsession.Session, error) {
	return s.edit(ctx, id, "clear", func(sess *domsession.Session) error {
		sess.ClearTags()
		return nil
	})
}

// CommitExplicit resolves session id to candidate index if it is visible.
func (s *Service) CommitExplicit(ctx context.Context, id string, index int) (CommitResult, error) {
	return s.commit(ctx, id, metrics.CommitModeExplicit, func(sess *domsession.Session) error {
		_, err := sess.CommitExplicit(index)
		return err //nolint:wrapcheck // domain sentinel reported as the commit reason
	})
}

// CommitFirstVisible resolves session id to its lowest-index visible candidate.
func (s *Service) CommitFirstVisible(ctx context.Context, id string) (CommitResult, error) {
	return s.commit(ctx, id, metrics.CommitModeFirst, func(sess *domsession.Session) error {
		_, err := sess.CommitFirstVisible()
		return err //nolint:wrapcheck // domain sentinel reported as the commit reason
	})
}

// Abandon deletes session id.
func (s *Service) Abandon(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	return nil
}

// Vocabulary returns the tags of session id, optionally filtered by prefix.
func (s *Service) Vocabulary(ctx context.Context, id, prefix string) ([]vocabulary.Entry, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	return vocabulary.Build(sess.Candidates()).WithPrefix(prefix), nil
}

// Suggest returns vocabulary tags close to tag in session id.
func (s *Service) Suggest(ctx context.Context, id, tag string) ([]vocabulary.Suggestion, error) {
	if err := s.validateTag(tag); err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	voc := vocabulary.Build(sess.Candidates())
	return voc.Suggest(tag, s.cfg.SuggestionDistance, s.cfg.SuggestionLimit), nil
}

func (s *Service) edit(
	ctx context.Context, id, op string, fn func(sess *domsession.Session) error,
) (*domsession.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	ctx = logger.With(ctx, zap.String("session", id))

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s tag: %w", op, err)
	}

	rev := sess.Revision()
	start := time.Now()
	if err := fn(sess); err != nil {
		return nil, fmt.Errorf("%s tag: %w", op, err)
	}
	if sess.Revision() == rev {
		return sess, nil
	}
	metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	metrics.VisibleCandidates.Observe(float64(sess.Visibility().Count()))

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s tag: %w", op, err)
	}

	logger.FromContext(ctx).Debug("Required tags changed",
		zap.String("op", op),
		zap.Strings("required_tags", sess.RequiredTags()),
		zap.Int("visible", sess.Visibility().Count()),
	)
	return sess, nil
}

func (s *Service) commit(
	ctx context.Context, id, mode string, fn func(sess *domsession.Session) error,
) (CommitResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	ctx = logger.With(ctx, zap.String("session", id))

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return CommitResult{}, fmt.Errorf("commit: %w", err)
	}

	wasResolved := sess.State() == selection.Resolved
	if err := fn(sess); err != nil {
		if !isRejection(err) {
			return CommitResult{}, fmt.Errorf("commit: %w", err)
		}
		metrics.CommitsTotal.WithLabelValues(mode, metrics.CommitOutcomeRejected).Inc()
		logger.FromContext(ctx).Debug("Commit rejected",
			zap.String("mode", mode),
			zap.Error(err),
		)
		return CommitResult{Session: sess, Reason: err}, nil
	}

	if wasResolved {
		metrics.CommitsTotal.WithLabelValues(mode, metrics.CommitOutcomeRepeated).Inc()
		return CommitResult{Session: sess, Committed: true}, nil
	}

	if err := s.repo.Save(ctx, sess); err != nil {
		return CommitResult{}, fmt.Errorf("commit: %w", err)
	}
	metrics.CommitsTotal.WithLabelValues(mode, metrics.CommitOutcomeResolved).Inc()
	logger.FromContext(ctx).Info("Session resolved",
		zap.String("mode", mode),
		zap.Int("index", sess.Choice().Index()),
		zap.String("ref", sess.Choice().Ref()),
	)
	return CommitResult{Session: sess, Committed: true}, nil
}

func (s *Service) buildCandidates(items []CandidateInput) ([]candidate.Candidate, error) {
	if len(items) > s.cfg.Limits.MaxCandidates {
		return nil, fmt.Errorf("%d candidates exceeds limit %d: %w",
			len(items), s.cfg.Limits.MaxCandidates, domain.ErrInvalidCandidates)
	}
	out := make([]candidate.Candidate, 0, len(items))
	for i, it := range items {
		for _, t := range it.Tags {
			if t == "" {
				continue
			}
			if err := s.validateTag(t); err != nil {
				return nil, fmt.Errorf("candidate %d: %w: %w", i, domain.ErrInvalidCandidates, err)
			}
		}
		ref := it.Ref
		if ref == "" {
			ref = strconv.Itoa(i)
		}
		c := candidate.New(ref, it.Name, it.Tags)
		if c.TagCount() > s.cfg.Limits.MaxTagsPerCandidate {
			return nil, fmt.Errorf("candidate %d has %d tags, limit %d: %w",
				i, c.TagCount(), s.cfg.Limits.MaxTagsPerCandidate, domain.ErrInvalidCandidates)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) validateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("empty tag: %w", domain.ErrInvalidTag)
	}
	if n := utf8.RuneCountInString(tag); n > s.cfg.Limits.MaxTagLength {
		return fmt.Errorf("tag length %d exceeds %d: %w", n, s.cfg.Limits.MaxTagLength, domain.ErrInvalidTag)
	}
	if !utf8.ValidString(tag) {
		return fmt.Errorf("tag is not valid utf-8: %w", domain.ErrInvalidTag)
	}
	for _, r := range tag {
		if unicode.IsControl(r) {
			return fmt.Errorf("tag contains control characters: %w", domain.ErrInvalidTag)
		}
	}
	return nil
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidIndex) ||
		errors.Is(err, domain.ErrCandidateHidden) ||
		errors.Is(err, domain.ErrNoVisibleCandidates)
}
