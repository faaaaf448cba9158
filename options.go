package tagfind

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// EmptyFilter decides what is visible while no tag is required.
type EmptyFilter int

const (
	// HideAll hides every entity until a tag is required.
	HideAll EmptyFilter = iota
	// ShowAll shows every entity until a tag is required.
	ShowAll
)

// Option configures a Session.
type Option interface {
	apply(*sessionConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*sessionConfig)

func (f optionFunc) apply(c *sessionConfig) { f(c) }

type sessionConfig struct {
	emptyFilter EmptyFilter
	maxDistance int
	maxSuggest  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmptyFilter sets the visibility of entities while no tag is required.
// Default: HideAll.
func WithEmptyFilter(f EmptyFilter) Option {
	return optionFunc(func(c *sessionConfig) {
		c.emptyFilter = f
	})
}

// WithSuggestions sets the maximum edit distance and count of tag suggestions.
// Defaults: distance 2, limit 5.
func WithSuggestions(maxDistance, limit int) Option {
	return optionFunc(func(c *sessionConfig) {
		c.maxDistance = maxDistance
		c.maxSuggest = limit
	})
}

// WithLogger enables structured logging for session operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *sessionConfig) {
		c.logger = l
	})
}

// WithPrometheus registers session metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *sessionConfig) {
		c.metricsReg = reg
	})
}
