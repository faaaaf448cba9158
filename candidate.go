package tagfind

import (
	"strconv"

	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
)

// Candidate is what a Session needs to know about one entity.
// An empty Ref defaults to the entity's position in the list.
type Candidate struct {
	Ref  string
	Name string
	Tags []string
}

// Taggable is implemented by entities that describe themselves.
type Taggable interface {
	TagfindName() string
	TagfindTags() []string
}

// FromTaggable returns a describe func for entities implementing Taggable.
func FromTaggable[T Taggable]() func(T) Candidate {
	return func(item T) Candidate {
		return Candidate{Name: item.TagfindName(), Tags: item.TagfindTags()}
	}
}

func (c Candidate) toDomain(index int) candidate.Candidate {
	ref := c.Ref
	if ref == "" {
		ref = strconv.Itoa(index)
	}
	return candidate.New(ref, c.Name, c.Tags)
}
