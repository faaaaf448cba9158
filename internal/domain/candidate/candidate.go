package candidate

// Candidate is a selectable entity snapshot (immutable value object).
// ref is opaque to the core; tags have set semantics.
type Candidate struct {
	ref    string
	name   string
	tags   []string
	tagSet map[string]struct{}
}

// New creates a Candidate. Duplicate and empty tags are dropped,
// the first occurrence order is kept for display.
func New(ref, name string, tags []string) Candidate {
	c := Candidate{ref: ref, name: name}
	if len(tags) == 0 {
		return c
	}
	c.tags = make([]string, 0, len(tags))
	c.tagSet = make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, dup := c.tagSet[t]; dup {
			continue
		}
		c.tagSet[t] = struct{}{}
		c.tags = append(c.tags, t)
	}
	return c
}

// Ref returns the caller-owned identifier.
func (c Candidate) Ref() string { return c.ref }

// Name returns the display name (may be empty).
func (c Candidate) Name() string { return c.name }

// Tags returns a copy of the candidate's distinct tags.
func (c Candidate) Tags() []string {
	if len(c.tags) == 0 {
		return nil
	}
	return append([]string(nil), c.tags...)
}

// TagCount returns the number of distinct tags.
func (c Candidate) TagCount() int { return len(c.tags) }

// HasTag reports exact, case-sensitive membership.
func (c Candidate) HasTag(tag string) bool {
	_, ok := c.tagSet[tag]
	return ok
}

// WithName returns a copy carrying a different display name.
func (c Candidate) WithName(name string) Candidate {
	c.name = name
	return c
}
