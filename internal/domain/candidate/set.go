package candidate

import "fmt"

// Set is the ordered candidate list of one session.
// Order is fixed at Reset and indexes every visibility decision.
type Set struct {
	items []Candidate
}

// NewSet builds a Set, see Reset for overrideNames handling.
func NewSet(items []Candidate, overrideNames []string) Set {
	var s Set
	s.Reset(items, overrideNames)
	return s
}

// Reset replaces all candidates. A non-empty overrideNames renames
// candidates positionally; candidates past its end keep their own name.
func (s *Set) Reset(items []Candidate, overrideNames []string) {
	s.items = make([]Candidate, len(items))
	for i, c := range items {
		if i < len(overrideNames) {
			c = c.WithName(overrideNames[i])
		}
		s.items[i] = c
	}
}

// Len returns the number of candidates.
func (s Set) Len() int { return len(s.items) }

// IsEmpty reports whether the set has no candidates.
func (s Set) IsEmpty() bool { return len(s.items) == 0 }

// InRange reports whether i is a valid index.
func (s Set) InRange(i int) bool { return i >= 0 && i < len(s.items) }

// At returns the i-th candidate. Panics when i is out of range.
func (s Set) At(i int) Candidate {
	if !s.InRange(i) {
		panic(fmt.Sprintf("candidate: index %d out of range [0, %d)", i, len(s.items)))
	}
	return s.items[i]
}

// All returns a copy of the candidates in session order.
func (s Set) All() []Candidate {
	return append([]Candidate(nil), s.items...)
}
