package tagfilter

import "github.com/kailas-cloud/tagfind/internal/domain/candidate"

// Visibility is the per-candidate visibility vector plus its visible count.
// It is always derived from a (candidate.Set, Required) pair.
type Visibility struct {
	flags   []bool
	visible int
}

// Len returns the number of candidates covered.
func (v Visibility) Len() int { return len(v.flags) }

// Count returns the number of visible candidates.
func (v Visibility) Count() int { return v.visible }

// Visible reports whether candidate i is visible. Out of range is false.
func (v Visibility) Visible(i int) bool {
	return i >= 0 && i < len(v.flags) && v.flags[i]
}

// First returns the lowest visible index.
func (v Visibility) First() (int, bool) {
	for i, ok := range v.flags {
		if ok {
			return i, true
		}
	}
	return -1, false
}

// Flags returns a copy of the visibility vector.
func (v Visibility) Flags() []bool {
	return append([]bool(nil), v.flags...)
}

// Indexes returns the visible indexes in ascending order.
func (v Visibility) Indexes() []int {
	out := make([]int, 0, v.visible)
	for i, ok := range v.flags {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// Engine owns the required tag set and recomputes visibility from scratch.
type Engine struct {
	required Required
	policy   EmptyPolicy
}

// NewEngine creates an Engine with an empty required set.
func NewEngine(policy EmptyPolicy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the empty filter policy.
func (e *Engine) Policy() EmptyPolicy { return e.policy }

// Add requires tag. No-op for empty or duplicate tags.
func (e *Engine) Add(tag string) bool { return e.required.Add(tag) }

// Remove stops requiring tag.
func (e *Engine) Remove(tag string) bool { return e.required.Remove(tag) }

// Clear drops every required tag.
func (e *Engine) Clear() bool { return e.required.Clear() }

// Required returns the current required set.
func (e *Engine) Required() Required { return e.required }

// Recompute evaluates every candidate against the required set.
func (e *Engine) Recompute(set candidate.Set) Visibility {
	return Compute(set, e.required, e.policy)
}

// Compute is the pure visibility function.
// With no required tag the policy decides; otherwise a candidate is visible
// iff it carries every required tag.
func Compute(set candidate.Set, required Required, policy EmptyPolicy) Visibility {
	v := Visibility{flags: make([]bool, set.Len())}
	for i := range v.flags {
		var ok bool
		if required.IsEmpty() {
			ok = policy == ShowAll
		} else {
			ok = Matches(set.At(i), required.tags)
		}
		if ok {
			v.flags[i] = true
			v.visible++
		}
	}
	return v
}

// Matches reports whether c carries every tag in required (AND semantics).
func Matches(c candidate.Candidate, required []string) bool {
	for _, t := range required {
		if !c.HasTag(t) {
			return false
		}
	}
	return true
}
