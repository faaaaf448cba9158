package tagfilter

// Required is the ordered, duplicate-free set of tags a candidate must carry.
type Required struct {
	tags []string
}

// NewRequired builds a Required set, applying Add to every tag in order.
func NewRequired(tags ...string) Required {
	var r Required
	for _, t := range tags {
		r.Add(t)
	}
	return r
}

// Add appends tag. Returns false for empty or already present tags.
func (r *Required) Add(tag string) bool {
	if tag == "" || r.Contains(tag) {
		return false
	}
	r.tags = append(r.tags, tag)
	return true
}

// Remove drops tag keeping the order of the rest. Returns false if absent.
func (r *Required) Remove(tag string) bool {
	for i, t := range r.tags {
		if t == tag {
			r.tags = append(r.tags[:i:i], r.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the set. Returns false if it was already empty.
func (r *Required) Clear() bool {
	if len(r.tags) == 0 {
		return false
	}
	r.tags = nil
	return true
}

// Contains reports exact membership.
func (r Required) Contains(tag string) bool {
	for _, t := range r.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Len returns the number of required tags.
func (r Required) Len() int { return len(r.tags) }

// IsEmpty reports whether no tag is required.
func (r Required) IsEmpty() bool { return len(r.tags) == 0 }

// Tags returns a copy of the required tags in insertion order.
func (r Required) Tags() []string {
	if len(r.tags) == 0 {
		return nil
	}
	return append([]string(nil), r.tags...)
}
