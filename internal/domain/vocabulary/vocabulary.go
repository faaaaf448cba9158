package vocabulary

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
)

// DefaultMaxDistance is the default edit distance for suggestions.
const DefaultMaxDistance = 2

// Entry is one distinct tag and the number of candidates carrying it.
type Entry struct {
	Tag   string
	Count int
}

// Suggestion is a vocabulary tag close to a misspelled input.
type Suggestion struct {
	Tag      string
	Count    int
	Distance int
}

// Vocabulary is the set of tags used by a candidate set.
type Vocabulary struct {
	entries []Entry
	counts  map[string]int
}

// Build collects the distinct tags of set, most used first, ties by name.
func Build(set candidate.Set) Vocabulary {
	counts := make(map[string]int)
	for i := 0; i < set.Len(); i++ {
		for _, t := range set.At(i).Tags() {
			counts[t]++
		}
	}
	entries := make([]Entry, 0, len(counts))
	for t, n := range counts {
		entries = append(entries, Entry{Tag: t, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Tag < entries[j].Tag
	})
	return Vocabulary{entries: entries, counts: counts}
}

// Len returns the number of distinct tags.
func (v Vocabulary) Len() int { return len(v.entries) }

// Count returns how many candidates carry tag.
func (v Vocabulary) Count(tag string) int { return v.counts[tag] }

// Contains reports whether any candidate carries tag.
func (v Vocabulary) Contains(tag string) bool { return v.counts[tag] > 0 }

// Entries returns every entry in vocabulary order.
func (v Vocabulary) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

// WithPrefix returns entries whose tag starts with prefix, ignoring case.
// This is for completion only: filtering itself stays exact.
func (v Vocabulary) WithPrefix(prefix string) []Entry {
	if prefix == "" {
		return v.Entries()
	}
	p := strings.ToLower(prefix)
	out := make([]Entry, 0)
	for _, e := range v.entries {
		if strings.HasPrefix(strings.ToLower(e.Tag), p) {
			out = append(out, e)
		}
	}
	return out
}

// Suggest returns vocabulary tags within maxDistance edits of tag,
// closest first. Case-only differences count as distance 0. The exact tag
// itself is never suggested. limit <= 0 means no limit.
func (v Vocabulary) Suggest(tag string, maxDistance, limit int) []Suggestion {
	if tag == "" {
		return nil
	}
	if maxDistance < 0 {
		maxDistance = DefaultMaxDistance
	}
	lower := strings.ToLower(tag)
	out := make([]Suggestion, 0)
	for _, e := range v.entries {
		if e.Tag == tag {
			continue
		}
		d := levenshtein.ComputeDistance(lower, strings.ToLower(e.Tag))
		if d > maxDistance {
			continue
		}
		out = append(out, Suggestion{Tag: e.Tag, Count: e.Count, Distance: d})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
