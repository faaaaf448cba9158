// Package tagfind narrows an ordered list of tagged entities by required
// tags and resolves exactly one of them.
//
// A Session holds the caller's entities, the tags the user requires and
// the choice. Every tag edit returns a fresh Visibility: an entity is
// visible when it carries all required tags (exact, case-sensitive).
// With no required tags nothing is visible unless WithEmptyFilter(ShowAll)
// is set.
//
// # Adapter API
//
//	s, _ := tagfind.New(func(o Outline) tagfind.Candidate {
//	    return tagfind.Candidate{Name: o.Title, Tags: o.Tags}
//	})
//	s.Reset(outlines, nil)
//	vis := s.AddTag("golang")
//	if vis.Count() > 0 {
//	    chosen, _ := s.CommitFirstVisible()
//	}
//
// # Struct tag API
//
//	type Outline struct {
//	    Key   string   `tagfind:"ref"`
//	    Title string   `tagfind:"name"`
//	    Tags  []string `tagfind:"tags"`
//	}
//
//	s, _ := tagfind.NewTagged[Outline]()
package tagfind
