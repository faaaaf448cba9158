package tagfind

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "tagfind"

// schemaMeta holds parsed struct tag metadata.
type schemaMeta struct {
	typ     reflect.Type
	refIdx  int // -1 if not present
	nameIdx int // -1 if not present
	tagsIdx int
	// tagsSep splits string tag fields; empty for []string fields.
	tagsSep string
}

// parseSchema reflects on T and extracts tagfind struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("tagfind: type parameter is an interface")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tagfind: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, refIdx: -1, nameIdx: -1, tagsIdx: -1}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if meta.tagsIdx == -1 {
		return nil, fmt.Errorf("tagfind: no field with `tagfind:\"tags\"` tag in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's tagfind tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	role, modifier, _ := strings.Cut(tag, ",")

	switch role {
	case "ref":
		if meta.refIdx != -1 {
			return fmt.Errorf("tagfind: duplicate ref tag on field %s", f.Name)
		}
		meta.refIdx = idx
	case "name":
		if meta.nameIdx != -1 {
			return fmt.Errorf("tagfind: duplicate name tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("tagfind: name field %s must be a string", f.Name)
		}
		meta.nameIdx = idx
	case "tags":
		if meta.tagsIdx != -1 {
			return fmt.Errorf("tagfind: duplicate tags tag on field %s", f.Name)
		}
		switch {
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.String:
			if modifier != "" {
				return fmt.Errorf("tagfind: separator on slice field %s", f.Name)
			}
		case f.Type.Kind() == reflect.String:
			meta.tagsSep = ","
			if sep, ok := strings.CutPrefix(modifier, "sep="); ok && sep != "" {
				meta.tagsSep = sep
			}
		default:
			return fmt.Errorf("tagfind: tags field %s must be []string or string", f.Name)
		}
		meta.tagsIdx = idx
	default:
		return fmt.Errorf("tagfind: unknown role %q on field %s", role, f.Name)
	}
	return nil
}

// toCandidate converts a typed struct to a Candidate using schema metadata.
func (m *schemaMeta) toCandidate(item any) Candidate {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return Candidate{}
		}
		v = v.Elem()
	}

	var c Candidate
	if m.refIdx != -1 {
		c.Ref = fmt.Sprint(v.Field(m.refIdx).Interface())
	}
	if m.nameIdx != -1 {
		c.Name = v.Field(m.nameIdx).String()
	}

	tv := v.Field(m.tagsIdx)
	if m.tagsSep != "" {
		for _, t := range strings.Split(tv.String(), m.tagsSep) {
			if t = strings.TrimSpace(t); t != "" {
				c.Tags = append(c.Tags, t)
			}
		}
		return c
	}
	c.Tags = make([]string, tv.Len())
	for i := 0; i < tv.Len(); i++ {
		c.Tags[i] = tv.Index(i).String()
	}
	return c
}
