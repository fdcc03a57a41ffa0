package templates

import (
	"fmt"
	"sort"
	"strings"
)

// Set is the registry of every key and template loaded from a
// definitions file. Lookups are by template name; TemplateFromPath goes
// the other way, from a concrete path to the unique template matching
// it.
type Set struct {
	keys        map[string]Key // by placeholder name
	pathOrder   []string
	stringOrder []string
	paths       map[string]*Template
	strs        map[string]*Template
}

// Keys returns the loaded keys indexed by their placeholder names.
func (s *Set) Keys() map[string]Key {
	out := make(map[string]Key, len(s.keys))
	for name, key := range s.keys {
		out[name] = key
	}
	return out
}

// Template looks a template up by name, path templates first.
func (s *Set) Template(name string) (*Template, bool) {
	if t, ok := s.paths[name]; ok {
		return t, true
	}
	t, ok := s.strs[name]
	return t, ok
}

// PathTemplate looks up a path template by name.
func (s *Set) PathTemplate(name string) (*Template, error) {
	t, ok := s.paths[name]
	if !ok {
		return nil, fmt.Errorf("%w: no path template named %q", ErrDefinition, name)
	}
	return t, nil
}

// PathTemplates lists path templates sorted by name.
func (s *Set) PathTemplates() []*Template {
	out := make([]*Template, 0, len(s.pathOrder))
	for _, name := range s.pathOrder {
		out = append(out, s.paths[name])
	}
	return out
}

// StringTemplates lists string templates sorted by name.
func (s *Set) StringTemplates() []*Template {
	out := make([]*Template, 0, len(s.stringOrder))
	for _, name := range s.stringOrder {
		out = append(out, s.strs[name])
	}
	return out
}

// TemplateFromPath returns the single path template matching path. More
// than one match is an error naming every candidate, so callers never
// operate on an arbitrary pick.
func (s *Set) TemplateFromPath(path string) (*Template, error) {
	var matches []string
	for _, name := range s.pathOrder {
		if s.paths[name].Matches(path, nil, nil) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: path %q does not match any template", ErrNoMatch, path)
	case 1:
		return s.paths[matches[0]], nil
	default:
		sort.Strings(matches)
		return nil, fmt.Errorf("%w: path %q matches multiple templates: %s",
			ErrAmbiguous, path, strings.Join(matches, ", "))
	}
}

func (s *Set) finalize() {
	s.pathOrder = s.pathOrder[:0]
	for name := range s.paths {
		s.pathOrder = append(s.pathOrder, name)
	}
	sort.Strings(s.pathOrder)
	s.stringOrder = s.stringOrder[:0]
	for name := range s.strs {
		s.stringOrder = append(s.stringOrder, name)
	}
	sort.Strings(s.stringOrder)
}
