package production

import (
	"context"
	"fmt"
	"path"
	"strings"

	"slate/internal/tracker"
)

// FromPath reconstructs a Context from a filesystem path by walking it
// upward and collecting every entity the path cache knows along the way.
// The closest-to-leaf entity of each recognized type wins; an entity of
// an unrecognized type becomes the primary entity, and further such
// entities of other types become additional entities.
//
// A previous context may be supplied to backfill a missing step or task:
// when the new path resolves to the same primary and additional entities
// as previous, its step and task carry over. This keeps an inferred task
// alive across sibling file operations.
func FromPath(ctx context.Context, store PathStore, roots []string, fullPath string, previous *Context) (*Context, error) {
	var p Params

	cur := normalizePath(fullPath)
	for cur != "" {
		ref, err := store.GetEntity(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%w: path cache lookup for %q: %v", ErrResolution, cur, err)
		}
		if ref != nil {
			assignEntity(&p, *ref)
		}
		if isRoot(cur, roots) {
			break
		}
		parent := path.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	if previous != nil && (p.Step == nil || p.Task == nil) {
		candidate := NewContext(p)
		if refsEqual(candidate.entity, previous.entity) && additionalEqual(candidate.additional, previous.additional) {
			if p.Step == nil {
				p.Step = previous.Step()
			}
			if p.Task == nil {
				p.Task = previous.Task()
			}
		}
	}

	return NewContext(p), nil
}

func assignEntity(p *Params, ref tracker.EntityRef) {
	switch ref.Type {
	case TypeProject:
		if p.Project == nil {
			p.Project = &ref
		}
	case TypeStep:
		if p.Step == nil {
			p.Step = &ref
		}
	case TypeTask:
		if p.Task == nil {
			p.Task = &ref
		}
	case TypeUser:
		if p.User == nil {
			p.User = &ref
		}
	default:
		if p.Entity == nil {
			p.Entity = &ref
			return
		}
		if ref.Type == p.Entity.Type {
			return
		}
		for _, existing := range p.Additional {
			if existing.Type == ref.Type {
				return
			}
		}
		p.Additional = append(p.Additional, ref)
	}
}

func additionalEqual(a, b []tracker.EntityRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isRoot(candidate string, roots []string) bool {
	for _, root := range roots {
		if strings.EqualFold(candidate, normalizePath(root)) {
			return true
		}
	}
	return false
}
