package production

import (
	"fmt"
	"strings"

	"slate/internal/tracker"
)

// Entity types with dedicated context fields. Any other cached entity
// type becomes the context's primary entity or an additional entity.
const (
	TypeProject = "Project"
	TypeStep    = "Step"
	TypeTask    = "Task"
	TypeUser    = "HumanUser"
)

// Params collects the entities a Context is built from.
type Params struct {
	Project    *tracker.EntityRef
	Entity     *tracker.EntityRef
	Step       *tracker.EntityRef
	Task       *tracker.EntityRef
	User       *tracker.EntityRef
	Additional []tracker.EntityRef
}

// Context is an immutable bundle of tracker entities describing what a
// piece of work relates to. Copies of the entity refs are taken at
// construction; a Context is safe to share read-only across goroutines.
type Context struct {
	project    *tracker.EntityRef
	entity     *tracker.EntityRef
	step       *tracker.EntityRef
	task       *tracker.EntityRef
	user       *tracker.EntityRef
	additional []tracker.EntityRef
}

// NewContext builds a Context from the given entities.
func NewContext(p Params) *Context {
	c := &Context{
		project: cloneRef(p.Project),
		entity:  cloneRef(p.Entity),
		step:    cloneRef(p.Step),
		task:    cloneRef(p.Task),
		user:    cloneRef(p.User),
	}
	if len(p.Additional) > 0 {
		c.additional = make([]tracker.EntityRef, len(p.Additional))
		copy(c.additional, p.Additional)
	}
	return c
}

// Empty returns a Context with no entities.
func Empty() *Context {
	return &Context{}
}

// FromEntity builds a Context around a single primary entity and an
// optional project.
func FromEntity(entity tracker.EntityRef, project *tracker.EntityRef) *Context {
	return NewContext(Params{Project: project, Entity: &entity})
}

func (c *Context) Project() *tracker.EntityRef { return cloneRef(c.project) }
func (c *Context) Entity() *tracker.EntityRef  { return cloneRef(c.entity) }
func (c *Context) Step() *tracker.EntityRef    { return cloneRef(c.step) }
func (c *Context) Task() *tracker.EntityRef    { return cloneRef(c.task) }
func (c *Context) User() *tracker.EntityRef    { return cloneRef(c.user) }

// AdditionalEntities returns a copy of the additional entity list.
func (c *Context) AdditionalEntities() []tracker.EntityRef {
	if len(c.additional) == 0 {
		return nil
	}
	out := make([]tracker.EntityRef, len(c.additional))
	copy(out, c.additional)
	return out
}

// IsEmpty reports whether the context carries no entities at all.
func (c *Context) IsEmpty() bool {
	return c.project == nil && c.entity == nil && c.step == nil &&
		c.task == nil && c.user == nil && len(c.additional) == 0
}

// Equal reports whether two contexts reference the same entities. The
// additional entity comparison is order sensitive.
func (c *Context) Equal(other *Context) bool {
	if c == nil || other == nil {
		return c == other
	}
	if !refsEqual(c.project, other.project) ||
		!refsEqual(c.entity, other.entity) ||
		!refsEqual(c.step, other.step) ||
		!refsEqual(c.task, other.task) ||
		!refsEqual(c.user, other.user) {
		return false
	}
	if len(c.additional) != len(other.additional) {
		return false
	}
	for i := range c.additional {
		if c.additional[i] != other.additional[i] {
			return false
		}
	}
	return true
}

func (c *Context) String() string {
	var parts []string
	for _, pair := range []struct {
		label string
		ref   *tracker.EntityRef
	}{
		{"project", c.project},
		{"entity", c.entity},
		{"step", c.step},
		{"task", c.task},
		{"user", c.user},
	} {
		if pair.ref != nil {
			parts = append(parts, fmt.Sprintf("%s=%s", pair.label, pair.ref))
		}
	}
	if len(parts) == 0 {
		return "Context(empty)"
	}
	return "Context(" + strings.Join(parts, " ") + ")"
}

// knownEntities flattens the context into a type-keyed entity map. The
// primary entity, step, task, and project take precedence over
// additional entities; among additional entities the first of a type
// wins.
func (c *Context) knownEntities() map[string]tracker.EntityRef {
	known := make(map[string]tracker.EntityRef)
	add := func(ref *tracker.EntityRef) {
		if ref == nil || ref.Type == "" {
			return
		}
		if _, ok := known[ref.Type]; !ok {
			known[ref.Type] = *ref
		}
	}
	add(c.entity)
	add(c.step)
	add(c.task)
	add(c.project)
	add(c.user)
	for i := range c.additional {
		add(&c.additional[i])
	}
	return known
}

func cloneRef(ref *tracker.EntityRef) *tracker.EntityRef {
	if ref == nil {
		return nil
	}
	clone := *ref
	return &clone
}

func refsEqual(a, b *tracker.EntityRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
