// Package production implements the context resolution engine. A
// Context bundles the tracker entities a piece of work relates to
// (project, primary entity, pipeline step, task, user); the Resolver
// turns a Context plus a path template into a concrete field mapping by
// combining cached path associations, template-tree walks, and tracker
// field queries.
package production
