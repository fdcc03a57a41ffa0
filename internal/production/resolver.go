package production

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"slate/internal/logging"
	"slate/internal/templates"
	"slate/internal/tracker"
)

// PathStore is the slice of the path cache the resolver reads.
type PathStore interface {
	GetEntity(ctx context.Context, path string) (*tracker.EntityRef, error)
	GetPaths(ctx context.Context, entityType string, entityID int) ([]string, error)
}

// Options configures a Resolver.
type Options struct {
	// Hook converts raw tracker field values into folder names. Defaults
	// to ScrubName.
	Hook NameHook
	// ProjectRoots lists the storage root paths; upward walks stop there.
	ProjectRoots []string
	Logger       *slog.Logger
}

// Resolver resolves Contexts into template field mappings.
type Resolver struct {
	store   PathStore
	tracker tracker.Service
	hook    NameHook
	roots   []string
	logger  *slog.Logger
}

// NewResolver builds a Resolver over a path store and tracker service.
func NewResolver(store PathStore, svc tracker.Service, opts Options) *Resolver {
	hook := opts.Hook
	if hook == nil {
		hook = ScrubName
	}
	roots := make([]string, 0, len(opts.ProjectRoots))
	for _, root := range opts.ProjectRoots {
		if normalized := normalizePath(root); normalized != "" {
			roots = append(roots, normalized)
		}
	}
	return &Resolver{
		store:   store,
		tracker: svc,
		hook:    hook,
		roots:   roots,
		logger:  logging.NewComponentLogger(opts.Logger, "resolver"),
	}
}

// AsTemplateFields resolves the fields required by a template from the
// entities in a context. Resolution combines, in order: field extraction
// from the primary entity's cached paths, a walk of the template's
// ancestor tree against cached entity paths, and direct tracker field
// queries for externally bound keys. A later phase only fills keys the
// earlier phases left unresolved. A key whose value conflicts across the
// primary entity's paths is reported as nil.
func (r *Resolver) AsTemplateFields(ctx context.Context, c *Context, tmpl *templates.Template) (map[string]any, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: context is nil", ErrResolution)
	}
	if tmpl == nil {
		return nil, fmt.Errorf("%w: template is nil", ErrResolution)
	}

	logger := r.logger.With(
		logging.String(logging.FieldTraceID, uuid.NewString()),
		logging.String(logging.FieldTemplate, tmpl.Name()),
	)

	run := &resolution{cache: make(map[fieldCacheKey]any)}
	known := c.knownEntities()
	fields := make(map[string]any)

	if err := r.fieldsFromEntityPaths(ctx, logger, c, tmpl, fields); err != nil {
		return nil, err
	}
	if err := r.fieldsFromTemplateTree(ctx, logger, known, tmpl, fields); err != nil {
		return nil, err
	}
	if err := r.fieldsFromTracker(ctx, logger, run, known, tmpl, fields); err != nil {
		return nil, err
	}

	logger.Debug("context resolved", logging.Int("fields", len(fields)))
	return fields, nil
}

// fieldsFromEntityPaths walks upward from each cached path of the
// primary entity until the path validates against the template, then
// extracts fields from it. A field whose value differs between two of
// the entity's paths is set to nil rather than picked arbitrarily.
func (r *Resolver) fieldsFromEntityPaths(ctx context.Context, logger *slog.Logger, c *Context, tmpl *templates.Template, fields map[string]any) error {
	if c.entity == nil {
		return nil
	}
	paths, err := r.store.GetPaths(ctx, c.entity.Type, c.entity.ID)
	if err != nil {
		return fmt.Errorf("%w: cached paths for %s %d: %v", ErrResolution, c.entity.Type, c.entity.ID, err)
	}

	for _, candidate := range paths {
		cur := normalizePath(candidate)
		for cur != "" {
			if tmpl.Matches(cur, nil, nil) {
				extracted, err := tmpl.Fields(cur)
				if err == nil {
					mergeAmbiguous(fields, extracted)
				}
				break
			}
			if r.isProjectRoot(cur) {
				break
			}
			parent := path.Dir(cur)
			if parent == cur {
				break
			}
			cur = parent
		}
	}

	logger.Debug("entity path walk complete",
		logging.Int("paths", len(paths)),
		logging.Int("fields", len(fields)),
	)
	return nil
}

// fieldsFromTemplateTree descends from the project root template to the
// target template. For every still-unresolved key whose name matches a
// known entity type, the entity's cached paths are validated against the
// ancestor template and the key's value is extracted from the match.
func (r *Resolver) fieldsFromTemplateTree(ctx context.Context, logger *slog.Logger, known map[string]tracker.EntityRef, tmpl *templates.Template, fields map[string]any) error {
	for _, ancestor := range templateAncestors(tmpl) {
		for _, keyName := range ancestor.KeyNames() {
			if isResolved(fields, keyName) {
				continue
			}
			entity, ok := known[keyName]
			if !ok {
				continue
			}
			if err := r.resolveKeyFromEntityPaths(ctx, ancestor, keyName, entity, known, fields); err != nil {
				return err
			}
		}
	}
	logger.Debug("template tree walk complete", logging.Int("fields", len(fields)))
	return nil
}

func (r *Resolver) resolveKeyFromEntityPaths(ctx context.Context, ancestor *templates.Template, keyName string, entity tracker.EntityRef, known map[string]tracker.EntityRef, fields map[string]any) error {
	paths, err := r.store.GetPaths(ctx, entity.Type, entity.ID)
	if err != nil {
		return fmt.Errorf("%w: cached paths for %s %d: %v", ErrResolution, entity.Type, entity.ID, err)
	}

	hints := resolvedFields(fields)
	// Distinct extracted values per field across all validating paths.
	distinct := make(map[string][]any)
	matched := false
	for _, candidate := range paths {
		normalized := normalizePath(candidate)
		if !ancestor.Matches(normalized, hints, nil) {
			continue
		}
		extracted, err := ancestor.FieldsWith(normalized, templates.FieldOptions{Hints: hints})
		if err != nil {
			continue
		}
		matched = true
		for field, value := range extracted {
			if !containsValue(distinct[field], value) {
				distinct[field] = append(distinct[field], value)
			}
		}
	}
	if !matched {
		return nil
	}

	for field, values := range distinct {
		if len(values) < 2 {
			continue
		}
		if _, isEntityKey := known[field]; isEntityKey {
			// Ambiguous entity fields stay unresolved; a later phase or
			// the caller decides.
			continue
		}
		return fmt.Errorf(
			"%w: conflicting values for field %q across cached paths of %s %d: %s",
			ErrResolution, field, entity.Type, entity.ID, joinValues(values),
		)
	}

	if values := distinct[keyName]; len(values) == 1 {
		fields[keyName] = values[0]
	}
	return nil
}

// fieldsFromTracker queries the tracker for keys bound to an external
// entity field. Lookups are memoized per (entity, field) for the
// duration of one resolution.
func (r *Resolver) fieldsFromTracker(ctx context.Context, logger *slog.Logger, run *resolution, known map[string]tracker.EntityRef, tmpl *templates.Template, fields map[string]any) error {
	keys := tmpl.Keys()
	for _, keyName := range tmpl.KeyNames() {
		if isResolved(fields, keyName) {
			continue
		}
		key := keys[keyName]
		entityType, fieldName := key.EntityType(), key.FieldName()
		if entityType == "" || fieldName == "" {
			continue
		}
		entity, ok := known[entityType]
		if !ok {
			continue
		}

		raw, err := run.fieldValue(ctx, r.tracker, entity, fieldName)
		if err != nil {
			return err
		}
		processed, err := r.hook(entity.Type, entity.ID, fieldName, raw)
		if err != nil {
			return fmt.Errorf("%w: name hook for key %q: %v", ErrResolution, keyName, err)
		}
		value, err := key.ValueFromString(processed)
		if err != nil {
			return fmt.Errorf("%w: tracker value %q rejected by key %q: %v", ErrResolution, processed, keyName, err)
		}
		fields[keyName] = value
		logger.Debug("field resolved from tracker",
			logging.String("key", keyName),
			logging.String(logging.FieldEntityType, entity.Type),
		)
	}
	return nil
}

type fieldCacheKey struct {
	entityType string
	entityID   int
	field      string
}

// resolution carries per-call state, most importantly the tracker field
// memoization cache. One resolution value never outlives its
// AsTemplateFields call.
type resolution struct {
	cache map[fieldCacheKey]any
}

func (run *resolution) fieldValue(ctx context.Context, svc tracker.Service, entity tracker.EntityRef, field string) (any, error) {
	cacheKey := fieldCacheKey{entity.Type, entity.ID, field}
	if value, ok := run.cache[cacheKey]; ok {
		return value, nil
	}
	record, err := svc.FindOne(ctx, entity.Type, tracker.ByID(entity.ID), []string{field})
	if err != nil {
		return nil, fmt.Errorf("%w: tracker query for %s %d: %v", ErrResolution, entity.Type, entity.ID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: tracker has no %s with id %d", ErrResolution, entity.Type, entity.ID)
	}
	raw, ok := record[field]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: tracker field %s.%s is empty for id %d", ErrResolution, entity.Type, field, entity.ID)
	}
	run.cache[cacheKey] = raw
	return raw, nil
}

// templateAncestors returns the chain from the project root template
// down to t. The upward walk stops at the first ancestor with no keys.
func templateAncestors(t *templates.Template) []*templates.Template {
	var chain []*templates.Template
	for cur := t; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
		if len(cur.KeyNames()) == 0 {
			break
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// mergeAmbiguous folds extracted fields into the accumulator. A fresh
// key adopts the extracted value; a key already holding a different
// value degrades to nil and stays nil.
func mergeAmbiguous(fields, extracted map[string]any) {
	for key, value := range extracted {
		existing, seen := fields[key]
		switch {
		case !seen:
			fields[key] = value
		case existing == nil:
		case existing != value:
			fields[key] = nil
		}
	}
}

func isResolved(fields map[string]any, key string) bool {
	value, ok := fields[key]
	return ok && value != nil
}

func resolvedFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if value != nil {
			out[key] = value
		}
	}
	return out
}

func containsValue(values []any, value any) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func joinValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func (r *Resolver) isProjectRoot(candidate string) bool {
	for _, root := range r.roots {
		if strings.EqualFold(candidate, root) {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	for len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		trimmed := strings.TrimSuffix(normalized, "/")
		if strings.HasSuffix(trimmed, ":") {
			break
		}
		normalized = trimmed
	}
	return normalized
}
