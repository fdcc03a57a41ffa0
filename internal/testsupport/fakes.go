package testsupport

import (
	"context"
	"fmt"
	"strings"

	"slate/internal/tracker"
)

// FakeTracker is an in-memory tracker.Service. Records are keyed by
// entity type and id; FindOne honors the standard by-id filter and
// counts queries so tests can assert memoization.
type FakeTracker struct {
	Records map[string]map[int]map[string]any
	Err     error
	Calls   int
}

// NewFakeTracker returns an empty tracker fake.
func NewFakeTracker() *FakeTracker {
	return &FakeTracker{Records: make(map[string]map[int]map[string]any)}
}

// SetRecord installs the fields returned for one entity.
func (f *FakeTracker) SetRecord(entityType string, id int, fields map[string]any) {
	byID, ok := f.Records[entityType]
	if !ok {
		byID = make(map[int]map[string]any)
		f.Records[entityType] = byID
	}
	byID[id] = fields
}

// FindOne implements tracker.Service.
func (f *FakeTracker) FindOne(_ context.Context, entityType string, filters []tracker.Filter, fields []string) (map[string]any, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}

	id, ok := idFromFilters(filters)
	if !ok {
		return nil, fmt.Errorf("fake tracker only supports by-id filters, got %v", filters)
	}
	record, ok := f.Records[entityType][id]
	if !ok {
		return nil, nil
	}

	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if value, present := record[field]; present {
			out[field] = value
		}
	}
	return out, nil
}

func idFromFilters(filters []tracker.Filter) (int, bool) {
	for _, filter := range filters {
		if filter.Field == "id" && filter.Operator == "is" {
			if id, ok := filter.Value.(int); ok {
				return id, true
			}
		}
	}
	return 0, false
}

// MemoryPathStore is an in-memory path cache usable wherever the
// resolver expects its path store.
type MemoryPathStore struct {
	entities map[string]tracker.EntityRef
	paths    map[string][]string
}

// NewMemoryPathStore returns an empty path store fake.
func NewMemoryPathStore() *MemoryPathStore {
	return &MemoryPathStore{
		entities: make(map[string]tracker.EntityRef),
		paths:    make(map[string][]string),
	}
}

// Add maps a path to an entity, mirroring pathcache.Store.AddMapping.
func (s *MemoryPathStore) Add(ref tracker.EntityRef, path string) {
	normalized := normalizeTestPath(path)
	s.entities[normalized] = ref
	key := entityKey(ref.Type, ref.ID)
	s.paths[key] = append(s.paths[key], normalized)
}

// GetEntity returns the entity cached for a path, or nil.
func (s *MemoryPathStore) GetEntity(_ context.Context, path string) (*tracker.EntityRef, error) {
	ref, ok := s.entities[normalizeTestPath(path)]
	if !ok {
		return nil, nil
	}
	return &ref, nil
}

// GetPaths returns every path cached for an entity.
func (s *MemoryPathStore) GetPaths(_ context.Context, entityType string, entityID int) ([]string, error) {
	return append([]string(nil), s.paths[entityKey(entityType, entityID)]...), nil
}

func entityKey(entityType string, id int) string {
	return fmt.Sprintf("%s:%d", entityType, id)
}

func normalizeTestPath(path string) string {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}
