package tracker

import (
	"context"
	"fmt"
	"strings"
)

// EntityRef is the standard link record the production tracker hands
// around: an entity type, a numeric id, and an optional display name.
// Using a struct instead of a loose mapping catches malformed tracker
// responses at the boundary.
type EntityRef struct {
	Type string
	ID   int
	Name string
}

// Valid reports whether the reference carries the required type and id.
func (e EntityRef) Valid() bool {
	return e.Type != "" && e.ID > 0
}

func (e EntityRef) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %d (%s)", e.Type, e.ID, e.Name)
	}
	return fmt.Sprintf("%s %d", e.Type, e.ID)
}

// FromRecord converts a link mapping as returned by the tracker API
// ({type, id, name}) into an EntityRef.
func FromRecord(record map[string]any) (EntityRef, error) {
	ref := EntityRef{}
	if t, ok := record["type"].(string); ok {
		ref.Type = t
	}
	switch id := record["id"].(type) {
	case int:
		ref.ID = id
	case int64:
		ref.ID = int(id)
	case float64:
		ref.ID = int(id)
	}
	if name, ok := record["name"].(string); ok {
		ref.Name = name
	}
	if !ref.Valid() {
		return EntityRef{}, fmt.Errorf("malformed tracker link record: %v", record)
	}
	return ref, nil
}

// Filter is one [field, operator, value] condition of a tracker query.
// The toolkit passes filters through to the service unmodified.
type Filter struct {
	Field    string
	Operator string
	Value    any
}

// ByID is the common single-record filter.
func ByID(id int) []Filter {
	return []Filter{{Field: "id", Operator: "is", Value: id}}
}

// Service is the production-tracking query surface the toolkit needs.
// Implementations wrap the studio's tracker API client; the core never
// retries, so any retry or timeout policy lives behind this interface.
type Service interface {
	// FindOne returns the first record matching the filters with the
	// requested fields, or nil when nothing matches.
	FindOne(ctx context.Context, entityType string, filters []Filter, fields []string) (map[string]any, error)
}

// DescribeFilters renders filters for log and error messages.
func DescribeFilters(filters []Filter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("[%s %s %v]", f.Field, f.Operator, f.Value))
	}
	return strings.Join(parts, " ")
}
