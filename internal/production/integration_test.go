package production_test

import (
	"context"
	"testing"

	"slate/internal/production"
	"slate/internal/testsupport"
)

// The SQLite-backed cache must serve the resolver the same way the
// in-memory fake does.
func TestResolverWithSQLiteCache(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithNamePolicy("passthrough"))
	store := testsupport.MustOpenCache(t, cfg)
	set := testsupport.WriteTemplatesFile(t, cfg)

	ctx := context.Background()
	seed := []struct {
		entityType string
		id         int
		name       string
		path       string
	}{
		{"Sequence", 5, "seq_1", "/mnt/projects/shots/seq_1"},
		{"Shot", 42, "s1", "/mnt/projects/shots/seq_1/s1"},
		{"Step", 3, "Anm", "/mnt/projects/shots/seq_1/s1/Anm"},
	}
	for _, row := range seed {
		if err := store.AddMapping(ctx, row.entityType, row.id, row.name, row.path); err != nil {
			t.Fatalf("AddMapping(%s) returned error: %v", row.path, err)
		}
	}

	workArea, err := set.PathTemplate("shot_work_area")
	if err != nil {
		t.Fatalf("PathTemplate returned error: %v", err)
	}

	resolver := production.NewResolver(store, testsupport.NewFakeTracker(), production.Options{
		Hook:         production.HookForPolicy(cfg.Studio.NamePolicy),
		ProjectRoots: cfg.ProjectRoots(),
	})
	c, err := production.FromPath(ctx, store, cfg.ProjectRoots(), "/mnt/projects/shots/seq_1/s1/Anm", nil)
	if err != nil {
		t.Fatalf("FromPath returned error: %v", err)
	}

	fields, err := resolver.AsTemplateFields(ctx, c, workArea)
	if err != nil {
		t.Fatalf("AsTemplateFields returned error: %v", err)
	}
	want := map[string]any{"Sequence": "seq_1", "Shot": "s1", "Step": "Anm"}
	for key, value := range want {
		if fields[key] != value {
			t.Fatalf("field %q: got %v want %v (all: %v)", key, fields[key], value, fields)
		}
	}

	rendered, err := workArea.ApplyFields(fields, "linux")
	if err != nil {
		t.Fatalf("ApplyFields returned error: %v", err)
	}
	if rendered != "/mnt/projects/shots/seq_1/s1/Anm/work" {
		t.Fatalf("unexpected render: %q", rendered)
	}
}
