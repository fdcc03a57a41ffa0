package pathcache_test

import (
	"context"
	"path/filepath"
	"testing"

	"slate/internal/config"
	"slate/internal/pathcache"
)

func openStore(t *testing.T) *pathcache.Store {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.CacheDB = filepath.Join(dir, "path_cache.db")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	store, err := pathcache.Open(&cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return store
}

func TestAddAndGetEntity(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.AddMapping(ctx, "Shot", 42, "s1", "/mnt/projects/shots/seq_1/s1"); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}

	ref, err := store.GetEntity(ctx, "/mnt/projects/shots/seq_1/s1")
	if err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if ref == nil {
		t.Fatal("expected entity for cached path")
	}
	if ref.Type != "Shot" || ref.ID != 42 || ref.Name != "s1" {
		t.Fatalf("unexpected entity: %+v", ref)
	}

	missing, err := store.GetEntity(ctx, "/mnt/projects/shots/seq_1/s2")
	if err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unmapped path, got %+v", missing)
	}
}

func TestGetEntityNormalizesSeparators(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.AddMapping(ctx, "Shot", 7, "s7", `P:\projects\shots\seq_1\s7\`); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}

	ref, err := store.GetEntity(ctx, "P:/projects/shots/seq_1/s7")
	if err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if ref == nil || ref.ID != 7 {
		t.Fatalf("expected normalized lookup to hit, got %+v", ref)
	}
}

func TestAddMappingOverwritesPath(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	path := "/mnt/projects/shots/seq_1/s1"
	if err := store.AddMapping(ctx, "Shot", 1, "s1", path); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}
	if err := store.AddMapping(ctx, "Shot", 2, "s1_renamed", path); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}

	ref, err := store.GetEntity(ctx, path)
	if err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if ref == nil || ref.ID != 2 || ref.Name != "s1_renamed" {
		t.Fatalf("expected remapped entity, got %+v", ref)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Mappings != 1 {
		t.Fatalf("expected single mapping after overwrite, got %d", stats.Mappings)
	}
}

func TestGetPathsSorted(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	paths := []string{
		"/mnt/projects/shots/seq_1/s1/anim",
		"/mnt/projects/shots/seq_1/s1",
		"/mnt/projects/shots/seq_1/s1/comp",
	}
	for _, p := range paths {
		if err := store.AddMapping(ctx, "Shot", 42, "s1", p); err != nil {
			t.Fatalf("AddMapping(%s) returned error: %v", p, err)
		}
	}
	if err := store.AddMapping(ctx, "Shot", 43, "s2", "/mnt/projects/shots/seq_1/s2"); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}

	got, err := store.GetPaths(ctx, "Shot", 42)
	if err != nil {
		t.Fatalf("GetPaths returned error: %v", err)
	}
	want := []string{
		"/mnt/projects/shots/seq_1/s1",
		"/mnt/projects/shots/seq_1/s1/anim",
		"/mnt/projects/shots/seq_1/s1/comp",
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected paths: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected path order: got %v want %v", got, want)
		}
	}

	none, err := store.GetPaths(ctx, "Shot", 99)
	if err != nil {
		t.Fatalf("GetPaths returned error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no paths for unknown entity, got %v", none)
	}
}

func TestRemoveMapping(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	path := "/mnt/projects/shots/seq_1/s1"
	if err := store.AddMapping(ctx, "Shot", 1, "s1", path); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}

	removed, err := store.RemoveMapping(ctx, path)
	if err != nil {
		t.Fatalf("RemoveMapping returned error: %v", err)
	}
	if !removed {
		t.Fatal("expected mapping to be removed")
	}

	removed, err = store.RemoveMapping(ctx, path)
	if err != nil {
		t.Fatalf("RemoveMapping returned error: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to report no mapping")
	}

	ref, err := store.GetEntity(ctx, path)
	if err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected nil after removal, got %+v", ref)
	}
}

func TestStats(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.AddMapping(ctx, "Shot", 1, "s1", "/mnt/projects/shots/seq_1/s1"); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}
	if err := store.AddMapping(ctx, "Shot", 1, "s1", "/mnt/projects/shots/seq_1/s1/anim"); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}
	if err := store.AddMapping(ctx, "Sequence", 5, "seq_1", "/mnt/projects/shots/seq_1"); err != nil {
		t.Fatalf("AddMapping returned error: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Mappings != 3 {
		t.Fatalf("unexpected mapping count: %d", stats.Mappings)
	}
	if stats.Entities != 2 {
		t.Fatalf("unexpected entity count: %d", stats.Entities)
	}
	if stats.DBPath == "" {
		t.Fatal("expected db path in stats")
	}
}
