package production_test

import (
	"context"
	"testing"

	"slate/internal/production"
	"slate/internal/testsupport"
	"slate/internal/tracker"
)

var projectRoots = []string{"/mnt/projects"}

func populatedStore() *testsupport.MemoryPathStore {
	store := testsupport.NewMemoryPathStore()
	store.Add(ref("Project", 1, "demo"), "/mnt/projects")
	store.Add(ref("Sequence", 5, "seq_1"), "/mnt/projects/shots/seq_1")
	store.Add(ref("Shot", 42, "s1"), "/mnt/projects/shots/seq_1/s1")
	store.Add(ref("Step", 3, "Anm"), "/mnt/projects/shots/seq_1/s1/Anm")
	return store
}

func TestFromPathCollectsEntities(t *testing.T) {
	store := populatedStore()

	c, err := production.FromPath(context.Background(), store, projectRoots,
		"/mnt/projects/shots/seq_1/s1/Anm/work/s1.mmm.v003.ma", nil)
	if err != nil {
		t.Fatalf("FromPath returned error: %v", err)
	}

	if got := c.Project(); got == nil || got.ID != 1 {
		t.Fatalf("unexpected project: %+v", got)
	}
	if got := c.Entity(); got == nil || got.Type != "Shot" || got.ID != 42 {
		t.Fatalf("unexpected primary entity: %+v", got)
	}
	if got := c.Step(); got == nil || got.ID != 3 {
		t.Fatalf("unexpected step: %+v", got)
	}
	if got := c.Task(); got != nil {
		t.Fatalf("expected no task, got %+v", got)
	}
	additional := c.AdditionalEntities()
	if len(additional) != 1 || additional[0] != ref("Sequence", 5, "seq_1") {
		t.Fatalf("unexpected additional entities: %+v", additional)
	}
}

func TestFromPathClosestEntityWins(t *testing.T) {
	store := populatedStore()
	// A second shot mapped deeper on the same branch shadows the outer one.
	store.Add(ref("Shot", 99, "s1_child"), "/mnt/projects/shots/seq_1/s1/Anm/sub")

	c, err := production.FromPath(context.Background(), store, projectRoots,
		"/mnt/projects/shots/seq_1/s1/Anm/sub/file.ma", nil)
	if err != nil {
		t.Fatalf("FromPath returned error: %v", err)
	}
	if got := c.Entity(); got == nil || got.ID != 99 {
		t.Fatalf("expected closest shot to win, got %+v", got)
	}
}

func TestFromPathOutsideCacheIsEmpty(t *testing.T) {
	store := testsupport.NewMemoryPathStore()

	c, err := production.FromPath(context.Background(), store, projectRoots,
		"/mnt/projects/shots/seq_9/s9", nil)
	if err != nil {
		t.Fatalf("FromPath returned error: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty context, got %s", c)
	}
}

func TestFromPathBackfillsStepAndTaskFromPrevious(t *testing.T) {
	store := populatedStore()

	previous := production.NewContext(production.Params{
		Project:    refPtr("Project", 1, "demo"),
		Entity:     refPtr("Shot", 42, "s1"),
		Step:       refPtr("Step", 3, "Anm"),
		Task:       refPtr("Task", 9, "animate"),
		Additional: []tracker.EntityRef{ref("Sequence", 5, "seq_1")},
	})

	// The sibling path resolves to the same shot but carries no cached
	// task; the previous context supplies it.
	c, err := production.FromPath(context.Background(), store, projectRoots,
		"/mnt/projects/shots/seq_1/s1/Anm/work/s1.other.v001.ma", previous)
	if err != nil {
		t.Fatalf("FromPath returned error: %v", err)
	}
	if got := c.Task(); got == nil || got.ID != 9 {
		t.Fatalf("expected task backfill, got %+v", got)
	}
	if got := c.Step(); got == nil || got.ID != 3 {
		t.Fatalf("expected step from cache, got %+v", got)
	}
}

func TestFromPathNoBackfillForDifferentEntity(t *testing.T) {
	store := populatedStore()
	store.Add(ref("Shot", 43, "s2"), "/mnt/projects/shots/seq_1/s2")

	previous := production.NewContext(production.Params{
		Entity:     refPtr("Shot", 42, "s1"),
		Task:       refPtr("Task", 9, "animate"),
		Additional: []tracker.EntityRef{ref("Sequence", 5, "seq_1")},
	})

	c, err := production.FromPath(context.Background(), store, projectRoots,
		"/mnt/projects/shots/seq_1/s2/file.ma", previous)
	if err != nil {
		t.Fatalf("FromPath returned error: %v", err)
	}
	if got := c.Task(); got != nil {
		t.Fatalf("expected no task backfill for a different shot, got %+v", got)
	}
}
