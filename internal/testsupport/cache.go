package testsupport

import (
	"testing"

	"slate/internal/config"
	"slate/internal/pathcache"
)

// MustOpenCache opens a path cache store against the test config and
// closes it when the test finishes.
func MustOpenCache(t testing.TB, cfg *config.Config) *pathcache.Store {
	t.Helper()

	store, err := pathcache.Open(cfg)
	if err != nil {
		t.Fatalf("open path cache: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close path cache: %v", err)
		}
	})
	return store
}
