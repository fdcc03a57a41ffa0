package pathcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"slate/internal/config"
	"slate/internal/tracker"
)

// ErrLocked reports that another process holds the cache database lock.
var ErrLocked = errors.New("path cache is locked by another process")

// Store manages the entity to path association cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Stats summarizes the cache contents.
type Stats struct {
	Mappings int
	Entities int
	DBPath   string
}

// Open initializes or connects to the cache database and applies
// migrations. The database is guarded by a sidecar flock so concurrent
// tooling invocations do not interleave writes.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.CacheDB
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && dbErr == nil {
			dbErr = err
		}
	}
	return dbErr
}

// GetEntity returns the entity cached for a path, or nil when the path
// has no mapping.
func (s *Store) GetEntity(ctx context.Context, path string) (*tracker.EntityRef, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT entity_type, entity_id, entity_name FROM path_cache WHERE path = ?`,
		normalizePath(path),
	)
	var ref tracker.EntityRef
	if err := row.Scan(&ref.Type, &ref.ID, &ref.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entity for path: %w", err)
	}
	return &ref, nil
}

// GetPaths returns every cached path associated with an entity, sorted
// for deterministic iteration.
func (s *Store) GetPaths(ctx context.Context, entityType string, entityID int) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT path FROM path_cache WHERE entity_type = ? AND entity_id = ? ORDER BY path`,
		entityType,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("get paths for entity: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// AddMapping records an entity to path association. Re-adding a path
// overwrites its previous entity; a path maps to at most one entity.
func (s *Store) AddMapping(ctx context.Context, entityType string, entityID int, entityName, path string) error {
	normalized := normalizePath(path)
	if normalized == "" {
		return errors.New("path must not be empty")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO path_cache (entity_type, entity_id, entity_name, path, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             entity_type = excluded.entity_type,
             entity_id = excluded.entity_id,
             entity_name = excluded.entity_name,
             updated_at = excluded.updated_at`,
		entityType,
		entityID,
		entityName,
		normalized,
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("add mapping: %w", err)
	}
	return nil
}

// RemoveMapping deletes the mapping for a path and reports whether one
// existed.
func (s *Store) RemoveMapping(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM path_cache WHERE path = ?`, normalizePath(path))
	if err != nil {
		return false, fmt.Errorf("remove mapping: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns mapping and distinct entity counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{DBPath: s.path}
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM path_cache`)
	if err := row.Scan(&stats.Mappings); err != nil {
		return Stats{}, fmt.Errorf("count mappings: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM (SELECT DISTINCT entity_type, entity_id FROM path_cache)`)
	if err := row.Scan(&stats.Entities); err != nil {
		return Stats{}, fmt.Errorf("count entities: %w", err)
	}
	return stats, nil
}

// normalizePath canonicalizes a path for use as a cache key: forward
// slashes throughout and no trailing separator. Windows drive and UNC
// paths keep their prefix.
func normalizePath(path string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(path), "\\", "/")
	for len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		trimmed := strings.TrimSuffix(normalized, "/")
		// Keep the slash of a bare drive root such as "P:/".
		if strings.HasSuffix(trimmed, ":") {
			break
		}
		normalized = trimmed
	}
	return normalized
}
