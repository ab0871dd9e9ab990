// Package storage persists generation snapshots in SQLite for incremental
// staleness tracking between compiler runs.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"resolvergen/internal/artifact"
	"resolvergen/internal/diag"
	"resolvergen/internal/ir"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS source_hashes (
			name TEXT,
			source TEXT,
			hash TEXT,
			PRIMARY KEY (name, source)
		);`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			path TEXT PRIMARY KEY,
			source_file TEXT,
			content_kind TEXT,
			source_keys JSON
		);`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_source_file ON artifacts(source_file);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot replaces the stored snapshot in a single transaction, so a
// crashed run never leaves a half-written mix of old and new rows.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, hashes ir.SourceHashes, artifacts []artifact.Artifact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM source_hashes"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts"); err != nil {
		return err
	}

	hashStmt, err := tx.PrepareContext(ctx, "INSERT INTO source_hashes (name, source, hash) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer hashStmt.Close()

	for _, entry := range hashes.Entries() {
		if _, err := hashStmt.Exec(entry.Identity.Name, entry.Identity.Source.Path(), entry.Hash); err != nil {
			return err
		}
	}

	artifactStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artifacts (path, source_file, content_kind, source_keys) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			source_file=excluded.source_file,
			content_kind=excluded.content_kind,
			source_keys=excluded.source_keys
	`)
	if err != nil {
		return err
	}
	defer artifactStmt.Close()

	for _, a := range artifacts {
		keys, err := json.Marshal(a.SourceKeys)
		if err != nil {
			return fmt.Errorf("failed to encode source keys for %s: %w", a.Path, err)
		}
		if _, err := artifactStmt.Exec(a.Path, a.SourceFile.Path(), a.Content.Kind(), keys); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadSourceHashes(ctx context.Context) (ir.SourceHashes, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, source, hash FROM source_hashes")
	if err != nil {
		return nil, fmt.Errorf("failed to query source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(ir.SourceHashes)
	for rows.Next() {
		var name, source, hash string
		if err := rows.Scan(&name, &source, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan source hash: %w", err)
		}
		hashes[ir.DocumentIdentity{Name: name, Source: diag.Standalone(source)}] = hash
	}
	return hashes, rows.Err()
}

// StalePaths compares the stored snapshot against the current hashes. An
// artifact is stale when any of its document-keyed sources was removed or
// changed content. Resolver-hash keys have no document to compare against
// and are ignored here.
func (s *SQLiteStore) StalePaths(ctx context.Context, current ir.SourceHashes) ([]string, error) {
	stored, err := s.LoadSourceHashes(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT path, source_keys FROM artifacts")
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		var encoded []byte
		if err := rows.Scan(&path, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		var keys []artifact.SourceKey
		if err := json.Unmarshal(encoded, &keys); err != nil {
			return nil, fmt.Errorf("failed to decode source keys for %s: %w", path, err)
		}
		for _, key := range keys {
			if key.Kind != artifact.SourceKeyExecutableDefinition {
				continue
			}
			currentHash, ok := current[key.Definition]
			if !ok || currentHash != stored[key.Definition] {
				stale = append(stale, path)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(stale)
	return stale, nil
}
