package storage

import (
	"context"

	"resolvergen/internal/artifact"
	"resolvergen/internal/ir"
)

// Store persists one generation snapshot: the source hashes of every
// document and the artifacts written for them, so a later run can tell
// which outputs went stale.
type Store interface {
	// SaveSnapshot replaces the previous snapshot with the current one.
	SaveSnapshot(ctx context.Context, hashes ir.SourceHashes, artifacts []artifact.Artifact) error

	// LoadSourceHashes returns the hashes recorded by the last snapshot.
	LoadSourceHashes(ctx context.Context) (ir.SourceHashes, error)

	// StalePaths returns the artifact paths whose recorded source keys no
	// longer match the current hashes.
	StalePaths(ctx context.Context, current ir.SourceHashes) ([]string, error)

	Close() error
}
