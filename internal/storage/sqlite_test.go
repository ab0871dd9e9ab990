package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolvergen/internal/artifact"
	"resolvergen/internal/diag"
	"resolvergen/internal/ir"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func identity(name, source string) ir.DocumentIdentity {
	return ir.DocumentIdentity{Name: name, Source: diag.Standalone(source)}
}

func TestSQLiteStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	hashes := ir.SourceHashes{
		identity("UserQuery", "src/User.ts"):    "aaa",
		identity("UserFragment", "src/User.ts"): "bbb",
	}
	artifacts := []artifact.Artifact{
		{
			SourceKeys: []artifact.SourceKey{artifact.ExecutableDefinitionKey(identity("UserQuery", "src/User.ts"))},
			Path:       "__generated__/UserQuery.graphql.ts",
			SourceFile: diag.Standalone("src/User.ts"),
			Content:    &artifact.OperationContent{},
		},
	}

	require.NoError(t, store.SaveSnapshot(ctx, hashes, artifacts))

	loaded, err := store.LoadSourceHashes(ctx)
	require.NoError(t, err)
	assert.Equal(t, hashes, loaded)

	t.Run("Replaces Previous Snapshot", func(t *testing.T) {
		next := ir.SourceHashes{identity("UserQuery", "src/User.ts"): "ccc"}
		require.NoError(t, store.SaveSnapshot(ctx, next, nil))

		loaded, err := store.LoadSourceHashes(ctx)
		require.NoError(t, err)
		assert.Equal(t, next, loaded)
	})
}

func TestSQLiteStore_StalePaths(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	userQuery := identity("UserQuery", "src/User.ts")
	profileQuery := identity("ProfileQuery", "src/Profile.ts")

	hashes := ir.SourceHashes{userQuery: "aaa", profileQuery: "bbb"}
	artifacts := []artifact.Artifact{
		{
			SourceKeys: []artifact.SourceKey{artifact.ExecutableDefinitionKey(userQuery)},
			Path:       "__generated__/UserQuery.graphql.ts",
			SourceFile: diag.Standalone("src/User.ts"),
			Content:    &artifact.OperationContent{},
		},
		{
			SourceKeys: []artifact.SourceKey{artifact.ExecutableDefinitionKey(profileQuery)},
			Path:       "__generated__/ProfileQuery.graphql.ts",
			SourceFile: diag.Standalone("src/Profile.ts"),
			Content:    &artifact.OperationContent{},
		},
		{
			SourceKeys: []artifact.SourceKey{artifact.ResolverHashKey("deadbeef")},
			Path:       "__generated__/User__id.graphql.ts",
			SourceFile: diag.Standalone("src/User.ts"),
			Content:    &artifact.FragmentContent{},
		},
	}
	require.NoError(t, store.SaveSnapshot(ctx, hashes, artifacts))

	t.Run("Nothing Stale When Hashes Match", func(t *testing.T) {
		stale, err := store.StalePaths(ctx, hashes)
		require.NoError(t, err)
		assert.Empty(t, stale)
	})

	t.Run("Changed Hash Marks Artifact Stale", func(t *testing.T) {
		current := ir.SourceHashes{userQuery: "changed", profileQuery: "bbb"}
		stale, err := store.StalePaths(ctx, current)
		require.NoError(t, err)
		assert.Equal(t, []string{"__generated__/UserQuery.graphql.ts"}, stale)
	})

	t.Run("Removed Document Marks Artifact Stale", func(t *testing.T) {
		current := ir.SourceHashes{userQuery: "aaa"}
		stale, err := store.StalePaths(ctx, current)
		require.NoError(t, err)
		assert.Equal(t, []string{"__generated__/ProfileQuery.graphql.ts"}, stale)
	})

	t.Run("Resolver Hash Keys Are Ignored", func(t *testing.T) {
		stale, err := store.StalePaths(ctx, hashes)
		require.NoError(t, err)
		assert.NotContains(t, stale, "__generated__/User__id.graphql.ts")
	})
}
