package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolvergen/internal/diag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resolvergen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Full Config", func(t *testing.T) {
		path := writeConfig(t, `
project:
  root: ./src
  artifact_directory: out
  language: flow
feature_flags:
  compact_query_text: true
custom_scalars:
  JSON:
    name: JSONValue
  DateTime:
    name: DateTimeType
    path: ./scalars
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "./src", cfg.Project.Root)
		assert.Equal(t, "out", cfg.Project.ArtifactDirectory)
		assert.Equal(t, TypegenLanguageFlow, cfg.Project.Language)
		assert.True(t, cfg.FeatureFlags.CompactQueryText)
		assert.Equal(t, CustomScalarType{Name: "JSONValue"}, cfg.CustomScalars["JSON"])
		assert.Equal(t, CustomScalarType{Name: "DateTimeType", Path: "./scalars"}, cfg.CustomScalars["DateTime"])
	})

	t.Run("Defaults", func(t *testing.T) {
		path := writeConfig(t, "project:\n  root: .\n")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, TypegenLanguageTypeScript, cfg.Project.Language)
		assert.Equal(t, "__generated__", cfg.Project.ArtifactDirectory)
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("RESOLVERGEN_ROOT", "/tmp/project")
		t.Setenv("RESOLVERGEN_LANGUAGE", "mixed-graphql")

		path := writeConfig(t, "project:\n  root: ./src\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "/tmp/project", cfg.Project.Root)
		assert.Equal(t, TypegenLanguageMixedGraphQL, cfg.Project.Language)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		path := writeConfig(t, "project: [not a mapping")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestProjectConfig_PathForArtifact(t *testing.T) {
	t.Run("TypeScript", func(t *testing.T) {
		path := writeConfig(t, "project:\n  artifact_directory: out\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		project := cfg.ProjectConfig()
		got := project.PathForArtifact(diag.Standalone("src/User.ts"), "UserQuery")
		assert.Equal(t, filepath.Join("out", "UserQuery.graphql.ts"), got)
	})

	t.Run("Flow", func(t *testing.T) {
		path := writeConfig(t, "project:\n  language: flow\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		project := cfg.ProjectConfig()
		got := project.PathForArtifact(diag.Standalone("src/User.ts"), "UserQuery")
		assert.Equal(t, filepath.Join("__generated__", "UserQuery.graphql.js"), got)
	})
}
