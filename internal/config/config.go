package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"resolvergen/internal/diag"
)

// TypegenLanguage selects the output language of generated artifacts. The
// mixed-graphql mode merges all artifacts of one source file into a single
// combined output file.
type TypegenLanguage string

const (
	TypegenLanguageTypeScript   TypegenLanguage = "typescript"
	TypegenLanguageFlow         TypegenLanguage = "flow"
	TypegenLanguageMixedGraphQL TypegenLanguage = "mixed-graphql"
)

// FeatureFlags are project-level toggles consumed by generation.
type FeatureFlags struct {
	CompactQueryText bool `yaml:"compact_query_text"`
}

// CustomScalarType maps a GraphQL scalar to a source-language type, either
// by bare name or by name plus declaring module path.
type CustomScalarType struct {
	Name string `yaml:"name"`
	Path string `yaml:"path,omitempty"`
}

// Config is the on-disk project configuration.
type Config struct {
	Project struct {
		Root              string          `yaml:"root"`
		ArtifactDirectory string          `yaml:"artifact_directory"`
		Language          TypegenLanguage `yaml:"language"`
	} `yaml:"project"`
	FeatureFlags  FeatureFlags                `yaml:"feature_flags"`
	CustomScalars map[string]CustomScalarType `yaml:"custom_scalars,omitempty"`
}

// LoadConfig reads the YAML config, applying .env and environment overrides.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if root := os.Getenv("RESOLVERGEN_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if dir := os.Getenv("RESOLVERGEN_ARTIFACT_DIR"); dir != "" {
		cfg.Project.ArtifactDirectory = dir
	}
	if lang := os.Getenv("RESOLVERGEN_LANGUAGE"); lang != "" {
		cfg.Project.Language = TypegenLanguage(lang)
	}

	if cfg.Project.Language == "" {
		cfg.Project.Language = TypegenLanguageTypeScript
	}
	if cfg.Project.ArtifactDirectory == "" {
		cfg.Project.ArtifactDirectory = "__generated__"
	}
	return &cfg, nil
}

// ProjectConfig is the resolved per-project view consumed by the generation
// and extraction subsystems.
type ProjectConfig struct {
	Root            string
	Language        TypegenLanguage
	FeatureFlags    FeatureFlags
	CustomScalars   map[string]CustomScalarType
	PathForArtifact func(source diag.SourceLocation, definitionName string) string
}

// ProjectConfig builds the resolved project view with the default artifact
// path layout: one file per definition under the artifact directory.
func (c *Config) ProjectConfig() *ProjectConfig {
	dir := c.Project.ArtifactDirectory
	ext := artifactExtension(c.Project.Language)
	return &ProjectConfig{
		Root:          c.Project.Root,
		Language:      c.Project.Language,
		FeatureFlags:  c.FeatureFlags,
		CustomScalars: c.CustomScalars,
		PathForArtifact: func(_ diag.SourceLocation, definitionName string) string {
			return filepath.Join(dir, definitionName+ext)
		},
	}
}

func artifactExtension(lang TypegenLanguage) string {
	switch lang {
	case TypegenLanguageFlow:
		return ".graphql.js"
	default:
		return ".graphql.ts"
	}
}
