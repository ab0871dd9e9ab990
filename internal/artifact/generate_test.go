package artifact

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolvergen/internal/config"
	"resolvergen/internal/diag"
	"resolvergen/internal/ir"
)

func testProject(lang config.TypegenLanguage) *config.ProjectConfig {
	return &config.ProjectConfig{
		Language: lang,
		PathForArtifact: func(_ diag.SourceLocation, name string) string {
			return filepath.Join("__generated__", name+".graphql.ts")
		},
	}
}

type fakePrinter map[string]string

func (p fakePrinter) PrintOperation(operation *ir.OperationDefinition) string {
	return p[operation.Name]
}

func operation(name, source string, directives ...ir.Directive) *ir.OperationDefinition {
	return &ir.OperationDefinition{
		Name:       name,
		Location:   diag.NewLocation(diag.Standalone(source), diag.NewSpan(0, 1)),
		Directives: directives,
	}
}

func fragment(name, source string, directives ...ir.Directive) *ir.FragmentDefinition {
	return &ir.FragmentDefinition{
		Name:       name,
		Location:   diag.NewLocation(diag.Standalone(source), diag.NewSpan(0, 1)),
		Directives: directives,
	}
}

func emptyPrograms() *ir.Programs {
	return &ir.Programs{
		Source:        ir.NewProgram(nil, nil),
		Normalization: ir.NewProgram(nil, nil),
		Reader:        ir.NewProgram(nil, nil),
		Typegen:       ir.NewProgram(nil, nil),
		OperationText: ir.NewProgram(nil, nil),
	}
}

func TestGroupOperations(t *testing.T) {
	t.Run("Groups By Identity", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)
		programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)
		programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)
		programs.OperationText = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)

		groups := GroupOperations(programs)
		require.Len(t, groups, 1)
		group := groups[ir.DocumentIdentity{Name: "Q", Source: diag.Standalone("a.ts")}]
		require.NotNil(t, group)
		assert.NotNil(t, group.Normalization)
		assert.NotNil(t, group.Reader)
		assert.NotNil(t, group.Typegen)
		assert.NotNil(t, group.OperationText)
	})

	t.Run("Same Name In Different Files Stays Separate", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{
			operation("Q", "a.ts"),
			operation("Q", "b.ts"),
		}, nil)

		groups := GroupOperations(programs)
		assert.Len(t, groups, 2)
	})

	t.Run("Reader May Open A Group", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("U", "a.ts")}, nil)

		groups := GroupOperations(programs)
		require.Len(t, groups, 1)
		assert.Nil(t, groups[ir.DocumentIdentity{Name: "U", Source: diag.Standalone("a.ts")}].Normalization)
	})

	t.Run("Typegen Without Group Panics", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)

		assert.Panics(t, func() { GroupOperations(programs) })
	})
}

func TestGenerate_DefaultOperation(t *testing.T) {
	programs := emptyPrograms()
	programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{operation("UserQuery", "src/User.ts")}, nil)
	programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("UserQuery", "src/User.ts")}, nil)
	programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{operation("UserQuery", "src/User.ts")}, nil)
	programs.OperationText = ir.NewProgram([]*ir.OperationDefinition{operation("UserQuery", "src/User.ts")}, nil)

	identity := ir.DocumentIdentity{Name: "UserQuery", Source: diag.Standalone("src/User.ts")}
	hashes := ir.SourceHashes{identity: "abc123"}
	printer := fakePrinter{"UserQuery": "query UserQuery { me }"}

	artifacts := Generate(testProject(config.TypegenLanguageTypeScript), printer, programs, hashes)
	require.Len(t, artifacts, 1)

	a := artifacts[0]
	assert.Equal(t, []SourceKey{ExecutableDefinitionKey(identity)}, a.SourceKeys)
	assert.Equal(t, filepath.Join("__generated__", "UserQuery.graphql.ts"), a.Path)
	assert.Equal(t, diag.Standalone("src/User.ts"), a.SourceFile)

	content, ok := a.Content.(*OperationContent)
	require.True(t, ok)
	assert.Equal(t, "query UserQuery { me }", content.OperationText)
	assert.Equal(t, "abc123", content.SourceHash)
	assert.NotNil(t, content.Reader)
	assert.NotNil(t, content.Typegen)
}

func TestGenerate_UpdatableQuery(t *testing.T) {
	updatable := operation("SaveQuery", "src/Save.ts", ir.Directive{Name: ir.DirectiveUpdatable})
	programs := emptyPrograms()
	programs.Reader = ir.NewProgram([]*ir.OperationDefinition{updatable}, nil)
	programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{operation("SaveQuery", "src/Save.ts")}, nil)

	artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
	require.Len(t, artifacts, 1)

	content, ok := artifacts[0].Content.(*UpdatableQueryContent)
	require.True(t, ok)
	assert.Equal(t, updatable, content.Reader)
	assert.NotNil(t, content.Typegen)
}

func TestGenerate_SplitOperation(t *testing.T) {
	parentA := ir.DocumentIdentity{Name: "FeatureQuery", Source: diag.Standalone("src/Feature.ts")}
	parentB := ir.DocumentIdentity{Name: "OtherQuery", Source: diag.Standalone("src/Other.ts")}
	derived := ir.DocumentIdentity{Name: "Feature_module", Source: diag.Standalone("src/Feature.ts")}

	meta := &ir.SplitOperationMetadata{
		Location:        diag.NewLocation(diag.Standalone("src/Feature.ts"), diag.NewSpan(0, 1)),
		DerivedFrom:     &derived,
		ParentDocuments: []ir.DocumentIdentity{parentA, parentB},
		RawResponseMode: ir.RawResponseModeAllFieldsRequired,
	}

	t.Run("Parent Document Keys", func(t *testing.T) {
		split := operation("Feature_module$normalization", "src/Feature.ts",
			ir.Directive{Name: ir.DirectiveSplitOperation, Metadata: meta})
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{split}, nil)

		hashes := ir.SourceHashes{derived: "feedface"}
		artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, hashes)
		require.Len(t, artifacts, 1)

		a := artifacts[0]
		assert.Equal(t, []SourceKey{
			ExecutableDefinitionKey(parentA),
			ExecutableDefinitionKey(parentB),
		}, a.SourceKeys, "parent order must be preserved")

		content, ok := a.Content.(*SplitOperationContent)
		require.True(t, ok)
		assert.True(t, content.NoOptionalFieldsInRawResponseType)
		assert.Equal(t, split, content.Typegen, "the raw-response typegen form is the normalization operation")
		assert.Equal(t, "feedface", content.SourceHash)
	})

	t.Run("No Raw Response Mode Emits No Typegen", func(t *testing.T) {
		plain := &ir.SplitOperationMetadata{
			Location:        meta.Location,
			ParentDocuments: []ir.DocumentIdentity{parentA},
		}
		split := operation("Feature_module$normalization", "src/Feature.ts",
			ir.Directive{Name: ir.DirectiveSplitOperation, Metadata: plain})
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{split}, nil)

		artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		require.Len(t, artifacts, 1)

		content, ok := artifacts[0].Content.(*SplitOperationContent)
		require.True(t, ok)
		assert.Nil(t, content.Typegen)
		assert.False(t, content.NoOptionalFieldsInRawResponseType)
	})

	t.Run("Resolver Hash Key Wins", func(t *testing.T) {
		split := operation("Feature_module$normalization", "src/Feature.ts",
			ir.Directive{Name: ir.DirectiveSplitOperation, Metadata: meta},
			ir.Directive{Name: ir.DirectiveArtifactSourceKey, Metadata: &ir.ArtifactSourceKeyData{ResolverHash: "deadbeef"}})
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{split}, nil)

		artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		require.Len(t, artifacts, 1)
		assert.Equal(t, []SourceKey{ResolverHashKey("deadbeef")}, artifacts[0].SourceKeys)
	})
}

func TestGenerate_DerivedOperations(t *testing.T) {
	t.Run("Refetchable", func(t *testing.T) {
		// The refetch query lives in a generated file; attribution must
		// follow the source fragment's own file, not the query's.
		refetch := operation("RefetchQuery", "__generated__/RefetchQuery.graphql.ts",
			ir.Directive{Name: ir.DirectiveRefetchableDerivedFrom, Metadata: &ir.RefetchableDerivedFrom{SourceName: "UserFragment"}})
		programs := emptyPrograms()
		programs.Source = ir.NewProgram(nil, []*ir.FragmentDefinition{fragment("UserFragment", "src/User.ts")})
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{refetch}, nil)
		programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("RefetchQuery", "__generated__/RefetchQuery.graphql.ts")}, nil)
		programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{operation("RefetchQuery", "__generated__/RefetchQuery.graphql.ts")}, nil)

		source := ir.DocumentIdentity{Name: "UserFragment", Source: diag.Standalone("src/User.ts")}
		hashes := ir.SourceHashes{source: "f00d"}

		artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, hashes)
		require.Len(t, artifacts, 1)
		assert.Equal(t, []SourceKey{ExecutableDefinitionKey(source)}, artifacts[0].SourceKeys)
		assert.Equal(t, diag.Standalone("src/User.ts"), artifacts[0].SourceFile)
		assert.Equal(t, "f00d", artifacts[0].Content.(*OperationContent).SourceHash)
	})

	t.Run("Refetchable Without Source Fragment Panics", func(t *testing.T) {
		refetch := operation("RefetchQuery", "__generated__/RefetchQuery.graphql.ts",
			ir.Directive{Name: ir.DirectiveRefetchableDerivedFrom, Metadata: &ir.RefetchableDerivedFrom{SourceName: "UserFragment"}})
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{refetch}, nil)
		programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("RefetchQuery", "__generated__/RefetchQuery.graphql.ts")}, nil)
		programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{operation("RefetchQuery", "__generated__/RefetchQuery.graphql.ts")}, nil)

		assert.Panics(t, func() {
			Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		})
	})

	t.Run("Client Edge", func(t *testing.T) {
		edge := operation("ClientEdgeQuery", "src/Generated.ts",
			ir.Directive{Name: ir.DirectiveClientEdgeGeneratedQuery, Metadata: &ir.ClientEdgeGeneratedQueryMetadata{
				SourceName:     "ProfileQuery",
				SourceLocation: diag.NewLocation(diag.Standalone("src/Profile.ts"), diag.NewSpan(0, 1)),
			}})
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{edge}, nil)
		programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("ClientEdgeQuery", "src/Generated.ts")}, nil)
		programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{operation("ClientEdgeQuery", "src/Generated.ts")}, nil)

		artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		require.Len(t, artifacts, 1)

		source := ir.DocumentIdentity{Name: "ProfileQuery", Source: diag.Standalone("src/Profile.ts")}
		assert.Equal(t, []SourceKey{ExecutableDefinitionKey(source)}, artifacts[0].SourceKeys)
		assert.Equal(t, diag.Standalone("src/Profile.ts"), artifacts[0].SourceFile)
	})
}

func TestGenerate_Fragments(t *testing.T) {
	t.Run("Reader Fragment Gets An Artifact", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Reader = ir.NewProgram(nil, []*ir.FragmentDefinition{fragment("UserFragment", "src/User.ts")})
		programs.Typegen = ir.NewProgram(nil, []*ir.FragmentDefinition{fragment("UserFragment", "src/User.ts")})

		identity := ir.DocumentIdentity{Name: "UserFragment", Source: diag.Standalone("src/User.ts")}
		hashes := ir.SourceHashes{identity: "cafe"}

		artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, hashes)
		require.Len(t, artifacts, 1)
		assert.Equal(t, []SourceKey{ExecutableDefinitionKey(identity)}, artifacts[0].SourceKeys)

		content, ok := artifacts[0].Content.(*FragmentContent)
		require.True(t, ok)
		assert.NotNil(t, content.Reader)
		assert.NotNil(t, content.Typegen)
		assert.Equal(t, "cafe", content.SourceHash)
	})

	t.Run("Resolver Generated Fragment", func(t *testing.T) {
		generated := fragment("User__id", "src/User.ts",
			ir.Directive{Name: ir.DirectiveArtifactSourceKey, Metadata: &ir.ArtifactSourceKeyData{ResolverHash: "beef"}})
		programs := emptyPrograms()
		programs.Reader = ir.NewProgram(nil, []*ir.FragmentDefinition{generated})
		programs.Typegen = ir.NewProgram(nil, []*ir.FragmentDefinition{fragment("User__id", "src/User.ts")})

		artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		require.Len(t, artifacts, 1)
		assert.Equal(t, []SourceKey{ResolverHashKey("beef")}, artifacts[0].SourceKeys)
	})

	t.Run("Missing Typegen Fragment Panics", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Reader = ir.NewProgram(nil, []*ir.FragmentDefinition{fragment("UserFragment", "src/User.ts")})

		assert.Panics(t, func() {
			Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		})
	})
}

func TestGenerate_Panics(t *testing.T) {
	t.Run("Reader Without Updatable", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)

		assert.Panics(t, func() {
			Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		})
	})

	t.Run("Missing Typegen Operation", func(t *testing.T) {
		programs := emptyPrograms()
		programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)
		programs.Reader = ir.NewProgram([]*ir.OperationDefinition{operation("Q", "a.ts")}, nil)

		assert.Panics(t, func() {
			Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
		})
	})
}

func TestGenerate_Ordering(t *testing.T) {
	programs := emptyPrograms()
	programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{
		operation("ZQuery", "src/a.ts"),
		operation("AQuery", "src/b.ts"),
		operation("AQuery", "src/a.ts"),
	}, nil)
	programs.Reader = ir.NewProgram([]*ir.OperationDefinition{
		operation("ZQuery", "src/a.ts"),
		operation("AQuery", "src/b.ts"),
		operation("AQuery", "src/a.ts"),
	}, nil)
	programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{
		operation("ZQuery", "src/a.ts"),
		operation("AQuery", "src/b.ts"),
		operation("AQuery", "src/a.ts"),
	}, nil)

	artifacts := Generate(testProject(config.TypegenLanguageTypeScript), fakePrinter{}, programs, nil)
	require.Len(t, artifacts, 3)

	names := make([]string, 0, 3)
	for _, a := range artifacts {
		names = append(names, a.SourceKeys[0].Definition.Name+"@"+a.SourceFile.Path())
	}
	assert.Equal(t, []string{"AQuery@src/a.ts", "ZQuery@src/a.ts", "AQuery@src/b.ts"}, names)
}

func TestGenerate_MixedOutput(t *testing.T) {
	programs := emptyPrograms()
	programs.Normalization = ir.NewProgram([]*ir.OperationDefinition{
		operation("BQuery", "src/a.ts"),
		operation("CQuery", "src/b.ts"),
	}, nil)
	programs.Reader = ir.NewProgram([]*ir.OperationDefinition{
		operation("BQuery", "src/a.ts"),
		operation("CQuery", "src/b.ts"),
	}, []*ir.FragmentDefinition{fragment("AFragment", "src/a.ts")})
	programs.Typegen = ir.NewProgram([]*ir.OperationDefinition{
		operation("BQuery", "src/a.ts"),
		operation("CQuery", "src/b.ts"),
	}, []*ir.FragmentDefinition{fragment("AFragment", "src/a.ts")})

	artifacts := Generate(testProject(config.TypegenLanguageMixedGraphQL), fakePrinter{}, programs, nil)
	require.Len(t, artifacts, 2, "one artifact per source file")

	t.Run("First File Merges Operation And Fragment", func(t *testing.T) {
		a := artifacts[0]
		assert.Equal(t, diag.Standalone("src/a.ts"), a.SourceFile)
		assert.Equal(t, filepath.Join("__generated__", "AFragment.graphql.ts"), a.Path, "the merged artifact keeps a constituent's path")

		content, ok := a.Content.(*MixedDocumentsContent)
		require.True(t, ok)
		require.Len(t, content.Contents, 2)
		assert.Equal(t, "operation", content.Contents[0].Kind())
		assert.Equal(t, "fragment", content.Contents[1].Kind())
		assert.Len(t, a.SourceKeys, 2)
	})

	t.Run("Second File Stays Separate", func(t *testing.T) {
		a := artifacts[1]
		assert.Equal(t, diag.Standalone("src/b.ts"), a.SourceFile)
		content, ok := a.Content.(*MixedDocumentsContent)
		require.True(t, ok)
		assert.Len(t, content.Contents, 1)
	})
}
