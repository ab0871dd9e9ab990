package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolvergen/internal/diag"
	"resolvergen/internal/tsast"
)

func TestBuildModuleResolution(t *testing.T) {
	module := &tsast.Module{
		Path: "src/foo.ts",
		Statements: []*tsast.Statement{
			{Decl: &tsast.ImportDecl{
				Source: "./models",
				Specifiers: []tsast.ImportSpecifier{
					{Kind: tsast.ImportNamed, Local: tsast.Ident{Name: "User"}, Imported: "UserModel"},
					{Kind: tsast.ImportDefault, Local: tsast.Ident{Name: "Client"}},
					{Kind: tsast.ImportNamespace, Local: tsast.Ident{Name: "helpers"}},
				},
			}},
			{Exported: true, Decl: &tsast.TypeAliasDecl{Name: tsast.Ident{Name: "Profile"}}},
			{Decl: &tsast.TypeAliasDecl{Name: tsast.Ident{Name: "internalOnly"}}},
		},
	}

	res := BuildModuleResolution(module, diag.Standalone("src/foo.ts"))

	t.Run("Named Import", func(t *testing.T) {
		key, ok := res.Get("User")
		require.True(t, ok)
		assert.Equal(t, ModuleKey{Module: "./models", Kind: ImportNamed, Name: "UserModel"}, key)
	})

	t.Run("Default Import", func(t *testing.T) {
		key, ok := res.Get("Client")
		require.True(t, ok)
		assert.Equal(t, ModuleKey{Module: "./models", Kind: ImportDefault}, key)
	})

	t.Run("Namespace Import", func(t *testing.T) {
		key, ok := res.Get("helpers")
		require.True(t, ok)
		assert.Equal(t, ImportNamespace, key.Kind)
	})

	t.Run("Exported Alias", func(t *testing.T) {
		key, ok := res.Get("Profile")
		require.True(t, ok)
		assert.Equal(t, ModuleKey{Module: "src/foo.ts", Kind: ImportNamed, Name: "Profile"}, key)
	})

	t.Run("Unexported Alias Is Not Indexed", func(t *testing.T) {
		_, ok := res.Get("internalOnly")
		assert.False(t, ok)
	})

	t.Run("Unknown Identifier", func(t *testing.T) {
		_, ok := res.Get("Missing")
		assert.False(t, ok)
	})
}

func TestModuleKey_String(t *testing.T) {
	assert.Equal(t, `"UserModel" from module "./models"`,
		ModuleKey{Module: "./models", Kind: ImportNamed, Name: "UserModel"}.String())
	assert.Equal(t, `default export of module "./models"`,
		ModuleKey{Module: "./models", Kind: ImportDefault}.String())
	assert.Equal(t, `namespace import of module "./models"`,
		ModuleKey{Module: "./models", Kind: ImportNamespace}.String())
}
