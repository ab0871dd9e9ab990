package crawler

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCrawler_ScanProject(t *testing.T) {
	root := t.TempDir()
	resolver := "/** @RelayResolver */\nexport function f(): string { return ''; }\n"

	writeFile(t, root, "User.ts", resolver)
	writeFile(t, root, "Profile.tsx", resolver)
	writeFile(t, root, "plain.ts", "export const x = 1;\n")
	writeFile(t, root, "types.d.ts", resolver)
	writeFile(t, root, "User.test.ts", resolver)
	writeFile(t, root, "readme.md", resolver)
	writeFile(t, root, "node_modules/dep/index.ts", resolver)
	writeFile(t, root, "nested/Client.ts", resolver)

	var scanned []string
	c := NewCrawler(root)
	err := c.ScanProject(root, func(path string, src []byte) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		scanned = append(scanned, rel)
		assert.Contains(t, string(src), "@RelayResolver")
		return nil
	})
	require.NoError(t, err)

	sort.Strings(scanned)
	assert.Equal(t, []string{
		"Profile.tsx",
		"User.ts",
		filepath.Join("nested", "Client.ts"),
	}, scanned)
}

func TestCrawler_Gitignore(t *testing.T) {
	root := t.TempDir()
	resolver := "/** @RelayResolver */\nexport function f(): string { return ''; }\n"

	writeFile(t, root, ".gitignore", "generated/\nLegacy.ts\n")
	writeFile(t, root, "User.ts", resolver)
	writeFile(t, root, "Legacy.ts", resolver)
	writeFile(t, root, "generated/Output.ts", resolver)

	var scanned []string
	c := NewCrawler(root)
	err := c.ScanProject(root, func(path string, _ []byte) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		scanned = append(scanned, rel)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"User.ts"}, scanned)
}
