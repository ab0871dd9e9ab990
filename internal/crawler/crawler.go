// Package crawler walks a project tree for resolver source files.
package crawler

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var marker = []byte("@RelayResolver")

// Crawler scans a directory for TypeScript files carrying resolver
// docblocks.
type Crawler struct {
	ignored   []string
	gitignore *ignore.GitIgnore
}

// NewCrawler creates a crawler rooted at the project directory. A
// .gitignore at the root is honored when present.
func NewCrawler(root string) *Crawler {
	c := &Crawler{
		ignored: []string{".git", "vendor", "node_modules", "testdata", "__generated__"},
	}
	if matcher, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		c.gitignore = matcher
	}
	return c
}

// ScanProject walks the root directory and streams every candidate file to
// the callback. Only .ts/.tsx files containing a resolver marker are
// surfaced, so the callback never parses unrelated sources.
func (c *Crawler) ScanProject(root string, onFile func(path string, src []byte) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			if c.gitignore != nil && rel != "." && c.gitignore.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isResolverSource(d.Name()) {
			return nil
		}
		if c.gitignore != nil && c.gitignore.MatchesPath(rel) {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are skipped rather than failing the scan.
			return nil
		}
		if !bytes.Contains(src, marker) {
			return nil
		}
		return onFile(path, src)
	})
}

func isResolverSource(name string) bool {
	if strings.HasSuffix(name, ".d.ts") {
		return false
	}
	if strings.HasSuffix(name, ".test.ts") || strings.HasSuffix(name, ".test.tsx") {
		return false
	}
	return strings.HasSuffix(name, ".ts") || strings.HasSuffix(name, ".tsx")
}
