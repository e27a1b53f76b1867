// Package tree collects the working tree files that make up a bump commit.
package tree

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotUTF8 is returned when a collected file cannot be decoded as UTF-8 text.
var ErrNotUTF8 = errors.New("file is not valid UTF-8")

// changesetsPrefix marks hidden entries that are committed anyway.
const changesetsPrefix = ".changesets"

// ignoredSuffixes are build artifacts and binary images.
var ignoredSuffixes = []string{"target", ".png", ".jpeg"}

// FileEntry is one file of the commit payload
type FileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileSet holds collected files keyed by (path, content)
type FileSet map[FileEntry]struct{}

// Add inserts an entry into the set
func (s FileSet) Add(e FileEntry) {
	s[e] = struct{}{}
}

// Sorted returns the entries ordered by path, then content
func (s FileSet) Sorted() []FileEntry {
	entries := make([]FileEntry, 0, len(s))
	for e := range s {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b FileEntry) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(a.Content, b.Content)
	})
	return entries
}

// Option configures a collection run
type Option func(*collector)

// WithExcludes adds doublestar patterns matched against relative paths.
// Entries named .changesets* are never excluded.
func WithExcludes(patterns ...string) Option {
	return func(c *collector) {
		c.excludes = append(c.excludes, patterns...)
	}
}

// ValidateExcludes reports the first malformed exclude pattern
func ValidateExcludes(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// IsIgnored applies the built-in name rules to a single directory entry name.
func IsIgnored(name string) bool {
	if strings.HasPrefix(name, changesetsPrefix) {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

type collector struct {
	fsys     fs.FS
	excludes []string
}

// Collect walks root recursively and returns every file that survives the
// ignore rules, with its full text content.
func Collect(root string, opts ...Option) (FileSet, error) {
	return CollectFS(os.DirFS(root), opts...)
}

// CollectFS is Collect over an arbitrary file system. Paths in the result are
// relative to the root of fsys and always use forward slashes.
func CollectFS(fsys fs.FS, opts ...Option) (FileSet, error) {
	c := &collector{fsys: fsys}
	for _, opt := range opts {
		opt(c)
	}
	if err := ValidateExcludes(c.excludes); err != nil {
		return nil, err
	}

	files := make(FileSet)
	if err := c.walk(".", files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *collector) walk(dir string, files FileSet) error {
	entries, err := fs.ReadDir(c.fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		rel := path.Join(dir, name)
		if !c.include(name, rel) {
			continue
		}

		switch {
		case entry.IsDir():
			if err := c.walk(rel, files); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			content, err := fs.ReadFile(c.fsys, rel)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rel, err)
			}
			if !utf8.Valid(content) {
				return fmt.Errorf("%s: %w", rel, ErrNotUTF8)
			}
			files.Add(FileEntry{Path: rel, Content: string(content)})
		}
	}
	return nil
}

func (c *collector) include(name, rel string) bool {
	if strings.HasPrefix(name, changesetsPrefix) {
		return true
	}
	if IsIgnored(name) {
		return false
	}
	for _, pattern := range c.excludes {
		// Patterns were validated up front, so Match cannot fail here.
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}
