// Package codeowners reads the repository's CODEOWNERS documents and returns
// the handles that should review the bump pull request.
package codeowners

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

// DefaultPaths are the locations GitHub reads CODEOWNERS from, in order.
var DefaultPaths = []string{
	"CODEOWNERS",
	".github/CODEOWNERS",
	"docs/CODEOWNERS",
}

var ownerPattern = regexp.MustCompile(`@(\w+)`)

// Read parses every existing file in paths and returns the union of their
// owners in first-seen order. Missing files are skipped.
func Read(fsys fs.FS, paths []string) ([]string, error) {
	var owners []string
	seen := make(map[string]bool)

	for _, p := range paths {
		content, err := fs.ReadFile(fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}

		for _, owner := range Parse(string(content)) {
			if !seen[owner] {
				seen[owner] = true
				owners = append(owners, owner)
			}
		}
	}

	return owners, nil
}

// Parse extracts owner handles from a single CODEOWNERS document, without the
// leading "@". Blank lines and comment lines are skipped.
func Parse(content string) []string {
	var owners []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, m := range ownerPattern.FindAllStringSubmatch(line, -1) {
			owners = append(owners, m[1])
		}
	}
	return owners
}
