// Package changelog extracts the most recent version section of a CHANGELOG.md
// document, which becomes the title and body of the bump pull request.
package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// DefaultPath is where the changesets tooling writes the changelog.
	DefaultPath = "CHANGELOG.md"

	sectionMarker = "## ["
	bodyHeader    = "# Changelog\n"
)

// ErrNoVersionSection is returned when the document has no "## [" header.
var ErrNoVersionSection = errors.New("changelog has no version section")

// Section is the latest version entry of a changelog
type Section struct {
	Version string
	Title   string
	Body    string
}

// Extract scans lines for the first "## [" header and collects it, together
// with every following line, until the next "## [" header. A single header
// yields a section that runs to the end of the document.
func Extract(lines []string, titlePrefix string) (Section, error) {
	var (
		body    strings.Builder
		version string
		open    bool
	)

	for _, line := range lines {
		if strings.HasPrefix(line, sectionMarker) {
			if open {
				break
			}
			open = true
			version = parseVersion(line)
		}
		if open {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}

	if !open {
		return Section{}, ErrNoVersionSection
	}

	return Section{
		Version: version,
		Title:   titlePrefix + version,
		Body:    bodyHeader + body.String(),
	}, nil
}

// parseVersion returns the text between "## [" and the next "]".
func parseVersion(line string) string {
	rest := strings.TrimPrefix(line, sectionMarker)
	version, _, _ := strings.Cut(rest, "]")
	return strings.TrimSpace(version)
}

// ExtractReader reads a changelog document from r and extracts its latest section.
func ExtractReader(r io.Reader, titlePrefix string) (Section, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Section{}, fmt.Errorf("failed to read changelog: %w", err)
	}
	return Extract(lines, titlePrefix)
}

// ReadFile opens the changelog at path. A missing file is an error.
func ReadFile(path, titlePrefix string) (Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return Section{}, fmt.Errorf("failed to open changelog: %w", err)
	}
	defer f.Close()

	section, err := ExtractReader(f, titlePrefix)
	if err != nil {
		return Section{}, fmt.Errorf("%s: %w", path, err)
	}
	return section, nil
}
