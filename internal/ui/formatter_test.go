package ui

import (
	"strings"
	"testing"

	"github.com/ryo246912/gh-bump-pr/internal/tree"
)

func TestPadRight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "pad short string",
			input:    "hello",
			width:    10,
			expected: "hello     ",
		},
		{
			name:     "no padding needed",
			input:    "hello",
			width:    5,
			expected: "hello",
		},
		{
			name:     "string longer than width",
			input:    "hello world",
			width:    5,
			expected: "hello world",
		},
		{
			name:     "empty string",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "unicode characters",
			input:    "こんにちは",
			width:    15,
			expected: "こんにちは     ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PadRight(tt.input, tt.width)
			if got != tt.expected {
				t.Errorf("PadRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
		})
	}
}

func TestFormatFileTable(t *testing.T) {
	files := []tree.FileEntry{
		{Path: "CHANGELOG.md", Content: "# Changelog\n## [1.0.0]\n"},
		{Path: "docs/読む.md", Content: "no trailing newline"},
		{Path: "empty", Content: ""},
	}

	want := "PATH          LINES\n" +
		"CHANGELOG.md  2\n" +
		"docs/読む.md  1\n" +
		"empty         0\n"
	if got := FormatFileTable(files); got != want {
		t.Errorf("FormatFileTable() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatPlan(t *testing.T) {
	got := FormatPlan(Plan{
		Repository: "owner/repo",
		Base:       "main",
		Head:       "bump-new-version",
		Title:      "Release v1.2.0",
		Body:       "# Changelog\n## [1.2.0]\n",
		Files:      []tree.FileEntry{{Path: "a.txt", Content: "a\n"}},
	})

	for _, want := range []string{
		"Repository:  owner/repo",
		"Branches:    main <- bump-new-version",
		"Title:       Release v1.2.0",
		"Files:       1",
		"a.txt  1",
		"## [1.2.0]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatPlan() missing %q in:\n%s", want, got)
		}
	}
}
