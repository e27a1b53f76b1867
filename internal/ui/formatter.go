package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/ryo246912/gh-bump-pr/internal/tree"
)

func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

// FormatFileTable lists the commit payload, one file per row
func FormatFileTable(files []tree.FileEntry) string {
	width := runewidth.StringWidth("PATH")
	for _, f := range files {
		if w := runewidth.StringWidth(f.Path); w > width {
			width = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", PadRight("PATH", width), "LINES")
	for _, f := range files {
		fmt.Fprintf(&b, "%s  %d\n", PadRight(f.Path, width), lineCount(f.Content))
	}
	return b.String()
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// Plan describes what a run is about to push
type Plan struct {
	Repository string
	Base       string
	Head       string
	Title      string
	Body       string
	Files      []tree.FileEntry
}

// FormatPlan renders the plan shown before pushing or on a dry run
func FormatPlan(p Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", PadRight("Repository:", 12), p.Repository)
	fmt.Fprintf(&b, "%s %s <- %s\n", PadRight("Branches:", 12), p.Base, p.Head)
	fmt.Fprintf(&b, "%s %s\n", PadRight("Title:", 12), p.Title)
	fmt.Fprintf(&b, "%s %d\n\n", PadRight("Files:", 12), len(p.Files))
	b.WriteString(FormatFileTable(p.Files))
	b.WriteString("\n")
	b.WriteString(p.Body)
	return b.String()
}
