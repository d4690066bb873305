package output

import (
	"io"
	"strings"

	"github.com/dshills/packwizml/internal/mods"
)

// MarkdownWriter outputs a markdown table of records.
type MarkdownWriter struct {
	// Title is rendered as a level-two heading when set.
	Title string
}

func (m *MarkdownWriter) Write(w io.Writer, records []mods.Record) error {
	ew := &errWriter{w: w}
	if m.Title != "" {
		ew.printf("## %s\n\n", m.Title)
	}
	if len(records) == 0 {
		ew.print("No mods.\n")
		return ew.err
	}

	ew.print("| # | Mod | Source | Description |\n")
	ew.print("|---|-----|--------|-------------|\n")
	for i, r := range records {
		ew.printf("| %d | [%s](%s) | %s | %s |\n",
			i+1, mdCell(r.Title()), r.URL(), r.Source(), mdCell(r.Description()))
	}
	ew.printf("\n*%d mods*\n", len(records))
	return ew.err
}

// mdCell keeps a value on one table row.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
