package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/packwizml/internal/mods"
)

// DefaultTemplate renders one markdown list item per record.
const DefaultTemplate = `- [{NAME}]({URL}) - {DESCRIPTION}\n`

// TextWriter renders each record through a placeholder template.
//
// Placeholders: {NAME} and {TITLE} (project title), {URL}, {DESCRIPTION},
// {SLUG}, {ID}, {INDEX} (1-based position) and {SOURCE}. The two-character
// sequences \n and \t in the template become a newline and a tab.
type TextWriter struct {
	template string
}

// NewTextWriter returns a TextWriter for template, or for DefaultTemplate
// when template is empty.
func NewTextWriter(template string) *TextWriter {
	if template == "" {
		template = DefaultTemplate
	}
	return &TextWriter{template: UnescapeTemplate(template)}
}

func (t *TextWriter) Write(w io.Writer, records []mods.Record) error {
	ew := &errWriter{w: w}
	for i, r := range records {
		ew.print(ExpandTemplate(t.template, i+1, r))
	}
	return ew.err
}

// UnescapeTemplate expands the \n and \t escapes a shell passes through
// literally.
func UnescapeTemplate(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(s)
}

// ExpandTemplate substitutes every placeholder in tmpl for record r at
// 1-based position index.
func ExpandTemplate(tmpl string, index int, r mods.Record) string {
	return strings.NewReplacer(
		"{NAME}", r.Title(),
		"{TITLE}", r.Title(),
		"{URL}", r.URL(),
		"{DESCRIPTION}", r.Description(),
		"{SLUG}", r.Slug(),
		"{ID}", r.ID(),
		"{INDEX}", strconv.Itoa(index),
		"{SOURCE}", r.Source().String(),
	).Replace(tmpl)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
