package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/packwizml/internal/mods"
)

// JSONEntry is one element of the json output.
type JSONEntry struct {
	Source      string `json:"source"`
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// JSONWriter outputs records as an indented JSON array.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, records []mods.Record) error {
	entries := make([]JSONEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, JSONEntry{
			Source:      r.Source().String(),
			ID:          r.ID(),
			Slug:        r.Slug(),
			Title:       r.Title(),
			Description: r.Description(),
			URL:         r.URL(),
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
