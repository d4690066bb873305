package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/mods"
)

// Format names accepted by GetWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Writer writes records in a specific format.
type Writer interface {
	Write(w io.Writer, records []mods.Record) error
}

// GetWriter returns a writer for the specified format. template is used by
// the text format only; an empty template selects DefaultTemplate.
func GetWriter(format, template string) (Writer, error) {
	switch format {
	case "", FormatText:
		return NewTextWriter(template), nil
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatMarkdown:
		return &MarkdownWriter{}, nil
	default:
		return nil, apperr.Validation("unsupported output format: %s", format)
	}
}

// CheckDestination fails with a validation error when path exists and force
// is not set.
func CheckDestination(path string, force bool) error {
	if path == "" || force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return apperr.Validation("output file %s already exists (use --force to overwrite)", path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return apperr.File("checking output", path, err)
	}
	return nil
}

// WriteFile renders records with writer and stores the result at path. The
// records are rendered in memory first so a formatting failure leaves no
// partial file behind.
func WriteFile(path string, force bool, writer Writer, records []mods.Record) error {
	var buf bytes.Buffer
	if err := writer.Write(&buf, records); err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return apperr.Validation("output file %s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return apperr.File("creating output", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return apperr.File("writing output", path, err)
	}
	if err := f.Close(); err != nil {
		return apperr.File("closing output", path, err)
	}
	return nil
}

// Render returns the records formatted by writer as a string.
func Render(writer Writer, records []mods.Record) (string, error) {
	var buf bytes.Buffer
	if err := writer.Write(&buf, records); err != nil {
		return "", fmt.Errorf("rendering output: %w", err)
	}
	return buf.String(), nil
}
