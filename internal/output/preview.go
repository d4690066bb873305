package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

// PreviewOptions controls Preview.
type PreviewOptions struct {
	// Plain disables colors and styling.
	Plain bool
	// Width wraps the rendered text; 0 keeps glamour's default.
	Width int
}

// Preview renders markdown for the terminal and writes it to w.
func Preview(w io.Writer, markdown string, opts PreviewOptions) error {
	var rendererOpts []glamour.TermRendererOption
	if opts.Plain {
		rendererOpts = append(rendererOpts, glamour.WithStandardStyle("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}
	if opts.Width > 0 {
		rendererOpts = append(rendererOpts, glamour.WithWordWrap(opts.Width))
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
