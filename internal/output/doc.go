// Package output formats resolved mod records for display or machine
// consumption.
//
// Three formats are supported:
//   - text     one line per record, built from a placeholder template (default)
//   - json     an array of {source, id, slug, title, description, url}
//   - markdown a table with a heading, suitable for a pack README
//
// Records are sorted with [Sort] before formatting. Use [GetWriter] to obtain
// a [Writer] for a format name, then call [Writer.Write]. [WriteFile] handles
// the overwrite check for file destinations and [Preview] renders markdown
// for the terminal.
package output
