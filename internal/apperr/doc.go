// Package apperr defines the error taxonomy shared by every packwizml
// component.
//
// Five kinds of failure are distinguished: Validation (malformed references,
// missing pack files, output conflicts), File (cache or pack I/O),
// Deserialization (unparsable cache or pack content), Upstream (a non-success
// HTTP response) and Decode (an unparsable upstream body). Use [KindOf] to
// classify any wrapped error; the CLI maps kinds to exit codes.
package apperr
