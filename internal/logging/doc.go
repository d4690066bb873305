// Package logging builds the charmbracelet/log logger used across packwizml.
//
// Terminal output goes to stderr with colors controlled by [ColorMode]. When
// a log file is configured, records are written as logfmt to a rotating file
// instead.
package logging
