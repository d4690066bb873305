package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindFile
	KindDeserialization
	KindUpstream
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFile:
		return "file"
	case KindDeserialization:
		return "deserialization"
	case KindUpstream:
		return "upstream"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a classified failure with optional operation and path context.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Op != "" {
		msg = e.Op
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// File wraps an I/O failure on path.
func File(op, path string, err error) error {
	return &Error{Kind: KindFile, Op: op, Path: path, Err: err}
}

// Deserialization wraps a parse failure of the content at path.
func Deserialization(path string, err error) error {
	return &Error{Kind: KindDeserialization, Op: "parsing", Path: path, Err: err}
}

// UpstreamError is a non-success HTTP response from a metadata service.
type UpstreamError struct {
	Source string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.Status, e.Body)
}

// DecodeError is an upstream response body that could not be decoded. Body
// holds the raw payload for diagnostics.
type DecodeError struct {
	Source string
	Body   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return KindUpstream
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return KindDecode
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsAuth reports whether err carries an upstream 401 or 403 response.
func IsAuth(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Status == 401 || ue.Status == 403
}
