package caaml

import "fmt"

// ParseError is returned when a document is not well-formed XML or is not a
// SnowProfile document.
type ParseError struct {
	Source string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing %s: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldParseError reports a single value that could not be converted. The
// reader logs it and leaves the field empty.
type FieldParseError struct {
	Path  string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("field %s: cannot parse %q: %v", e.Path, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// UnsupportedVersionError is returned for a CAAML version this package does
// not write.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported CAAML version %q (supported: 6.0.5, 6.0.6)", e.Version)
}
