// Package errors provides structured error types for boardtex.
//
// Every failure the cell tree, the tiler, the codec or the manifest loader
// can produce carries a machine-readable [Code]. Callers decide whether to
// abort a whole asset build or skip a single asset by inspecting the code
// rather than matching message strings.
//
// # Error Codes
//
// Codes fall into four groups:
//   - construction errors (INVALID_DIMENSION, OWNERSHIP_VIOLATION, EMPTY_CHILDREN)
//   - style errors (INVALID_COLOR, INVALID_ALPHA, INVALID_TINT)
//   - codec errors (FILE_NOT_FOUND, IO_ERROR, SIZE_MISMATCH, BAD_METADATA)
//   - planning errors (TOO_MANY_CELLS, INVALID_CHUNK_SIZE, INVALID_GUTTER)
//
// None of them is retryable: they describe misconfiguration, not transient
// failure.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDimension, "width must be positive, got %d", w)
//	if errors.Is(err, errors.ErrCodeInvalidDimension) {
//	    return nil, err
//	}
//
//	err = errors.Wrap(errors.ErrCodeIO, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error class.
type Code string

const (
	// Input
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDimension Code = "INVALID_DIMENSION"
	ErrCodeInvalidManifest  Code = "INVALID_MANIFEST"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Tree construction
	ErrCodeOwnershipViolation Code = "OWNERSHIP_VIOLATION"
	ErrCodeEmptyChildren      Code = "EMPTY_CHILDREN"

	// Styles
	ErrCodeInvalidColor Code = "INVALID_COLOR"
	ErrCodeInvalidAlpha Code = "INVALID_ALPHA"
	ErrCodeInvalidTint  Code = "INVALID_TINT"

	// Codec
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeIO           Code = "IO_ERROR"
	ErrCodeSizeMismatch Code = "SIZE_MISMATCH"
	ErrCodeBadMetadata  Code = "BAD_METADATA"

	// Planning
	ErrCodeTooManyCells     Code = "TOO_MANY_CELLS"
	ErrCodeInvalidChunkSize Code = "INVALID_CHUNK_SIZE"
	ErrCodeInvalidGutter    Code = "INVALID_GUTTER"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error carries a Code, a message for people, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error renders "CODE: message" with ": cause" appended when wrapped.
func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code, so a
// tiler error wrapped by the pipeline with fmt.Errorf keeps its code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix and cause from coded errors; other
// errors are returned as their Error string.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsNotFound reports whether err describes a missing input file.
func IsNotFound(err error) bool {
	return Is(err, ErrCodeFileNotFound)
}

// IsClientError reports whether err was caused by bad input rather than by
// the environment. The HTTP surface maps these to 400 responses.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidDimension, ErrCodeInvalidManifest,
		ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeOwnershipViolation,
		ErrCodeEmptyChildren, ErrCodeInvalidColor, ErrCodeInvalidAlpha,
		ErrCodeInvalidTint, ErrCodeSizeMismatch, ErrCodeBadMetadata,
		ErrCodeTooManyCells, ErrCodeInvalidChunkSize, ErrCodeInvalidGutter:
		return true
	}
	return false
}
