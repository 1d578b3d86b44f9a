package lang

import (
	"errors"
	"fmt"
)

// ErrorKind classifies resolution failures.
type ErrorKind int

const (
	// ErrorInvalidExtension indicates the extension does not match the language.
	ErrorInvalidExtension ErrorKind = iota
	// ErrorNotFound indicates the file does not exist.
	ErrorNotFound
	// ErrorNotAFile indicates the path exists but is not a regular file.
	ErrorNotAFile
	// ErrorNotExecutable indicates a compiled target has no executable bit.
	ErrorNotExecutable
	// ErrorNotReadable indicates a script cannot be read by this process.
	ErrorNotReadable
	// ErrorUnsupported indicates an unknown language identifier.
	ErrorUnsupported
	// ErrorStat indicates the file could not be inspected.
	ErrorStat
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorInvalidExtension:
		return "invalid_extension"
	case ErrorNotFound:
		return "not_found"
	case ErrorNotAFile:
		return "not_a_file"
	case ErrorNotExecutable:
		return "not_executable"
	case ErrorNotReadable:
		return "not_readable"
	case ErrorUnsupported:
		return "unsupported"
	case ErrorStat:
		return "stat"
	default:
		return "unknown"
	}
}

// Error is a resolution failure.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a resolution error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var resolveErr *Error
	if errors.As(err, &resolveErr) {
		return resolveErr.Kind == kind
	}
	return false
}
