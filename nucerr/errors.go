// Package nucerr defines the error taxonomy shared by every nucmatch
// package and the exit codes the cmd/nucmatch binary reports for each kind.
//
// The shape mirrors github.com/grailbio/base/errors: a Kind tag attached to
// an underlying cause, plus a Once accumulator for collecting the first
// error raised by a pool of workers. Kind itself can't reuse
// grailbio/base/errors.Kind directly -- that enum (NotExist, Invalid, ...)
// is closed and lives in an external package -- so nucerr defines its own,
// scoped to the six kinds spec.md's error handling section names.
package nucerr

import (
	"fmt"
	"sync"
)

// Kind classifies an error for scriptability and exit-code mapping.
type Kind int

const (
	// Internal is an invariant violation (a bug). It must never surface
	// while a worker holds shared mutable state; tasks convert it to an
	// error at the task boundary instead of panicking across goroutines.
	Internal Kind = iota
	// Usage is a bad CLI flag combination.
	Usage
	// InputFormat is a malformed FASTA (or other input) file.
	InputFormat
	// InvalidAlphabet is an unexpected byte surviving normalization.
	InvalidAlphabet
	// IndexMismatch is a stale or incompatible persisted SSA.
	IndexMismatch
	// Io is a read/write failure.
	Io
)

// ExitCode implements spec.md section 6's exit code table.
func (k Kind) ExitCode() int {
	switch k {
	case Usage:
		return 2
	case InputFormat:
		return 3
	case IndexMismatch:
		return 4
	case Io:
		return 5
	default:
		return 1
	}
}

func (k Kind) String() string {
	switch k {
	case Usage:
		return "usage"
	case InputFormat:
		return "input-format"
	case InvalidAlphabet:
		return "invalid-alphabet"
	case IndexMismatch:
		return "index-mismatch"
	case Io:
		return "io"
	default:
		return "internal"
	}
}

// Error is a Kind-tagged error carrying the offending file or record, as
// spec.md section 7 requires ("all errors are reported with the offending
// file/record and a stable error kind tag").
type Error struct {
	Kind    Kind
	Subject string // offending file/record/sequence name; may be empty.
	Cause   error
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Cause)
}

// Unwrap lets errors.Is/As see through to Cause.
func (e *Error) Unwrap() error { return e.Cause }

// E constructs an Error, following the teacher's errors.E(cause, context...)
// call shape (see markduplicates/metrics.go).
func E(kind Kind, subject string, cause error) *Error {
	return &Error{Kind: kind, Subject: subject, Cause: cause}
}

// Usagef builds a Usage error from a formatted message, for CLI validation
// failures that have no underlying cause error.
func Usagef(format string, args ...interface{}) *Error {
	return &Error{Kind: Usage, Cause: fmt.Errorf(format, args...)}
}

// Internalf builds an Internal error from a formatted message.
func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: Internal, Cause: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, defaulting to Internal for errors that
// did not originate from this package (e.g. a bare I/O error that escaped
// without being wrapped).
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Internal
}

// Once accumulates the first non-nil error set by any of a pool of
// goroutines, following github.com/grailbio/base/errors.Once's shape (see
// markduplicates/mark_duplicates.go: "e := errors.Once{}", "e.Set(err)",
// "e.Err()"). The pipeline driver uses this to implement spec.md section
// 5's "surfaces the first error" cancellation rule.
type Once struct {
	mu  sync.Mutex
	err error
}

// Set records err as the accumulated error if none has been recorded yet.
// Subsequent calls are no-ops once an error is set, so the *first* error
// wins.
func (o *Once) Set(err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err == nil {
		o.err = err
	}
}

// Err returns the first error recorded, or nil.
func (o *Once) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}
