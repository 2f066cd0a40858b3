package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which part of the object model raised the error.
type Phase string

const (
	PhaseQuery     Phase = "query"     // interface discovery
	PhaseConnect   Phase = "connect"   // bus graph mutation
	PhaseLifecycle Phase = "lifecycle" // finish/teardown
	PhaseRefcount  Phase = "refcount"  // reference counting
)

// Kind categorizes the error.
type Kind string

const (
	// KindNotResolved is the only recoverable kind: the requested
	// identifier is not reachable from the queried object. Callers are
	// expected to branch on it.
	KindNotResolved Kind = "not_resolved"

	// Contract violations. Errors of these kinds are delivered by
	// panic, never returned: tolerating them would corrupt the
	// reference graph.
	KindUnderflow    Kind = "underflow"     // unref past zero
	KindHostConflict Kind = "host_conflict" // second hosting bus
	KindFinished     Kind = "finished"      // operation on finished object

	// Connection rejections, returned from Connect.
	KindSelfConnect     Kind = "self_connect"
	KindLevelDenied     Kind = "level_denied"
	KindDuplicate       Kind = "duplicate"
	KindUnanchored      Kind = "unanchored"
	KindInvalidArgument Kind = "invalid_argument"
)

// Error is the structured error type used throughout the module.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	IID    string // identifier involved, if any
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.IID != "" {
		b.WriteString(" iid=")
		b.WriteString(e.IID)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two Errors match when
// their Phase and Kind agree, so sentinel matching works without
// comparing detail text.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsNotResolved reports whether err is a resolution failure.
func IsNotResolved(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindNotResolved
}

// Convenience constructors for common error shapes.

// NotResolved creates a resolution failure for the given identifier.
func NotResolved(iid string) *Error {
	return &Error{
		Phase: PhaseQuery,
		Kind:  KindNotResolved,
		IID:   iid,
	}
}

// Underflow creates a refcount underflow violation.
func Underflow(op string) *Error {
	return &Error{
		Phase:  PhaseRefcount,
		Kind:   KindUnderflow,
		Detail: fmt.Sprintf("%s: reference count is already 0", op),
	}
}

// HostConflict creates a second-host violation.
func HostConflict() *Error {
	return &Error{
		Phase:  PhaseConnect,
		Kind:   KindHostConflict,
		Detail: "object is already hosted by a bus",
	}
}

// Finished creates an operation-after-finish violation.
func Finished(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFinished,
		Detail: fmt.Sprintf("%s on finished object", op),
	}
}

// SelfConnect creates a loop-back rejection.
func SelfConnect() *Error {
	return &Error{
		Phase:  PhaseConnect,
		Kind:   KindSelfConnect,
		Detail: "a bus cannot connect to itself",
	}
}

// LevelDenied creates a security-level rejection: a less secure bus
// cannot be reached from connect on a more secure one.
func LevelDenied(busLevel, candidateLevel int) *Error {
	return &Error{
		Phase:  PhaseConnect,
		Kind:   KindLevelDenied,
		Detail: fmt.Sprintf("candidate level %d is more secure than bus level %d", candidateLevel, busLevel),
	}
}

// Duplicate creates an already-connected rejection.
func Duplicate(what string) *Error {
	return &Error{
		Phase:  PhaseConnect,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("%s is already connected", what),
	}
}

// Unanchored creates a rejection for a sibling candidate that no caller
// holds a reference to. Storing a weak link to it would dangle the
// moment the probing reference is released.
func Unanchored() *Error {
	return &Error{
		Phase:  PhaseConnect,
		Kind:   KindUnanchored,
		Detail: "sibling candidate has no external reference",
	}
}

// InvalidArgument creates an invalid-input rejection.
func InvalidArgument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// Wrap wraps an existing error with phase and kind context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
