package operation

import (
    "errors"
    "fmt"
)

// ErrorKind classifies translation and dispatch failures so callers can
// pattern-match instead of string-comparing.
type ErrorKind int

const (
    // ErrMalformedField marks a required field that failed to parse.
    ErrMalformedField ErrorKind = iota
    // ErrProtocolViolation marks a broken invariant: an operation kind with
    // no wire mapping, or a correlation entry that cannot be answered.
    ErrProtocolViolation
    // ErrTransport marks link-layer failures surfaced unchanged.
    ErrTransport
)

func (k ErrorKind) String() string {
    switch k {
    case ErrMalformedField:
        return "malformed-field"
    case ErrProtocolViolation:
        return "protocol-violation"
    case ErrTransport:
        return "transport"
    default:
        return "unknown"
    }
}

// Error is the typed error value produced by this package and the handlers
// built on it. Op names the failing stage.
type Error struct {
    Kind ErrorKind
    Op   string
    Msg  string
    Err  error
}

func (e *Error) Error() string {
    s := e.Op + ": " + e.Msg
    if e.Err != nil {
        s += ": " + e.Err.Error()
    }
    return s
}

func (e *Error) Unwrap() error { return e.Err }

// Malformedf builds a malformed-field error.
func Malformedf(op, format string, args ...any) *Error {
    return &Error{Kind: ErrMalformedField, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Violationf builds a protocol-violation error.
func Violationf(op, format string, args ...any) *Error {
    return &Error{Kind: ErrProtocolViolation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// TransportErr wraps a link-layer error without reclassifying it.
func TransportErr(op string, err error) *Error {
    return &Error{Kind: ErrTransport, Op: op, Msg: "link", Err: err}
}

// Transportf builds a transport error with no underlying cause.
func Transportf(op, format string, args ...any) *Error {
    return &Error{Kind: ErrTransport, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, if err carries one.
func KindOf(err error) (ErrorKind, bool) {
    var e *Error
    if errors.As(err, &e) {
        return e.Kind, true
    }
    return 0, false
}

// IsProtocolViolation reports whether err is a protocol violation.
func IsProtocolViolation(err error) bool {
    k, ok := KindOf(err)
    return ok && k == ErrProtocolViolation
}
