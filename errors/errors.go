package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error is the classified error type returned by every cloudkit component.
type Error struct {
	// Kind classifies the failure.
	Kind Kind `json:"kind"`
	// Service names the provider API that produced the error (rds, compute, dns).
	Service string `json:"service,omitempty"`
	// Code is the provider error code, verbatim (e.g. "Client.DBInstanceNotFound").
	Code string `json:"code,omitempty"`
	// Message is the provider's original message, or a client-side description.
	Message string `json:"message"`
	// StatusCode is the HTTP status of the failed response (0 when none was received).
	StatusCode int `json:"status_code,omitempty"`
	// Retryable indicates the request may be replayed if it is idempotent.
	Retryable bool `json:"retryable"`
	// Body holds the raw (possibly truncated) failure body for diagnosis.
	Body []byte `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Service != "" {
		prefix = e.Service + ": " + prefix
	}
	switch {
	case e.Code != "" && e.StatusCode > 0:
		prefix = fmt.Sprintf("%s %s (HTTP %d)", prefix, e.Code, e.StatusCode)
	case e.Code != "":
		prefix = fmt.Sprintf("%s %s", prefix, e.Code)
	case e.StatusCode > 0:
		prefix = fmt.Sprintf("%s (HTTP %d)", prefix, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same kind. A target carrying
// a Code additionally requires the codes to match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithService tags the error with the service that produced it.
func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Sentinels for use with errors.Is.
var (
	ErrConfiguration   = &Error{Kind: KindConfiguration}
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
	ErrTransport       = &Error{Kind: KindTransport}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrIdentifierTaken = &Error{Kind: KindIdentifierTaken}
	ErrUnclassified    = &Error{Kind: KindUnclassified}
	ErrParse           = &Error{Kind: KindParse}
)

// --- Constructors ---

// Configuration creates an error for invalid client configuration.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput creates an error for a caller contract violation on field.
func InvalidInput(field, reason string) *Error {
	e := &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason)}
	if field != "" {
		e.Message = fmt.Sprintf("invalid input %q: %s", field, reason)
		e.WithDetail("field", field)
	}
	return e
}

// Transport creates a retryable error for a connection-level failure.
func Transport(cause error) *Error {
	return &Error{
		Kind: KindTransport, Message: cause.Error(),
		Retryable: true, Cause: cause,
	}
}

// Timeout creates a retryable transport error for a request that timed out.
func Timeout(cause error) *Error {
	e := &Error{
		Kind: KindTransport, Message: "request timed out",
		Retryable: true, Cause: cause,
	}
	return e.WithDetail("timeout", true)
}

// UnexpectedResponse creates a transport error for a failure response that
// carried no extractable provider error. Server-side statuses are retryable.
func UnexpectedResponse(statusCode int, body []byte) *Error {
	msg := http.StatusText(statusCode)
	if msg == "" {
		msg = "unexpected response"
	}
	return &Error{
		Kind: KindTransport, Message: msg,
		StatusCode: statusCode, Body: body,
		Retryable: statusCode >= http.StatusInternalServerError,
	}
}

// Service creates a classified provider error. The message is the provider's
// own text and is never rewritten.
func Service(kind Kind, code, message string, statusCode int) *Error {
	return &Error{
		Kind: kind, Code: code, Message: message,
		StatusCode: statusCode,
	}
}

// Parse creates an error for a success body that could not be decoded.
func Parse(cause error) *Error {
	return &Error{Kind: KindParse, Message: "malformed response body", Cause: cause}
}

// --- Predicates ---

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// IsConfiguration checks if err is a configuration error.
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }

// IsInvalidInput checks if err is a caller contract violation.
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// IsTransport checks if err is a transport-level error.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// IsNotFound checks if err is a not-found service error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsIdentifierTaken checks if err is an identifier-taken service error.
func IsIdentifierTaken(err error) bool { return KindOf(err) == KindIdentifierTaken }

// IsUnclassified checks if err is an unmapped provider error.
func IsUnclassified(err error) bool { return KindOf(err) == KindUnclassified }

// IsParse checks if err is a response decoding error.
func IsParse(err error) bool { return KindOf(err) == KindParse }

// IsRetryable checks if err may be retried for an idempotent request.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable
}
