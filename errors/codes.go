package errors

// Kind classifies an error into one of the closed set of failure categories.
type Kind string

// Client-side kinds.
const (
	// KindConfiguration indicates invalid client configuration (unknown region,
	// missing credentials). Raised at construction, never retried.
	KindConfiguration Kind = "CONFIGURATION"
	// KindInvalidInput indicates the caller passed a value the core cannot
	// transmit, such as a non-scalar request parameter.
	KindInvalidInput Kind = "INVALID_INPUT"
	// KindParse indicates a success response body that could not be decoded.
	KindParse Kind = "PARSE"
)

// Transport kinds (retryable for idempotent requests).
const (
	// KindTransport indicates a connection-level failure, a timeout, or a
	// failure response with no extractable provider error.
	KindTransport Kind = "TRANSPORT"
)

// Service kinds, produced by the classifier from a provider error code.
const (
	// KindNotFound indicates the requested resource does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindIdentifierTaken indicates the requested identifier is already in use.
	KindIdentifierTaken Kind = "IDENTIFIER_TAKEN"
	// KindUnclassified indicates a provider error code with no table entry.
	KindUnclassified Kind = "UNCLASSIFIED"
)

var serviceKinds = map[Kind]bool{
	KindNotFound:        true,
	KindIdentifierTaken: true,
	KindUnclassified:    true,
}

// IsServiceKind reports whether k is produced from a provider error code.
func IsServiceKind(k Kind) bool {
	return serviceKinds[k]
}
