// Package errors defines the classified error taxonomy shared by every
// cloudkit component.
//
// Every failure surfaced by a client is an *Error carrying a Kind from a
// small closed set, the provider's original code and message, the HTTP
// status (when one was received) and a retryable flag:
//
//	CONFIGURATION     bad region or missing credentials, raised at construction
//	INVALID_INPUT     caller contract violation, e.g. a non-scalar parameter
//	TRANSPORT         connection failure or timeout, transient
//	NOT_FOUND         provider reported the resource does not exist
//	IDENTIFIER_TAKEN  provider reported the identifier is already in use
//	UNCLASSIFIED      provider error code with no mapping, kept verbatim
//	PARSE             success body could not be decoded
//
// Callers branch on the kind with the Is* predicates:
//
//	if errors.IsNotFound(err) {
//	    return nil // already gone
//	}
package errors
