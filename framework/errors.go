package framework

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a test case failed.
type ErrorKind string

const (
	// KindNone is used for test cases that did not fail.
	KindNone ErrorKind = ""

	// KindTransport means no HTTP response was received at all (DNS failure, timeout, refused
	// connection). The status is always 0.
	KindTransport ErrorKind = "transport"

	// KindHTTP means a response was received, but its status was 400 or higher.
	KindHTTP ErrorKind = "http"

	// KindAssertion means the response was received but did not satisfy the case's success
	// predicate.
	KindAssertion ErrorKind = "assertion"

	// KindPrecondition means the case could not run, for instance because it needed a token
	// that no earlier login had provided. No request is sent in this case.
	KindPrecondition ErrorKind = "precondition"

	// KindHarnessFault means the test case's own code misbehaved (for instance by panicking),
	// as opposed to the system under test.
	KindHarnessFault ErrorKind = "harness-fault"
)

// Label returns a short human-readable description of the kind.
func (k ErrorKind) Label() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindHTTP:
		return "HTTP error"
	case KindAssertion:
		return "assertion failure"
	case KindPrecondition:
		return "precondition failure"
	case KindHarnessFault:
		return "harness fault"
	default:
		return ""
	}
}

// CaseError is an error with a known ErrorKind. Errors recorded by a Context that are not
// CaseErrors are treated as assertion failures.
type CaseError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e CaseError) Error() string {
	if e.Kind == KindHTTP && e.Status != 0 {
		if e.Message == "" {
			return fmt.Sprintf("HTTP %d", e.Status)
		}
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// Errorf creates a CaseError of the specified kind.
func Errorf(kind ErrorKind, format string, args ...interface{}) CaseError {
	return CaseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the ErrorKind of err, defaulting to KindAssertion for errors that do not
// carry one.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ce CaseError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindAssertion
}
