package apiclient

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/storefront-qa/api-contract-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxMessageLength = 200

// Result is the normalized outcome of a single call to the API. A Result is produced for
// every call, whether or not a response was received.
type Result struct {
	// Success is true if a response was received with a status below 400.
	Success bool

	// Status is the HTTP status code, or 0 if no response was received.
	Status int

	// Payload is the parsed JSON response body. A body that is not valid JSON is provided as a
	// string value containing the raw text; an empty body is a null value.
	Payload ldvalue.Value

	// Body is the raw response body.
	Body []byte

	Header http.Header

	// Error describes a failure that prevented any response from being received, or why a
	// response with a success status was still rejected. It is empty for error statuses, whose
	// description comes from the response itself (see Message).
	Error string

	// Kind classifies an unsuccessful result: framework.KindTransport if there was no response,
	// framework.KindHTTP for an error status, framework.KindHarnessFault if the request could
	// not even be built, or framework.KindAssertion if a caller rejected the response.
	Kind framework.ErrorKind

	Elapsed time.Duration

	// Request is the request that produced this result.
	Request Request
}

// Err returns nil for a successful result, or a framework.CaseError describing the failure.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	kind := r.Kind
	if kind == framework.KindNone {
		if r.Status == 0 {
			kind = framework.KindTransport
		} else {
			kind = framework.KindHTTP
		}
	}
	if kind == framework.KindHTTP {
		return framework.CaseError{Kind: kind, Status: r.Status, Message: r.Message()}
	}
	return framework.CaseError{Kind: kind, Status: r.Status, Message: r.Error}
}

// Message returns the server-provided message from the response, if any: the "message" or
// "error" property of a JSON object body, or the beginning of a non-JSON body.
func (r Result) Message() string {
	switch r.Payload.Type() {
	case ldvalue.ObjectType:
		for _, key := range []string{"message", "error"} {
			if m := r.Payload.GetByKey(key); m.Type() == ldvalue.StringType {
				return m.StringValue()
			}
		}
	case ldvalue.StringType:
		return truncate(strings.TrimSpace(r.Payload.StringValue()), maxMessageLength)
	}
	return ""
}

// Data returns the "data" property of the response envelope.
func (r Result) Data() ldvalue.Value {
	return r.Payload.GetByKey("data")
}

// Field returns the value at a dotted path within the payload, such as "data.products.0.name",
// or a null value if there is none.
func (r Result) Field(path string) ldvalue.Value {
	return Lookup(r.Payload, path)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
