package harness

import (
	"encoding/json"
	"fmt"

	"github.com/storefront-qa/api-contract-tests/apiclient"
	"github.com/storefront-qa/api-contract-tests/credentials"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// T represents a test case in an API test run.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner. To make test assertions, you can use the assert and require
// packages, passing the *T as if it were a *testing.T; such failures are reported as assertion
// failures. The Require methods of T classify failures more precisely (HTTP error, transport
// error, missing precondition) and immediately end the test.
type T struct {
	context *framework.Context
	env     *Environment
	client  *apiclient.Client
}

func newTestScope(context *framework.Context, env *Environment) *T {
	t := &T{
		context: context,
		env:     env,
	}
	if env.Client != nil {
		t.client = env.Client.WithLogger(context.DebugLogger())
	}
	return t
}

func (t *T) ID() framework.TestID {
	return t.context.ID()
}

func (t *T) Env() *Environment {
	return t.env
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Failed returns true if any failure has been recorded for the test so far.
func (t *T) Failed() bool {
	return t.context.Failed()
}

// Fail records a classified failure and immediately exits the test.
func (t *T) Fail(err error) {
	t.context.Fail(err)
	t.context.FailNow()
}

// Precondition fails the test as a precondition failure, without any request being made.
func (t *T) Precondition(format string, args ...interface{}) {
	t.Fail(framework.Errorf(framework.KindPrecondition, format, args...))
}

// Call sends a request and records its status as the status of this test. It does not fail
// the test by itself; use RequireSuccess or RequireStatus on the result.
func (t *T) Call(req apiclient.Request) apiclient.Result {
	if t.client == nil {
		t.Fail(framework.Errorf(framework.KindHarnessFault, "test environment has no API client"))
	}
	result := t.client.Call(t.env.requestContext(), req)
	t.context.SetStatus(result.Status)
	return result
}

// CallAs is like Call, but sends the stored token for the role. If there is no token for the
// role, the test fails with a precondition failure and no request is sent.
func (t *T) CallAs(role credentials.Role, req apiclient.Request) apiclient.Result {
	req.Token = t.RequireToken(role)
	return t.Call(req)
}

// RequireToken returns the stored token for the role, or fails the test with a precondition
// failure if no login for that role has succeeded.
func (t *T) RequireToken(role credentials.Role) string {
	token, ok := t.credentials().TokenFor(role)
	if !ok {
		t.Precondition("no %s token is available (has a %s login succeeded?)", role, role)
	}
	return token
}

// Login logs in with the specified account and stores the token. If params is empty, the
// configured login for the role is used. The test fails immediately if the login fails.
func (t *T) Login(role credentials.Role, params servicedef.LoginParams) apiclient.Result {
	result := t.TryLogin(role, params)
	t.RequireSuccess(result)
	return result
}

// TryLogin is like Login, but does not fail the test if the login is rejected; this is for
// tests that expect a login to fail. It still fails with a precondition failure if there are
// no credentials to send.
func (t *T) TryLogin(role credentials.Role, params servicedef.LoginParams) apiclient.Result {
	if !params.IsDefined() {
		params = t.env.Logins[role]
	}
	if !params.IsDefined() {
		t.Precondition("no credentials are configured for role %q", role)
	}
	if t.client == nil {
		t.Fail(framework.Errorf(framework.KindHarnessFault, "test environment has no API client"))
	}
	t.Debug("Logging in as %s (%s)", role, params.Identity())
	result := t.credentials().Login(t.env.requestContext(), t.client, role, params)
	t.context.SetStatus(result.Status)
	return result
}

// RequireSuccess fails the test immediately if the result is not a success.
func (t *T) RequireSuccess(result apiclient.Result) {
	if err := result.Err(); err != nil {
		t.Fail(err)
	}
}

// RequireStatus fails the test immediately unless the response has exactly the specified
// status. This is how a test expects an error response: RequireStatus(result, 401) passes if
// the server rejected the request as unauthorized. A matching success status still fails if
// the result was rejected, as for a login response without a token.
func (t *T) RequireStatus(result apiclient.Result, status int) {
	if result.Status == status {
		if status >= 400 || result.Success {
			return
		}
		t.Fail(result.Err())
	}
	if result.Status == 0 || result.Status >= 400 {
		t.Fail(result.Err())
	}
	t.Fail(framework.CaseError{
		Kind:    framework.KindAssertion,
		Status:  result.Status,
		Message: fmt.Sprintf("expected status %d but got %d", status, result.Status),
	})
}

// RequireFields fails the test immediately if any of the dotted paths is missing from the
// response payload or is null.
func (t *T) RequireFields(result apiclient.Result, paths ...string) {
	var missing []string
	for _, p := range paths {
		if v, ok := apiclient.LookupOK(result.Payload, p); !ok || v.IsNull() {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		t.Fail(framework.Errorf(framework.KindAssertion, "response is missing field(s) %v", missing))
	}
}

// AssertFieldEquals records an assertion failure, without exiting the test, if the value at
// the path is not equal to the expected value.
func (t *T) AssertFieldEquals(result apiclient.Result, path string, expected ldvalue.Value) bool {
	actual := result.Field(path)
	return assert.Equal(t, expected.JSONString(), actual.JSONString(), "unexpected value for field %q", path)
}

// RequireEnvelope fails the test immediately unless the response body is the standard
// envelope with a true "success" property.
func (t *T) RequireEnvelope(result apiclient.Result) servicedef.Envelope {
	var envelope servicedef.Envelope
	if err := json.Unmarshal(result.Body, &envelope); err != nil {
		t.Fail(framework.Errorf(framework.KindAssertion, "response is not a JSON envelope: %s", err))
	}
	if !envelope.Success {
		t.Fail(framework.Errorf(framework.KindAssertion, "response envelope has success=false: %s", envelope.Message))
	}
	return envelope
}

// RequirePagination fails the test immediately unless the response is a page of a list: the
// property data.<resource> is an array and there is a pagination object.
func (t *T) RequirePagination(result apiclient.Result, resource string) servicedef.Pagination {
	items := result.Field("data." + resource)
	if items.Type() != ldvalue.ArrayType {
		t.Fail(framework.Errorf(framework.KindAssertion, "expected data.%s to be an array, got %s", resource, items.Type()))
	}
	pageObject := result.Payload.GetByKey(servicedef.PaginationKey)
	if pageObject.Type() != ldvalue.ObjectType {
		pageObject = result.Field("data." + servicedef.PaginationKey)
	}
	if pageObject.Type() != ldvalue.ObjectType {
		t.Fail(framework.Errorf(framework.KindAssertion, "response has no %s object", servicedef.PaginationKey))
	}
	var pagination servicedef.Pagination
	if err := json.Unmarshal([]byte(pageObject.JSONString()), &pagination); err != nil {
		t.Fail(framework.Errorf(framework.KindAssertion, "malformed %s object: %s", servicedef.PaginationKey, err))
	}
	t.Debug("Page %d of %d (%d %s)", pagination.Page, pagination.Pages, items.Count(), resource)
	return pagination
}

// Save stores a variable for later test cases.
func (t *T) Save(name, value string) {
	t.Debug("Saving variable %s=%q", name, value)
	t.variables().Set(name, value)
}

// Variable returns a variable saved by an earlier test case, failing the test with a
// precondition failure if it has not been set.
func (t *T) Variable(name string) string {
	value, ok := t.variables().Get(name)
	if !ok {
		t.Precondition("variable %q has not been set by an earlier test", name)
	}
	return value
}

// Defer registers an action to run after all test cases have finished.
func (t *T) Defer(name string, action func() error) {
	t.context.Defer(name, action)
}

// CleanupRequest registers a request to run after all test cases have finished, such as
// deleting an entity this test created. If role is not empty, the request is sent with that
// role's token as it is at cleanup time.
func (t *T) CleanupRequest(role credentials.Role, req apiclient.Request) {
	env := t.env
	name := fmt.Sprintf("%s %s", req.Method, req.Path)
	t.Defer(name, func() error {
		if role != "" {
			token, ok := env.Credentials.TokenFor(role)
			if !ok {
				return fmt.Errorf("no %s token is available", role)
			}
			req.Token = token
		}
		if env.Client == nil {
			return fmt.Errorf("test environment has no API client")
		}
		result := env.Client.Call(env.requestContext(), req)
		return result.Err()
	})
}

func (t *T) credentials() *credentials.Store {
	if t.env.Credentials == nil {
		t.Fail(framework.Errorf(framework.KindHarnessFault, "test environment has no credential store"))
	}
	return t.env.Credentials
}

func (t *T) variables() *Variables {
	if t.env.Variables == nil {
		t.env.Variables = NewVariables(nil)
	}
	return t.env.Variables
}
