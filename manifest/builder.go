package manifest

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/storefront-qa/api-contract-tests/apiclient"
	"github.com/storefront-qa/api-contract-tests/credentials"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/harness"
)

// Build converts the manifest's cases into framework test cases that run against the
// environment, in manifest order. Manifest variables are added to the environment's
// variables without replacing any that are already set.
func (m *Manifest) Build(env *harness.Environment) ([]framework.TestCase, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if env.Variables == nil {
		env.Variables = harness.NewVariables(nil)
	}
	for name, value := range m.Variables {
		if _, ok := env.Variables.Get(name); !ok {
			env.Variables.Set(name, value)
		}
	}
	x := newExpander(env.Variables.Get, env.RunID)

	cases := make([]framework.TestCase, 0, len(m.Cases))
	for _, spec := range m.Cases {
		cases = append(cases, env.NewCase(spec.Name, spec.Critical, caseAction(spec, x)))
	}
	return cases, nil
}

func caseAction(spec CaseSpec, x *expander) func(*harness.T) {
	return func(t *harness.T) {
		var result apiclient.Result
		if spec.Login != nil {
			result = runLogin(t, spec, x)
		} else {
			result = runRequest(t, spec, x)
		}
		checkStatus(t, spec.Expect, result)
		saveVariables(t, spec.Save, result)
		registerCleanup(t, spec.Cleanup, x)
		checkResponse(t, spec.Expect, result, x)
	}
}

func runLogin(t *harness.T, spec CaseSpec, x *expander) apiclient.Result {
	role, _ := credentials.ParseRole(spec.Login.Role)
	params := t.Env().Logins[role]
	for _, f := range []struct {
		value string
		dest  *string
	}{
		{spec.Login.Email, &params.Email},
		{spec.Login.Phone, &params.Phone},
		{spec.Login.Password, &params.Password},
	} {
		if f.value == "" {
			continue
		}
		expanded, err := x.expand(f.value)
		if err != nil {
			t.Precondition("%s", err)
		}
		*f.dest = expanded
	}
	if spec.Login.Email != "" && spec.Login.Phone == "" {
		params.Phone = ""
	} else if spec.Login.Phone != "" && spec.Login.Email == "" {
		params.Email = ""
	}
	return t.TryLogin(role, params)
}

func runRequest(t *harness.T, spec CaseSpec, x *expander) apiclient.Result {
	req, err := buildRequest(spec, x)
	if err != nil {
		t.Precondition("%s", err)
	}
	switch {
	case spec.Token != "":
		token, err := x.expand(spec.Token)
		if err != nil {
			t.Precondition("%s", err)
		}
		req.Token = token
	case spec.Auth != "":
		role, _ := credentials.ParseRole(spec.Auth)
		req.Token = t.RequireToken(role)
	}
	return t.Call(req)
}

func buildRequest(spec CaseSpec, x *expander) (apiclient.Request, error) {
	r := spec.Request
	path, err := x.expand(r.Path)
	if err != nil {
		return apiclient.Request{}, err
	}
	headers, err := x.expandMap(r.Headers)
	if err != nil {
		return apiclient.Request{}, err
	}
	var query url.Values
	if len(r.Query) > 0 {
		query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			value, err := x.expand(stringify(v))
			if err != nil {
				return apiclient.Request{}, err
			}
			query.Set(k, value)
		}
	}
	req := apiclient.Request{
		Method:  strings.ToUpper(r.Method),
		Path:    path,
		Query:   query,
		Headers: headers,
	}
	if !r.Body.IsNull() {
		body, err := x.expandValue(r.Body)
		if err != nil {
			return apiclient.Request{}, err
		}
		req.Body = body
	}
	if spec.TimeoutMS.IsDefined() {
		req.Timeout = time.Duration(spec.TimeoutMS.IntValue()) * time.Millisecond
	}
	return req, nil
}

// checkStatus applies the success predicate. A case with no explicit status passes on any
// status below 400; an explicit status, including an error status, must match exactly.
func checkStatus(t *harness.T, expect ExpectSpec, result apiclient.Result) {
	if expect.Status == 0 {
		t.RequireSuccess(result)
	} else {
		t.RequireStatus(result, expect.Status)
	}
}

// checkResponse applies the checks on the response body. It runs after any cleanup has been
// registered, so an entity that was created is deleted even if its body is wrong.
func checkResponse(t *harness.T, expect ExpectSpec, result apiclient.Result, x *expander) {
	if expect.Envelope {
		t.RequireEnvelope(result)
	}
	if len(expect.Fields) > 0 {
		t.RequireFields(result, expect.Fields...)
	}
	if expect.Paginated != "" {
		t.RequirePagination(result, expect.Paginated)
	}
	for _, path := range sortedKeys(expect.Equals) {
		value, err := x.expandValue(expect.Equals[path])
		if err != nil {
			t.Precondition("%s", err)
		}
		t.AssertFieldEquals(result, path, value)
	}
}

func saveVariables(t *harness.T, save map[string]string, result apiclient.Result) {
	for _, name := range sortedKeys(save) {
		path := save[name]
		value, ok := apiclient.LookupOK(result.Payload, path)
		if !ok || value.IsNull() {
			t.Fail(framework.Errorf(framework.KindAssertion, "cannot save %q: response has no value at %q", name, path))
		}
		t.Save(name, stringify(value))
	}
}

func registerCleanup(t *harness.T, cleanup *CleanupSpec, x *expander) {
	if cleanup == nil {
		return
	}
	path, err := x.expand(cleanup.Path)
	if err != nil {
		t.Fail(framework.Errorf(framework.KindHarnessFault, "cannot register cleanup: %s", err))
	}
	var role credentials.Role
	if cleanup.Auth != "" {
		role, _ = credentials.ParseRole(cleanup.Auth)
	}
	t.CleanupRequest(role, apiclient.Request{
		Method: strings.ToUpper(cleanup.Method),
		Path:   path,
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
