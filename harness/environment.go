package harness

import (
	"context"

	"github.com/storefront-qa/api-contract-tests/apiclient"
	"github.com/storefront-qa/api-contract-tests/credentials"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/servicedef"
)

// Environment is the state shared by all test cases in a run. The credential store and the
// variables are the only things cases can change, and since cases run one at a time, a case
// can rely on everything earlier cases stored.
type Environment struct {
	Client      *apiclient.Client
	Credentials *credentials.Store
	Variables   *Variables
	// Logins are the configured account credentials for each role, e.g. from ADMIN_EMAIL and
	// ADMIN_PASSWORD.
	Logins map[credentials.Role]servicedef.LoginParams
	// RunID uniquely identifies this run; it can be used to make created entities unique.
	RunID string
	// Context is passed to every request. If nil, context.Background() is used.
	Context context.Context
}

func (e *Environment) requestContext() context.Context {
	if e.Context == nil {
		return context.Background()
	}
	return e.Context
}

// NewCase creates a framework test case whose action receives a T bound to this environment.
func (e *Environment) NewCase(name string, critical bool, action func(*T)) framework.TestCase {
	return framework.TestCase{
		Name:     name,
		Critical: critical,
		Action: func(c *framework.Context) {
			action(newTestScope(c, e))
		},
	}
}

// RunSuite runs the test cases against this environment.
func (e *Environment) RunSuite(cases []framework.TestCase, config framework.RunConfig) (framework.Results, error) {
	if e.Variables == nil {
		e.Variables = NewVariables(nil)
	}
	if e.Credentials == nil {
		e.Credentials = credentials.NewStore("")
	}
	return framework.Run(cases, config)
}
