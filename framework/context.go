package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// TestCase is a named unit of work for Run. Cases are immutable once a run has started.
//
// If Critical is true and the case fails, and the run was configured with
// StopOnCriticalFailure, no further cases are executed.
type TestCase struct {
	Name     string
	Critical bool
	Action   func(*Context)
}

// RunConfig contains optional parameters for Run.
type RunConfig struct {
	Filter                Filter
	TestLogger            TestLogger
	StopOnCriticalFailure bool
}

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	cleanups   []cleanupAction
}

type cleanupAction struct {
	name   string
	owner  TestID
	action func() error
}

// Context is passed to each test case action. It implements the same basic methods as Go's
// *testing.T that are needed by the assert and require packages, so test cases can use those
// for their success predicates.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	status      int
	errors      []error
}

// Run executes the test cases strictly in list order, one at a time, and returns the
// accumulated results.
//
// A failing case never aborts the run, including one whose action panics; the panic is
// recorded as a harness fault. The only exception is a Critical case failing when
// StopOnCriticalFailure is set, in which case the remaining cases are reported as skipped.
// Cleanup actions registered with Context.Defer run after the last case, in reverse order.
//
// The returned error is non-nil only if the list of cases itself is invalid.
func Run(cases []TestCase, config RunConfig) (Results, error) {
	if err := CheckNames(cases); err != nil {
		return Results{}, err
	}
	testLogger := config.TestLogger
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     config.Filter,
		testLogger: testLogger,
	}
	env.results.Started = time.Now()

	for i, tc := range cases {
		id := NewTestID(tc.Name)
		if env.filter != nil && !env.filter(id) {
			env.skip(id, "excluded by filter parameters")
			continue
		}

		testLogger.TestStarted(id)
		c := &Context{id: id, env: env}
		result := c.run(tc.Action)
		testLogger.TestFinished(id, result, c.debugLogger.Output())

		if !result.Success && tc.Critical && config.StopOnCriticalFailure {
			env.results.Halted = true
			reason := fmt.Sprintf("critical test %q failed", tc.Name)
			for _, rest := range cases[i+1:] {
				env.skip(NewTestID(rest.Name), reason)
			}
			break
		}
	}

	env.runCleanups()
	env.results.Finished = time.Now()
	return env.results, nil
}

// CheckNames verifies that every test case has a non-empty name that is unique in the list.
func CheckNames(cases []TestCase) error {
	seen := make(map[string]bool, len(cases))
	for i, tc := range cases {
		if tc.Name == "" {
			return fmt.Errorf("test case at position %d has no name", i+1)
		}
		if seen[tc.Name] {
			return fmt.Errorf("duplicate test case name %q", tc.Name)
		}
		seen[tc.Name] = true
	}
	return nil
}

func (env *environment) skip(id TestID, reason string) {
	env.results.Skipped = append(env.results.Skipped, SkippedTest{TestID: id, Reason: reason})
	env.testLogger.TestSkipped(id, reason)
}

func (env *environment) runCleanups() {
	for i := len(env.cleanups) - 1; i >= 0; i-- {
		c := env.cleanups[i]
		env.results.Cleanups = append(env.results.Cleanups, CleanupResult{
			Name:  c.name,
			Owner: c.owner,
			Err:   callSafely(c.action),
		})
	}
	env.cleanups = nil
}

func callSafely(action func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected panic in cleanup: %+v", r)
		}
	}()
	return action()
}

func (c *Context) run(action func(*Context)) TestResult {
	startTime := time.Now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						c.Fail(Errorf(KindAssertion, "test failed with no failure message"))
					}
					return
				}
				c.debugLogger.Printf("panic stack:\n%s", string(debug.Stack()))
				c.Fail(Errorf(KindHarnessFault, "unexpected panic in test: %+v", r))
			}
		}()
		if action == nil {
			c.Fail(Errorf(KindHarnessFault, "test case has no action"))
			return
		}
		action(c)
	}()

	result := TestResult{
		TestID:  c.id,
		Success: !c.failed,
		Status:  c.status,
		Errors:  c.errors,
		Elapsed: time.Since(startTime),
	}
	if c.failed {
		result.Kind = KindOf(c.errors[0])
	}
	c.env.results.Tests = append(c.env.results.Tests, result)
	if c.failed {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
	return result
}

func (c *Context) ID() TestID {
	return c.id
}

// Errorf records an assertion failure without stopping the test. The assert package calls
// this method.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.Fail(fmt.Errorf(format, args...))
}

// Fail records an error without stopping the test. If err is a CaseError its kind is kept;
// any other error counts as an assertion failure.
func (c *Context) Fail(err error) {
	if err == nil {
		err = errors.New("test failed with no failure message")
	}
	c.failed = true
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// FailNow stops the test immediately. The require package calls this method.
func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

// SetStatus records the HTTP status that the test result should report. Tests that make
// several requests normally record the last one.
func (c *Context) SetStatus(status int) {
	c.status = status
}

func (c *Context) Status() int {
	return c.status
}

// Defer registers an action to run after all test cases have finished, such as deleting
// an entity that the test created. It runs even if the run was halted by a critical failure.
func (c *Context) Defer(name string, action func() error) {
	c.env.cleanups = append(c.env.cleanups, cleanupAction{name: name, owner: c.id, action: action})
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
