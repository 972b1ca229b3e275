// Package framework contains the low-level implementation of the test runner, which is not
// specific to any particular API.
//
// The general model is:
//
// 1. A driver composes an ordered list of TestCases and passes it to Run.
//
// 2. Run executes the cases one at a time, in order. Each case receives a Context, which is
// similar to Go's *testing.T: it accumulates failures, captures debug output, and can be
// passed to the assert and require packages.
//
// 3. Every case produces exactly one TestResult. Failures never escape a case, so one broken
// case cannot abort the run; the only early exit is a critical case failing when the run was
// configured to stop on critical failures.
//
// The domain-specific code that knows how to talk to the API under test is responsible for
// building the case actions on top of Context.
package framework
