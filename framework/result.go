package framework

import (
	"strings"
	"time"
)

// Results is the report for one complete run of a list of test cases.
//
// Tests contains every case that was executed, in execution order. Failures is the subset of
// Tests that failed. Skipped lists cases that were selected but never executed, either because
// a filter excluded them or because a critical failure halted the run; they are not counted in
// Total.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skipped  []SkippedTest
	Cleanups []CleanupResult
	Halted   bool
	Started  time.Time
	Finished time.Time
}

// TestResult is the recorded outcome of a single test case.
type TestResult struct {
	TestID  TestID
	Success bool
	Status  int
	Kind    ErrorKind
	Errors  []error
	Elapsed time.Duration
}

// SkippedTest identifies a test case that was not executed.
type SkippedTest struct {
	TestID TestID
	Reason string
}

// CleanupResult is the outcome of a cleanup action registered by a test case.
type CleanupResult struct {
	Name  string
	Owner TestID
	Err   error
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

func (r Results) Total() int {
	return len(r.Tests)
}

func (r Results) Passed() int {
	return len(r.Tests) - len(r.Failures)
}

func (r Results) Failed() int {
	return len(r.Failures)
}

// Elapsed is the wall-clock duration of the run.
func (r Results) Elapsed() time.Duration {
	if r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// ErrorMessage joins all of the errors recorded for the test, or returns "" if there were none.
func (r TestResult) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}
	ss := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		ss = append(ss, e.Error())
	}
	return strings.Join(ss, "; ")
}

type TestID struct {
	Path []string
}

func NewTestID(name string) TestID {
	return TestID{Path: []string{name}}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}
