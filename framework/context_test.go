package framework

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events []string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "start "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String()+": "+err.Error())
}

func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	r.events = append(r.events, fmt.Sprintf("finish %s %t", id, result.Success))
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skip "+id.String()+": "+reason)
}

func passing(name string) TestCase {
	return TestCase{Name: name, Action: func(c *Context) { c.SetStatus(200) }}
}

func failing(name string, critical bool) TestCase {
	return TestCase{Name: name, Critical: critical, Action: func(c *Context) {
		c.SetStatus(500)
		c.Fail(CaseError{Kind: KindHTTP, Status: 500, Message: "boom"})
	}}
}

func resultNames(results []TestResult) []string {
	var names []string
	for _, r := range results {
		names = append(names, r.TestID.String())
	}
	return names
}

func TestRunExecutesCasesInOrder(t *testing.T) {
	var order []string
	var cases []TestCase
	for _, name := range []string{"a", "b", "c"} {
		name := name
		cases = append(cases, TestCase{Name: name, Action: func(c *Context) { order = append(order, name) }})
	}
	results, err := Run(cases, RunConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, []string{"a", "b", "c"}, resultNames(results.Tests))
	assert.True(t, results.OK())
	assert.Equal(t, 3, results.Total())
	assert.Equal(t, 3, results.Passed())
	assert.False(t, results.Finished.Before(results.Started))
}

func TestFailureDoesNotAbortRun(t *testing.T) {
	results, err := Run([]TestCase{passing("a"), failing("b", false), passing("c")}, RunConfig{})
	require.NoError(t, err)

	assert.Equal(t, 3, results.Total())
	assert.Equal(t, 2, results.Passed())
	assert.Equal(t, 1, results.Failed())
	assert.False(t, results.OK())
	require.Len(t, results.Failures, 1)
	f := results.Failures[0]
	assert.Equal(t, "b", f.TestID.String())
	assert.Equal(t, 500, f.Status)
	assert.Equal(t, KindHTTP, f.Kind)
	assert.Equal(t, "HTTP 500: boom", f.ErrorMessage())
}

func TestCriticalFailureWithoutStopFlagContinues(t *testing.T) {
	results, err := Run([]TestCase{failing("login", true), passing("next")}, RunConfig{})
	require.NoError(t, err)

	assert.Equal(t, 2, results.Total())
	assert.False(t, results.Halted)
	assert.Len(t, results.Skipped, 0)
}

func TestCriticalFailureWithStopFlagHalts(t *testing.T) {
	logger := &recordingTestLogger{}
	ran := false
	cases := []TestCase{
		failing("login", true),
		{Name: "after", Action: func(c *Context) { ran = true }},
		passing("last"),
	}
	results, err := Run(cases, RunConfig{StopOnCriticalFailure: true, TestLogger: logger})
	require.NoError(t, err)

	assert.False(t, ran)
	assert.True(t, results.Halted)
	assert.Equal(t, 1, results.Total())
	assert.Equal(t, 1, results.Failed())
	require.Len(t, results.Skipped, 2)
	assert.Equal(t, "after", results.Skipped[0].TestID.String())
	assert.Equal(t, `critical test "login" failed`, results.Skipped[0].Reason)
	assert.Equal(t, []string{
		"start login",
		"error login: HTTP 500: boom",
		"finish login false",
		`skip after: critical test "login" failed`,
		`skip last: critical test "login" failed`,
	}, logger.events)
}

func TestNonCriticalFailureWithStopFlagContinues(t *testing.T) {
	results, err := Run([]TestCase{failing("a", false), passing("b")}, RunConfig{StopOnCriticalFailure: true})
	require.NoError(t, err)

	assert.False(t, results.Halted)
	assert.Equal(t, 2, results.Total())
}

func TestFilteredCasesAreSkipped(t *testing.T) {
	filter := func(id TestID) bool { return id.String() != "b" }
	results, err := Run([]TestCase{passing("a"), failing("b", false), passing("c")}, RunConfig{Filter: filter})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, resultNames(results.Tests))
	require.Len(t, results.Skipped, 1)
	assert.Equal(t, "excluded by filter parameters", results.Skipped[0].Reason)
	assert.True(t, results.OK())
}

func TestPanicIsRecordedAsHarnessFault(t *testing.T) {
	cases := []TestCase{
		{Name: "bad", Action: func(c *Context) { panic("oops") }},
		passing("good"),
	}
	results, err := Run(cases, RunConfig{})
	require.NoError(t, err)

	require.Len(t, results.Failures, 1)
	f := results.Failures[0]
	assert.Equal(t, KindHarnessFault, f.Kind)
	assert.Contains(t, f.ErrorMessage(), "unexpected panic in test: oops")
	assert.True(t, results.Tests[1].Success)
}

func TestNilActionIsHarnessFault(t *testing.T) {
	results, err := Run([]TestCase{{Name: "empty"}}, RunConfig{})
	require.NoError(t, err)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, KindHarnessFault, results.Failures[0].Kind)
}

func TestFailNowStopsTest(t *testing.T) {
	reached := false
	results, err := Run([]TestCase{{Name: "a", Action: func(c *Context) {
		c.Errorf("expected %d", 1)
		c.FailNow()
		reached = true
	}}}, RunConfig{})
	require.NoError(t, err)

	assert.False(t, reached)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, KindAssertion, results.Failures[0].Kind)
	assert.Equal(t, "expected 1", results.Failures[0].ErrorMessage())
}

func TestFailNowWithoutErrorHasMessage(t *testing.T) {
	results, err := Run([]TestCase{{Name: "a", Action: func(c *Context) { c.FailNow() }}}, RunConfig{})
	require.NoError(t, err)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "test failed with no failure message", results.Failures[0].ErrorMessage())
}

func TestTestifyRequireWorksWithContext(t *testing.T) {
	results, err := Run([]TestCase{{Name: "a", Action: func(c *Context) {
		require.Equal(c, 1, 2)
	}}}, RunConfig{})
	require.NoError(t, err)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, KindAssertion, results.Failures[0].Kind)
}

func TestKindOfFirstErrorIsReported(t *testing.T) {
	results, err := Run([]TestCase{{Name: "a", Action: func(c *Context) {
		c.Fail(Errorf(KindPrecondition, "no token"))
		c.Fail(errors.New("later"))
	}}}, RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, KindPrecondition, results.Failures[0].Kind)
	assert.Equal(t, "no token; later", results.Failures[0].ErrorMessage())
}

func TestCleanupsRunInReverseOrderAfterAllCases(t *testing.T) {
	var events []string
	cases := []TestCase{
		{Name: "create1", Action: func(c *Context) {
			events = append(events, "create1")
			c.Defer("delete1", func() error { events = append(events, "delete1"); return nil })
		}},
		{Name: "create2", Action: func(c *Context) {
			events = append(events, "create2")
			c.Defer("delete2", func() error { events = append(events, "delete2"); return errors.New("gone") })
		}},
		{Name: "crash", Action: func(c *Context) {
			c.Defer("panics", func() error { panic("cleanup boom") })
			events = append(events, "crash")
		}},
	}
	results, err := Run(cases, RunConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"create1", "create2", "crash", "delete2", "delete1"}, events)
	require.Len(t, results.Cleanups, 3)
	assert.Equal(t, "panics", results.Cleanups[0].Name)
	assert.Contains(t, results.Cleanups[0].Err.Error(), "unexpected panic in cleanup")
	assert.Equal(t, "delete2", results.Cleanups[1].Name)
	assert.Equal(t, "create2", results.Cleanups[1].Owner.String())
	assert.EqualError(t, results.Cleanups[1].Err, "gone")
	assert.NoError(t, results.Cleanups[2].Err)
	assert.True(t, results.OK())
}

func TestCleanupsRunAfterCriticalHalt(t *testing.T) {
	cleaned := false
	cases := []TestCase{
		{Name: "create", Action: func(c *Context) {
			c.Defer("delete", func() error { cleaned = true; return nil })
		}},
		failing("critical", true),
		passing("skipped"),
	}
	results, err := Run(cases, RunConfig{StopOnCriticalFailure: true})
	require.NoError(t, err)
	assert.True(t, results.Halted)
	assert.True(t, cleaned)
}

func TestInvalidNames(t *testing.T) {
	_, err := Run([]TestCase{passing("a"), passing("a")}, RunConfig{})
	assert.EqualError(t, err, `duplicate test case name "a"`)

	_, err = Run([]TestCase{passing("")}, RunConfig{})
	assert.Error(t, err)
}

func TestDebugOutputIsCapturedPerCase(t *testing.T) {
	var captured CapturedOutput
	logger := &capturingFinishLogger{onFinish: func(out CapturedOutput) { captured = out }}
	_, err := Run([]TestCase{{Name: "a", Action: func(c *Context) {
		c.Debug("hello %s", "world")
		c.DebugLogger().Printf("second")
	}}}, RunConfig{TestLogger: logger})
	require.NoError(t, err)

	require.Len(t, captured, 2)
	assert.Equal(t, "hello world", captured[0].Message)
	assert.Equal(t, "second", captured[1].Message)
}

type capturingFinishLogger struct {
	recordingTestLogger
	onFinish func(CapturedOutput)
}

func (c *capturingFinishLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	c.onFinish(debugOutput)
}
