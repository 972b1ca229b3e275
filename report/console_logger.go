package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/storefront-qa/api-contract-tests/framework"
)

// ConsoleTestLogger prints the progress of each test case as it runs.
type ConsoleTestLogger struct {
	Out                  io.Writer
	Palette              Palette
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, result framework.TestResult, debugOutput framework.CapturedOutput) {
	elapsed := result.Elapsed.Round(time.Millisecond)
	if result.Success {
		fmt.Fprintf(c.Out, "  %s passed (status %d, %s)\n", c.palette().Pass(PassGlyph), result.Status, elapsed)
	} else {
		fmt.Fprintf(c.Out, "  %s FAILED: %s%s (%s)\n", c.palette().Fail(FailGlyph), id, describeFailure(result), elapsed)
	}
	if len(debugOutput) > 0 &&
		((!result.Success && c.DebugOutputOnFailure) || (result.Success && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "  %s SKIPPED: %s\n", c.palette().Skip(SkipGlyph), id)
	} else {
		fmt.Fprintf(c.Out, "  %s SKIPPED: %s (%s)\n", c.palette().Skip(SkipGlyph), id, reason)
	}
}

func (c *ConsoleTestLogger) palette() Palette {
	if c.Palette.Pass == nil {
		return PlainPalette()
	}
	return c.Palette
}
