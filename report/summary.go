package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/storefront-qa/api-contract-tests/framework"
)

// SuccessRate formats passed/total as a percentage with one decimal place, e.g. "70.0%". A run
// with no tests has a rate of "0%".
func SuccessRate(results framework.Results) string {
	total := results.Total()
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(results.Passed())/float64(total)*100)
}

// Summarize writes the aggregate counts and the success rate.
func Summarize(w io.Writer, results framework.Results, palette Palette) {
	fmt.Fprintln(w, palette.Heading("Summary"))
	fmt.Fprintf(w, "  Total:        %d\n", results.Total())
	fmt.Fprintf(w, "  Passed:       %s\n", palette.Pass(results.Passed()))
	if results.Failed() > 0 {
		fmt.Fprintf(w, "  Failed:       %s\n", palette.Fail(results.Failed()))
	} else {
		fmt.Fprintf(w, "  Failed:       %d\n", 0)
	}
	if len(results.Skipped) > 0 {
		fmt.Fprintf(w, "  Skipped:      %s\n", palette.Skip(len(results.Skipped)))
	}
	fmt.Fprintf(w, "  Success rate: %s\n", SuccessRate(results))
	fmt.Fprintf(w, "  Duration:     %s\n", results.Elapsed().Round(time.Millisecond))
	if results.Halted {
		fmt.Fprintln(w, palette.Fail("  Run halted after a critical failure"))
	}
}

// Detail writes the name and error of every failed test, then any skipped tests and failed
// cleanups. It writes nothing if there is nothing to report.
func Detail(w io.Writer, results framework.Results, palette Palette) {
	if len(results.Failures) > 0 {
		fmt.Fprintln(w, palette.Heading("Failed tests:"))
		for _, f := range results.Failures {
			fmt.Fprintf(w, "  %s %s%s\n", palette.Fail(FailGlyph), f.TestID, describeFailure(f))
			for _, e := range f.Errors {
				for _, line := range strings.Split(e.Error(), "\n") {
					fmt.Fprintf(w, "      %s\n", line)
				}
			}
		}
	}
	if len(results.Skipped) > 0 {
		fmt.Fprintln(w, palette.Heading("Skipped tests:"))
		for _, s := range results.Skipped {
			fmt.Fprintf(w, "  %s %s (%s)\n", palette.Skip(SkipGlyph), s.TestID, s.Reason)
		}
	}
	var failedCleanups []framework.CleanupResult
	for _, c := range results.Cleanups {
		if c.Err != nil {
			failedCleanups = append(failedCleanups, c)
		}
	}
	if len(failedCleanups) > 0 {
		fmt.Fprintln(w, palette.Heading("Failed cleanups:"))
		for _, c := range failedCleanups {
			fmt.Fprintf(w, "  %s %s (from %s): %s\n", palette.Fail(FailGlyph), c.Name, c.Owner, c.Err)
		}
	}
}

func describeFailure(r framework.TestResult) string {
	var parts []string
	if label := r.Kind.Label(); label != "" {
		parts = append(parts, label)
	}
	if r.Status != 0 {
		parts = append(parts, fmt.Sprintf("status %d", r.Status))
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}
