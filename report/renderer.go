package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/storefront-qa/api-contract-tests/framework"
)

// Renderer writes the results of a run in some format.
type Renderer interface {
	Render(w io.Writer, info RunInfo, results framework.Results) error
}

// TextRenderer writes the human-readable summary and failure details.
type TextRenderer struct {
	Palette Palette
}

func (r TextRenderer) Render(w io.Writer, info RunInfo, results framework.Results) error {
	palette := r.Palette
	if palette.Pass == nil {
		palette = PlainPalette()
	}
	Summarize(w, results, palette)
	if len(results.Failures) > 0 || len(results.Skipped) > 0 || len(results.Cleanups) > 0 {
		fmt.Fprintln(w)
	}
	Detail(w, results, palette)
	return nil
}

type JSONRenderer struct{}

func (r JSONRenderer) Render(w io.Writer, info RunInfo, results framework.Results) error {
	data, err := json.MarshalIndent(NewDocument(info, results), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type MarkdownRenderer struct{}

func (r MarkdownRenderer) Render(w io.Writer, info RunInfo, results framework.Results) error {
	doc := NewDocument(info, results)
	title := doc.Name
	if title == "" {
		title = "API test run"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(title))
	fmt.Fprintf(&b, "- Run ID: `%s`\n", doc.RunID)
	if doc.BaseURL != "" {
		fmt.Fprintf(&b, "- Base URL: `%s`\n", doc.BaseURL)
	}
	fmt.Fprintf(&b, "- Started: %s\n", doc.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Duration: %d ms\n\n", doc.DurationMS)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Total | Passed | Failed | Skipped | Success rate |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %s |\n\n", doc.Total, doc.Passed, doc.Failed, len(doc.SkippedCases), doc.SuccessRate)
	if doc.Halted {
		b.WriteString("**The run was halted after a critical failure.**\n\n")
	}

	b.WriteString("## Results\n\n")
	b.WriteString("| | Test | Status | Time (ms) | Error |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range doc.Results {
		glyph := PassGlyph
		errorText := ""
		if !c.Success {
			glyph = FailGlyph
			if c.Error != nil {
				errorText = *c.Error
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
			glyph, escapeMarkdown(c.Name), c.Status, c.ElapsedMS, escapeMarkdown(errorText))
	}

	if len(doc.SkippedCases) > 0 {
		b.WriteString("\n## Skipped\n\n")
		for _, s := range doc.SkippedCases {
			fmt.Fprintf(&b, "- %s (%s)\n", escapeMarkdown(s.Name), escapeMarkdown(s.Reason))
		}
	}
	if len(doc.Cleanups) > 0 {
		b.WriteString("\n## Cleanup\n\n")
		for _, c := range doc.Cleanups {
			outcome := "ok"
			if c.Error != nil {
				outcome = "failed: " + *c.Error
			}
			fmt.Fprintf(&b, "- %s (from %s): %s\n", escapeMarkdown(c.Name), escapeMarkdown(c.Owner), escapeMarkdown(outcome))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
