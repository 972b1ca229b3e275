package report

import (
	"time"

	"github.com/storefront-qa/api-contract-tests/framework"
)

// RunInfo identifies a run in a persisted report.
type RunInfo struct {
	RunID   string
	Name    string
	BaseURL string
}

// Document is the machine-readable form of a run's results.
type Document struct {
	RunID        string          `json:"runId"`
	Name         string          `json:"name,omitempty"`
	BaseURL      string          `json:"baseUrl,omitempty"`
	StartedAt    time.Time       `json:"startedAt"`
	FinishedAt   time.Time       `json:"finishedAt"`
	DurationMS   int64           `json:"durationMs"`
	Total        int             `json:"total"`
	Passed       int             `json:"passed"`
	Failed       int             `json:"failed"`
	SuccessRate  string          `json:"successRate"`
	Halted       bool            `json:"halted"`
	Results      []CaseReport    `json:"results"`
	SkippedCases []SkippedReport `json:"skipped"`
	Cleanups     []CleanupReport `json:"cleanups,omitempty"`
}

type CaseReport struct {
	Name      string  `json:"name"`
	Success   bool    `json:"success"`
	Status    int     `json:"status"`
	Kind      string  `json:"kind,omitempty"`
	Error     *string `json:"error"`
	ElapsedMS int64   `json:"elapsedMs"`
}

type SkippedReport struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type CleanupReport struct {
	Name  string  `json:"name"`
	Owner string  `json:"owner"`
	Error *string `json:"error"`
}

func NewDocument(info RunInfo, results framework.Results) Document {
	doc := Document{
		RunID:        info.RunID,
		Name:         info.Name,
		BaseURL:      info.BaseURL,
		StartedAt:    results.Started,
		FinishedAt:   results.Finished,
		DurationMS:   results.Elapsed().Milliseconds(),
		Total:        results.Total(),
		Passed:       results.Passed(),
		Failed:       results.Failed(),
		SuccessRate:  SuccessRate(results),
		Halted:       results.Halted,
		Results:      make([]CaseReport, 0, len(results.Tests)),
		SkippedCases: make([]SkippedReport, 0, len(results.Skipped)),
	}
	for _, r := range results.Tests {
		cr := CaseReport{
			Name:      r.TestID.String(),
			Success:   r.Success,
			Status:    r.Status,
			Kind:      string(r.Kind),
			ElapsedMS: r.Elapsed.Milliseconds(),
		}
		if !r.Success {
			message := r.ErrorMessage()
			cr.Error = &message
		}
		doc.Results = append(doc.Results, cr)
	}
	for _, s := range results.Skipped {
		doc.SkippedCases = append(doc.SkippedCases, SkippedReport{Name: s.TestID.String(), Reason: s.Reason})
	}
	for _, c := range results.Cleanups {
		cr := CleanupReport{Name: c.Name, Owner: c.Owner.String()}
		if c.Err != nil {
			message := c.Err.Error()
			cr.Error = &message
		}
		doc.Cleanups = append(doc.Cleanups, cr)
	}
	return doc
}
