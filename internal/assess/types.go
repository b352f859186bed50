// Package assess turns a scored submission into an investment decision report.
package assess

import (
	"time"

	"github.com/dshills/parkeval/internal/project"
	"github.com/dshills/parkeval/internal/scoring"
)

// Report is the top-level output object.
type Report struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Input       Input     `json:"input"`

	Project *project.Project `json:"project,omitempty"`
	Metrics *project.Metrics `json:"metrics,omitempty"`
	Result  scoring.Result   `json:"result"`

	Decision     string   `json:"decision"`
	DecisionRank int      `json:"decision_rank"`
	Vetoed       bool     `json:"vetoed"`
	VetoReasons  []string `json:"veto_reasons,omitempty"`
	Reasons      []string `json:"reasons,omitempty"`
	Advice       []string `json:"advice,omitempty"`
	Horizon      int      `json:"horizon_months,omitempty"`
	IntentAgree  bool     `json:"intent_agree"`

	Sections []Section `json:"sections,omitempty"`
}

// Input describes the submission and profile used for the report.
type Input struct {
	SubmissionFile string `json:"submission_file,omitempty"`
	SubmissionHash string `json:"submission_hash,omitempty"`
	Profile        string `json:"profile"`
	ProfileVersion int    `json:"profile_version"`
}

// Section is a titled block of prose in the report body.
type Section struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Options controls optional processing during assessment.
type Options struct {
	// Redact masks personal data in free text before it is scored or quoted.
	Redact bool
}

// IntentText renders the committee intent as used in the report conclusion.
func (r *Report) IntentText() string {
	if r.IntentAgree {
		return "同意"
	}
	return "不同意"
}
