// Package job holds the analysis job store and the submission side of the
// pipeline. A job is created queued, handed to the background worker over
// NSQ, and lands in exactly one terminal state.
package job

import (
	"encoding/json"
	"time"

	"jobfit/features/usage"
)

const (
	StatusQueued    = "queued"
	StatusAnalyzing = "analyzing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	SourceURL  = "url"
	SourceText = "text"
)

// Job is one analysis request and its outcome. Result is stored opaque;
// the store never interprets it beyond null-ness.
type Job struct {
	ID            string          `json:"id"`
	IdentityID    string          `json:"identity_id"`
	IdentityTier  string          `json:"identity_tier"`
	SourceKind    string          `json:"source_kind"`
	SourceValue   string          `json:"source_value"`
	CapturedText  string          `json:"captured_text,omitempty"`
	Status        string          `json:"status"`
	Result        json.RawMessage `json:"result,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Terminal reports whether the job has reached a final state. Terminal
// jobs are never picked up again by the worker or the sanitizer.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Identity reconstructs the submitting identity for the usage ledger.
func (j *Job) Identity() usage.Identity {
	return usage.Identity{ID: j.IdentityID, Tier: j.IdentityTier}
}
