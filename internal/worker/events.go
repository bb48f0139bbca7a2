package worker

// TaskPayload is the analyze.task message body.
type TaskPayload struct {
	JobID         string `json:"job_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

const (
	StageRetrying  = "retrying"
	StageCompleted = "completed"
	StageFailed    = "failed"
	StageWarning   = "warning"
)

// ProgressEvent is published to analyze.progress so clients can surface
// retry waits and terminal outcomes without polling.
type ProgressEvent struct {
	JobID         string `json:"job_id"`
	Stage         string `json:"stage"`
	Message       string `json:"message,omitempty"`
	Attempt       int    `json:"attempt,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
