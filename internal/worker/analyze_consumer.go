package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"jobfit/features/job"

	"jobfit/internal/analysis"
	"jobfit/internal/config"
	"jobfit/internal/middleware"
	"jobfit/internal/retry"
)

// AnalyzeConsumer runs the background half of the pipeline: one message
// on analyze.task drives one job from queued to a terminal state. The
// handler returns an error only for infrastructure failures that NSQ
// should redeliver; job-level failures end in a persisted failed status
// and a nil return.
type AnalyzeConsumer struct {
	store       JobStore
	fetcher     ContentFetcher
	analyzer    Analyzer
	profiles    ProfileSource
	ledger      UsageLedger
	publisher   EventPublisher
	maxAttempts int
	baseDelay   time.Duration
}

func NewAnalyzeConsumer(store JobStore, fetcher ContentFetcher, analyzer Analyzer, profiles ProfileSource, ledger UsageLedger, publisher EventPublisher, maxAttempts int, baseDelay time.Duration) *AnalyzeConsumer {
	return &AnalyzeConsumer{
		store:       store,
		fetcher:     fetcher,
		analyzer:    analyzer,
		profiles:    profiles,
		ledger:      ledger,
		publisher:   publisher,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

func (h *AnalyzeConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload TaskPayload
	err := json.Unmarshal(m.Body, &payload)

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if err != nil {
		slog.ErrorContext(ctx, "invalid task message, dropping", "error", err)
		return nil
	}
	if payload.JobID == "" {
		slog.ErrorContext(ctx, "task message without job id, dropping")
		return nil
	}

	j, err := h.store.Get(ctx, payload.JobID)
	if errors.Is(err, sql.ErrNoRows) {
		slog.WarnContext(ctx, "job missing or deleted, dropping", "jobId", payload.JobID)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load job", "jobId", payload.JobID, "error", err)
		return err
	}
	if j.Terminal() {
		slog.InfoContext(ctx, "job already terminal, dropping", "jobId", j.ID, "status", j.Status)
		return nil
	}

	h.run(ctx, j, correlationID)
	return nil
}

// run drives the pipeline stages. Status writes are persist-first: the
// new status is written before the stage's work happens, so a crash
// leaves a row the startup repair can classify.
func (h *AnalyzeConsumer) run(ctx context.Context, j *job.Job, correlationID string) {
	j.Status = job.StatusAnalyzing
	h.persist(ctx, j, correlationID)

	jobText := j.SourceValue
	if j.SourceKind == job.SourceURL {
		captured, err := h.fetcher.Fetch(ctx, j.SourceValue)
		if err != nil {
			slog.WarnContext(ctx, "content fetch failed", "jobId", j.ID, "url", j.SourceValue, "error", err)
			h.fail(ctx, j, err, correlationID)
			return
		}
		j.CapturedText = captured
		jobText = captured
	} else if j.CapturedText == "" {
		j.CapturedText = j.SourceValue
	}

	profileContext, err := h.profiles.Context(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load profile context", "jobId", j.ID, "error", err)
		profileContext = "No resume profiles are available."
	}

	onRetry := func(message string, attempt int) {
		slog.InfoContext(ctx, "analysis retrying", "jobId", j.ID, "attempt", attempt, "message", message)
		h.notify(ctx, ProgressEvent{
			JobID:         j.ID,
			Stage:         StageRetrying,
			Message:       message,
			Attempt:       attempt,
			CorrelationID: correlationID,
		})
	}

	result, err := retry.Do(ctx, h.maxAttempts, h.baseDelay, onRetry, func(ctx context.Context) (*analysis.Result, error) {
		return h.analyzer.Analyze(ctx, jobText, profileContext)
	})
	if err != nil {
		slog.ErrorContext(ctx, "analysis failed", "jobId", j.ID, "class", analysis.Classify(err), "error", err)
		h.fail(ctx, j, err, correlationID)
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		h.fail(ctx, j, analysis.MalformedResponse(err), correlationID)
		return
	}

	j.Status = job.StatusCompleted
	j.Result = raw
	j.FailureReason = ""
	h.persist(ctx, j, correlationID)

	if err := h.ledger.Increment(ctx, j.Identity()); err != nil {
		slog.ErrorContext(ctx, "failed to record usage", "jobId", j.ID, "identityId", j.IdentityID, "error", err)
	}

	slog.InfoContext(ctx, "analysis completed", "jobId", j.ID, "score", result.CompatibilityScore)
	h.notify(ctx, ProgressEvent{
		JobID:         j.ID,
		Stage:         StageCompleted,
		CorrelationID: correlationID,
	})
}

func (h *AnalyzeConsumer) fail(ctx context.Context, j *job.Job, cause error, correlationID string) {
	reason := analysis.UserMessage(cause)
	j.Status = job.StatusFailed
	j.FailureReason = reason
	h.persist(ctx, j, correlationID)
	h.notify(ctx, ProgressEvent{
		JobID:         j.ID,
		Stage:         StageFailed,
		Message:       reason,
		CorrelationID: correlationID,
	})
}

// persist writes the job state. A write failure is surfaced as a warning
// event but does not abort the pipeline; the in-memory job carries on
// and the next write retries the full row.
func (h *AnalyzeConsumer) persist(ctx context.Context, j *job.Job, correlationID string) {
	if err := h.store.Save(ctx, j); err != nil {
		slog.ErrorContext(ctx, "failed to persist job status", "jobId", j.ID, "status", j.Status, "error", err)
		h.notify(ctx, ProgressEvent{
			JobID:         j.ID,
			Stage:         StageWarning,
			Message:       "Progress could not be saved. The analysis continues.",
			CorrelationID: correlationID,
		})
	}
}

func (h *AnalyzeConsumer) notify(ctx context.Context, event ProgressEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode progress event", "error", err)
		return
	}
	if err := h.publisher.Publish(config.TopicAnalyzeProgress, body); err != nil {
		slog.WarnContext(ctx, "failed to publish progress event", "jobId", event.JobID, "error", err)
	}
}
