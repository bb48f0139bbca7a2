package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"jobfit/features/usage"
	"jobfit/internal/config"
)

var (
	ErrEmptySource   = errors.New("source is required")
	ErrBadSourceKind = errors.New("source kind must be url or text")
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type AdmissionChecker interface {
	CheckAdmission(ctx context.Context, id usage.Identity) (*usage.Denial, error)
}

// TaskPayload is the NSQ message handed to the analysis worker.
type TaskPayload struct {
	JobID string `json:"job_id"`
}

type Service struct {
	repo   Repository
	pub    TaskPublisher
	ledger AdmissionChecker
}

func NewService(repo Repository, pub TaskPublisher, ledger AdmissionChecker) *Service {
	return &Service{repo: repo, pub: pub, ledger: ledger}
}

// Submit admits, persists and schedules a new analysis. The admission
// check runs before anything is written, so a denied request leaves no
// trace. A non-nil Denial means the request was rejected by quota, not
// by an error.
func (s *Service) Submit(ctx context.Context, identity usage.Identity, sourceKind, sourceValue string) (*Job, *usage.Denial, error) {
	sourceValue = strings.TrimSpace(sourceValue)
	if sourceValue == "" {
		return nil, nil, ErrEmptySource
	}
	if sourceKind != SourceURL && sourceKind != SourceText {
		return nil, nil, ErrBadSourceKind
	}

	denial, err := s.ledger.CheckAdmission(ctx, identity)
	if err != nil {
		return nil, nil, fmt.Errorf("admission check: %w", err)
	}
	if denial != nil {
		return nil, denial, nil
	}

	j := &Job{
		ID:           uuid.NewString(),
		IdentityID:   identity.ID,
		IdentityTier: identity.Tier,
		SourceKind:   sourceKind,
		SourceValue:  sourceValue,
		Status:       StatusQueued,
	}
	// Pasted text is its own captured content; url jobs capture at fetch time.
	if sourceKind == SourceText {
		j.CapturedText = sourceValue
	}
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, nil, fmt.Errorf("persist job: %w", err)
	}

	payload, _ := json.Marshal(TaskPayload{JobID: j.ID})
	if err := s.pub.Publish(config.TopicAnalyzeTask, payload); err != nil {
		slog.ErrorContext(ctx, "failed to schedule analysis", "jobId", j.ID, "error", err)
		j.Status = StatusFailed
		j.FailureReason = "The analysis could not be scheduled. Try again."
		if saveErr := s.repo.Save(ctx, j); saveErr != nil {
			slog.ErrorContext(ctx, "failed to persist scheduling failure", "jobId", j.ID, "error", saveErr)
		}
		return j, nil, nil
	}

	return j, nil, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

// RepairInterrupted runs the restart sanitizer against the store. Called
// once during startup, before any new work is accepted.
func (s *Service) RepairInterrupted(ctx context.Context) (int, error) {
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list jobs for repair: %w", err)
	}

	repaired := Sanitize(jobs)
	for i := range repaired {
		if err := s.repo.Save(ctx, &repaired[i]); err != nil {
			return i, fmt.Errorf("persist repaired job %s: %w", repaired[i].ID, err)
		}
		slog.InfoContext(ctx, "repaired interrupted job",
			"jobId", repaired[i].ID, "status", repaired[i].Status)
	}
	return len(repaired), nil
}
