package worker

import (
	"context"

	"jobfit/features/job"
	"jobfit/features/usage"

	"jobfit/internal/analysis"
)

type JobStore interface {
	Get(ctx context.Context, id string) (*job.Job, error)
	Save(ctx context.Context, j *job.Job) error
}

type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, jobText, profileContext string) (*analysis.Result, error)
}

type ProfileSource interface {
	Context(ctx context.Context) (string, error)
}

type UsageLedger interface {
	Increment(ctx context.Context, id usage.Identity) error
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}
