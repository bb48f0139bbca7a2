// Package draft exposes the writing operations layered on top of a
// completed analysis: cover letter generation, a tailored professional
// summary, a hiring-manager critique of a drafted letter, and rewriting
// a single experience block against the target job.
package draft

import (
	"context"

	"jobfit/features/profile"
	"jobfit/internal/analysis"
)

// Writer is the inference surface the drafting operations run on.
type Writer interface {
	ComposeCoverLetter(ctx context.Context, jobText, profileText string, instructions []string, extraContext string) (text, promptVersion string, err error)
	WriteSummary(ctx context.Context, jobText, profileContext string) (string, error)
	CritiqueLetter(ctx context.Context, jobText, letter string) (*analysis.Critique, error)
	TailorBullets(ctx context.Context, jobText, title, organization string, bullets, instructions []string) ([]string, error)
}

// ProfileSource supplies the experience profiles the drafts draw on.
type ProfileSource interface {
	Get(ctx context.Context, id string) (*profile.Profile, error)
	Context(ctx context.Context) (string, error)
}

// CoverLetter is a generated letter plus the prompt variant that wrote
// it, so drafts can be compared per variant.
type CoverLetter struct {
	Text          string `json:"text"`
	PromptVersion string `json:"prompt_version"`
}
