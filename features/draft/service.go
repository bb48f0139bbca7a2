package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobfit/internal/analysis"
	"jobfit/internal/retry"
)

var (
	ErrJobTextRequired = errors.New("job text is required")
	ErrLetterRequired  = errors.New("cover letter text is required")
	ErrBlockNotFound   = errors.New("experience block not found")
)

// Service runs each drafting operation through the same backoff policy
// the analysis pipeline uses.
type Service struct {
	writer      Writer
	profiles    ProfileSource
	maxAttempts int
	baseDelay   time.Duration
}

func NewService(writer Writer, profiles ProfileSource, maxAttempts int, baseDelay time.Duration) *Service {
	return &Service{
		writer:      writer,
		profiles:    profiles,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// CoverLetter drafts a letter for the job against one stored profile.
// Profile lookup errors pass through so the handler can map not-found.
func (s *Service) CoverLetter(ctx context.Context, jobText, profileID string, instructions []string, extraContext string) (*CoverLetter, error) {
	jobText = strings.TrimSpace(jobText)
	if jobText == "" {
		return nil, ErrJobTextRequired
	}

	p, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	profileText := p.Render()

	return retry.Do(ctx, s.maxAttempts, s.baseDelay, s.logRetry(ctx), func(ctx context.Context) (*CoverLetter, error) {
		text, version, err := s.writer.ComposeCoverLetter(ctx, jobText, profileText, instructions, extraContext)
		if err != nil {
			return nil, err
		}
		return &CoverLetter{Text: text, PromptVersion: version}, nil
	})
}

// Summary writes a short professional summary pitching every stored
// profile at the target job.
func (s *Service) Summary(ctx context.Context, jobText string) (string, error) {
	jobText = strings.TrimSpace(jobText)
	if jobText == "" {
		return "", ErrJobTextRequired
	}

	profileContext, err := s.profiles.Context(ctx)
	if err != nil {
		return "", fmt.Errorf("load profile context: %w", err)
	}

	return retry.Do(ctx, s.maxAttempts, s.baseDelay, s.logRetry(ctx), func(ctx context.Context) (string, error) {
		return s.writer.WriteSummary(ctx, jobText, profileContext)
	})
}

// Critique reviews a drafted letter against the job.
func (s *Service) Critique(ctx context.Context, jobText, letter string) (*analysis.Critique, error) {
	jobText = strings.TrimSpace(jobText)
	if jobText == "" {
		return nil, ErrJobTextRequired
	}
	if strings.TrimSpace(letter) == "" {
		return nil, ErrLetterRequired
	}

	return retry.Do(ctx, s.maxAttempts, s.baseDelay, s.logRetry(ctx), func(ctx context.Context) (*analysis.Critique, error) {
		return s.writer.CritiqueLetter(ctx, jobText, letter)
	})
}

// TailorBlock rewrites the bullets of one experience block. A block
// without bullets returns an empty list without touching the model.
func (s *Service) TailorBlock(ctx context.Context, jobText, profileID, blockID string, instructions []string) ([]string, error) {
	jobText = strings.TrimSpace(jobText)
	if jobText == "" {
		return nil, ErrJobTextRequired
	}

	p, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	for _, block := range p.Blocks {
		if block.ID != blockID {
			continue
		}
		if len(block.Bullets) == 0 {
			return []string{}, nil
		}
		return retry.Do(ctx, s.maxAttempts, s.baseDelay, s.logRetry(ctx), func(ctx context.Context) ([]string, error) {
			return s.writer.TailorBullets(ctx, jobText, block.Title, block.Organization, block.Bullets, instructions)
		})
	}
	return nil, ErrBlockNotFound
}

func (s *Service) logRetry(ctx context.Context) retry.OnRetry {
	return func(message string, attempt int) {
		slog.InfoContext(ctx, "draft retrying", "attempt", attempt, "message", message)
	}
}
