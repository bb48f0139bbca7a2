package settings

import (
	"context"
)

// Settings is the single-row application state: the inference credential
// plus a couple of client preferences that survive reloads. None of the
// preferences participate in pipeline correctness.
type Settings struct {
	ID           int    `json:"-"`
	GeminiAPIKey string `json:"gemini_api_key"`
	WelcomeSeen  bool   `json:"welcome_seen"`
	CurrentView  string `json:"current_view"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, set *Settings) error {
	return s.repo.Update(ctx, set)
}
