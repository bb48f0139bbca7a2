package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNameRequired = errors.New("profile name is required")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Blocks {
		if p.Blocks[i].ID == "" {
			p.Blocks[i].ID = uuid.NewString()
		}
	}
	return s.repo.Save(ctx, p)
}

func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Context builds the analyzer prompt section from every stored profile.
func (s *Service) Context(ctx context.Context) (string, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}
	return PromptContext(profiles), nil
}
