package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	profiles map[string]*Profile
}

func newStubRepo() *stubRepo {
	return &stubRepo{profiles: make(map[string]*Profile)}
}

func (s *stubRepo) Save(ctx context.Context, p *Profile) error {
	copied := *p
	s.profiles[p.ID] = &copied
	return nil
}

func (s *stubRepo) Get(ctx context.Context, id string) (*Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (s *stubRepo) List(ctx context.Context) ([]Profile, error) {
	var out []Profile
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.profiles[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.profiles, id)
	return nil
}

func TestHandlerCreate_AssignsIDs(t *testing.T) {
	repo := newStubRepo()
	handler := NewHandler(NewService(repo))

	body := `{"name":"Backend Engineer","blocks":[{"title":"Senior Engineer","bullets":["Built services"],"visible":true}]}`
	req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.ID)
	require.Len(t, resp.Data.Blocks, 1)
	assert.NotEmpty(t, resp.Data.Blocks[0].ID)
}

func TestHandlerCreate_NameRequired(t *testing.T) {
	handler := NewHandler(NewService(newStubRepo()))

	req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(`{"name":"  "}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestHandlerGet_NotFound(t *testing.T) {
	handler := NewHandler(NewService(newStubRepo()))

	req := httptest.NewRequest(http.MethodGet, "/profiles/p-missing", nil)
	req.SetPathValue("id", "p-missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	repo := newStubRepo()
	p := sampleProfile()
	repo.profiles["p-1"] = &p
	handler := NewHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodDelete, "/profiles/p-1", nil)
	req.SetPathValue("id", "p-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.profiles)
}

func TestServiceContext_UsesStoredProfiles(t *testing.T) {
	repo := newStubRepo()
	p := sampleProfile()
	repo.profiles["p-1"] = &p
	svc := NewService(repo)

	out, err := svc.Context(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out, "Backend Engineer")
}
