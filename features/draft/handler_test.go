package draft

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfit/internal/analysis"
)

func newTestHandler(w Writer, p ProfileSource) *Handler {
	return NewHandler(NewService(w, p, 2, time.Millisecond))
}

func TestHandlerCoverLetter_OK(t *testing.T) {
	writer := &fakeWriter{letterText: "Dear team,", letterVariant: "v2_storytelling"}
	handler := newTestHandler(writer, &fakeProfiles{profile: backendProfile()})

	body := `{"job_text":"Go engineer wanted","profile_id":"p-1","instructions":["lead with Go"]}`
	req := httptest.NewRequest(http.MethodPost, "/drafts/cover-letter", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CoverLetter(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data CoverLetter `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Dear team,", resp.Data.Text)
	assert.Equal(t, "v2_storytelling", resp.Data.PromptVersion)
}

func TestHandlerCoverLetter_BadJSON(t *testing.T) {
	handler := newTestHandler(&fakeWriter{}, &fakeProfiles{})

	req := httptest.NewRequest(http.MethodPost, "/drafts/cover-letter", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	handler.CoverLetter(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCoverLetter_ProfileNotFound(t *testing.T) {
	handler := newTestHandler(&fakeWriter{}, &fakeProfiles{getErr: sql.ErrNoRows})

	body := `{"job_text":"Go engineer wanted","profile_id":"missing"}`
	req := httptest.NewRequest(http.MethodPost, "/drafts/cover-letter", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CoverLetter(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerCoverLetter_QuotaExhausted(t *testing.T) {
	writer := &fakeWriter{errs: []error{analysis.DailyQuota(errors.New("daily quota exhausted"))}}
	handler := newTestHandler(writer, &fakeProfiles{profile: backendProfile()})

	body := `{"job_text":"Go engineer wanted","profile_id":"p-1"}`
	req := httptest.NewRequest(http.MethodPost, "/drafts/cover-letter", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CoverLetter(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "QUOTA_EXCEEDED", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}

func TestHandlerSummary_EmptyJobText(t *testing.T) {
	handler := newTestHandler(&fakeWriter{}, &fakeProfiles{})

	req := httptest.NewRequest(http.MethodPost, "/drafts/summary", strings.NewReader(`{"job_text":""}`))
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCritique_OK(t *testing.T) {
	verdict := &analysis.Critique{Score: 8, Decision: analysis.DecisionInterview, Strengths: []string{"hook"}, Feedback: []string{"shorter"}}
	handler := newTestHandler(&fakeWriter{critique: verdict}, &fakeProfiles{})

	body := `{"job_text":"Go engineer wanted","cover_letter":"Dear team,"}`
	req := httptest.NewRequest(http.MethodPost, "/drafts/critique", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Critique(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data analysis.Critique `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, analysis.DecisionInterview, resp.Data.Decision)
	assert.Equal(t, 8, resp.Data.Score)
}

func TestHandlerCritique_AuthFailureIsBadGateway(t *testing.T) {
	writer := &fakeWriter{errs: []error{analysis.Auth(errors.New("key rejected"))}}
	handler := newTestHandler(writer, &fakeProfiles{})

	body := `{"job_text":"Go engineer wanted","cover_letter":"Dear team,"}`
	req := httptest.NewRequest(http.MethodPost, "/drafts/critique", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Critique(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlerTailorBlock_OK(t *testing.T) {
	writer := &fakeWriter{bullets: []string{"Led Go platform work"}}
	handler := newTestHandler(writer, &fakeProfiles{profile: backendProfile()})

	body := `{"job_text":"Go engineer wanted","profile_id":"p-1","block_id":"b-1"}`
	req := httptest.NewRequest(http.MethodPost, "/drafts/tailor-block", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.TailorBlock(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Bullets []string `json:"bullets"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Led Go platform work"}, resp.Data.Bullets)
}

func TestHandlerTailorBlock_UnknownBlock(t *testing.T) {
	handler := newTestHandler(&fakeWriter{}, &fakeProfiles{profile: backendProfile()})

	body := `{"job_text":"Go engineer wanted","profile_id":"p-1","block_id":"b-99"}`
	req := httptest.NewRequest(http.MethodPost, "/drafts/tailor-block", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.TailorBlock(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
