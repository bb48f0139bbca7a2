package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"jobfit/internal/adapter/gemini"
	"jobfit/internal/analysis"
	"jobfit/internal/settings"
)

// textResponse wraps free text the way the generativelanguage API does.
func textResponse(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func newWriter(t *testing.T, ts *httptest.Server) *gemini.DynamicAnalyzer {
	t.Helper()
	repo := &stubSettingsRepo{apiKey: "test-key"}
	return gemini.NewDynamicAnalyzer(
		settings.NewService(repo),
		"gemini-2.0-flash",
		option.WithEndpoint(ts.URL),
	)
}

func TestComposeCoverLetter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(textResponse(t, "Dear Acme team, your Go platform work caught my eye."))
	}))
	defer ts.Close()

	text, variant, err := newWriter(t, ts).ComposeCoverLetter(
		context.Background(),
		"Senior Backend Engineer @ Acme",
		"Profile text",
		[]string{"lead with Go"},
		"Open to relocation",
	)

	require.NoError(t, err)
	assert.Contains(t, text, "Dear Acme team")
	assert.NotEmpty(t, variant)
}

func TestWriteSummary(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(textResponse(t, "Seasoned Go engineer with eight years of backend experience."))
	}))
	defer ts.Close()

	text, err := newWriter(t, ts).WriteSummary(context.Background(), "Go engineer wanted", "Profile text")

	require.NoError(t, err)
	assert.Contains(t, text, "Seasoned Go engineer")
}

func TestCritiqueLetter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(modelResponse(t, map[string]interface{}{
			"score":     7,
			"decision":  "maybe",
			"strengths": []string{"specific hook"},
			"feedback":  []string{"quantify impact"},
		}))
	}))
	defer ts.Close()

	critique, err := newWriter(t, ts).CritiqueLetter(context.Background(), "Go engineer wanted", "Dear team,")

	require.NoError(t, err)
	assert.Equal(t, 7, critique.Score)
	assert.Equal(t, analysis.DecisionMaybe, critique.Decision)
}

func TestCritiqueLetter_MalformedVerdict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(textResponse(t, "looks fine to me"))
	}))
	defer ts.Close()

	critique, err := newWriter(t, ts).CritiqueLetter(context.Background(), "Go engineer wanted", "Dear team,")

	assert.Nil(t, critique)
	assert.Equal(t, analysis.ClassMalformedResponse, analysis.Classify(err))
}

func TestTailorBullets(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(textResponse(t, `["Shipped Go services handling 10k rps"]`))
	}))
	defer ts.Close()

	bullets, err := newWriter(t, ts).TailorBullets(
		context.Background(),
		"Go engineer wanted",
		"Senior Engineer", "Acme",
		[]string{"Built Go services"},
		[]string{"emphasize scale"},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"Shipped Go services handling 10k rps"}, bullets)
}

func TestTailorBullets_EmptyBlockSkipsCall(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	bullets, err := newWriter(t, ts).TailorBullets(context.Background(), "job", "t", "o", nil, nil)

	require.NoError(t, err)
	assert.Empty(t, bullets)
	assert.False(t, called)
}

func TestValidateKey_Valid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(textResponse(t, "ok"))
	}))
	defer ts.Close()

	valid, message := newWriter(t, ts).ValidateKey(context.Background(), "candidate-key")

	assert.True(t, valid)
	assert.Empty(t, message)
}

func TestValidateKey_QuotaStillValid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer ts.Close()

	valid, message := newWriter(t, ts).ValidateKey(context.Background(), "exhausted-key")

	assert.True(t, valid)
	assert.Contains(t, message, "High traffic")
}

func TestValidateKey_PermissionDenied(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "Permission denied", "status": "PERMISSION_DENIED"}}`))
	}))
	defer ts.Close()

	valid, message := newWriter(t, ts).ValidateKey(context.Background(), "restricted-key")

	assert.False(t, valid)
	assert.Contains(t, message, "Permission denied")
}

func TestValidateKey_Empty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	valid, message := newWriter(t, ts).ValidateKey(context.Background(), "   ")

	assert.False(t, valid)
	assert.NotEmpty(t, message)
}
