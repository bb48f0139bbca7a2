package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"jobfit/internal/analysis"
	"jobfit/internal/settings"
)

// DynamicAnalyzer resolves the API key from settings on every call so a
// key saved through the settings endpoint takes effect without a restart.
type DynamicAnalyzer struct {
	settingsSvc *settings.Service
	modelName   string
	client      *genai.Client
	currentKey  string
	mu          sync.RWMutex
	clientOpts  []option.ClientOption
}

func NewDynamicAnalyzer(svc *settings.Service, model string, opts ...option.ClientOption) *DynamicAnalyzer {
	return &DynamicAnalyzer{
		settingsSvc: svc,
		modelName:   model,
		clientOpts:  opts,
	}
}

func (a *DynamicAnalyzer) Analyze(ctx context.Context, jobText, profileContext string) (*analysis.Result, error) {
	client, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return generate(ctx, client, a.modelName, jobText, profileContext)
}

// resolve reads the current API key from settings and returns a client
// bound to it.
func (a *DynamicAnalyzer) resolve(ctx context.Context) (*genai.Client, error) {
	s, err := a.settingsSvc.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if s.GeminiAPIKey == "" {
		return nil, analysis.Auth(errors.New("gemini api key not configured"))
	}
	return a.getClient(ctx, s.GeminiAPIKey)
}

// ValidateKey checks a candidate API key with a throwaway client, before
// anything is saved. A quota failure still means the key itself is good.
func (a *DynamicAnalyzer) ValidateKey(ctx context.Context, key string) (bool, string) {
	if strings.TrimSpace(key) == "" {
		return false, "API key is required."
	}

	opts := append([]option.ClientOption{}, a.clientOpts...)
	client, err := genai.NewClient(ctx, append(opts, option.WithAPIKey(key))...)
	if err != nil {
		return false, "Invalid API Key. Please check and try again."
	}
	defer client.Close()

	_, err = client.GenerativeModel(a.modelName).GenerateContent(ctx, genai.Text("Test"))
	if err == nil {
		return true, ""
	}

	switch analysis.Classify(classifyAPIError(err)) {
	case analysis.ClassRateLimited, analysis.ClassDailyQuota:
		return true, "High traffic. Please wait a moment."
	case analysis.ClassAuth:
		return false, "Permission denied. Check API key restrictions."
	}
	if strings.Contains(err.Error(), "404") {
		return false, "Model not found. Try a different key or region."
	}
	return false, fmt.Sprintf("Validation failed: %v", err)
}

func (a *DynamicAnalyzer) getClient(ctx context.Context, key string) (*genai.Client, error) {
	a.mu.RLock()
	if a.client != nil && a.currentKey == key {
		defer a.mu.RUnlock()
		return a.client, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double check
	if a.client != nil && a.currentKey == key {
		return a.client, nil
	}

	if a.client != nil {
		if err := a.client.Close(); err != nil {
			slog.Warn("failed to close previous genai client", "error", err)
		}
	}

	opts := append(a.clientOpts, option.WithAPIKey(key))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	a.client = client
	a.currentKey = key
	return client, nil
}
