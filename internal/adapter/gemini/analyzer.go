// Package gemini adapts the Google generative AI SDK into the inference
// client the pipeline needs: schema-constrained job-fit analysis with
// classified failures.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"jobfit/internal/analysis"
)

const maxJobTextLen = 10000

type Analyzer struct {
	client    *genai.Client
	modelName string
}

func NewAnalyzer(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Analyzer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Analyzer{client: client, modelName: model}, nil
}

// Analyze sends the job text and the rendered profile context through the
// model in strict JSON mode and decodes the structured result.
func (a *Analyzer) Analyze(ctx context.Context, jobText, profileContext string) (*analysis.Result, error) {
	return generate(ctx, a.client, a.modelName, jobText, profileContext)
}

func (a *Analyzer) Close() error {
	return a.client.Close()
}

func generate(ctx context.Context, client *genai.Client, modelName, jobText, profileContext string) (*analysis.Result, error) {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = resultSchema

	prompt := buildPrompt(jobText, profileContext)

	slog.DebugContext(ctx, "running analysis", "model", modelName, "job_text_len", len(jobText))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classifyAPIError(err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, analysis.MalformedResponse(errors.New("empty response from model"))
	}

	return analysis.DecodeResult([]byte(text))
}

// truncate cuts s to at most max bytes on a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func responseText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				builder.WriteString(string(txt))
			}
		}
	}
	return strings.TrimSpace(builder.String())
}

func buildPrompt(jobText, profileContext string) string {
	jobText = truncate(jobText, maxJobTextLen)
	return fmt.Sprintf(`You are a ruthless technical recruiter screening a candidate for this role.

RAW JOB TEXT:
%q

CANDIDATE EXPERIENCE PROFILES (blocks with IDs):
%s

TASK:
1. DISTILL the job text into the structured format.
2. ANALYZE the candidate against the job with extreme scrutiny.
3. List strengths (proven skills only) and weaknesses (missing requirements).
4. SCORE compatibility 0-100. Be harsh.
5. Pick the single best matching profile id and the block ids vital to this job.
6. Give concrete tailoring instructions, not generic advice.

Return ONLY JSON matching the response schema.`, jobText, profileContext)
}
