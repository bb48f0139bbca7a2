package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"jobfit/internal/analysis"
)

const (
	maxSummaryJobTextLen  = 5000
	maxCritiqueJobTextLen = 5000
	maxTailorJobTextLen   = 3000
)

// coverLetterVariants are alternate framings for the cover letter prompt.
// One is picked at random per request and its name is returned with the
// letter so outcomes can be compared per variant.
var coverLetterVariants = []struct {
	name     string
	template string
}{
	{
		name: "v1_direct",
		template: `You are an expert copywriter. Write a professional cover letter.

INSTRUCTIONS:
- Structure:
  1. THE HOOK: Open strong. Mention the specific role/company and ONE key reason you fit.
  2. THE EVIDENCE: Connect 1-2 specific achievements from my resume directly to their hardest requirements.
  3. THE CLOSE: Brief, confident call to action.
- Tone: Professional but conversational (human), not robotic.
- Avoid cliches like "I am writing to apply...", start fresher.`,
	},
	{
		name: "v2_storytelling",
		template: `You are a career coach helping a candidate stand out. Write a cover letter that tells a compelling story.

INSTRUCTIONS:
- DO NOT start with "I am writing to apply". Start with a statement about the company's mission or a specific problem they are solving.
- Narrative arc: passion for the industry or problem, why this company caught my eye, then pivot to a similar challenge I faced in a previous role with resume evidence.
- Ending: "I'd love to bring this energy to [Company]."
- Tone: Enthusiastic, genuine, slightly less formal than a standard corporate letter.`,
	},
	{
		name: "v3_executive",
		template: `You are a senior executive writing a cover letter. Write a sophisticated, high-level strategic letter.
Focus on value proposition and ROI, not just skills.`,
	},
}

// ComposeCoverLetter drafts a cover letter for the job against one
// rendered profile. Returns the letter and the name of the prompt
// variant used.
func (a *DynamicAnalyzer) ComposeCoverLetter(ctx context.Context, jobText, profileText string, instructions []string, extraContext string) (string, string, error) {
	client, err := a.resolve(ctx)
	if err != nil {
		return "", "", err
	}

	variant := coverLetterVariants[rand.IntN(len(coverLetterVariants))]

	var b strings.Builder
	b.WriteString(variant.template)
	fmt.Fprintf(&b, "\n\nJOB DESCRIPTION:\n%s\n\nMY EXPERIENCE:\n%s\n", jobText, profileText)
	if len(instructions) > 0 {
		fmt.Fprintf(&b, "\nSTRATEGY:\n%s\n", strings.Join(instructions, "\n"))
	}
	if extraContext != "" {
		fmt.Fprintf(&b, "\nMY ADDITIONAL CONTEXT (Important):\n%s\nInclude this context naturally if relevant to the job requirements.\n", extraContext)
	}

	slog.DebugContext(ctx, "composing cover letter", "model", a.modelName, "variant", variant.name)

	text, err := generateText(ctx, client, a.modelName, b.String(), nil, nil)
	if err != nil {
		return "", "", err
	}
	return text, variant.name, nil
}

// WriteSummary produces a short professional summary pitching the stored
// profiles at the target job.
func (a *DynamicAnalyzer) WriteSummary(ctx context.Context, jobText, profileContext string) (string, error) {
	client, err := a.resolve(ctx)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are an expert resume writer.
Write a 2-3 sentence "Professional Summary" for the top of my resume.

TARGET JOB:
%s

MY BACKGROUND:
%s

INSTRUCTIONS:
- Pitch me as the perfect candidate for THIS specific role.
- Use keywords from the job description.
- Keep it concise, punchy, and confident (no "I believe", just facts).
- Do NOT include a header or "Summary:", just the text.`,
		truncate(jobText, maxSummaryJobTextLen), profileContext)

	return generateText(ctx, client, a.modelName, prompt, nil, nil)
}

// CritiqueLetter reviews a drafted cover letter the way a hiring manager
// would and returns the structured verdict.
func (a *DynamicAnalyzer) CritiqueLetter(ctx context.Context, jobText, letter string) (*analysis.Critique, error) {
	client, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are a strict technical hiring manager. Review this cover letter for the job below.

JOB:
%s

CANDIDATE LETTER:
%s

TASK:
1. Would you interview this person based only on the letter?
2. Score it 0-10.

CRITIQUE CRITERIA:
- Does it have a strong hook referencing the company or role specifically, or is it generic?
- Is it just repeating the resume, or telling a story?
- Is it concise?

3. List 3 strengths.
4. List 3 specific improvements needed to make it a "Must Hire".

Return ONLY JSON matching the response schema.`,
		truncate(jobText, maxCritiqueJobTextLen), letter)

	temp := float32(0.1)
	text, err := generateText(ctx, client, a.modelName, prompt, critiqueSchema, &temp)
	if err != nil {
		return nil, err
	}
	return analysis.DecodeCritique([]byte(text))
}

// TailorBullets rewrites one experience block's bullets against the
// target job. Empty blocks short-circuit to an empty list.
func (a *DynamicAnalyzer) TailorBullets(ctx context.Context, jobText, title, organization string, bullets, instructions []string) ([]string, error) {
	if len(bullets) == 0 {
		return []string{}, nil
	}

	client, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var original strings.Builder
	for _, bullet := range bullets {
		fmt.Fprintf(&original, "- %s\n", bullet)
	}

	prompt := fmt.Sprintf(`You are an expert resume writer.
Rewrite the bullet points for this specific job experience to perfectly match the target job description.

TARGET JOB:
%s

MY EXPERIENCE BLOCK:
Title: %s
Company: %s
Original Bullets:
%s
TAILORING INSTRUCTIONS (Strategy):
%s

TASKS:
1. Rewrite the bullets to use keywords from the Target Job.
2. Shift the focus to relevant skills.
3. Quantify impact where possible.
4. Keep the same number of bullets, or fewer if some are irrelevant.
5. Tone: Action-oriented, professional, high-impact.

Return ONLY a JSON array of strings.`,
		truncate(jobText, maxTailorJobTextLen), title, organization, original.String(), strings.Join(instructions, "\n"))

	temp := float32(0.7)
	text, err := generateText(ctx, client, a.modelName, prompt, bulletListSchema, &temp)
	if err != nil {
		return nil, err
	}

	var rewritten []string
	if err := json.Unmarshal([]byte(text), &rewritten); err != nil {
		return nil, analysis.MalformedResponse(fmt.Errorf("decode tailored bullets: %w", err))
	}
	return rewritten, nil
}

// generateText runs one prompt through the model. A non-nil schema puts
// the model in strict JSON mode.
func generateText(ctx context.Context, client *genai.Client, modelName, prompt string, schema *genai.Schema, temperature *float32) (string, error) {
	model := client.GenerativeModel(modelName)
	if schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = schema
	}
	if temperature != nil {
		model.SetTemperature(*temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyAPIError(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", analysis.MalformedResponse(errors.New("empty response from model"))
	}
	return text, nil
}
