package gemini

import (
	"github.com/google/generative-ai-go/genai"
)

// resultSchema constrains the model to the analysis.Result shape. The
// decode step still validates; the schema just makes the model far more
// likely to satisfy it.
var resultSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"compatibilityScore": {Type: genai.TypeInteger},
		"bestProfileId":      {Type: genai.TypeString},
		"reasoning":          {Type: genai.TypeString},
		"strengths": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"weaknesses": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"tailoringInstructions": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"recommendedBlockIds": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"distilledJob": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"companyName":         {Type: genai.TypeString},
				"roleTitle":           {Type: genai.TypeString},
				"applicationDeadline": {Type: genai.TypeString, Nullable: true},
				"keySkills": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"coreResponsibilities": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"companyName", "roleTitle", "keySkills", "coreResponsibilities"},
		},
	},
	Required: []string{
		"compatibilityScore", "bestProfileId", "reasoning", "strengths",
		"weaknesses", "tailoringInstructions", "recommendedBlockIds", "distilledJob",
	},
}

var critiqueSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score": {Type: genai.TypeInteger},
		"decision": {
			Type:   genai.TypeString,
			Format: "enum",
			Enum:   []string{"interview", "reject", "maybe"},
		},
		"strengths": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"feedback": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"score", "decision", "strengths", "feedback"},
}

var bulletListSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}
