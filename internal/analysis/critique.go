package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	DecisionInterview = "interview"
	DecisionReject    = "reject"
	DecisionMaybe     = "maybe"
)

// Critique is the hiring-manager review of a generated cover letter.
type Critique struct {
	Score     int      `json:"score"`
	Decision  string   `json:"decision"`
	Strengths []string `json:"strengths"`
	Feedback  []string `json:"feedback"`
}

// DecodeCritique strictly parses a critique response from the model.
func DecodeCritique(data []byte) (*Critique, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var c Critique
	if err := dec.Decode(&c); err != nil {
		return nil, MalformedResponse(fmt.Errorf("decode critique response: %w", err))
	}
	if c.Score < 0 || c.Score > 10 {
		return nil, MalformedResponse(fmt.Errorf("critique score %d out of range", c.Score))
	}
	switch c.Decision {
	case DecisionInterview, DecisionReject, DecisionMaybe:
	default:
		return nil, MalformedResponse(fmt.Errorf("unknown critique decision %q", c.Decision))
	}
	if c.Strengths == nil || c.Feedback == nil {
		return nil, MalformedResponse(fmt.Errorf("missing required list fields"))
	}
	return &c, nil
}
