package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DistilledJob is the structured summary of the posting itself.
type DistilledJob struct {
	CompanyName          string   `json:"companyName"`
	RoleTitle            string   `json:"roleTitle"`
	ApplicationDeadline  string   `json:"applicationDeadline,omitempty"`
	KeySkills            []string `json:"keySkills"`
	CoreResponsibilities []string `json:"coreResponsibilities"`
}

// Result is the schema the model is constrained to. Downstream the payload
// is opaque; this type exists so the decode step can reject partial objects.
type Result struct {
	CompatibilityScore    int          `json:"compatibilityScore"`
	BestProfileID         string       `json:"bestProfileId"`
	Reasoning             string       `json:"reasoning"`
	Strengths             []string     `json:"strengths"`
	Weaknesses            []string     `json:"weaknesses"`
	TailoringInstructions []string     `json:"tailoringInstructions"`
	RecommendedBlockIDs   []string     `json:"recommendedBlockIds"`
	DistilledJob          DistilledJob `json:"distilledJob"`
}

// DecodeResult strictly parses a model response. Anything that does not
// satisfy the schema is a MalformedResponse, never a partial result.
func DecodeResult(data []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var res Result
	if err := dec.Decode(&res); err != nil {
		return nil, MalformedResponse(fmt.Errorf("decode analysis response: %w", err))
	}
	if res.CompatibilityScore < 0 || res.CompatibilityScore > 100 {
		return nil, MalformedResponse(fmt.Errorf("compatibility score %d out of range", res.CompatibilityScore))
	}
	if res.BestProfileID == "" {
		return nil, MalformedResponse(fmt.Errorf("missing best profile id"))
	}
	if res.Strengths == nil || res.Weaknesses == nil || res.TailoringInstructions == nil {
		return nil, MalformedResponse(fmt.Errorf("missing required list fields"))
	}
	return &res, nil
}
