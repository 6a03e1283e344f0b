package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/medhelp/internal/core"
)

type rawCandidate struct {
	Condition   string   `json:"condition"`
	Probability *float64 `json:"probability"`
}

type rawVerdict struct {
	Candidates        *[]rawCandidate `json:"candidates"`
	NextQuestion      *string         `json:"next_question"`
	TopRecommendation string          `json:"top_recommendation"`
	EvidenceUsed      bool            `json:"evidence_used"`
	EvidenceReasoning string          `json:"evidence_reasoning"`
}

// parseVerdict decodes the outermost JSON object in content and validates it.
// Surrounding prose or code fences are ignored.
func parseVerdict(content string) (core.Verdict, error) {
	obj, err := extractObject(content)
	if err != nil {
		return core.Verdict{}, err
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return core.Verdict{}, fmt.Errorf("invalid verdict JSON: %w", err)
	}

	if raw.Candidates == nil {
		return core.Verdict{}, errors.New("verdict has no candidates field")
	}
	if raw.NextQuestion == nil || strings.TrimSpace(*raw.NextQuestion) == "" {
		return core.Verdict{}, errors.New("verdict has no next_question")
	}

	v := core.Verdict{
		Candidates:        make([]core.Candidate, 0, len(*raw.Candidates)),
		NextQuestion:      strings.TrimSpace(*raw.NextQuestion),
		TopRecommendation: strings.TrimSpace(raw.TopRecommendation),
		EvidenceUsed:      raw.EvidenceUsed,
		EvidenceReasoning: strings.TrimSpace(raw.EvidenceReasoning),
	}

	for i, c := range *raw.Candidates {
		cond := strings.TrimSpace(c.Condition)
		if cond == "" {
			return core.Verdict{}, fmt.Errorf("candidate %d has no condition", i)
		}
		if c.Probability == nil {
			return core.Verdict{}, fmt.Errorf("candidate %q has no probability", cond)
		}
		if p := *c.Probability; p < 0 || p > 1 {
			return core.Verdict{}, fmt.Errorf("candidate %q probability %v outside [0,1]", cond, p)
		}
		v.Candidates = append(v.Candidates, core.Candidate{Condition: cond, Probability: *c.Probability})
	}

	if v.IsComplete() && v.TopRecommendation == "" {
		return core.Verdict{}, errors.New("completed verdict has no top_recommendation")
	}
	return v, nil
}

func extractObject(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object in response")
	}
	return content[start : end+1], nil
}
