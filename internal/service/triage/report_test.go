package triage

import (
	"strings"
	"testing"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestFormatReport(t *testing.T) {
	v := core.Verdict{
		Candidates: []core.Candidate{
			{Condition: "Common cold", Probability: 0.2},
			{Condition: "Flu", Probability: 0.65},
			{Condition: "COVID-19", Probability: 0.1},
			{Condition: "Sinusitis", Probability: 0.05},
		},
		NextQuestion:      core.CompletionSentinel,
		TopRecommendation: "Rest and drink fluids.",
		Retrieved: []core.ScoredRecord{
			{IndexRecord: core.IndexRecord{Title: "Flu - NHS", SourceURL: "https://nhs.example/flu"}, Score: 0.8},
			{IndexRecord: core.IndexRecord{Title: "Flu - NHS", SourceURL: "https://nhs.example/flu"}, Score: 0.7},
			{IndexRecord: core.IndexRecord{Title: "Emergency warning signs"}, Score: 0.4},
		},
	}

	report := FormatReport(v)

	flu := strings.Index(report, "1. **Flu**: 65%")
	cold := strings.Index(report, "2. **Common cold**: 20%")
	covid := strings.Index(report, "3. **COVID-19**: 10%")
	assert.True(t, flu >= 0 && cold > flu && covid > cold, report)
	assert.NotContains(t, report, "Sinusitis")
	assert.Contains(t, report, "Rest and drink fluids.")
	assert.Contains(t, report, "1. [Flu - NHS](https://nhs.example/flu)")
	assert.Contains(t, report, "2. Emergency warning signs")
	assert.Equal(t, 1, strings.Count(report, "https://nhs.example/flu"))
	assert.Contains(t, report, "not a diagnosis")
}

func TestFormatReport_NoSources(t *testing.T) {
	report := FormatReport(core.Verdict{NextQuestion: core.CompletionSentinel})

	assert.Contains(t, report, "No specific condition stood out.")
	assert.Contains(t, report, fallbackRecommendation)
	assert.Contains(t, report, "No specific medical sources were cited.")
}
