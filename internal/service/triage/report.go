package triage

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sandevgo/medhelp/internal/core"
)

const (
	reportCandidates = 3

	fallbackRecommendation = "Please arrange a consultation with a healthcare professional to discuss these symptoms."
	disclaimer             = "_This summary is not a diagnosis. If symptoms get worse or you notice emergency warning signs, seek urgent medical care._"
)

// FormatReport renders the closing markdown summary of a completed dialogue.
func FormatReport(v core.Verdict) string {
	var sb strings.Builder

	sb.WriteString("**Triage summary**\n\n")

	candidates := sortedCandidates(v.Candidates)
	if len(candidates) == 0 {
		sb.WriteString("No specific condition stood out.\n")
	}
	for i, c := range candidates {
		if i == reportCandidates {
			break
		}
		fmt.Fprintf(&sb, "%d. **%s**: %d%%\n", i+1, c.Condition, percent(c.Probability))
	}

	advice := v.TopRecommendation
	if advice == "" {
		advice = fallbackRecommendation
	}
	sb.WriteString("\n**Advice**\n\n")
	sb.WriteString(advice)
	sb.WriteString("\n\n")

	if len(v.Retrieved) > 0 {
		sb.WriteString("**Reference sources**\n\n")
		for i, s := range uniqueSources(v.Retrieved) {
			if s.url == "" {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, s.title)
				continue
			}
			fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, s.title, s.url)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("_No specific medical sources were cited._\n\n")
	}

	sb.WriteString(disclaimer)
	return sb.String()
}

// sortedCandidates orders by probability, highest first, keeping ties stable.
func sortedCandidates(in []core.Candidate) []core.Candidate {
	out := make([]core.Candidate, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

func percent(p float64) int {
	return int(math.Round(p * 100))
}

type source struct {
	title string
	url   string
}

func uniqueSources(records []core.ScoredRecord) []source {
	seen := make(map[string]bool, len(records))
	var out []source
	for _, r := range records {
		key := r.SourceURL
		if key == "" {
			key = r.Title
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		title := r.Title
		if title == "" {
			title = r.SourceURL
		}
		out = append(out, source{title: title, url: r.SourceURL})
	}
	return out
}

func sourceURLs(records []core.ScoredRecord) []string {
	var urls []string
	for _, s := range uniqueSources(records) {
		if s.url != "" {
			urls = append(urls, s.url)
		}
	}
	return urls
}
