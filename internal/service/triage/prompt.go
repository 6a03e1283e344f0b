package triage

import (
	"fmt"
	"strings"

	"github.com/sandevgo/medhelp/internal/core"
)

const retrievalSuffix = " medical symptoms diagnosis"

const systemPrompt = `You are a medical triage assistant. You ask the patient short, focused questions
and keep a ranked list of possible conditions. You never claim certainty and you always
advise urgent care when the history contains emergency warning signs.

Reply with a single JSON object and nothing else, using exactly these keys:
- "candidates": list of {"condition": string, "probability": number between 0 and 1}
- "next_question": the next question for the patient, or "` + core.CompletionSentinel + `" when you are done
- "top_recommendation": practical advice for the most likely condition (required when done)
- "evidence_used": true if the reference material below informed your answer
- "evidence_reasoning": one sentence on how the reference material was used, or why it was not`

// buildUserContent renders the evidence block, the dialogue so far and the
// turn instruction. asked is the number of questions already put to the patient.
func buildUserContent(evidence []core.ScoredRecord, history string, asked, maxQuestions int) string {
	var sb strings.Builder

	sb.WriteString("REFERENCE MATERIAL:\n")
	if len(evidence) == 0 {
		sb.WriteString("No relevant reference material was found.\n")
	}
	for i, r := range evidence {
		fmt.Fprintf(&sb, "[%d] %s (%s)\n%s\n\n", i+1, r.Title, r.SourceURL, strings.TrimSpace(r.Text))
	}

	sb.WriteString("\nCONVERSATION:\n")
	sb.WriteString(history)

	sb.WriteString("\n\nINSTRUCTION:\n")
	if asked >= maxQuestions {
		fmt.Fprintf(&sb, "You have already asked %d questions. You MUST finish now: set \"next_question\" to %q and give your top recommendation.",
			asked, core.CompletionSentinel)
	} else {
		fmt.Fprintf(&sb, "Ask question %d of at most %d. You may finish early with %q if the picture is already clear.",
			asked+1, maxQuestions, core.CompletionSentinel)
	}
	return sb.String()
}

// flattenHistory writes one line per message. Final reports are skipped and
// the current message closes the transcript.
func flattenHistory(prior []core.ConversationMessage, current string) string {
	var sb strings.Builder
	for _, m := range prior {
		if m.Final {
			continue
		}
		switch m.Sender {
		case core.SenderUser:
			sb.WriteString("Patient: ")
		case core.SenderBot:
			sb.WriteString("Assistant: ")
		default:
			continue
		}
		sb.WriteString(oneLine(m.Text))
		sb.WriteByte('\n')
	}
	sb.WriteString("Patient: ")
	sb.WriteString(oneLine(current))
	return sb.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
