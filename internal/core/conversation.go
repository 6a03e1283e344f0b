package core

import "time"

// CompletionSentinel is the next_question value that ends a triage dialogue.
const CompletionSentinel = "DIAGNOSIS_COMPLETE"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Conversation struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Messages  []ConversationMessage `json:"messages"`
}

type ConversationMessage struct {
	Sender           Sender    `json:"sender"`
	Text             string    `json:"text"`
	Timestamp        time.Time `json:"timestamp"`
	RetrievedSources []string  `json:"retrieved_sources,omitempty"`
	// Final marks the closing report of a completed dialogue.
	Final bool `json:"final,omitempty"`
}

// BotTurns counts bot-authored messages.
func (c *Conversation) BotTurns() int {
	n := 0
	for _, m := range c.Messages {
		if m.Sender == SenderBot {
			n++
		}
	}
	return n
}

// Complete reports whether the dialogue already produced its final report.
func (c *Conversation) Complete() bool {
	for _, m := range c.Messages {
		if m.Sender == SenderBot && m.Final {
			return true
		}
	}
	return false
}

type Candidate struct {
	Condition   string  `json:"condition"`
	Probability float64 `json:"probability"`
}

// Verdict is the structured output of one hypothesis-generation call.
type Verdict struct {
	Candidates        []Candidate    `json:"candidates"`
	NextQuestion      string         `json:"next_question"`
	TopRecommendation string         `json:"top_recommendation,omitempty"`
	EvidenceUsed      bool           `json:"evidence_used"`
	EvidenceReasoning string         `json:"evidence_reasoning,omitempty"`
	Retrieved         []ScoredRecord `json:"_retrieved,omitempty"`
}

func (v Verdict) IsComplete() bool {
	return v.NextQuestion == CompletionSentinel
}
