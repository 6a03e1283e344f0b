package core

const (
	AppName          = "MedHelp"
	AppUserAgent     = "MedHelp-Triage/0.1"
	AppRepositoryURL = "https://github.com/sandevgo/medhelp"
	AppVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`
}

// ChatOptions tunes a single completion request.
// Temperature is sent only when positive.
type ChatOptions struct {
	JSONMode    bool
	Temperature float64
	MaxTokens   int
}
