package domain

import "errors"

// ChatMessage is the provider-agnostic chat message shape used by the use case
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest is a single chat-completion exchange with fixed sampling
// parameters.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// Provider failures that callers distinguish. Integrations wrap their own
// errors so that errors.Is matches these.
var (
	ErrProviderAuth      = errors.New("provider rejected credential")
	ErrProviderRateLimit = errors.New("provider rate limit exceeded")
)
