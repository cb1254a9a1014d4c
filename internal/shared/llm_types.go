package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// CallMeta holds operational metadata for one text-generation call, keyed by
// the feature that made it (trivia, pairing_query, chat).
type CallMeta struct {
	Operation string
	Usage     TokenUsage
	Latency   time.Duration
}
