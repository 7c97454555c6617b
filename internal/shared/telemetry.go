// Package shared holds the small types and error classes passed between the
// completion clients, the assistant, the session host and telemetry.
package shared

import "time"

// TokenUsage is what the completion provider reports for one call. Model is
// the provider's model name, empty when the call never reached it.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta describes one assistant turn for telemetry. AgentName is the
// dialogue phase that answered ("nutritionist", "trainer", "consultant");
// Latency covers the completion call including decoding.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}
