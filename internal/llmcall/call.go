// Package llmcall records every LLM API call made during a run for traceability.
// Calls are written as JSON lines so a run can be audited after the fact.
package llmcall

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/barback/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Position of the menu entry in the input, -1 when not applicable.
	EntryIndex int `json:"entry_index"`

	// Prompt traceability
	PromptKey     string `json:"prompt_key"`
	PromptHash    string `json:"prompt_hash,omitempty"` // SHA256 of the system prompt text
	UserPromptKey string `json:"user_prompt_key,omitempty"`
	InputHash     string `json:"input_hash,omitempty"` // SHA256 of the rendered user message

	// Model info
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	RequestID string `json:"request_id,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	Response string `json:"response"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	EntryIndex    int
	PromptKey     string
	PromptText    string // hashed, not stored
	UserPromptKey string
	UserText      string // hashed, not stored
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		EntryIndex:   opts.EntryIndex,
		PromptKey:    opts.PromptKey,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		RequestID:    result.RequestID,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Success:      result.Success,
	}
	if opts.PromptText != "" {
		call.PromptHash = HashText(opts.PromptText)
	}
	call.UserPromptKey = opts.UserPromptKey
	if opts.UserText != "" {
		call.InputHash = HashText(opts.UserText)
	}
	if !result.Success {
		call.Error = result.ErrorMessage
	}
	return call
}

// HashText returns a SHA256 hash of the text for change detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
