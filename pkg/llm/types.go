package llm

import (
	"context"
	"time"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is a single completion request. The system prompt and reply schema come from the
// client's Config.
type Prompt struct {
	Messages []Message
}

// Status tells whether a completion produced usable text.
type Status string

const (
	StatusOK        Status = "ok"
	StatusEmpty     Status = "empty"
	StatusTruncated Status = "truncated"
	StatusFiltered  Status = "filtered"
)

// Completion is the outcome of a Complete call.
type Completion struct {
	Status  Status
	Text    string
	Model   string
	Latency time.Duration
}

// Client defines the interface for LLM interactions
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (*Completion, error)
	GetModelInfo() ModelInfo
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name                string
	Provider            string
	MaxCompletionTokens int
	ContextLimit        int
}

// Config holds configuration for LLM clients
type Config struct {
	Provider            string
	Model               string
	APIKey              string
	BaseURL             string
	MaxCompletionTokens int
	Temperature         float32
	SystemPrompt        string
	// ResponseSchema is a JSON schema string for OpenAI and a *genai.Schema for Gemini.
	ResponseSchema interface{}
}
