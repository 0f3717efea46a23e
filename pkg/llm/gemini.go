package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client              *genai.Client
	model               string
	maxCompletionTokens int
	temperature         float32
	systemPrompt        string
	responseSchema      *genai.Schema
}

func NewGeminiClient(config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	schema, _ := config.ResponseSchema.(*genai.Schema)

	return &GeminiClient{
		client:              client,
		model:               model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
		systemPrompt:        config.SystemPrompt,
		responseSchema:      schema,
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, prompt Prompt) (*Completion, error) {
	if len(prompt.Messages) == 0 {
		return nil, fmt.Errorf("gemini prompt has no messages")
	}

	history := make([]*genai.Content, 0, len(prompt.Messages))
	for _, msg := range prompt.Messages[:len(prompt.Messages)-1] {
		if msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	last := prompt.Messages[len(prompt.Messages)-1]

	model := c.client.GenerativeModel(c.model)
	if c.maxCompletionTokens > 0 {
		model.SetMaxOutputTokens(int32(c.maxCompletionTokens))
	}
	model.SetTemperature(c.temperature)
	model.ResponseMIMEType = "application/json"
	if c.systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(c.systemPrompt)},
		}
	}
	model.ResponseSchema = c.responseSchema

	start := time.Now()
	session := model.StartChat()
	session.History = history
	result, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		log.Printf("GeminiClient -> Complete -> err: %v", err)
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	completion := &Completion{
		Status:  StatusOK,
		Model:   c.model,
		Latency: time.Since(start),
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		completion.Status = StatusEmpty
		return completion, nil
	}

	candidate := result.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	completion.Text = strings.TrimSpace(sb.String())

	switch {
	case candidate.FinishReason == genai.FinishReasonMaxTokens:
		completion.Status = StatusTruncated
	case candidate.FinishReason == genai.FinishReasonSafety:
		completion.Status = StatusFiltered
	case completion.Text == "":
		completion.Status = StatusEmpty
	}
	return completion, nil
}

// GetModelInfo returns information about the Gemini model.
func (c *GeminiClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            ProviderGemini,
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}

// Close releases the underlying SDK client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
