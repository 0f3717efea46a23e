package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client              *openai.Client
	model               string
	maxCompletionTokens int
	temperature         float32
	systemPrompt        string
	responseSchema      string
}

func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = openai.GPT4o
	}

	schema, _ := config.ResponseSchema.(string)

	return &OpenAIClient{
		client:              openai.NewClientWithConfig(clientConfig),
		model:               model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
		systemPrompt:        config.SystemPrompt,
		responseSchema:      schema,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (*Completion, error) {
	openAIMessages := make([]openai.ChatCompletionMessage, 0, len(prompt.Messages)+1)
	if c.systemPrompt != "" {
		openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.systemPrompt,
		})
	}
	for _, msg := range prompt.Messages {
		if msg.Content == "" {
			continue
		}
		openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{
			Role:    mapRole(msg.Role),
			Content: msg.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            openAIMessages,
		MaxCompletionTokens: c.maxCompletionTokens,
		Temperature:         c.temperature,
	}
	if c.responseSchema != "" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        "student-assistant-plan",
				Description: "A query plan or a chat reply for the student assistant",
				Schema:      json.RawMessage(c.responseSchema),
				Strict:      false,
			},
		}
	} else {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("OpenAIClient -> Complete -> err: %v", err)
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	completion := &Completion{
		Status:  StatusOK,
		Model:   resp.Model,
		Latency: time.Since(start),
	}
	if len(resp.Choices) == 0 {
		completion.Status = StatusEmpty
		return completion, nil
	}

	choice := resp.Choices[0]
	completion.Text = strings.TrimSpace(choice.Message.Content)
	switch {
	case choice.FinishReason == openai.FinishReasonLength:
		completion.Status = StatusTruncated
	case choice.FinishReason == openai.FinishReasonContentFilter:
		completion.Status = StatusFiltered
	case completion.Text == "":
		completion.Status = StatusEmpty
	}
	return completion, nil
}

func (c *OpenAIClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            ProviderOpenAI,
		MaxCompletionTokens: c.maxCompletionTokens,
		ContextLimit:        getModelContextLimit(c.model),
	}
}

// Helper functions
func mapRole(role string) string {
	switch strings.ToLower(role) {
	case "assistant":
		return openai.ChatMessageRoleAssistant
	case "system":
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}

func getModelContextLimit(model string) int {
	switch model {
	case openai.GPT4o, openai.GPT4oMini, openai.GPT4TurboPreview:
		return 128000
	case openai.GPT4:
		return 8192
	case openai.GPT3Dot5Turbo:
		return 4096
	default:
		return 4096
	}
}
