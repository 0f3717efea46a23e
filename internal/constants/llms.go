package constants

import "github.com/hq040506/DL-student-assistant/pkg/llm"

const (
	OpenAI = llm.ProviderOpenAI
	Gemini = llm.ProviderGemini
)

const (
	OpenAIModel = "gpt-4o-mini"
	GeminiModel = "gemini-2.0-flash"
)

// GetSystemPrompt returns the system prompt for a provider
func GetSystemPrompt(provider string) string {
	switch provider {
	case OpenAI:
		return AssistantSystemPrompt + openAIFormatNote
	case Gemini:
		return AssistantSystemPrompt
	default:
		return AssistantSystemPrompt
	}
}

// GetLLMResponseSchema returns the reply schema in the form the provider's client expects
func GetLLMResponseSchema(provider string) interface{} {
	switch provider {
	case OpenAI:
		return PlanReplySchema
	case Gemini:
		return GeminiPlanReplySchema
	default:
		return nil
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	if provider == Gemini {
		return GeminiModel
	}
	return OpenAIModel
}
