package factory

import (
	"fmt"

	"cdc-educa-be/pkg/llm"
	"cdc-educa-be/pkg/llm/ollama"
	"cdc-educa-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, openAIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not configured")
		}
		return openai.NewOpenAIProvider(openAIKey, modelName, ""), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
