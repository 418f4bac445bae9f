package providers

import (
	"fmt"
	"strings"

	"github.com/opsight-dev/opsight/providers/contracts"
	"github.com/opsight-dev/opsight/providers/ollama"
	"github.com/opsight-dev/opsight/providers/openai"
	contracts_token "github.com/opsight-dev/opsight/token_management/contracts"
)

// AIProviderConfig configures the downstream chat provider.
type AIProviderConfig struct {
	Provider    string  `mapstructure:"provider"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	ApiKey      string  `mapstructure:"api_key"`
}

// ChatProviderFactory builds the provider named in config.
func ChatProviderFactory(config *AIProviderConfig, tokenManagement contracts_token.ITokenManagement) (contracts.IChatAIProvider, error) {
	switch strings.ToLower(config.Provider) {
	case "ollama":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			Temperature:     config.Temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
		}), nil
	case "openai":
		return openai.NewOpenAIChatProvider(&openai.OpenAIConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			Temperature:     config.Temperature,
			MaxTokens:       config.MaxTokens,
			ApiKey:          config.ApiKey,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, fmt.Errorf("provider '%s' is not supported", config.Provider)
	}
}

// BuildPrompt places the aggregated directory context ahead of the user's question.
func BuildPrompt(context string, question string) string {
	if context == "" {
		return question
	}
	return fmt.Sprintf("%s\n\nUser question: %s", strings.TrimRight(context, "\n"), question)
}

// AnalysisSystemPrompt frames the directory payload for the downstream model.
const AnalysisSystemPrompt = `You are a senior engineer reviewing a local code directory.
The user message starts with the directory structure and the contents of selected files;
files may be truncated, in which case a note says how many lines were omitted.
Answer the question at the end using only that material and cite file paths when you refer to code.`
