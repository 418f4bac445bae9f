package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opsight-dev/opsight/providers/contracts"
	"github.com/opsight-dev/opsight/providers/models"
	contracts_token "github.com/opsight-dev/opsight/token_management/contracts"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig implements the chat provider interface for OpenAI-compatible gateways.
type OpenAIConfig struct {
	BaseURL         string
	Model           string
	Temperature     float32
	MaxTokens       int
	ApiKey          string
	TokenManagement contracts_token.ITokenManagement
	client          *goopenai.Client
}

// NewOpenAIChatProvider initializes a new OpenAI-compatible provider.
func NewOpenAIChatProvider(config *OpenAIConfig) contracts.IChatAIProvider {
	clientConfig := goopenai.DefaultConfig(config.ApiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}
	return &OpenAIConfig{
		BaseURL:         clientConfig.BaseURL,
		Model:           config.Model,
		Temperature:     config.Temperature,
		MaxTokens:       config.MaxTokens,
		ApiKey:          config.ApiKey,
		TokenManagement: config.TokenManagement,
		client:          goopenai.NewClientWithConfig(clientConfig),
	}
}

func (openAIProvider *OpenAIConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse)

	go func() {
		defer close(responseChan)

		stream, err := openAIProvider.client.CreateChatCompletionStream(ctx, goopenai.ChatCompletionRequest{
			Model: openAIProvider.Model,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleSystem, Content: prompt},
				{Role: goopenai.ChatMessageRoleUser, Content: userInput},
			},
			MaxTokens:     openAIProvider.MaxTokens,
			Temperature:   openAIProvider.Temperature,
			Stream:        true,
			StreamOptions: &goopenai.StreamOptions{IncludeUsage: true},
		})
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error sending request: %w", err)}
			return
		}
		defer stream.Close()

		var markdownBuffer strings.Builder
		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("error reading stream: %w", err)}
				return
			}

			if response.Usage != nil && openAIProvider.TokenManagement != nil {
				openAIProvider.TokenManagement.UsedTokens(response.Usage.PromptTokens, response.Usage.CompletionTokens)
			}

			for _, choice := range response.Choices {
				markdownBuffer.WriteString(choice.Delta.Content)
				if strings.Contains(choice.Delta.Content, "\n") {
					responseChan <- models.StreamResponse{Content: markdownBuffer.String()}
					markdownBuffer.Reset()
				}
			}
		}

		if markdownBuffer.Len() > 0 {
			responseChan <- models.StreamResponse{Content: markdownBuffer.String()}
		}
		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}
