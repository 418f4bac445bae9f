package contracts

import (
	"context"

	"github.com/opsight-dev/opsight/providers/models"
)

// IChatAIProvider sends an assembled prompt to a downstream model and streams the answer.
type IChatAIProvider interface {
	ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse
}
