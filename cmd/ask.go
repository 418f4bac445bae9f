package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/opsight-dev/opsight/constants/lipgloss"
	"github.com/opsight-dev/opsight/providers"
	"github.com/opsight-dev/opsight/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultQuestion = "Analyze the code in this directory. What does this code do? What are the main components, functions, and how do they work together?"

// askCmd: opsight ask [directory] -q "question"
var askCmd = &cobra.Command{
	Use:   "ask [directory]",
	Short: "Send the aggregated directory with a question to the configured AI provider.",
	Long: `The 'ask' subcommand aggregates the directory exactly like 'analyze' and sends the
payload together with your question to the configured provider (ollama or an
OpenAI-compatible endpoint). The streamed answer is rendered with syntax highlighting.
Without --question you are prompted; an empty answer uses a general analysis question.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		return handleAskCommand(cmd, targetArg(args), question)
	},
}

func init() {
	askCmd.Flags().StringP("question", "q", "", "Question to ask about the directory")
	rootCmd.AddCommand(askCmd)
}

func handleAskCommand(cmd *cobra.Command, target string, question string) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}
	defer rootDependencies.Logger.Sync()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if strings.TrimSpace(question) == "" {
		reader := bufio.NewReader(cmd.InOrStdin())
		question, err = utils.InputPromptWithContext(ctx, reader, cmd.ErrOrStderr(), "Question")
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Yellow.Render("🔄 Exiting..."))
				return nil
			}
			return err
		}
		if question == "" {
			question = defaultQuestion
		}
	}

	payload, err := aggregate(ctx, cmd, rootDependencies, target)
	if err != nil {
		return err
	}
	if len(payload.Excerpts) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Yellow.Render(fmt.Sprintf("No suitable files found in %s for analysis.", payload.Manifest.Root.ResolvedAbsolute)))
	}

	providerConfig := rootDependencies.Config.AIProviderConfig
	chatProvider, err := providers.ChatProviderFactory(providerConfig, rootDependencies.TokenManagement)
	if err != nil {
		return err
	}

	renderer := utils.NewMarkdownRenderer(cmd.OutOrStdout(), rootDependencies.Config.Theme)
	userInput := providers.BuildPrompt(payload.Text(), question)

	for response := range chatProvider.ChatCompletionRequest(ctx, userInput, providers.AnalysisSystemPrompt) {
		if response.Err != nil {
			return response.Err
		}
		if response.Done {
			break
		}
		if err := renderer.RenderWithContext(ctx, response.Content); err != nil {
			if errors.Is(err, context.Canceled) {
				return reportedError{err}
			}
			return fmt.Errorf("error rendering markdown: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout())
	total, input, output := rootDependencies.TokenManagement.GetCurrentTokenUsage()
	rootDependencies.Logger.Info("answer received",
		zap.String("run_id", payload.Manifest.RunID),
		zap.String("provider", providerConfig.Provider),
		zap.String("model", providerConfig.Model),
		zap.Int("estimated_input_tokens", rootDependencies.TokenManagement.EstimateTokens(userInput)),
		zap.Int("input_tokens", input),
		zap.Int("output_tokens", output),
		zap.Int("total_tokens", total))
	rootDependencies.TokenManagement.DisplayTokens(providerConfig.Provider, providerConfig.Model)
	if _, err := os.Stat(rootDependencies.LogPath); err == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Gray.Render("run log: "+rootDependencies.LogPath))
	}
	return nil
}
