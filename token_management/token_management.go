package token_management

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/opsight-dev/opsight/constants/lipgloss"
	"github.com/opsight-dev/opsight/token_management/contracts"
)

// bytesPerToken is the usual rule of thumb for English text and source code.
const bytesPerToken = 4

// TokenManager implementation
type tokenManager struct {
	usedToken       int
	usedInputToken  int
	usedOutputToken int
	out             io.Writer
}

// NewTokenManagerWithWriter creates a token manager that reports to out.
func NewTokenManagerWithWriter(out io.Writer) contracts.ITokenManagement {
	return &tokenManager{out: out}
}

// UsedTokens accumulates the token count for the session.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

// EstimateTokens approximates how many tokens text costs a downstream model.
func (tm *tokenManager) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + bytesPerToken - 1) / bytesPerToken
}

func (tm *tokenManager) DisplayTokens(chatProviderName string, chatModel string) {
	tokenInfo := fmt.Sprintf("Token Used: %s (Input: %s, Output: %s) - Provider: %s - Chat Model: %s",
		humanize.Comma(int64(tm.usedToken)),
		humanize.Comma(int64(tm.usedInputToken)),
		humanize.Comma(int64(tm.usedOutputToken)),
		chatProviderName,
		chatModel)

	tokenBox := lipgloss.BoxStyle.Render(tokenInfo)
	fmt.Fprintln(tm.out, tokenBox)
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}
