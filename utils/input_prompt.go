package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opsight-dev/opsight/constants/lipgloss"
)

// InputPromptWithContext prints label, reads one line from reader and returns it trimmed.
// It returns ctx.Err() when the context is cancelled first and an empty string at EOF.
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader, out io.Writer, label string) (string, error) {
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		fmt.Fprint(out, lipgloss.BlueSky.Render(label+" > "))

		userInput, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && userInput != "") {
			if errors.Is(err, io.EOF) {
				errChan <- nil
			} else {
				errChan <- fmt.Errorf("error reading input: %w", err)
			}
			return
		}
		inputChan <- strings.TrimSpace(userInput)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case input := <-inputChan:
		return input, nil
	}
}
