package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// MarkdownRenderer highlights a streamed markdown answer line by line. It tracks
// fenced code blocks across chunks so code is highlighted in its own language.
type MarkdownRenderer struct {
	out         io.Writer
	theme       string
	inCodeBlock bool
	language    string
}

// NewMarkdownRenderer creates a renderer writing terminal colours to out.
func NewMarkdownRenderer(out io.Writer, theme string) *MarkdownRenderer {
	return &MarkdownRenderer{out: out, theme: theme}
}

// DetectLanguageFromCodeBlock returns the language tag of a fence line such as "```go".
// It returns an empty string for anything else.
func DetectLanguageFromCodeBlock(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(trimmed, "```"))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// RenderWithContext renders content, stopping early when ctx is cancelled.
func (r *MarkdownRenderer) RenderWithContext(ctx context.Context, content string) error {
	lines := strings.SplitAfter(content, "\n")

	for _, line := range lines {
		if line == "" {
			continue
		}
		select {
		case <-ctx.Done():
			fmt.Fprintf(r.out, "\n\n🔄 Output interrupted...\n")
			return ctx.Err()
		default:
		}

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if r.inCodeBlock {
				r.inCodeBlock = false
				r.language = ""
			} else {
				r.inCodeBlock = true
				r.language = DetectLanguageFromCodeBlock(line)
			}
			if _, err := io.WriteString(r.out, line); err != nil {
				return err
			}
			continue
		}

		switch {
		case r.inCodeBlock && strings.HasPrefix(line, "+"):
			fmt.Fprint(r.out, "\x1b[92m"+strings.TrimSuffix(line, "\n")+"\x1b[0m\n")
		case r.inCodeBlock && strings.HasPrefix(line, "-"):
			fmt.Fprint(r.out, "\x1b[91m"+strings.TrimSuffix(line, "\n")+"\x1b[0m\n")
		default:
			language := "markdown"
			if r.inCodeBlock && r.language != "" {
				language = r.language
			}
			// Use a buffer to capture the highlight output
			var buf bytes.Buffer
			if err := quick.Highlight(&buf, line, language, "terminal256", r.theme); err != nil {
				return err
			}
			if _, err := r.out.Write(buf.Bytes()); err != nil {
				return err
			}
		}
	}

	return nil
}
