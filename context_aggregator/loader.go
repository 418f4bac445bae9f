package context_aggregator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/opsight-dev/opsight/context_aggregator/models"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// binarySniffLength is how much of a file is checked for NUL bytes.
const binarySniffLength = 8000

// Loader reads candidate files under per-file byte and line budgets.
type Loader struct {
	MaxFileSizeBytes int64
	MaxLines         int
}

// NewLoader creates a loader with the given budgets.
func NewLoader(maxFileSizeBytes int64, maxLines int) *Loader {
	return &Loader{MaxFileSizeBytes: maxFileSizeBytes, MaxLines: maxLines}
}

// Load reads one candidate. Exactly one of the results is meaningful: a non-nil skip
// entry means the file was left out and the excerpt is zero. Load never returns an
// error; every failure is reported as a skip.
func (l *Loader) Load(candidate models.FileCandidate) (models.FileExcerpt, *models.SkippedEntry) {
	skip := func(reason models.SkipReason, detail string) (models.FileExcerpt, *models.SkippedEntry) {
		return models.FileExcerpt{}, &models.SkippedEntry{Path: candidate.RelativePath, Reason: reason, Detail: detail}
	}

	info, err := os.Stat(candidate.AbsolutePath)
	if err != nil {
		return skip(models.Unreadable, err.Error())
	}
	if !info.Mode().IsRegular() {
		return skip(models.Unreadable, "not a regular file")
	}
	if info.Size() > l.MaxFileSizeBytes {
		return skip(models.SizeBudgetExceeded, fmt.Sprintf("%d bytes exceeds the %d byte file limit", info.Size(), l.MaxFileSizeBytes))
	}

	file, err := os.Open(candidate.AbsolutePath)
	if err != nil {
		return skip(models.Unreadable, err.Error())
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, l.MaxFileSizeBytes+1))
	if err != nil {
		return skip(models.Unreadable, err.Error())
	}
	if int64(len(raw)) > l.MaxFileSizeBytes {
		return skip(models.SizeBudgetExceeded, "file grew past the file limit while reading")
	}

	text, ok := decodeText(raw)
	if !ok {
		return skip(models.BinarySuspected, "content is not valid text")
	}

	return l.excerpt(candidate.RelativePath, text), nil
}

// decodeText honours a UTF-8 or UTF-16 byte order mark and otherwise expects UTF-8.
// NUL bytes near the start of the decoded text mark the file as binary.
func decodeText(raw []byte) (string, bool) {
	decoder := unicode.BOMOverride(encoding.Nop.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(decoded) {
		return "", false
	}
	sniff := decoded
	if len(sniff) > binarySniffLength {
		sniff = sniff[:binarySniffLength]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return "", false
	}
	return string(decoded), true
}

// excerpt keeps whole lines while both the line and byte budgets allow.
func (l *Loader) excerpt(relativePath string, text string) models.FileExcerpt {
	total := countLines(text)

	var builder strings.Builder
	included := 0
	rest := text
	for rest != "" && included < l.MaxLines {
		line := rest
		if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
			line = rest[:idx+1]
		}
		if int64(builder.Len()+len(line)) > l.MaxFileSizeBytes {
			break
		}
		builder.WriteString(line)
		rest = rest[len(line):]
		included++
	}

	content := builder.String()
	return models.FileExcerpt{
		RelativePath:      relativePath,
		Content:           content,
		Truncated:         included < total,
		LinesIncluded:     included,
		TotalLines:        total,
		SizeBytesIncluded: len(content),
	}
}

// countLines counts newline-terminated lines plus a trailing unterminated one.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	count := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		count++
	}
	return count
}
