package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/opsight-dev/opsight/context_aggregator/models"
	"github.com/opsight-dev/opsight/token_management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func samplePayload() *models.Payload {
	excerpt := models.FileExcerpt{
		RelativePath:      "main.go",
		Content:           "package main\n",
		LinesIncluded:     1,
		TotalLines:        1,
		SizeBytesIncluded: 13,
	}
	payload := &models.Payload{
		Tree:     "project/\n  main.go\n",
		Excerpts: []models.FileExcerpt{excerpt},
		Manifest: models.AggregationManifest{
			RunID:           "run-1",
			Root:            models.ResolvedPath{Requested: ".", ResolvedAbsolute: "/work/project", Existed: true, IsDir: true, Strategy: models.RelativeToBase},
			Included:        []models.FileExcerpt{excerpt},
			Skipped:         []models.SkippedEntry{{Path: "logo.png", Reason: models.BinarySuspected, Detail: "known binary extension"}},
			CeilingBytes:    262144,
			ExcludePatterns: []string{".git", "node_modules"},
		},
	}
	text := payload.Text()
	payload.Manifest.TotalBytes = len(text)
	payload.Manifest.Digest = models.Digest(text)
	return payload
}

func TestWritePayload_Text(t *testing.T) {
	payload := samplePayload()
	var out bytes.Buffer

	require.NoError(t, writePayload(&out, payload, "text"))

	assert.Equal(t, payload.Text(), out.String())
}

func TestWritePayload_JSON(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, writePayload(&out, samplePayload(), "json"))

	var decoded models.Payload
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "main.go", decoded.Excerpts[0].RelativePath)
	assert.Equal(t, models.BinarySuspected, decoded.Manifest.Skipped[0].Reason)
	assert.Equal(t, models.RelativeToBase, decoded.Manifest.Root.Strategy)
}

func TestWritePayload_YAML(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, writePayload(&out, samplePayload(), "yaml"))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	manifest, ok := decoded["manifest"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-1", manifest["run_id"])
}

func TestWritePayload_UnknownFormat(t *testing.T) {
	err := writePayload(io.Discard, samplePayload(), "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestPrintManifestSummary(t *testing.T) {
	var out bytes.Buffer

	printManifestSummary(&out, samplePayload(), token_management.NewTokenManagerWithWriter(io.Discard))

	summary := out.String()
	assert.Contains(t, summary, "/work/project (RELATIVE_TO_BASE)")
	assert.Contains(t, summary, "Included:  1 files")
	assert.Contains(t, summary, "BINARY_SUSPECTED")
	assert.Contains(t, summary, "Excluded:  .git, node_modules")
	assert.Contains(t, summary, "skipped logo.png: BINARY_SUSPECTED (known binary extension)")
}

func TestTargetArg(t *testing.T) {
	assert.Equal(t, "", targetArg(nil))
	assert.Equal(t, "src", targetArg([]string{"src"}))
}
