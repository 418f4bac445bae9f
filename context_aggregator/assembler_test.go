package context_aggregator

import (
	"context"
	"strings"
	"testing"

	"github.com/opsight-dev/opsight/context_aggregator/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assemblerRoot = "/work/project"

// fakeLoad serves excerpts from memory; paths listed in skips fail as UNREADABLE.
func fakeLoad(contents map[string]string, skips ...string) LoadFunc {
	return func(candidate models.FileCandidate) (models.FileExcerpt, *models.SkippedEntry) {
		for _, skipped := range skips {
			if skipped == candidate.RelativePath {
				return models.FileExcerpt{}, &models.SkippedEntry{Path: skipped, Reason: models.Unreadable, Detail: "permission denied"}
			}
		}
		content := contents[candidate.RelativePath]
		return models.FileExcerpt{
			RelativePath:      candidate.RelativePath,
			Content:           content,
			LinesIncluded:     countLines(content),
			TotalLines:        countLines(content),
			SizeBytesIncluded: len(content),
		}, nil
	}
}

func walkOf(paths ...string) *WalkResult {
	result := &WalkResult{}
	for _, path := range paths {
		result.Candidates = append(result.Candidates, models.FileCandidate{RelativePath: path})
	}
	return result
}

func sectionFor(path string, content string) int {
	return len(models.SectionText(models.FileExcerpt{RelativePath: path, Content: content}))
}

func TestAssemble_FitsEverything(t *testing.T) {
	contents := map[string]string{"a.txt": "alpha\n", "src/b.txt": "beta\n"}
	walk := walkOf("a.txt", "src/b.txt")

	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), walk, fakeLoad(contents), RenderTree, 1<<20)
	require.NoError(t, err)

	text := payload.Text()
	assert.Len(t, payload.Excerpts, 2)
	assert.False(t, payload.Manifest.Trimmed)
	assert.False(t, payload.Manifest.TreeOmitted)
	assert.Empty(t, payload.Manifest.Skipped)
	assert.Equal(t, payload.Excerpts, payload.Manifest.Included)
	assert.Equal(t, len(text), payload.Manifest.TotalBytes)
	assert.Equal(t, models.Digest(text), payload.Manifest.Digest)
	assert.True(t, strings.HasPrefix(text, "Directory Analysis: "+assemblerRoot+"\n"))
	assert.Contains(t, text, "project/\n  a.txt\n  src/\n    b.txt\n")
	assert.Contains(t, text, "FILE: src/b.txt\n")
	assert.Less(t, strings.Index(text, "FILE: a.txt"), strings.Index(text, "FILE: src/b.txt"))
}

func TestAssemble_TrimsWholeFilesAtCeiling(t *testing.T) {
	body := strings.Repeat("x", 99) + "\n"
	contents := map[string]string{"a.txt": body, "b.txt": body, "c.txt": body}
	walk := walkOf("a.txt", "b.txt", "c.txt")

	fullTree := RenderTree(rootPath(assemblerRoot), walk.Candidates)
	ceiling := len(models.HeaderText(assemblerRoot, 3)) + len(models.TreeBlockText(fullTree)) +
		sectionFor("a.txt", body) + sectionFor("b.txt", body) + sectionFor("c.txt", body) - 1

	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), walk, fakeLoad(contents), RenderTree, ceiling)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, excerptPaths(payload.Excerpts))
	assert.True(t, payload.Manifest.Trimmed)
	assert.LessOrEqual(t, payload.Manifest.TotalBytes, ceiling)
	require.Len(t, payload.Manifest.Skipped, 1)
	assert.Equal(t, "c.txt", payload.Manifest.Skipped[0].Path)
	assert.Equal(t, models.SizeBudgetExceeded, payload.Manifest.Skipped[0].Reason)
	assert.NotContains(t, payload.Tree, "c.txt")
	assert.NotContains(t, payload.Text(), "FILE: c.txt")
}

// Admission stops at the first file that does not fit, even if later ones would.
func TestAssemble_StopsAtFirstOversizedSection(t *testing.T) {
	small := "small\n"
	large := strings.Repeat("large line\n", 200)
	contents := map[string]string{"a.txt": small, "b.txt": large, "c.txt": small}
	walk := walkOf("a.txt", "b.txt", "c.txt")

	fullTree := RenderTree(rootPath(assemblerRoot), walk.Candidates)
	ceiling := len(models.HeaderText(assemblerRoot, 3)) + len(models.TreeBlockText(fullTree)) +
		sectionFor("a.txt", small) + sectionFor("c.txt", small) + 10

	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), walk, fakeLoad(contents), RenderTree, ceiling)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, excerptPaths(payload.Excerpts))
	assert.Equal(t, []string{"b.txt", "c.txt"}, skippedPaths(payload.Manifest.SkippedBy(models.SizeBudgetExceeded)))
	assert.True(t, payload.Manifest.Trimmed)
}

func TestAssemble_OmitsTreeThatExceedsCeiling(t *testing.T) {
	contents := map[string]string{"a.txt": "alpha\n"}
	hugeTree := func(models.ResolvedPath, []models.FileCandidate) string {
		return strings.Repeat("dir/\n", 1000)
	}
	ceiling := len(models.HeaderText(assemblerRoot, 1)) + sectionFor("a.txt", "alpha\n")

	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), walkOf("a.txt"), fakeLoad(contents), hugeTree, ceiling)
	require.NoError(t, err)

	assert.True(t, payload.Manifest.TreeOmitted)
	assert.True(t, payload.Manifest.Trimmed)
	assert.Empty(t, payload.Tree)
	assert.Equal(t, []string{"a.txt"}, excerptPaths(payload.Excerpts))
	assert.Equal(t, ceiling, payload.Manifest.TotalBytes)
	assert.NotContains(t, payload.Text(), "dir/")
}

// Walker entries come first, then loader entries, then ceiling entries.
func TestAssemble_SkipOrder(t *testing.T) {
	body := strings.Repeat("y", 200) + "\n"
	contents := map[string]string{"a.txt": body, "c.txt": body}
	walk := walkOf("a.txt", "b.txt", "c.txt")
	walk.Skipped = []models.SkippedEntry{{Path: "z.png", Reason: models.BinarySuspected}}

	fullTree := RenderTree(rootPath(assemblerRoot), []models.FileCandidate{{RelativePath: "a.txt"}, {RelativePath: "c.txt"}})
	ceiling := len(models.HeaderText(assemblerRoot, 2)) + len(models.TreeBlockText(fullTree)) + sectionFor("a.txt", body)

	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), walk, fakeLoad(contents, "b.txt"), RenderTree, ceiling)
	require.NoError(t, err)

	assert.Equal(t, []string{"z.png", "b.txt", "c.txt"}, skippedPaths(payload.Manifest.Skipped))
	assert.Equal(t, []models.SkipReason{models.BinarySuspected, models.Unreadable, models.SizeBudgetExceeded}, []models.SkipReason{
		payload.Manifest.Skipped[0].Reason,
		payload.Manifest.Skipped[1].Reason,
		payload.Manifest.Skipped[2].Reason,
	})
	assert.Equal(t, []string{"a.txt"}, excerptPaths(payload.Excerpts))
}

// Leaving the tree out on request is not trimming.
func TestAssemble_TreeDisabled(t *testing.T) {
	contents := map[string]string{"a.txt": "alpha\n"}

	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), walkOf("a.txt"), fakeLoad(contents), nil, 1<<20)
	require.NoError(t, err)

	assert.True(t, payload.Manifest.TreeOmitted)
	assert.False(t, payload.Manifest.Trimmed)
	assert.Empty(t, payload.Tree)
	assert.Equal(t, models.HeaderText(assemblerRoot, 1)+models.SectionText(payload.Excerpts[0]), payload.Text())
}

// The header counts included files, not loaded ones.
func TestAssemble_HeaderCountsIncludedFiles(t *testing.T) {
	body := strings.Repeat("z", 300) + "\n"
	contents := map[string]string{"a.txt": body, "b.txt": body}
	walk := walkOf("a.txt", "b.txt")
	fullTree := RenderTree(rootPath(assemblerRoot), walk.Candidates)
	ceiling := len(models.HeaderText(assemblerRoot, 2)) + len(models.TreeBlockText(fullTree)) + sectionFor("a.txt", body)

	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), walk, fakeLoad(contents), RenderTree, ceiling)
	require.NoError(t, err)

	assert.Len(t, payload.Excerpts, 1)
	assert.Contains(t, payload.Text(), "\nFiles analyzed: 1\n")
	assert.LessOrEqual(t, payload.Manifest.TotalBytes, ceiling)
}

func TestAssemble_EmptyWalk(t *testing.T) {
	payload, err := Assemble(context.Background(), rootPath(assemblerRoot), &WalkResult{}, fakeLoad(nil), RenderTree, 1<<20)
	require.NoError(t, err)

	assert.NotNil(t, payload.Excerpts)
	assert.Empty(t, payload.Excerpts)
	assert.Equal(t, "project/\n", payload.Tree)
	assert.False(t, payload.Manifest.Trimmed)
}

func TestAssemble_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload, err := Assemble(ctx, rootPath(assemblerRoot), walkOf("a.txt"), fakeLoad(map[string]string{"a.txt": "a"}), RenderTree, 1<<20)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, payload)
}

func excerptPaths(excerpts []models.FileExcerpt) []string {
	paths := make([]string, 0, len(excerpts))
	for _, excerpt := range excerpts {
		paths = append(paths, excerpt.RelativePath)
	}
	return paths
}

func skippedPaths(entries []models.SkippedEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths
}
