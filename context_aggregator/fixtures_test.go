package context_aggregator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opsight-dev/opsight/context_aggregator/models"
	"github.com/stretchr/testify/require"
)

// writeFiles creates every file in files (slash separated, relative to root).
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func rootPath(dir string) models.ResolvedPath {
	return models.ResolvedPath{
		Requested:        dir,
		ResolvedAbsolute: dir,
		Existed:          true,
		IsDir:            true,
		Strategy:         models.AsGiven,
	}
}

func relativePaths(candidates []models.FileCandidate) []string {
	paths := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		paths = append(paths, candidate.RelativePath)
	}
	return paths
}

func numberedLines(n int) string {
	var builder strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&builder, "line %d\n", i)
	}
	return builder.String()
}
