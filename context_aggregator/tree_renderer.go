package context_aggregator

import (
	"path/filepath"
	"strings"

	"github.com/opsight-dev/opsight/context_aggregator/models"
)

const treeIndent = "  "

// TreeFunc renders the directory structure covered by candidates.
type TreeFunc func(root models.ResolvedPath, candidates []models.FileCandidate) string

// RenderTree draws an indented tree of the candidates and their parent directories.
// Candidates are expected in walker order so each directory is opened once.
func RenderTree(root models.ResolvedPath, candidates []models.FileCandidate) string {
	var builder strings.Builder

	name := filepath.Base(root.ResolvedAbsolute)
	builder.WriteString(name)
	if !strings.HasSuffix(name, string(filepath.Separator)) {
		builder.WriteString("/")
	}
	builder.WriteString("\n")

	var open []string
	for _, candidate := range candidates {
		parts := strings.Split(candidate.RelativePath, "/")
		dirs := parts[:len(parts)-1]

		common := 0
		for common < len(open) && common < len(dirs) && open[common] == dirs[common] {
			common++
		}
		for depth := common; depth < len(dirs); depth++ {
			builder.WriteString(strings.Repeat(treeIndent, depth+1))
			builder.WriteString(dirs[depth])
			builder.WriteString("/\n")
		}
		open = append(open[:0], dirs...)

		builder.WriteString(strings.Repeat(treeIndent, len(dirs)+1))
		builder.WriteString(parts[len(parts)-1])
		builder.WriteString("\n")
	}

	return builder.String()
}
