package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExclusionRules_Defaults(t *testing.T) {
	rules := NewExclusionRules(nil, false)

	for _, name := range []string{".git", "node_modules", "__pycache__", "venv", ".venv", "vendor", "Node_Modules"} {
		assert.True(t, rules.IsExcludedDir(name), name)
	}
	assert.True(t, rules.IsExcludedDir(".cache"), "hidden directories are excluded by default")
	assert.False(t, rules.IsExcludedDir("src"))
	assert.False(t, rules.IsExcludedDir("environment"))
}

func TestExclusionRules_IncludeHiddenAndExtraPatterns(t *testing.T) {
	rules := NewExclusionRules([]string{"build-*", " dist/ ", ""}, true)

	assert.False(t, rules.IsExcludedDir(".cache"))
	assert.True(t, rules.IsExcludedDir(".git"))
	assert.True(t, rules.IsExcludedDir("build-linux"))
	assert.True(t, rules.IsExcludedDir("dist"))
	assert.Contains(t, rules.Patterns(), "dist")
	assert.NotContains(t, rules.Patterns(), "")
}

func TestExclusionRules_AddSkipsDuplicates(t *testing.T) {
	rules := NewExclusionRules(nil, false)
	before := len(rules.Patterns())

	rules.Add("node_modules", "NODE_MODULES", "out")

	assert.Len(t, rules.Patterns(), before+1)
}

func TestExclusionRules_Entries(t *testing.T) {
	rules := NewExclusionRules(nil, false)

	assert.True(t, rules.IsExcludedEntry(".git"))
	assert.False(t, rules.IsExcludedEntry(".gitignore"))
	assert.False(t, rules.IsExcludedEntry(".opsightignore"))
}

func TestGetIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	content := "# comment\n\ngenerated/\n  tmp  \nnested/path\n/out\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".opsightignore"), []byte(content), 0o644))

	patterns, err := GetIgnorePatterns(root, ".opsightignore")

	require.NoError(t, err)
	assert.Equal(t, []string{"generated", "tmp", "out"}, patterns)
}

func TestGetIgnorePatterns_MissingFile(t *testing.T) {
	patterns, err := GetIgnorePatterns(t.TempDir(), ".opsightignore")
	require.NoError(t, err)
	assert.Empty(t, patterns)

	patterns, err = GetIgnorePatterns(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, patterns)
}
