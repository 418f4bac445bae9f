package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultExcludedDirs are directory names pruned from every traversal:
// version-control metadata, dependency caches, bytecode caches and virtual environments.
var DefaultExcludedDirs = []string{
	".git",
	".hg",
	".svn",
	"node_modules",
	"bower_components",
	"vendor",
	"__pycache__",
	".mypy_cache",
	".pytest_cache",
	".ruff_cache",
	"venv",
	".venv",
	"env",
	".tox",
	".idea",
	".vscode",
}

// vcsMetadataNames may also appear as plain files (git worktrees and submodules use a ".git" file).
var vcsMetadataNames = []string{".git", ".hg", ".svn"}

// ExclusionRules decides which directories are never descended into.
type ExclusionRules struct {
	patterns      []string
	includeHidden bool
}

// NewExclusionRules builds rules from the defaults plus any extra name patterns.
// Patterns use path.Match syntax and are compared case-insensitively against a single
// path segment. Hidden directories are excluded unless includeHidden is set.
func NewExclusionRules(extra []string, includeHidden bool) *ExclusionRules {
	rules := &ExclusionRules{includeHidden: includeHidden}
	rules.Add(DefaultExcludedDirs...)
	rules.Add(extra...)
	return rules
}

// Add appends name patterns, ignoring blanks and duplicates.
func (r *ExclusionRules) Add(patterns ...string) {
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.Trim(strings.TrimSpace(pattern), "/"))
		if pattern == "" || r.has(pattern) {
			continue
		}
		r.patterns = append(r.patterns, pattern)
	}
}

func (r *ExclusionRules) has(pattern string) bool {
	for _, existing := range r.patterns {
		if existing == pattern {
			return true
		}
	}
	return false
}

// Patterns returns the effective name patterns in insertion order.
func (r *ExclusionRules) Patterns() []string {
	return append([]string(nil), r.patterns...)
}

// IsExcludedDir reports whether a directory with the given base name is pruned.
func (r *ExclusionRules) IsExcludedDir(name string) bool {
	if !r.includeHidden && strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return r.matches(name)
}

// IsExcludedEntry reports whether a non-directory entry carries version-control metadata.
func (r *ExclusionRules) IsExcludedEntry(name string) bool {
	lower := strings.ToLower(name)
	for _, vcs := range vcsMetadataNames {
		if lower == vcs {
			return true
		}
	}
	return false
}

func (r *ExclusionRules) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range r.patterns {
		if pattern == lower {
			return true
		}
		if match, err := path.Match(pattern, lower); err == nil && match {
			return true
		}
	}
	return false
}

// GetIgnorePatterns reads directory-name patterns from an ignore file in root.
// A missing file yields no patterns. Only single-segment patterns are kept since
// exclusion works on directory names.
func GetIgnorePatterns(root string, fileName string) ([]string, error) {
	if fileName == "" {
		return []string{}, nil
	}

	ignorePath := filepath.Join(root, fileName)
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", fileName, err)
	}

	lines, err := readIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}

	var patterns []string
	for _, line := range lines {
		line = strings.Trim(line, "/")
		if line == "" || strings.Contains(line, "/") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// readIgnoreFile returns the non-empty, non-comment lines of an ignore file.
func readIgnoreFile(ignorePath string) ([]string, error) {
	content, err := os.ReadFile(ignorePath)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}
