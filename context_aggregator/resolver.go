package context_aggregator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/opsight-dev/opsight/context_aggregator/models"
)

// Resolver turns user supplied paths into absolute ones. The lookups are fields so
// tests can pin the home and working directories.
type Resolver struct {
	HomeDir func() (string, error)
	Getwd   func() (string, error)
	Stat    func(name string) (os.FileInfo, error)
}

// NewResolver returns a resolver backed by the process environment.
func NewResolver() *Resolver {
	return &Resolver{
		HomeDir: os.UserHomeDir,
		Getwd:   os.Getwd,
		Stat:    os.Stat,
	}
}

// Resolve normalizes requested against base. Home expansion comes first, absolute paths
// are used as given, and relative paths try the base directory and then the working
// directory. When nothing exists the base-relative candidate is returned with
// Existed=false; Resolve never fails.
func (r *Resolver) Resolve(requested string, base string) models.ResolvedPath {
	if expanded, ok := r.expandHome(requested); ok {
		return r.describe(requested, expanded, models.HomeExpanded)
	}

	if filepath.IsAbs(requested) {
		return r.describe(requested, requested, models.AsGiven)
	}

	baseCandidate := filepath.Join(r.absolute(base), requested)
	if r.exists(baseCandidate) {
		return r.describe(requested, baseCandidate, models.RelativeToBase)
	}

	if cwd, err := r.Getwd(); err == nil {
		cwdCandidate := filepath.Join(cwd, requested)
		if r.exists(cwdCandidate) {
			return r.describe(requested, cwdCandidate, models.RelativeToCwd)
		}
	}

	return r.describe(requested, baseCandidate, models.RelativeToBase)
}

// ResolveBase returns the absolute base directory. Empty, missing or non-directory
// bases fall back to the working directory.
func (r *Resolver) ResolveBase(base string) string {
	if base == "" {
		return r.absolute("")
	}
	if expanded, ok := r.expandHome(base); ok {
		base = expanded
	}
	abs := r.absolute(base)
	info, err := r.Stat(abs)
	if err != nil || !info.IsDir() {
		return r.absolute("")
	}
	return abs
}

// expandHome replaces a leading "~" or "~/" with the home directory.
// "~user" forms are left alone and treated as relative names.
func (r *Resolver) expandHome(path string) (string, bool) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return "", false
	}
	home, err := r.HomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, path[1:]), true
}

// absolute anchors path at the working directory. An unknown working directory
// leaves the path cleaned but relative.
func (r *Resolver) absolute(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	cwd, err := r.Getwd()
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}

func (r *Resolver) exists(path string) bool {
	_, err := r.Stat(path)
	return err == nil
}

func (r *Resolver) describe(requested string, resolved string, strategy models.ResolutionStrategy) models.ResolvedPath {
	result := models.ResolvedPath{
		Requested:        requested,
		ResolvedAbsolute: filepath.Clean(resolved),
		Strategy:         strategy,
	}
	if info, err := r.Stat(result.ResolvedAbsolute); err == nil {
		result.Existed = true
		result.IsDir = info.IsDir()
	}
	return result
}
