package context_aggregator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/opsight-dev/opsight/context_aggregator/models"
	"github.com/opsight-dev/opsight/utils"
	"go.uber.org/zap"
)

// rootRelativePath names the walk root in skip entries.
const rootRelativePath = "."

// WalkResult is the walker output: admitted candidates and skip entries, both in walk order.
type WalkResult struct {
	Candidates []models.FileCandidate
	Skipped    []models.SkippedEntry
}

// Walker enumerates candidate files below a root in a fixed order.
//
// The order is depth-first pre-order. Inside a directory, entries are sorted by name
// (byte-wise) and the directory's files are handled before its subdirectories.
type Walker struct {
	rules   *utils.ExclusionRules
	logger  *zap.Logger
	ignored []fs.FileInfo
}

// NewWalker creates a walker using the given exclusion rules.
func NewWalker(rules *utils.ExclusionRules, logger *zap.Logger) *Walker {
	if rules == nil {
		rules = utils.NewExclusionRules(nil, false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{rules: rules, logger: logger}
}

// IgnoreFiles leaves the given files out of every walk without a skip entry, e.g. the
// run log when it lives under the root. Paths that do not exist are dropped.
func (w *Walker) IgnoreFiles(paths ...string) *Walker {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil {
			w.ignored = append(w.ignored, info)
		}
	}
	return w
}

func (w *Walker) isIgnored(info fs.FileInfo) bool {
	for _, ignored := range w.ignored {
		if os.SameFile(ignored, info) {
			return true
		}
	}
	return false
}

type pendingDir struct {
	abs string
	rel string
}

type walkState struct {
	result     *WalkResult
	visited    map[string]struct{}
	extensions map[string]struct{}
	maxFiles   int
}

func (s *walkState) skip(path string, reason models.SkipReason, detail string, isDir bool) {
	s.result.Skipped = append(s.result.Skipped, models.SkippedEntry{
		Path:   path,
		Reason: reason,
		Detail: detail,
		IsDir:  isDir,
	})
}

func (s *walkState) full() bool {
	return len(s.result.Candidates) >= s.maxFiles
}

// Walk lists admissible files under root. A nil extensions set disables the extension
// filter. Once maxFiles candidates are admitted, remaining files and unvisited
// directories are recorded as FILE_COUNT_BUDGET_EXCEEDED. Per-entry failures become
// skip entries; only context cancellation returns an error.
func (w *Walker) Walk(ctx context.Context, root models.ResolvedPath, extensions map[string]struct{}, maxFiles int) (*WalkResult, error) {
	state := &walkState{
		result:     &WalkResult{},
		visited:    make(map[string]struct{}),
		extensions: extensions,
		maxFiles:   maxFiles,
	}

	rootReal, err := filepath.EvalSymlinks(root.ResolvedAbsolute)
	if err != nil {
		state.skip(rootRelativePath, models.Unreadable, err.Error(), true)
		return state.result, nil
	}
	state.visited[rootReal] = struct{}{}

	stack := []pendingDir{{abs: root.ResolvedAbsolute, rel: ""}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if state.full() {
			state.skip(displayPath(dir.rel), models.FileCountBudgetExceeded, "directory not visited", true)
			continue
		}

		subdirs := w.visitDir(dir, state)
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return state.result, nil
}

// visitDir handles the files of one directory and returns its subdirectories in order.
func (w *Walker) visitDir(dir pendingDir, state *walkState) []pendingDir {
	entries, err := os.ReadDir(dir.abs)
	if err != nil {
		w.logger.Debug("directory unreadable", zap.String("path", dir.abs), zap.Error(err))
		state.skip(displayPath(dir.rel), models.Unreadable, err.Error(), true)
		return nil
	}

	var subdirs []pendingDir
	for _, entry := range entries {
		name := entry.Name()
		abs := filepath.Join(dir.abs, name)
		rel := joinRelative(dir.rel, name)

		info, err := entryInfo(abs, entry)
		if err != nil {
			state.skip(rel, models.Unreadable, err.Error(), false)
			continue
		}

		if info.IsDir() {
			if next, ok := w.admitDir(abs, rel, name, state); ok {
				subdirs = append(subdirs, next)
			}
			continue
		}

		if !info.Mode().IsRegular() {
			state.skip(rel, models.Unreadable, "not a regular file", false)
			continue
		}

		if w.isIgnored(info) {
			w.logger.Debug("ignored own output file", zap.String("path", rel))
			continue
		}

		w.admitFile(abs, rel, name, info.Size(), state)
	}
	return subdirs
}

func (w *Walker) admitDir(abs string, rel string, name string, state *walkState) (pendingDir, bool) {
	if w.rules.IsExcludedDir(name) {
		w.logger.Debug("pruned excluded directory", zap.String("path", rel))
		return pendingDir{}, false
	}

	realPath, err := filepath.EvalSymlinks(abs)
	if err != nil {
		state.skip(rel, models.Unreadable, err.Error(), true)
		return pendingDir{}, false
	}
	if _, seen := state.visited[realPath]; seen {
		w.logger.Debug("skipped already visited directory", zap.String("path", rel), zap.String("real_path", realPath))
		state.skip(rel, models.ExcludedDir, "symbolic link to an already visited directory", true)
		return pendingDir{}, false
	}
	state.visited[realPath] = struct{}{}

	return pendingDir{abs: abs, rel: rel}, true
}

func (w *Walker) admitFile(abs string, rel string, name string, size int64, state *walkState) {
	if w.rules.IsExcludedEntry(name) {
		state.skip(rel, models.ExcludedDir, "version-control metadata file", false)
		return
	}

	ext := utils.FileExtension(name)
	if state.extensions != nil {
		if _, ok := state.extensions[ext]; !ok {
			state.skip(rel, models.ExtensionFiltered, "", false)
			return
		}
	}

	if utils.IsKnownBinaryExtension(ext) {
		state.skip(rel, models.BinarySuspected, "known binary extension", false)
		return
	}

	if state.full() {
		state.skip(rel, models.FileCountBudgetExceeded, "", false)
		return
	}

	state.result.Candidates = append(state.result.Candidates, models.FileCandidate{
		AbsolutePath: abs,
		RelativePath: rel,
		SizeBytes:    size,
		Extension:    ext,
	})
}

// entryInfo stats an entry, following symbolic links so linked files and
// directories are treated like their targets.
func entryInfo(abs string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(abs)
	}
	return entry.Info()
}

func joinRelative(parent string, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func displayPath(rel string) string {
	if rel == "" {
		return rootRelativePath
	}
	return rel
}
