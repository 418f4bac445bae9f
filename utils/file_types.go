package utils

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// knownBinaryExtensions are never worth reading as text.
var knownBinaryExtensions = map[string]struct{}{
	".pyc": {}, ".pyo": {}, ".exe": {}, ".bin": {}, ".dll": {}, ".so": {}, ".dylib": {},
	".o": {}, ".a": {}, ".class": {}, ".jar": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".ico": {}, ".webp": {},
	".pdf": {}, ".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".bz2": {}, ".xz": {}, ".7z": {},
	".mp3": {}, ".wav": {}, ".flac": {}, ".ogg": {}, ".mp4": {}, ".mkv": {}, ".avi": {}, ".mov": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {},
}

// IsKnownBinaryExtension reports whether ext (lowercase, with dot) names a binary format.
func IsKnownBinaryExtension(ext string) bool {
	_, ok := knownBinaryExtensions[ext]
	return ok
}

// FileExtension returns the lowercased extension of name including the dot.
func FileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// NormalizeExtensions lowercases extensions and adds the leading dot, so "PY", "py"
// and ".py" all select the same files. A nil result means no filter.
func NormalizeExtensions(extensions []string) map[string]struct{} {
	cleaned := lo.FilterMap(extensions, func(ext string, _ int) (string, bool) {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return "", false
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext, true
	})
	if len(cleaned) == 0 {
		return nil
	}
	return lo.Associate(lo.Uniq(cleaned), func(ext string) (string, struct{}) {
		return ext, struct{}{}
	})
}
