package models

// ResolutionStrategy names the rule that produced a ResolvedPath.
type ResolutionStrategy string

const (
	AsGiven        ResolutionStrategy = "AS_GIVEN"
	RelativeToBase ResolutionStrategy = "RELATIVE_TO_BASE"
	RelativeToCwd  ResolutionStrategy = "RELATIVE_TO_CWD"
	HomeExpanded   ResolutionStrategy = "HOME_EXPANDED"
)

// ResolvedPath is the outcome of resolving a user supplied directory.
// Existence is reported as data so callers can build a precise error.
type ResolvedPath struct {
	Requested        string             `json:"requested" yaml:"requested"`
	ResolvedAbsolute string             `json:"resolved_absolute" yaml:"resolved_absolute"`
	Existed          bool               `json:"existed" yaml:"existed"`
	IsDir            bool               `json:"is_dir" yaml:"is_dir"`
	Strategy         ResolutionStrategy `json:"resolution_strategy" yaml:"resolution_strategy"`
}

// FileCandidate is a file admitted by the walker, before it has been read.
type FileCandidate struct {
	AbsolutePath string `json:"absolute_path" yaml:"absolute_path"`
	// Root-relative path using forward slashes (e.g., "src/app.py").
	RelativePath string `json:"relative_path" yaml:"relative_path"`
	SizeBytes    int64  `json:"size_bytes" yaml:"size_bytes"`
	// Lowercased extension with the leading dot; empty when the file has none.
	Extension string `json:"extension" yaml:"extension"`
}

// FileExcerpt holds the possibly truncated text of one included file.
type FileExcerpt struct {
	RelativePath      string `json:"relative_path" yaml:"relative_path"`
	Content           string `json:"content" yaml:"content"`
	Truncated         bool   `json:"truncated" yaml:"truncated"`
	LinesIncluded     int    `json:"lines_included" yaml:"lines_included"`
	TotalLines        int    `json:"total_lines" yaml:"total_lines"`
	SizeBytesIncluded int    `json:"size_bytes_included" yaml:"size_bytes_included"`
}
