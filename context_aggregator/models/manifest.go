package models

// SkipReason is the machine readable cause for leaving a path out of the payload.
type SkipReason string

const (
	ExcludedDir             SkipReason = "EXCLUDED_DIR"
	ExtensionFiltered       SkipReason = "EXTENSION_FILTERED"
	FileCountBudgetExceeded SkipReason = "FILE_COUNT_BUDGET_EXCEEDED"
	Unreadable              SkipReason = "UNREADABLE"
	BinarySuspected         SkipReason = "BINARY_SUSPECTED"
	SizeBudgetExceeded      SkipReason = "SIZE_BUDGET_EXCEEDED"
)

// SkippedEntry records a file or directory that did not make it into the payload.
type SkippedEntry struct {
	Path   string     `json:"path" yaml:"path"`
	Reason SkipReason `json:"reason" yaml:"reason"`
	Detail string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	IsDir  bool       `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
}

// AggregationManifest explains why every discovered path was or was not included.
// ExcludePatterns lists the directory name patterns pruned during the walk; pruned
// directories themselves never appear in Skipped.
type AggregationManifest struct {
	RunID           string         `json:"run_id" yaml:"run_id"`
	Root            ResolvedPath   `json:"root" yaml:"root"`
	Included        []FileExcerpt  `json:"included" yaml:"included"`
	Skipped         []SkippedEntry `json:"skipped" yaml:"skipped"`
	ExcludePatterns []string       `json:"exclude_patterns" yaml:"exclude_patterns"`
	TreeOmitted     bool           `json:"tree_omitted" yaml:"tree_omitted"`
	Trimmed         bool           `json:"trimmed" yaml:"trimmed"`
	TotalBytes      int            `json:"total_bytes" yaml:"total_bytes"`
	CeilingBytes    int            `json:"ceiling_bytes" yaml:"ceiling_bytes"`
	Digest          string         `json:"digest" yaml:"digest"`
}

// SkippedBy returns the skip entries recorded with the given reason, in manifest order.
func (m *AggregationManifest) SkippedBy(reason SkipReason) []SkippedEntry {
	var entries []SkippedEntry
	for _, entry := range m.Skipped {
		if entry.Reason == reason {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ReasonCounts tallies skip entries per reason.
func (m *AggregationManifest) ReasonCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, entry := range m.Skipped {
		counts[entry.Reason]++
	}
	return counts
}
