package models

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

var (
	sectionRule = strings.Repeat("=", 80)
	headerRule  = strings.Repeat("-", 40)
)

// Payload is the bounded artifact handed to the downstream analysis call.
type Payload struct {
	Tree     string              `json:"tree" yaml:"tree"`
	Excerpts []FileExcerpt       `json:"excerpts" yaml:"excerpts"`
	Manifest AggregationManifest `json:"manifest" yaml:"manifest"`
}

// Text serializes the payload: header, tree block, then one section per excerpt.
func (p *Payload) Text() string {
	var builder strings.Builder
	builder.WriteString(HeaderText(p.Manifest.Root.ResolvedAbsolute, len(p.Excerpts)))
	if !p.Manifest.TreeOmitted {
		builder.WriteString(TreeBlockText(p.Tree))
	}
	for _, excerpt := range p.Excerpts {
		builder.WriteString(SectionText(excerpt))
	}
	return builder.String()
}

// HeaderText is the preamble of the serialized payload.
func HeaderText(root string, filesAnalyzed int) string {
	return fmt.Sprintf("Directory Analysis: %s\nFiles analyzed: %d\n%s\n", root, filesAnalyzed, sectionRule)
}

// TreeBlockText wraps a rendered tree for inclusion in the payload.
func TreeBlockText(tree string) string {
	if tree != "" && !strings.HasSuffix(tree, "\n") {
		tree += "\n"
	}
	return tree + sectionRule + "\n\n"
}

// SectionText renders one file section. Its length is what the aggregate ceiling counts.
func SectionText(excerpt FileExcerpt) string {
	var builder strings.Builder
	builder.WriteString("FILE: ")
	builder.WriteString(excerpt.RelativePath)
	builder.WriteString("\n")
	builder.WriteString(headerRule)
	builder.WriteString("\n")
	builder.WriteString(excerpt.Content)
	if excerpt.Content != "" && !strings.HasSuffix(excerpt.Content, "\n") {
		builder.WriteString("\n")
	}
	if excerpt.Truncated {
		builder.WriteString(fmt.Sprintf("... [File truncated after %d lines; %d lines total] ...\n", excerpt.LinesIncluded, excerpt.TotalLines))
	}
	builder.WriteString(sectionRule)
	builder.WriteString("\n\n")
	return builder.String()
}

// Digest returns the xxh3 hash of text in hex.
func Digest(text string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(text))
}
