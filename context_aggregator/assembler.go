package context_aggregator

import (
	"context"
	"fmt"

	"github.com/opsight-dev/opsight/context_aggregator/models"
)

// LoadFunc reads one candidate; a non-nil skip entry means it was left out.
type LoadFunc func(candidate models.FileCandidate) (models.FileExcerpt, *models.SkippedEntry)

type loadedFile struct {
	candidate models.FileCandidate
	excerpt   models.FileExcerpt
}

// Assemble loads the walked candidates in order and builds a payload whose serialized
// text fits in ceilingBytes. Files are admitted whole; the first section that does not
// fit ends admission and every later file is recorded as SIZE_BUDGET_EXCEEDED.
//
// A nil render leaves the tree out. Skip entries are ordered walker entries first, then
// loader entries, then ceiling entries. A cancelled context returns the context error
// and no payload.
func Assemble(ctx context.Context, root models.ResolvedPath, walk *WalkResult, load LoadFunc, render TreeFunc, ceilingBytes int) (*models.Payload, error) {
	manifest := models.AggregationManifest{
		Root:         root,
		Included:     []models.FileExcerpt{},
		Skipped:      append([]models.SkippedEntry{}, walk.Skipped...),
		CeilingBytes: ceilingBytes,
	}

	var loaded []loadedFile
	for _, candidate := range walk.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		excerpt, skip := load(candidate)
		if skip != nil {
			manifest.Skipped = append(manifest.Skipped, *skip)
			continue
		}
		loaded = append(loaded, loadedFile{candidate: candidate, excerpt: excerpt})
	}

	// Header and tree are budgeted over every loaded file; both can only shrink once
	// the included subset is known.
	used := len(models.HeaderText(root.ResolvedAbsolute, len(loaded)))
	treeOverflow := false
	if render == nil {
		manifest.TreeOmitted = true
	} else if treeBytes := len(models.TreeBlockText(render(root, candidatesOf(loaded)))); used+treeBytes > ceilingBytes {
		manifest.TreeOmitted = true
		treeOverflow = true
	} else {
		used += treeBytes
	}

	var included []loadedFile
	exhausted := false
	for _, file := range loaded {
		section := len(models.SectionText(file.excerpt))
		if !exhausted && used+section <= ceilingBytes {
			included = append(included, file)
			used += section
			continue
		}
		exhausted = true
		manifest.Skipped = append(manifest.Skipped, models.SkippedEntry{
			Path:   file.candidate.RelativePath,
			Reason: models.SizeBudgetExceeded,
			Detail: fmt.Sprintf("aggregate ceiling of %d bytes reached", ceilingBytes),
		})
	}
	manifest.Trimmed = exhausted || treeOverflow

	payload := &models.Payload{Excerpts: []models.FileExcerpt{}}
	for _, file := range included {
		payload.Excerpts = append(payload.Excerpts, file.excerpt)
	}
	manifest.Included = payload.Excerpts
	if !manifest.TreeOmitted {
		payload.Tree = render(root, candidatesOf(included))
	}
	payload.Manifest = manifest

	text := payload.Text()
	payload.Manifest.TotalBytes = len(text)
	payload.Manifest.Digest = models.Digest(text)

	return payload, nil
}

func candidatesOf(files []loadedFile) []models.FileCandidate {
	candidates := make([]models.FileCandidate, 0, len(files))
	for _, file := range files {
		candidates = append(candidates, file.candidate)
	}
	return candidates
}
