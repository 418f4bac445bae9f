// Package context_aggregator turns a directory into a bounded, deterministic text
// payload: an indented tree of the included files followed by their contents, plus a
// manifest explaining every file that was left out.
//
// The pipeline is Resolver, Walker, Loader, RenderTree and Assemble. Aggregator wires
// them together from a config.AggregatorConfig. Nothing is written to the analysed
// tree and no state is kept between calls.
package context_aggregator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/opsight-dev/opsight/config"
	"github.com/opsight-dev/opsight/context_aggregator/models"
	"github.com/opsight-dev/opsight/utils"
	"go.uber.org/zap"
)

// Aggregator builds payloads for target directories under one configuration.
type Aggregator struct {
	config       config.AggregatorConfig
	resolver     *Resolver
	logger       *zap.Logger
	ignoredFiles []string
}

// NewAggregator validates cfg and returns an aggregator. A nil logger disables logging.
func NewAggregator(cfg config.AggregatorConfig, logger *zap.Logger) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregator configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		config:   cfg,
		resolver: NewResolver(),
		logger:   logger,
	}, nil
}

// IgnoreFiles keeps files the process itself writes (its log) out of every payload.
func (a *Aggregator) IgnoreFiles(paths ...string) {
	a.ignoredFiles = append(a.ignoredFiles, paths...)
}

// Resolve resolves target against the configured base directory. An empty target
// falls back to the configured target directory.
func (a *Aggregator) Resolve(target string) models.ResolvedPath {
	if target == "" {
		target = a.config.TargetDirectory
	}
	base := a.resolver.ResolveBase(a.config.BaseDirectory)
	return a.resolver.Resolve(target, base)
}

// Aggregate resolves target and assembles its payload. A target that does not exist
// returns a *PathNotFoundError; per-file problems only show up in the manifest.
func (a *Aggregator) Aggregate(ctx context.Context, target string) (*models.Payload, error) {
	runID := uuid.NewString()
	logger := a.logger.With(zap.String("run_id", runID))

	root := a.Resolve(target)
	logger.Debug("resolved target directory",
		zap.String("requested", root.Requested),
		zap.String("resolved", root.ResolvedAbsolute),
		zap.String("strategy", string(root.Strategy)),
		zap.Bool("existed", root.Existed))

	if !root.Existed {
		return nil, &PathNotFoundError{Path: root}
	}
	if !root.IsDir {
		return nil, &NotADirectoryError{Path: root}
	}

	rules := utils.NewExclusionRules(a.config.ExcludeDirs, a.config.IncludeHidden)
	patterns, err := utils.GetIgnorePatterns(root.ResolvedAbsolute, a.config.IgnoreFile)
	if err != nil {
		logger.Warn("ignore file unusable, continuing without it", zap.Error(err))
	} else {
		rules.Add(patterns...)
	}

	walker := NewWalker(rules, logger).IgnoreFiles(a.ignoredFiles...)
	walk, err := walker.Walk(ctx, root, utils.NormalizeExtensions(a.config.Extensions), a.config.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("aggregation of %s cancelled: %w", root.ResolvedAbsolute, err)
	}

	loader := NewLoader(int64(a.config.MaxFileSizeKB)*1024, a.config.MaxLines)
	var render TreeFunc
	if a.config.IncludeTree {
		render = RenderTree
	}
	payload, err := Assemble(ctx, root, walk, loader.Load, render, a.config.AggregateCeilingBytes)
	if err != nil {
		return nil, fmt.Errorf("aggregation of %s cancelled: %w", root.ResolvedAbsolute, err)
	}
	payload.Manifest.RunID = runID
	payload.Manifest.ExcludePatterns = rules.Patterns()

	for _, entry := range payload.Manifest.Skipped {
		logger.Debug("skipped path",
			zap.String("path", entry.Path),
			zap.String("reason", string(entry.Reason)),
			zap.String("detail", entry.Detail))
	}
	logger.Info("directory aggregated",
		zap.String("root", root.ResolvedAbsolute),
		zap.Int("included", len(payload.Excerpts)),
		zap.Int("skipped", len(payload.Manifest.Skipped)),
		zap.Int("bytes", payload.Manifest.TotalBytes),
		zap.Bool("trimmed", payload.Manifest.Trimmed),
		zap.String("digest", payload.Manifest.Digest))

	return payload, nil
}
