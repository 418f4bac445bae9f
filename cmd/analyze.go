package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/opsight-dev/opsight/constants/lipgloss"
	"github.com/opsight-dev/opsight/context_aggregator/models"
	contracts_token "github.com/opsight-dev/opsight/token_management/contracts"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// analyzeCmd: opsight analyze [directory]
var analyzeCmd = &cobra.Command{
	Use:   "analyze [directory]",
	Short: "Aggregate a directory into a bounded context payload and print it.",
	Long: `The 'analyze' subcommand resolves the directory (absolute, relative to the base
directory, relative to the current directory, or starting with ~), walks it under the
configured budgets and prints the payload. Use --format json or yaml to get the payload
together with its manifest, and --manifest to print a summary of skipped files to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		showManifest, _ := cmd.Flags().GetBool("manifest")
		return handleAnalyzeCommand(cmd, targetArg(args), format, showManifest)
	},
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	analyzeCmd.Flags().BoolP("manifest", "m", false, "Print a manifest summary to stderr")
	rootCmd.AddCommand(analyzeCmd)
}

func handleAnalyzeCommand(cmd *cobra.Command, target string, format string, showManifest bool) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}
	defer rootDependencies.Logger.Sync()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	payload, err := aggregate(ctx, cmd, rootDependencies, target)
	if err != nil {
		return err
	}

	if err := writePayload(cmd.OutOrStdout(), payload, format); err != nil {
		return err
	}

	if showManifest {
		printManifestSummary(cmd.ErrOrStderr(), payload, rootDependencies.TokenManagement)
	}
	return nil
}

func writePayload(out io.Writer, payload *models.Payload, format string) error {
	switch format {
	case "text", "":
		_, err := io.WriteString(out, payload.Text())
		return err
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(payload); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown format '%s' (use text, json or yaml)", format)
	}
}

func printManifestSummary(out io.Writer, payload *models.Payload, tokenManagement contracts_token.ITokenManagement) {
	manifest := &payload.Manifest
	fmt.Fprintln(out, lipgloss.Info.Render("Manifest"))
	fmt.Fprintf(out, "  Root:      %s (%s)\n", manifest.Root.ResolvedAbsolute, manifest.Root.Strategy)
	fmt.Fprintf(out, "  Included:  %d files\n", len(manifest.Included))
	fmt.Fprintf(out, "  Payload:   %s of %s ceiling (~%s tokens)\n",
		humanize.IBytes(uint64(manifest.TotalBytes)),
		humanize.IBytes(uint64(manifest.CeilingBytes)),
		humanize.Comma(int64(tokenManagement.EstimateTokens(payload.Text()))))
	fmt.Fprintf(out, "  Digest:    %s\n", manifest.Digest)
	if len(manifest.ExcludePatterns) > 0 {
		fmt.Fprintf(out, "  Excluded:  %s\n", strings.Join(manifest.ExcludePatterns, ", "))
	}
	if manifest.Trimmed {
		fmt.Fprintln(out, lipgloss.Yellow.Render("  Payload was trimmed to fit the aggregate ceiling."))
	}
	if manifest.TreeOmitted {
		fmt.Fprintln(out, lipgloss.Yellow.Render("  Directory tree omitted: it alone exceeds the ceiling."))
	}

	for _, excerpt := range manifest.Included {
		if excerpt.Truncated {
			fmt.Fprintln(out, lipgloss.Gray.Render(fmt.Sprintf("  truncated %s: %d of %d lines", excerpt.RelativePath, excerpt.LinesIncluded, excerpt.TotalLines)))
		}
	}

	counts := manifest.ReasonCounts()
	reasons := lo.Keys(counts)
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, reason := range reasons {
		fmt.Fprintf(out, "  %-28s %d\n", reason, counts[reason])
	}
	for _, entry := range manifest.Skipped {
		line := fmt.Sprintf("  skipped %s: %s", entry.Path, entry.Reason)
		if entry.Detail != "" {
			line += " (" + entry.Detail + ")"
		}
		fmt.Fprintln(out, lipgloss.Gray.Render(line))
	}
}
