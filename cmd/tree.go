package cmd

import (
	"fmt"
	"io"

	"github.com/opsight-dev/opsight/constants/lipgloss"
	"github.com/spf13/cobra"
)

// treeCmd: opsight tree [directory]
var treeCmd = &cobra.Command{
	Use:   "tree [directory]",
	Short: "Print the directory tree of the files that would be included.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleTreeCommand(cmd, targetArg(args))
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func handleTreeCommand(cmd *cobra.Command, target string) error {
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

	if payload.Manifest.TreeOmitted {
		fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Yellow.Render("Directory tree exceeds the aggregate ceiling; raise --aggregate_ceiling_bytes to see it."))
		return nil
	}
	_, err = io.WriteString(cmd.OutOrStdout(), payload.Tree)
	return err
}
