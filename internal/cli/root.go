package cli

import (
	"context"
	"fmt"

	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem) *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:   "treegen",
		Short: "Materialize synthetic file trees from generation rules",
		Long: `A CLI tool for materializing synthetic directory trees.

A configuration describes files and directories whose names and contents
come from generation rules: cyclic repetition, weighted sampling, biased
bit streams and literals.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel, logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	// Add subcommands
	rootCmd.AddCommand(NewGenerateCommand(fs))
	rootCmd.AddCommand(NewValidateCommand(fs))
	rootCmd.AddCommand(NewResolveCommand())
	rootCmd.AddCommand(NewTreeCommand(fs))
	rootCmd.AddCommand(NewInitCommand(fs))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	fs := filesystem.NewOSFileSystem()

	rootCmd := NewRootCommand(fs)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
