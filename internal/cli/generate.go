package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-treegen/internal/config"
	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/materializer"
	"github.com/spf13/cobra"
)

// GenerateCommand handles the generate command
type GenerateCommand struct {
	fs filesystem.FileSystem

	// newRunDir names --run-dir directories (replaced in tests)
	newRunDir func() (string, error)
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(fs filesystem.FileSystem) *cobra.Command {
	return newGenerateCommand(&GenerateCommand{fs: fs, newRunDir: newRunDirName})
}

func newGenerateCommand(cmd *GenerateCommand) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "generate CONFIG",
		Short: "Materialize a configuration tree",
		Long: `Reads a configuration file and creates its tree inside the output directory.

Existing entries are never overwritten: the run fails when any target
already exists. Entries created before a failure are left in place
unless --cleanup-on-error is given.`,
		Example: `  # Create the tree in the current directory
  treegen generate tree.json

  # Create it in a fresh, uniquely named directory below ./runs
  treegen generate tree.hcl -o runs --mkdir --run-dir

  # Preview without touching the disk
  treegen generate tree.json --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringP("output", "o", "", "Output directory (default: front matter output, then .)")
	cobraCmd.Flags().String("format", string(config.FormatAuto), "Config format: json, hcl or auto")
	cobraCmd.Flags().Int("parallel", 1, "Number of siblings materialized at once")
	cobraCmd.Flags().Bool("dry-run", false, "Materialize into memory and print the tree")
	cobraCmd.Flags().Bool("run-dir", false, "Create the tree inside a new, uniquely named directory")
	cobraCmd.Flags().Bool("mkdir", false, "Create the output directory if it is missing")
	cobraCmd.Flags().Bool("cleanup-on-error", false, "Remove the created root entry when the run fails")
	cobraCmd.Flags().String("summary-template", "", "Template file (text/template with sprig functions) for the summary")

	return cobraCmd
}

// Run executes the generate command
func (c *GenerateCommand) Run(cmd *cobra.Command, args []string) error {
	logger := loggerFrom(cmd.Context())

	formatStr, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	parallel, _ := cmd.Flags().GetInt("parallel")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	runDir, _ := cmd.Flags().GetBool("run-dir")
	mkdir, _ := cmd.Flags().GetBool("mkdir")
	cleanup, _ := cmd.Flags().GetBool("cleanup-on-error")
	summaryPath, _ := cmd.Flags().GetString("summary-template")

	format, err := config.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	// Parse the template up front so a bad template never leaves a half run
	tmpl, err := parseSummaryTemplate(c.fs, summaryPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.fs, args[0], format)
	if err != nil {
		return err
	}

	if output == "" {
		output = cfg.Metadata.Output
	}
	if output == "" {
		output = "."
	}

	target := c.fs
	if dryRun {
		target = filesystem.NewMemFileSystem()
		mkdir = true
	}

	if mkdir {
		if err := target.MkdirAll(output, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if runDir {
		name, err := c.newRunDir()
		if err != nil {
			return err
		}
		output = filepath.Join(output, name)
		if err := target.Mkdir(output, 0755); err != nil {
			return fmt.Errorf("failed to create run directory: %w", err)
		}
		logger.Info("Created run directory.", "path", output)
	}

	logger.Debug("Materializing configuration.", "config", cfg.Path, "format", cfg.Format, "output", output, "parallel", parallel, "dry_run", dryRun)

	m := materializer.New(target,
		materializer.WithLogger(logger),
		materializer.WithParallelism(parallel),
	)
	report, runErr := m.Materialize(cfg.Root, output)

	// A run directory is ours entirely, so cleanup takes it along
	created := report.Root
	if runDir {
		created = output
	}
	if runErr != nil && cleanup && created != "" {
		if err := target.RemoveAll(created); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to clean up %s: %w", created, err))
		} else {
			logger.Info("Removed partial tree.", "path", created)
		}
	}

	data := newSummaryData(report)
	data.Config = cfg.Path
	data.Description = cfg.Metadata.Description
	data.Output = output
	data.DryRun = dryRun
	if runErr != nil {
		data.Error = runErr.Error()
	}

	summary, err := renderSummary(tmpl, data)
	if err != nil {
		return errors.Join(runErr, err)
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), summary)

	if dryRun && report.Root != "" {
		listing, err := renderTree(target, report.Root, nil)
		if err != nil {
			return errors.Join(runErr, err)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), listing)
	}

	if runErr != nil {
		return fmt.Errorf("failed to generate %s: %w", cfg.Path, runErr)
	}
	return nil
}
