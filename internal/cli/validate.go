package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakoblorz/go-treegen/internal/config"
	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/jakoblorz/go-treegen/internal/tui"
	"github.com/spf13/cobra"
)

// ValidateCommand handles the validate command
type ValidateCommand struct {
	fs filesystem.FileSystem
}

// NewValidateCommand creates a new validate command
func NewValidateCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &ValidateCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "validate CONFIG...",
		Short: "Check configuration files without generating anything",
		Long: `Loads every given configuration file and reports all static rule problems.

Arguments may be glob patterns. Names produced by cyclic rules are only
known after generation and are checked as far as possible.`,
		Example: `  treegen validate tree.json
  treegen validate 'configs/*.hcl'`,
		Args: cobra.MinimumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("format", string(config.FormatAuto), "Config format: json, hcl or auto")

	return cobraCmd
}

// Run executes the validate command
func (c *ValidateCommand) Run(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := config.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	paths, err := c.expand(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		cfg, err := config.Load(c.fs, path, format)
		if err == nil {
			err = models.Validate(cfg.Root)
		}
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "%s %s\n", tui.ErrorStyle.Render("✗"), path)
			for _, line := range errorLines(err) {
				_, _ = fmt.Fprintf(out, "    %s\n", line)
			}
			continue
		}

		files, dirs := models.Count(cfg.Root)
		_, _ = fmt.Fprintf(out, "%s %s %s\n", tui.SuccessStyle.Render("✓"), path,
			tui.SubtleStyle.Render(fmt.Sprintf("(%d files, %d directories)", files, dirs)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d config(s) invalid", failed, len(paths))
	}
	return nil
}

// expand resolves glob patterns; plain paths are kept even when missing so
// that they are reported as read failures
func (c *ValidateCommand) expand(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, arg := range args {
		matches := []string{arg}
		if strings.ContainsAny(arg, "*?[") {
			var err error
			matches, err = c.fs.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no config matches %s", arg)
			}
			sort.Strings(matches)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

// errorLines splits joined errors into one line each
func errorLines(err error) []string {
	return strings.Split(strings.TrimSpace(err.Error()), "\n")
}
