package cli

import (
	"fmt"
	"io"

	"github.com/jakoblorz/go-treegen/internal/config"
	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/jakoblorz/go-treegen/internal/tui/components"
	"github.com/jakoblorz/go-treegen/internal/tui/wizard"
	"github.com/spf13/cobra"
)

// InitCommand handles the init command
type InitCommand struct {
	fs filesystem.FileSystem

	// replaced in tests
	runWizard func(defaults wizard.Answers) (*wizard.Result, error)
	confirm   func(message string, in io.Reader, out io.Writer) (bool, error)
}

// NewInitCommand creates a new init command
func NewInitCommand(fs filesystem.FileSystem) *cobra.Command {
	return newInitCommand(&InitCommand{
		fs: fs,
		runWizard: func(defaults wizard.Answers) (*wizard.Result, error) {
			return wizard.NewFlow(defaults).Run()
		},
		confirm: components.Confirm,
	})
}

func newInitCommand(cmd *InitCommand) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write an example configuration",
		Long: `Writes an example configuration file to PATH (default: tree.json or tree.hcl).

With --interactive a short wizard asks for the shape of the tree.`,
		Example: `  treegen init
  treegen init configs/bits.hcl --format hcl
  treegen init --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("format", string(config.FormatJSON), "Config format: json or hcl")
	cobraCmd.Flags().Bool("interactive", false, "Ask for the tree shape interactively")
	cobraCmd.Flags().Bool("force", false, "Overwrite an existing file without asking")

	return cobraCmd
}

// Run executes the init command
func (c *InitCommand) Run(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	interactive, _ := cmd.Flags().GetBool("interactive")
	force, _ := cmd.Flags().GetBool("force")

	answers := wizard.DefaultAnswers()
	format, err := config.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if format == config.FormatAuto {
		format = config.FormatJSON
	}
	answers.Format = string(format)

	root, err := wizard.BuildTree(answers)
	if err != nil {
		return err
	}

	if interactive {
		result, err := c.runWizard(answers)
		if err != nil {
			return fmt.Errorf("failed to run wizard: %w", err)
		}
		if result == nil {
			return nil
		}
		answers = result.Answers
		root = result.Root
		format = config.Format(answers.Format)
	}

	path := "tree." + string(format)
	if len(args) == 1 {
		path = args[0]
	}

	if c.fs.Exists(path) && !force {
		if !interactive {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		ok, err := c.confirm(fmt.Sprintf("%s already exists. Overwrite it?", path), cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	data, err := encodeExample(root, format, answers)
	if err != nil {
		return err
	}
	if err := c.fs.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), wizard.RenderSuccess(path, answers))
	return nil
}

// encodeExample renders root with a front matter header
func encodeExample(root models.Node, format config.Format, a wizard.Answers) ([]byte, error) {
	var body []byte
	var err error
	switch format {
	case config.FormatJSON:
		body, err = config.EncodeJSON(root)
	case config.FormatHCL:
		body, err = config.EncodeHCL(root)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode example: %w", err)
	}

	header := fmt.Sprintf("---\nversion: %s\ndescription: %d %s file(s) in %s\n---\n",
		config.DefaultVersion, a.Files, a.ContentKind, a.RootName)
	out := append([]byte(header), body...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}
