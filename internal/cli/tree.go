package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/dustin/go-humanize"
	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/tui"
	"github.com/spf13/cobra"
)

// TreeCommand handles the tree command
type TreeCommand struct {
	fs filesystem.FileSystem
}

// NewTreeCommand creates a new tree command
func NewTreeCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &TreeCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "tree [DIR]",
		Short: "List a generated tree",
		Long: `Prints the directory tree below DIR with file sizes.

Entries matched by a gitignore-style file given with --ignore-file are
hidden, together with everything below an ignored directory.`,
		Example: `  # Show a generated tree
  treegen tree out

  # Hide entries listed in an ignore file
  treegen tree out --ignore-file .treeignore`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("ignore-file", "", "Gitignore-style file with patterns to hide")

	return cobraCmd
}

// Run executes the tree command
func (c *TreeCommand) Run(cmd *cobra.Command, args []string) error {
	ignoreFile, _ := cmd.Flags().GetString("ignore-file")

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	info, err := c.fs.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	var ignore gitignore.GitIgnore
	if ignoreFile != "" {
		data, err := c.fs.ReadFile(ignoreFile)
		if err != nil {
			return fmt.Errorf("failed to read ignore file: %w", err)
		}
		ignore = gitignore.New(bytes.NewReader(data), root, nil)
	}

	listing, err := renderTree(c.fs, root, ignore)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), listing)
	return nil
}

// renderTree lists root and everything below it, sorted by name. A nil
// ignore hides nothing.
func renderTree(fs filesystem.FileSystem, root string, ignore gitignore.GitIgnore) (string, error) {
	var b strings.Builder

	info, err := fs.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		fmt.Fprintf(&b, "%s %s\n", tui.FileStyle.Render(filepath.Base(root)), tui.SizeStyle.Render(humanize.IBytes(uint64(info.Size()))))
		return b.String(), nil
	}

	fmt.Fprintln(&b, tui.DirStyle.Render(filepath.Base(root)+"/"))
	if err := renderChildren(&b, fs, root, root, "", ignore); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderChildren(b *strings.Builder, fs filesystem.FileSystem, root, dir, prefix string, ignore gitignore.GitIgnore) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	if ignore != nil {
		kept := entries[:0:0]
		for _, entry := range entries {
			rel, err := filepath.Rel(root, filepath.Join(dir, entry.Name()))
			if err != nil {
				return err
			}
			if match := ignore.Relative(filepath.ToSlash(rel), entry.IsDir()); match != nil && match.Ignore() {
				continue
			}
			kept = append(kept, entry)
		}
		entries = kept
	}

	for i, entry := range entries {
		branch, indent := "├── ", "│   "
		if i == len(entries)-1 {
			branch, indent = "└── ", "    "
		}

		if entry.IsDir() {
			fmt.Fprintf(b, "%s%s\n", tui.BranchStyle.Render(prefix+branch), tui.DirStyle.Render(entry.Name()+"/"))
			if err := renderChildren(b, fs, root, filepath.Join(dir, entry.Name()), prefix+indent, ignore); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		fmt.Fprintf(b, "%s%s %s\n",
			tui.BranchStyle.Render(prefix+branch),
			tui.FileStyle.Render(entry.Name()),
			tui.SizeStyle.Render(humanize.IBytes(uint64(info.Size()))))
	}
	return nil
}
