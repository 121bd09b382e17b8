package cli

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/jakoblorz/go-treegen/internal/config"
	"github.com/jakoblorz/go-treegen/internal/generator"
	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/spf13/cobra"
)

// ResolveCommand handles the resolve command
type ResolveCommand struct {
	gen *generator.Generator
}

// NewResolveCommand creates a new resolve command
func NewResolveCommand() *cobra.Command {
	cmd := &ResolveCommand{gen: generator.New()}

	cobraCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Evaluate a single rule",
		Long: `Evaluates one rule in isolation and prints the result.

The rule uses the JSON layout of configuration files. With --as name the
rule is resolved the way an entry name is; otherwise it produces content.`,
		Example: `  treegen resolve --rule '{"CycleGen":{"value":[1,2,3],"length":7}}'
  treegen resolve --rule '{"BitTrain":{"seed":[1,2],"length":16}}' --encoding base64
  treegen resolve --rule '{"StringGen":{"value":"a.txt"}}' --as name`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("rule", "", "Rule as JSON, e.g. {\"StringGen\":{\"value\":\"x\"}}")
	cobraCmd.Flags().String("as", "content", "Resolve as name or content")
	cobraCmd.Flags().String("encoding", "hex", "Content output encoding: hex, base64 or raw")
	_ = cobraCmd.MarkFlagRequired("rule")

	return cobraCmd
}

// Run executes the resolve command
func (c *ResolveCommand) Run(cmd *cobra.Command, args []string) error {
	ruleJSON, _ := cmd.Flags().GetString("rule")
	as, _ := cmd.Flags().GetString("as")
	encoding, _ := cmd.Flags().GetString("encoding")

	rule, err := config.ParseRuleJSON([]byte(ruleJSON))
	if err != nil {
		return fmt.Errorf("failed to parse rule: %w", err)
	}

	out := cmd.OutOrStdout()
	switch as {
	case "name":
		name, err := c.gen.Name(rule)
		if err != nil {
			return fmt.Errorf("failed to resolve name (%s): %w", models.KindOf(err), err)
		}
		_, _ = fmt.Fprintln(out, name)
		return nil

	case "content":
		content, err := c.gen.Content(rule)
		if err != nil {
			return fmt.Errorf("failed to generate content (%s): %w", models.KindOf(err), err)
		}
		switch encoding {
		case "hex":
			_, _ = fmt.Fprintln(out, hex.EncodeToString(content))
		case "base64":
			_, _ = fmt.Fprintln(out, base64.StdEncoding.EncodeToString(content))
		case "raw":
			_, _ = out.Write(content)
		default:
			return fmt.Errorf("unknown encoding %q (expected hex, base64 or raw)", encoding)
		}
		return nil

	default:
		return fmt.Errorf("unknown --as value %q (expected name or content)", as)
	}
}
