package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// HCL block types
const (
	blockFile      = "file"
	blockDirectory = "directory"
	blockName      = "name"
	blockContent   = "content"
)

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockFile},
		{Type: blockDirectory},
	},
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockName, LabelNames: []string{"kind"}},
		{Type: blockContent, LabelNames: []string{"kind"}},
	},
}

var directorySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockName, LabelNames: []string{"kind"}},
		{Type: blockFile},
		{Type: blockDirectory},
	},
}

type hclLiteral struct {
	Value string `hcl:"value"`
}

type hclCyclic struct {
	Source hcl.Expression `hcl:"source"`
	Length int            `hcl:"length"`
}

type hclSample struct {
	Choices hcl.Expression `hcl:"choices"`
	Seed    hcl.Expression `hcl:"seed,optional"`
	Length  int            `hcl:"length"`
}

type hclBitStream struct {
	Probability *float64       `hcl:"probability,optional"`
	Seed        hcl.Expression `hcl:"seed,optional"`
	Length      int            `hcl:"length"`
}

// ParseHCL parses a body holding exactly one file or directory block.
// Children of a directory keep their declared order.
func ParseHCL(src []byte, filename string) (models.Node, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}
	if len(content.Blocks) != 1 {
		return nil, fmt.Errorf("expected exactly one root file or directory block, got %d", len(content.Blocks))
	}
	return decodeHCLNode(content.Blocks[0])
}

func decodeHCLNode(block *hcl.Block) (models.Node, error) {
	switch block.Type {
	case blockFile:
		content, diags := block.Body.Content(fileSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode file block: %w", diags)
		}
		name, err := singleRule(content.Blocks, blockName, block.DefRange)
		if err != nil {
			return nil, err
		}
		rule, err := singleRule(content.Blocks, blockContent, block.DefRange)
		if err != nil {
			return nil, err
		}
		return models.File{Name: name, Content: rule}, nil

	case blockDirectory:
		content, diags := block.Body.Content(directorySchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode directory block: %w", diags)
		}
		name, err := singleRule(content.Blocks, blockName, block.DefRange)
		if err != nil {
			return nil, err
		}
		children := []models.Node{}
		for _, child := range content.Blocks {
			if child.Type == blockName {
				continue
			}
			node, err := decodeHCLNode(child)
			if err != nil {
				return nil, err
			}
			children = append(children, node)
		}
		return models.Directory{Name: name, Children: children}, nil

	default:
		return nil, fmt.Errorf("%s: unexpected block %q", block.DefRange, block.Type)
	}
}

func singleRule(blocks hcl.Blocks, blockType string, where hcl.Range) (models.Rule, error) {
	matching := blocks.OfType(blockType)
	if len(matching) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one %s block, got %d", where, blockType, len(matching))
	}
	return decodeHCLRule(matching[0])
}

func decodeHCLRule(block *hcl.Block) (models.Rule, error) {
	kind := block.Labels[0]
	where := block.DefRange

	switch kind {
	case models.KindLiteral:
		var l hclLiteral
		if diags := gohcl.DecodeBody(block.Body, nil, &l); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s rule: %w", kind, diags)
		}
		return models.Literal{Value: l.Value}, nil

	case models.KindCyclic:
		var c hclCyclic
		if diags := gohcl.DecodeBody(block.Body, nil, &c); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s rule: %w", kind, diags)
		}
		source, err := exprBytes(c.Source)
		if err != nil {
			return nil, fmt.Errorf("%s: source: %w", where, err)
		}
		if source == nil {
			return nil, fmt.Errorf("%s: source must not be null", where)
		}
		if c.Length < 0 {
			return nil, fmt.Errorf("%s: length must not be negative: %d", where, c.Length)
		}
		return models.Cyclic{Source: source, Length: c.Length}, nil

	case models.KindSample:
		var s hclSample
		if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s rule: %w", kind, diags)
		}
		choices, err := exprChoices(s.Choices)
		if err != nil {
			return nil, fmt.Errorf("%s: choices: %w", where, err)
		}
		seed, err := exprBytes(s.Seed)
		if err != nil {
			return nil, fmt.Errorf("%s: seed: %w", where, err)
		}
		if s.Length < 0 {
			return nil, fmt.Errorf("%s: length must not be negative: %d", where, s.Length)
		}
		return models.WeightedSample{Choices: choices, Seed: seed, Length: s.Length}, nil

	case models.KindBitStream:
		var b hclBitStream
		if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s rule: %w", kind, diags)
		}
		seed, err := exprBytes(b.Seed)
		if err != nil {
			return nil, fmt.Errorf("%s: seed: %w", where, err)
		}
		if b.Length < 0 {
			return nil, fmt.Errorf("%s: length must not be negative: %d", where, b.Length)
		}
		p := DefaultProbability
		if b.Probability != nil {
			p = *b.Probability
		}
		return models.BiasedBitStream{Probability: p, Seed: seed, Length: b.Length}, nil

	default:
		return nil, fmt.Errorf("%s: unknown rule kind %q (expected %s, %s, %s or %s)", where, kind,
			models.KindLiteral, models.KindCyclic, models.KindSample, models.KindBitStream)
	}
}

// exprBytes evaluates a byte sequence: a string taken as UTF-8, or a
// list of integers 0..255. A null value yields nil.
func exprBytes(expr hcl.Expression) ([]byte, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyBytes(v)
}

func exprChoices(expr hcl.Expression) ([][]byte, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if v.IsNull() {
		return nil, errors.New("must not be null")
	}
	ty := v.Type()
	if !ty.IsListType() && !ty.IsTupleType() {
		return nil, fmt.Errorf("expected a list of byte sequences, got %s", ty.FriendlyName())
	}

	choices := [][]byte{}
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		b, err := ctyBytes(el)
		if err != nil {
			return nil, fmt.Errorf("choice %d: %w", len(choices), err)
		}
		if b == nil {
			return nil, fmt.Errorf("choice %d must not be null", len(choices))
		}
		choices = append(choices, b)
	}
	return choices, nil
}

func ctyBytes(v cty.Value) ([]byte, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value must be known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return append([]byte{}, v.AsString()...), nil

	case ty.IsListType() || ty.IsTupleType():
		out := []byte{}
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			var b uint8
			if err := gocty.FromCtyValue(el, &b); err != nil {
				return nil, fmt.Errorf("byte %d: %w", len(out), err)
			}
			out = append(out, b)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("expected a string or a list of bytes, got %s", ty.FriendlyName())
	}
}
