package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/zclconf/go-cty/cty"
)

// intBytes encodes as an array of integers instead of base64
type intBytes []byte

func (b intBytes) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

// EncodeJSON writes node in the externally tagged JSON layout read by
// ParseJSON
func EncodeJSON(node models.Node) ([]byte, error) {
	v, err := encodeNode(node)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

func encodeNode(node models.Node) (any, error) {
	switch n := models.NormalizeNode(node).(type) {
	case models.File:
		name, err := encodeRule(n.Name)
		if err != nil {
			return nil, err
		}
		content, err := encodeRule(n.Content)
		if err != nil {
			return nil, err
		}
		return map[string]any{tagFile: map[string]any{"name": name, "rand_gen": content}}, nil

	case models.Directory:
		name, err := encodeRule(n.Name)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, len(n.Children))
		for _, child := range n.Children {
			item, err := encodeNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return map[string]any{tagDirectory: map[string]any{"name": name, "items": items}}, nil

	default:
		return nil, fmt.Errorf("%w: cannot encode node %T", models.ErrInvalidRule, node)
	}
}

func encodeRule(rule models.Rule) (any, error) {
	switch r := models.NormalizeRule(rule).(type) {
	case models.Cyclic:
		return map[string]any{tagCyclic: map[string]any{"value": intBytes(r.Source), "length": r.Length}}, nil
	case models.WeightedSample:
		choices := make([]intBytes, len(r.Choices))
		for i, c := range r.Choices {
			choices[i] = c
		}
		return map[string]any{tagSample: map[string]any{"value": choices, "seed": encodeSeed(r.Seed), "length": r.Length}}, nil
	case models.BiasedBitStream:
		return map[string]any{tagBitStream: map[string]any{"probability": r.Probability, "seed": encodeSeed(r.Seed), "length": r.Length}}, nil
	case models.Literal:
		return map[string]any{tagLiteral: map[string]any{"value": r.Value}}, nil
	default:
		return nil, fmt.Errorf("%w: cannot encode rule %T", models.ErrInvalidRule, rule)
	}
}

func encodeSeed(seed []byte) any {
	if seed == nil {
		return nil
	}
	return intBytes(seed)
}

// EncodeHCL writes node in the block layout read by ParseHCL
func EncodeHCL(node models.Node) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	if err := appendHCLNode(f.Body(), node); err != nil {
		return nil, err
	}
	return hclwrite.Format(f.Bytes()), nil
}

func appendHCLNode(body *hclwrite.Body, node models.Node) error {
	switch n := models.NormalizeNode(node).(type) {
	case models.File:
		block := body.AppendNewBlock(blockFile, nil)
		if err := appendHCLRule(block.Body(), blockName, n.Name); err != nil {
			return err
		}
		return appendHCLRule(block.Body(), blockContent, n.Content)

	case models.Directory:
		block := body.AppendNewBlock(blockDirectory, nil)
		if err := appendHCLRule(block.Body(), blockName, n.Name); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := appendHCLNode(block.Body(), child); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: cannot encode node %T", models.ErrInvalidRule, node)
	}
}

func appendHCLRule(body *hclwrite.Body, blockType string, rule models.Rule) error {
	rule = models.NormalizeRule(rule)
	if rule == nil {
		return fmt.Errorf("%w: cannot encode nil rule", models.ErrInvalidRule)
	}
	b := body.AppendNewBlock(blockType, []string{models.RuleKind(rule)}).Body()

	switch r := rule.(type) {
	case models.Cyclic:
		b.SetAttributeValue("source", bytesValue(r.Source))
		b.SetAttributeValue("length", cty.NumberIntVal(int64(r.Length)))
	case models.WeightedSample:
		choices := make([]cty.Value, len(r.Choices))
		for i, c := range r.Choices {
			choices[i] = bytesValue(c)
		}
		b.SetAttributeValue("choices", cty.TupleVal(choices))
		if r.Seed != nil {
			b.SetAttributeValue("seed", bytesValue(r.Seed))
		}
		b.SetAttributeValue("length", cty.NumberIntVal(int64(r.Length)))
	case models.BiasedBitStream:
		b.SetAttributeValue("probability", cty.NumberFloatVal(r.Probability))
		if r.Seed != nil {
			b.SetAttributeValue("seed", bytesValue(r.Seed))
		}
		b.SetAttributeValue("length", cty.NumberIntVal(int64(r.Length)))
	case models.Literal:
		b.SetAttributeValue("value", cty.StringVal(r.Value))
	}
	return nil
}

// bytesValue prefers a string when the bytes are printable ASCII. Other
// text would be NFC-normalized by cty and come back changed.
func bytesValue(data []byte) cty.Value {
	if len(data) > 0 && !slices.ContainsFunc(data, func(b byte) bool {
		return b > unicode.MaxASCII || !unicode.IsPrint(rune(b))
	}) {
		return cty.StringVal(string(data))
	}
	values := make([]cty.Value, len(data))
	for i, v := range data {
		values[i] = cty.NumberIntVal(int64(v))
	}
	return cty.TupleVal(values)
}
