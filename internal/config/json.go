package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/jakoblorz/go-treegen/internal/models"
)

// JSON tags of the externally tagged layout
const (
	tagFile      = "FileConfig"
	tagDirectory = "DirectoryConfig"
	tagCyclic    = "CycleGen"
	tagSample    = "RangeGen"
	tagBitStream = "BitTrain"
	tagLiteral   = "StringGen"
)

// DefaultProbability applies to BitTrain rules without a probability field
const DefaultProbability = 0.5

// ParseJSON parses an externally tagged node, e.g.
//
//	{"FileConfig":{"name":{"StringGen":{"value":"a"}},"rand_gen":{"CycleGen":{"value":[1],"length":3}}}}
func ParseJSON(data []byte) (models.Node, error) {
	return decodeNode(data, "<root>")
}

// ParseRuleJSON parses a single externally tagged rule
func ParseRuleJSON(data []byte) (models.Rule, error) {
	return decodeRule(data, "rule")
}

// byteSeq accepts an array of integers 0..255 or a string taken as UTF-8.
// A decoded sequence is never nil.
type byteSeq []byte

func (b *byteSeq) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = append(byteSeq{}, s...)
		return nil
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("expected a byte array or a string: %w", err)
	}
	out := make(byteSeq, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

type jsonFile struct {
	Name    json.RawMessage `json:"name"`
	RandGen json.RawMessage `json:"rand_gen"`
	Content json.RawMessage `json:"content"`
}

type jsonDirectory struct {
	Name  json.RawMessage   `json:"name"`
	Items []json.RawMessage `json:"items"`
}

type jsonCyclic struct {
	Value  *byteSeq `json:"value"`
	Length *int     `json:"length"`
}

type jsonSample struct {
	Value  []byteSeq `json:"value"`
	Seed   *byteSeq  `json:"seed"`
	Length *int      `json:"length"`
}

type jsonBitStream struct {
	Probability *float64 `json:"probability"`
	Seed        *byteSeq `json:"seed"`
	Length      *int     `json:"length"`
}

type jsonLiteral struct {
	Value *string `json:"value"`
}

// untag splits {"Tag": body} into its single key and body
func untag(data []byte, where string) (string, json.RawMessage, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return "", nil, fmt.Errorf("%s: %w", where, err)
	}
	if len(outer) != 1 {
		keys := make([]string, 0, len(outer))
		for k := range outer {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return "", nil, fmt.Errorf("%s: expected exactly one variant tag, got %v", where, keys)
	}
	var tag string
	for k := range outer {
		tag = k
	}
	return tag, outer[tag], nil
}

func decodeNode(data []byte, where string) (models.Node, error) {
	tag, body, err := untag(data, where)
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagFile:
		var f jsonFile
		if err := json.Unmarshal(body, &f); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		name, err := requiredRule(f.Name, where+": name")
		if err != nil {
			return nil, err
		}
		raw := f.RandGen
		if raw == nil {
			raw = f.Content
		} else if f.Content != nil {
			return nil, fmt.Errorf("%s: only one of rand_gen and content may be set", where)
		}
		content, err := requiredRule(raw, where+": rand_gen")
		if err != nil {
			return nil, err
		}
		return models.File{Name: name, Content: content}, nil

	case tagDirectory:
		var d jsonDirectory
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		name, err := requiredRule(d.Name, where+": name")
		if err != nil {
			return nil, err
		}
		if d.Items == nil {
			return nil, fmt.Errorf("%s: missing field items", where)
		}
		children := make([]models.Node, 0, len(d.Items))
		for i, item := range d.Items {
			child, err := decodeNode(item, fmt.Sprintf("%s/%d", where, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return models.Directory{Name: name, Children: children}, nil

	default:
		return nil, fmt.Errorf("%s: unknown node variant %q", where, tag)
	}
}

func requiredRule(raw json.RawMessage, where string) (models.Rule, error) {
	if raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%s: missing rule", where)
	}
	return decodeRule(raw, where)
}

func decodeRule(data []byte, where string) (models.Rule, error) {
	tag, body, err := untag(data, where)
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagCyclic:
		var c jsonCyclic
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		if c.Value == nil {
			return nil, fmt.Errorf("%s: %s: missing field value", where, tag)
		}
		length, err := requiredLength(c.Length)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		return models.Cyclic{Source: []byte(*c.Value), Length: length}, nil

	case tagSample:
		var s jsonSample
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		if s.Value == nil {
			return nil, fmt.Errorf("%s: %s: missing field value", where, tag)
		}
		length, err := requiredLength(s.Length)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		choices := make([][]byte, len(s.Value))
		for i, c := range s.Value {
			choices[i] = []byte(c)
		}
		return models.WeightedSample{Choices: choices, Seed: seedBytes(s.Seed), Length: length}, nil

	case tagBitStream:
		var b jsonBitStream
		if err := json.Unmarshal(body, &b); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		length, err := requiredLength(b.Length)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		p := DefaultProbability
		if b.Probability != nil {
			p = *b.Probability
		}
		return models.BiasedBitStream{Probability: p, Seed: seedBytes(b.Seed), Length: length}, nil

	case tagLiteral:
		var l jsonLiteral
		if err := json.Unmarshal(body, &l); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", where, tag, err)
		}
		if l.Value == nil {
			return nil, fmt.Errorf("%s: %s: missing field value", where, tag)
		}
		return models.Literal{Value: *l.Value}, nil

	default:
		return nil, fmt.Errorf("%s: unknown rule variant %q", where, tag)
	}
}

var errMissingLength = errors.New("missing field length")

func requiredLength(n *int) (int, error) {
	if n == nil {
		return 0, errMissingLength
	}
	if *n < 0 {
		return 0, fmt.Errorf("length must not be negative: %d", *n)
	}
	return *n, nil
}

func seedBytes(seed *byteSeq) []byte {
	if seed == nil {
		return nil
	}
	return []byte(*seed)
}
