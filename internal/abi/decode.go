package abi

import (
	"fmt"
	"unsafe"

	"github.com/jakoblorz/go-treegen/internal/models"
)

// Decode copies a mirrored tree into owned models. The result never
// aliases the foreign memory.
func Decode(root *Node) (models.Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: root node is nil", models.ErrInvalidRule)
	}
	return decodeNode(root, "<root>")
}

func decodeNode(n *Node, where string) (models.Node, error) {
	switch n.Tag {
	case TagFile:
		f := n.File()
		name, err := DecodeRule(&f.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: name: %w", where, err)
		}
		content, err := DecodeRule(&f.Content)
		if err != nil {
			return nil, fmt.Errorf("%s: content: %w", where, err)
		}
		return models.File{Name: name, Content: content}, nil

	case TagDirectory:
		d := n.Directory()
		name, err := DecodeRule(&d.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: name: %w", where, err)
		}

		items := nodes(d.Children)
		children := make([]models.Node, 0, len(items))
		for i := range items {
			child, err := decodeNode(&items[i], fmt.Sprintf("%s/%d", where, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return models.Directory{Name: name, Children: children}, nil

	default:
		return nil, fmt.Errorf("%s: %w: unknown node tag %d", where, models.ErrInvalidRule, n.Tag)
	}
}

// DecodeRule copies a single mirrored rule into an owned model.
func DecodeRule(r *Rule) (models.Rule, error) {
	switch r.Tag {
	case TagCyclic:
		c := r.Cyclic()
		return models.Cyclic{Source: copyBytes(c.Source), Length: int(c.Length)}, nil

	case TagSample:
		s := r.Sample()
		lists := byteLists(s.Choices)
		choices := make([][]byte, len(lists))
		for i, b := range lists {
			choices[i] = copyBytes(b)
		}
		return models.WeightedSample{Choices: choices, Seed: copySeed(s.Seed), Length: int(s.Length)}, nil

	case TagBitStream:
		b := r.BitStream()
		return models.BiasedBitStream{Probability: b.Probability, Seed: copySeed(b.Seed), Length: int(b.Length)}, nil

	case TagLiteral:
		return models.Literal{Value: cString(r.Literal().Value)}, nil

	default:
		return nil, fmt.Errorf("%w: unknown rule tag %d", models.ErrInvalidRule, r.Tag)
	}
}

// copyBytes never dereferences Data when Len is zero.
func copyBytes(b Bytes) []byte {
	if b.Len == 0 {
		return []byte{}
	}
	out := make([]byte, b.Len)
	copy(out, unsafe.Slice(b.Data, b.Len))
	return out
}

// copySeed maps a null seed to absent and a non-null one to present,
// even when it is empty.
func copySeed(seed *Bytes) []byte {
	if seed == nil {
		return nil
	}
	return copyBytes(*seed)
}

func byteLists(l BytesList) []Bytes {
	if l.Len == 0 {
		return nil
	}
	return unsafe.Slice(l.Data, l.Len)
}

func nodes(l NodeList) []Node {
	if l.Len == 0 {
		return nil
	}
	return unsafe.Slice(l.Data, l.Len)
}

// cString copies a NUL-terminated string. A nil pointer is the empty string.
func cString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
