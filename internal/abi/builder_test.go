package abi

import (
	"runtime"
	"testing"
)

// mirrorBuilder lays out mirrored trees in Go memory the way a foreign
// caller would. Payloads are untyped words, so every referenced object is
// pinned until the test ends.
type mirrorBuilder struct {
	pinner runtime.Pinner
}

func newMirrorBuilder(t *testing.T) *mirrorBuilder {
	b := &mirrorBuilder{}
	t.Cleanup(b.pinner.Unpin)
	return b
}

func (b *mirrorBuilder) bytes(data []byte) Bytes {
	if len(data) == 0 {
		return Bytes{}
	}
	buf := append([]byte(nil), data...)
	b.pinner.Pin(&buf[0])
	return Bytes{Data: &buf[0], Len: uintptr(len(buf))}
}

func (b *mirrorBuilder) seed(data []byte) *Bytes {
	if data == nil {
		return nil
	}
	s := &Bytes{}
	*s = b.bytes(data)
	b.pinner.Pin(s)
	return s
}

func (b *mirrorBuilder) cstring(s string) *byte {
	buf := append([]byte(s), 0)
	b.pinner.Pin(&buf[0])
	return &buf[0]
}

func (b *mirrorBuilder) cyclic(source []byte, length int) Rule {
	r := Rule{Tag: TagCyclic}
	*r.Cyclic() = CyclicRule{Source: b.bytes(source), Length: uintptr(length)}
	return r
}

func (b *mirrorBuilder) sample(choices [][]byte, seed []byte, length int) Rule {
	list := BytesList{}
	if len(choices) > 0 {
		items := make([]Bytes, len(choices))
		for i, c := range choices {
			items[i] = b.bytes(c)
		}
		b.pinner.Pin(&items[0])
		list = BytesList{Data: &items[0], Len: uintptr(len(items))}
	}

	r := Rule{Tag: TagSample}
	*r.Sample() = SampleRule{Choices: list, Seed: b.seed(seed), Length: uintptr(length)}
	return r
}

func (b *mirrorBuilder) bitStream(p float64, seed []byte, length int) Rule {
	r := Rule{Tag: TagBitStream}
	*r.BitStream() = BitStreamRule{Probability: p, Seed: b.seed(seed), Length: uintptr(length)}
	return r
}

func (b *mirrorBuilder) literal(s string) Rule {
	r := Rule{Tag: TagLiteral}
	*r.Literal() = LiteralRule{Value: b.cstring(s)}
	return r
}

func (b *mirrorBuilder) file(name, content Rule) Node {
	n := Node{Tag: TagFile}
	*n.File() = FileNode{Name: name, Content: content}
	return n
}

func (b *mirrorBuilder) directory(name Rule, children ...Node) Node {
	list := NodeList{}
	if len(children) > 0 {
		items := append([]Node(nil), children...)
		b.pinner.Pin(&items[0])
		list = NodeList{Data: &items[0], Len: uintptr(len(items))}
	}

	n := Node{Tag: TagDirectory}
	*n.Directory() = DirectoryNode{Name: name, Children: list}
	return n
}
