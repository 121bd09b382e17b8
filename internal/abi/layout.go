// Package abi mirrors the C layout of a configuration tree and decodes it
// into owned models.
//
// The mirror types match include/treegen.h on LP64 targets. Every union
// is a tag followed by an untyped payload; payload accessors must only be
// called after the tag has been checked. Pointer/length pairs are trusted:
// the foreign caller guarantees that each pointer is valid for its length.
package abi

import "unsafe"

// RuleTag discriminates the Rule payload (C: RngConfigType)
type RuleTag uint32

const (
	TagCyclic    RuleTag = iota // CYCLE_GEN
	TagSample                   // RANGE_GEN
	TagBitStream                // BIT_TRAIN_GEN
	TagLiteral                  // STRING_GEN
)

// NodeTag discriminates the Node payload (C: ItemConfigType)
type NodeTag uint32

const (
	TagFile      NodeTag = iota // FILE_CONFIG
	TagDirectory                // DIRECTORY_CONFIG
)

// Bytes is a borrowed byte sequence (C: vector_data)
type Bytes struct {
	Data *byte
	Len  uintptr
}

// BytesList is a borrowed sequence of byte sequences (C: vector_vector_data)
type BytesList struct {
	Data *Bytes
	Len  uintptr
}

// NodeList is a borrowed sequence of child nodes (C: vector_items)
type NodeList struct {
	Data *Node
	Len  uintptr
}

// CyclicRule is the TagCyclic payload (C: RngConfig_CycleGen)
type CyclicRule struct {
	Source Bytes
	Length uintptr
}

// SampleRule is the TagSample payload (C: RngConfig_RangeGen)
type SampleRule struct {
	Choices BytesList
	Seed    *Bytes // nil means absent
	Length  uintptr
}

// BitStreamRule is the TagBitStream payload (C: RngConfig_BitTrain)
type BitStreamRule struct {
	Probability float64
	Seed        *Bytes // nil means absent
	Length      uintptr
}

// LiteralRule is the TagLiteral payload (C: RngConfig_StringGen). Value
// points to a NUL-terminated UTF-8 string.
type LiteralRule struct {
	Value *byte
}

// Rule is a tagged generation rule (C: CRngConfig)
type Rule struct {
	Tag     RuleTag
	payload [4]uint64
}

// FileNode is the TagFile payload (C: ItemConfig_FileConfig)
type FileNode struct {
	Name    Rule
	Content Rule
}

// DirectoryNode is the TagDirectory payload (C: ItemConfig_DirectoryConfig)
type DirectoryNode struct {
	Name     Rule
	Children NodeList
}

// Node is a tagged tree node (C: CItemConfig)
type Node struct {
	Tag     NodeTag
	payload [10]uint64
}

// Cyclic views the payload as a cyclic rule
func (r *Rule) Cyclic() *CyclicRule { return (*CyclicRule)(unsafe.Pointer(&r.payload)) }

// Sample views the payload as a sample rule
func (r *Rule) Sample() *SampleRule { return (*SampleRule)(unsafe.Pointer(&r.payload)) }

// BitStream views the payload as a bit-stream rule
func (r *Rule) BitStream() *BitStreamRule { return (*BitStreamRule)(unsafe.Pointer(&r.payload)) }

// Literal views the payload as a literal rule
func (r *Rule) Literal() *LiteralRule { return (*LiteralRule)(unsafe.Pointer(&r.payload)) }

// File views the payload as a file node
func (n *Node) File() *FileNode { return (*FileNode)(unsafe.Pointer(&n.payload)) }

// Directory views the payload as a directory node
func (n *Node) Directory() *DirectoryNode { return (*DirectoryNode)(unsafe.Pointer(&n.payload)) }

// Layout of the mirror on LP64, as declared in include/treegen.h.
const (
	RuleSize          = 40
	NodeSize          = 88
	RulePayloadOffset = 8
	NodePayloadOffset = 8
)
