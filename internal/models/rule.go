package models

// Rule describes how to produce a name or a content byte sequence.
//
// The set of rules is closed: Cyclic, WeightedSample, BiasedBitStream and
// Literal are the only implementations.
type Rule interface {
	isRule()
}

// Cyclic repeats Source until Length bytes are produced.
type Cyclic struct {
	// Source is the byte pattern to repeat (must be non-empty when Length > 0)
	Source []byte

	// Length is the number of bytes to produce
	Length int
}

// WeightedSample concatenates uniformly drawn choices (with replacement)
// and truncates the result to Length bytes.
type WeightedSample struct {
	// Choices are the byte sequences to draw from (must be non-empty)
	Choices [][]byte

	// Seed fixes the generator; nil means seed from system entropy
	Seed []byte

	// Length is the number of bytes to produce
	Length int
}

// BiasedBitStream produces Length bytes whose bit transitions happen with
// the given Probability.
type BiasedBitStream struct {
	// Probability of a bit flip, in [0, 1]
	Probability float64

	// Seed fixes the generator; nil means seed from system entropy
	Seed []byte

	// Length is the number of bytes to produce
	Length int
}

// Literal is used verbatim, as a string for names and as its UTF-8 bytes
// for content.
type Literal struct {
	Value string
}

func (Cyclic) isRule()          {}
func (WeightedSample) isRule()  {}
func (BiasedBitStream) isRule() {}
func (Literal) isRule()         {}

// Rule kinds as used in logs, errors and configuration files.
const (
	KindCyclic    = "cyclic"
	KindSample    = "sample"
	KindBitStream = "bitstream"
	KindLiteral   = "literal"
)

// RuleKind returns the lowercase kind name of a rule, or "" for nil.
func RuleKind(rule Rule) string {
	switch rule.(type) {
	case Cyclic, *Cyclic:
		return KindCyclic
	case WeightedSample, *WeightedSample:
		return KindSample
	case BiasedBitStream, *BiasedBitStream:
		return KindBitStream
	case Literal, *Literal:
		return KindLiteral
	default:
		return ""
	}
}

// IsNameSafe reports whether a rule kind can produce an entry name.
// Sampled and bit-stream output is arbitrary binary and never is.
func IsNameSafe(rule Rule) bool {
	switch RuleKind(rule) {
	case KindCyclic, KindLiteral:
		return true
	default:
		return false
	}
}

// NormalizeRule returns the value form of a rule passed by pointer, so
// callers only switch over value types. A nil pointer yields nil.
func NormalizeRule(rule Rule) Rule {
	switch r := rule.(type) {
	case *Cyclic:
		if r == nil {
			return nil
		}
		return *r
	case *WeightedSample:
		if r == nil {
			return nil
		}
		return *r
	case *BiasedBitStream:
		if r == nil {
			return nil
		}
		return *r
	case *Literal:
		if r == nil {
			return nil
		}
		return *r
	default:
		return rule
	}
}
