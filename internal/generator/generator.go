// Package generator evaluates generation rules into names and content.
//
// Cyclic and Literal rules are deterministic. WeightedSample and
// BiasedBitStream draw from a ChaCha8 source that is private to a single
// call: seeded from the rule seed when present, from entropy otherwise.
package generator

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"math"
	mrand "math/rand/v2"
	"unicode/utf8"

	"github.com/jakoblorz/go-treegen/internal/models"
)

// Generator resolves rules. The zero value is not usable; use New.
type Generator struct {
	entropy io.Reader
}

// Option configures a Generator
type Option func(*Generator)

// WithEntropy sets the reader used to seed rules without a seed.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) {
		g.entropy = r
	}
}

// New creates a Generator seeded from crypto/rand unless overridden.
func New(opts ...Option) *Generator {
	g := &Generator{entropy: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = New()

// Content resolves a rule into bytes using the default generator.
func Content(rule models.Rule) ([]byte, error) {
	return defaultGenerator.Content(rule)
}

// Name resolves a rule into an entry name using the default generator.
func Name(rule models.Rule) (string, error) {
	return defaultGenerator.Name(rule)
}

// Content resolves a rule into a byte sequence.
func (g *Generator) Content(rule models.Rule) ([]byte, error) {
	switch r := models.NormalizeRule(rule).(type) {
	case models.Cyclic:
		return cyclic(r)
	case models.WeightedSample:
		return g.sample(r)
	case models.BiasedBitStream:
		return g.bitStream(r)
	case models.Literal:
		return []byte(r.Value), nil
	case nil:
		return nil, fmt.Errorf("%w: rule is missing", models.ErrInvalidRule)
	default:
		return nil, fmt.Errorf("%w: unknown rule type %T", models.ErrInvalidRule, rule)
	}
}

// Name resolves a rule into a single directory entry name. Only literal
// and cyclic rules can produce names; sampled and bit-stream output is
// rejected rather than decoded.
func (g *Generator) Name(rule models.Rule) (string, error) {
	var name string
	switch r := models.NormalizeRule(rule).(type) {
	case models.Literal:
		name = r.Value
	case models.Cyclic:
		b, err := cyclic(r)
		if err != nil {
			return "", err
		}
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: cyclic name % x", models.ErrEncoding, b)
		}
		name = string(b)
	case models.WeightedSample, models.BiasedBitStream:
		return "", fmt.Errorf("%w: %s rule cannot be used as a name", models.ErrInvalidRule, models.RuleKind(r))
	case nil:
		return "", fmt.Errorf("%w: name rule is missing", models.ErrInvalidRule)
	default:
		return "", fmt.Errorf("%w: unknown rule type %T", models.ErrInvalidRule, rule)
	}

	if err := models.ValidateEntryName(name); err != nil {
		return "", err
	}
	return name, nil
}

func cyclic(r models.Cyclic) ([]byte, error) {
	if r.Length < 0 {
		return nil, fmt.Errorf("%w: cyclic length %d is negative", models.ErrInvalidRule, r.Length)
	}
	if r.Length == 0 {
		return []byte{}, nil
	}
	if len(r.Source) == 0 {
		return nil, fmt.Errorf("%w: cyclic source is empty", models.ErrInvalidRule)
	}

	out := bytes.Repeat(r.Source, r.Length/len(r.Source)+1)
	return out[:r.Length:r.Length], nil
}

func (g *Generator) sample(r models.WeightedSample) ([]byte, error) {
	if r.Length < 0 {
		return nil, fmt.Errorf("%w: sample length %d is negative", models.ErrInvalidRule, r.Length)
	}
	if len(r.Choices) == 0 {
		return nil, fmt.Errorf("%w: sample has no choices", models.ErrInvalidRule)
	}
	if r.Length > 0 && allEmpty(r.Choices) {
		return nil, fmt.Errorf("%w: every sample choice is empty", models.ErrInvalidRule)
	}

	rng, err := newRand(r.Seed, g.entropy)
	if err != nil {
		return nil, err
	}
	return sampleChoices(rng, r.Choices, r.Length), nil
}

// sampleChoices concatenates uniformly drawn choices until at least n
// bytes are accumulated and truncates to exactly n.
func sampleChoices(rng *mrand.Rand, choices [][]byte, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		out = append(out, choices[rng.IntN(len(choices))]...)
	}
	return out[:n:n]
}

func (g *Generator) bitStream(r models.BiasedBitStream) ([]byte, error) {
	if r.Length < 0 {
		return nil, fmt.Errorf("%w: bitstream length %d is negative", models.ErrInvalidRule, r.Length)
	}
	if math.IsNaN(r.Probability) || r.Probability < 0 || r.Probability > 1 {
		return nil, fmt.Errorf("%w: bitstream probability %v is outside [0, 1]", models.ErrInvalidRule, r.Probability)
	}

	rng, err := newRand(r.Seed, g.entropy)
	if err != nil {
		return nil, err
	}
	return bitStream(rng, r.Probability, r.Length), nil
}

func allEmpty(choices [][]byte) bool {
	for _, c := range choices {
		if len(c) > 0 {
			return false
		}
	}
	return true
}
