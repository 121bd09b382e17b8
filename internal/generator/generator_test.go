package generator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCyclicContent(t *testing.T) {
	source := []byte{1, 2, 3}
	for _, length := range []int{0, 1, 3, 7, 100} {
		out, err := Content(models.Cyclic{Source: source, Length: length})
		require.NoError(t, err)
		require.Len(t, out, length)
		for i, b := range out {
			require.Equal(t, source[i%len(source)], b, "byte %d", i)
		}
	}
}

func TestCyclicContent_EmptySource(t *testing.T) {
	_, err := Content(models.Cyclic{Length: 4})
	require.ErrorIs(t, err, models.ErrInvalidRule)

	out, err := Content(models.Cyclic{Length: 0})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestCyclicContent_NegativeLength(t *testing.T) {
	_, err := Content(models.Cyclic{Source: []byte("a"), Length: -1})
	require.ErrorIs(t, err, models.ErrInvalidRule)
}

func TestLiteral(t *testing.T) {
	out, err := Content(models.Literal{Value: "héllo"})
	require.NoError(t, err)
	require.Equal(t, []byte("héllo"), out)

	name, err := Name(models.Literal{Value: "héllo"})
	require.NoError(t, err)
	require.Equal(t, "héllo", name)
}

func TestPointerRules(t *testing.T) {
	out, err := Content(&models.Cyclic{Source: []byte("ab"), Length: 3})
	require.NoError(t, err)
	require.Equal(t, []byte("aba"), out)

	var missing *models.Literal
	_, err = Content(missing)
	require.ErrorIs(t, err, models.ErrInvalidRule)
}

func TestWeightedSample_LengthAndAlignment(t *testing.T) {
	choices := [][]byte{[]byte("ab"), []byte("cde"), []byte("f")}
	for _, length := range []int{0, 1, 2, 5, 64, 257} {
		out, err := Content(models.WeightedSample{Choices: choices, Seed: []byte{9}, Length: length})
		require.NoError(t, err)
		require.Len(t, out, length)
		requireTruncatedConcatenation(t, out, choices)
	}
}

func TestWeightedSample_Deterministic(t *testing.T) {
	rule := models.WeightedSample{
		Choices: [][]byte{{0x00}, {0x01, 0x02}, {0x03, 0x04, 0x05}},
		Seed:    []byte("fixture"),
		Length:  128,
	}

	a, err := Content(rule)
	require.NoError(t, err)
	b, err := Content(rule)
	require.NoError(t, err)
	require.Equal(t, a, b)

	rule.Seed = []byte("other")
	c, err := Content(rule)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestWeightedSample_InvalidChoices(t *testing.T) {
	_, err := Content(models.WeightedSample{Length: 3})
	require.ErrorIs(t, err, models.ErrInvalidRule)

	_, err = Content(models.WeightedSample{Choices: [][]byte{{}, {}}, Length: 3})
	require.ErrorIs(t, err, models.ErrInvalidRule)

	out, err := Content(models.WeightedSample{Choices: [][]byte{{}}, Length: 0})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestBiasedBitStream_Deterministic(t *testing.T) {
	rule := models.BiasedBitStream{Probability: 0.3, Seed: []byte{1, 2, 3, 4, 5, 6}, Length: 27}

	a, err := Content(rule)
	require.NoError(t, err)
	require.Len(t, a, 27)

	b, err := Content(rule)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestBiasedBitStream_SeedPadding(t *testing.T) {
	short := models.BiasedBitStream{Probability: 0.5, Seed: []byte{7}, Length: 32}
	padded := short
	padded.Seed = []byte{7, 0, 0, 0}

	a, err := Content(short)
	require.NoError(t, err)
	b, err := Content(padded)
	require.NoError(t, err)
	require.Equal(t, a, b, "zero padding must not change the derived seed")

	long := models.BiasedBitStream{Probability: 0.5, Seed: bytes.Repeat([]byte{3}, 40), Length: 32}
	truncated := long
	truncated.Seed = bytes.Repeat([]byte{3}, SeedSize)

	c, err := Content(long)
	require.NoError(t, err)
	d, err := Content(truncated)
	require.NoError(t, err)
	require.Equal(t, c, d, "bytes beyond the seed size are ignored")
}

func TestBiasedBitStream_ProbabilityZero(t *testing.T) {
	for seed := byte(0); seed < 16; seed++ {
		out, err := Content(models.BiasedBitStream{Probability: 0, Seed: []byte{seed}, Length: 16})
		require.NoError(t, err)
		require.Len(t, out, 16)

		first := out[0]
		require.Contains(t, []byte{0x00, 0xFF}, first)
		for _, b := range out {
			require.Equal(t, first, b, "carry never changes when no flip occurs")
		}
	}
}

func TestBiasedBitStream_ProbabilityOne(t *testing.T) {
	for seed := byte(0); seed < 16; seed++ {
		out, err := Content(models.BiasedBitStream{Probability: 1, Seed: []byte{seed}, Length: 16})
		require.NoError(t, err)

		first := out[0]
		require.Contains(t, []byte{0xAA, 0x55}, first)
		for _, b := range out {
			require.Equal(t, first, b, "alternation continues across byte boundaries")
		}
	}
}

func TestBiasedBitStream_InvalidProbability(t *testing.T) {
	for _, p := range []float64{-0.1, 1.5} {
		_, err := Content(models.BiasedBitStream{Probability: p, Length: 1})
		require.ErrorIs(t, err, models.ErrInvalidRule)
	}
}

func TestAbsentSeedUsesEntropy(t *testing.T) {
	g := New(WithEntropy(bytes.NewReader(bytes.Repeat([]byte{5}, SeedSize))))
	a, err := g.Content(models.BiasedBitStream{Probability: 0.4, Length: 8})
	require.NoError(t, err)

	b, err := Content(models.BiasedBitStream{Probability: 0.4, Seed: bytes.Repeat([]byte{5}, SeedSize), Length: 8})
	require.NoError(t, err)
	require.Equal(t, b, a)

	// reader is drained now
	_, err = g.Content(models.BiasedBitStream{Probability: 0.4, Length: 8})
	require.ErrorIs(t, err, models.ErrIO)
}

func TestEmptySeedIsPresent(t *testing.T) {
	g := New(WithEntropy(errReader{}))
	out, err := g.Content(models.WeightedSample{Choices: [][]byte{[]byte("x")}, Seed: []byte{}, Length: 2})
	require.NoError(t, err, "an empty seed is present and must not touch entropy")
	require.Equal(t, []byte("xx"), out)
}

func TestName(t *testing.T) {
	name, err := Name(models.Cyclic{Source: []byte("ab"), Length: 5})
	require.NoError(t, err)
	require.Equal(t, "ababa", name)

	_, err = Name(models.Cyclic{Source: []byte{0xff, 0xfe}, Length: 2})
	require.ErrorIs(t, err, models.ErrEncoding)

	_, err = Name(models.WeightedSample{Choices: [][]byte{[]byte("a")}, Length: 1})
	require.ErrorIs(t, err, models.ErrInvalidRule)

	_, err = Name(models.BiasedBitStream{Probability: 0.5, Length: 1})
	require.ErrorIs(t, err, models.ErrInvalidRule)

	for _, bad := range []string{"", ".", "..", "a/b", "nul\x00"} {
		_, err = Name(models.Literal{Value: bad})
		require.ErrorIs(t, err, models.ErrInvalidRule, "name %q", bad)
	}

	_, err = Name(nil)
	require.ErrorIs(t, err, models.ErrInvalidRule)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

// requireTruncatedConcatenation checks that out can be split into whole
// choices, with only the last one cut short.
func requireTruncatedConcatenation(t *testing.T, out []byte, choices [][]byte) {
	t.Helper()
	require.Truef(t, splits(out, choices), "output %x is not a truncated concatenation of choices", out)
}

func splits(out []byte, choices [][]byte) bool {
	if len(out) == 0 {
		return true
	}
	for _, c := range choices {
		if len(c) == 0 {
			continue
		}
		if len(c) >= len(out) {
			if bytes.HasPrefix(c, out) {
				return true
			}
			continue
		}
		if bytes.HasPrefix(out, c) && splits(out[len(c):], choices) {
			return true
		}
	}
	return false
}
