package models

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		err  error
		want ErrorKind
		name string
	}{
		{nil, KindUnknown, "Unknown"},
		{errors.New("boom"), KindUnknown, "Unknown"},
		{ErrInvalidRule, KindInvalidRule, "InvalidRule"},
		{fmt.Errorf("a/b: %w", ErrAlreadyExists), KindAlreadyExists, "AlreadyExists"},
		{fmt.Errorf("a: %w", ErrDuplicateName), KindDuplicateName, "DuplicateName"},
		{fmt.Errorf("name: %w", ErrEncoding), KindEncoding, "EncodingError"},
		{fmt.Errorf("%w: %w", ErrIO, fs.ErrPermission), KindIO, "IoFailure"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, KindOf(tc.err))
			require.Equal(t, tc.name, KindOf(tc.err).String())
		})
	}
}

func TestRuleKinds(t *testing.T) {
	require.Equal(t, KindCyclic, RuleKind(Cyclic{}))
	require.Equal(t, KindSample, RuleKind(&WeightedSample{}))
	require.Equal(t, KindBitStream, RuleKind(BiasedBitStream{}))
	require.Equal(t, KindLiteral, RuleKind(Literal{}))
	require.Equal(t, "", RuleKind(nil))

	require.True(t, IsNameSafe(Literal{}))
	require.True(t, IsNameSafe(&Cyclic{}))
	require.False(t, IsNameSafe(WeightedSample{}))
	require.False(t, IsNameSafe(BiasedBitStream{}))

	require.Equal(t, Literal{Value: "x"}, NormalizeRule(&Literal{Value: "x"}))
	require.Nil(t, NormalizeRule((*Cyclic)(nil)))

	require.Equal(t, KindFile, NodeKind(&File{}))
	require.Equal(t, KindDirectory, NodeKind(Directory{}))
	require.Nil(t, NormalizeNode((*Directory)(nil)))
}

func TestCount(t *testing.T) {
	tree := Directory{
		Name: Literal{Value: "root"},
		Children: []Node{
			File{Name: Literal{Value: "a"}, Content: Literal{}},
			&Directory{Name: Literal{Value: "sub"}, Children: []Node{
				File{Name: Literal{Value: "b"}, Content: Literal{}},
			}},
			Directory{Name: Literal{Value: "empty"}},
		},
	}

	files, dirs := Count(tree)
	require.Equal(t, 2, files)
	require.Equal(t, 3, dirs)

	files, dirs = Count(File{Name: Literal{Value: "f"}})
	require.Equal(t, 1, files)
	require.Equal(t, 0, dirs)
}

func TestValidateEntryName(t *testing.T) {
	require.NoError(t, ValidateEntryName("héllo.txt"))
	require.NoError(t, ValidateEntryName("..."))

	require.ErrorIs(t, ValidateEntryName(""), ErrInvalidRule)
	require.ErrorIs(t, ValidateEntryName("."), ErrInvalidRule)
	require.ErrorIs(t, ValidateEntryName(".."), ErrInvalidRule)
	require.ErrorIs(t, ValidateEntryName("a/b"), ErrInvalidRule)
	require.ErrorIs(t, ValidateEntryName("a\x00b"), ErrInvalidRule)
	require.ErrorIs(t, ValidateEntryName("\xff"), ErrEncoding)
}

func TestValidateRule(t *testing.T) {
	testCases := []struct {
		name   string
		rule   Rule
		asName bool
		want   error
	}{
		{"nil", nil, false, ErrInvalidRule},
		{"nil pointer", (*Literal)(nil), false, ErrInvalidRule},
		{"cyclic", Cyclic{Source: []byte("ab"), Length: 5}, true, nil},
		{"cyclic zero length with empty source", Cyclic{Length: 0}, false, nil},
		{"cyclic empty source", Cyclic{Length: 3}, false, ErrInvalidRule},
		{"cyclic negative length", Cyclic{Source: []byte("a"), Length: -1}, false, ErrInvalidRule},
		{"cyclic name not utf8", Cyclic{Source: []byte{0xff}, Length: 2}, true, ErrEncoding},
		{"cyclic empty name", Cyclic{Source: []byte("a"), Length: 0}, true, ErrInvalidRule},
		{"sample", WeightedSample{Choices: [][]byte{{1}}, Length: 4}, false, nil},
		{"sample no choices", WeightedSample{Length: 4}, false, ErrInvalidRule},
		{"sample all empty", WeightedSample{Choices: [][]byte{{}, {}}, Length: 4}, false, ErrInvalidRule},
		{"sample all empty zero length", WeightedSample{Choices: [][]byte{{}}, Length: 0}, false, nil},
		{"sample negative length", WeightedSample{Choices: [][]byte{{1}}, Length: -2}, false, ErrInvalidRule},
		{"sample as name", WeightedSample{Choices: [][]byte{[]byte("a")}, Length: 1}, true, ErrInvalidRule},
		{"bitstream", BiasedBitStream{Probability: 1, Length: 8}, false, nil},
		{"bitstream probability too high", BiasedBitStream{Probability: 1.5, Length: 8}, false, ErrInvalidRule},
		{"bitstream probability negative", BiasedBitStream{Probability: -0.1}, false, ErrInvalidRule},
		{"bitstream negative length", BiasedBitStream{Probability: 0.5, Length: -1}, false, ErrInvalidRule},
		{"bitstream as name", BiasedBitStream{Probability: 0.5, Length: 1}, true, ErrInvalidRule},
		{"literal content may be empty", Literal{}, false, nil},
		{"literal name", &Literal{Value: "a.txt"}, true, nil},
		{"literal name reserved", Literal{Value: ".."}, true, ErrInvalidRule},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRule(tc.rule, tc.asName)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid tree", func(t *testing.T) {
		tree := Directory{
			Name: Literal{Value: "out"},
			Children: []Node{
				File{Name: Literal{Value: "a.txt"}, Content: Cyclic{Source: []byte("x"), Length: 3}},
				File{Name: Literal{Value: "b.bin"}, Content: BiasedBitStream{Probability: 0.5, Length: 8}},
				Directory{Name: Cyclic{Source: []byte("sub"), Length: 3}},
			},
		}
		require.NoError(t, Validate(tree))
	})

	t.Run("nil root", func(t *testing.T) {
		err := Validate(nil)
		require.ErrorIs(t, err, ErrInvalidRule)
		require.Contains(t, err.Error(), "<root>")
	})

	t.Run("collects every violation with its path", func(t *testing.T) {
		tree := Directory{
			Name: Literal{Value: "out"},
			Children: []Node{
				File{Name: Literal{Value: "a.txt"}, Content: WeightedSample{Length: 3}},
				Directory{Name: Literal{Value: "sub"}, Children: []Node{
					File{Name: BiasedBitStream{Probability: 0.5, Length: 4}, Content: Literal{}},
				}},
			},
		}

		err := Validate(tree)
		require.ErrorIs(t, err, ErrInvalidRule)

		var joined interface{ Unwrap() []error }
		require.ErrorAs(t, err, &joined)
		require.Len(t, joined.Unwrap(), 2)
		require.Contains(t, err.Error(), "out/a.txt: content:")
		require.Contains(t, err.Error(), "out/sub/<bitstream>: name:")
	})

	t.Run("duplicate static names", func(t *testing.T) {
		tree := Directory{
			Name: Literal{Value: "out"},
			Children: []Node{
				File{Name: Literal{Value: "ab"}, Content: Literal{}},
				Directory{Name: Cyclic{Source: []byte("a b"), Length: 1}},
				File{Name: Cyclic{Source: []byte("ab"), Length: 2}, Content: Literal{}},
			},
		}

		err := Validate(tree)
		require.ErrorIs(t, err, ErrDuplicateName)
		require.Equal(t, KindDuplicateName, KindOf(err))
		require.Contains(t, err.Error(), `out: duplicate sibling name: "ab"`)
	})

	t.Run("missing child", func(t *testing.T) {
		tree := Directory{Name: Literal{Value: "out"}, Children: []Node{nil}}
		err := Validate(tree)
		require.ErrorIs(t, err, ErrInvalidRule)
		require.Contains(t, err.Error(), "out: invalid rule: node is missing")
	})
}
