package abi

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/stretchr/testify/require"
)

func TestLayoutMatchesHeader(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("mirror layout is declared for LP64 targets")
	}

	require.Equal(t, uintptr(16), unsafe.Sizeof(Bytes{}))
	require.Equal(t, uintptr(16), unsafe.Sizeof(BytesList{}))
	require.Equal(t, uintptr(16), unsafe.Sizeof(NodeList{}))

	require.Equal(t, uintptr(24), unsafe.Sizeof(CyclicRule{}))
	require.Equal(t, uintptr(32), unsafe.Sizeof(SampleRule{}))
	require.Equal(t, uintptr(16), unsafe.Offsetof(SampleRule{}.Seed))
	require.Equal(t, uintptr(24), unsafe.Offsetof(SampleRule{}.Length))
	require.Equal(t, uintptr(24), unsafe.Sizeof(BitStreamRule{}))
	require.Equal(t, uintptr(8), unsafe.Offsetof(BitStreamRule{}.Seed))
	require.Equal(t, uintptr(8), unsafe.Sizeof(LiteralRule{}))

	require.Equal(t, uintptr(RuleSize), unsafe.Sizeof(Rule{}))
	require.Equal(t, uintptr(RulePayloadOffset), unsafe.Offsetof(Rule{}.payload))
	require.Equal(t, uintptr(NodeSize), unsafe.Sizeof(Node{}))
	require.Equal(t, uintptr(NodePayloadOffset), unsafe.Offsetof(Node{}.payload))

	require.LessOrEqual(t, unsafe.Sizeof(FileNode{}), unsafe.Sizeof(Node{}.payload))
	require.LessOrEqual(t, unsafe.Sizeof(DirectoryNode{}), unsafe.Sizeof(Node{}.payload))
	require.Equal(t, uintptr(RuleSize), unsafe.Offsetof(FileNode{}.Content))
	require.Equal(t, uintptr(RuleSize), unsafe.Offsetof(DirectoryNode{}.Children))
}

func TestDecodeRules(t *testing.T) {
	b := newMirrorBuilder(t)

	t.Run("cyclic", func(t *testing.T) {
		r := b.cyclic([]byte{1, 2, 3}, 7)
		got, err := DecodeRule(&r)
		require.NoError(t, err)
		require.Equal(t, models.Cyclic{Source: []byte{1, 2, 3}, Length: 7}, got)
	})

	t.Run("empty cyclic source is never dereferenced", func(t *testing.T) {
		sentinel := []byte{0xEE}
		r := Rule{Tag: TagCyclic}
		*r.Cyclic() = CyclicRule{Source: Bytes{Data: &sentinel[0], Len: 0}}
		got, err := DecodeRule(&r)
		require.NoError(t, err)
		require.Equal(t, models.Cyclic{Source: []byte{}}, got)
	})

	t.Run("sample keeps absent and empty seeds apart", func(t *testing.T) {
		r := b.sample([][]byte{[]byte("ab"), {}, {9}}, nil, 5)
		got, err := DecodeRule(&r)
		require.NoError(t, err)
		sample := got.(models.WeightedSample)
		require.Nil(t, sample.Seed)
		require.Equal(t, [][]byte{[]byte("ab"), {}, {9}}, sample.Choices)
		require.Equal(t, 5, sample.Length)

		r = b.sample([][]byte{[]byte("x")}, []byte{}, 1)
		got, err = DecodeRule(&r)
		require.NoError(t, err)
		sample = got.(models.WeightedSample)
		require.NotNil(t, sample.Seed)
		require.Empty(t, sample.Seed)
	})

	t.Run("sample without choices", func(t *testing.T) {
		r := b.sample(nil, []byte{1}, 3)
		got, err := DecodeRule(&r)
		require.NoError(t, err)
		require.Empty(t, got.(models.WeightedSample).Choices)
	})

	t.Run("bitstream", func(t *testing.T) {
		r := b.bitStream(0.25, []byte{1, 2, 3, 4, 5, 6}, 27)
		got, err := DecodeRule(&r)
		require.NoError(t, err)
		require.Equal(t, models.BiasedBitStream{Probability: 0.25, Seed: []byte{1, 2, 3, 4, 5, 6}, Length: 27}, got)
	})

	t.Run("literal", func(t *testing.T) {
		r := b.literal("héllo.txt")
		got, err := DecodeRule(&r)
		require.NoError(t, err)
		require.Equal(t, models.Literal{Value: "héllo.txt"}, got)

		r = Rule{Tag: TagLiteral}
		got, err = DecodeRule(&r)
		require.NoError(t, err)
		require.Equal(t, models.Literal{}, got)
	})

	t.Run("unknown tag", func(t *testing.T) {
		r := Rule{Tag: 42}
		_, err := DecodeRule(&r)
		require.ErrorIs(t, err, models.ErrInvalidRule)
	})
}

func TestDecodeTree(t *testing.T) {
	b := newMirrorBuilder(t)
	root := b.directory(b.literal("d"),
		b.file(b.literal("x"), b.literal("hi")),
		b.directory(b.cyclic([]byte("sub"), 3)),
		b.file(b.literal("bits"), b.bitStream(0.5, []byte{7}, 4)),
	)

	got, err := Decode(&root)
	require.NoError(t, err)
	require.Equal(t, models.Directory{
		Name: models.Literal{Value: "d"},
		Children: []models.Node{
			models.File{Name: models.Literal{Value: "x"}, Content: models.Literal{Value: "hi"}},
			models.Directory{Name: models.Cyclic{Source: []byte("sub"), Length: 3}, Children: []models.Node{}},
			models.File{Name: models.Literal{Value: "bits"}, Content: models.BiasedBitStream{Probability: 0.5, Seed: []byte{7}, Length: 4}},
		},
	}, got)
}

func TestDecodeOwnsMemory(t *testing.T) {
	source := []byte("abc")
	r := Rule{Tag: TagCyclic}
	*r.Cyclic() = CyclicRule{Source: Bytes{Data: &source[0], Len: 3}, Length: 3}

	got, err := DecodeRule(&r)
	require.NoError(t, err)
	source[0] = 'z'
	require.Equal(t, []byte("abc"), got.(models.Cyclic).Source)
}

func TestDecodeErrors(t *testing.T) {
	b := newMirrorBuilder(t)

	_, err := Decode(nil)
	require.ErrorIs(t, err, models.ErrInvalidRule)

	bad := Node{Tag: 7}
	_, err = Decode(&bad)
	require.ErrorIs(t, err, models.ErrInvalidRule)

	nested := b.directory(b.literal("d"), b.file(b.literal("x"), Rule{Tag: 9}))
	_, err = Decode(&nested)
	require.ErrorIs(t, err, models.ErrInvalidRule)
	require.Contains(t, err.Error(), "<root>/0")
}

func TestGenerate(t *testing.T) {
	b := newMirrorBuilder(t)
	dir := t.TempDir()

	root := b.directory(b.literal("d"),
		b.file(b.literal("a.txt"), b.cyclic([]byte{1, 2, 3}, 7)),
		b.file(b.literal("x"), b.literal("hi")),
	)

	require.Equal(t, StatusOK, Generate(&root, b.cstring(dir)))

	data, err := os.ReadFile(filepath.Join(dir, "d", "a.txt"))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 1, 2, 3, 1}, data)

	data, err = os.ReadFile(filepath.Join(dir, "d", "x"))
	require.NoError(t, err)
	require.Equal(t, "hi", string(data))

	// second run collides with the existing root
	require.Equal(t, StatusFailure, Generate(&root, b.cstring(dir)))
}

func TestGenerateFailures(t *testing.T) {
	b := newMirrorBuilder(t)
	mfs := filesystem.NewMockFileSystem()
	mfs.AddDir("/out")

	ok := b.file(b.literal("f"), b.literal("v"))
	require.Equal(t, StatusFailure, generate(mfs, nil, b.cstring("/out")))
	require.Equal(t, StatusFailure, generate(mfs, &ok, nil))
	require.Equal(t, StatusFailure, generate(mfs, &ok, b.cstring("")))

	badName := b.file(b.bitStream(0.5, nil, 4), b.literal("v"))
	require.Equal(t, StatusFailure, generate(mfs, &badName, b.cstring("/out")))

	require.Equal(t, StatusOK, generate(mfs, &ok, b.cstring("/out")))
	require.True(t, mfs.Exists("/out/f"))
}
