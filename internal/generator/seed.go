package generator

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/jakoblorz/go-treegen/internal/models"
)

// SeedSize is the size of the generator seed derived from rule seeds.
const SeedSize = 32

// DeriveSeed copies seed left to right into a zero-filled SeedSize buffer,
// truncating longer seeds and zero-padding shorter ones.
func DeriveSeed(seed []byte) [SeedSize]byte {
	var out [SeedSize]byte
	copy(out[:], seed)
	return out
}

// newRand returns the pseudo-random source for one generation call. A nil
// seed is read from entropy.
func newRand(seed []byte, entropy io.Reader) (*rand.Rand, error) {
	var buf [SeedSize]byte
	if seed != nil {
		buf = DeriveSeed(seed)
	} else if _, err := io.ReadFull(entropy, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: failed to read entropy: %w", models.ErrIO, err)
	}
	return rand.New(rand.NewChaCha8(buf)), nil
}

// flip returns true with probability p.
func flip(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}
