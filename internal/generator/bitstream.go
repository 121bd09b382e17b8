package generator

import "math/rand/v2"

// GeneratedByte is one output byte of the bit stream together with the
// carry bit that the next byte starts from.
type GeneratedByte struct {
	Value byte
	Carry bool
}

// NextByte folds eight biased flips into a byte, most significant bit
// first. Each bit is the running carry XOR the flip, and the carry leaves
// the byte unchanged across the boundary.
func NextByte(carry bool, flips [8]bool) GeneratedByte {
	acc := GeneratedByte{Carry: carry}
	for i, f := range flips {
		acc.Carry = f != acc.Carry
		if acc.Carry {
			acc.Value |= 1 << (7 - i)
		}
	}
	return acc
}

// bitStream produces n bytes whose bit transitions occur with probability
// p. The initial carry comes from a fair coin on the same source.
func bitStream(r *rand.Rand, p float64, n int) []byte {
	out := make([]byte, n)
	carry := flip(r, 0.5)
	for i := range out {
		var flips [8]bool
		for j := range flips {
			flips[j] = flip(r, p)
		}
		b := NextByte(carry, flips)
		out[i] = b.Value
		carry = b.Carry
	}
	return out
}
