package gf2

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Ext128 is a GF(2^128) element stored as 128 polynomial coefficients in two
// little-endian words: bit k of v[j] is the coefficient of x^(64j+k).
type Ext128 struct {
	v [2]uint64
}

// NewExt128 builds an element from its low and high coefficient words.
func NewExt128(lo, hi uint64) Ext128 { return Ext128{v: [2]uint64{lo, hi}} }

func (Ext128) Zero() Ext128 { return Ext128{} }
func (Ext128) One() Ext128  { return Ext128{v: [2]uint64{1, 0}} }

func (Ext128) InvTwo() Ext128 {
	panic("gf2: two has no inverse in characteristic 2")
}

func (x Ext128) Add(y Ext128) Ext128 {
	return Ext128{v: [2]uint64{x.v[0] ^ y.v[0], x.v[1] ^ y.v[1]}}
}

func (x Ext128) Sub(y Ext128) Ext128 { return x.Add(y) }
func (x Ext128) Neg() Ext128         { return x }

// Mul is a software carry-less multiply: a right-to-left comb accumulating
// the 256-bit product, then a word-level fold by x^128 = x^7 + x^2 + x + 1.
func (x Ext128) Mul(y Ext128) Ext128 {
	var c [4]uint64
	b := [3]uint64{y.v[0], y.v[1], 0}
	for k := 0; k < 64; k++ {
		for j := 0; j < 2; j++ {
			mask := uint64(0)
			if x.v[j]>>k&1 == 1 {
				mask = ^uint64(0)
			}
			for i := 0; i < 3; i++ {
				c[j+i] ^= b[i] & mask
			}
		}
		b[2] = b[2]<<1 | b[1]>>63
		b[1] = b[1]<<1 | b[0]>>63
		b[0] <<= 1
	}
	// Fold the high words: bit k of c[i] is x^(64i+k), and
	// x^(128+m) = x^(m+7) + x^(m+2) + x^(m+1) + x^m.
	for i := 3; i >= 2; i-- {
		t := c[i]
		c[i] = 0
		c[i-2] ^= t<<7 ^ t<<2 ^ t<<1 ^ t
		c[i-1] ^= t>>57 ^ t>>62 ^ t>>63
	}
	return Ext128{v: [2]uint64{c[0], c[1]}}
}

func (x Ext128) Square() Ext128 { return x.Mul(x) }

func (Ext128) Double() Ext128 { return Ext128{} }

// Inv raises to 2^128 - 2 via the product of the first 127 Frobenius powers
// x^(2^i). Off the hot path.
func (x Ext128) Inv() (Ext128, bool) {
	if x.IsZero() {
		return Ext128{}, false
	}
	acc := x.One()
	sq := x
	for i := 0; i < 127; i++ {
		sq = sq.Square()
		acc = acc.Mul(sq)
	}
	return acc, true
}

func (Ext128) Exp(Ext128) Ext128 {
	panic("gf2: Exp not implemented for Ext128")
}

func (x Ext128) IsZero() bool        { return x.v[0]|x.v[1] == 0 }
func (x Ext128) Equal(y Ext128) bool { return x.v == y.v }

// FromUint32 embeds the image of the integer in the field, which in
// characteristic 2 is its parity.
func (Ext128) FromUint32(v uint32) Ext128 {
	return Ext128{v: [2]uint64{uint64(v & 1), 0}}
}

func (Ext128) FromUniformBytes(buf [32]byte) Ext128 {
	return Ext128{v: [2]uint64{
		binary.LittleEndian.Uint64(buf[0:8]),
		binary.LittleEndian.Uint64(buf[8:16]),
	}}
}

func (Ext128) FromECCBytes(buf [32]byte) (Ext128, error) {
	for _, b := range buf[16:] {
		if b != 0 {
			return Ext128{}, fmt.Errorf("gf2ext128: non-zero padding byte in wire element")
		}
	}
	return Ext128{v: [2]uint64{
		binary.LittleEndian.Uint64(buf[0:8]),
		binary.LittleEndian.Uint64(buf[8:16]),
	}}, nil
}

func (Ext128) RandomUnsafe(rng *rand.Rand) Ext128 {
	return Ext128{v: [2]uint64{rng.Uint64(), rng.Uint64()}}
}

func (Ext128) Name() string { return "GF2 Extension 128" }
func (Ext128) Size() int    { return 16 }

func (x Ext128) Bytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], x.v[0])
	binary.LittleEndian.PutUint64(b[8:16], x.v[1])
	return b
}

func (Ext128) SetBytes(b []byte) (Ext128, error) {
	if len(b) != 16 {
		return Ext128{}, fmt.Errorf("gf2ext128: want 16 bytes, got %d", len(b))
	}
	return Ext128{v: [2]uint64{
		binary.LittleEndian.Uint64(b[0:8]),
		binary.LittleEndian.Uint64(b[8:16]),
	}}, nil
}
