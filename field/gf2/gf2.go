// Package gf2 implements the binary field GF(2), a 128-lane bit packing of
// it, and the degree-128 extension GF(2^128) with the irreducible polynomial
// x^128 + x^7 + x^2 + x + 1, used by the binary-field GKR configuration.
package gf2

import (
	"fmt"
	"math/rand/v2"
)

// GF2 is a single bit.
type GF2 struct {
	v uint8
}

// NewGF2 builds an element from the low bit of x.
func NewGF2(x uint8) GF2 { return GF2{v: x & 1} }

func (GF2) Zero() GF2 { return GF2{} }
func (GF2) One() GF2  { return GF2{v: 1} }

func (GF2) InvTwo() GF2 {
	panic("gf2: two has no inverse in characteristic 2")
}

func (x GF2) Add(y GF2) GF2 { return GF2{v: x.v ^ y.v} }
func (x GF2) Sub(y GF2) GF2 { return x.Add(y) }
func (x GF2) Neg() GF2      { return x }
func (x GF2) Mul(y GF2) GF2 { return GF2{v: x.v & y.v} }
func (x GF2) Square() GF2   { return x }
func (GF2) Double() GF2     { return GF2{} }

func (x GF2) Inv() (GF2, bool) {
	if x.v == 0 {
		return GF2{}, false
	}
	return x, true
}

func (x GF2) Exp(e GF2) GF2 {
	if e.v == 0 {
		return GF2{v: 1}
	}
	return x
}

func (x GF2) IsZero() bool     { return x.v == 0 }
func (x GF2) Equal(y GF2) bool { return x.v == y.v }

func (GF2) FromUint32(v uint32) GF2 { return GF2{v: uint8(v & 1)} }

func (GF2) FromUniformBytes(buf [32]byte) GF2 { return GF2{v: buf[0] & 1} }

func (GF2) FromECCBytes(buf [32]byte) (GF2, error) {
	if buf[0]&^1 != 0 {
		return GF2{}, fmt.Errorf("gf2: wire element is not a bit")
	}
	for _, b := range buf[1:] {
		if b != 0 {
			return GF2{}, fmt.Errorf("gf2: non-zero padding byte in wire element")
		}
	}
	return GF2{v: buf[0]}, nil
}

func (GF2) RandomUnsafe(rng *rand.Rand) GF2 { return GF2{v: uint8(rng.Uint32() & 1)} }

func (GF2) Name() string { return "GF2" }
func (GF2) Size() int    { return 1 }

func (x GF2) Bytes() []byte { return []byte{x.v} }

func (GF2) SetBytes(b []byte) (GF2, error) {
	if len(b) != 1 {
		return GF2{}, fmt.Errorf("gf2: want 1 byte, got %d", len(b))
	}
	if b[0] > 1 {
		return GF2{}, fmt.Errorf("gf2: non-canonical value %d", b[0])
	}
	return GF2{v: b[0]}, nil
}
