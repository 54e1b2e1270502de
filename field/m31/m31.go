// Package m31 implements the Mersenne-31 prime field (p = 2^31 - 1), its
// cubic extension with modulus X^3 - 5, and 8-lane packed forms of both.
package m31

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Mod is the Mersenne-31 prime.
const Mod uint32 = 1<<31 - 1

const invTwo uint32 = 1 << 30 // (p+1)/2

// M31 is a Mersenne-31 field element. The stored value lives in [0, p]; p
// itself is tolerated mid-reduction and normalized away on comparison and
// serialization.
type M31 struct {
	v uint32
}

// New builds an element from an arbitrary 32-bit value.
func New(x uint32) M31 {
	x = reduce32(reduce32(x))
	return M31{v: x}
}

// reduce32 folds the top bit back into the low 31 bits. Applied twice it
// brings any 32-bit value into [0, p].
func reduce32(x uint32) uint32 {
	return (x & Mod) + (x >> 31)
}

func reduce64(x uint64) uint64 {
	return (x & uint64(Mod)) + (x >> 31)
}

func norm(x uint32) uint32 {
	if x == Mod {
		return 0
	}
	return x
}

// Uint32 returns the canonical representative in [0, p).
func (x M31) Uint32() uint32 { return norm(x.v) }

func (M31) Zero() M31   { return M31{} }
func (M31) One() M31    { return M31{v: 1} }
func (M31) InvTwo() M31 { return M31{v: invTwo} }

func (x M31) Add(y M31) M31 {
	return M31{v: reduce32(x.v + y.v)}
}

func (x M31) Sub(y M31) M31 {
	return x.Add(y.Neg())
}

func (x M31) Neg() M31 {
	v := norm(x.v)
	if v == 0 {
		return M31{}
	}
	return M31{v: Mod - v}
}

func (x M31) Mul(y M31) M31 {
	t := uint64(x.v) * uint64(y.v)
	t = reduce64(reduce64(t))
	return M31{v: reduce32(uint32(t))}
}

func (x M31) Square() M31 { return x.Mul(x) }

func (x M31) Double() M31 {
	return M31{v: reduce32(x.v << 1)}
}

// Inv computes the multiplicative inverse by Fermat's little theorem
// (exponent p-2). Off the hot path.
func (x M31) Inv() (M31, bool) {
	if x.IsZero() {
		return M31{}, false
	}
	return x.pow(Mod - 2), true
}

func (x M31) pow(e uint32) M31 {
	res := M31{v: 1}
	base := x
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			res = res.Mul(base)
		}
		base = base.Square()
	}
	return res
}

// Exp raises x to a field-element exponent. Test-only.
func (x M31) Exp(e M31) M31 { return x.pow(e.Uint32()) }

func (x M31) IsZero() bool          { return norm(x.v) == 0 }
func (x M31) Equal(y M31) bool      { return norm(x.v) == norm(y.v) }
func (M31) FromUint32(v uint32) M31 { return New(v) }

func (M31) FromUniformBytes(buf [32]byte) M31 {
	return New(binary.LittleEndian.Uint32(buf[:4]))
}

func (M31) FromECCBytes(buf [32]byte) (M31, error) {
	for _, b := range buf[4:] {
		if b != 0 {
			return M31{}, fmt.Errorf("m31: non-zero padding byte in wire element")
		}
	}
	return New(binary.LittleEndian.Uint32(buf[:4])), nil
}

func (M31) RandomUnsafe(rng *rand.Rand) M31 { return New(rng.Uint32()) }

func (M31) Name() string { return "Mersenne 31" }
func (M31) Size() int    { return 4 }

func (x M31) Bytes() []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], norm(x.v))
	return b[:]
}

func (M31) SetBytes(b []byte) (M31, error) {
	if len(b) != 4 {
		return M31{}, fmt.Errorf("m31: want 4 bytes, got %d", len(b))
	}
	v := binary.LittleEndian.Uint32(b)
	if v >= Mod {
		return M31{}, fmt.Errorf("m31: non-canonical value %d", v)
	}
	return M31{v: v}, nil
}
